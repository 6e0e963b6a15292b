package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dshills/kernelfn/core"
)

const (
	// Key prefixes for different data types
	resultKeyPrefix = "r:"
	infoKeyPrefix   = "i:"
)

// BadgerStore implements result storage using BadgerDB
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore creates a new BadgerDB result store with default options
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	return NewBadgerStoreWithConfig(dbPath, badgerConfig(nil))
}

// NewBadgerStoreWithConfig creates a new BadgerDB result store
func NewBadgerStoreWithConfig(dbPath string, config BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dbPath, err)
		}
	}
	opts = opts.WithSyncWrites(config.SyncWrites)
	if config.NumVersionsToKeep > 0 {
		opts = opts.WithNumVersionsToKeep(config.NumVersionsToKeep)
	}
	opts.Logger = nil // Disable logging for cleaner output

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", dbPath, err)
	}

	return &BadgerStore{
		db:   db,
		path: dbPath,
	}, nil
}

// SaveResult stores a result and its listing in one transaction
func (b *BadgerStore) SaveResult(ctx context.Context, r core.Result) error {
	if err := validateResult(r); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	info, err := json.Marshal(r.Info())
	if err != nil {
		return fmt.Errorf("failed to marshal result info: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(resultKeyPrefix+r.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(infoKeyPrefix+r.ID), info)
	})
}

// LoadResult retrieves a result by ID
func (b *BadgerStore) LoadResult(ctx context.Context, id string) (core.Result, error) {
	var r core.Result

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resultKeyPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
			}
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})

	if err != nil {
		return core.Result{}, err
	}

	return r, nil
}

// DeleteResult removes a result and its listing
func (b *BadgerStore) DeleteResult(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := []byte(resultKeyPrefix + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
			}
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete([]byte(infoKeyPrefix + id))
	})
}

// ListResults returns all result listings without decoding matrices
func (b *BadgerStore) ListResults(ctx context.Context) ([]core.ResultInfo, error) {
	infos := []core.ResultInfo{}
	prefix := []byte(infoKeyPrefix)

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var info core.ResultInfo
				if err := json.Unmarshal(val, &info); err != nil {
					return fmt.Errorf("failed to unmarshal result info %s: %w", string(item.Key()), err)
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sortInfos(infos)
	return infos, nil
}

// Close closes the BadgerDB database
func (b *BadgerStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
