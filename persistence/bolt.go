package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/kernelfn/core"
	"go.etcd.io/bbolt"
)

const (
	// Bucket names for different data types
	resultsBucket     = "results"
	resultIndexBucket = "result_index"
)

// BoltStore implements result storage using BoltDB
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore creates a new BoltDB result store with default options
func NewBoltStore(dbPath string) (*BoltStore, error) {
	return NewBoltStoreWithConfig(dbPath, boltConfig(nil))
}

// NewBoltStoreWithConfig creates a new BoltDB result store
func NewBoltStoreWithConfig(dbPath string, config BoltConfig) (*BoltStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout:    config.Timeout,
		NoGrowSync: config.NoGrowSync,
		ReadOnly:   config.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	store := &BoltStore{
		db:   db,
		path: dbPath,
	}

	if !config.ReadOnly {
		if err := store.initBuckets(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize buckets: %w", err)
		}
	}

	return store, nil
}

// initBuckets creates the required buckets if they don't exist
func (b *BoltStore) initBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{resultsBucket, resultIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// SaveResult stores a result and its listing in one transaction
func (b *BoltStore) SaveResult(ctx context.Context, r core.Result) error {
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

	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(resultsBucket)).Put([]byte(r.ID), data); err != nil {
			return fmt.Errorf("failed to store result %s: %w", r.ID, err)
		}
		return tx.Bucket([]byte(resultIndexBucket)).Put([]byte(r.ID), info)
	})
}

// LoadResult retrieves a result by ID
func (b *BoltStore) LoadResult(ctx context.Context, id string) (core.Result, error) {
	var r core.Result

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(resultsBucket))
		if bucket == nil {
			return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
		}

		return json.Unmarshal(data, &r)
	})

	if err != nil {
		return core.Result{}, err
	}

	return r, nil
}

// DeleteResult removes a result and its listing
func (b *BoltStore) DeleteResult(ctx context.Context, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(resultsBucket))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
		}

		if err := bucket.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete result %s: %w", id, err)
		}
		return tx.Bucket([]byte(resultIndexBucket)).Delete([]byte(id))
	})
}

// ListResults returns all result listings without decoding matrices
func (b *BoltStore) ListResults(ctx context.Context) ([]core.ResultInfo, error) {
	infos := []core.ResultInfo{}

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(resultIndexBucket))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var info core.ResultInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("failed to unmarshal result info %s: %w", string(k), err)
			}
			infos = append(infos, info)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sortInfos(infos)
	return infos, nil
}

// Close closes the BoltDB database
func (b *BoltStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
