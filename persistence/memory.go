package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/dshills/kernelfn/core"
)

// MemoryStore implements in-memory result storage (non-persistent)
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string][]byte // id -> encoded result
	infos   map[string]core.ResultInfo
}

// NewMemoryStore creates a new in-memory result store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string][]byte),
		infos:   make(map[string]core.ResultInfo),
	}
}

// SaveResult stores a result in memory. The matrix is encoded so later
// changes by the caller are not visible to readers.
func (m *MemoryStore) SaveResult(ctx context.Context, r core.Result) error {
	if err := validateResult(r); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[r.ID] = data
	m.infos[r.ID] = r.Info()
	return nil
}

// LoadResult retrieves a result by ID
func (m *MemoryStore) LoadResult(ctx context.Context, id string) (core.Result, error) {
	m.mu.RLock()
	data, exists := m.results[id]
	m.mu.RUnlock()

	if !exists {
		return core.Result{}, fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}

	var r core.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return core.Result{}, fmt.Errorf("failed to unmarshal result %s: %w", id, err)
	}
	return r, nil
}

// DeleteResult removes a result from memory
func (m *MemoryStore) DeleteResult(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.results[id]; !exists {
		return fmt.Errorf("%w: %s", core.ErrResultNotFound, id)
	}

	delete(m.results, id)
	delete(m.infos, id)
	return nil
}

// ListResults returns all result listings
func (m *MemoryStore) ListResults(ctx context.Context) ([]core.ResultInfo, error) {
	m.mu.RLock()
	infos := make([]core.ResultInfo, 0, len(m.infos))
	for _, info := range m.infos {
		info.Params = info.Params.Clone()
		info.Metadata = maps.Clone(info.Metadata)
		infos = append(infos, info)
	}
	m.mu.RUnlock()

	sortInfos(infos)
	return infos, nil
}

// Close is a no-op for memory persistence
func (m *MemoryStore) Close() error {
	return nil
}
