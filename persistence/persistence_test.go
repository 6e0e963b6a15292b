package persistence

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	testStoreOperations(t, store)
}

func TestBoltStore(t *testing.T) {
	// Create temporary directory for test
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "results.bolt")

	store, err := NewBoltStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestBadgerStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewBadgerStore(tmpDir)
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestBoltStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.bolt")
	ctx := context.Background()

	store, err := NewBoltStore(dbPath)
	require.NoError(t, err)
	want := testResult(t, "persisted", time.Now().UTC())
	require.NoError(t, store.SaveResult(ctx, want))
	require.NoError(t, store.Close())

	store, err = NewBoltStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.LoadResult(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, want.Matrix.ToRows64(), got.Matrix.ToRows64())
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadgerStore(dir)
	require.NoError(t, err)
	want := testResult(t, "persisted", time.Now().UTC())
	require.NoError(t, store.SaveResult(ctx, want))
	require.NoError(t, store.Close())

	store, err = NewBadgerStore(dir)
	require.NoError(t, err)
	defer store.Close()

	infos, err := store.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "persisted", infos[0].ID)
}

func TestFactory_CreateStore(t *testing.T) {
	tmpDir := t.TempDir()
	factory := NewDefaultFactory()

	tests := []struct {
		name    string
		config  PersistenceConfig
		wantErr bool
	}{
		{name: "memory", config: PersistenceConfig{Type: PersistenceMemory}},
		{name: "bolt", config: DefaultPersistenceConfig(PersistenceBolt, filepath.Join(tmpDir, "f.bolt"))},
		{name: "badger", config: DefaultPersistenceConfig(PersistenceBadger, filepath.Join(tmpDir, "badger"))},
		{name: "badger in memory", config: PersistenceConfig{Type: PersistenceBadger, Options: map[string]interface{}{"in_memory": true}}},
		{name: "bolt without path", config: PersistenceConfig{Type: PersistenceBolt}, wantErr: true},
		{name: "badger without path", config: PersistenceConfig{Type: PersistenceBadger}, wantErr: true},
		{name: "unknown", config: PersistenceConfig{Type: "sqlite", Path: "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := factory.CreateStore(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			ctx := context.Background()
			require.NoError(t, store.SaveResult(ctx, testResult(t, "f", time.Now())))
			_, err = store.LoadResult(ctx, "f")
			assert.NoError(t, err)
		})
	}
}

func TestBoltConfigFromOptions(t *testing.T) {
	config := boltConfig(map[string]interface{}{"timeout": "250ms", "read_only": true})
	assert.Equal(t, 250*time.Millisecond, config.Timeout)
	assert.True(t, config.ReadOnly)

	config = boltConfig(nil)
	assert.Equal(t, time.Second, config.Timeout)
}

func testResult(t *testing.T, id string, created time.Time) core.Result {
	t.Helper()

	x, err := core.PointSetFromRows64([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	params := core.RBF(0.5)
	m, err := core.Evaluate(x, nil, params)
	require.NoError(t, err)

	return core.Result{
		ID:        id,
		Params:    core.SpecOf(params),
		Matrix:    m,
		CreatedAt: created,
		Metadata:  map[string]string{"source": "test"},
	}
}

func testStoreOperations(t *testing.T, store core.ResultStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Empty store
	infos, err := store.ListResults(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Save out of creation order
	for i, offset := range []int{2, 0, 1} {
		r := testResult(t, fmt.Sprintf("result-%d", i), base.Add(time.Duration(offset)*time.Minute))
		require.NoError(t, store.SaveResult(ctx, r))
	}

	// Load
	want := testResult(t, "result-0", base.Add(2*time.Minute))
	got, err := store.LoadResult(ctx, "result-0")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Params, got.Params)
	assert.Equal(t, want.Metadata, got.Metadata)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, core.Float64, got.Matrix.Precision())
	assert.Equal(t, want.Matrix.ToRows64(), got.Matrix.ToRows64())

	// List is oldest first and carries shape without the matrix
	infos, err = store.ListResults(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, []string{"result-1", "result-2", "result-0"}, []string{infos[0].ID, infos[1].ID, infos[2].ID})
	assert.Equal(t, 3, infos[0].Rows)
	assert.Equal(t, 3, infos[0].Cols)
	assert.Equal(t, "float64", infos[0].Precision)

	// Overwrite keeps a single entry
	updated := testResult(t, "result-0", base.Add(2*time.Minute))
	updated.Metadata = map[string]string{"source": "updated"}
	require.NoError(t, store.SaveResult(ctx, updated))
	got, err = store.LoadResult(ctx, "result-0")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Metadata["source"])
	infos, err = store.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 3)

	// Delete
	require.NoError(t, store.DeleteResult(ctx, "result-1"))
	_, err = store.LoadResult(ctx, "result-1")
	assert.ErrorIs(t, err, core.ErrResultNotFound)
	assert.ErrorIs(t, store.DeleteResult(ctx, "result-1"), core.ErrResultNotFound)
	infos, err = store.ListResults(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	// Missing IDs
	_, err = store.LoadResult(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrResultNotFound)

	// Invalid results are rejected
	assert.Error(t, store.SaveResult(ctx, core.Result{ID: "", Matrix: want.Matrix}))
	assert.Error(t, store.SaveResult(ctx, core.Result{ID: "no-matrix"}))

	// Non-finite entries survive the round trip
	nanPoints, err := core.PointSetFromRows([][]float64{{math.NaN(), 1}, {math.Inf(1), 0}}, core.Float32)
	require.NoError(t, err)
	m, err := core.Evaluate(nanPoints, nil, core.DefaultLinear())
	require.NoError(t, err)
	require.NoError(t, store.SaveResult(ctx, core.Result{ID: "nan", Params: core.SpecOf(core.DefaultLinear()), Matrix: m, CreatedAt: base}))
	got, err = store.LoadResult(ctx, "nan")
	require.NoError(t, err)
	assert.Equal(t, core.Float32, got.Matrix.Precision())
	assert.True(t, math.IsNaN(got.Matrix.At(0, 0)))
	assert.True(t, math.IsInf(got.Matrix.At(1, 1), 1))

	// Later changes to the caller's result do not reach the store
	isolated := testResult(t, "isolated", base.Add(time.Hour))
	isolated.Metadata = map[string]string{"source": "original"}
	require.NoError(t, store.SaveResult(ctx, isolated))
	isolated.Metadata["source"] = "mutated"
	*isolated.Params.Gamma = 99

	infos, err = store.ListResults(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, infos)
	last := infos[len(infos)-1]
	require.Equal(t, "isolated", last.ID)
	assert.Equal(t, "original", last.Metadata["source"])
	assert.Equal(t, 0.5, *last.Params.Gamma)

	// Nor do changes to a returned listing
	last.Metadata["source"] = "listed"
	infos, err = store.ListResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", infos[len(infos)-1].Metadata["source"])
}
