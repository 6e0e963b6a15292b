package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, store core.ResultStore, n int) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	x, err := core.PointSetFromRows64([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		params := core.LinearParams{Scale: float64(i + 1), Shift: 1}
		m, err := core.Evaluate(x, nil, params)
		require.NoError(t, err)
		require.NoError(t, store.SaveResult(ctx, core.Result{
			ID:        fmt.Sprintf("r-%02d", i),
			Params:    core.SpecOf(params),
			Matrix:    m,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "export")

	source := persistence.NewMemoryStore()
	seedStore(t, source, 5)

	options := DefaultExportOptions(dir)
	options.BatchSize = 2
	metadata, err := NewExporter(source).Export(ctx, options)
	require.NoError(t, err)
	assert.Equal(t, 5, metadata.ResultCount)
	assert.Equal(t, []string{"r-00", "r-01", "r-02", "r-03", "r-04"}, metadata.IDs)
	assert.FileExists(t, filepath.Join(dir, metadataFile))
	assert.FileExists(t, filepath.Join(dir, resultsFile))

	target, err := persistence.NewBoltStore(filepath.Join(t.TempDir(), "target.bolt"))
	require.NoError(t, err)
	defer target.Close()

	result, err := NewImporter(target).Import(ctx, DefaultImportOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Imported)
	assert.Empty(t, result.Skipped)

	got, err := target.LoadResult(ctx, "r-02")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4, 1}, {1, 4}}, got.Matrix.ToRows64())

	// Second import skips existing IDs
	result, err = NewImporter(target).Import(ctx, DefaultImportOptions(dir))
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Len(t, result.Skipped, 5)

	// Overwrite replaces them
	overwrite := DefaultImportOptions(dir)
	overwrite.OverwriteData = true
	result, err = NewImporter(target).Import(ctx, overwrite)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Imported)
}

func TestExport_SelectedIDs(t *testing.T) {
	ctx := context.Background()
	source := persistence.NewMemoryStore()
	seedStore(t, source, 3)

	options := DefaultExportOptions(t.TempDir())
	options.IDs = []string{"r-01"}
	metadata, err := NewExporter(source).Export(ctx, options)
	require.NoError(t, err)
	assert.Equal(t, 1, metadata.ResultCount)

	options.IDs = []string{"missing"}
	_, err = NewExporter(source).Export(ctx, options)
	assert.ErrorIs(t, err, core.ErrResultNotFound)
}

func TestExport_EmptyStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	metadata, err := NewExporter(persistence.NewMemoryStore()).Export(ctx, DefaultExportOptions(dir))
	require.NoError(t, err)
	assert.Zero(t, metadata.ResultCount)

	result, err := NewImporter(persistence.NewMemoryStore()).Import(ctx, DefaultImportOptions(dir))
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
}

func TestImport_Invalid(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()

	_, err := NewImporter(store).Import(ctx, ImportOptions{})
	assert.Error(t, err)

	// Missing metadata
	_, err = NewImporter(store).Import(ctx, DefaultImportOptions(t.TempDir()))
	assert.Error(t, err)

	// Wrong version
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(`{"version":"9"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, resultsFile), nil, 0644))
	_, err = NewImporter(store).Import(ctx, DefaultImportOptions(dir))
	assert.Error(t, err)

	// Invalid parameters are rejected when validating
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(`{"version":"1.0"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, resultsFile), []byte(
		`[{"id":"bad","params":{"family":"rbf","gamma":1,"sigma":1},"matrix":{"rows":1,"cols":1,"precision":"float64","values":[[1]]}}]`), 0644))
	_, err = NewImporter(store).Import(ctx, DefaultImportOptions(dir))
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestImport_PartialFailure(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()

	good := `{"id":"good","params":{"family":"linear"},"matrix":{"rows":1,"cols":1,"precision":"float64","values":[[1]]}}`
	bad := `{"id":"","params":{"family":"linear"},"matrix":{"rows":1,"cols":1,"precision":"float64","values":[[1]]}}`

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(`{"version":"1.0"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, resultsFile), []byte("["+good+"]\n["+bad+"]\n"), 0644))

	result, err := NewImporter(store).Import(ctx, DefaultImportOptions(dir))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Imported)

	_, err = store.LoadResult(ctx, "good")
	assert.NoError(t, err)
}

func TestExport_InvalidOptions(t *testing.T) {
	_, err := NewExporter(persistence.NewMemoryStore()).Export(context.Background(), ExportOptions{BatchSize: 1})
	assert.Error(t, err)

	_, err = NewExporter(persistence.NewMemoryStore()).Export(context.Background(), ExportOptions{OutputDirectory: t.TempDir()})
	assert.Error(t, err)
}
