// Package migration moves stored kernel results between stores through a
// directory of JSON files.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/kernelfn/core"
)

const (
	exportVersion = "1.0"
	metadataFile  = "export.json"
	resultsFile   = "results.json"
)

// ExportOptions contains options for result export
type ExportOptions struct {
	IDs             []string `json:"ids,omitempty"` // Empty means all results
	BatchSize       int      `json:"batch_size"`
	OutputDirectory string   `json:"output_directory"`
}

// ExportMetadata contains metadata about an export
type ExportMetadata struct {
	Version     string        `json:"version"`
	ExportedAt  time.Time     `json:"exported_at"`
	ResultCount int           `json:"result_count"`
	IDs         []string      `json:"ids"`
	Options     ExportOptions `json:"options"`
}

// Exporter handles result export operations
type Exporter struct {
	store core.ResultStore
}

// NewExporter creates a new result exporter
func NewExporter(store core.ResultStore) *Exporter {
	return &Exporter{
		store: store,
	}
}

// Export writes the selected results to options.OutputDirectory. Results are
// written as a stream of JSON arrays of at most BatchSize entries.
func (e *Exporter) Export(ctx context.Context, options ExportOptions) (*ExportMetadata, error) {
	// Validate options
	if err := e.validateExportOptions(options); err != nil {
		return nil, fmt.Errorf("invalid export options: %w", err)
	}

	// Create output directory
	if err := os.MkdirAll(options.OutputDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ids, err := e.getResultsToExport(ctx, options.IDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	file, err := os.Create(filepath.Join(options.OutputDirectory, resultsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	batch := make([]core.Result, 0, options.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := encoder.Encode(batch); err != nil {
			return fmt.Errorf("failed to encode results batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := e.store.LoadResult(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load result %s: %w", id, err)
		}
		batch = append(batch, result)
		if len(batch) == options.BatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close results file: %w", err)
	}

	metadata := &ExportMetadata{
		Version:     exportVersion,
		ExportedAt:  time.Now().UTC(),
		ResultCount: len(ids),
		IDs:         ids,
		Options:     options,
	}

	// Save export metadata
	if err := saveJSON(filepath.Join(options.OutputDirectory, metadataFile), metadata); err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	return metadata, nil
}

// getResultsToExport returns the requested IDs, or every stored ID oldest first
func (e *Exporter) getResultsToExport(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	infos, err := e.store.ListResults(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}

func (e *Exporter) validateExportOptions(options ExportOptions) error {
	if options.OutputDirectory == "" {
		return fmt.Errorf("output directory is required")
	}
	if options.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	return nil
}

// DefaultExportOptions returns default export options
func DefaultExportOptions(outputDir string) ExportOptions {
	return ExportOptions{
		BatchSize:       100,
		OutputDirectory: outputDir,
	}
}

func saveJSON(path string, obj interface{}) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
