package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/kernelfn/core"
)

// ImportOptions contains options for result import
type ImportOptions struct {
	OverwriteData  bool   `json:"overwrite_data"`
	InputDirectory string `json:"input_directory"`
	ValidateData   bool   `json:"validate_data"`
}

// ImportResult summarizes an import
type ImportResult struct {
	ExportedAt time.Time `json:"exported_at"`
	Imported   int       `json:"imported"`
	Skipped    []string  `json:"skipped,omitempty"`
}

// Importer handles result import operations
type Importer struct {
	store core.ResultStore
}

// NewImporter creates a new result importer
func NewImporter(store core.ResultStore) *Importer {
	return &Importer{
		store: store,
	}
}

// Import loads an export directory into the store. Results whose ID already
// exists are skipped unless OverwriteData is set. Results are saved one by
// one, so a failure part way through leaves the earlier ones in the store;
// the returned ImportResult then counts what was applied before the error.
func (i *Importer) Import(ctx context.Context, options ImportOptions) (*ImportResult, error) {
	if options.InputDirectory == "" {
		return nil, fmt.Errorf("invalid import options: input directory is required")
	}

	// Load export metadata
	metadata, err := i.loadExportMetadata(options.InputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to load export metadata: %w", err)
	}

	file, err := os.Open(filepath.Join(options.InputDirectory, resultsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	result := &ImportResult{ExportedAt: metadata.ExportedAt}

	decoder := json.NewDecoder(file)
	for decoder.More() {
		var batch []core.Result
		if err := decoder.Decode(&batch); err != nil {
			return result, fmt.Errorf("failed to decode results batch: %w", err)
		}

		for _, r := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if options.ValidateData {
				if err := validateResult(r); err != nil {
					return result, fmt.Errorf("result validation failed: %w", err)
				}
			}

			// Check if we should overwrite existing data
			if !options.OverwriteData {
				_, err := i.store.LoadResult(ctx, r.ID)
				if err == nil {
					result.Skipped = append(result.Skipped, r.ID)
					continue
				}
				if !errors.Is(err, core.ErrResultNotFound) {
					return result, fmt.Errorf("failed to check result %s: %w", r.ID, err)
				}
			}

			if err := i.store.SaveResult(ctx, r); err != nil {
				return result, fmt.Errorf("failed to save result %s: %w", r.ID, err)
			}
			result.Imported++
		}
	}

	return result, nil
}

func (i *Importer) loadExportMetadata(inputDir string) (*ExportMetadata, error) {
	data, err := os.ReadFile(filepath.Join(inputDir, metadataFile))
	if err != nil {
		return nil, err
	}

	var metadata ExportMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	if metadata.Version != exportVersion {
		return nil, fmt.Errorf("unsupported export version %q", metadata.Version)
	}
	return &metadata, nil
}

// validateResult checks that a stored matrix is consistent with its parameters
func validateResult(r core.Result) error {
	if r.ID == "" {
		return fmt.Errorf("result ID cannot be empty")
	}
	if r.Matrix == nil {
		return fmt.Errorf("result %s has no matrix", r.ID)
	}
	if _, err := r.Params.Params(); err != nil {
		return fmt.Errorf("result %s: %w", r.ID, err)
	}
	return nil
}

// DefaultImportOptions returns default import options
func DefaultImportOptions(inputDir string) ImportOptions {
	return ImportOptions{
		InputDirectory: inputDir,
		ValidateData:   true,
	}
}
