package main

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/migration"
	"github.com/dshills/kernelfn/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resultsStore     string
	resultsStorePath string
	resultsDir       string
	resultsIDs       []string
	resultsOverwrite bool
)

// resultsCmd groups operations on the configured result store
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect, export and import stored results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored results",
	RunE:  runResultsList,
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to a directory",
	RunE:  runResultsExport,
}

var resultsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import results from an export directory",
	RunE:  runResultsImport,
}

func init() {
	resultsCmd.PersistentFlags().StringVar(&resultsStore, "store", "", "Result store: memory, bolt, badger (overrides config)")
	resultsCmd.PersistentFlags().StringVar(&resultsStorePath, "store-path", "", "Result store path (overrides config)")

	resultsExportCmd.Flags().StringVarP(&resultsDir, "dir", "d", "", "Export directory (required)")
	resultsExportCmd.Flags().StringSliceVar(&resultsIDs, "id", nil, "Result IDs to export (default: all)")
	_ = resultsExportCmd.MarkFlagRequired("dir")

	resultsImportCmd.Flags().StringVarP(&resultsDir, "dir", "d", "", "Export directory to read (required)")
	resultsImportCmd.Flags().BoolVar(&resultsOverwrite, "overwrite", false, "Replace results that already exist")
	_ = resultsImportCmd.MarkFlagRequired("dir")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsImportCmd)
	rootCmd.AddCommand(resultsCmd)
}

// openStore opens the configured result store with flag overrides applied
func openStore() (core.ResultStore, error) {
	storeConfig := cfg.Persistence
	if resultsStore != "" {
		storeConfig.Type = persistence.PersistenceType(resultsStore)
	}
	if resultsStorePath != "" {
		storeConfig.Path = resultsStorePath
	}

	store, err := persistence.NewDefaultFactory().CreateStore(storeConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create result store: %w", err)
	}
	return store, nil
}

func runResultsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.ListResults(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	options := migration.DefaultExportOptions(resultsDir)
	options.IDs = resultsIDs
	metadata, err := migration.NewExporter(store).Export(cmd.Context(), options)
	if err != nil {
		return err
	}

	logger.Info("export completed", zap.String("dir", resultsDir), zap.Int("results", metadata.ResultCount))
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d results to %s\n", metadata.ResultCount, resultsDir)
	return nil
}

func runResultsImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	options := migration.DefaultImportOptions(resultsDir)
	options.OverwriteData = resultsOverwrite
	result, err := migration.NewImporter(store).Import(cmd.Context(), options)
	if err != nil {
		if result != nil && result.Imported > 0 {
			logger.Warn("import failed after partial apply", zap.Int("imported", result.Imported), zap.Error(err))
		}
		return err
	}

	logger.Info("import completed",
		zap.String("dir", resultsDir),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d results, skipped %d\n", result.Imported, len(result.Skipped))
	return nil
}
