package main

import (
	"fmt"
	"os"

	"github.com/dshills/kernelfn/api"
	"github.com/dshills/kernelfn/config"
	"github.com/dshills/kernelfn/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kernelfn",
	Short: "kernelfn - pairwise kernel matrices",
	Long: `kernelfn computes linear, RBF and polynomial kernel matrices between
two point sets, either once from the command line or behind an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kernelfn %s\n", api.Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ~/.kernelfn.yml)")

	// Serve flags
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Result store: memory, bolt, badger (overrides config)")
	serveCmd.Flags().StringVar(&serveStorePath, "store-path", "", "Result store path (overrides config)")

	// Compute flags
	computeCmd.Flags().StringVarP(&computeFamily, "family", "f", "linear", "Kernel family: linear, rbf, polynomial")
	computeCmd.Flags().StringVar(&computeX, "x", "", "Point set X (.json or .csv, required)")
	computeCmd.Flags().StringVar(&computeY, "y", "", "Point set Y (.json or .csv, default: X)")
	computeCmd.Flags().StringVarP(&computePrecision, "precision", "p", "float64", "Floating precision: float32, float64")
	computeCmd.Flags().Float64Var(&computeScale, "scale", 1, "Scale applied to the dot product")
	computeCmd.Flags().Float64Var(&computeShift, "shift", 0, "Shift added to the scaled dot product")
	computeCmd.Flags().Float64Var(&computeGamma, "gamma", 0, "RBF gamma (default: 1/features)")
	computeCmd.Flags().Float64Var(&computeSigma, "sigma", 0, "RBF bandwidth, alternative to --gamma")
	computeCmd.Flags().IntVar(&computeDegree, "degree", 3, "Polynomial degree")
	computeCmd.Flags().IntVar(&computeWorkers, "workers", 0, "Worker goroutines (overrides config)")
	computeCmd.Flags().StringVarP(&computeOutput, "output", "o", "json", "Output format: json, csv")
	_ = computeCmd.MarkFlagRequired("x")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
