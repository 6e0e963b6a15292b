package main

import (
	"github.com/dshills/kernelfn/benchmark"
	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/spf13/cobra"
)

var (
	benchRows       int
	benchFeatures   int
	benchIterations int
	benchPrecision  string
	benchWorkers    int
	benchSeed       int64
)

// benchCmd times every kernel family on the sequential and host policies
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark kernel evaluation",
	RunE:  runBench,
}

func init() {
	defaults := benchmark.DefaultBenchmarkConfig()
	benchCmd.Flags().IntVar(&benchRows, "rows", defaults.Rows, "Points in the generated set")
	benchCmd.Flags().IntVar(&benchFeatures, "features", defaults.Features, "Features per point")
	benchCmd.Flags().IntVar(&benchIterations, "iterations", defaults.Iterations, "Evaluations per kernel and policy")
	benchCmd.Flags().StringVarP(&benchPrecision, "precision", "p", "float64", "Floating precision: float32, float64")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "Host policy workers (default: config)")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", defaults.Seed, "Seed for the generated points")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	precision, err := core.ParsePrecision(benchPrecision)
	if err != nil {
		return err
	}

	workers := cfg.Compute.Workers
	if benchWorkers > 0 {
		workers = benchWorkers
	}

	config := benchmark.BenchmarkConfig{
		Rows:       benchRows,
		Features:   benchFeatures,
		Iterations: benchIterations,
		Precision:  precision,
		Seed:       benchSeed,
	}
	b := benchmark.NewBenchmark(config,
		compute.Sequential(),
		compute.Host(workers, cfg.Compute.BlockRows))

	results, err := b.RunAll(cmd.Context())
	if err != nil {
		return err
	}

	benchmark.PrintResults(cmd.OutOrStdout(), results)
	return nil
}
