// Package benchmark times kernel evaluation across families and execution
// policies.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
)

// BenchmarkConfig contains configuration for benchmarks
type BenchmarkConfig struct {
	Rows       int
	Features   int
	Iterations int
	Precision  core.Precision
	Seed       int64
}

// DefaultBenchmarkConfig returns a medium sized workload
func DefaultBenchmarkConfig() BenchmarkConfig {
	return BenchmarkConfig{
		Rows:       512,
		Features:   64,
		Iterations: 10,
		Precision:  core.Float64,
		Seed:       1,
	}
}

// BenchmarkResult contains timing results
type BenchmarkResult struct {
	Operation      string
	Policy         string
	TotalTime      time.Duration
	OperationCount int
	AvgLatency     time.Duration
	MinLatency     time.Duration
	MaxLatency     time.Duration
	P50Latency     time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	Throughput     float64 // kernel entries per second
}

// Benchmark runs kernel evaluation benchmarks against a set of policies
type Benchmark struct {
	config   BenchmarkConfig
	policies []compute.Policy
}

// NewBenchmark creates a new benchmark runner
func NewBenchmark(config BenchmarkConfig, policies ...compute.Policy) *Benchmark {
	if len(policies) == 0 {
		policies = []compute.Policy{compute.Sequential(), compute.Host(0, 0)}
	}
	return &Benchmark{
		config:   config,
		policies: policies,
	}
}

// RunAll runs every kernel family on every policy
func (b *Benchmark) RunAll(ctx context.Context) ([]BenchmarkResult, error) {
	if b.config.Rows <= 0 || b.config.Features <= 0 || b.config.Iterations <= 0 {
		return nil, fmt.Errorf("rows, features and iterations must be positive")
	}

	x, err := b.generatePoints()
	if err != nil {
		return nil, err
	}

	workloads := []struct {
		name   string
		params core.Params
	}{
		{"linear", core.DefaultLinear()},
		{"rbf", core.DefaultRBF()},
		{"polynomial", core.DefaultPolynomial()},
	}

	var results []BenchmarkResult
	for _, policy := range b.policies {
		evaluator := core.NewEvaluator(policy)
		for _, w := range workloads {
			result, err := b.benchmarkKernel(ctx, evaluator, w.name, x, w.params)
			if err != nil {
				return nil, fmt.Errorf("%s benchmark failed: %w", w.name, err)
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// benchmarkKernel times repeated self-kernel evaluations of x
func (b *Benchmark) benchmarkKernel(ctx context.Context, evaluator *core.Evaluator, name string, x *core.PointSet, params core.Params) (BenchmarkResult, error) {
	latencies := make([]time.Duration, 0, b.config.Iterations)

	start := time.Now()
	for i := 0; i < b.config.Iterations; i++ {
		opStart := time.Now()
		if _, err := evaluator.Evaluate(ctx, x, nil, params); err != nil {
			return BenchmarkResult{}, err
		}
		latencies = append(latencies, time.Since(opStart))
	}
	totalTime := time.Since(start)

	result := b.calculateResult(name, totalTime, b.config.Iterations, latencies)
	result.Policy = evaluator.Policy().Info().Name
	if totalTime > 0 {
		entries := float64(x.Rows()) * float64(x.Rows()) * float64(b.config.Iterations)
		result.Throughput = entries / totalTime.Seconds()
	}
	return result, nil
}

// generatePoints creates a random point set in [0, 1)
func (b *Benchmark) generatePoints() (*core.PointSet, error) {
	r := rand.New(rand.NewSource(b.config.Seed))
	rows := make([][]float64, b.config.Rows)
	for i := range rows {
		row := make([]float64, b.config.Features)
		for j := range row {
			row[j] = r.Float64()
		}
		rows[i] = row
	}
	return core.PointSetFromRows(rows, b.config.Precision)
}

// calculateResult computes statistics from latencies
func (b *Benchmark) calculateResult(operation string, totalTime time.Duration, count int, latencies []time.Duration) BenchmarkResult {
	if len(latencies) == 0 {
		return BenchmarkResult{Operation: operation}
	}

	// Sort latencies for percentile calculation
	sortedLatencies := slices.Clone(latencies)
	slices.Sort(sortedLatencies)

	var sum time.Duration
	for _, lat := range latencies {
		sum += lat
	}

	n := len(sortedLatencies)
	return BenchmarkResult{
		Operation:      operation,
		TotalTime:      totalTime,
		OperationCount: count,
		AvgLatency:     sum / time.Duration(n),
		MinLatency:     sortedLatencies[0],
		MaxLatency:     sortedLatencies[n-1],
		P50Latency:     sortedLatencies[n*50/100],
		P95Latency:     sortedLatencies[n*95/100],
		P99Latency:     sortedLatencies[n*99/100],
	}
}

// PrintResults prints benchmark results in a formatted table
func PrintResults(w io.Writer, results []BenchmarkResult) {
	fmt.Fprintln(w, "=== Benchmark Results ===")
	fmt.Fprintf(w, "%-12s %-22s %6s %10s %10s %10s %10s %16s\n",
		"Kernel", "Policy", "Count", "Avg", "Min", "Max", "P95", "Throughput")
	fmt.Fprintln(w, strings.Repeat("-", 102))

	for _, r := range results {
		fmt.Fprintf(w, "%-12s %-22s %6d %10s %10s %10s %10s %14.3gM/s\n",
			r.Operation,
			r.Policy,
			r.OperationCount,
			formatDuration(r.AvgLatency),
			formatDuration(r.MinLatency),
			formatDuration(r.MaxLatency),
			formatDuration(r.P95Latency),
			r.Throughput/1e6,
		)
	}
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	} else if d < time.Millisecond {
		return fmt.Sprintf("%.1fus", float64(d.Nanoseconds())/1000)
	} else if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
