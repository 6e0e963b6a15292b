package benchmark

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dshills/kernelfn/core"
	"github.com/dshills/kernelfn/core/compute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmark(t *testing.T) {
	config := BenchmarkConfig{
		Rows:       40,
		Features:   8,
		Iterations: 3,
		Precision:  core.Float32,
		Seed:       7,
	}

	b := NewBenchmark(config, compute.Sequential(), compute.Host(2, 8))
	results, err := b.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 6)

	for _, r := range results {
		assert.Equal(t, 3, r.OperationCount)
		assert.NotEmpty(t, r.Policy)
		assert.LessOrEqual(t, r.MinLatency, r.P50Latency)
		assert.LessOrEqual(t, r.P50Latency, r.MaxLatency)
		assert.GreaterOrEqual(t, r.Throughput, 0.0)
	}
	assert.Equal(t, "linear", results[0].Operation)
	assert.Equal(t, "polynomial", results[5].Operation)

	var out bytes.Buffer
	PrintResults(&out, results)
	assert.Contains(t, out.String(), "rbf")
	assert.Contains(t, out.String(), "sequential")
}

func TestBenchmark_InvalidConfig(t *testing.T) {
	_, err := NewBenchmark(BenchmarkConfig{Rows: 0, Features: 1, Iterations: 1}).RunAll(context.Background())
	assert.Error(t, err)
}

func TestBenchmark_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBenchmark(DefaultBenchmarkConfig()).RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateResult(t *testing.T) {
	b := NewBenchmark(DefaultBenchmarkConfig())
	latencies := []time.Duration{5, 1, 3, 2, 4}

	r := b.calculateResult("linear", 15, 5, latencies)
	assert.Equal(t, time.Duration(1), r.MinLatency)
	assert.Equal(t, time.Duration(5), r.MaxLatency)
	assert.Equal(t, time.Duration(3), r.AvgLatency)
	assert.Equal(t, time.Duration(3), r.P50Latency)

	assert.Equal(t, BenchmarkResult{Operation: "rbf"}, b.calculateResult("rbf", 0, 0, nil))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ns", formatDuration(500))
	assert.Equal(t, "1.5us", formatDuration(1500))
	assert.Equal(t, "2.0ms", formatDuration(2*time.Millisecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
