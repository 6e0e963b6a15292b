// Package compute provides the execution policies that kernel evaluation
// fans out through. A policy decides how the rows of an output matrix are
// split across goroutines; it never touches the data itself.
package compute

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Backend represents the type of execution backend
type Backend string

const (
	BackendHost       Backend = "host"       // Parallel across host CPUs
	BackendSequential Backend = "sequential" // Calling goroutine only
)

// ParseBackend converts a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendHost, "":
		return BackendHost, nil
	case BackendSequential, "serial":
		return BackendSequential, nil
	default:
		return "", fmt.Errorf("unsupported compute backend: %s", s)
	}
}

// Config configures an execution policy
type Config struct {
	Backend   Backend `yaml:"backend" json:"backend"`       // Execution backend
	Workers   int     `yaml:"workers" json:"workers"`       // Worker goroutines, 0 = NumCPU
	BlockRows int     `yaml:"block_rows" json:"block_rows"` // Rows handed to a worker at a time
}

// DefaultConfig returns sensible defaults for host execution
func DefaultConfig() Config {
	return Config{
		Backend:   BackendHost,
		Workers:   runtime.NumCPU(),
		BlockRows: 64,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.BlockRows < 0 {
		return fmt.Errorf("block_rows must be non-negative, got %d", c.BlockRows)
	}
	return nil
}

// Policy runs a row-partitioned body to completion.
type Policy interface {
	// Run calls body over disjoint half-open ranges covering [0, rows) and
	// returns once every call has finished. It returns ctx.Err() if the
	// context was cancelled before all ranges were started.
	Run(ctx context.Context, rows int, body func(lo, hi int)) error

	// Information
	Info() DeviceInfo

	// Performance monitoring
	Stats() PerformanceStats
}

// NewPolicy creates the policy described by config
func NewPolicy(config Config) (Policy, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compute config: %w", err)
	}

	backend, _ := ParseBackend(string(config.Backend))
	switch backend {
	case BackendSequential:
		return Sequential(), nil
	default:
		return Host(config.Workers, config.BlockRows), nil
	}
}

// DeviceInfo describes the execution resources of a policy
type DeviceInfo struct {
	Name      string `json:"name"`
	Backend   string `json:"backend"`
	Workers   int    `json:"workers"`
	BlockRows int    `json:"block_rows"`
	NumCPU    int    `json:"num_cpu"`
}

// PerformanceStats contains execution statistics
type PerformanceStats struct {
	TotalRuns         int64   `json:"total_runs"`
	TotalRows         int64   `json:"total_rows"`
	CancelledRuns     int64   `json:"cancelled_runs"`
	TotalComputeTime  float64 `json:"total_compute_time_ms"`
	AverageLatency    float64 `json:"average_latency_ms"`
	LastOperationTime float64 `json:"last_operation_time_ms"`
	Throughput        float64 `json:"throughput_rows_per_sec"`
}

// statsRecorder accumulates PerformanceStats for a policy
type statsRecorder struct {
	mu    sync.Mutex
	stats PerformanceStats
}

// record updates statistics for one completed run
func (r *statsRecorder) record(rows int, elapsed time.Duration, err error) {
	ms := elapsed.Seconds() * 1000

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalRuns++
	r.stats.TotalRows += int64(rows)
	if err != nil {
		r.stats.CancelledRuns++
	}
	r.stats.TotalComputeTime += ms
	r.stats.LastOperationTime = ms
	r.stats.AverageLatency = r.stats.TotalComputeTime / float64(r.stats.TotalRuns)
	if r.stats.TotalComputeTime > 0 {
		r.stats.Throughput = float64(r.stats.TotalRows) / (r.stats.TotalComputeTime / 1000.0)
	}
}

func (r *statsRecorder) snapshot() PerformanceStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
