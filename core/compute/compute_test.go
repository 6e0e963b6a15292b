package compute

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// coverage records which rows a policy handed to body.
func coverage(t *testing.T, p Policy, rows int) []int32 {
	t.Helper()
	seen := make([]int32, rows)
	err := p.Run(context.Background(), rows, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	require.NoError(t, err)
	return seen
}

func TestPolicies_CoverEveryRowOnce(t *testing.T) {
	policies := map[string]Policy{
		"sequential":   Sequential(),
		"host-1":       Host(1, 4),
		"host-4":       Host(4, 3),
		"host-many":    Host(64, 1),
		"host-default": Host(0, 0),
	}

	for name, p := range policies {
		for _, rows := range []int{1, 2, 7, 64, 65, 500} {
			seen := coverage(t, p, rows)
			for i, n := range seen {
				assert.Equalf(t, int32(1), n, "%s rows=%d: row %d visited %d times", name, rows, i, n)
			}
		}
	}
}

func TestPolicies_ZeroRows(t *testing.T) {
	for _, p := range []Policy{Sequential(), Host(4, 8)} {
		called := false
		err := p.Run(context.Background(), 0, func(lo, hi int) { called = true })
		require.NoError(t, err)
		assert.False(t, called)
	}
}

func TestPolicies_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, p := range []Policy{Sequential(), Host(4, 8)} {
		called := false
		err := p.Run(ctx, 100, func(lo, hi int) { called = true })
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	}
}

func TestHostPolicy_CancelBetweenBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	var blocks int32
	p := Host(2, 1)
	err := p.Run(ctx, 10000, func(lo, hi int) {
		atomic.AddInt32(&blocks, 1)
		once.Do(cancel)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, atomic.LoadInt32(&blocks), int32(10000))
	assert.Equal(t, int64(1), p.Stats().CancelledRuns)
}

func TestSequentialPolicy_CancelBetweenBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var blocks int
	p := Sequential()
	err := p.Run(ctx, 10*defaultBlockRows, func(lo, hi int) {
		blocks++
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, blocks)
}

func TestPolicy_Stats(t *testing.T) {
	p := Host(2, 16)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Run(context.Background(), 100, func(lo, hi int) {}))
	}

	stats := p.Stats()
	assert.Equal(t, int64(3), stats.TotalRuns)
	assert.Equal(t, int64(300), stats.TotalRows)
	assert.Zero(t, stats.CancelledRuns)
	assert.GreaterOrEqual(t, stats.AverageLatency, 0.0)
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantBackend string
		wantErr     bool
	}{
		{name: "default", config: DefaultConfig(), wantBackend: "host"},
		{name: "sequential", config: Config{Backend: BackendSequential}, wantBackend: "sequential"},
		{name: "serial alias", config: Config{Backend: "serial"}, wantBackend: "sequential"},
		{name: "empty backend", config: Config{Workers: 3}, wantBackend: "host"},
		{name: "unknown backend", config: Config{Backend: "cuda"}, wantErr: true},
		{name: "negative workers", config: Config{Backend: BackendHost, Workers: -1}, wantErr: true},
		{name: "negative block rows", config: Config{Backend: BackendHost, BlockRows: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBackend, p.Info().Backend)
		})
	}
}

func TestHost_Info(t *testing.T) {
	info := Host(3, 10).Info()
	assert.Equal(t, 3, info.Workers)
	assert.Equal(t, 10, info.BlockRows)
	assert.NotEmpty(t, info.Name)
}
