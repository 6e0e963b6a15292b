package compute

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultBlockRows = 64

// HostPolicy runs row blocks on a fixed pool of worker goroutines
type HostPolicy struct {
	workers   int
	blockRows int
	stats     statsRecorder
}

// Host creates a parallel host policy. Non-positive workers means one per
// CPU; non-positive blockRows uses the default block size.
func Host(workers, blockRows int) *HostPolicy {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if blockRows <= 0 {
		blockRows = defaultBlockRows
	}
	return &HostPolicy{
		workers:   workers,
		blockRows: blockRows,
	}
}

// Run splits [0, rows) into blocks and feeds them to the workers. Every
// worker has returned by the time Run returns.
func (hp *HostPolicy) Run(ctx context.Context, rows int, body func(lo, hi int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rows <= 0 {
		return nil
	}

	startTime := time.Now()

	blocks := (rows + hp.blockRows - 1) / hp.blockRows
	workers := min(hp.workers, blocks)

	g, gctx := errgroup.WithContext(ctx)
	blockChannel := make(chan int)

	// Send work to workers
	g.Go(func() error {
		defer close(blockChannel)
		for b := 0; b < blocks; b++ {
			select {
			case blockChannel <- b:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Start workers
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for b := range blockChannel {
				if err := gctx.Err(); err != nil {
					return err
				}
				lo := b * hp.blockRows
				body(lo, min(lo+hp.blockRows, rows))
			}
			return nil
		})
	}

	err := g.Wait()
	hp.stats.record(rows, time.Since(startTime), err)
	return err
}

// Info returns host execution information
func (hp *HostPolicy) Info() DeviceInfo {
	return DeviceInfo{
		Name:      fmt.Sprintf("host (%d workers)", hp.workers),
		Backend:   string(BackendHost),
		Workers:   hp.workers,
		BlockRows: hp.blockRows,
		NumCPU:    runtime.NumCPU(),
	}
}

// Stats returns performance statistics
func (hp *HostPolicy) Stats() PerformanceStats {
	return hp.stats.snapshot()
}

// SequentialPolicy runs every block on the calling goroutine
type SequentialPolicy struct {
	blockRows int
	stats     statsRecorder
}

// Sequential creates a policy without parallelism. The context is still
// checked between blocks.
func Sequential() *SequentialPolicy {
	return &SequentialPolicy{blockRows: defaultBlockRows}
}

// Run calls body block by block in row order.
func (sp *SequentialPolicy) Run(ctx context.Context, rows int, body func(lo, hi int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	startTime := time.Now()

	var err error
	for lo := 0; lo < rows; lo += sp.blockRows {
		if lo > 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
		body(lo, min(lo+sp.blockRows, rows))
	}

	sp.stats.record(rows, time.Since(startTime), err)
	return err
}

// Info returns sequential execution information
func (sp *SequentialPolicy) Info() DeviceInfo {
	return DeviceInfo{
		Name:      "sequential",
		Backend:   string(BackendSequential),
		Workers:   1,
		BlockRows: sp.blockRows,
		NumCPU:    runtime.NumCPU(),
	}
}

// Stats returns performance statistics
func (sp *SequentialPolicy) Stats() PerformanceStats {
	return sp.stats.snapshot()
}
