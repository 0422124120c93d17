// Package workerpool holds the worker pool (C2) and the streaming RR
// set generator (C3): it owns per-worker RNG sub-streams, dispatches
// batches under dynamic scheduling, and aggregates every worker
// failure from a round instead of stopping at the first one.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hipdac-lab/ripples/internal/rrerrors"
	"github.com/hipdac-lab/ripples/internal/rrgen"
)

// Pool owns a fixed roster of workers, one RNG sub-stream per worker,
// assigned once at construction (spec.md §4.2 "Sub-stream assignment
// is fixed at pool construction").
type Pool struct {
	workers []rrgen.Worker
	log     *zap.Logger
}

// New builds a worker pool over an already-constructed roster of
// workers (CPU and/or accelerator). Callers are expected to have
// derived each worker's RNG via rngsplit.Master.Split with the layout
// from rngsplit.Layout before handing the workers here.
func New(workers []rrgen.Worker, log *zap.Logger) (*Pool, error) {
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: worker pool needs at least one worker", rrerrors.ErrConfiguration)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{workers: workers, log: log.With(zap.String("component", "workerpool"))}, nil
}

// Close tears down the pool, releasing worker resources in reverse
// allocation order (spec.md §5 "Resource lifetimes"). The reference
// CPU/accelerator-stub workers here own no external handles, so Close
// only drops the pool's references to its workers, last to first.
func (p *Pool) Close() error {
	for i := len(p.workers) - 1; i >= 0; i-- {
		p.workers[i] = nil
	}
	return nil
}

// Generate implements the streaming RR-set generator (C3): it
// allocates a contiguous pool of theta empty RR sets, splits it into
// ceil(theta/maxBatchSize) batches, and spawns one errgroup task per
// worker; each task pulls the next unclaimed batch index from a
// shared atomic counter (dynamic scheduling, spec.md §4.3 step 4)
// until none remain.
func (p *Pool) Generate(ctx context.Context, theta, maxBatchSize int) (rrgen.Pool, error) {
	if theta <= 0 {
		return nil, fmt.Errorf("%w: theta must be positive", rrerrors.ErrInvalidInput)
	}
	if maxBatchSize <= 0 {
		return nil, fmt.Errorf("%w: max batch size must be positive", rrerrors.ErrConfiguration)
	}

	pool := make(rrgen.Pool, theta)
	numBatches := (theta + maxBatchSize - 1) / maxBatchSize

	var nextBatch atomic.Int64
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, _ := errgroup.WithContext(gctx)

	var mu sync.Mutex
	var combined error

	for rank := range p.workers {
		worker := p.workers[rank]
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				b := nextBatch.Add(1) - 1
				if int(b) >= numBatches {
					return nil
				}
				offset := int(b) * maxBatchSize
				size := maxBatchSize
				if offset+size > theta {
					size = theta - offset
				}
				if err := worker.Batch(pool, offset, size); err != nil {
					wrapped := fmt.Errorf("worker %d batch %d: %w", rank, b, err)
					p.log.Error("batch dispatch failed",
						zap.Int("rank", rank),
						zap.Int64("batch", b),
						zap.Error(err))
					mu.Lock()
					combined = multierr.Append(combined, wrapped)
					mu.Unlock()
					cancel() // abandon the whole round, per spec's no-retry device error policy
					return nil
				}
			}
		})
	}

	_ = g.Wait()
	if combined != nil {
		return nil, combined
	}
	return pool, nil
}
