// Package ripples is the public entrypoint to the influence-
// maximization core: generate an RR-set pool, then select seeds from
// it either directly or through the Huffman-compressed store.
package ripples

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hipdac-lab/ripples/internal/config"
	"github.com/hipdac-lab/ripples/internal/diffusion"
	"github.com/hipdac-lab/ripples/internal/graph"
	"github.com/hipdac-lab/ripples/internal/huffman"
	"github.com/hipdac-lab/ripples/internal/obs"
	"github.com/hipdac-lab/ripples/internal/rngsplit"
	"github.com/hipdac-lab/ripples/internal/rrerrors"
	"github.com/hipdac-lab/ripples/internal/rrgen"
	"github.com/hipdac-lab/ripples/internal/selector"
	"github.com/hipdac-lab/ripples/internal/workerpool"
)

// Engine scopes one run against one graph: its worker roster, RNG
// sub-stream layout and config are fixed at construction (spec.md §4.2
// "Sub-stream assignment is fixed at pool construction").
type Engine struct {
	g      *graph.Graph
	cfg    config.Config
	log    *zap.Logger
	master rngsplit.Master

	// WalkOverflows counts LT accelerator-path walk-length overflows
	// across the Engine's lifetime (spec.md §7.4, not an error).
	WalkOverflows atomic.Int64
}

// New constructs an Engine over g. log may be nil, in which case
// logging is a no-op. seedHi/seedLo seed the RNG sub-stream layout
// deterministically; callers that want fresh entropy each run should
// derive these from a secure source before calling New.
func New(g *graph.Graph, cfg config.Config, log *zap.Logger, seedHi, seedLo uint64) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", rrerrors.ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = obs.NewNop()
	}
	return &Engine{
		g:      g,
		cfg:    cfg,
		log:    obs.ForComponent(log, "engine"),
		master: rngsplit.NewMaster(seedHi, seedLo),
	}, nil
}

// Graph exposes the graph the engine was built over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Generate implements the outward `generate(theta) -> pool` operation
// of spec.md §6: it builds a worker pool per the engine's config,
// derives every worker's RNG sub-stream per the fixed layout of §4.2,
// and drives the streaming generator (C3) to fill theta RR sets under
// model.
func (e *Engine) Generate(ctx context.Context, theta int, model diffusion.Model) (rrgen.Pool, error) {
	cpuStart, cpuCount, gpuStart, gpuCount := rngsplit.Layout(e.cfg.CPUWorkers, e.cfg.GPUWorkers, e.cfg.GPUSubstreamsPerWorker)
	// The accelerator range starts past a cpuWorkers+gpuWorkers gap
	// (rngsplit.Layout), so the split's reserved range has to reach
	// gpuStart+gpuCount, not just the worker counts themselves.
	totalStreams := gpuStart + gpuCount
	if totalStreams < cpuCount {
		totalStreams = cpuCount
	}

	workers := make([]rrgen.Worker, 0, e.cfg.CPUWorkers+e.cfg.GPUWorkers)
	for i := 0; i < e.cfg.CPUWorkers; i++ {
		workers = append(workers, &rrgen.CPUWorker{
			G:      e.g,
			RNG:    e.master.Split(totalStreams, cpuStart+i),
			Model:  model,
			Params: diffusion.Params{MaskWords: e.cfg.MaskWords, ActivationProb: e.cfg.ActivationProb},
		})
	}
	for i := 0; i < e.cfg.GPUWorkers; i++ {
		rng := e.master.Split(totalStreams, gpuStart+i*maxInt(e.cfg.GPUSubstreamsPerWorker, 1))
		switch model {
		case diffusion.LinearThreshold:
			workers = append(workers, &rrgen.AcceleratorWorkerLT{
				G:             e.g,
				RNG:           rng,
				MaskWords:     e.cfg.MaskWords,
				WalkOverflows: &e.WalkOverflows,
			})
		case diffusion.IndependentCascade:
			workers = append(workers, &rrgen.AcceleratorWorkerIC{
				G:      e.g,
				RNG:    rng,
				Params: diffusion.Params{MaskWords: e.cfg.MaskWords, ActivationProb: e.cfg.ActivationProb},
			})
		}
	}

	pool, err := workerpool.New(workers, e.log)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	maxBatch := e.cfg.ICMaxBatchSize
	if model == diffusion.LinearThreshold {
		maxBatch = e.cfg.LTMaxBatchSize
	}
	return pool.Generate(ctx, theta, maxBatch)
}

// FindMostInfluential implements `find_most_influential(G, k, pool) ->
// (f, seeds)`: the raw-pool greedy selector of spec.md §4.5.a.
func (e *Engine) FindMostInfluential(k int, pool rrgen.Pool) (float64, []int32, error) {
	res, err := selector.RawSelect(pool, e.g.NumNodes(), k)
	if err != nil {
		return 0, nil, err
	}
	return res.F, res.Seeds, nil
}

// HuffmanFind implements `huffman_find(G, k, pool) -> (f, seeds)`: it
// builds the Huffman book (C4), encodes every RR set, then runs the
// compressed-pool greedy selector of spec.md §4.5.b.
func (e *Engine) HuffmanFind(k int, pool rrgen.Pool) (float64, []int32, error) {
	book := huffman.BuildBook(pool, e.cfg.MaxEncodedBits)
	compressed := make([]huffman.CompressedRRSet, len(pool))
	for i, rr := range pool {
		compressed[i] = huffman.Encode(rr, book, e.cfg.HuffmanLossy)
	}
	res, err := selector.CompressedSelect(compressed, book, e.g.NumNodes(), k, selector.SparseReduction, e.cfg.EagerRelease)
	if err != nil {
		return 0, nil, err
	}
	return res.F, res.Seeds, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
