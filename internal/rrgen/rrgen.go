// Package rrgen implements the RR-set producer contract (C1, as a
// concrete reference instance) and the per-worker Batch operation that
// C2's worker pool dispatches against (spec.md §4.1-§4.2).
package rrgen

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync/atomic"

	"github.com/hipdac-lab/ripples/internal/diffusion"
	"github.com/hipdac-lab/ripples/internal/graph"
	"github.com/hipdac-lab/ripples/internal/rrerrors"
)

// RRSet is an ordered, duplicate-free sequence of vertex ids (I1).
type RRSet []uint32

// Pool is an indexed, stable sequence of RR sets (§3 "RR-set pool").
type Pool []RRSet

// Worker exposes exactly one operation: fill the slots
// pool[offset:offset+size] in place. It must be safe to call
// concurrently from different goroutines provided each call targets a
// distinct worker instance; a single Worker is not safe for concurrent
// use by multiple callers.
type Worker interface {
	Batch(pool Pool, offset, size int) error
}

// CPUWorker is the plain reference worker: for each slot it draws a
// root uniformly from [0, n) and invokes the diffusion reference
// kernel, exactly as spec.md §4.2 describes the CPU worker variant.
type CPUWorker struct {
	G      *graph.Graph
	RNG    *rand.Rand
	Model  diffusion.Model
	Params diffusion.Params
}

// Batch fills pool[offset : offset+size].
func (w *CPUWorker) Batch(pool Pool, offset, size int) error {
	n := w.G.NumNodes()
	if n == 0 {
		return fmt.Errorf("%w: graph has no vertices", rrerrors.ErrInvalidInput)
	}
	for i := 0; i < size; i++ {
		root := w.RNG.IntN(n)
		pool[offset+i] = diffusion.AddRRRSet(w.G, root, w.RNG, nil, w.Model, w.Params)
	}
	return nil
}

// AcceleratorFailer lets tests force a simulated device failure so the
// fail-fast/teardown path of spec.md §7.3 can be exercised without a
// real accelerator.
type AcceleratorFailer struct {
	Fail atomic.Bool
}

// AcceleratorWorkerLT simulates the LT accelerator worker of spec.md
// §4.2: a device kernel would return a fixed-width per-walk mask array
// terminated by the sentinel n, copied host-side and decoded back into
// an RR set; a walk that never emits the sentinel overflowed the cap
// and falls back to the host CPU kernel.
type AcceleratorWorkerLT struct {
	G             *graph.Graph
	RNG           *rand.Rand
	MaskWords     int
	Failer        *AcceleratorFailer
	WalkOverflows *atomic.Int64 // incremented on every fallback, never an error (spec.md §7.4)
}

// Batch fills pool[offset : offset+size] via the simulated LT device
// kernel, stable-sorting each resulting RR set as the real kernel's
// host-side finisher would.
func (w *AcceleratorWorkerLT) Batch(pool Pool, offset, size int) error {
	if w.Failer != nil && w.Failer.Fail.Load() {
		return fmt.Errorf("%w: simulated LT kernel launch failure", rrerrors.ErrDevice)
	}
	n := w.G.NumNodes()
	mask := make([]uint32, w.MaskWords)
	for i := 0; i < size; i++ {
		root := w.RNG.IntN(n)
		w.runKernel(root, mask)

		var rr RRSet
		if mask[0] != uint32(n) {
			for _, v := range mask {
				if v == uint32(n) {
					break
				}
				rr = append(rr, v)
			}
		} else {
			if w.WalkOverflows != nil {
				w.WalkOverflows.Add(1)
			}
			rr = diffusion.AddRRRSet(w.G, root, w.RNG, nil, diffusion.LinearThreshold, diffusion.Params{MaskWords: w.MaskWords})
		}
		sort.Slice(rr, func(a, b int) bool { return rr[a] < rr[b] })
		pool[offset+i] = dedupSorted(rr)
	}
	return nil
}

// runKernel is the host-side stand-in for cuda_lt_kernel: it runs the
// same bounded walk a real device kernel would, but entirely on the
// CPU, writing vertex ids into mask and padding with the sentinel n.
// A walk that fills every slot without stopping naturally is reported
// as having overflowed, by leaving mask[0] set to the sentinel.
func (w *AcceleratorWorkerLT) runKernel(root int, mask []uint32) {
	n := w.G.NumNodes()
	sentinel := uint32(n)
	for i := range mask {
		mask[i] = sentinel
	}
	visited := make(map[int]bool, len(mask))
	cur := root
	pos := 0
	overflowed := true
	for pos < len(mask) {
		if visited[cur] {
			overflowed = false
			break
		}
		visited[cur] = true
		mask[pos] = uint32(cur)
		pos++

		in := w.G.InNeighbors(cur)
		if len(in) == 0 {
			overflowed = false
			break
		}
		idx := w.RNG.IntN(len(in) + 1)
		if idx == len(in) {
			overflowed = false
			break
		}
		cur = int(in[idx])
	}
	if overflowed {
		mask[0] = sentinel
	}
}

// AcceleratorWorkerIC simulates the IC accelerator worker of spec.md
// §4.2: a device BFS solver would return a predecessor array; the
// host emits every vertex with a predecessor.
type AcceleratorWorkerIC struct {
	G      *graph.Graph
	RNG    *rand.Rand
	Params diffusion.Params
	Failer *AcceleratorFailer
}

// Batch fills pool[offset : offset+size] via the simulated IC device
// traversal.
func (w *AcceleratorWorkerIC) Batch(pool Pool, offset, size int) error {
	if w.Failer != nil && w.Failer.Fail.Load() {
		return fmt.Errorf("%w: simulated IC traversal failure", rrerrors.ErrDevice)
	}
	n := w.G.NumNodes()
	for i := 0; i < size; i++ {
		root := w.RNG.IntN(n)
		pred := w.cudaICTraverse(root)

		var rr RRSet
		rr = append(rr, uint32(root))
		for v := 0; v < n; v++ {
			if pred[v] != -1 {
				rr = append(rr, uint32(v))
			}
		}
		sort.Slice(rr, func(a, b int) bool { return rr[a] < rr[b] })
		pool[offset+i] = dedupSorted(rr)
	}
	return nil
}

// cudaICTraverse is the host-side stand-in for cuda_ic_traverse: a
// predecessor-array BFS over in-edges with per-edge independent
// activation, run on the CPU.
func (w *AcceleratorWorkerIC) cudaICTraverse(root int) []int {
	n := w.G.NumNodes()
	pred := make([]int, n)
	for i := range pred {
		pred[i] = -1
	}
	frontier := []int{root}
	for len(frontier) > 0 {
		var next []int
		for _, v := range frontier {
			for _, u32 := range w.G.InNeighbors(v) {
				u := int(u32)
				if pred[u] != -1 || u == root {
					continue
				}
				if w.RNG.Float64() < w.Params.ActivationProb {
					pred[u] = v
					next = append(next, u)
				}
			}
		}
		frontier = next
	}
	return pred
}

func dedupSorted(vs RRSet) RRSet {
	if len(vs) == 0 {
		return vs
	}
	out := vs[:1]
	for _, v := range vs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
