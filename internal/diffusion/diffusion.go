// Package diffusion supplies minimal sequential reference kernels for
// the two diffusion models an RR set can be sampled under. Production
// diffusion microkernels are an external collaborator (see AddRRRSet's
// contract); these kernels exist so the rest of the core has something
// concrete to generate pools against in tests and the demo CLI.
package diffusion

import (
	"math/rand/v2"
	"sort"

	"github.com/hipdac-lab/ripples/internal/bitops"
	"github.com/hipdac-lab/ripples/internal/graph"
	"github.com/hipdac-lab/ripples/internal/vsubset"
)

// Model names the diffusion model an RR set is sampled under.
type Model int

const (
	LinearThreshold Model = iota
	IndependentCascade
)

func (m Model) String() string {
	switch m {
	case LinearThreshold:
		return "linear_threshold"
	case IndependentCascade:
		return "independent_cascade"
	default:
		return "unknown"
	}
}

// Params bundles the tunables a reference kernel needs beyond the
// graph and the root: LT's hard walk-length cap, and IC's per-edge
// independent activation probability.
type Params struct {
	// MaskWords bounds an LT walk's length, mirroring the accelerator
	// kernel's fixed-width per-walk mask array (one vertex per word).
	MaskWords int
	// ActivationProb is IC's per-edge independent activation chance.
	ActivationProb float64
}

// DefaultParams returns the reference kernel's defaults: a 64-word LT
// walk cap and a 0.1 IC activation probability.
func DefaultParams() Params {
	return Params{MaskWords: 64, ActivationProb: 0.1}
}

// AddRRRSet appends the RR set rooted at root to out, sorts it
// ascending and removes duplicates, and returns the extended slice.
// It is deterministic given rng's state, never reads rng concurrently
// with another call on the same *rand.Rand, and never mutates g.
func AddRRRSet(g *graph.Graph, root int, rng *rand.Rand, out []uint32, model Model, p Params) []uint32 {
	switch model {
	case LinearThreshold:
		out = linearThresholdWalk(g, root, rng, out, p.MaskWords)
	case IndependentCascade:
		out = independentCascadeWalk(g, root, rng, out, p.ActivationProb)
	default:
		out = append(out, uint32(root))
	}
	return sortDedup(out)
}

// linearThresholdWalk is grounded in cluster_bfs.go's bit-parallel
// multi-seed BFS, specialized to a single root and a hard walk-length
// cap: at each step the walk selects one uniformly random live
// in-edge (LT's single-active-parent semantics) and stops at a dead
// end, a revisit, or the cap.
func linearThresholdWalk(g *graph.Graph, root int, rng *rand.Rand, out []uint32, maskWords int) []uint32 {
	if maskWords <= 0 {
		maskWords = 1
	}
	visited := make(map[int]bool, maskWords)
	cur := root
	for step := 0; step < maskWords; step++ {
		if visited[cur] {
			break
		}
		visited[cur] = true
		out = append(out, uint32(cur))

		in := g.InNeighbors(cur)
		if len(in) == 0 {
			break
		}
		// LT picks at most one live in-edge uniformly; model the
		// "no live edge fires" case with probability 1/(len(in)+1).
		idx := rng.IntN(len(in) + 1)
		if idx == len(in) {
			break
		}
		cur = int(in[idx])
	}
	return out
}

// independentCascadeWalk is grounded in seq_bfs.go's SequentialBFS
// generalized to Ligra's own vertexSubset/edgeMap frontier
// (internal/vsubset, adapted from ligra_light_parallel.go) instead of
// a flat goroutine-free loop: each round expands the live frontier one
// hop backward along in-edges, independently activating each edge with
// probability p. Concurrent claims on a newly activated vertex are
// resolved with the same CAS-retry bit ops (internal/bitops) the
// teacher's own bit-parallel frontier uses, so two goroutines racing
// to claim the same vertex in the same round still emit it exactly
// once. The shared *rand.Rand is drawn from exactly once, sequentially,
// to seed a per-edge activation hash, since concurrent edgeMap workers
// cannot share one *rand.Rand without racing.
func independentCascadeWalk(g *graph.Graph, root int, rng *rand.Rand, out []uint32, p float64) []uint32 {
	n := g.NumNodes()
	if n == 0 {
		return append(out, uint32(root))
	}
	visited := make([]uint64, (n+63)/64)
	bitops.TestAndSet(&visited[root/64], uint(root%64))
	out = append(out, uint32(root))

	seed := rng.Uint64()
	inAdj, outAdj := g.BackwardAdjacencyLists()
	em := vsubset.New(inAdj, outAdj,
		func(u, v int, e uint32, backwards bool) bool {
			// The candidate edge is always (v -> u) in the original
			// graph's orientation: the sparse step reaches v from
			// u's in-neighbor list, the dense step reaches v from
			// u's membership in v's out-neighbor list.
			if !edgeActive(seed, v, u, p) {
				return false
			}
			return !bitops.TestAndSet(&visited[v/64], uint(v%64))
		},
		func(v int) bool { return !bitops.IsSet(&visited[v/64], uint(v%64)) },
		func(e uint32) int { return int(e) },
	)

	frontier := vsubset.Single(root)
	for frontier.Size() > 0 {
		next := em.Run(frontier, false)
		for _, v := range next.ToSeq() {
			out = append(out, uint32(v))
		}
		frontier = next
	}
	return out
}

// edgeActive decides, deterministically given seed and the edge
// endpoints, whether the directed edge (from -> to) is live under
// independent-cascade activation with probability p. It replaces a
// shared *rand.Rand draw with a fixed-output hash of the edge identity
// so independentCascadeWalk's concurrent edgeMap workers can each
// decide an edge's fate without any shared mutable state.
func edgeActive(seed uint64, from, to int, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	h := mix64(seed ^ uint64(uint32(from))<<32 ^ uint64(uint32(to)))
	frac := float64(h>>11) / (1 << 53)
	return frac < p
}

// mix64 is the splitmix64 fixed-output mixing step (also used by
// internal/rngsplit to decorrelate RNG sub-streams), reused here to
// decorrelate per-edge activation draws instead.
func mix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x = x ^ (x >> 31)
	return x
}

func sortDedup(vs []uint32) []uint32 {
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	out := vs[:0]
	var last uint32
	hasLast := false
	for _, v := range vs {
		if hasLast && v == last {
			continue
		}
		out = append(out, v)
		last = v
		hasLast = true
	}
	return out
}
