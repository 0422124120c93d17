// Package vsubset provides a frontier-based parallel edge-map, the
// primitive the Independent Cascade kernel uses to advance a BFS-style
// diffusion wavefront one hop at a time without re-scanning vertices
// that are already inactive.
package vsubset

import (
	"sync"
	"sync/atomic"

	"github.com/hipdac-lab/ripples/internal/parallelutil"
)

// VertexSubset is a set of vertices held in whichever of the two
// representations is cheaper at the current frontier size: sparse (an
// explicit vertex list) or dense (a membership bitmap indexed by
// vertex id).
type VertexSubset struct {
	isSparse bool
	n        int
	sparse   []int
	dense    []bool
}

// Size returns the number of vertices currently in the subset.
func (vs *VertexSubset) Size() int { return vs.n }

// IsSparse reports the subset's current representation.
func (vs *VertexSubset) IsSparse() bool { return vs.isSparse }

// EmptySparse returns an empty sparse subset.
func EmptySparse() VertexSubset {
	return VertexSubset{isSparse: true}
}

// Sparse wraps an existing vertex list as a sparse subset.
func Sparse(vertices []int) VertexSubset {
	return VertexSubset{isSparse: true, n: len(vertices), sparse: vertices}
}

// Single returns a sparse subset containing exactly v.
func Single(v int) VertexSubset {
	return VertexSubset{isSparse: true, n: 1, sparse: []int{v}}
}

// Dense wraps an existing membership bitmap as a dense subset.
func Dense(mask []bool) VertexSubset {
	return VertexSubset{isSparse: false, n: parallelutil.CountTrue(mask), dense: mask}
}

// ToSeq returns the subset's members as a slice, packing the dense
// bitmap in parallel when the subset is held densely.
func (vs *VertexSubset) ToSeq() []int {
	if vs.isSparse {
		return vs.sparse
	}
	return parallelutil.PackIndex(vs.dense)
}

// Apply runs f concurrently over every member of the subset.
func (vs *VertexSubset) Apply(f func(int)) {
	if vs.isSparse {
		var wg sync.WaitGroup
		wg.Add(len(vs.sparse))
		for _, v := range vs.sparse {
			go func(u int) {
				defer wg.Done()
				f(u)
			}(v)
		}
		wg.Wait()
		return
	}
	parallelutil.For(len(vs.dense), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if vs.dense[i] {
				f(i)
			}
		}
	})
}

// EdgeMap advances a VertexSubset one hop along a graph's edges. E is
// the edge payload type: a bare vertex id for IC's unweighted wave, or
// a (vertex, weight) pair for weighted variants.
type EdgeMap[E any] struct {
	n    int
	m    int64
	fa   func(u, v int, e E, backwards bool) bool
	get  func(e E) int
	cond func(v int) bool
	g    [][]E
	gt   [][]E
}

// New builds an EdgeMap over forward adjacency g and transpose gt. fa
// decides whether an edge fires (and may record side effects such as
// activation or a per-vertex random threshold draw); cond filters
// which target vertices are even eligible; get extracts the target
// vertex id from an edge payload.
func New[E any](g, gt [][]E, fa func(u, v int, e E, backwards bool) bool, cond func(v int) bool, get func(e E) int) *EdgeMap[E] {
	n := len(g)
	var total int64
	parallelutil.For(n, func(lo, hi int) {
		var local int64
		for i := lo; i < hi; i++ {
			local += int64(len(g[i]))
		}
		atomic.AddInt64(&total, local)
	})
	return &EdgeMap[E]{n: n, m: total, fa: fa, get: get, cond: cond, g: g, gt: gt}
}

func (em *EdgeMap[E]) sparse(vertices []int) []int {
	var wg sync.WaitGroup
	var mu sync.Mutex
	res := make([]int, 0)
	wg.Add(len(vertices))
	for _, u := range vertices {
		go func(src int) {
			defer wg.Done()
			var local []int
			for _, e := range em.g[src] {
				v := em.get(e)
				if em.cond(v) && em.fa(src, v, e, false) {
					local = append(local, v)
				}
			}
			if len(local) > 0 {
				mu.Lock()
				res = append(res, local...)
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	return res
}

func (em *EdgeMap[E]) denseMap(vertices []bool, exitEarly bool) []bool {
	result := make([]bool, em.n)
	parallelutil.For(em.n, func(lo, hi int) {
		for v := lo; v < hi; v++ {
			if !em.cond(v) {
				continue
			}
			found := false
			for _, e := range em.gt[v] {
				u := em.get(e)
				if vertices[u] && em.fa(u, v, e, true) {
					found = true
					if exitEarly {
						break
					}
				}
			}
			result[v] = found
		}
	})
	return result
}

// Run computes the next frontier from vs, switching representation
// whenever the cheaper side of the sparse/dense cost model flips,
// mirroring Ligra's edgeMap heuristic.
func (em *EdgeMap[E]) Run(vs VertexSubset, exitEarly bool) VertexSubset {
	if vs.isSparse {
		var d int64
		parallelutil.For(len(vs.sparse), func(lo, hi int) {
			var local int64
			for i := lo; i < hi; i++ {
				local += int64(len(em.g[vs.sparse[i]]))
			}
			atomic.AddInt64(&d, local)
		})
		if int64(vs.n)+d > em.m/10 {
			mask := make([]bool, em.n)
			for _, i := range vs.sparse {
				mask[i] = true
			}
			return Dense(em.denseMap(mask, exitEarly))
		}
		return Sparse(em.sparse(vs.sparse))
	}
	if vs.n > em.n/20 {
		return Dense(em.denseMap(vs.dense, exitEarly))
	}
	return Sparse(em.sparse(vs.ToSeq()))
}
