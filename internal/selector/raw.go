// Package selector implements the greedy seed selector (C5), over
// both the raw RR-set pool and the compressed Huffman store.
package selector

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/hipdac-lab/ripples/internal/parallelutil"
	"github.com/hipdac-lab/ripples/internal/rrerrors"
	"github.com/hipdac-lab/ripples/internal/rrgen"
)

// contains reports whether v is present in the sorted RR set rr,
// using binary search since every RR set is sorted ascending (I1).
func contains(rr rrgen.RRSet, v int32) bool {
	i := sort.Search(len(rr), func(i int) bool { return rr[i] >= uint32(v) })
	return i < len(rr) && rr[i] == uint32(v)
}

// CountOccurrences populates coverage[v] by scanning pool[begin:end]
// in parallel, each goroutine owning a disjoint vertex range and using
// binary search to clip each RR set's contribution to that range
// (spec.md §4.5.a "Initialization").
func CountOccurrences(pool rrgen.Pool, begin, end, n int) []int64 {
	coverage := make([]int64, n)
	ranges := parallelutil.Chunks(n)
	done := make(chan struct{}, len(ranges))
	for _, r := range ranges {
		lo, hi := r[0], r[1]
		go func() {
			for i := begin; i < end; i++ {
				rr := pool[i]
				start := sort.Search(len(rr), func(j int) bool { return rr[j] >= uint32(lo) })
				for j := start; j < len(rr) && rr[j] < uint32(hi); j++ {
					coverage[rr[j]]++
				}
			}
			done <- struct{}{}
		}()
	}
	for range ranges {
		<-done
	}
	return coverage
}

// heapEntry is a (vertex, last-known-coverage) priority-queue entry
// (spec.md §3). Entries become stale when coverage counters drop; the
// selector resolves staleness lazily on pop.
type heapEntry struct {
	vertex   int32
	coverage int64
}

// maxHeap is a container/heap max-heap by coverage, breaking ties by
// the smallest vertex id (spec.md §4.5.b "Tie-breaking").
type maxHeap []heapEntry

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].coverage != h[j].coverage {
		return h[i].coverage > h[j].coverage
	}
	return h[i].vertex < h[j].vertex
}
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(heapEntry)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Result is the contract both selector implementations share: a
// coverage fraction and at most k seeds (spec.md §4.5).
type Result struct {
	F     float64
	Seeds []int32
}

// RawSelect implements the raw-pool greedy selector of spec.md §4.5.a:
// a lazy max-heap over coverage counters, a moving end-pointer over
// the live prefix of pool, and the parallel partition/counter-update
// step on every pick. pool is mutated in place (its RR sets are
// reordered, never deleted).
func RawSelect(pool rrgen.Pool, n, k int) (Result, error) {
	if k < 0 {
		return Result{}, fmt.Errorf("%w: k must be nonnegative", rrerrors.ErrInvalidInput)
	}
	if k > n {
		return Result{}, fmt.Errorf("%w: k (%d) exceeds graph size (%d)", rrerrors.ErrBudgetExceeded, k, n)
	}
	if len(pool) == 0 {
		return Result{F: 0, Seeds: nil}, nil
	}

	end := len(pool)
	uncovered := int64(len(pool))
	coverage := CountOccurrences(pool, 0, end, n)

	h := make(maxHeap, 0, n)
	for v := 0; v < n; v++ {
		if coverage[v] > 0 {
			h = append(h, heapEntry{vertex: int32(v), coverage: coverage[v]})
		}
	}
	heap.Init(&h)

	var seeds []int32
	for len(seeds) < k && uncovered > 0 && h.Len() > 0 {
		entry := heap.Pop(&h).(heapEntry)
		if entry.coverage > coverage[entry.vertex] {
			// Lazy refresh: the popped key is stale; push the
			// corrected value and retry (spec.md §4.5.a step 2).
			if coverage[entry.vertex] > 0 {
				heap.Push(&h, heapEntry{vertex: entry.vertex, coverage: coverage[entry.vertex]})
			}
			continue
		}

		v := entry.vertex
		seeds = append(seeds, v)
		uncovered -= coverage[v]

		idx := Partition(pool, 0, end, func(rr rrgen.RRSet) bool { return !contains(rr, v) })
		itr := idx.Pivot

		if end-itr < itr {
			decrementCoverage(coverage, pool[itr:end])
		} else {
			for i := range coverage {
				coverage[i] = 0
			}
			fresh := CountOccurrences(pool, 0, itr, n)
			copy(coverage, fresh)
		}
		end = itr
	}

	f := float64(len(pool)-int(uncovered)) / float64(len(pool))
	return Result{F: f, Seeds: seeds}, nil
}

// decrementCoverage subtracts the per-vertex counts contributed by
// newlyCovered from coverage (spec.md §4.5.a step 6, decrement
// branch), the cheaper direction when the newly covered region is
// smaller than the remaining live prefix.
func decrementCoverage(coverage []int64, newlyCovered rrgen.Pool) {
	for _, rr := range newlyCovered {
		for _, v := range rr {
			coverage[v]--
		}
	}
}
