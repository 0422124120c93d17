package selector

import (
	"sync"

	"github.com/hipdac-lab/ripples/internal/parallelutil"
	"github.com/hipdac-lab/ripples/internal/rrgen"
)

// Indices is the (begin, pivot, end) triple of spec.md §4.5.a's
// parallel partition: [Begin, Pivot) satisfies the keep predicate,
// [Pivot, End) violates it.
type Indices struct {
	Begin, Pivot, End int
}

// SwapRanges exchanges pool[aBegin:aBegin+n] with pool[bBegin:bBegin+n]
// element by element. Calling it twice on the same arguments restores
// the original contents (P8).
func SwapRanges(pool rrgen.Pool, aBegin, n, bBegin int) {
	for i := 0; i < n; i++ {
		pool[aBegin+i], pool[bBegin+i] = pool[bBegin+i], pool[aBegin+i]
	}
}

// Merge combines two contiguous partition results (left.End ==
// right.Begin) into one, by swapping only the minority side between
// left's covered region and right's keep region — a cross-slice
// SwapRanges of size min(|left covered|, |right keep|) — and is
// associative, so any grouping of adjacent merges yields the same
// final pivot and the same multiset (spec.md §4.5.a, §9 "Associative
// partition merge").
func Merge(pool rrgen.Pool, left, right Indices) Indices {
	leftCovered := left.End - left.Pivot
	rightKeep := right.Pivot - right.Begin

	if leftCovered <= rightKeep {
		SwapRanges(pool, left.Pivot, leftCovered, right.Pivot-leftCovered)
	} else {
		SwapRanges(pool, left.Pivot, rightKeep, right.Begin)
	}
	return Indices{Begin: left.Begin, Pivot: left.Pivot + rightKeep, End: right.End}
}

// localPartition sequentially partitions pool[lo:hi] in place so that
// RR sets for which keep returns true come first, returning the pivot
// index.
func localPartition(pool rrgen.Pool, lo, hi int, keep func(rrgen.RRSet) bool) int {
	i := lo
	for j := lo; j < hi; j++ {
		if keep(pool[j]) {
			pool[i], pool[j] = pool[j], pool[i]
			i++
		}
	}
	return i
}

// reduceTree folds a slice of contiguous Indices triples into one via
// Merge, in a balanced binary tree rather than a left-to-right scan —
// the "tree-reduction" spec.md §4.5.a names, matching the associative
// merge's own description.
func reduceTree(pool rrgen.Pool, triples []Indices) Indices {
	if len(triples) == 1 {
		return triples[0]
	}
	mid := len(triples) / 2
	left := reduceTree(pool, triples[:mid])
	right := reduceTree(pool, triples[mid:])
	return Merge(pool, left, right)
}

// Partition splits pool[begin:end) into chunks, one per goroutine, each
// locally partitioned by keep, then merges the chunk results into a
// single global partition point (spec.md §4.5.a "Parallel partition
// algorithm"). If begin == end it returns the degenerate triple
// unchanged.
func Partition(pool rrgen.Pool, begin, end int, keep func(rrgen.RRSet) bool) Indices {
	n := end - begin
	if n <= 0 {
		return Indices{Begin: begin, Pivot: begin, End: end}
	}

	ranges := parallelutil.Chunks(n)
	if len(ranges) <= 1 {
		pivot := localPartition(pool, begin, end, keep)
		return Indices{Begin: begin, Pivot: pivot, End: end}
	}

	triples := make([]Indices, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		go func(idx, lo, hi int) {
			defer wg.Done()
			pivot := localPartition(pool, begin+lo, begin+hi, keep)
			triples[idx] = Indices{Begin: begin + lo, Pivot: pivot, End: begin + hi}
		}(i, r[0], r[1])
	}
	wg.Wait()

	return reduceTree(pool, triples)
}
