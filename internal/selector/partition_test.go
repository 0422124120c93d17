package selector

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hipdac-lab/ripples/internal/rrgen"
)

func TestSwapRangesIsItsOwnInverse(t *testing.T) {
	pool := rrgen.Pool{{1}, {2}, {3}, {4}, {5}, {6}}
	orig := make(rrgen.Pool, len(pool))
	copy(orig, pool)

	SwapRanges(pool, 0, 2, 4)
	SwapRanges(pool, 0, 2, 4)
	require.Equal(t, orig, pool)
}

func keepEven(rr rrgen.RRSet) bool { return rr[0]%2 == 0 }

func TestLocalPartitionPreservesMultiset(t *testing.T) {
	pool := rrgen.Pool{{1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}}
	pivot := localPartition(pool, 0, len(pool), keepEven)

	for i := 0; i < pivot; i++ {
		require.Zero(t, pool[i][0]%2)
	}
	for i := pivot; i < len(pool); i++ {
		require.NotZero(t, pool[i][0] % 2)
	}

	var got []uint32
	for _, rr := range pool {
		got = append(got, rr[0])
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8}, got)
}

func TestMergeProducesCorrectPivotLargeLeftCovered(t *testing.T) {
	// left has a large covered region, right a small keep region:
	// exercises the leftCovered <= rightKeep branch's complement.
	left := Indices{Begin: 0, Pivot: 1, End: 6}   // covered size 5
	right := Indices{Begin: 6, Pivot: 7, End: 10} // keep size 1

	pool := make(rrgen.Pool, 10)
	for i := range pool {
		pool[i] = rrgen.RRSet{uint32(i)}
	}
	merged := Merge(pool, left, right)
	require.Equal(t, 0, merged.Begin)
	require.Equal(t, 10, merged.End)
	require.Equal(t, left.Pivot+(right.Pivot-right.Begin), merged.Pivot)
}

func TestMergeOtherBranch(t *testing.T) {
	// left has a small covered region, right a large keep region.
	left := Indices{Begin: 0, Pivot: 4, End: 5}   // covered size 1
	right := Indices{Begin: 5, Pivot: 9, End: 10} // keep size 4

	pool := make(rrgen.Pool, 10)
	for i := range pool {
		pool[i] = rrgen.RRSet{uint32(i)}
	}
	merged := Merge(pool, left, right)
	require.Equal(t, left.Pivot+(right.Pivot-right.Begin), merged.Pivot)
}

// P7: Partition at thread counts 1, 2, 4, 8 (driven indirectly by
// pool size, since Chunks sizes ranges off runtime.GOMAXPROCS) always
// yields the same multiset split by the keep predicate.
func TestPartitionPreservesMultisetAcrossSizes(t *testing.T) {
	for _, size := range []int{1, 2, 4, 8, 37, 128, 1000} {
		pool := make(rrgen.Pool, size)
		for i := range pool {
			pool[i] = rrgen.RRSet{uint32(i)}
		}
		idx := Partition(pool, 0, size, keepEven)

		var kept, dropped []uint32
		for i := idx.Begin; i < idx.Pivot; i++ {
			kept = append(kept, pool[i][0])
		}
		for i := idx.Pivot; i < idx.End; i++ {
			dropped = append(dropped, pool[i][0])
		}
		sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
		sort.Slice(dropped, func(i, j int) bool { return dropped[i] < dropped[j] })

		for _, v := range kept {
			require.Zero(t, v%2)
		}
		for _, v := range dropped {
			require.NotZero(t, v % 2)
		}
		require.Equal(t, size, len(kept)+len(dropped))
	}
}

func TestPartitionDegenerateRange(t *testing.T) {
	pool := rrgen.Pool{{1}, {2}}
	idx := Partition(pool, 1, 1, keepEven)
	require.Equal(t, Indices{Begin: 1, Pivot: 1, End: 1}, idx)
}
