package selector

import (
	"fmt"
	"sync"

	"github.com/hipdac-lab/ripples/internal/huffman"
	"github.com/hipdac-lab/ripples/internal/parallelutil"
	"github.com/hipdac-lab/ripples/internal/rrerrors"
)

// ReductionStrategy picks between the two per-iteration reduction
// strategies spec.md §4.5.b names as equally acceptable.
type ReductionStrategy int

const (
	// DenseReduction gives each goroutine its own full-width local
	// tally vector and sums them element-wise into one global vector
	// ("a native vector reduction with element-wise plus as the
	// reducer").
	DenseReduction ReductionStrategy = iota
	// SparseReduction keeps each goroutine's tally as a map of only
	// the vertices it actually visited, merging the maps sequentially
	// once every goroutine has finished — cheaper when n is much
	// larger than the distinct vertices touched per iteration.
	SparseReduction
)

// chunkResult is one goroutine's contribution for a single iteration:
// how many RR sets it found pick in, and its local tally of every
// other vertex it emitted while decoding RR sets that didn't contain
// pick.
type chunkResult struct {
	freq   int64
	dense  []int64
	sparse map[int32]int64
}

// CompressedSelect implements the compressed-pool greedy selector of
// spec.md §4.5.b: it starts from the Huffman book's globally most
// frequent vertex, decode-and-probes every live compressed RR set for
// it, and picks the next candidate as the argmax of the tallies
// accumulated from every RR set that did *not* contain the current
// pick. compressed is mutated in place (Live flags flip to false;
// eagerRelease additionally drops covered sets' buffers the moment
// they're found covered).
func CompressedSelect(compressed []huffman.CompressedRRSet, book *huffman.Book, n, k int, strategy ReductionStrategy, eagerRelease bool) (Result, error) {
	if k < 0 {
		return Result{}, fmt.Errorf("%w: k must be nonnegative", rrerrors.ErrInvalidInput)
	}
	if k > n {
		return Result{}, fmt.Errorf("%w: k (%d) exceeds graph size (%d)", rrerrors.ErrBudgetExceeded, k, n)
	}
	if len(compressed) == 0 {
		return Result{F: 0, Seeds: nil}, nil
	}

	uncovered := int64(len(compressed))
	havePick := book.HasCodes()
	nextPick := book.MaxVertex()

	var seeds []int32
	for len(seeds) < k && uncovered > 0 && havePick {
		pick := nextPick
		seeds = append(seeds, pick)

		ranges := parallelutil.Chunks(len(compressed))
		results := make([]chunkResult, len(ranges))

		var wg sync.WaitGroup
		wg.Add(len(ranges))
		for idx, r := range ranges {
			lo, hi := r[0], r[1]
			go func(idx, lo, hi int) {
				defer wg.Done()
				res := chunkResult{}
				if strategy == DenseReduction {
					res.dense = make([]int64, n)
				} else {
					res.sparse = make(map[int32]int64)
				}
				for i := lo; i < hi; i++ {
					cr := &compressed[i]
					if !cr.Live {
						continue
					}
					emitted, found := huffman.DecodeAndProbe(*cr, book, uint32(pick))
					if found {
						res.freq++
						cr.Live = false
						if eagerRelease {
							cr.Bytes = nil
							cr.Overflow = nil
						}
						continue
					}
					for _, v := range emitted {
						if strategy == DenseReduction {
							res.dense[v]++
						} else {
							res.sparse[int32(v)]++
						}
					}
				}
				results[idx] = res
			}(idx, r[0], r[1])
		}
		wg.Wait()

		var freq int64
		var dense []int64
		var sparse map[int32]int64
		if strategy == DenseReduction {
			dense = make([]int64, n)
		} else {
			sparse = make(map[int32]int64)
		}
		for _, res := range results {
			freq += res.freq
			if strategy == DenseReduction {
				for v, c := range res.dense {
					dense[v] += c
				}
			} else {
				for v, c := range res.sparse {
					sparse[v] += c
				}
			}
		}
		uncovered -= freq

		argmax, argmaxCount, have := int32(0), int64(-1), false
		if strategy == DenseReduction {
			for v, c := range dense {
				if !have || c > argmaxCount || (c == argmaxCount && int32(v) < argmax) {
					argmax, argmaxCount, have = int32(v), c, true
				}
			}
		} else {
			for v, c := range sparse {
				if !have || c > argmaxCount || (c == argmaxCount && v < argmax) {
					argmax, argmaxCount, have = v, c, true
				}
			}
		}
		if !have || argmaxCount <= 0 {
			break
		}
		nextPick = argmax
	}

	f := float64(len(compressed)-int(uncovered)) / float64(len(compressed))
	return Result{F: f, Seeds: seeds}, nil
}
