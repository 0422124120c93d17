package huffman

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hipdac-lab/ripples/internal/rrgen"
)

func samplePool() rrgen.Pool {
	return rrgen.Pool{
		{1, 2, 3},
		{2, 3},
		{2},
		{2, 4},
		{5},
	}
}

func TestBuildBookPicksMostFrequentAsMaxVertex(t *testing.T) {
	book := BuildBook(samplePool(), MaxEncodedBits)
	require.True(t, book.HasCodes())
	require.EqualValues(t, 2, book.MaxVertex())
}

// BuildBook ranges over a Go map to tally frequencies, so a tied max
// frequency must break on the smallest vertex id regardless of
// iteration order, not whichever tied key the map happens to visit
// first (CompressedSelect seeds its first pick from MaxVertex, so a
// nondeterministic tie would make HuffmanFind diverge from
// FindMostInfluential on any pool with a tied max-coverage vertex).
func TestBuildBookBreaksFrequencyTieOnSmallestVertex(t *testing.T) {
	pool := rrgen.Pool{{0}, {0, 1}, {1, 2}, {3}}
	for i := 0; i < 20; i++ {
		book := BuildBook(pool, MaxEncodedBits)
		require.EqualValues(t, 0, book.MaxVertex())
	}
}

func TestBuildBookEmptyPoolHasNoCodes(t *testing.T) {
	book := BuildBook(nil, MaxEncodedBits)
	require.False(t, book.HasCodes())
}

func TestBuildBookSingleVertexGetsZeroLengthCode(t *testing.T) {
	book := BuildBook(rrgen.Pool{{7}, {7}, {7}}, MaxEncodedBits)
	require.EqualValues(t, 7, book.MaxVertex())
	cr := Encode(rrgen.RRSet{7}, book, false)
	require.Equal(t, uint32(1), cr.CodeCount)
	require.Empty(t, cr.Bytes)

	decoded := Decode(cr, book)
	require.Equal(t, []uint32{7}, decoded)
}

// P5: encode then decode returns the same multiset of vertices.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)

	for _, rr := range pool {
		cr := Encode(rr, book, false)
		got := Decode(cr, book)
		require.ElementsMatch(t, []uint32(rr), got)
	}
}

func TestEncodeMovesHottestVertexToFront(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, false)
	decoded := Decode(cr, book)
	require.NotEmpty(t, decoded)
	require.EqualValues(t, book.MaxVertex(), decoded[0])
}

func TestEncodeOverflowsCodesLongerThanCutoff(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, 0) // 0 selects the default MaxEncodedBits cutoff

	// Force a cutoff of 0 bits so every code, even a 1-bit one, overflows.
	book.maxEncodedBits = 0

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, false)
	require.NotEmpty(t, cr.Overflow)
	require.Zero(t, cr.CodeCount)

	decoded := Decode(cr, book)
	sort.Slice(decoded, func(i, j int) bool { return decoded[i] < decoded[j] })
	want := []uint32{1, 2, 3}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, decoded)
}

func TestEncodeLossyDropsOverflow(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)
	book.maxEncodedBits = 0

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, true)
	require.Empty(t, cr.Overflow)
	require.Zero(t, cr.CodeCount)
}

func TestDecodeAndProbeEarlyExit(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, false)
	emitted, found := DecodeAndProbe(cr, book, uint32(book.MaxVertex()))
	require.True(t, found)
	require.Equal(t, book.MaxVertex(), int32(emitted[len(emitted)-1]))
}

func TestDecodeAndProbeMissTargetScansOverflowToo(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)
	book.maxEncodedBits = 0 // forces 1 into overflow

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, false)
	_, found := DecodeAndProbe(cr, book, 1)
	require.True(t, found)
}

func TestDecodeAndProbeNotFound(t *testing.T) {
	pool := samplePool()
	book := BuildBook(pool, MaxEncodedBits)

	cr := Encode(rrgen.RRSet{1, 2, 3}, book, false)
	_, found := DecodeAndProbe(cr, book, 999)
	require.False(t, found)
}
