package huffman

import (
	"github.com/hipdac-lab/ripples/internal/rrgen"
)

// CompressedRRSet is the compressed form of one RR set (spec.md §3):
// an opaque bitstream, how many vertices it encodes, the vertices
// that could not be encoded, and whether the set is still uncovered.
type CompressedRRSet struct {
	Bytes     []byte
	CodeCount uint32
	Overflow  []uint32
	Live      bool
}

// bitWriter packs variable-length codes MSB-first into a growing byte
// slice, tracking the number of unused low bits in the last byte —
// the "lackBits" remainder of spec.md §4.4.
type bitWriter struct {
	buf      []byte
	lackBits uint8 // unused low bits in buf[len(buf)-1]; 0 means buf is empty or byte-aligned
}

func (w *bitWriter) writeBits(c code) {
	for pos := uint8(0); pos < c.length; pos++ {
		bit := bitAt(c, pos)
		w.writeBit(bit)
	}
}

func (w *bitWriter) writeBit(bit uint64) {
	if w.lackBits == 0 {
		w.buf = append(w.buf, 0)
		w.lackBits = 8
	}
	if bit != 0 {
		w.buf[len(w.buf)-1] |= 1 << (w.lackBits - 1)
	}
	w.lackBits--
}

// bitReader walks a packed bitstream MSB-first.
type bitReader struct {
	buf    []byte
	bitPos int
}

func (r *bitReader) readBit() uint64 {
	byteIdx := r.bitPos / 8
	bitIdx := 7 - (r.bitPos % 8)
	r.bitPos++
	return uint64((r.buf[byteIdx] >> bitIdx) & 1)
}

// Encode packs rr into a CompressedRRSet using book. The hottest
// vertex seen during construction (book.maxVertex) is swapped to the
// front of the processing order first, if present, so it lands at the
// very start of the bitstream — the mechanism that makes
// decode_and_probe's early exit effective against the very first
// candidate probed (spec.md §4.4 "Encoding").
func Encode(rr rrgen.RRSet, book *Book, lossy bool) CompressedRRSet {
	ordered := swapToFront(rr, book.maxVertex)

	w := &bitWriter{}
	out := CompressedRRSet{Live: true}
	for _, v := range ordered {
		c, ok := book.codes[int32(v)]
		if ok && int(c.length) <= book.maxEncodedBits {
			w.writeBits(c)
			out.CodeCount++
			continue
		}
		if !lossy {
			out.Overflow = append(out.Overflow, v)
		}
	}
	out.Bytes = w.buf
	return out
}

// swapToFront returns a copy of rr in which maxVertex, if present, is
// swapped with the element at index 0; every other element keeps its
// position (I4's "one permitted rearrangement").
func swapToFront(rr rrgen.RRSet, maxVertex int32) []uint32 {
	ordered := make([]uint32, len(rr))
	copy(ordered, rr)
	for i, v := range ordered {
		if v == uint32(maxVertex) {
			ordered[0], ordered[i] = ordered[i], ordered[0]
			break
		}
	}
	return ordered
}

// DecodeAndProbe walks cr's bitstream MSB-first through book's tree,
// emitting a vertex at every leaf, restarting at the root after each
// emission, until either target is emitted (early exit, found=true)
// or CodeCount vertices have been emitted. On early exit the returned
// slice holds only the vertices emitted so far; otherwise it holds
// every emitted vertex plus, in lossless mode, cr's overflow list —
// exactly the tally §4.5.b's non-found branch accumulates.
func DecodeAndProbe(cr CompressedRRSet, book *Book, target uint32) (emitted []uint32, found bool) {
	if book.root == noChild || cr.CodeCount == 0 {
		return probeOverflowOnly(cr, target)
	}
	r := &bitReader{buf: cr.Bytes}
	emitted = make([]uint32, 0, cr.CodeCount)
	for i := uint32(0); i < cr.CodeCount; i++ {
		cur := book.root
		for book.arena[cur].left != noChild || book.arena[cur].right != noChild {
			if r.readBit() == 0 {
				cur = book.arena[cur].left
			} else {
				cur = book.arena[cur].right
			}
		}
		v := uint32(book.arena[cur].vertex)
		emitted = append(emitted, v)
		if v == target {
			return emitted, true
		}
	}
	for _, v := range cr.Overflow {
		if v == target {
			return emitted, true
		}
	}
	emitted = append(emitted, cr.Overflow...)
	return emitted, false
}

func probeOverflowOnly(cr CompressedRRSet, target uint32) ([]uint32, bool) {
	for _, v := range cr.Overflow {
		if v == target {
			return nil, true
		}
	}
	return append([]uint32(nil), cr.Overflow...), false
}

// Decode fully expands cr back into an RR set (as a multiset in
// traversal order, per I4), used for the round-trip property (P5)
// rather than by the selector's hot path.
func Decode(cr CompressedRRSet, book *Book) []uint32 {
	emitted, _ := DecodeAndProbe(cr, book, ^uint32(0))
	return emitted
}
