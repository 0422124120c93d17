// Package rrerrors collects the sentinel errors shared across the
// sampling, compression and selection packages so callers can
// errors.Is against a stable set instead of matching strings.
package rrerrors

import "errors"

var (
	// ErrInvalidInput marks a malformed argument: a graph with
	// inconsistent CSR offsets, a negative seed budget, and so on.
	ErrInvalidInput = errors.New("ripples: invalid input")

	// ErrEmptyPool marks an operation that requires at least one RR
	// set but was handed an empty pool.
	ErrEmptyPool = errors.New("ripples: empty RR set pool")

	// ErrBudgetExceeded marks a seed budget k larger than the graph's
	// vertex count.
	ErrBudgetExceeded = errors.New("ripples: seed budget exceeds graph size")

	// ErrCodeOverflow marks a Huffman code whose bit length exceeds
	// the configured MaxEncodedBits and has no overflow slot reserved
	// for it.
	ErrCodeOverflow = errors.New("ripples: huffman code exceeds encodable width")

	// ErrClosedGenerator marks a call into a generator or worker pool
	// after Close has already run.
	ErrClosedGenerator = errors.New("ripples: generator is closed")

	// ErrConfiguration marks a pool or store misconfiguration caught
	// at construction time: mask_words not divisible by block_size,
	// max_blocks*workers exceeding a device limit, and similar.
	ErrConfiguration = errors.New("ripples: invalid configuration")

	// ErrDevice marks an accelerator kernel launch or allocation
	// failure. No retries are attempted for device errors; the whole
	// generation round is abandoned.
	ErrDevice = errors.New("ripples: device error")
)
