// Package rngsplit derives independent per-worker random sub-streams
// from one master seed, grounded in the teacher's use of math/rand/v2
// in graphutils/select_seeds.go. Every worker — CPU or accelerator —
// gets its own *rand.Rand so no entropy is ever shared across threads.
package rngsplit

import (
	"encoding/binary"
	"math/rand/v2"
)

// Master holds the two 64-bit halves of the seed every sub-stream is
// derived from.
type Master struct {
	hi, lo uint64
}

// NewMaster builds a Master seed from two caller-supplied 64-bit
// values, typically drawn once from a secure or time-based source at
// pool construction.
func NewMaster(hi, lo uint64) Master {
	return Master{hi: hi, lo: lo}
}

// Split derives the independent sub-stream for streamIndex out of
// totalStreams. The derivation mixes the master seed with the stream
// index through a fixed-output hash (splitmix64) rather than simply
// adding an offset, so adjacent stream indices do not produce
// correlated PCG states.
func (m Master) Split(totalStreams, streamIndex int) *rand.Rand {
	if streamIndex < 0 || (totalStreams > 0 && streamIndex >= totalStreams) {
		panic("rngsplit: stream index out of range")
	}
	seed1 := splitmix64(m.hi ^ uint64(streamIndex)*0x9E3779B97F4A7C15)
	seed2 := splitmix64(m.lo + uint64(streamIndex) + 1)
	return rand.New(rand.NewPCG(seed1, seed2))
}

// splitmix64 is the standard fixed-output mixing function used to
// decorrelate sequential seeds before handing them to PCG.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x = x ^ (x >> 31)
	return x
}

// Bytes returns the master seed's stable 16-byte encoding, useful for
// logging a run's seed without exposing the live *rand.Rand state.
func (m Master) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], m.hi)
	binary.BigEndian.PutUint64(b[8:16], m.lo)
	return b
}

// Layout computes the sub-stream index range owned by accelerator
// workers, which sit past all CPU worker streams per the fixed
// split-and-jump discipline: CPU workers own [0, cpuWorkers); each of
// gpuWorkers accelerator workers owns kPrimePerGPU consecutive streams
// starting at cpuWorkers+gpuWorkers.
func Layout(cpuWorkers, gpuWorkers, kPrimePerGPU int) (cpuStart, cpuCount, gpuStart, gpuCount int) {
	cpuStart = 0
	cpuCount = cpuWorkers
	gpuStart = cpuWorkers + gpuWorkers
	gpuCount = gpuWorkers * kPrimePerGPU
	return
}
