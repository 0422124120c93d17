package rngsplit

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitProducesIndependentStreams(t *testing.T) {
	m := NewMaster(1, 2)
	r0 := m.Split(4, 0)
	r1 := m.Split(4, 1)

	a := r0.Uint64()
	b := r1.Uint64()
	require.NotEqual(t, a, b, "distinct stream indices should not produce identical first draws")
}

func TestSplitDeterministic(t *testing.T) {
	m := NewMaster(42, 7)
	r1 := m.Split(8, 3)
	r2 := m.Split(8, 3)
	require.Equal(t, r1.Uint64(), r2.Uint64())
}

func TestSplitPanicsOutOfRange(t *testing.T) {
	m := NewMaster(1, 1)
	require.Panics(t, func() { m.Split(4, 4) })
	require.Panics(t, func() { m.Split(4, -1) })
}

func TestLayoutOffsetsGPUPastCPU(t *testing.T) {
	cpuStart, cpuCount, gpuStart, gpuCount := Layout(6, 2, 32)
	require.Equal(t, 0, cpuStart)
	require.Equal(t, 6, cpuCount)
	require.Equal(t, 8, gpuStart)
	require.Equal(t, 64, gpuCount)
}

func TestBytesRoundTrip(t *testing.T) {
	m := NewMaster(0xDEADBEEF, 0xCAFEF00D)
	b := m.Bytes()
	require.Len(t, b, 16)
	require.Equal(t, uint64(0xDEADBEEF), binary.BigEndian.Uint64(b[0:8]))
	require.Equal(t, uint64(0xCAFEF00D), binary.BigEndian.Uint64(b[8:16]))
}
