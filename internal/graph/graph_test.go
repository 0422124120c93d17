package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndTranspose(t *testing.T) {
	// 0 -> 1, 1 -> 2, 2 -> 3
	offsets := []uint32{0, 1, 2, 3, 3}
	edges := []uint32{1, 2, 3}

	g, err := New(offsets, edges)
	require.NoError(t, err)
	require.Equal(t, 4, g.NumNodes())
	require.Equal(t, 3, g.NumEdges())

	require.Equal(t, []uint32{1}, g.Neighbors(0))
	require.Equal(t, []uint32{2}, g.Neighbors(1))
	require.Equal(t, []uint32{3}, g.Neighbors(2))
	require.Empty(t, g.Neighbors(3))

	require.Empty(t, g.InNeighbors(0))
	require.Equal(t, []uint32{0}, g.InNeighbors(1))
	require.Equal(t, []uint32{1}, g.InNeighbors(2))
	require.Equal(t, []uint32{2}, g.InNeighbors(3))
}

func TestNewRejectsMismatchedOffsets(t *testing.T) {
	_, err := New([]uint32{0, 2, 2}, []uint32{0})
	require.Error(t, err)
}

func TestNewRejectsNonMonotoneOffsets(t *testing.T) {
	_, err := New([]uint32{0, 3, 1}, []uint32{0, 0, 0})
	require.Error(t, err)
}

func TestNewEmptyOffsets(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}
