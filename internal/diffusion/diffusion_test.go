package diffusion

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hipdac-lab/ripples/internal/graph"
)

func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	// 0 -> 1 -> 2 -> 3
	g, err := graph.New([]uint32{0, 1, 2, 3, 3}, []uint32{1, 2, 3})
	require.NoError(t, err)
	return g
}

// P1: vertex ids in [0, n), strictly increasing, nonempty.
func TestAddRRRSetSortedAndInRange(t *testing.T) {
	g := chainGraph(t)
	rng := rand.New(rand.NewPCG(1, 2))
	p := DefaultParams()

	for _, model := range []Model{LinearThreshold, IndependentCascade} {
		rr := AddRRRSet(g, 3, rng, nil, model, p)
		require.NotEmpty(t, rr)
		for i, v := range rr {
			require.Less(t, v, uint32(g.NumNodes()))
			if i > 0 {
				require.Less(t, rr[i-1], v)
			}
		}
	}
}

func TestLinearThresholdWalkRespectsCap(t *testing.T) {
	g := chainGraph(t)
	rng := rand.New(rand.NewPCG(5, 6))
	rr := AddRRRSet(g, 3, rng, nil, LinearThreshold, Params{MaskWords: 2})
	require.LessOrEqual(t, len(rr), 2)
}

func TestIndependentCascadeZeroProbabilityStaysAtRoot(t *testing.T) {
	g := chainGraph(t)
	rng := rand.New(rand.NewPCG(9, 9))
	rr := AddRRRSet(g, 3, rng, nil, IndependentCascade, Params{ActivationProb: 0})
	require.Equal(t, []uint32{3}, []uint32(rr))
}

func TestModelString(t *testing.T) {
	require.Equal(t, "linear_threshold", LinearThreshold.String())
	require.Equal(t, "independent_cascade", IndependentCascade.String())
}
