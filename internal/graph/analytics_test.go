package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegree(t *testing.T) {
	t.Parallel()

	adj := BuildAdjacency([]*Edge{
		link("A", "B"), link("C", "B"), link("B", "D"),
	})

	in, out := adj.Degree("B")
	assert.Equal(t, 2, in)
	assert.Equal(t, 1, out)

	in, out = adj.Degree("Z")
	assert.Zero(t, in)
	assert.Zero(t, out)
}

func TestNeighbors(t *testing.T) {
	t.Parallel()

	adj := BuildAdjacency([]*Edge{
		link("B", "C"),
		typedEdge(EdgeSequence, "A", "B"),
	})

	refs := adj.Neighbors("B")
	require.Len(t, refs, 2)
	assert.Equal(t, NeighborRef{NodeID: "C", EdgeType: EdgeExplicitLink, Direction: DirectionOut}, refs[0])
	assert.Equal(t, NeighborRef{NodeID: "A", EdgeType: EdgeSequence, Direction: DirectionIn}, refs[1])
}

func TestBacklinks(t *testing.T) {
	t.Parallel()

	adj := BuildAdjacency([]*Edge{
		link("A", "C"), link("B", "C"), link("C", "D"),
	})

	back := adj.Backlinks("C")
	require.Len(t, back, 2)
	assert.Equal(t, "A", back[0].NodeID)
	assert.Equal(t, "B", back[1].NodeID)
	assert.Empty(t, adj.Backlinks("A"))
}

func TestConnectedComponents(t *testing.T) {
	t.Parallel()

	t.Run("TwoIslandsAndASingleton", func(t *testing.T) {
		t.Parallel()
		adj := BuildAdjacency([]*Edge{
			link("A", "B"), link("B", "C"),
			link("X", "Y"),
		})

		comps := adj.ConnectedComponents([]string{"A", "B", "C", "X", "Y", "lone"})

		require.Len(t, comps, 3)
		assert.Equal(t, []string{"A", "B", "C"}, comps[0])
		assert.Equal(t, []string{"X", "Y"}, comps[1])
		assert.Equal(t, []string{"lone"}, comps[2])
	})

	t.Run("DirectionIgnored", func(t *testing.T) {
		t.Parallel()
		// A→B and C→B only touch at B; weak connectivity joins them.
		adj := BuildAdjacency([]*Edge{link("A", "B"), link("C", "B")})

		comps := adj.ConnectedComponents([]string{"A", "B", "C"})

		require.Len(t, comps, 1)
		assert.Equal(t, []string{"A", "B", "C"}, comps[0])
	})

	t.Run("EmptyUniverse", func(t *testing.T) {
		t.Parallel()
		adj := BuildAdjacency([]*Edge{link("A", "B")})
		assert.Empty(t, adj.ConnectedComponents(nil))
	})
}

func TestHubs(t *testing.T) {
	t.Parallel()

	adj := BuildAdjacency([]*Edge{
		link("A", "hub"), link("B", "hub"), link("C", "hub"),
		link("A", "mid"), link("B", "mid"),
		link("hub", "leaf"),
	})

	hubs := adj.Hubs(2)

	require.Len(t, hubs, 2)
	assert.Equal(t, Hub{NodeID: "hub", InDegree: 3, OutDegree: 1}, hubs[0])
	assert.Equal(t, Hub{NodeID: "mid", InDegree: 2, OutDegree: 0}, hubs[1])
}

func TestHubsDeterministicTiebreak(t *testing.T) {
	t.Parallel()

	adj := BuildAdjacency([]*Edge{
		link("A", "zz"), link("B", "aa"),
	})

	hubs := adj.Hubs(0)

	require.Len(t, hubs, 2)
	assert.Equal(t, "aa", hubs[0].NodeID)
	assert.Equal(t, "zz", hubs[1].NodeID)
}
