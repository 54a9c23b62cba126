package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond is A→B→D plus A→C→D: two disjoint 2-hop routes.
func diamond() []*Edge {
	return []*Edge{
		link("A", "B"), link("B", "D"),
		link("A", "C"), link("C", "D"),
	}
}

func TestPathScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		edges    []EdgeType
		expected float64
	}{
		{"Empty", []EdgeType{}, 0},
		{"AllExplicitEqualsHopCount", []EdgeType{EdgeExplicitLink, EdgeExplicitLink, EdgeExplicitLink}, 3.0},
		{"MixedTypes", []EdgeType{EdgeSequence, EdgeCauses, EdgeSemantic}, 3.6},
		{"BacklinkAndAlias", []EdgeType{EdgeBacklink, EdgeAlias}, 2.1},
		{"Hierarchy", []EdgeType{EdgeHierarchy}, 1.15},
		{"MentionAndSetupPayoff", []EdgeType{EdgeMention, EdgeSetupPayoff}, 2.5},
		{"SemanticSuggestion", []EdgeType{EdgeSemanticSuggestion}, 1.4},
		{"UnknownType", []EdgeType{EdgeType("wormhole")}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, PathScore(tt.edges), 1e-9)
		})
	}
}

func TestIsSimplePath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSimplePath([]string{"A", "B", "C"}))
	assert.True(t, IsSimplePath([]string{"A"}))
	assert.True(t, IsSimplePath(nil))
	assert.False(t, IsSimplePath([]string{"A", "B", "A"}))
}

func TestJaccardOverlap(t *testing.T) {
	t.Parallel()

	t.Run("IdenticalSetsOverlapFully", func(t *testing.T) {
		t.Parallel()
		p := PathNodeSet([]string{"A", "B", "C"}, false)
		assert.Equal(t, 1.0, JaccardOverlap(p, p))
	})

	t.Run("DisjointSetsDoNotOverlap", func(t *testing.T) {
		t.Parallel()
		a := PathNodeSet([]string{"A", "B"}, false)
		b := PathNodeSet([]string{"C", "D"}, false)
		assert.Equal(t, 0.0, JaccardOverlap(a, b))
	})

	t.Run("PartialOverlap", func(t *testing.T) {
		t.Parallel()
		a := PathNodeSet([]string{"A", "B", "C"}, false)
		b := PathNodeSet([]string{"B", "C", "D"}, false)
		assert.InDelta(t, 0.5, JaccardOverlap(a, b), 1e-9)
	})

	t.Run("EndpointExclusionIgnoresSharedEnds", func(t *testing.T) {
		t.Parallel()
		// Both paths run A→…→D; only interiors should count.
		a := PathNodeSet([]string{"A", "B", "D"}, true)
		b := PathNodeSet([]string{"A", "C", "D"}, true)
		assert.Equal(t, map[string]bool{"B": true}, a)
		assert.Equal(t, 0.0, JaccardOverlap(a, b))
	})
}

func TestFindKShortestPaths(t *testing.T) {
	t.Parallel()

	t.Run("DiamondReturnsBothRoutes", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths(diamond(), "A", "D", PathQuery{
			K: 2, MaxDepth: 4, MaxExtraHops: 1, OverlapThreshold: 0.5, MaxCandidates: 50,
		})

		assert.Equal(t, ReasonFoundAll, result.Reason)
		require.Len(t, result.Paths, 2)
		for _, p := range result.Paths {
			assert.Equal(t, 2, p.HopCount)
			assert.Equal(t, "A", p.Nodes[0])
			assert.Equal(t, "D", p.Nodes[len(p.Nodes)-1])
			assert.True(t, IsSimplePath(p.Nodes))
		}
	})

	t.Run("NoPath", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths([]*Edge{link("A", "B")}, "A", "Z", PathQuery{K: 2, MaxDepth: 4})

		assert.Equal(t, ReasonNoPath, result.Reason)
		assert.Empty(t, result.Paths)
	})

	t.Run("SelfPathIsTrivial", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths(diamond(), "A", "A", PathQuery{K: 1, MaxDepth: 4})

		assert.Equal(t, ReasonFoundAll, result.Reason)
		require.Len(t, result.Paths, 1)
		assert.Equal(t, []string{"A"}, result.Paths[0].Nodes)
		assert.Equal(t, 0, result.Paths[0].HopCount)
	})

	t.Run("ZeroExtraHopsKeepsOnlyShortest", func(t *testing.T) {
		t.Parallel()
		// Shortest is 1 hop; the B route is 2 hops and must be excluded.
		edges := []*Edge{
			link("A", "D"),
			link("A", "B"), link("B", "D"),
		}
		result := FindKShortestPaths(edges, "A", "D", PathQuery{
			K: 3, MaxDepth: 4, MaxExtraHops: 0, OverlapThreshold: 1.0, MaxCandidates: 50,
		})

		require.Len(t, result.Paths, 1)
		assert.Equal(t, 1, result.Paths[0].HopCount)
		assert.Equal(t, ReasonExhaustedCandidates, result.Reason)
	})

	t.Run("ExtraHopsAdmitLongerRoutes", func(t *testing.T) {
		t.Parallel()
		edges := []*Edge{
			link("A", "D"),
			link("A", "B"), link("B", "D"),
		}
		result := FindKShortestPaths(edges, "A", "D", PathQuery{
			K: 2, MaxDepth: 4, MaxExtraHops: 1, OverlapThreshold: 1.0, MaxCandidates: 50,
		})

		assert.Equal(t, ReasonFoundAll, result.Reason)
		require.Len(t, result.Paths, 2)
		assert.Equal(t, 1, result.Paths[0].HopCount)
		assert.Equal(t, 2, result.Paths[1].HopCount)
	})

	t.Run("SortedByHopsThenScore", func(t *testing.T) {
		t.Parallel()
		// Two 2-hop routes with different penalties: the explicit one
		// must come first.
		edges := []*Edge{
			typedEdge(EdgeSemantic, "A", "B"), typedEdge(EdgeSemantic, "B", "D"),
			link("A", "C"), link("C", "D"),
		}
		result := FindKShortestPaths(edges, "A", "D", PathQuery{
			K: 2, MaxDepth: 4, MaxExtraHops: 0, OverlapThreshold: 1.0, MaxCandidates: 50,
		})

		require.Len(t, result.Paths, 2)
		assert.Equal(t, []string{"A", "C", "D"}, result.Paths[0].Nodes)
		assert.InDelta(t, 2.0, result.Paths[0].Score, 1e-9)
		assert.Equal(t, []string{"A", "B", "D"}, result.Paths[1].Nodes)
		assert.InDelta(t, 2.6, result.Paths[1].Score, 1e-9)
	})

	t.Run("DiversityFilterRejectsOverlappingRoutes", func(t *testing.T) {
		t.Parallel()
		// Interiors {B,C} and {B,E} share B; with a zero threshold the
		// second route is rejected.
		edges := []*Edge{
			link("A", "B"), link("B", "C"), link("C", "D"),
			link("B", "E"), link("E", "D"),
		}
		result := FindKShortestPaths(edges, "A", "D", PathQuery{
			K: 2, MaxDepth: 5, MaxExtraHops: 1, OverlapThreshold: 0, MaxCandidates: 50,
		})

		assert.Equal(t, ReasonDiversityFilter, result.Reason)
		require.Len(t, result.Paths, 1)
	})

	t.Run("ExhaustedCandidatesWhenPoolTooSmall", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths(diamond(), "A", "D", PathQuery{
			K: 5, MaxDepth: 4, MaxExtraHops: 2, OverlapThreshold: 1.0, MaxCandidates: 50,
		})

		assert.Equal(t, ReasonExhaustedCandidates, result.Reason)
		assert.Len(t, result.Paths, 2)
	})

	t.Run("MaxCandidatesCapsEnumeration", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths(diamond(), "A", "D", PathQuery{
			K: 2, MaxDepth: 4, MaxExtraHops: 1, OverlapThreshold: 1.0, MaxCandidates: 1,
		})

		assert.Len(t, result.Paths, 1)
		assert.Equal(t, ReasonExhaustedCandidates, result.Reason)
	})

	t.Run("EdgeTypeFilterRestrictsTraversal", func(t *testing.T) {
		t.Parallel()
		edges := []*Edge{
			link("A", "B"), link("B", "D"),
			typedEdge(EdgeSequence, "A", "D"),
		}
		result := FindKShortestPaths(edges, "A", "D", PathQuery{
			K: 2, MaxDepth: 4, MaxExtraHops: 2, OverlapThreshold: 1.0, MaxCandidates: 50,
			EdgeTypes: []EdgeType{EdgeExplicitLink},
		})

		require.Len(t, result.Paths, 1)
		assert.Equal(t, []string{"A", "B", "D"}, result.Paths[0].Nodes)
	})

	t.Run("DefaultsAppliedToZeroValues", func(t *testing.T) {
		t.Parallel()
		result := FindKShortestPaths(diamond(), "A", "D", PathQuery{})

		// K defaults to 3; the diamond only has two routes.
		assert.Equal(t, ReasonExhaustedCandidates, result.Reason)
		assert.Len(t, result.Paths, 2)
	})
}
