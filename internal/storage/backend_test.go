package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

func testNode(id, title, path string) *graph.Node {
	now := time.Now()
	return &graph.Node{
		ID:        id,
		Type:      graph.NodeNote,
		Title:     title,
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testEdge(t graph.EdgeType, source, target string) *graph.Edge {
	return &graph.Edge{
		Type:       t,
		Source:     source,
		Target:     target,
		Provenance: graph.ProvenanceExplicit,
	}
}

func TestMemoryBackend_Contract(t *testing.T) {
	t.Parallel()

	runBackendTests(t, func(t *testing.T) Backend {
		return NewMemoryBackend()
	})
}

func TestBadgerBackend_Contract(t *testing.T) {
	t.Parallel()

	runBackendTests(t, func(t *testing.T) Backend {
		backend := NewBadgerBackend()
		err := backend.Initialize(filepath.Join(t.TempDir(), "badger"), false)
		require.NoError(t, err)
		t.Cleanup(func() { backend.Close() })
		return backend
	})
}

// runBackendTests exercises the Backend contract. Every subtest gets a
// fresh backend, so implementations must agree on all of it.
func runBackendTests(t *testing.T, open func(t *testing.T) Backend) {
	ctx := context.Background()

	t.Run("CreateAndFindNode", func(t *testing.T) {
		be := open(t)

		node := testNode("n1", "Moby Dick", "notes/moby.md")
		require.NoError(t, be.CreateNode(ctx, node))

		byID, err := be.FindByID(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "Moby Dick", byID.Title)
		assert.Equal(t, "notes/moby.md", byID.Path)

		byPath, err := be.FindByPath(ctx, "notes/moby.md")
		require.NoError(t, err)
		assert.Equal(t, "n1", byPath.ID)

		_, err = be.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = be.FindByPath(ctx, "missing.md")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateRejectsDuplicates", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "a.md")))

		err := be.CreateNode(ctx, testNode("n1", "Other", "b.md"))
		assert.ErrorIs(t, err, ErrExists)

		err = be.CreateNode(ctx, testNode("n2", "Two", "a.md"))
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("UpdateNodeReindexes", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "Old Title", "a.md")))

		updated := testNode("n1", "New Title", "moved/a.md")
		require.NoError(t, be.UpdateNode(ctx, updated))

		byOld, err := be.FindByTitle(ctx, "old title")
		require.NoError(t, err)
		assert.Empty(t, byOld)

		byNew, err := be.FindByTitle(ctx, "NEW TITLE")
		require.NoError(t, err)
		require.Len(t, byNew, 1)
		assert.Equal(t, "n1", byNew[0].ID)

		_, err = be.FindByPath(ctx, "a.md")
		assert.ErrorIs(t, err, ErrNotFound)

		moved, err := be.FindByPath(ctx, "moved/a.md")
		require.NoError(t, err)
		assert.Equal(t, "n1", moved.ID)

		err = be.UpdateNode(ctx, testNode("ghost-id", "X", "x.md"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindByTitleNormalizes", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "Moby Dick", "a.md")))

		for _, query := range []string{"moby dick", "MOBY DICK", "  Moby   Dick  "} {
			nodes, err := be.FindByTitle(ctx, query)
			require.NoError(t, err)
			require.Len(t, nodes, 1, "query %q", query)
			assert.Equal(t, "n1", nodes[0].ID)
		}
	})

	t.Run("FindByTitleOrAlias", func(t *testing.T) {
		be := open(t)

		whale := testNode("n1", "The Whale", "whale.md")
		whale.Aliases = []string{"Moby Dick"}
		require.NoError(t, be.CreateNode(ctx, whale))
		require.NoError(t, be.CreateNode(ctx, testNode("n2", "Moby Dick", "moby.md")))

		nodes, err := be.FindByTitleOrAlias(ctx, "moby dick")
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, "n1", nodes[0].ID)
		assert.Equal(t, "n2", nodes[1].ID)

		nodes, err = be.FindByTitleOrAlias(ctx, "the whale")
		require.NoError(t, err)
		require.Len(t, nodes, 1)

		nodes, err = be.FindByTitleOrAlias(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("SetAliasesReplacesWholesale", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "Ishmael", "i.md")))
		require.NoError(t, be.SetAliases(ctx, "n1", []string{"The Narrator", "Call Me Ishmael"}))

		nodes, err := be.FindByTitleOrAlias(ctx, "the narrator")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, []string{"The Narrator", "Call Me Ishmael"}, nodes[0].Aliases)

		require.NoError(t, be.SetAliases(ctx, "n1", []string{"Narrator"}))

		nodes, err = be.FindByTitleOrAlias(ctx, "the narrator")
		require.NoError(t, err)
		assert.Empty(t, nodes)

		nodes, err = be.FindByTitleOrAlias(ctx, "narrator")
		require.NoError(t, err)
		require.Len(t, nodes, 1)

		err = be.SetAliases(ctx, "missing", []string{"X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteNodeCascades", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "1.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n2", "Two", "2.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n3", "Three", "3.md")))

		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", "n2")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n2", "n3")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n3", "n1")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeMention, "n3", "n3")))
		require.NoError(t, be.CreateVersion(ctx, graph.NewVersion("n3", "hash", "")))

		require.NoError(t, be.DeleteNode(ctx, "n3"))

		count, err := be.CountNodes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		edges, err := be.AllEdges(ctx)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "n1", edges[0].Source)
		assert.Equal(t, "n2", edges[0].Target)

		count, err = be.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = be.LatestVersion(ctx, "n3")
		assert.ErrorIs(t, err, ErrNotFound)

		err = be.DeleteNode(ctx, "n3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GhostDeduplication", func(t *testing.T) {
		be := open(t)

		ghost, err := be.GetOrCreateGhost(ctx, "White Whale")
		require.NoError(t, err)
		assert.True(t, ghost.IsGhost())
		assert.Equal(t, "ghost://white-whale", ghost.Path)

		again, err := be.GetOrCreateGhost(ctx, "WHITE WHALE")
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, again.ID)

		count, err := be.CountNodes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		byTitle, err := be.FindByTitle(ctx, "white whale")
		require.NoError(t, err)
		require.Len(t, byTitle, 1)

		_, err = be.FindByPath(ctx, ghost.Path)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MaterializeGhostPreservesIdentity", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "Ahab", "ahab.md")))
		ghost, err := be.GetOrCreateGhost(ctx, "Pequod")
		require.NoError(t, err)
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", ghost.ID)))

		real, err := be.MaterializeGhost(ctx, ghost.ID, "ships/pequod.md")
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, real.ID)
		assert.Equal(t, "ships/pequod.md", real.Path)
		assert.False(t, real.IsGhost())

		byPath, err := be.FindByPath(ctx, "ships/pequod.md")
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, byPath.ID)

		_, err = be.FindEdge(ctx, "n1", ghost.ID, graph.EdgeExplicitLink)
		assert.NoError(t, err)

		_, err = be.MaterializeGhost(ctx, "n1", "elsewhere.md")
		assert.Error(t, err)

		_, err = be.MaterializeGhost(ctx, "missing", "x.md")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EdgeLifecycle", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "1.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n2", "Two", "2.md")))

		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", "n2")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeMention, "n1", "n2")))

		edge, err := be.FindEdge(ctx, "n1", "n2", graph.EdgeExplicitLink)
		require.NoError(t, err)
		assert.Equal(t, graph.EdgeID(graph.EdgeExplicitLink, "n1", "n2"), edge.ID)

		// Re-creating the same identity replaces rather than duplicates.
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", "n2")))
		count, err := be.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		all, err := be.AllEdges(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.True(t, all[0].ID < all[1].ID)

		mentions, err := be.EdgesByType(ctx, graph.EdgeMention)
		require.NoError(t, err)
		require.Len(t, mentions, 1)
		assert.Equal(t, graph.EdgeMention, mentions[0].Type)

		require.NoError(t, be.DeleteEdge(ctx, edge.ID))
		_, err = be.FindEdge(ctx, "n1", "n2", graph.EdgeExplicitLink)
		assert.ErrorIs(t, err, ErrNotFound)

		err = be.DeleteEdge(ctx, edge.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UndirectedEdgeIdentity", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("a", "A", "a.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("b", "B", "b.md")))

		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeSemantic, "b", "a")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeSemantic, "a", "b")))

		count, err := be.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		forward, err := be.FindEdge(ctx, "a", "b", graph.EdgeSemantic)
		require.NoError(t, err)
		reverse, err := be.FindEdge(ctx, "b", "a", graph.EdgeSemantic)
		require.NoError(t, err)
		assert.Equal(t, forward.ID, reverse.ID)
	})

	t.Run("DeleteEdgesBySourceAndType", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "1.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n2", "Two", "2.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n3", "Three", "3.md")))

		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", "n2")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n1", "n3")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeMention, "n1", "n2")))
		require.NoError(t, be.CreateEdge(ctx, testEdge(graph.EdgeExplicitLink, "n2", "n3")))

		removed, err := be.DeleteEdgesBySourceAndType(ctx, "n1", graph.EdgeExplicitLink)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		count, err := be.CountEdges(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		removed, err = be.DeleteEdgesBySourceAndType(ctx, "n1", graph.EdgeExplicitLink)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("VersionChain", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "1.md")))

		v1 := graph.NewVersion("n1", "hash-1", "")
		require.NoError(t, be.CreateVersion(ctx, v1))

		latest, err := be.LatestVersion(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, v1.ID, latest.ID)

		v2 := graph.NewVersion("n1", "hash-2", v1.ID)
		require.NoError(t, be.CreateVersion(ctx, v2))

		latest, err = be.LatestVersion(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, v2.ID, latest.ID)
		assert.Equal(t, v1.ID, latest.ParentID)
		assert.Equal(t, "hash-2", latest.ContentHash)

		_, err = be.LatestVersion(ctx, "unversioned")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("FindByIDsPreservesOrder", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("n1", "One", "1.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n2", "Two", "2.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("n3", "Three", "3.md")))

		nodes, err := be.FindByIDs(ctx, []string{"n3", "missing", "n1"})
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, "n3", nodes[0].ID)
		assert.Equal(t, "n1", nodes[1].ID)
	})

	t.Run("AllNodesSorted", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.CreateNode(ctx, testNode("b", "B", "b.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("a", "A", "a.md")))
		require.NoError(t, be.CreateNode(ctx, testNode("c", "C", "c.md")))

		nodes, err := be.AllNodes(ctx)
		require.NoError(t, err)
		require.Len(t, nodes, 3)
		assert.Equal(t, "a", nodes[0].ID)
		assert.Equal(t, "b", nodes[1].ID)
		assert.Equal(t, "c", nodes[2].ID)
	})

	t.Run("EmptyBackend", func(t *testing.T) {
		be := open(t)

		count, err := be.CountNodes(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = be.CountEdges(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		nodes, err := be.AllNodes(ctx)
		require.NoError(t, err)
		assert.Empty(t, nodes)

		edges, err := be.AllEdges(ctx)
		require.NoError(t, err)
		assert.Empty(t, edges)
	})

	t.Run("ReturnedRecordsAreCopies", func(t *testing.T) {
		be := open(t)

		node := testNode("n1", "Original", "a.md")
		require.NoError(t, be.CreateNode(ctx, node))
		node.Title = "Mutated Input"

		first, err := be.FindByID(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "Original", first.Title)

		first.Title = "Mutated Output"
		second, err := be.FindByID(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "Original", second.Title)
	})

	t.Run("ClosedBackend", func(t *testing.T) {
		be := open(t)

		require.NoError(t, be.Close())
		require.NoError(t, be.Close())

		err := be.CreateNode(ctx, testNode("n1", "One", "1.md"))
		assert.ErrorIs(t, err, ErrClosed)

		_, err = be.FindByID(ctx, "n1")
		assert.ErrorIs(t, err, ErrClosed)

		assert.ErrorIs(t, be.Flush(), ErrClosed)
	})
}
