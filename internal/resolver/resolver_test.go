package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/parser"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/storage"
)

func storeWith(t *testing.T, nodes ...*graph.Node) storage.Backend {
	t.Helper()

	store := storage.NewMemoryBackend()
	for _, node := range nodes {
		require.NoError(t, store.CreateNode(context.Background(), node))
	}
	return store
}

func node(id, title, path string, aliases ...string) *graph.Node {
	now := time.Now()
	return &graph.Node{
		ID:        id,
		Type:      graph.NodeNote,
		Title:     title,
		Path:      path,
		Aliases:   aliases,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func textLink(target string) parser.WikiLink {
	return parser.WikiLink{Raw: "[[" + target + "]]", Target: target}
}

func idLink(id string) parser.WikiLink {
	return parser.WikiLink{Raw: "[[id:" + id + "]]", Target: id, IsIDLink: true}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("IDLink", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t, node("n1", "Moby Dick", "moby.md")))

		resolved, err := r.Resolve(ctx, idLink("n1"))
		require.NoError(t, err)
		assert.Equal(t, "n1", resolved.ResolvedNodeID)
		assert.False(t, resolved.Ambiguous)
	})

	t.Run("IDLinkMissingIsUnresolved", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t))

		resolved, err := r.Resolve(ctx, idLink("nope"))
		require.NoError(t, err)
		assert.Empty(t, resolved.ResolvedNodeID)
		assert.False(t, resolved.Ambiguous)
	})

	t.Run("NoCandidates", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t, node("n1", "Moby Dick", "moby.md")))

		resolved, err := r.Resolve(ctx, textLink("Queequeg"))
		require.NoError(t, err)
		assert.Empty(t, resolved.ResolvedNodeID)
		assert.False(t, resolved.Ambiguous)
		assert.Empty(t, resolved.Candidates)
	})

	t.Run("SingleCandidate", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t, node("n1", "Moby Dick", "moby.md")))

		resolved, err := r.Resolve(ctx, textLink("  MOBY   dick "))
		require.NoError(t, err)
		assert.Equal(t, "n1", resolved.ResolvedNodeID)
		assert.False(t, resolved.Ambiguous)
	})

	t.Run("AliasMatch", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t, node("n1", "The Whale", "whale.md", "Moby Dick")))

		resolved, err := r.Resolve(ctx, textLink("moby dick"))
		require.NoError(t, err)
		assert.Equal(t, "n1", resolved.ResolvedNodeID)
	})

	t.Run("TitleBeatsAlias", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t,
			node("n1", "The Whale", "whale.md", "Moby Dick"),
			node("n2", "Moby Dick", "moby.md"),
		))

		resolved, err := r.Resolve(ctx, textLink("Moby Dick"))
		require.NoError(t, err)
		assert.Equal(t, "n2", resolved.ResolvedNodeID)
		assert.False(t, resolved.Ambiguous)
		assert.ElementsMatch(t, []string{"n1", "n2"}, resolved.Candidates)
	})

	t.Run("EqualTitlesAreAmbiguous", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t,
			node("n1", "Moby Dick", "a/moby.md"),
			node("n2", "Moby Dick", "b/moby.md"),
		))

		resolved, err := r.Resolve(ctx, textLink("Moby Dick"))
		require.NoError(t, err)
		assert.Empty(t, resolved.ResolvedNodeID)
		assert.True(t, resolved.Ambiguous)
		assert.ElementsMatch(t, []string{"n1", "n2"}, resolved.Candidates)
	})

	t.Run("AliasOnlyTieIsAmbiguous", func(t *testing.T) {
		t.Parallel()
		r := NewResolver(storeWith(t,
			node("n1", "The Whale", "whale.md", "Leviathan"),
			node("n2", "Job's Nemesis", "job.md", "Leviathan"),
		))

		resolved, err := r.Resolve(ctx, textLink("Leviathan"))
		require.NoError(t, err)
		assert.Empty(t, resolved.ResolvedNodeID)
		assert.True(t, resolved.Ambiguous)
		assert.ElementsMatch(t, []string{"n1", "n2"}, resolved.Candidates)
	})

	t.Run("GhostIsACandidate", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryBackend()
		ghost, err := store.GetOrCreateGhost(ctx, "White Whale")
		require.NoError(t, err)
		r := NewResolver(store)

		resolved, err := r.Resolve(ctx, textLink("white whale"))
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, resolved.ResolvedNodeID)
	})
}

func TestResolver_CacheInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryBackend()
	r := NewResolver(store)

	resolved, err := r.Resolve(ctx, textLink("Moby Dick"))
	require.NoError(t, err)
	assert.Empty(t, resolved.ResolvedNodeID)

	require.NoError(t, store.CreateNode(ctx, node("n1", "Moby Dick", "moby.md")))

	// The empty candidate set is cached, so the new node stays
	// invisible until the cache is dropped.
	resolved, err = r.Resolve(ctx, textLink("Moby Dick"))
	require.NoError(t, err)
	assert.Empty(t, resolved.ResolvedNodeID)

	r.InvalidateCache()

	resolved, err = r.Resolve(ctx, textLink("Moby Dick"))
	require.NoError(t, err)
	assert.Equal(t, "n1", resolved.ResolvedNodeID)
}
