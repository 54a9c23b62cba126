// Package resolver maps wikilink text to node identities.
package resolver

import (
	"context"
	"errors"
	"sync"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/parser"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/storage"
)

// ResolvedLink is a wikilink after resolution against the node store.
// Zero and multiple matches are result states, not errors.
type ResolvedLink struct {
	parser.WikiLink

	// ResolvedNodeID is the target node ID, empty when the link is
	// unresolved or ambiguous.
	ResolvedNodeID string

	// Ambiguous marks a link whose text matched multiple nodes with no
	// unique title match to break the tie.
	Ambiguous bool

	// Candidates lists every matching node ID when more than one node
	// matched, whether or not the tie was broken.
	Candidates []string
}

// candidate is one cached match: the node ID and its normalized title,
// kept so disambiguation does not go back to the store.
type candidate struct {
	id       string
	titleKey string
}

// Resolver resolves wikilinks to nodes by title or alias.
//
// Candidate sets are cached by normalized link text. The cache is never
// refreshed implicitly: every structural mutation of the node set must
// be followed by InvalidateCache, or Resolve will serve stale results.
type Resolver struct {
	store storage.Backend

	mu    sync.Mutex
	cache map[string][]candidate
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store storage.Backend) *Resolver {
	return &Resolver{
		store: store,
		cache: make(map[string][]candidate),
	}
}

// Resolve maps one wikilink to a node.
//
// ID-direct links look the node up by identity and bypass the cache.
// Text links normalize the target and match case-insensitively against
// titles and aliases; a tie between multiple matches is broken only
// when exactly one candidate's title matches the link text exactly.
func (r *Resolver) Resolve(ctx context.Context, link parser.WikiLink) (ResolvedLink, error) {
	resolved := ResolvedLink{WikiLink: link}

	if link.IsIDLink {
		node, err := r.store.FindByID(ctx, link.Target)
		if errors.Is(err, storage.ErrNotFound) {
			return resolved, nil
		}
		if err != nil {
			return resolved, err
		}
		resolved.ResolvedNodeID = node.ID
		return resolved, nil
	}

	key := storage.NormalizeKey(link.Target)
	candidates, err := r.candidates(ctx, key)
	if err != nil {
		return resolved, err
	}

	switch len(candidates) {
	case 0:
		// Unresolved, not ambiguous.
	case 1:
		resolved.ResolvedNodeID = candidates[0].id
	default:
		for _, c := range candidates {
			resolved.Candidates = append(resolved.Candidates, c.id)
		}
		titleMatches := 0
		matchID := ""
		for _, c := range candidates {
			if c.titleKey == key {
				titleMatches++
				matchID = c.id
			}
		}
		if titleMatches == 1 {
			resolved.ResolvedNodeID = matchID
		} else {
			resolved.Ambiguous = true
		}
	}
	return resolved, nil
}

// candidates returns the candidate set for a normalized key, consulting
// the cache first. Empty sets are cached too, so repeated lookups of a
// missing title stay cheap.
func (r *Resolver) candidates(ctx context.Context, key string) ([]candidate, error) {
	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	nodes, err := r.store.FindByTitleOrAlias(ctx, key)
	if err != nil {
		return nil, err
	}
	fresh := make([]candidate, 0, len(nodes))
	for _, node := range nodes {
		fresh = append(fresh, candidate{
			id:       node.ID,
			titleKey: storage.NormalizeKey(node.Title),
		})
	}

	r.mu.Lock()
	r.cache[key] = fresh
	r.mu.Unlock()
	return fresh, nil
}

// InvalidateCache drops every cached candidate set. Must be called
// after any mutation of the node set: batch pass boundaries and each
// incremental add, change, or remove.
func (r *Resolver) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string][]candidate)
}
