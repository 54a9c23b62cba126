package storage

import (
	"sort"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

// secondaryIndex holds the in-memory lookup tables every backend keeps
// alongside its primary store. All keys are pre-normalized with
// NormalizeKey. Callers guard access with their own mutex.
type secondaryIndex struct {
	byPath  map[string]string   // vault path -> node ID
	byTitle map[string][]string // normalized title -> node IDs
	byAlias map[string][]string // normalized alias -> node IDs
	ghosts  map[string]string   // normalized title -> ghost node ID
}

func newSecondaryIndex() *secondaryIndex {
	return &secondaryIndex{
		byPath:  make(map[string]string),
		byTitle: make(map[string][]string),
		byAlias: make(map[string][]string),
		ghosts:  make(map[string]string),
	}
}

// add indexes a node. Ghosts are keyed by title in the ghost table
// instead of the path table; their synthetic paths are not unique.
func (ix *secondaryIndex) add(n *graph.Node) {
	key := NormalizeKey(n.Title)
	if n.IsGhost() {
		ix.ghosts[key] = n.ID
	} else {
		ix.byPath[n.Path] = n.ID
	}
	appendID(ix.byTitle, key, n.ID)
	for _, alias := range n.Aliases {
		appendID(ix.byAlias, NormalizeKey(alias), n.ID)
	}
}

// remove drops a node's index entries. The node must be passed in the
// state it was indexed with.
func (ix *secondaryIndex) remove(n *graph.Node) {
	key := NormalizeKey(n.Title)
	if n.IsGhost() {
		delete(ix.ghosts, key)
	} else {
		delete(ix.byPath, n.Path)
	}
	removeID(ix.byTitle, key, n.ID)
	for _, alias := range n.Aliases {
		removeID(ix.byAlias, NormalizeKey(alias), n.ID)
	}
}

// candidates returns the de-duplicated union of title and alias matches
// for a normalized key, sorted by node ID.
func (ix *secondaryIndex) candidates(key string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range ix.byTitle[key] {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range ix.byAlias[key] {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func appendID(m map[string][]string, key, id string) {
	if key == "" {
		return
	}
	for _, existing := range m[key] {
		if existing == id {
			return
		}
	}
	m[key] = append(m[key], id)
}

func removeID(m map[string][]string, key, id string) {
	ids := m[key]
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(m, key)
	} else {
		m[key] = ids
	}
}
