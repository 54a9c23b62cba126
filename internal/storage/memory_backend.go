// Package storage provides the storage backend for ZettelScript.
package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

// MemoryBackend is an in-memory implementation of Backend. It is the
// reference semantics for the contract and the default store for tests.
//
// Records are copied on write and on read, so callers can mutate what
// they pass in or get back without corrupting the store or its indexes.
type MemoryBackend struct {
	mu       sync.RWMutex
	nodes    map[string]*graph.Node
	edges    map[string]*graph.Edge
	versions map[string][]*graph.Version // node ID -> chain, newest last
	index    *secondaryIndex
}

// NewMemoryBackend creates a new in-memory storage backend, ready for
// use without Initialize.
func NewMemoryBackend() *MemoryBackend {
	m := &MemoryBackend{}
	m.reset()
	return m
}

func (m *MemoryBackend) reset() {
	m.nodes = make(map[string]*graph.Node)
	m.edges = make(map[string]*graph.Edge)
	m.versions = make(map[string][]*graph.Version)
	m.index = newSecondaryIndex()
}

// Initialize implements Backend. The path is ignored; the memory
// backend always starts empty.
func (m *MemoryBackend) Initialize(path string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = nil
	m.edges = nil
	m.versions = nil
	m.index = nil
	return nil
}

// Flush implements Backend. Writes are immediately visible, so this is
// a no-op.
func (m *MemoryBackend) Flush() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.nodes == nil {
		return ErrClosed
	}
	return nil
}

// CreateNode implements Backend.
func (m *MemoryBackend) CreateNode(ctx context.Context, node *graph.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return ErrClosed
	}
	if _, ok := m.nodes[node.ID]; ok {
		return fmt.Errorf("node %s: %w", node.ID, ErrExists)
	}
	if !node.IsGhost() {
		if owner, ok := m.index.byPath[node.Path]; ok {
			return fmt.Errorf("path %s owned by node %s: %w", node.Path, owner, ErrExists)
		}
	}

	stored := cloneNode(node)
	m.nodes[stored.ID] = stored
	m.index.add(stored)
	return nil
}

// UpdateNode implements Backend.
func (m *MemoryBackend) UpdateNode(ctx context.Context, node *graph.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return ErrClosed
	}
	old, ok := m.nodes[node.ID]
	if !ok {
		return fmt.Errorf("node %s: %w", node.ID, ErrNotFound)
	}
	if !node.IsGhost() {
		if owner, ok := m.index.byPath[node.Path]; ok && owner != node.ID {
			return fmt.Errorf("path %s owned by node %s: %w", node.Path, owner, ErrExists)
		}
	}

	m.index.remove(old)
	stored := cloneNode(node)
	m.nodes[stored.ID] = stored
	m.index.add(stored)
	return nil
}

// DeleteNode implements Backend.
func (m *MemoryBackend) DeleteNode(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return ErrClosed
	}
	old, ok := m.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}

	m.index.remove(old)
	delete(m.nodes, nodeID)
	delete(m.versions, nodeID)
	for id, edge := range m.edges {
		if edge.Source == nodeID || edge.Target == nodeID {
			delete(m.edges, id)
		}
	}
	return nil
}

// SetAliases implements Backend.
func (m *MemoryBackend) SetAliases(ctx context.Context, nodeID string, aliases []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return ErrClosed
	}
	old, ok := m.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}

	m.index.remove(old)
	stored := cloneNode(old)
	stored.Aliases = slices.Clone(aliases)
	m.nodes[nodeID] = stored
	m.index.add(stored)
	return nil
}

// FindByID implements Backend.
func (m *MemoryBackend) FindByID(ctx context.Context, nodeID string) (*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	node, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	return cloneNode(node), nil
}

// FindByIDs implements Backend.
func (m *MemoryBackend) FindByIDs(ctx context.Context, nodeIDs []string) ([]*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	var nodes []*graph.Node
	for _, id := range nodeIDs {
		if node, ok := m.nodes[id]; ok {
			nodes = append(nodes, cloneNode(node))
		}
	}
	return nodes, nil
}

// FindByPath implements Backend.
func (m *MemoryBackend) FindByPath(ctx context.Context, path string) (*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	id, ok := m.index.byPath[path]
	if !ok {
		return nil, fmt.Errorf("path %s: %w", path, ErrNotFound)
	}
	return cloneNode(m.nodes[id]), nil
}

// FindByTitle implements Backend.
func (m *MemoryBackend) FindByTitle(ctx context.Context, title string) ([]*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	ids := slices.Sorted(slices.Values(m.index.byTitle[NormalizeKey(title)]))
	return m.nodesForIDs(ids), nil
}

// FindByTitleOrAlias implements Backend.
func (m *MemoryBackend) FindByTitleOrAlias(ctx context.Context, text string) ([]*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	ids := m.index.candidates(NormalizeKey(text))
	return m.nodesForIDs(ids), nil
}

// nodesForIDs clones the nodes for a list of known IDs. Caller must
// hold the lock.
func (m *MemoryBackend) nodesForIDs(ids []string) []*graph.Node {
	var nodes []*graph.Node
	for _, id := range ids {
		if node, ok := m.nodes[id]; ok {
			nodes = append(nodes, cloneNode(node))
		}
	}
	return nodes
}

// GetOrCreateGhost implements Backend.
func (m *MemoryBackend) GetOrCreateGhost(ctx context.Context, title string) (*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	if id, ok := m.index.ghosts[NormalizeKey(title)]; ok {
		return cloneNode(m.nodes[id]), nil
	}

	stored := graph.NewGhostNode(title)
	m.nodes[stored.ID] = stored
	m.index.add(stored)
	return cloneNode(stored), nil
}

// MaterializeGhost implements Backend.
func (m *MemoryBackend) MaterializeGhost(ctx context.Context, nodeID, realPath string) (*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	old, ok := m.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	if !old.IsGhost() {
		return nil, fmt.Errorf("node %s is not a ghost", nodeID)
	}
	if owner, ok := m.index.byPath[realPath]; ok && owner != nodeID {
		return nil, fmt.Errorf("path %s owned by node %s: %w", realPath, owner, ErrExists)
	}

	m.index.remove(old)
	stored := cloneNode(old)
	stored.Materialize(realPath)
	m.nodes[nodeID] = stored
	m.index.add(stored)
	return cloneNode(stored), nil
}

// AllNodes implements Backend.
func (m *MemoryBackend) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return nil, ErrClosed
	}
	ids := slices.Sorted(maps.Keys(m.nodes))
	return m.nodesForIDs(ids), nil
}

// CountNodes implements Backend.
func (m *MemoryBackend) CountNodes(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.nodes == nil {
		return 0, ErrClosed
	}
	return len(m.nodes), nil
}

// CreateEdge implements Backend.
func (m *MemoryBackend) CreateEdge(ctx context.Context, edge *graph.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges == nil {
		return ErrClosed
	}
	stored := cloneEdge(edge)
	stored.Canonicalize()
	m.edges[stored.ID] = stored
	return nil
}

// DeleteEdge implements Backend.
func (m *MemoryBackend) DeleteEdge(ctx context.Context, edgeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges == nil {
		return ErrClosed
	}
	if _, ok := m.edges[edgeID]; !ok {
		return fmt.Errorf("edge %s: %w", edgeID, ErrNotFound)
	}
	delete(m.edges, edgeID)
	return nil
}

// DeleteEdgesBySourceAndType implements Backend.
func (m *MemoryBackend) DeleteEdgesBySourceAndType(ctx context.Context, sourceID string, t graph.EdgeType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.edges == nil {
		return 0, ErrClosed
	}
	count := 0
	for id, edge := range m.edges {
		if edge.Source == sourceID && edge.Type == t {
			delete(m.edges, id)
			count++
		}
	}
	return count, nil
}

// FindEdge implements Backend.
func (m *MemoryBackend) FindEdge(ctx context.Context, sourceID, targetID string, t graph.EdgeType) (*graph.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.edges == nil {
		return nil, ErrClosed
	}
	id := graph.EdgeID(t, sourceID, targetID)
	edge, ok := m.edges[id]
	if !ok {
		return nil, fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	return cloneEdge(edge), nil
}

// AllEdges implements Backend.
func (m *MemoryBackend) AllEdges(ctx context.Context) ([]*graph.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.edges == nil {
		return nil, ErrClosed
	}
	return m.sortedEdges(func(*graph.Edge) bool { return true }), nil
}

// EdgesByType implements Backend.
func (m *MemoryBackend) EdgesByType(ctx context.Context, t graph.EdgeType) ([]*graph.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.edges == nil {
		return nil, ErrClosed
	}
	return m.sortedEdges(func(e *graph.Edge) bool { return e.Type == t }), nil
}

// sortedEdges clones the edges passing the filter, sorted by ID. Caller
// must hold the lock.
func (m *MemoryBackend) sortedEdges(keep func(*graph.Edge) bool) []*graph.Edge {
	var edges []*graph.Edge
	for _, edge := range m.edges {
		if keep(edge) {
			edges = append(edges, cloneEdge(edge))
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges
}

// CountEdges implements Backend.
func (m *MemoryBackend) CountEdges(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.edges == nil {
		return 0, ErrClosed
	}
	return len(m.edges), nil
}

// CreateVersion implements Backend.
func (m *MemoryBackend) CreateVersion(ctx context.Context, v *graph.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.versions == nil {
		return ErrClosed
	}
	stored := *v
	m.versions[v.NodeID] = append(m.versions[v.NodeID], &stored)
	return nil
}

// LatestVersion implements Backend.
func (m *MemoryBackend) LatestVersion(ctx context.Context, nodeID string) (*graph.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.versions == nil {
		return nil, ErrClosed
	}
	chain := m.versions[nodeID]
	if len(chain) == 0 {
		return nil, fmt.Errorf("versions for node %s: %w", nodeID, ErrNotFound)
	}
	latest := *chain[len(chain)-1]
	return &latest, nil
}

// cloneNode copies a node deeply enough that the original and the copy
// can be mutated independently.
func cloneNode(n *graph.Node) *graph.Node {
	c := *n
	c.Aliases = slices.Clone(n.Aliases)
	if n.Metadata != nil {
		c.Metadata = maps.Clone(n.Metadata)
	}
	return &c
}

// cloneEdge copies an edge deeply enough that the original and the copy
// can be mutated independently.
func cloneEdge(e *graph.Edge) *graph.Edge {
	c := *e
	if e.Attributes != nil {
		c.Attributes = maps.Clone(e.Attributes)
	}
	return &c
}
