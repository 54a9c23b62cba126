// Package storage provides the storage backend for ZettelScript.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

// Key prefixes for different record types
const (
	prefixNode     = "n:"  // node records
	prefixEdge     = "e:"  // edge records
	prefixVersion  = "v:"  // version records, keyed v:<nodeID>:<versionID>
	prefixLatest   = "vl:" // latest version pointer per node
	prefixOutgoing = "eo:" // outgoing edge index, keyed eo:<sourceID>:<type>:<edgeID>
	prefixIncoming = "ei:" // incoming edge index, keyed ei:<targetID>:<type>:<edgeID>
)

// BadgerBackend is a BadgerDB-backed storage implementation.
//
// Node and edge records are stored as JSON values. The title, alias,
// path, and ghost lookup tables are kept in memory and rebuilt from the
// database at Initialize.
type BadgerBackend struct {
	db        *badger.DB
	mu        sync.RWMutex
	index     *secondaryIndex
	nodeCount int
	edgeCount int
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.rebuildIndexes()
	return nil
}

// rebuildIndexes rescans the database into the in-memory lookup tables.
func (b *BadgerBackend) rebuildIndexes() {
	b.index = newSecondaryIndex()
	b.nodeCount = 0
	b.edgeCount = 0

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	{
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixNode)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			var node graph.Node
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &node)
			}); err != nil {
				continue
			}
			b.index.add(&node)
			b.nodeCount++
		}
		it.Close()
	}

	{
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixEdge)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			b.edgeCount++
		}
		it.Close()
	}
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.index = nil
	return err
}

// Flush syncs pending writes to disk.
func (b *BadgerBackend) Flush() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return ErrClosed
	}
	if err := b.db.Sync(); err != nil {
		return fmt.Errorf("syncing badger DB: %w", err)
	}
	return nil
}

// CreateNode inserts a new node.
func (b *BadgerBackend) CreateNode(ctx context.Context, node *graph.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	existing, err := b.getNode(node.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("node %s: %w", node.ID, ErrExists)
	}
	if !node.IsGhost() {
		if owner, ok := b.index.byPath[node.Path]; ok {
			return fmt.Errorf("path %s owned by node %s: %w", node.Path, owner, ErrExists)
		}
	}

	if err := b.setNode(node); err != nil {
		return err
	}
	b.index.add(node)
	b.nodeCount++
	return nil
}

// UpdateNode replaces the stored node with the same ID.
func (b *BadgerBackend) UpdateNode(ctx context.Context, node *graph.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	old, err := b.nodeOrNotFound(node.ID)
	if err != nil {
		return err
	}
	if !node.IsGhost() {
		if owner, ok := b.index.byPath[node.Path]; ok && owner != node.ID {
			return fmt.Errorf("path %s owned by node %s: %w", node.Path, owner, ErrExists)
		}
	}

	if err := b.setNode(node); err != nil {
		return err
	}
	b.index.remove(old)
	b.index.add(node)
	return nil
}

// DeleteNode removes the node, every edge touching it, and its version
// history.
func (b *BadgerBackend) DeleteNode(ctx context.Context, nodeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	old, err := b.nodeOrNotFound(nodeID)
	if err != nil {
		return err
	}
	edges, err := b.edgesTouching(nodeID)
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, edge := range edges {
		if err := deleteEdgeKeys(wb, edge); err != nil {
			return err
		}
	}
	if err := wb.Delete(nodeKey(nodeID)); err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	if err := wb.Delete(latestKey(nodeID)); err != nil {
		return fmt.Errorf("deleting version pointer: %w", err)
	}
	for _, key := range b.collectKeys([]byte(prefixVersion + nodeID + ":")) {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("deleting version: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	b.index.remove(old)
	b.nodeCount--
	b.edgeCount -= len(edges)
	return nil
}

// SetAliases replaces the node's alias list wholesale.
func (b *BadgerBackend) SetAliases(ctx context.Context, nodeID string, aliases []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	old, err := b.nodeOrNotFound(nodeID)
	if err != nil {
		return err
	}

	updated := cloneNode(old)
	updated.Aliases = slices.Clone(aliases)
	if err := b.setNode(updated); err != nil {
		return err
	}
	b.index.remove(old)
	b.index.add(updated)
	return nil
}

// FindByID returns the node with the given ID.
func (b *BadgerBackend) FindByID(ctx context.Context, nodeID string) (*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	return b.nodeOrNotFound(nodeID)
}

// FindByIDs returns the nodes for the given IDs in input order,
// skipping IDs that do not exist.
func (b *BadgerBackend) FindByIDs(ctx context.Context, nodeIDs []string) ([]*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	var nodes []*graph.Node
	for _, id := range nodeIDs {
		node, err := b.getNode(id)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// FindByPath returns the node backed by the given vault path.
func (b *BadgerBackend) FindByPath(ctx context.Context, path string) (*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	id, ok := b.index.byPath[path]
	if !ok {
		return nil, fmt.Errorf("path %s: %w", path, ErrNotFound)
	}
	return b.nodeOrNotFound(id)
}

// FindByTitle returns all nodes whose title matches case-insensitively.
func (b *BadgerBackend) FindByTitle(ctx context.Context, title string) ([]*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	ids := slices.Sorted(slices.Values(b.index.byTitle[NormalizeKey(title)]))
	return b.nodesForIDs(ids)
}

// FindByTitleOrAlias returns the de-duplicated union of title and alias
// matches for the text.
func (b *BadgerBackend) FindByTitleOrAlias(ctx context.Context, text string) ([]*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	return b.nodesForIDs(b.index.candidates(NormalizeKey(text)))
}

// nodesForIDs loads the nodes for a list of IDs, skipping stale index
// entries. Caller must hold the lock.
func (b *BadgerBackend) nodesForIDs(ids []string) ([]*graph.Node, error) {
	var nodes []*graph.Node
	for _, id := range ids {
		node, err := b.getNode(id)
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// GetOrCreateGhost returns the ghost node for the title, creating it on
// first use.
func (b *BadgerBackend) GetOrCreateGhost(ctx context.Context, title string) (*graph.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	if id, ok := b.index.ghosts[NormalizeKey(title)]; ok {
		node, err := b.getNode(id)
		if err != nil {
			return nil, err
		}
		if node != nil {
			return node, nil
		}
	}

	node := graph.NewGhostNode(title)
	if err := b.setNode(node); err != nil {
		return nil, err
	}
	b.index.add(node)
	b.nodeCount++
	return node, nil
}

// MaterializeGhost converts the ghost node onto a real document path.
func (b *BadgerBackend) MaterializeGhost(ctx context.Context, nodeID, realPath string) (*graph.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	old, err := b.nodeOrNotFound(nodeID)
	if err != nil {
		return nil, err
	}
	if !old.IsGhost() {
		return nil, fmt.Errorf("node %s is not a ghost", nodeID)
	}
	if owner, ok := b.index.byPath[realPath]; ok && owner != nodeID {
		return nil, fmt.Errorf("path %s owned by node %s: %w", realPath, owner, ErrExists)
	}

	updated := cloneNode(old)
	updated.Materialize(realPath)
	if err := b.setNode(updated); err != nil {
		return nil, err
	}
	b.index.remove(old)
	b.index.add(updated)
	return updated, nil
}

// AllNodes returns every node, sorted by ID.
func (b *BadgerBackend) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}

	var nodes []*graph.Node

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixNode)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var node graph.Node
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		}); err != nil {
			continue
		}
		nodes = append(nodes, &node)
	}

	return nodes, nil
}

// CountNodes returns the number of stored nodes.
func (b *BadgerBackend) CountNodes(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return 0, ErrClosed
	}
	return b.nodeCount, nil
}

// CreateEdge inserts an edge, replacing any edge with the same identity.
func (b *BadgerBackend) CreateEdge(ctx context.Context, edge *graph.Edge) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	stored := cloneEdge(edge)
	stored.Canonicalize()
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshaling edge: %w", err)
	}

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	fresh := false
	if _, err := txn.Get(edgeKey(stored.ID)); err == badger.ErrKeyNotFound {
		fresh = true
	} else if err != nil {
		return fmt.Errorf("checking edge: %w", err)
	}

	if err := txn.Set(edgeKey(stored.ID), data); err != nil {
		return fmt.Errorf("setting edge: %w", err)
	}
	if err := txn.Set(outgoingKey(stored), []byte(stored.ID)); err != nil {
		return fmt.Errorf("setting outgoing index: %w", err)
	}
	if err := txn.Set(incomingKey(stored), []byte(stored.ID)); err != nil {
		return fmt.Errorf("setting incoming index: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	if fresh {
		b.edgeCount++
	}
	return nil
}

// DeleteEdge removes the edge with the given ID.
func (b *BadgerBackend) DeleteEdge(ctx context.Context, edgeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	edge, err := b.getEdge(edgeID)
	if err != nil {
		return err
	}
	if edge == nil {
		return fmt.Errorf("edge %s: %w", edgeID, ErrNotFound)
	}

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	for _, key := range [][]byte{edgeKey(edge.ID), outgoingKey(edge), incomingKey(edge)} {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("deleting edge: %w", err)
		}
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	b.edgeCount--
	return nil
}

// DeleteEdgesBySourceAndType removes every edge of the given type
// originating at the source node.
func (b *BadgerBackend) DeleteEdgesBySourceAndType(ctx context.Context, sourceID string, t graph.EdgeType) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return 0, ErrClosed
	}
	ids := make(map[string]bool)
	b.collectEdgeIDs([]byte(prefixOutgoing+sourceID+":"+string(t)+":"), ids)
	if len(ids) == 0 {
		return 0, nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	count := 0
	for id := range ids {
		edge, err := b.getEdge(id)
		if err != nil {
			return 0, err
		}
		if edge == nil {
			continue
		}
		if err := deleteEdgeKeys(wb, edge); err != nil {
			return 0, err
		}
		count++
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	b.edgeCount -= count
	return count, nil
}

// FindEdge returns the edge identified by source, target, and type.
func (b *BadgerBackend) FindEdge(ctx context.Context, sourceID, targetID string, t graph.EdgeType) (*graph.Edge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	id := graph.EdgeID(t, sourceID, targetID)
	edge, err := b.getEdge(id)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		return nil, fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	return edge, nil
}

// AllEdges returns every edge, sorted by ID.
func (b *BadgerBackend) AllEdges(ctx context.Context) ([]*graph.Edge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	return b.scanEdges(func(*graph.Edge) bool { return true }), nil
}

// EdgesByType returns every edge of the given type, sorted by ID.
func (b *BadgerBackend) EdgesByType(ctx context.Context, t graph.EdgeType) ([]*graph.Edge, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}
	return b.scanEdges(func(e *graph.Edge) bool { return e.Type == t }), nil
}

// scanEdges iterates the edge records in key order, keeping those that
// pass the filter. Caller must hold the lock.
func (b *BadgerBackend) scanEdges(keep func(*graph.Edge) bool) []*graph.Edge {
	var edges []*graph.Edge

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixEdge)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var edge graph.Edge
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &edge)
		}); err != nil {
			continue
		}
		if keep(&edge) {
			edges = append(edges, &edge)
		}
	}

	return edges
}

// CountEdges returns the number of stored edges.
func (b *BadgerBackend) CountEdges(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return 0, ErrClosed
	}
	return b.edgeCount, nil
}

// CreateVersion appends a version record to its node's history chain.
func (b *BadgerBackend) CreateVersion(ctx context.Context, v *graph.Version) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return ErrClosed
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling version: %w", err)
	}

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Set(versionKey(v.NodeID, v.ID), data); err != nil {
		return fmt.Errorf("setting version: %w", err)
	}
	if err := txn.Set(latestKey(v.NodeID), data); err != nil {
		return fmt.Errorf("setting version pointer: %w", err)
	}
	return txn.Commit()
}

// LatestVersion returns the most recent version record for the node.
func (b *BadgerBackend) LatestVersion(ctx context.Context, nodeID string) (*graph.Version, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, ErrClosed
	}

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(latestKey(nodeID))
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("versions for node %s: %w", nodeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting version pointer: %w", err)
	}

	var v graph.Version
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling version: %w", err)
	}
	return &v, nil
}

// getNode is a helper that gets a node without converting a miss into an
// error. Caller must hold the lock.
func (b *BadgerBackend) getNode(nodeID string) (*graph.Node, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(nodeKey(nodeID))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	var node graph.Node
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling node: %w", err)
	}
	return &node, nil
}

// nodeOrNotFound loads a node and converts a miss into ErrNotFound.
// Caller must hold the lock.
func (b *BadgerBackend) nodeOrNotFound(nodeID string) (*graph.Node, error) {
	node, err := b.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	return node, nil
}

// getEdge is a helper that gets an edge without converting a miss into
// an error. Caller must hold the lock.
func (b *BadgerBackend) getEdge(edgeID string) (*graph.Edge, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(edgeKey(edgeID))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting edge: %w", err)
	}

	var edge graph.Edge
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &edge)
	}); err != nil {
		return nil, fmt.Errorf("unmarshaling edge: %w", err)
	}
	return &edge, nil
}

// setNode writes a node record in its own transaction. Caller must hold
// the lock.
func (b *BadgerBackend) setNode(node *graph.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshaling node: %w", err)
	}

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	if err := txn.Set(nodeKey(node.ID), data); err != nil {
		return fmt.Errorf("setting node: %w", err)
	}
	return txn.Commit()
}

// edgesTouching collects every edge with the node as source or target,
// via the adjacency indexes. Caller must hold the lock.
func (b *BadgerBackend) edgesTouching(nodeID string) ([]*graph.Edge, error) {
	ids := make(map[string]bool)
	b.collectEdgeIDs([]byte(prefixOutgoing+nodeID+":"), ids)
	b.collectEdgeIDs([]byte(prefixIncoming+nodeID+":"), ids)

	var edges []*graph.Edge
	for id := range ids {
		edge, err := b.getEdge(id)
		if err != nil {
			return nil, err
		}
		if edge != nil {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// collectEdgeIDs gathers edge IDs from an adjacency index prefix.
// Caller must hold the lock.
func (b *BadgerBackend) collectEdgeIDs(prefix []byte, ids map[string]bool) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		_ = it.Item().Value(func(val []byte) error {
			ids[string(val)] = true
			return nil
		})
	}
}

// collectKeys gathers full keys under a prefix. Caller must hold the
// lock.
func (b *BadgerBackend) collectKeys(prefix []byte) [][]byte {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// deleteEdgeKeys queues an edge's record and both adjacency index keys
// for deletion.
func deleteEdgeKeys(wb *badger.WriteBatch, edge *graph.Edge) error {
	for _, key := range [][]byte{edgeKey(edge.ID), outgoingKey(edge), incomingKey(edge)} {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("deleting edge %s: %w", edge.ID, err)
		}
	}
	return nil
}

// nodeKey returns the BadgerDB key for a node.
func nodeKey(nodeID string) []byte {
	return []byte(prefixNode + nodeID)
}

// edgeKey returns the BadgerDB key for an edge.
func edgeKey(edgeID string) []byte {
	return []byte(prefixEdge + edgeID)
}

// versionKey returns the BadgerDB key for a version record.
func versionKey(nodeID, versionID string) []byte {
	return []byte(prefixVersion + nodeID + ":" + versionID)
}

// latestKey returns the BadgerDB key for a node's latest version pointer.
func latestKey(nodeID string) []byte {
	return []byte(prefixLatest + nodeID)
}

// outgoingKey returns the outgoing adjacency index key for an edge.
func outgoingKey(e *graph.Edge) []byte {
	return []byte(prefixOutgoing + e.Source + ":" + string(e.Type) + ":" + e.ID)
}

// incomingKey returns the incoming adjacency index key for an edge.
func incomingKey(e *graph.Edge) []byte {
	return []byte(prefixIncoming + e.Target + ":" + string(e.Type) + ":" + e.ID)
}
