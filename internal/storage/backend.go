// Package storage provides the storage backend interface for ZettelScript.
//
// It defines the Backend protocol that all storage implementations must
// satisfy, along with the sentinel errors and lookup normalization shared
// across backends.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
)

// Sentinel errors returned by backends. Match with errors.Is.
var (
	// ErrNotFound is returned when a node, edge, or version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when a create would violate a uniqueness
	// invariant (duplicate node ID or vault path).
	ErrExists = errors.New("already exists")

	// ErrClosed is returned when the backend has been closed.
	ErrClosed = errors.New("backend closed")
)

// NormalizeKey folds text for case-insensitive lookup: surrounding
// whitespace is trimmed, internal whitespace runs collapse to a single
// space, and letters are lowercased. Titles, aliases, and link text all
// pass through this before comparison.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Backend defines the interface for storage implementations.
//
// Implementations must be thread-safe and support concurrent access.
// Lookups that name a single record return ErrNotFound when it is
// missing; multi-result lookups return an empty slice instead.
type Backend interface {
	// Lifecycle methods

	// Initialize opens or creates the storage backend at the given path.
	// If readOnly is true, the backend is opened in read-only mode.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the backend.
	Close() error

	// Flush forces pending writes to durable storage where the medium
	// needs it.
	Flush() error

	// Node operations

	// CreateNode inserts a new node. The node ID and, for non-ghost
	// nodes, the vault path must be unique; violations return ErrExists.
	CreateNode(ctx context.Context, node *graph.Node) error

	// UpdateNode replaces the stored node with the same ID.
	UpdateNode(ctx context.Context, node *graph.Node) error

	// DeleteNode removes the node, every edge touching it, and its
	// version history.
	DeleteNode(ctx context.Context, nodeID string) error

	// SetAliases replaces the node's alias list wholesale.
	SetAliases(ctx context.Context, nodeID string, aliases []string) error

	// FindByID returns the node with the given ID.
	FindByID(ctx context.Context, nodeID string) (*graph.Node, error)

	// FindByIDs returns the nodes for the given IDs in input order,
	// skipping IDs that do not exist.
	FindByIDs(ctx context.Context, nodeIDs []string) ([]*graph.Node, error)

	// FindByPath returns the node backed by the given vault path.
	// Ghost nodes are not reachable by path.
	FindByPath(ctx context.Context, path string) (*graph.Node, error)

	// FindByTitle returns all nodes whose title matches case-insensitively,
	// sorted by node ID.
	FindByTitle(ctx context.Context, title string) ([]*graph.Node, error)

	// FindByTitleOrAlias returns the de-duplicated union of title and
	// alias matches for the text, case-insensitively, sorted by node ID.
	FindByTitleOrAlias(ctx context.Context, text string) ([]*graph.Node, error)

	// GetOrCreateGhost returns the ghost node for the title, creating it
	// on first use. Ghosts are de-duplicated case-insensitively by title.
	GetOrCreateGhost(ctx context.Context, title string) (*graph.Node, error)

	// MaterializeGhost converts the ghost node onto a real document path,
	// preserving its identity and all edges that reference it.
	MaterializeGhost(ctx context.Context, nodeID, realPath string) (*graph.Node, error)

	// AllNodes returns every node, sorted by ID.
	AllNodes(ctx context.Context) ([]*graph.Node, error)

	// CountNodes returns the number of stored nodes.
	CountNodes(ctx context.Context) (int, error)

	// Edge operations

	// CreateEdge inserts an edge. An empty edge ID is filled in from the
	// deterministic identity; creating an edge whose identity already
	// exists replaces it.
	CreateEdge(ctx context.Context, edge *graph.Edge) error

	// DeleteEdge removes the edge with the given ID.
	DeleteEdge(ctx context.Context, edgeID string) error

	// DeleteEdgesBySourceAndType removes every edge of the given type
	// originating at the source node and returns how many were removed.
	DeleteEdgesBySourceAndType(ctx context.Context, sourceID string, t graph.EdgeType) (int, error)

	// FindEdge returns the edge identified by source, target, and type.
	FindEdge(ctx context.Context, sourceID, targetID string, t graph.EdgeType) (*graph.Edge, error)

	// AllEdges returns every edge, sorted by ID.
	AllEdges(ctx context.Context) ([]*graph.Edge, error)

	// EdgesByType returns every edge of the given type, sorted by ID.
	EdgesByType(ctx context.Context, t graph.EdgeType) ([]*graph.Edge, error)

	// CountEdges returns the number of stored edges.
	CountEdges(ctx context.Context) (int, error)

	// Version operations

	// CreateVersion appends a version record to its node's history chain.
	CreateVersion(ctx context.Context, v *graph.Version) error

	// LatestVersion returns the most recent version record for the node.
	LatestVersion(ctx context.Context, nodeID string) (*graph.Version, error)
}
