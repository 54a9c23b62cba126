// Package graph provides the knowledge graph data model for ZettelScript.
//
// It defines the core node and edge types that represent vault-level
// entities (notes, scenes, characters, etc.) and the edges between them
// (explicit links, sequences, hierarchies, etc.), plus the version records
// that track content history per node.
package graph

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// NodeType represents the kind of a graph node.
type NodeType string

const (
	NodeNote      NodeType = "note"
	NodeScene     NodeType = "scene"
	NodeCharacter NodeType = "character"
	NodeLocation  NodeType = "location"
	NodeObject    NodeType = "object"
	NodeEvent     NodeType = "event"
	NodeConcept   NodeType = "concept"
	NodeMOC       NodeType = "moc"
	NodeTimeline  NodeType = "timeline"
	NodeDraft     NodeType = "draft"
)

// ParseNodeType maps a frontmatter type value to a NodeType.
// Unknown or empty values fall back to NodeNote.
func ParseNodeType(s string) NodeType {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case NodeNote, NodeScene, NodeCharacter, NodeLocation, NodeObject,
		NodeEvent, NodeConcept, NodeMOC, NodeTimeline, NodeDraft:
		return t
	default:
		return NodeNote
	}
}

// EdgeType represents the type of an edge between graph nodes.
type EdgeType string

const (
	EdgeExplicitLink       EdgeType = "explicit_link"
	EdgeBacklink           EdgeType = "backlink"
	EdgeSequence           EdgeType = "sequence"
	EdgeHierarchy          EdgeType = "hierarchy"
	EdgeCauses             EdgeType = "causes"
	EdgeSetupPayoff        EdgeType = "setup_payoff"
	EdgeSemantic           EdgeType = "semantic"
	EdgeSemanticSuggestion EdgeType = "semantic_suggestion"
	EdgeMention            EdgeType = "mention"
	EdgeAlias              EdgeType = "alias"
)

// Undirected reports whether the edge type has no inherent direction.
// Undirected edges get a canonical identity regardless of endpoint order.
func (t EdgeType) Undirected() bool {
	return t == EdgeSemantic || t == EdgeSemanticSuggestion
}

// Provenance records how an edge came to exist.
type Provenance string

const (
	ProvenanceExplicit     Provenance = "explicit"
	ProvenanceInferred     Provenance = "inferred"
	ProvenanceComputed     Provenance = "computed"
	ProvenanceUserApproved Provenance = "user_approved"
)

// GhostPathPrefix is the reserved path namespace for placeholder nodes.
const GhostPathPrefix = "ghost://"

// Node represents a node in the knowledge graph.
type Node struct {
	// ID is the unique identifier for the node.
	ID string

	// Type is the kind of the node.
	Type NodeType

	// Title is the display title, resolved from frontmatter, first
	// heading, or filename.
	Title string

	// Path is the vault-relative path of the backing document. Ghost
	// nodes carry a synthetic path under the ghost:// namespace instead.
	Path string

	// Aliases are alternate titles the node can be referenced by.
	Aliases []string

	// ContentHash is the content hash of the backing document at last
	// index time. Empty for ghosts.
	ContentHash string

	// CreatedAt is when the node was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the node was last re-indexed.
	UpdatedAt time.Time

	// Metadata holds frontmatter fields beyond the recognized set,
	// plus the document's collected tags under "tags".
	Metadata map[string]any
}

// NewGhostNode creates a placeholder node for a reference whose target
// does not exist yet. The node lives under the ghost:// path namespace
// until Materialize moves it onto a real document.
func NewGhostNode(title string) *Node {
	now := time.Now()
	return &Node{
		ID:        uuid.NewString(),
		Type:      NodeNote,
		Title:     title,
		Path:      GhostPath(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GhostPath returns the synthetic path for a ghost with the given title.
func GhostPath(title string) string {
	return GhostPathPrefix + slugify(title)
}

// IsGhost reports whether the node is a placeholder awaiting
// materialization. Derived from the path namespace so it cannot drift
// out of sync with Path.
func (n *Node) IsGhost() bool {
	return strings.HasPrefix(n.Path, GhostPathPrefix)
}

// Materialize converts a ghost into a real node backed by the given
// document path. The node's identity is preserved; this is the only
// transition out of the ghost state.
func (n *Node) Materialize(path string) {
	n.Path = path
	n.UpdatedAt = time.Now()
}

// Edge represents a typed edge between two nodes.
type Edge struct {
	// ID is the unique identifier for the edge.
	ID string

	// Type is the type of the edge.
	Type EdgeType

	// Source is the ID of the source node.
	Source string

	// Target is the ID of the target node.
	Target string

	// Strength is an optional weight in [0,1]; zero means unset.
	Strength float64

	// Provenance records how the edge came to exist.
	Provenance Provenance

	// ValidFrom is the version ID from which the edge applies, if any.
	ValidFrom string

	// ValidTo is the version ID at which the edge stops applying, if any.
	ValidTo string

	// Attributes holds additional metadata (e.g., link display text).
	Attributes map[string]any
}

// Version is one entry in a node's content history chain.
type Version struct {
	// ID is the unique identifier for the version.
	ID string

	// NodeID is the node this version belongs to.
	NodeID string

	// ContentHash is the content hash captured by this version.
	ContentHash string

	// ParentID is the preceding version in the chain, empty for the first.
	ParentID string

	// CreatedAt is when the version was recorded.
	CreatedAt time.Time
}

// NewVersion creates a version record for a node's content hash, chained
// to the given parent version ID (empty for the first version).
func NewVersion(nodeID, contentHash, parentID string) *Version {
	return &Version{
		ID:          uuid.NewString(),
		NodeID:      nodeID,
		ContentHash: contentHash,
		ParentID:    parentID,
		CreatedAt:   time.Now(),
	}
}

// EdgeID creates a deterministic edge ID from type and endpoints.
// Endpoints of undirected types are sorted first, so (A,B) and (B,A)
// produce the same ID; directed types preserve order.
func EdgeID(t EdgeType, source, target string) string {
	if t.Undirected() && target < source {
		source, target = target, source
	}
	return string(t) + ":" + source + ":" + target
}

// Canonicalize orders the endpoints of undirected edge types so that
// (A,B) and (B,A) store identically, and fills in an empty ID with the
// deterministic identity.
func (e *Edge) Canonicalize() {
	if e.Type.Undirected() && e.Target < e.Source {
		e.Source, e.Target = e.Target, e.Source
	}
	if e.ID == "" {
		e.ID = EdgeID(e.Type, e.Source, e.Target)
	}
}

// slugify lowercases s and collapses it to letters, digits, and dashes
// for use in synthetic paths.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
