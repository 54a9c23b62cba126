package graph

// Neighbor is one hop in the adjacency structure.
type Neighbor struct {
	// NodeID is the node on the far end of the edge.
	NodeID string

	// EdgeID is the identity of the connecting edge.
	EdgeID string

	// EdgeType is the type of the connecting edge.
	EdgeType EdgeType
}

// Adjacency holds forward and backward adjacency lists built from an edge
// set. It is the read-only traversal structure behind path finding and
// analytics; construction is O(E).
type Adjacency struct {
	forward  map[string][]Neighbor
	backward map[string][]Neighbor
}

// BuildAdjacency builds forward and backward adjacency lists from edges.
// When edgeTypes is non-empty, only edges of those types are included.
// Undirected edge types are entered in both directions so traversal can
// cross them either way.
func BuildAdjacency(edges []*Edge, edgeTypes ...EdgeType) *Adjacency {
	var allowed map[EdgeType]bool
	if len(edgeTypes) > 0 {
		allowed = make(map[EdgeType]bool, len(edgeTypes))
		for _, t := range edgeTypes {
			allowed[t] = true
		}
	}

	a := &Adjacency{
		forward:  make(map[string][]Neighbor),
		backward: make(map[string][]Neighbor),
	}
	for _, e := range edges {
		if allowed != nil && !allowed[e.Type] {
			continue
		}
		a.add(e.Source, e.Target, e)
		if e.Type.Undirected() && e.Source != e.Target {
			a.add(e.Target, e.Source, e)
		}
	}
	return a
}

func (a *Adjacency) add(from, to string, e *Edge) {
	a.forward[from] = append(a.forward[from], Neighbor{NodeID: to, EdgeID: e.ID, EdgeType: e.Type})
	a.backward[to] = append(a.backward[to], Neighbor{NodeID: from, EdgeID: e.ID, EdgeType: e.Type})
}

// Outgoing returns the forward neighbors of a node, in edge order.
func (a *Adjacency) Outgoing(id string) []Neighbor {
	return a.forward[id]
}

// Incoming returns the backward neighbors of a node, in edge order.
func (a *Adjacency) Incoming(id string) []Neighbor {
	return a.backward[id]
}
