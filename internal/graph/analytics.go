package graph

import "sort"

// Directions reported by Neighbors.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// NeighborRef describes one adjacent node together with the direction of
// the connecting edge relative to the queried node.
type NeighborRef struct {
	// NodeID is the adjacent node.
	NodeID string

	// EdgeType is the type of the connecting edge.
	EdgeType EdgeType

	// Direction is "out" for outgoing edges and "in" for incoming ones.
	Direction string
}

// Degree returns the in-degree and out-degree of a node.
func (a *Adjacency) Degree(id string) (in, out int) {
	return len(a.backward[id]), len(a.forward[id])
}

// Neighbors returns every adjacent node with edge type and direction,
// outgoing first, in edge order.
func (a *Adjacency) Neighbors(id string) []NeighborRef {
	refs := make([]NeighborRef, 0, len(a.forward[id])+len(a.backward[id]))
	for _, nb := range a.forward[id] {
		refs = append(refs, NeighborRef{NodeID: nb.NodeID, EdgeType: nb.EdgeType, Direction: DirectionOut})
	}
	for _, nb := range a.backward[id] {
		refs = append(refs, NeighborRef{NodeID: nb.NodeID, EdgeType: nb.EdgeType, Direction: DirectionIn})
	}
	return refs
}

// Backlinks returns the nodes whose edges point at the given node, in
// edge order.
func (a *Adjacency) Backlinks(id string) []Neighbor {
	return a.backward[id]
}

// ConnectedComponents groups the given nodes into weakly connected
// components, treating every edge as traversable in both directions.
// Nodes absent from the edge set become singleton components. Components
// are sorted by size descending, then by their smallest member id; the
// members of each component are sorted ascending.
func (a *Adjacency) ConnectedComponents(nodeIDs []string) [][]string {
	visited := make(map[string]bool, len(nodeIDs))
	var components [][]string

	for _, start := range nodeIDs {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, nb := range a.forward[cur] {
				if !visited[nb.NodeID] {
					visited[nb.NodeID] = true
					queue = append(queue, nb.NodeID)
				}
			}
			for _, nb := range a.backward[cur] {
				if !visited[nb.NodeID] {
					visited[nb.NodeID] = true
					queue = append(queue, nb.NodeID)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}

	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

// Hub is a node ranked by how many edges point at it.
type Hub struct {
	// NodeID is the hub node.
	NodeID string

	// InDegree is the number of incoming edges.
	InDegree int

	// OutDegree is the number of outgoing edges.
	OutDegree int
}

// Hubs returns up to limit nodes ordered by in-degree descending, with
// out-degree and then node id as tiebreaks.
func (a *Adjacency) Hubs(limit int) []Hub {
	hubs := make([]Hub, 0, len(a.backward))
	for id, in := range a.backward {
		hubs = append(hubs, Hub{NodeID: id, InDegree: len(in), OutDegree: len(a.forward[id])})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].InDegree != hubs[j].InDegree {
			return hubs[i].InDegree > hubs[j].InDegree
		}
		if hubs[i].OutDegree != hubs[j].OutDegree {
			return hubs[i].OutDegree > hubs[j].OutDegree
		}
		return hubs[i].NodeID < hubs[j].NodeID
	})
	if limit > 0 && len(hubs) > limit {
		hubs = hubs[:limit]
	}
	return hubs
}
