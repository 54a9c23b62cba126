package graph

// PathResult describes one discovered path between two nodes.
type PathResult struct {
	// Nodes is the ordered node-id sequence from start to goal.
	Nodes []string

	// EdgeTypes holds the type of each traversed edge; always one entry
	// shorter than Nodes.
	EdgeTypes []EdgeType

	// HopCount is the number of edges in the path.
	HopCount int

	// Score is HopCount plus the per-edge-type penalties.
	Score float64
}

// BFSOptions bounds a bidirectional search.
type BFSOptions struct {
	// MaxDepth limits each search direction; a path may span at most
	// 2*MaxDepth hops.
	MaxDepth int

	// DisabledNodes are excluded from expansion entirely.
	DisabledNodes map[string]bool

	// DisabledEdges are excluded from expansion entirely, keyed by edge ID.
	DisabledEdges map[string]bool
}

// step records how a node was reached during one search direction.
type step struct {
	via      string
	edgeType EdgeType
}

// BidirectionalBFS finds a shortest path from start to goal by expanding
// layer-by-layer from both ends until the frontiers meet. start == goal
// returns the trivial single-node, zero-edge path. Returns nil when no
// path exists within 2*MaxDepth combined hops.
func (a *Adjacency) BidirectionalBFS(start, goal string, opts BFSOptions) *PathResult {
	if opts.DisabledNodes[start] || opts.DisabledNodes[goal] {
		return nil
	}
	if start == goal {
		return &PathResult{Nodes: []string{start}, EdgeTypes: []EdgeType{}}
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	parentF := map[string]step{}
	parentB := map[string]step{}
	distF := map[string]int{start: 0}
	distB := map[string]int{goal: 0}
	frontierF := []string{start}
	frontierB := []string{goal}
	depthF, depthB := 0, 0

	for {
		// Alternate sides, preferring the shallower one; a side drops
		// out once its frontier is exhausted or it reaches maxDepth.
		canF := len(frontierF) > 0 && depthF < maxDepth
		canB := len(frontierB) > 0 && depthB < maxDepth
		if !canF && !canB {
			return nil
		}
		expandForward := canF && (!canB || depthF <= depthB)

		var meets []string
		if expandForward {
			frontierF, meets = a.expandLayer(frontierF, parentF, distF, distB, opts, true)
			depthF++
		} else {
			frontierB, meets = a.expandLayer(frontierB, parentB, distB, distF, opts, false)
			depthB++
		}

		if len(meets) > 0 {
			best := meets[0]
			bestCost := distF[best] + distB[best]
			for _, m := range meets[1:] {
				if c := distF[m] + distB[m]; c < bestCost {
					best, bestCost = m, c
				}
			}
			return a.reconstruct(start, goal, best, parentF, parentB)
		}
	}
}

// expandLayer advances one full BFS layer in a single direction and
// reports any nodes already visited by the opposite direction.
func (a *Adjacency) expandLayer(frontier []string, parent map[string]step, dist, otherDist map[string]int, opts BFSOptions, forward bool) (next, meets []string) {
	for _, id := range frontier {
		var nbs []Neighbor
		if forward {
			nbs = a.forward[id]
		} else {
			nbs = a.backward[id]
		}
		for _, nb := range nbs {
			if opts.DisabledNodes[nb.NodeID] || opts.DisabledEdges[nb.EdgeID] {
				continue
			}
			if _, seen := dist[nb.NodeID]; seen {
				continue
			}
			dist[nb.NodeID] = dist[id] + 1
			parent[nb.NodeID] = step{via: id, edgeType: nb.EdgeType}
			next = append(next, nb.NodeID)
			if _, met := otherDist[nb.NodeID]; met {
				meets = append(meets, nb.NodeID)
			}
		}
	}
	return next, meets
}

// reconstruct splices the forward and backward half-paths at the meeting
// node into a single start-to-goal path.
func (a *Adjacency) reconstruct(start, goal, meet string, parentF, parentB map[string]step) *PathResult {
	var nodes []string
	var edges []EdgeType

	for cur := meet; cur != start; {
		s := parentF[cur]
		nodes = append(nodes, cur)
		edges = append(edges, s.edgeType)
		cur = s.via
	}
	nodes = append(nodes, start)
	reverse(nodes)
	reverseEdges(edges)

	for cur := meet; cur != goal; {
		s := parentB[cur]
		nodes = append(nodes, s.via)
		edges = append(edges, s.edgeType)
		cur = s.via
	}

	return &PathResult{
		Nodes:     nodes,
		EdgeTypes: edges,
		HopCount:  len(edges),
		Score:     PathScore(edges),
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseEdges(s []EdgeType) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
