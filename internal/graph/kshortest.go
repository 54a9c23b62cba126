package graph

import "sort"

// Default bounds for path queries, applied when a caller leaves the
// corresponding knob unset.
const (
	defaultK             = 3
	defaultMaxDepth      = 6
	defaultMaxCandidates = 200
)

// Search-result reasons reported alongside a path set.
const (
	// ReasonFoundAll means the full K paths were returned.
	ReasonFoundAll = "found_all"

	// ReasonNoPath means the endpoints are not connected at all.
	ReasonNoPath = "no_path"

	// ReasonDiversityFilter means overlap rejections limited the result.
	ReasonDiversityFilter = "diversity_filter"

	// ReasonExhaustedCandidates means the candidate pool ran out first.
	ReasonExhaustedCandidates = "exhausted_candidates"
)

// edgeTypePenalty scores how literal a connection is; lower is stronger.
var edgeTypePenalty = map[EdgeType]float64{
	EdgeExplicitLink:       0,
	EdgeBacklink:           0.05,
	EdgeAlias:              0.05,
	EdgeSequence:           0.1,
	EdgeHierarchy:          0.15,
	EdgeCauses:             0.2,
	EdgeSetupPayoff:        0.25,
	EdgeMention:            0.25,
	EdgeSemantic:           0.3,
	EdgeSemanticSuggestion: 0.4,
}

// unknownTypePenalty applies to edge types outside the table.
const unknownTypePenalty = 0.5

// PathScore returns hop count plus the per-edge-type penalty of every
// traversed edge. A path of only explicit links scores exactly its hop
// count.
func PathScore(edgeTypes []EdgeType) float64 {
	score := float64(len(edgeTypes))
	for _, t := range edgeTypes {
		p, ok := edgeTypePenalty[t]
		if !ok {
			p = unknownTypePenalty
		}
		score += p
	}
	return score
}

// IsSimplePath reports whether no node id repeats in the sequence.
func IsSimplePath(nodes []string) bool {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// JaccardOverlap returns |A∩B| / |A∪B| over two node-id sets. Two empty
// sets overlap completely.
func JaccardOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for n := range a {
		if b[n] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

// PathNodeSet collects a path's node ids as a set, optionally dropping
// the first and last node so shared endpoints do not count as overlap.
func PathNodeSet(nodes []string, excludeEndpoints bool) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if excludeEndpoints && (i == 0 || i == len(nodes)-1) {
			continue
		}
		set[n] = true
	}
	return set
}

// PathQuery bounds a k-shortest diverse paths search.
type PathQuery struct {
	// K is the number of paths requested.
	K int

	// MaxDepth limits each direction of the initial shortest-path search.
	MaxDepth int

	// MaxExtraHops admits candidates up to this many hops longer than
	// the shortest path. Zero keeps only shortest-length candidates.
	MaxExtraHops int

	// EdgeTypes restricts traversal to these edge types; empty means all.
	EdgeTypes []EdgeType

	// OverlapThreshold is the maximum Jaccard overlap an accepted path
	// may have with any previously accepted path.
	OverlapThreshold float64

	// MaxCandidates caps the number of enumerated candidate paths.
	MaxCandidates int
}

// DefaultPathQuery returns the standard query bounds.
func DefaultPathQuery() PathQuery {
	return PathQuery{
		K:                defaultK,
		MaxDepth:         defaultMaxDepth,
		MaxExtraHops:     2,
		OverlapThreshold: 0.5,
		MaxCandidates:    defaultMaxCandidates,
	}
}

// clamped fills nonsensical knob values with defaults while leaving the
// meaningful zeros (MaxExtraHops, OverlapThreshold) alone.
func (q PathQuery) clamped() PathQuery {
	if q.K <= 0 {
		q.K = defaultK
	}
	if q.MaxDepth <= 0 {
		q.MaxDepth = defaultMaxDepth
	}
	if q.MaxCandidates <= 0 {
		q.MaxCandidates = defaultMaxCandidates
	}
	if q.MaxExtraHops < 0 {
		q.MaxExtraHops = 0
	}
	if q.OverlapThreshold < 0 {
		q.OverlapThreshold = 0
	}
	return q
}

// PathsResult is the outcome of a k-shortest-paths query.
type PathsResult struct {
	// Paths holds the accepted paths, shortest and strongest first.
	Paths []PathResult

	// Reason explains the result size: found_all, no_path,
	// diversity_filter, or exhausted_candidates.
	Reason string
}

// FindKShortestPaths returns up to K diverse paths between two nodes.
// Candidates are simple paths within MaxExtraHops of the shortest length,
// scored by hop count plus edge-type penalties, and greedily accepted
// while their node overlap with every already-accepted path stays within
// OverlapThreshold.
func FindKShortestPaths(edges []*Edge, from, to string, q PathQuery) PathsResult {
	q = q.clamped()
	adj := BuildAdjacency(edges, q.EdgeTypes...)

	shortest := adj.BidirectionalBFS(from, to, BFSOptions{MaxDepth: q.MaxDepth})
	if shortest == nil {
		return PathsResult{Paths: []PathResult{}, Reason: ReasonNoPath}
	}

	maxLen := shortest.HopCount + q.MaxExtraHops
	candidates := adj.enumerateSimplePaths(from, to, maxLen, q.MaxCandidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].HopCount != candidates[j].HopCount {
			return candidates[i].HopCount < candidates[j].HopCount
		}
		return candidates[i].Score < candidates[j].Score
	})

	accepted := make([]PathResult, 0, q.K)
	acceptedSets := make([]map[string]bool, 0, q.K)
	rejected := false
	for _, cand := range candidates {
		if len(accepted) == q.K {
			break
		}
		set := PathNodeSet(cand.Nodes, true)
		diverse := true
		for _, prev := range acceptedSets {
			if JaccardOverlap(set, prev) > q.OverlapThreshold {
				diverse = false
				break
			}
		}
		if !diverse {
			rejected = true
			continue
		}
		accepted = append(accepted, cand)
		acceptedSets = append(acceptedSets, set)
	}

	reason := ReasonFoundAll
	if len(accepted) < q.K {
		if rejected {
			reason = ReasonDiversityFilter
		} else {
			reason = ReasonExhaustedCandidates
		}
	}
	return PathsResult{Paths: accepted, Reason: reason}
}

// enumerateSimplePaths collects simple paths from start to goal of at
// most maxLen hops via depth-first search, stopping once limit paths
// have been gathered.
func (a *Adjacency) enumerateSimplePaths(start, goal string, maxLen, limit int) []PathResult {
	var results []PathResult
	onPath := map[string]bool{start: true}
	nodes := []string{start}
	var edges []EdgeType

	var dfs func(cur string)
	dfs = func(cur string) {
		if len(results) >= limit {
			return
		}
		if cur == goal {
			p := PathResult{
				Nodes:     append([]string(nil), nodes...),
				EdgeTypes: append([]EdgeType(nil), edges...),
				HopCount:  len(edges),
			}
			p.Score = PathScore(p.EdgeTypes)
			results = append(results, p)
			return
		}
		if len(edges) >= maxLen {
			return
		}
		for _, nb := range a.forward[cur] {
			if onPath[nb.NodeID] {
				continue
			}
			onPath[nb.NodeID] = true
			nodes = append(nodes, nb.NodeID)
			edges = append(edges, nb.EdgeType)

			dfs(nb.NodeID)

			onPath[nb.NodeID] = false
			nodes = nodes[:len(nodes)-1]
			edges = edges[:len(edges)-1]
		}
	}
	dfs(start)
	return results
}
