// Package mcp provides the MCP (Model Context Protocol) server for
// ZettelScript. Graph queries are exposed as tools over stdio; results
// are markdown so clients can hand them straight to a model.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/ingestion"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/storage"
)

const (
	serverName    = "zettelscript"
	serverVersion = "0.1.0"
)

// Store is the storage surface the MCP tools need.
type Store interface {
	FindByID(ctx context.Context, nodeID string) (*graph.Node, error)
	FindByTitleOrAlias(ctx context.Context, text string) ([]*graph.Node, error)
	AllNodes(ctx context.Context) ([]*graph.Node, error)
	AllEdges(ctx context.Context) ([]*graph.Edge, error)
	LatestVersion(ctx context.Context, nodeID string) (*graph.Version, error)
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// Server wires graph queries to MCP clients over stdio.
type Server struct {
	store        Store
	pipeline     *ingestion.Pipeline
	pathDefaults graph.PathQuery
	server       *mcp.Server
	logger       *slog.Logger
}

// NewServer creates a new MCP server. The pipeline backs the reindex
// tool and may be nil for a read-only server; pathDefaults seeds every
// find_paths call.
func NewServer(store Store, pipeline *ingestion.Pipeline, pathDefaults graph.PathQuery) *Server {
	s := &Server{
		store:        store,
		pipeline:     pipeline,
		pathDefaults: pathDefaults,
		logger:       slog.Default().With(slog.String("component", "mcp")),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "find_paths",
			Description: "Find up to K diverse shortest paths between two notes. Paths traverse links in both directions and are scored by hop count plus edge-type penalties.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"from":      {Type: "string", Description: "Source note title or id"},
					"to":        {Type: "string", Description: "Target note title or id"},
					"k":         {Type: "integer", Description: "Number of paths to return"},
					"max_depth": {Type: "integer", Description: "Search depth limit per direction"},
					"edge_types": {
						Type:        "array",
						Items:       &jsonschema.Schema{Type: "string"},
						Description: "Restrict traversal to these edge types",
					},
				},
				Required: []string{"from", "to"},
			},
		},
		{
			Name:        "get_node",
			Description: "Show a note's identity, type, path, aliases, metadata, and latest version.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"note": {Type: "string", Description: "Note title or id"},
				},
				Required: []string{"note"},
			},
		},
		{
			Name:        "get_neighbors",
			Description: "List every note connected to a note, with edge type and direction.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"note": {Type: "string", Description: "Note title or id"},
				},
				Required: []string{"note"},
			},
		},
		{
			Name:        "get_backlinks",
			Description: "List the notes that link to a note.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"note": {Type: "string", Description: "Note title or id"},
				},
				Required: []string{"note"},
			},
		},
		{
			Name:        "graph_stats",
			Description: "Graph-wide statistics: node and edge counts by type, connected components, hubs, and ghost notes.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
		{
			Name:        "reindex",
			Description: "Rebuild the knowledge graph from the vault files.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "zettelscript://overview",
			Name:        "Graph Overview",
			Description: "High-level statistics about the indexed vault",
			MimeType:    "text/markdown",
		},
		{
			URI:         "zettelscript://schema",
			Name:        "Graph Schema",
			Description: "Node and edge types of the knowledge graph",
			MimeType:    "text/markdown",
		},
		{
			URI:         "zettelscript://ghosts",
			Name:        "Ghost Notes",
			Description: "Referenced notes that have no file yet",
			MimeType:    "text/markdown",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "find_paths":
		from, _ := args["from"].(string)
		to, _ := args["to"].(string)
		k, _ := args["k"].(float64)
		maxDepth, _ := args["max_depth"].(float64)
		return s.handleFindPaths(ctx, from, to, int(k), int(maxDepth), stringList(args["edge_types"]))
	case "get_node":
		note, _ := args["note"].(string)
		return s.handleGetNode(ctx, note)
	case "get_neighbors":
		note, _ := args["note"].(string)
		return s.handleGetNeighbors(ctx, note)
	case "get_backlinks":
		note, _ := args["note"].(string)
		return s.handleGetBacklinks(ctx, note)
	case "graph_stats":
		return s.handleGraphStats(ctx)
	case "reindex":
		return s.handleReindex(ctx)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "zettelscript://overview":
		return s.handleGraphStats(ctx)
	case "zettelscript://schema":
		return schemaDoc(), nil
	case "zettelscript://ghosts":
		return s.ghostList(ctx)
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	s.logger.Info("mcp server listening on stdio")

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// The protocol requires compact JSON, one message per line.

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": serverVersion,
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		_ = json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	s.logger.Debug("tool call", slog.String("tool", name))

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		s.logger.Warn("tool call failed", slog.String("tool", name), slog.Any("error", err))
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/markdown",
					"text":     content,
				},
			},
		},
	}
}

// Tool handlers

func (s *Server) handleFindPaths(ctx context.Context, from, to string, k, maxDepth int, edgeTypes []string) (string, error) {
	if from == "" || to == "" {
		return "Both 'from' and 'to' are required.", nil
	}

	fromNode, soft, err := s.resolveNote(ctx, from)
	if err != nil {
		return "", err
	}
	if soft != "" {
		return soft, nil
	}
	toNode, soft, err := s.resolveNote(ctx, to)
	if err != nil {
		return "", err
	}
	if soft != "" {
		return soft, nil
	}

	q := s.pathDefaults
	if k > 0 {
		q.K = k
	}
	if maxDepth > 0 {
		q.MaxDepth = maxDepth
	}
	if len(edgeTypes) > 0 {
		q.EdgeTypes = make([]graph.EdgeType, len(edgeTypes))
		for i, t := range edgeTypes {
			q.EdgeTypes[i] = graph.EdgeType(t)
		}
	}

	edges, err := s.store.AllEdges(ctx)
	if err != nil {
		return "", err
	}

	result := graph.FindKShortestPaths(edges, fromNode.ID, toNode.ID, q)
	if len(result.Paths) == 0 {
		return fmt.Sprintf("No path from %q to %q (%s).", fromNode.Title, toNode.Title, result.Reason), nil
	}

	titles, err := s.titleIndex(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d paths from %q to %q:\n\n", len(result.Paths), fromNode.Title, toNode.Title)
	for i, p := range result.Paths {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, renderPath(p, titles))
		fmt.Fprintf(&sb, "   hops: %d, score: %.2f\n\n", p.HopCount, p.Score)
	}
	if result.Reason != graph.ReasonFoundAll {
		fmt.Fprintf(&sb, "(%s)\n", result.Reason)
	}

	return sb.String(), nil
}

func (s *Server) handleGetNode(ctx context.Context, note string) (string, error) {
	if note == "" {
		return "No note provided.", nil
	}

	node, soft, err := s.resolveNote(ctx, note)
	if err != nil {
		return "", err
	}
	if soft != "" {
		return soft, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", node.Title)
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", node.ID)
	fmt.Fprintf(&sb, "- **Type:** %s\n", node.Type)
	if node.IsGhost() {
		sb.WriteString("- **Ghost:** referenced but no file exists yet\n")
	} else {
		fmt.Fprintf(&sb, "- **Path:** %s\n", node.Path)
	}
	if len(node.Aliases) > 0 {
		fmt.Fprintf(&sb, "- **Aliases:** %s\n", strings.Join(node.Aliases, ", "))
	}
	if !node.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Updated:** %s\n", node.UpdatedAt.Format(time.RFC3339))
	}

	if len(node.Metadata) > 0 {
		sb.WriteString("\n## Metadata\n\n")
		for _, k := range slices.Sorted(maps.Keys(node.Metadata)) {
			fmt.Fprintf(&sb, "- %s: %v\n", k, node.Metadata[k])
		}
	}

	if v, err := s.store.LatestVersion(ctx, node.ID); err == nil {
		hash := v.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(&sb, "\nLatest version `%s` (content hash `%s`).\n", v.ID, hash)
	}

	return sb.String(), nil
}

func (s *Server) handleGetNeighbors(ctx context.Context, note string) (string, error) {
	if note == "" {
		return "No note provided.", nil
	}

	node, soft, err := s.resolveNote(ctx, note)
	if err != nil {
		return "", err
	}
	if soft != "" {
		return soft, nil
	}

	edges, err := s.store.AllEdges(ctx)
	if err != nil {
		return "", err
	}

	refs := graph.BuildAdjacency(edges).Neighbors(node.ID)
	if len(refs) == 0 {
		return fmt.Sprintf("%q has no neighbors.", node.Title), nil
	}

	titles, err := s.titleIndex(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Neighbors of %q (%d):\n\n", node.Title, len(refs))
	for _, ref := range refs {
		arrow := "->"
		if ref.Direction == graph.DirectionIn {
			arrow = "<-"
		}
		fmt.Fprintf(&sb, "- %s **%s** (%s)\n", arrow, titleOf(ref.NodeID, titles), ref.EdgeType)
	}

	return sb.String(), nil
}

func (s *Server) handleGetBacklinks(ctx context.Context, note string) (string, error) {
	if note == "" {
		return "No note provided.", nil
	}

	node, soft, err := s.resolveNote(ctx, note)
	if err != nil {
		return "", err
	}
	if soft != "" {
		return soft, nil
	}

	edges, err := s.store.AllEdges(ctx)
	if err != nil {
		return "", err
	}

	backlinks := graph.BuildAdjacency(edges).Backlinks(node.ID)
	if len(backlinks) == 0 {
		return fmt.Sprintf("No notes link to %q.", node.Title), nil
	}

	titles, err := s.titleIndex(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Backlinks to %q (%d):\n\n", node.Title, len(backlinks))
	for _, nb := range backlinks {
		fmt.Fprintf(&sb, "- **%s** (%s)\n", titleOf(nb.NodeID, titles), nb.EdgeType)
	}

	return sb.String(), nil
}

func (s *Server) handleGraphStats(ctx context.Context) (string, error) {
	nodes, err := s.store.AllNodes(ctx)
	if err != nil {
		return "", err
	}
	edges, err := s.store.AllEdges(ctx)
	if err != nil {
		return "", err
	}

	nodesByType := make(map[graph.NodeType]int)
	titles := make(map[string]string, len(nodes))
	ids := make([]string, 0, len(nodes))
	ghostCount := 0
	for _, n := range nodes {
		ids = append(ids, n.ID)
		titles[n.ID] = n.Title
		nodesByType[n.Type]++
		if n.IsGhost() {
			ghostCount++
		}
	}

	edgesByType := make(map[graph.EdgeType]int)
	for _, e := range edges {
		edgesByType[e.Type]++
	}

	var sb strings.Builder
	sb.WriteString("# Graph Statistics\n\n")
	fmt.Fprintf(&sb, "**Nodes:** %d (%d ghosts)\n", len(nodes), ghostCount)
	fmt.Fprintf(&sb, "**Edges:** %d\n", len(edges))

	if len(nodesByType) > 0 {
		sb.WriteString("\n## Nodes by type\n\n")
		for _, t := range slices.Sorted(maps.Keys(nodesByType)) {
			fmt.Fprintf(&sb, "- %s: %d\n", t, nodesByType[t])
		}
	}
	if len(edgesByType) > 0 {
		sb.WriteString("\n## Edges by type\n\n")
		for _, t := range slices.Sorted(maps.Keys(edgesByType)) {
			fmt.Fprintf(&sb, "- %s: %d\n", t, edgesByType[t])
		}
	}

	adj := graph.BuildAdjacency(edges)
	components := adj.ConnectedComponents(ids)
	fmt.Fprintf(&sb, "\n**Components:** %d", len(components))
	if len(components) > 0 {
		fmt.Fprintf(&sb, " (largest: %d nodes)", len(components[0]))
	}
	sb.WriteString("\n")

	if hubs := adj.Hubs(5); len(hubs) > 0 {
		sb.WriteString("\n## Top hubs\n\n")
		for _, h := range hubs {
			fmt.Fprintf(&sb, "- **%s**: %d in / %d out\n", titleOf(h.NodeID, titles), h.InDegree, h.OutDegree)
		}
	}

	return sb.String(), nil
}

func (s *Server) handleReindex(ctx context.Context) (string, error) {
	if s.pipeline == nil {
		return "Reindexing is not available on this server.", nil
	}

	stats, err := s.pipeline.IndexBatch(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("reindexing: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Reindex complete.\n\n")
	fmt.Fprintf(&sb, "- Files: %d\n", stats.Files)
	fmt.Fprintf(&sb, "- Nodes: %d\n", stats.Nodes)
	fmt.Fprintf(&sb, "- Edges: %d\n", stats.Edges)
	fmt.Fprintf(&sb, "- Unresolved links: %d\n", stats.Unresolved)
	fmt.Fprintf(&sb, "- Ambiguous links: %d\n", stats.Ambiguous)
	if stats.Removed > 0 {
		fmt.Fprintf(&sb, "- Removed nodes: %d\n", stats.Removed)
	}
	fmt.Fprintf(&sb, "- Duration: %.2fs\n", stats.Duration.Seconds())
	if len(stats.Errors) > 0 {
		fmt.Fprintf(&sb, "\n%d files failed to parse.\n", len(stats.Errors))
	}

	return sb.String(), nil
}

// Resource handlers

func (s *Server) ghostList(ctx context.Context) (string, error) {
	nodes, err := s.store.AllNodes(ctx)
	if err != nil {
		return "", err
	}

	var ghosts []*graph.Node
	for _, n := range nodes {
		if n.IsGhost() {
			ghosts = append(ghosts, n)
		}
	}
	if len(ghosts) == 0 {
		return "# Ghost Notes\n\nEvery referenced note has a file.\n", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Ghost Notes (%d)\n\n", len(ghosts))
	sb.WriteString("These notes are referenced by links but have no file yet:\n\n")
	for _, g := range ghosts {
		fmt.Fprintf(&sb, "- %s\n", g.Title)
	}
	return sb.String(), nil
}

func schemaDoc() string {
	var sb strings.Builder
	sb.WriteString("# ZettelScript Graph Schema\n\n")
	sb.WriteString("## Node types\n\n")
	sb.WriteString("| Type | Description |\n")
	sb.WriteString("|------|-------------|\n")
	sb.WriteString("| `note` | Plain note (default) |\n")
	sb.WriteString("| `scene` | Narrative scene |\n")
	sb.WriteString("| `character` | Character sheet |\n")
	sb.WriteString("| `location` | Place |\n")
	sb.WriteString("| `object` | Object or artifact |\n")
	sb.WriteString("| `event` | Event on a timeline |\n")
	sb.WriteString("| `concept` | Abstract concept |\n")
	sb.WriteString("| `moc` | Map of content, a curated hub |\n")
	sb.WriteString("| `timeline` | Ordered sequence of events |\n")
	sb.WriteString("| `draft` | Work in progress |\n")
	sb.WriteString("\n## Edge types\n\n")
	sb.WriteString("| Type | Source | Meaning |\n")
	sb.WriteString("|------|--------|--------|\n")
	sb.WriteString("| `explicit_link` | wikilink | Author wrote `[[Target]]` |\n")
	sb.WriteString("| `backlink` | derived | Reverse of an explicit link |\n")
	sb.WriteString("| `sequence` | frontmatter | Narrative order |\n")
	sb.WriteString("| `hierarchy` | frontmatter | Parent/child structure |\n")
	sb.WriteString("| `causes` | frontmatter | Causal relation |\n")
	sb.WriteString("| `setup_payoff` | frontmatter | Setup and its payoff |\n")
	sb.WriteString("| `semantic` | computed | Embedding similarity |\n")
	sb.WriteString("| `semantic_suggestion` | computed | Suggested, unreviewed |\n")
	sb.WriteString("| `mention` | inferred | Unlinked title mention |\n")
	sb.WriteString("| `alias` | derived | Alias relation |\n")
	return sb.String()
}

// Helper functions

// resolveNote finds a node by id first, then by title or alias. A miss
// or an ambiguous reference comes back as a message for the client
// rather than an error.
func (s *Server) resolveNote(ctx context.Context, text string) (node *graph.Node, soft string, err error) {
	node, err = s.store.FindByID(ctx, text)
	if err == nil {
		return node, "", nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", err
	}

	matches, err := s.store.FindByTitleOrAlias(ctx, text)
	if err != nil {
		return nil, "", err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Sprintf("Note %q not found in the graph.", text), nil
	case 1:
		return matches[0], "", nil
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Note %q is ambiguous. Candidates:\n\n", text)
		for _, m := range matches {
			fmt.Fprintf(&sb, "- %s (`%s`)\n", m.Title, m.ID)
		}
		return nil, sb.String(), nil
	}
}

// titleIndex maps every node id to its title for rendering.
func (s *Server) titleIndex(ctx context.Context) (map[string]string, error) {
	nodes, err := s.store.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(nodes))
	for _, n := range nodes {
		titles[n.ID] = n.Title
	}
	return titles, nil
}

func titleOf(id string, titles map[string]string) string {
	if t, ok := titles[id]; ok && t != "" {
		return t
	}
	return id
}

// renderPath renders a path as "title -(edge_type)-> title".
func renderPath(p graph.PathResult, titles map[string]string) string {
	var sb strings.Builder
	for i, id := range p.Nodes {
		if i > 0 {
			fmt.Fprintf(&sb, " -(%s)-> ", p.EdgeTypes[i-1])
		}
		sb.WriteString(titleOf(id, titles))
	}
	return sb.String()
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
