// Package cmd provides CLI command implementations for ZettelScript.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/config"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/ingestion"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/resolver"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/storage"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/vault"
	"github.com/RobThePCGuy/ZettelScript-sub003/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// maxErrorSample caps how many parse failures the index summary lists.
const maxErrorSample = 5

// IndexCmd indexes a vault into the knowledge graph.
type IndexCmd struct {
	Vault string `arg:"" optional:"" default:"." help:"Vault root directory" env:"ZETTELSCRIPT_VAULT"`
}

// Run executes the index command.
func (c *IndexCmd) Run() error {
	ctx := context.Background()

	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	color.Green("Indexing %s", root)

	store, err := openStore(root, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pipeline, err := newPipeline(root, cfg, store)
	if err != nil {
		return err
	}

	progress := func(phase string, pct float64) {
		fmt.Printf("\r\033[K%s (%.0f%%)", phase, pct*100)
	}

	stats, err := pipeline.IndexBatch(ctx, progress)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Println() // Newline after progress
	printStats(stats)

	return nil
}

// WatchCmd indexes a vault and reindexes as files change.
type WatchCmd struct {
	Vault    string        `arg:"" optional:"" default:"." help:"Vault root directory" env:"ZETTELSCRIPT_VAULT"`
	Debounce time.Duration `help:"Settle window before a changed file is reindexed (0 = config value)" env:"ZETTELSCRIPT_DEBOUNCE"`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	debounce := time.Duration(cfg.Watch.Debounce)
	if c.Debounce > 0 {
		debounce = c.Debounce
	}

	store, err := openStore(root, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pipeline, err := newPipeline(root, cfg, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping...")
		cancel()
	}()

	color.Green("Indexing %s", root)
	stats, err := pipeline.IndexBatch(ctx, nil)
	if err != nil {
		return fmt.Errorf("initial index: %w", err)
	}
	printStats(stats)

	watcher := ingestion.NewWatcher(pipeline, slog.Default(), debounce)
	go func() {
		for ev := range watcher.Events() {
			printEvent(ev)
		}
	}()

	fmt.Printf("\nWatching %s for changes (Ctrl+C to stop)\n", root)
	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watching: %w", err)
	}

	return nil
}

// PathsCmd finds diverse shortest paths between two notes.
type PathsCmd struct {
	From string `arg:"" help:"Source note title or id"`
	To   string `arg:"" help:"Target note title or id"`

	Vault     string   `help:"Vault root directory" default:"." env:"ZETTELSCRIPT_VAULT"`
	K         int      `short:"k" help:"Number of paths (0 = config value)"`
	MaxDepth  int      `help:"Search depth limit per direction (0 = config value)"`
	ExtraHops int      `default:"-1" help:"Extra hops allowed beyond the shortest path (-1 = config value)"`
	Overlap   float64  `default:"-1" help:"Node-overlap rejection threshold (-1 = config value)"`
	EdgeTypes []string `help:"Restrict traversal to these edge types"`
}

// Run executes the paths command.
func (c *PathsCmd) Run() error {
	ctx := context.Background()

	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	store, err := openStore(root, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	from, err := findNode(ctx, store, c.From)
	if err != nil {
		return err
	}
	to, err := findNode(ctx, store, c.To)
	if err != nil {
		return err
	}

	q := cfg.Paths.Query()
	if c.K > 0 {
		q.K = c.K
	}
	if c.MaxDepth > 0 {
		q.MaxDepth = c.MaxDepth
	}
	if c.ExtraHops >= 0 {
		q.MaxExtraHops = c.ExtraHops
	}
	if c.Overlap >= 0 {
		q.OverlapThreshold = c.Overlap
	}
	for _, s := range c.EdgeTypes {
		q.EdgeTypes = append(q.EdgeTypes, graph.EdgeType(s))
	}

	edges, err := store.AllEdges(ctx)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	result := graph.FindKShortestPaths(edges, from.ID, to.ID, q)
	if len(result.Paths) == 0 {
		fmt.Printf("No path from %q to %q (%s)\n", from.Title, to.Title, result.Reason)
		return nil
	}

	titles, err := titleIndex(ctx, store)
	if err != nil {
		return err
	}

	color.Cyan("Paths from %q to %q:", from.Title, to.Title)
	for i, p := range result.Paths {
		fmt.Printf("\n%d. %s\n", i+1, renderPath(p, titles))
		fmt.Printf("   hops: %d  score: %.2f\n", p.HopCount, p.Score)
	}
	if result.Reason != graph.ReasonFoundAll {
		fmt.Printf("\n(%s)\n", result.Reason)
	}

	return nil
}

// LinksCmd shows a note's outgoing links, backlinks, and neighbors.
type LinksCmd struct {
	Note  string `arg:"" help:"Note title or id"`
	Vault string `help:"Vault root directory" default:"." env:"ZETTELSCRIPT_VAULT"`
}

// Run executes the links command.
func (c *LinksCmd) Run() error {
	ctx := context.Background()

	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	store, err := openStore(root, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	node, err := findNode(ctx, store, c.Note)
	if err != nil {
		return err
	}

	edges, err := store.AllEdges(ctx)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}
	titles, err := titleIndex(ctx, store)
	if err != nil {
		return err
	}

	adj := graph.BuildAdjacency(edges)
	in, out := adj.Degree(node.ID)

	color.Cyan("%s (%s)", node.Title, node.Type)
	fmt.Printf("  %s\n", node.Path)
	fmt.Printf("  %d outgoing, %d incoming\n", out, in)

	if outgoing := adj.Outgoing(node.ID); len(outgoing) > 0 {
		color.Cyan("\nOutgoing links:")
		for _, nb := range outgoing {
			fmt.Printf("  -> %s (%s)\n", titleOf(nb.NodeID, titles), nb.EdgeType)
		}
	}

	if backlinks := adj.Backlinks(node.ID); len(backlinks) > 0 {
		color.Cyan("\nBacklinks:")
		for _, nb := range backlinks {
			fmt.Printf("  <- %s (%s)\n", titleOf(nb.NodeID, titles), nb.EdgeType)
		}
	}

	if in == 0 && out == 0 {
		fmt.Println("\nNo links recorded for this note.")
	}

	return nil
}

// StatusCmd shows graph statistics for a vault.
type StatusCmd struct {
	Vault string `arg:"" optional:"" default:"." help:"Vault root directory" env:"ZETTELSCRIPT_VAULT"`
	Hubs  int    `default:"5" help:"Number of hubs to list"`
}

// Run executes the status command.
func (c *StatusCmd) Run() error {
	ctx := context.Background()

	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	store, err := openStore(root, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	nodes, err := store.AllNodes(ctx)
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	edges, err := store.AllEdges(ctx)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	nodesByType := make(map[graph.NodeType]int)
	titles := make(map[string]string, len(nodes))
	ids := make([]string, 0, len(nodes))
	var ghosts []*graph.Node
	for _, n := range nodes {
		ids = append(ids, n.ID)
		titles[n.ID] = n.Title
		nodesByType[n.Type]++
		if n.IsGhost() {
			ghosts = append(ghosts, n)
		}
	}

	edgesByType := make(map[graph.EdgeType]int)
	for _, e := range edges {
		edgesByType[e.Type]++
	}

	color.Cyan("Graph status for %s", root)
	fmt.Printf("  Nodes:  %d\n", len(nodes))
	fmt.Printf("  Edges:  %d\n", len(edges))

	if len(nodesByType) > 0 {
		color.Cyan("\nNodes by type:")
		for _, t := range slices.Sorted(maps.Keys(nodesByType)) {
			fmt.Printf("  %-20s %d\n", t, nodesByType[t])
		}
	}
	if len(edgesByType) > 0 {
		color.Cyan("\nEdges by type:")
		for _, t := range slices.Sorted(maps.Keys(edgesByType)) {
			fmt.Printf("  %-20s %d\n", t, edgesByType[t])
		}
	}

	adj := graph.BuildAdjacency(edges)

	components := adj.ConnectedComponents(ids)
	fmt.Printf("\nComponents: %d\n", len(components))
	if len(components) > 0 {
		fmt.Printf("  largest: %d nodes\n", len(components[0]))
	}

	if hubs := adj.Hubs(c.Hubs); len(hubs) > 0 {
		color.Cyan("\nHubs:")
		for _, h := range hubs {
			fmt.Printf("  %-30s %d in / %d out\n", titleOf(h.NodeID, titles), h.InDegree, h.OutDegree)
		}
	}

	if len(ghosts) > 0 {
		color.Cyan("\nGhosts (%d):", len(ghosts))
		for _, g := range ghosts {
			fmt.Printf("  %s\n", g.Title)
		}
	}

	return nil
}

// ServeCmd serves graph queries to MCP clients over stdio.
type ServeCmd struct {
	Vault string `arg:"" optional:"" default:"." help:"Vault root directory" env:"ZETTELSCRIPT_VAULT"`
	Watch bool   `short:"w" help:"Reindex as vault files change"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	store, err := openStore(root, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pipeline, err := newPipeline(root, cfg, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-osSignalChannel()
		cancel()
	}()

	if c.Watch {
		watcher := ingestion.NewWatcher(pipeline, slog.Default(), time.Duration(cfg.Watch.Debounce))
		// Stdout carries the protocol, so watch outcomes are not printed.
		go func() {
			for range watcher.Events() {
			}
		}()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("watcher stopped", slog.Any("error", err))
			}
		}()
	}

	server := mcp.NewServer(store, pipeline, cfg.Paths.Query())
	if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// CleanCmd deletes a vault's index data.
type CleanCmd struct {
	Vault string `arg:"" optional:"" default:"." help:"Vault root directory" env:"ZETTELSCRIPT_VAULT"`
	Force bool   `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	root, cfg, err := openVault(c.Vault)
	if err != nil {
		return err
	}

	dataDir := cfg.DataPath(root)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		fmt.Printf("No index found at %s. Nothing to clean.\n", root)
		return nil
	}

	if !c.Force {
		fmt.Printf("Delete index at %s? [y/N] ", dataDir)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(dataDir); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}

	color.Green("Deleted %s", dataDir)
	return nil
}

// Helper functions

// openVault resolves a vault argument to an absolute directory path and
// loads its configuration.
func openVault(path string) (string, *config.Config, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", nil, fmt.Errorf("accessing %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// openStore opens the vault's graph database. Read-only opens require
// an existing index.
func openStore(root string, cfg *config.Config, readOnly bool) (*storage.BadgerBackend, error) {
	dbPath := cfg.DatabasePath(root)
	if readOnly {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no index found at %s. Run 'zettelscript index' first", root)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, readOnly); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// newPipeline wires the walker, resolver, and store into a pipeline.
// The data directory is always excluded from walking, even when it is
// not dotted.
func newPipeline(root string, cfg *config.Config, store storage.Backend) (*ingestion.Pipeline, error) {
	patterns := append([]string(nil), cfg.IgnorePatterns...)
	if !filepath.IsAbs(cfg.DataDir) {
		patterns = append(patterns, cfg.DataDir+"/")
	}

	walker, err := vault.NewWalker(root, patterns)
	if err != nil {
		return nil, fmt.Errorf("creating walker: %w", err)
	}

	res := resolver.NewResolver(store)
	return ingestion.NewPipeline(store, res, walker, slog.Default(), cfg.Index.Parallelism), nil
}

// findNode resolves a command-line argument to a node, trying the id
// first and falling back to title or alias lookup.
func findNode(ctx context.Context, store storage.Backend, arg string) (*graph.Node, error) {
	node, err := store.FindByID(ctx, arg)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	matches, err := store.FindByTitleOrAlias(ctx, arg)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no note matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%s (%s)", m.Title, m.ID)
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", arg, strings.Join(names, ", "))
	}
}

// titleIndex maps every node id to its title for rendering.
func titleIndex(ctx context.Context, store storage.Backend) (map[string]string, error) {
	nodes, err := store.AllNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
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

// printStats renders the batch summary with a capped error sample.
func printStats(stats *ingestion.Stats) {
	color.Green("✓ Indexing complete")
	fmt.Printf("  Files:       %d\n", stats.Files)
	fmt.Printf("  Nodes:       %d\n", stats.Nodes)
	fmt.Printf("  Edges:       %d\n", stats.Edges)
	fmt.Printf("  Unresolved:  %d\n", stats.Unresolved)
	fmt.Printf("  Ambiguous:   %d\n", stats.Ambiguous)
	if stats.Removed > 0 {
		fmt.Printf("  Removed:     %d\n", stats.Removed)
	}
	fmt.Printf("  Duration:    %.2fs\n", stats.Duration.Seconds())

	if len(stats.Errors) == 0 {
		return
	}
	color.Yellow("\n%d files failed to parse:", len(stats.Errors))
	for i, fe := range stats.Errors {
		if i == maxErrorSample {
			fmt.Printf("  ... and %d more\n", len(stats.Errors)-maxErrorSample)
			break
		}
		fmt.Printf("  %s: %v\n", fe.Path, fe.Err)
	}
}

// printEvent renders one watch outcome.
func printEvent(ev ingestion.Event) {
	switch ev.Kind {
	case ingestion.EventError:
		color.Red("✗ %s: %v", ev.Path, ev.Err)
	case ingestion.EventDeleted:
		fmt.Printf("- %s\n", ev.Path)
	case ingestion.EventCreated:
		fmt.Printf("+ %s\n", ev.Path)
	default:
		fmt.Printf("~ %s\n", ev.Path)
	}
}

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable debug logging" env:"ZETTELSCRIPT_VERBOSE"`

	// Commands
	Index  IndexCmd  `cmd:"" help:"Index a vault into the knowledge graph"`
	Watch  WatchCmd  `cmd:"" help:"Index a vault and keep it fresh as files change"`
	Paths  PathsCmd  `cmd:"" help:"Find diverse shortest paths between two notes"`
	Links  LinksCmd  `cmd:"" help:"Show a note's links, backlinks, and neighbors"`
	Status StatusCmd `cmd:"" help:"Show graph statistics for a vault"`
	Serve  ServeCmd  `cmd:"" help:"Serve graph queries to MCP clients over stdio"`
	Clean  CleanCmd  `cmd:"" help:"Delete a vault's index data"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute() error {
	kongCtx := kong.Parse(c,
		kong.Name("zettelscript"),
		kong.Description("Knowledge-graph engine for Markdown vaults"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return kongCtx.Run()
}
