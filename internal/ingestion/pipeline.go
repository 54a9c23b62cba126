// Package ingestion builds the knowledge graph from vault files: the
// two-pass batch pipeline, the single-file entry point, and the
// file-watching incremental indexer.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/RobThePCGuy/ZettelScript-sub003/internal/graph"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/parser"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/resolver"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/storage"
	"github.com/RobThePCGuy/ZettelScript-sub003/internal/vault"
)

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// FileError records one file's failure inside a batch.
type FileError struct {
	Path string
	Err  error
}

// Stats summarizes a batch run. Errors holds per-file failures; the
// batch itself succeeds as long as it could walk the vault.
type Stats struct {
	Files      int
	Nodes      int
	Removed    int
	Edges      int
	Unresolved int
	Ambiguous  int
	Duration   time.Duration
	Errors     []FileError
}

// Pipeline drives graph construction. All node, edge, and version
// mutations go through here; queries never do.
type Pipeline struct {
	store       storage.Backend
	resolver    *resolver.Resolver
	walker      *vault.Walker
	logger      *slog.Logger
	parallelism int
}

// NewPipeline creates a pipeline over the given store and vault.
// Parallelism bounds concurrent file parsing; values below 1 fall back
// to the CPU count.
func NewPipeline(store storage.Backend, res *resolver.Resolver, walker *vault.Walker, logger *slog.Logger, parallelism int) *Pipeline {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	return &Pipeline{
		store:       store,
		resolver:    res,
		walker:      walker,
		logger:      logger,
		parallelism: parallelism,
	}
}

// parsedFile carries one file through the batch passes.
type parsedFile struct {
	path string // vault-relative
	file *vault.File
	doc  *parser.ParsedDocument
	node *graph.Node
	err  error
}

// IndexBatch rebuilds the graph from every file under the vault root.
//
// Pass 1 parses and upserts every node before any link is resolved, so
// forward and circular references resolve deterministically regardless
// of file order. Pass 2 runs after the resolver cache is cleared and
// turns each file's links into edges. Per-file failures are collected
// into Stats.Errors; the batch continues past them.
func (p *Pipeline) IndexBatch(ctx context.Context, progress ProgressCallback) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	report := func(phase string, frac float64) {
		if progress != nil {
			progress(phase, frac)
		}
	}

	report("Walking vault", 0.0)
	paths, err := p.walker.Walk()
	if err != nil {
		return nil, err
	}
	stats.Files = len(paths)
	report("Walking vault", 1.0)

	// Pass 1: parse in parallel, then upsert sequentially.
	report("Indexing nodes", 0.0)
	results := make([]parsedFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.loadAndParse(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	walked := make(map[string]bool, len(results))
	for i := range results {
		r := &results[i]
		walked[r.path] = true
		if r.err != nil {
			stats.Errors = append(stats.Errors, FileError{Path: r.path, Err: r.err})
			continue
		}

		node, err := p.indexNode(ctx, r.file, r.doc)
		if err != nil {
			r.err = err
			stats.Errors = append(stats.Errors, FileError{Path: r.path, Err: err})
			continue
		}
		r.node = node
		stats.Nodes++
		report("Indexing nodes", float64(i+1)/float64(len(results)))
	}

	// Files deleted since the last run leave nodes behind; drop any
	// non-ghost node whose path was not walked.
	removed, err := p.pruneOrphans(ctx, walked)
	if err != nil {
		return nil, err
	}
	stats.Removed = removed

	// Pass boundary: every upsert is visible, nothing cached survives.
	p.resolver.InvalidateCache()

	// Pass 2: resolve links and create edges.
	report("Resolving links", 0.0)
	for i := range results {
		r := &results[i]
		if r.err != nil {
			continue
		}

		ls, err := p.indexLinks(ctx, r.node, r.doc.Links)
		if err != nil {
			stats.Errors = append(stats.Errors, FileError{Path: r.path, Err: err})
			continue
		}
		stats.Edges += ls.edges
		stats.Unresolved += ls.unresolved
		stats.Ambiguous += ls.ambiguous
		report("Resolving links", float64(i+1)/float64(len(results)))
	}

	// Ghost creation in Pass 2 mutated the node set.
	p.resolver.InvalidateCache()

	stats.Duration = time.Since(start)
	p.logger.Info("batch index complete",
		slog.Int("files", stats.Files),
		slog.Int("nodes", stats.Nodes),
		slog.Int("edges", stats.Edges),
		slog.Int("unresolved", stats.Unresolved),
		slog.Int("ambiguous", stats.Ambiguous),
		slog.Int("errors", len(stats.Errors)),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// IndexFile runs the single-file flow for one on-disk path: parse,
// upsert, version on content change, replace aliases, rebuild outgoing
// explicit links. Used by the incremental indexer.
func (p *Pipeline) IndexFile(ctx context.Context, path string) (*graph.Node, error) {
	file, err := p.walker.Load(path)
	if err != nil {
		return nil, err
	}
	doc, err := parser.Parse(file.Path, file.RelativePath, file.Content)
	if err != nil {
		return nil, err
	}

	node, err := p.indexNode(ctx, file, doc)
	if err != nil {
		return nil, err
	}
	// The upsert may have changed what this file's link text resolves to.
	p.resolver.InvalidateCache()

	if _, err := p.indexLinks(ctx, node, doc.Links); err != nil {
		return nil, err
	}
	p.resolver.InvalidateCache()

	p.logger.Debug("indexed file",
		slog.String("path", file.RelativePath),
		slog.String("node", node.ID))
	return node, nil
}

// RemoveFile deletes the node backing a vault path, cascading its edges
// and version history. Removing a path that was never indexed returns
// (nil, nil).
func (p *Pipeline) RemoveFile(ctx context.Context, relativePath string) (*graph.Node, error) {
	node, err := p.store.FindByPath(ctx, relativePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := p.store.DeleteNode(ctx, node.ID); err != nil {
		return nil, err
	}
	p.resolver.InvalidateCache()

	p.logger.Debug("removed file",
		slog.String("path", relativePath),
		slog.String("node", node.ID))
	return node, nil
}

// loadAndParse reads and parses one file, capturing the failure instead
// of propagating it.
func (p *Pipeline) loadAndParse(path string) parsedFile {
	rel, err := p.walker.RelativePath(path)
	if err != nil {
		rel = path
	}

	file, err := p.walker.Load(path)
	if err != nil {
		return parsedFile{path: rel, err: err}
	}
	doc, err := parser.Parse(file.Path, file.RelativePath, file.Content)
	if err != nil {
		return parsedFile{path: rel, err: err}
	}
	return parsedFile{path: rel, file: file, doc: doc}
}

// indexNode runs the node half of the flow: upsert, version when the
// content hash changed, wholesale alias replacement.
func (p *Pipeline) indexNode(ctx context.Context, f *vault.File, doc *parser.ParsedDocument) (*graph.Node, error) {
	node, err := p.upsertNode(ctx, f, doc)
	if err != nil {
		return nil, err
	}
	if err := p.recordVersion(ctx, node.ID, f.ContentHash); err != nil {
		return nil, err
	}
	if err := p.store.SetAliases(ctx, node.ID, doc.Aliases); err != nil {
		return nil, err
	}
	return node, nil
}

// upsertNode creates or updates the node backing a vault file. Updates
// keep the stored identity and creation time. A new file whose title
// matches an existing ghost materializes that ghost instead of minting
// a second node, so edges created before the file existed stay valid.
func (p *Pipeline) upsertNode(ctx context.Context, f *vault.File, doc *parser.ParsedDocument) (*graph.Node, error) {
	existing, err := p.store.FindByPath(ctx, f.RelativePath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing == nil {
		existing, err = p.adoptGhost(ctx, doc.Title, f.RelativePath)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	node := &graph.Node{
		Type:        doc.Type,
		Title:       doc.Title,
		Path:        f.RelativePath,
		Aliases:     doc.Aliases,
		ContentHash: f.ContentHash,
		UpdatedAt:   now,
		Metadata:    nodeMetadata(doc),
	}

	if existing != nil {
		node.ID = existing.ID
		node.CreatedAt = existing.CreatedAt
		if err := p.store.UpdateNode(ctx, node); err != nil {
			return nil, fmt.Errorf("updating node for %s: %w", f.RelativePath, err)
		}
		return node, nil
	}

	node.ID = doc.ID
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	node.CreatedAt = now
	if err := p.store.CreateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("creating node for %s: %w", f.RelativePath, err)
	}
	return node, nil
}

// adoptGhost materializes a ghost whose title matches the incoming
// document, preserving the identity every existing edge points at.
// There is at most one ghost per normalized title.
func (p *Pipeline) adoptGhost(ctx context.Context, title, realPath string) (*graph.Node, error) {
	candidates, err := p.store.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		if c.IsGhost() {
			return p.store.MaterializeGhost(ctx, c.ID, realPath)
		}
	}
	return nil, nil
}

// recordVersion appends a version record when the content hash differs
// from the latest one.
func (p *Pipeline) recordVersion(ctx context.Context, nodeID, hash string) error {
	latest, err := p.store.LatestVersion(ctx, nodeID)
	if errors.Is(err, storage.ErrNotFound) {
		return p.store.CreateVersion(ctx, graph.NewVersion(nodeID, hash, ""))
	}
	if err != nil {
		return err
	}
	if latest.ContentHash == hash {
		return nil
	}
	return p.store.CreateVersion(ctx, graph.NewVersion(nodeID, hash, latest.ID))
}

// linkStats counts the outcomes of one file's link resolution.
type linkStats struct {
	edges      int
	unresolved int
	ambiguous  int
}

// indexLinks replaces the node's outgoing explicit links with edges for
// the document's current wikilinks, making re-indexing idempotent.
// Unresolved titles get a ghost node so the edge can exist before its
// target does; ambiguous links create no edge.
func (p *Pipeline) indexLinks(ctx context.Context, source *graph.Node, links []parser.WikiLink) (linkStats, error) {
	var ls linkStats

	if _, err := p.store.DeleteEdgesBySourceAndType(ctx, source.ID, graph.EdgeExplicitLink); err != nil {
		return ls, err
	}

	for _, link := range links {
		resolved, err := p.resolver.Resolve(ctx, link)
		if err != nil {
			return ls, err
		}

		targetID := resolved.ResolvedNodeID
		switch {
		case resolved.Ambiguous:
			ls.ambiguous++
			p.logger.Debug("ambiguous link",
				slog.String("source", source.Path),
				slog.String("target", link.Target),
				slog.Int("candidates", len(resolved.Candidates)))
			continue
		case targetID == "":
			if link.IsIDLink {
				// A dangling id: link names an identity we cannot invent.
				ls.unresolved++
				continue
			}
			ghost, err := p.store.GetOrCreateGhost(ctx, link.Target)
			if err != nil {
				return ls, err
			}
			targetID = ghost.ID
			ls.unresolved++
		}

		edge := &graph.Edge{
			Type:       graph.EdgeExplicitLink,
			Source:     source.ID,
			Target:     targetID,
			Provenance: graph.ProvenanceExplicit,
		}
		if err := p.store.CreateEdge(ctx, edge); err != nil {
			return ls, err
		}
		ls.edges++
	}
	return ls, nil
}

// pruneOrphans removes non-ghost nodes whose backing file is gone.
func (p *Pipeline) pruneOrphans(ctx context.Context, walked map[string]bool) (int, error) {
	nodes, err := p.store.AllNodes(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, n := range nodes {
		if n.IsGhost() || walked[n.Path] {
			continue
		}
		if err := p.store.DeleteNode(ctx, n.ID); err != nil {
			return removed, err
		}
		p.logger.Debug("pruned orphan node",
			slog.String("path", n.Path),
			slog.String("node", n.ID))
		removed++
	}
	return removed, nil
}

// nodeMetadata folds the document's collected tags into its metadata
// bag.
func nodeMetadata(doc *parser.ParsedDocument) map[string]any {
	meta := doc.Metadata
	if len(doc.Tags) > 0 {
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta["tags"] = doc.Tags
	}
	return meta
}
