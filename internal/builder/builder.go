// Package builder assembles render-ready graphs from entity datasets:
// transform, resolve, filter, lay out and measure.
package builder

import (
	"context"
	"fmt"
	"time"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/traversal"
)

const WarningNoEntities = "no entities to display"

type Builder struct {
	transformer *graph.Transformer
	resolver    *graph.Resolver
	engine      *traversal.Engine
	layout      *layout.Orchestrator
	metrics     MetricsSink
	log         logger.Logger
}

type Option func(*Builder)

func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		b.log = logger.OrNop(log)
	}
}

func WithMetrics(sink MetricsSink) Option {
	return func(b *Builder) {
		if sink != nil {
			b.metrics = sink
		}
	}
}

func WithEngine(engine *traversal.Engine) Option {
	return func(b *Builder) {
		if engine != nil {
			b.engine = engine
		}
	}
}

func WithLayout(orchestrator *layout.Orchestrator) Option {
	return func(b *Builder) {
		if orchestrator != nil {
			b.layout = orchestrator
		}
	}
}

func New(opts ...Option) *Builder {
	b := &Builder{log: logger.Nop(), metrics: nopSink{}}
	for _, opt := range opts {
		opt(b)
	}
	if b.transformer == nil {
		b.transformer = graph.NewTransformer(b.log)
	}
	if b.resolver == nil {
		b.resolver = graph.NewResolver(b.log)
	}
	if b.engine == nil {
		b.engine = traversal.New(b.log)
	}
	if b.layout == nil {
		b.layout = layout.New(b.log)
	}
	return b
}

// Engine exposes the traversal engine and its adjacency cache.
func (b *Builder) Engine() *traversal.Engine {
	return b.engine
}

// BuildGraphData runs the full pipeline over data. Empty input produces an
// empty graph with a warning, not an error.
func (b *Builder) BuildGraphData(ctx context.Context, data *entity.Dataset, opts Options) (*graph.GraphData, error) {
	var maps *entity.LookupMaps
	if data != nil {
		maps = data.Lookup()
	}
	return b.build(ctx, data, maps, opts)
}

// build is BuildGraphData with existence checks and enrichment drawn from
// maps, which may index a superset of data.
func (b *Builder) build(ctx context.Context, data *entity.Dataset, maps *entity.LookupMaps, opts Options) (*graph.GraphData, error) {
	start := time.Now()
	if opts.View == "" {
		opts.View = ViewDefault
	}
	if opts.Layout.Algorithm == "" {
		opts.Layout.Algorithm = DefaultAlgorithm(opts.View)
	}
	metrics := graph.Metrics{NodesByType: make(map[entity.Type]int)}

	if data.Len() == 0 {
		b.log.Warn("building graph from empty dataset", "view", opts.View)
		metrics.Warnings = append(metrics.Warnings, WarningNoEntities)
		metrics.DurationMS = millis(time.Since(start))
		return &graph.GraphData{
			Nodes:    []graph.Node{},
			Edges:    []graph.Edge{},
			Metadata: graph.Metadata{View: string(opts.View), Layout: string(opts.Layout.Algorithm), Metrics: metrics},
		}, nil
	}

	// 1. nodes
	nodes := b.transformer.TransformWithLookup(data, maps, opts.ExcludeEntityTypes...)

	// 2. edges, with placeholders in integrity mode
	resolveOpts := graph.ResolveOptions{
		Lookup:             maps,
		Nodes:              graph.IndexNodes(nodes),
		PuzzleDependencies: opts.IncludePuzzleDependencies,
	}
	var edges []graph.Edge
	var placeholders []graph.Node
	var report *graph.IntegrityReport
	if opts.SkipIntegrity {
		edges = b.resolver.ResolveAllRelationships(data, resolveOpts)
	} else {
		result := b.resolver.ResolveRelationshipsWithIntegrity(data, resolveOpts)
		edges, report = result.Edges, result.Report
		placeholders = excludePlaceholders(result.PlaceholderNodes, opts.ExcludeEntityTypes)
	}

	// 3. relationship allow-list
	if len(opts.FilterRelationships) > 0 {
		before := len(edges)
		edges = filterRelationships(edges, opts.FilterRelationships)
		metrics.EdgesFiltered = before - len(edges)
	}

	// 4. merge
	ids := nodeIDs(nodes)
	kept := placeholders[:0]
	for _, ph := range placeholders {
		if !ids[ph.ID] {
			kept = append(kept, ph)
		}
	}
	placeholders = kept
	nodes = append(nodes, placeholders...)
	edges = edgesWithin(edges, nodeIDs(nodes))

	// 5. orphans
	if !opts.IncludeOrphans {
		before := len(nodes)
		nodes = dropOrphans(nodes, edges, opts.PreserveHierarchy)
		metrics.OrphansRemoved = before - len(nodes)
	}

	// 6. endpoints must survive
	edges = edgesWithin(edges, nodeIDs(nodes))

	// 7. layout
	layoutStart := time.Now()
	nodes, edges, err := b.layout.Apply(ctx, nodes, edges, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", opts.Layout.Algorithm, err)
	}
	b.metrics.Observe(MetricLayoutTime, time.Since(layoutStart))

	// 8. metrics
	gd := &graph.GraphData{
		Nodes: nodes,
		Edges: edges,
		Metadata: graph.Metadata{
			View:   string(opts.View),
			Layout: string(opts.Layout.Algorithm),
		},
	}
	if report != nil {
		gd.Metadata.IntegrityReport = report.Summary()
	}
	metrics.PlaceholderCount = len(placeholders)
	gd.Metadata.Metrics = b.measure(gd, metrics, start)
	if len(gd.Nodes) == 0 {
		gd.Metadata.Metrics.Warnings = append(gd.Metadata.Metrics.Warnings, WarningNoEntities)
	}

	b.log.Debug("built graph",
		"view", opts.View,
		"layout", opts.Layout.Algorithm,
		"nodes", len(gd.Nodes),
		"edges", len(gd.Edges),
		"placeholders", len(placeholders),
		"orphans_removed", metrics.OrphansRemoved)
	return gd, nil
}

func (b *Builder) measure(gd *graph.GraphData, metrics graph.Metrics, start time.Time) graph.Metrics {
	if metrics.NodesByType == nil {
		metrics.NodesByType = make(map[entity.Type]int)
	}
	metrics.NodeCount = len(gd.Nodes)
	metrics.EdgeCount = len(gd.Edges)
	for _, n := range gd.Nodes {
		metrics.NodesByType[n.Type]++
	}
	if n := len(gd.Nodes); n > 1 {
		metrics.Density = float64(len(gd.Edges)) / float64(n*(n-1))
	}
	metrics.BoundingBox = graph.Bounds(gd.Nodes)
	metrics.Components = b.countComponents(gd)

	elapsed := time.Since(start)
	metrics.DurationMS = millis(elapsed)

	b.metrics.Count(MetricBuilds, 1)
	b.metrics.Count(MetricNodes, metrics.NodeCount)
	b.metrics.Count(MetricEdges, metrics.EdgeCount)
	b.metrics.Count(MetricPlaceholders, metrics.PlaceholderCount)
	b.metrics.Observe(MetricBuildTime, elapsed)
	return metrics
}

// countComponents counts connected components, isolated nodes included.
func (b *Builder) countComponents(gd *graph.GraphData) int {
	components := b.engine.GetConnectedComponents(traversal.Links(gd.Edges))
	linked := make(map[string]bool)
	for _, c := range components {
		for id := range c {
			linked[id] = true
		}
	}
	count := len(components)
	for _, n := range gd.Nodes {
		if !linked[n.ID] {
			count++
		}
	}
	return count
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func nodeIDs(nodes []graph.Node) map[string]bool {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	return ids
}

func edgesWithin(edges []graph.Edge, ids map[string]bool) []graph.Edge {
	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if ids[e.Source] && ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

func filterRelationships(edges []graph.Edge, allowed []graph.RelationshipType) []graph.Edge {
	allow := make(map[graph.RelationshipType]bool, len(allowed))
	for _, rel := range allowed {
		allow[rel] = true
	}
	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if allow[e.Type] {
			out = append(out, e)
		}
	}
	return out
}

func excludePlaceholders(nodes []graph.Node, excluded []entity.Type) []graph.Node {
	if len(excluded) == 0 {
		return nodes
	}
	skip := make(map[entity.Type]bool, len(excluded))
	for _, t := range excluded {
		skip[t] = true
	}
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if !skip[n.Data.Metadata.EntityType] {
			out = append(out, n)
		}
	}
	return out
}

// dropOrphans removes nodes without incident edges, placeholders included.
// With preserveHierarchy, puzzle parents and children and the parents they
// name are kept.
func dropOrphans(nodes []graph.Node, edges []graph.Edge, preserveHierarchy bool) []graph.Node {
	connected := make(map[string]bool, len(nodes))
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	if preserveHierarchy {
		for _, n := range nodes {
			meta := n.Data.Metadata
			if meta.IsParent || meta.IsChild {
				connected[n.ID] = true
				if meta.ParentID != "" {
					connected[meta.ParentID] = true
				}
			}
		}
	}
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if connected[n.ID] {
			out = append(out, n)
		}
	}
	return out
}
