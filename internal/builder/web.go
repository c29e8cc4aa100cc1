package builder

import (
	"context"
	"fmt"
	"time"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
)

// webIndex answers "what is next to this entity" for connection webs.
type webIndex struct {
	maps      *entity.LookupMaps
	neighbors map[string][]string
}

func newWebIndex(data *entity.Dataset, maps *entity.LookupMaps) *webIndex {
	w := &webIndex{maps: maps, neighbors: make(map[string][]string)}
	seen := make(map[[2]string]bool)
	link := func(from string, fromType entity.Type, to string, toType entity.Type) {
		if from == "" || to == "" || from == to {
			return
		}
		if !maps.Has(fromType, from) || !maps.Has(toType, to) {
			return
		}
		key := [2]string{from, to}
		if seen[key] {
			return
		}
		seen[key] = true
		w.neighbors[from] = append(w.neighbors[from], to)
	}

	// character: owned elements, timeline events it takes part in
	for _, c := range data.Characters {
		for _, eid := range c.OwnedElementIDs {
			link(c.ID, entity.TypeCharacter, eid, entity.TypeElement)
		}
		for _, tid := range c.EventIDs {
			link(c.ID, entity.TypeCharacter, tid, entity.TypeTimeline)
		}
	}
	for _, e := range data.Elements {
		link(e.OwnerID, entity.TypeCharacter, e.ID, entity.TypeElement)
	}
	for _, ev := range data.Timeline {
		for _, cid := range ev.CharactersInvolvedIDs {
			link(cid, entity.TypeCharacter, ev.ID, entity.TypeTimeline)
		}
	}

	// element: puzzles using or rewarding it, its timeline event, owners
	for _, e := range data.Elements {
		for _, pid := range e.RequiredForPuzzleIDs {
			link(e.ID, entity.TypeElement, pid, entity.TypePuzzle)
		}
		for _, pid := range e.RewardedByPuzzleIDs {
			link(e.ID, entity.TypeElement, pid, entity.TypePuzzle)
		}
	}
	for _, p := range data.Puzzles {
		for _, eid := range p.PuzzleElementIDs {
			link(eid, entity.TypeElement, p.ID, entity.TypePuzzle)
		}
		for _, eid := range p.RewardIDs {
			link(eid, entity.TypeElement, p.ID, entity.TypePuzzle)
		}
	}
	for _, e := range data.Elements {
		link(e.ID, entity.TypeElement, e.TimelineEventID, entity.TypeTimeline)
		link(e.ID, entity.TypeElement, e.OwnerID, entity.TypeCharacter)
	}
	for _, c := range data.Characters {
		for _, eid := range c.OwnedElementIDs {
			link(eid, entity.TypeElement, c.ID, entity.TypeCharacter)
		}
	}

	// puzzle: requirement and reward elements
	for _, p := range data.Puzzles {
		for _, eid := range p.PuzzleElementIDs {
			link(p.ID, entity.TypePuzzle, eid, entity.TypeElement)
		}
		for _, eid := range p.RewardIDs {
			link(p.ID, entity.TypePuzzle, eid, entity.TypeElement)
		}
	}
	for _, e := range data.Elements {
		for _, pid := range e.RequiredForPuzzleIDs {
			link(pid, entity.TypePuzzle, e.ID, entity.TypeElement)
		}
		for _, pid := range e.RewardedByPuzzleIDs {
			link(pid, entity.TypePuzzle, e.ID, entity.TypeElement)
		}
	}

	// timeline: involved characters
	for _, ev := range data.Timeline {
		for _, cid := range ev.CharactersInvolvedIDs {
			link(ev.ID, entity.TypeTimeline, cid, entity.TypeCharacter)
		}
	}
	for _, c := range data.Characters {
		for _, tid := range c.EventIDs {
			link(tid, entity.TypeTimeline, c.ID, entity.TypeCharacter)
		}
	}
	return w
}

// reach runs an unbounded BFS and returns each reachable node's distance.
func (w *webIndex) reach(start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range w.neighbors[cur] {
			if _, ok := dist[next]; ok {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

type boundedResult struct {
	distance map[string]int
	order    []string
	expanded map[string]bool
}

// bounded runs the budgeted BFS. A node is expanded only while its
// distance is below maxDepth, and at most maxNodes nodes are processed.
// Past lazyDepth, a node is discovered only if it is in unlocked, when
// unlocked is non-empty.
func (w *webIndex) bounded(start string, maxDepth, maxNodes int, unlocked map[string]bool) *boundedResult {
	res := &boundedResult{
		distance: map[string]int{start: 0},
		order:    []string{start},
		expanded: make(map[string]bool),
	}
	queue := []string{start}
	processed := 0
	for len(queue) > 0 && processed < maxNodes {
		cur := queue[0]
		queue = queue[1:]
		processed++

		d := res.distance[cur]
		if d >= maxDepth {
			continue
		}
		res.expanded[cur] = true
		for _, next := range w.neighbors[cur] {
			if _, ok := res.distance[next]; ok {
				continue
			}
			nd := d + 1
			if len(unlocked) > 0 && nd > lazyDepth && !unlocked[next] {
				continue
			}
			res.distance[next] = nd
			res.order = append(res.order, next)
			queue = append(queue, next)
		}
	}
	return res
}

// BuildFullConnectionGraph expands outward from one entity of any type
// within a depth and node budget and lays the result out with forces.
// An empty startType is inferred from the dataset.
func (b *Builder) BuildFullConnectionGraph(ctx context.Context, data *entity.Dataset, startID string, startType entity.Type, opts WebOptions) (*graph.GraphData, error) {
	start := time.Now()
	opts = opts.withDefaults()
	cfg := opts.Layout
	if !cfg.Algorithm.IsForce() {
		cfg.Algorithm = layout.Force
	}

	empty := func(warning string) *graph.GraphData {
		b.log.Warn("connection web is empty", "start", startID, "reason", warning)
		return &graph.GraphData{
			Nodes: []graph.Node{},
			Edges: []graph.Edge{},
			Metadata: graph.Metadata{
				View:    string(ViewConnectionWeb),
				Layout:  string(cfg.Algorithm),
				Metrics: graph.Metrics{NodesByType: map[entity.Type]int{}, Warnings: []string{warning}},
			},
			DepthMetadata: &graph.DepthMetadata{DepthDistribution: map[int]int{}, CurrentDepthLimit: opts.MaxDepth},
		}
	}
	if data.Len() == 0 {
		return empty(WarningNoEntities), nil
	}

	maps := data.Lookup()
	if startType == "" {
		startType, _ = maps.TypeOf(startID)
	}
	if !maps.Has(startType, startID) {
		return empty(fmt.Sprintf("start entity %s not found", startID)), nil
	}

	index := newWebIndex(data, maps)

	reachable := index.reach(startID)
	depth := &graph.DepthMetadata{
		DepthDistribution:   make(map[int]int),
		TotalReachableNodes: len(reachable),
		CurrentDepthLimit:   opts.MaxDepth,
	}
	for _, d := range reachable {
		depth.DepthDistribution[d]++
		depth.MaxReachableDepth = max(depth.MaxReachableDepth, d)
	}

	unlocked := make(map[string]bool, len(opts.ExpandedNodes))
	for _, id := range opts.ExpandedNodes {
		unlocked[id] = true
	}
	web := index.bounded(startID, opts.MaxDepth, opts.MaxNodes, unlocked)

	subset := data.Subset(func(_ entity.Type, id string) bool {
		_, ok := web.distance[id]
		return ok
	})
	nodes := b.transformer.TransformWithLookup(subset, maps)
	for i := range nodes {
		meta := nodes[i].Data.Metadata.WithDistance(web.distance[nodes[i].ID])
		meta.IsExpanded = web.expanded[nodes[i].ID]
		nodes[i].Data.Metadata = meta
	}
	kept := nodeIDs(nodes)
	edges := edgesWithin(b.resolver.ResolveAllRelationships(subset, graph.ResolveOptions{
		Lookup: maps,
		Nodes:  graph.IndexNodes(nodes),
	}), kept)

	for id, d := range web.distance {
		if d == opts.MaxDepth && kept[id] {
			depth.NodesAtCurrentDepth++
		}
	}
	depth.IsCompleteNetwork = len(web.distance) == depth.TotalReachableNodes

	layoutStart := time.Now()
	nodes, edges, err := b.layout.Apply(ctx, nodes, edges, cfg)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", cfg.Algorithm, err)
	}
	b.metrics.Observe(MetricLayoutTime, time.Since(layoutStart))

	gd := &graph.GraphData{
		Nodes: nodes,
		Edges: edges,
		Metadata: graph.Metadata{
			View:   string(ViewConnectionWeb),
			Layout: string(cfg.Algorithm),
		},
		DepthMetadata: depth,
	}
	gd.Metadata.Metrics = b.measure(gd, graph.Metrics{}, start)
	b.metrics.Count(MetricWebBuilds, 1)

	b.log.Debug("built connection web",
		"start", startID,
		"type", startType,
		"discovered", len(web.distance),
		"reachable", depth.TotalReachableNodes,
		"max_depth", opts.MaxDepth,
		"nodes", len(nodes),
		"edges", len(edges))
	return gd, nil
}
