package layout

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/physics"
	"mysteryweb/internal/worker"
)

// TypeMultipliers scale repulsion and collision per node type.
var TypeMultipliers = map[string]float64{
	string(entity.TypeCharacter):   1.5,
	string(entity.TypePuzzle):      1.2,
	string(entity.TypeElement):     1.0,
	string(entity.TypeTimeline):    0.7,
	string(entity.TypePlaceholder): 0.8,
}

const (
	clusterStrength = 0.3
	communitySeed   = 1
)

// AdaptiveForceParams picks simulation parameters from graph size: larger
// graphs get stronger repulsion, more iterations and a larger canvas.
func AdaptiveForceParams(nodeCount int) physics.Params {
	p := physics.DefaultParams()
	switch {
	case nodeCount > 200:
		p.ChargeStrength = -3000
		p.Iterations = 500
		p.Width, p.Height = 4000, 3000
		p.CollisionRadius = 80
	case nodeCount >= 150:
		p.ChargeStrength = -2000
		p.Iterations = 400
		p.Width, p.Height = 3200, 2400
		p.CollisionRadius = 70
	}
	p.TypeMultipliers = make(map[string]float64, len(TypeMultipliers))
	for typ, m := range TypeMultipliers {
		p.TypeMultipliers[typ] = m
	}
	return p
}

// ForceParams applies overrides on top of the adaptive parameters.
func ForceParams(nodeCount int, cfg Config) physics.Params {
	p := AdaptiveForceParams(nodeCount)
	o := cfg.Force
	if o.ChargeStrength != 0 {
		p.ChargeStrength = o.ChargeStrength
	}
	if o.LinkDistance > 0 {
		p.LinkDistance = o.LinkDistance
	}
	if o.LinkStrength > 0 {
		p.LinkStrength = o.LinkStrength
	}
	if o.CollisionRadius > 0 {
		p.CollisionRadius = o.CollisionRadius
	}
	if o.CenterStrength > 0 {
		p.CenterStrength = o.CenterStrength
	}
	if o.Iterations > 0 {
		p.Iterations = o.Iterations
	}
	if o.Width > 0 {
		p.Width = o.Width
	}
	if o.Height > 0 {
		p.Height = o.Height
	}
	p.Threads = cfg.Threads
	if cfg.Algorithm == ForceClustered {
		p.ClusterStrength = clusterStrength
	}
	return p
}

func (o *Orchestrator) force(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config) ([]graph.Node, error) {
	out := copyNodes(nodes)
	if len(out) == 0 {
		return out, nil
	}
	params := ForceParams(len(out), cfg)

	index := make(map[string]int, len(out))
	for i, n := range out {
		index[n.ID] = i
	}
	clusters := make([]int, len(out))
	for i := range clusters {
		clusters[i] = -1
	}
	if cfg.Algorithm == ForceClustered {
		clusters = detectCommunities(out, edges, index)
	}

	var positions []physics.Node
	var err error
	if cfg.OffThread {
		positions, err = o.forceOffThread(ctx, out, edges, clusters, params)
	} else {
		positions, err = o.forceInline(ctx, out, edges, index, clusters, params)
	}
	if err != nil {
		return nil, err
	}

	byID := make(map[string]physics.Node, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].Position = graph.Position{X: p.X, Y: p.Y}
		}
	}
	o.log.Debug("force layout finished",
		"algorithm", cfg.Algorithm,
		"nodes", len(out),
		"iterations", params.Iterations,
		"off_thread", cfg.OffThread)
	return out, nil
}

func (o *Orchestrator) forceInline(ctx context.Context, nodes []graph.Node, edges []graph.Edge, index map[string]int, clusters []int, params physics.Params) ([]physics.Node, error) {
	bodies := make([]physics.Node, len(nodes))
	for i, n := range nodes {
		bodies[i] = physics.Node{ID: n.ID, Type: string(n.Type), Cluster: clusters[i]}
	}
	links := make([]physics.Link, 0, len(edges))
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT {
			continue
		}
		links = append(links, physics.Link{Source: s, Target: t, Weight: e.Data.Weight})
	}
	sim := physics.New(bodies, links, params)
	if err := sim.Run(ctx, nil); err != nil {
		return nil, fmt.Errorf("force layout: %w", err)
	}
	return sim.Nodes(), nil
}

// forceOffThread runs the simulation behind the worker boundary and waits
// for its terminal message.
func (o *Orchestrator) forceOffThread(ctx context.Context, nodes []graph.Node, edges []graph.Edge, clusters []int, params physics.Params) ([]physics.Node, error) {
	w := worker.New(ctx, o.log, worker.WithThreads(params.Threads))
	defer w.Close()

	msg := worker.Message{
		Type:   worker.TypeInit,
		Nodes:  make([]worker.WireNode, len(nodes)),
		Edges:  make([]worker.WireEdge, 0, len(edges)),
		Config: worker.ConfigFromParams(params),
	}
	for i, n := range nodes {
		msg.Nodes[i] = worker.WireNode{ID: n.ID, Type: string(n.Type)}
		if clusters[i] >= 0 {
			c := clusters[i]
			msg.Nodes[i].Cluster = &c
		}
	}
	for _, e := range edges {
		msg.Edges = append(msg.Edges, worker.WireEdge{Source: e.Source, Target: e.Target, Weight: e.Data.Weight})
	}
	if err := w.PostMessage(msg); err != nil {
		return nil, fmt.Errorf("force layout: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("force layout: %w", ctx.Err())
		case reply, ok := <-w.Messages():
			if !ok {
				return nil, fmt.Errorf("force layout: worker closed")
			}
			switch reply.Type {
			case worker.TypeComplete:
				out := make([]physics.Node, 0, len(reply.Nodes))
				for _, n := range reply.Nodes {
					if n.X == nil || n.Y == nil {
						continue
					}
					out = append(out, physics.Node{ID: n.ID, Type: n.Type, X: *n.X, Y: *n.Y, Positioned: true})
				}
				return out, nil
			case worker.TypeError:
				return nil, fmt.Errorf("force layout: %s", reply.Error)
			case worker.TypeCancel:
				return nil, fmt.Errorf("force layout: %w", context.Canceled)
			}
		}
	}
}

// detectCommunities assigns each node the index of its Louvain community
// on the undirected, weighted view of edges.
func detectCommunities(nodes []graph.Node, edges []graph.Edge, index map[string]int) []int {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		w := e.Data.Weight
		if w <= 0 {
			w = 1
		}
		if existing := g.WeightedEdge(int64(s), int64(t)); existing != nil {
			w += existing.Weight()
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(int64(s)), T: simple.Node(int64(t)), W: w})
	}

	clusters := make([]int, len(nodes))
	reduced := community.Modularize(g, 1, rand.NewSource(communitySeed))
	for c, members := range reduced.Communities() {
		for _, n := range members {
			clusters[n.ID()] = c
		}
	}
	return clusters
}
