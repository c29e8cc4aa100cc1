// Package layout positions graph nodes. It dispatches between no layout, a
// layered hierarchical layout and force-directed simulations.
package layout

import (
	"context"
	"errors"
	"fmt"

	"mysteryweb/internal/graph"
	"mysteryweb/internal/logger"
)

type Algorithm string

const (
	None           Algorithm = "none"
	Dagre          Algorithm = "dagre"
	PureDagre      Algorithm = "pure-dagre"
	Force          Algorithm = "force"
	ForceClustered Algorithm = "force-clustered"
)

var Algorithms = []Algorithm{None, Dagre, PureDagre, Force, ForceClustered}

var ErrUnknownAlgorithm = errors.New("unknown layout algorithm")

// ParseAlgorithm accepts the algorithm names plus "hierarchical" as an alias for pure-dagre.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case None, Dagre, PureDagre, Force, ForceClustered:
		return Algorithm(s), nil
	case "hierarchical":
		return PureDagre, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// IsHierarchical reports whether a uses the layered layout.
func (a Algorithm) IsHierarchical() bool {
	return a == Dagre || a == PureDagre
}

// IsForce reports whether a runs the force simulation.
func (a Algorithm) IsForce() bool {
	return a == Force || a == ForceClustered
}

type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// ForceOverrides replace density-adaptive values. Zero fields keep the
// adaptive value.
type ForceOverrides struct {
	ChargeStrength  float64 `yaml:"charge_strength"`
	LinkDistance    float64 `yaml:"link_distance"`
	LinkStrength    float64 `yaml:"link_strength"`
	CollisionRadius float64 `yaml:"collision_radius"`
	CenterStrength  float64 `yaml:"center_strength"`
	Iterations      int     `yaml:"iterations"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
}

type Config struct {
	Algorithm   Algorithm
	Direction   Direction
	NodeSpacing float64
	RankSpacing float64
	// Alignment is "center" (default), "left" or "right" within a rank.
	Alignment  string
	NodeWidth  float64
	NodeHeight float64
	Force      ForceOverrides
	// Threads is passed to the force simulation.
	Threads int
	// OffThread runs force layouts behind the worker message boundary.
	OffThread bool
}

const (
	DefaultNodeSpacing = 80.0
	DefaultRankSpacing = 150.0
	DefaultNodeWidth   = 200.0
	DefaultNodeHeight  = 80.0
)

func (c Config) withDefaults() Config {
	if c.Direction == "" {
		c.Direction = LeftRight
	}
	if c.NodeSpacing <= 0 {
		c.NodeSpacing = DefaultNodeSpacing
	}
	if c.RankSpacing <= 0 {
		c.RankSpacing = DefaultRankSpacing
	}
	if c.Alignment == "" {
		c.Alignment = "center"
	}
	if c.NodeWidth <= 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodeHeight <= 0 {
		c.NodeHeight = DefaultNodeHeight
	}
	return c
}

// HierarchicalFunc positions nodes in ranks. It must not modify its inputs.
type HierarchicalFunc func(nodes []graph.Node, edges []graph.Edge, cfg Config) []graph.Node

type Orchestrator struct {
	log          logger.Logger
	hierarchical HierarchicalFunc
}

type Option func(*Orchestrator)

// WithHierarchical replaces the built-in layered layout.
func WithHierarchical(fn HierarchicalFunc) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.hierarchical = fn
		}
	}
}

func New(log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{log: logger.OrNop(log), hierarchical: Layered}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Apply positions nodes with cfg.Algorithm. Inputs are never modified.
// Only pure-dagre changes the edge list, dropping virtual edges.
func (o *Orchestrator) Apply(ctx context.Context, nodes []graph.Node, edges []graph.Edge, cfg Config) ([]graph.Node, []graph.Edge, error) {
	cfg = cfg.withDefaults()
	switch cfg.Algorithm {
	case None, "":
		return nodes, edges, nil
	case Dagre:
		return o.hierarchical(nodes, edges, cfg), edges, nil
	case PureDagre:
		positioned := o.hierarchical(nodes, edges, cfg)
		return positioned, stripVirtual(edges), nil
	case Force, ForceClustered:
		positioned, err := o.force(ctx, nodes, edges, cfg)
		if err != nil {
			return nil, nil, err
		}
		return positioned, edges, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
}

func stripVirtual(edges []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if e.Data.IsVirtual || e.Type == graph.RelVirtual {
			continue
		}
		out = append(out, e)
	}
	return out
}

func copyNodes(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)
	return out
}
