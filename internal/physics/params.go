// Package physics is a velocity-Verlet style force simulation: many-body
// repulsion, weighted link springs, collision, weak centering and optional
// cluster attraction, run for a fixed iteration budget.
package physics

const (
	DefaultChargeStrength  = -1200.0
	DefaultLinkDistance    = 120.0
	DefaultLinkStrength    = 0.7
	DefaultCollisionRadius = 60.0
	DefaultCenterStrength  = 0.05
	DefaultIterations      = 300
	DefaultWidth           = 2400.0
	DefaultHeight          = 1800.0

	velocityDecay = 0.4
	alphaMin      = 0.001
	// distanceMin2 keeps coincident nodes from producing unbounded forces.
	distanceMin2 = 1.0
)

type Params struct {
	ChargeStrength  float64
	LinkDistance    float64
	LinkStrength    float64
	CollisionRadius float64
	CenterStrength  float64
	Iterations      int
	Width           float64
	Height          float64

	// Threads > 1 splits the pairwise passes across goroutines.
	Threads int

	// TypeMultipliers scales charge and collision radius per node type.
	TypeMultipliers map[string]float64

	// ClusterStrength pulls nodes toward the centroid of their cluster.
	// Ignored for nodes with a negative cluster.
	ClusterStrength float64
}

// DefaultParams returns the baseline parameters for small graphs.
func DefaultParams() Params {
	return Params{
		ChargeStrength:  DefaultChargeStrength,
		LinkDistance:    DefaultLinkDistance,
		LinkStrength:    DefaultLinkStrength,
		CollisionRadius: DefaultCollisionRadius,
		CenterStrength:  DefaultCenterStrength,
		Iterations:      DefaultIterations,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.ChargeStrength == 0 {
		p.ChargeStrength = d.ChargeStrength
	}
	if p.LinkDistance <= 0 {
		p.LinkDistance = d.LinkDistance
	}
	if p.LinkStrength <= 0 {
		p.LinkStrength = d.LinkStrength
	}
	if p.CollisionRadius <= 0 {
		p.CollisionRadius = d.CollisionRadius
	}
	if p.CenterStrength <= 0 {
		p.CenterStrength = d.CenterStrength
	}
	if p.Iterations <= 0 {
		p.Iterations = d.Iterations
	}
	if p.Width <= 0 {
		p.Width = d.Width
	}
	if p.Height <= 0 {
		p.Height = d.Height
	}
	if p.Threads < 1 {
		p.Threads = 1
	}
	return p
}

func (p Params) multiplier(nodeType string) float64 {
	if m, ok := p.TypeMultipliers[nodeType]; ok && m > 0 {
		return m
	}
	return 1
}
