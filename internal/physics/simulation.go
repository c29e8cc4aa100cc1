package physics

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// Node is a simulation body. Positioned nodes start where they are; the
// rest are seeded on a phyllotaxis spiral around the canvas center.
type Node struct {
	ID         string
	Type       string
	X, Y       float64
	Positioned bool
	// Cluster groups nodes for cluster attraction. Negative means none.
	Cluster int
}

// Link is a spring between two node indexes.
type Link struct {
	Source, Target int
	Weight         float64
}

type body struct {
	pos, vel r2.Vec
	charge   float64
	radius   float64
	cluster  int
}

type spring struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

type Simulation struct {
	params    Params
	ids       []string
	types     []string
	bodies    []body
	springs   []spring
	center    r2.Vec
	alpha     float64
	decay     float64
	iteration int
	deltas    []r2.Vec
}

// New prepares a simulation. Links referencing out-of-range indexes or
// looping on one node are ignored.
func New(nodes []Node, links []Link, params Params) *Simulation {
	p := params.withDefaults()
	s := &Simulation{
		params: p,
		ids:    make([]string, len(nodes)),
		types:  make([]string, len(nodes)),
		bodies: make([]body, len(nodes)),
		deltas: make([]r2.Vec, len(nodes)),
		center: r2.Vec{X: p.Width / 2, Y: p.Height / 2},
		alpha:  1,
		decay:  1 - math.Pow(alphaMin, 1/float64(p.Iterations)),
	}

	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i, n := range nodes {
		s.ids[i] = n.ID
		s.types[i] = n.Type
		m := p.multiplier(n.Type)
		b := body{
			charge:  p.ChargeStrength * m,
			radius:  p.CollisionRadius * m,
			cluster: n.Cluster,
		}
		if n.Positioned && finite(n.X) && finite(n.Y) {
			b.pos = r2.Vec{X: n.X, Y: n.Y}
		} else {
			radius := 10 * math.Sqrt(0.5+float64(i))
			angle := float64(i) * goldenAngle
			b.pos = r2.Add(s.center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
		}
		s.bodies[i] = b
	}

	degree := make([]int, len(nodes))
	var valid []Link
	for _, l := range links {
		if l.Source < 0 || l.Target < 0 || l.Source >= len(nodes) || l.Target >= len(nodes) || l.Source == l.Target {
			continue
		}
		degree[l.Source]++
		degree[l.Target]++
		valid = append(valid, l)
	}
	for _, l := range valid {
		w := l.Weight
		if w <= 0 || !finite(w) {
			w = 1
		}
		scale := math.Sqrt(math.Min(w, 25))
		strength := p.LinkStrength * scale / float64(min(degree[l.Source], degree[l.Target]))
		s.springs = append(s.springs, spring{
			source:   l.Source,
			target:   l.Target,
			distance: p.LinkDistance / scale,
			strength: math.Min(strength, 1),
			bias:     float64(degree[l.Source]) / float64(degree[l.Source]+degree[l.Target]),
		})
	}
	return s
}

func (s *Simulation) Iteration() int { return s.iteration }

func (s *Simulation) Iterations() int { return s.params.Iterations }

// Done reports whether the iteration budget is spent.
func (s *Simulation) Done() bool { return s.iteration >= s.params.Iterations }

// Progress is the completed share of the budget as a percentage.
func (s *Simulation) Progress() float64 {
	return math.Min(100, float64(s.iteration)/float64(s.params.Iterations)*100)
}

// Nodes returns the current positions.
func (s *Simulation) Nodes() []Node {
	out := make([]Node, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Node{ID: s.ids[i], Type: s.types[i], X: b.pos.X, Y: b.pos.Y, Positioned: true, Cluster: b.cluster}
	}
	return out
}

// Run steps the simulation until the budget is spent, calling onTick after
// each step. Cancellation is checked once per iteration.
func (s *Simulation) Run(ctx context.Context, onTick func(s *Simulation) error) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
		if onTick != nil {
			if err := onTick(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() error {
	if s.Done() {
		return nil
	}
	s.alpha += (0 - s.alpha) * s.decay

	s.applyLinks()
	if err := s.applyPairwise(); err != nil {
		return err
	}
	s.applyCenter()
	if s.params.ClusterStrength > 0 {
		s.applyClusters()
	}
	s.integrate()
	s.iteration++
	return nil
}

func (s *Simulation) applyLinks() {
	for _, sp := range s.springs {
		src, dst := &s.bodies[sp.source], &s.bodies[sp.target]
		d := r2.Sub(r2.Add(dst.pos, dst.vel), r2.Add(src.pos, src.vel))
		l := r2.Norm(d)
		if l == 0 {
			d = jiggle(sp.source, sp.target)
			l = r2.Norm(d)
		}
		k := (l - sp.distance) / l * s.alpha * sp.strength
		d = r2.Scale(k, d)
		dst.vel = r2.Sub(dst.vel, r2.Scale(sp.bias, d))
		src.vel = r2.Add(src.vel, r2.Scale(1-sp.bias, d))
	}
}

// applyPairwise runs repulsion and collision. Each worker owns a disjoint
// range of deltas and only reads shared positions.
func (s *Simulation) applyPairwise() error {
	n := len(s.bodies)
	threads := s.params.Threads
	if threads > n {
		threads = n
	}
	if threads <= 1 {
		s.pairwiseRange(0, n)
	} else {
		var g errgroup.Group
		chunk := (n + threads - 1) / threads
		for start := 0; start < n; start += chunk {
			lo, hi := start, min(start+chunk, n)
			g.Go(func() error {
				s.pairwiseRange(lo, hi)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	for i := range s.bodies {
		s.bodies[i].vel = r2.Add(s.bodies[i].vel, s.deltas[i])
		s.deltas[i] = r2.Vec{}
	}
	return nil
}

func (s *Simulation) pairwiseRange(lo, hi int) {
	for i := lo; i < hi; i++ {
		bi := s.bodies[i]
		var delta r2.Vec
		for j := range s.bodies {
			if i == j {
				continue
			}
			bj := s.bodies[j]
			d := r2.Sub(bj.pos, bi.pos)
			l2 := r2.Norm2(d)
			if l2 == 0 {
				d = jiggle(i, j)
				l2 = r2.Norm2(d)
			}

			// repulsion
			dist2 := math.Max(l2, distanceMin2)
			delta = r2.Add(delta, r2.Scale(bj.charge*s.alpha/dist2, d))

			// collision
			r := bi.radius + bj.radius
			if l2 < r*r {
				l := math.Sqrt(l2)
				overlap := (r - l) / l
				share := bj.radius * bj.radius / (bi.radius*bi.radius + bj.radius*bj.radius)
				delta = r2.Sub(delta, r2.Scale(overlap*share*0.5, d))
			}
		}
		s.deltas[i] = delta
	}
}

func (s *Simulation) applyCenter() {
	k := s.params.CenterStrength * s.alpha
	if k == 0 {
		return
	}
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vel = r2.Add(b.vel, r2.Scale(k, r2.Sub(s.center, b.pos)))
	}
}

func (s *Simulation) applyClusters() {
	sums := make(map[int]r2.Vec)
	counts := make(map[int]int)
	for _, b := range s.bodies {
		if b.cluster < 0 {
			continue
		}
		sums[b.cluster] = r2.Add(sums[b.cluster], b.pos)
		counts[b.cluster]++
	}
	k := s.params.ClusterStrength * s.alpha
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.cluster < 0 || counts[b.cluster] < 2 {
			continue
		}
		centroid := r2.Scale(1/float64(counts[b.cluster]), sums[b.cluster])
		b.vel = r2.Add(b.vel, r2.Scale(k, r2.Sub(centroid, b.pos)))
	}
}

// integrate applies velocity, clamps into the padded canvas and resets any
// body whose state is no longer finite.
func (s *Simulation) integrate() {
	w, h := s.params.Width, s.params.Height
	for i := range s.bodies {
		b := &s.bodies[i]
		b.vel = r2.Scale(1-velocityDecay, b.vel)
		b.pos = r2.Add(b.pos, b.vel)
		if !finite(b.pos.X) || !finite(b.pos.Y) || !finite(b.vel.X) || !finite(b.vel.Y) {
			b.pos = s.center
			b.vel = r2.Vec{}
			continue
		}
		b.pos.X = clamp(b.pos.X, -0.5*w, 2*w)
		b.pos.Y = clamp(b.pos.Y, -0.5*h, 2*h)
	}
}

// jiggle separates coincident bodies deterministically.
func jiggle(i, j int) r2.Vec {
	offset := float64(i-j) * 1e-6
	if offset == 0 {
		offset = 1e-6
	}
	return r2.Vec{X: offset, Y: -offset}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
