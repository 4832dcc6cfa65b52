// Package simulation relaxes node positions with a velocity-Verlet style
// force integrator.
//
// Each tick cools the energy (alpha) toward its target, accumulates the
// link, charge, centering, collision and drift forces into node
// velocities, then damps the velocities and moves every unpinned node.
package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Params are the tuning knobs of the integrator.
type Params struct {
	Charge          float64 `koanf:"charge" validate:"lte=0"`
	CenterStrength  float64 `koanf:"center_strength" validate:"gte=0,lte=1"`
	CollideStrength float64 `koanf:"collide_strength" validate:"gte=0,lte=1"`
	CollidePadding  float64 `koanf:"collide_padding" validate:"gte=0"`
	DriftStrength   float64 `koanf:"drift_strength" validate:"gte=0"`
	AlphaMin        float64 `koanf:"alpha_min" validate:"gt=0,lt=1"`
	AlphaDecay      float64 `koanf:"alpha_decay" validate:"gt=0,lt=1"`
	VelocityDecay   float64 `koanf:"velocity_decay" validate:"gte=0,lte=1"`

	// Reheat is the energy structural mutations restart the simulation with,
	// Settle the gentler energy used after undo, drag release and content
	// updates.
	Reheat          float64 `koanf:"reheat" validate:"gt=0,lte=1"`
	Settle          float64 `koanf:"settle" validate:"gt=0,lte=1"`
	DragAlphaTarget float64 `koanf:"drag_alpha_target" validate:"gte=0,lte=1"`

	// Resting distance multipliers applied on drag release.
	StretchFactor  float64 `koanf:"stretch_factor" validate:"gt=0"`
	CompressFactor float64 `koanf:"compress_factor" validate:"gt=0"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		Charge:          -150,
		CenterStrength:  0.01,
		CollideStrength: 0.7,
		CollidePadding:  5,
		DriftStrength:   0.0005,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:   0.4,
		Reheat:          1,
		Settle:          0.3,
		DragAlphaTarget: 0.3,
		StretchFactor:   0.75,
		CompressFactor:  1.15,
	}
}

// minDistance2 bounds the charge force for nearly coincident nodes.
const minDistance2 = 1.0

// MinRestingDistance is the floor applied when a drag release shrinks
// a link.
const MinRestingDistance = 1.0

// Topology is the node and link view the simulation integrates over.
type Topology interface {
	Nodes() []*model.Node
	Links() []*model.Link
	LinksTouching(id int64) []*model.Link
}

// Simulation integrates node positions in place. It is not safe for
// concurrent use; callers serialize ticks and mutations.
type Simulation struct {
	params Params
	topo   Topology
	rng    *rand.Rand
	center r2.Vec

	alpha       float64
	alphaTarget float64
	ticks       uint64
}

// New creates a hot simulation over topo centered on center.
func New(params Params, topo Topology, center r2.Vec, rng *rand.Rand) *Simulation {
	return &Simulation{
		params: params,
		topo:   topo,
		rng:    rng,
		center: center,
		alpha:  1,
	}
}

// Params returns the active tuning.
func (s *Simulation) Params() Params { return s.params }

// SetParams replaces the tuning; energy is left alone.
func (s *Simulation) SetParams(p Params) { s.params = p }

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the energy alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks returns the number of integration steps taken.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Center returns the point the centering force pulls toward.
func (s *Simulation) Center() r2.Vec { return s.center }

// SetCenter moves the centering target, e.g. after a viewport resize.
func (s *Simulation) SetCenter(c r2.Vec) { s.center = c }

// Reheat sets the energy, restarting a cooled simulation.
func (s *Simulation) Reheat(alpha float64) {
	s.alpha = clamp01(alpha)
	logging.Debug("simulation reheated", "alpha", s.alpha)
}

// SetAlphaTarget sets the energy alpha decays toward. A target above the
// minimum keeps the simulation running indefinitely.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = clamp01(target)
}

// Active reports whether the next Tick will integrate.
func (s *Simulation) Active() bool {
	return s.alpha >= s.params.AlphaMin
}

// Tick advances one step if the simulation is active and reports
// whether it did.
func (s *Simulation) Tick() bool {
	if !s.Active() {
		return false
	}
	s.Step()
	return true
}

// Step advances one step regardless of the current energy.
func (s *Simulation) Step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay

	nodes := s.topo.Nodes()
	links := s.topo.Links()

	s.applyLinks(links)
	s.applyCharge(nodes)
	s.applyCenter(nodes)
	s.applyCollide(nodes)
	s.applyDrift(nodes)

	keep := 1 - s.params.VelocityDecay
	for _, n := range nodes {
		if n.Pin != nil {
			n.X, n.Y = n.Pin.X, n.Pin.Y
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}

	s.ticks++
	logging.Trace("tick", "n", s.ticks, "alpha", s.alpha, "nodes", len(nodes))
}

// DragStart pins n where it is and keeps the simulation warm for the
// duration of the gesture. Energy is raised to at least the drag target
// and never lowered.
func (s *Simulation) DragStart(n *model.Node) {
	p := n.Pos()
	n.Pin = &p
	s.SetAlphaTarget(s.params.DragAlphaTarget)
	if s.alpha < s.params.DragAlphaTarget {
		s.Reheat(s.params.DragAlphaTarget)
	}
}

// DragTo moves the pin of a dragged node.
func (s *Simulation) DragTo(n *model.Node, p r2.Vec) {
	n.Pin = &p
	n.SetPos(p)
}

// DragEnd unpins n, resizes its links toward where they were left and
// lets the map settle.
func (s *Simulation) DragEnd(n *model.Node) {
	s.SetAlphaTarget(0)
	n.Pin = nil
	s.Release(n)
	s.Reheat(s.params.Settle)
}

// Release adjusts the resting distance of every link touching n from its
// current length: contracted when stretched past the previous resting
// distance, expanded otherwise.
func (s *Simulation) Release(n *model.Node) {
	for _, l := range s.topo.LinksTouching(n.ID) {
		length := l.Length()
		if length > l.RestingDistance {
			l.RestingDistance = length * s.params.StretchFactor
		} else {
			l.RestingDistance = length * s.params.CompressFactor
		}
		l.RestingDistance = math.Max(l.RestingDistance, MinRestingDistance)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
