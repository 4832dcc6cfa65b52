// Package placement computes initial coordinates for new nodes.
//
// A child is fanned out from its parent inside a cone that points away
// from the map's primary root, into the widest free gap between the
// parent's existing children. List items are stacked vertically instead.
package placement

import (
	"math"

	"github.com/ritzau/mindmap-layout/pkg/geom"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the placement tuning parameters.
type Config struct {
	Distance    float64 `koanf:"distance" validate:"gt=0"`
	ConeDegrees float64 `koanf:"cone_degrees" validate:"gt=0,lte=360"`
	ListIndent  float64 `koanf:"list_indent"`
	ListOffset  float64 `koanf:"list_offset"`
	ListSpacing float64 `koanf:"list_spacing" validate:"gte=0"`
}

// DefaultConfig returns the stock parameters: 100 units out, a 160° cone,
// and list items indented 20 and spaced 50 apart starting 80 below.
func DefaultConfig() Config {
	return Config{
		Distance:    model.DefaultRestingDistance,
		ConeDegrees: 160,
		ListIndent:  20,
		ListOffset:  0.8 * model.DefaultRestingDistance,
		ListSpacing: 50,
	}
}

// Source is the read-only view of the graph the engine needs.
type Source interface {
	// PrimaryRoot returns the node the map is oriented around.
	PrimaryRoot() (*model.Node, bool)
	// Children returns the direct children of id.
	Children(id int64) []*model.Node
}

// Engine computes placements. Its only state is configuration and the
// viewport center; given the same graph it always yields the same result.
type Engine struct {
	cfg    Config
	center r2.Vec
}

// New creates an engine for a viewport of the given size.
func New(cfg Config, width, height float64) *Engine {
	e := &Engine{cfg: cfg}
	e.SetViewport(width, height)
	return e
}

// Config returns the active parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetConfig replaces the parameters.
func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg
}

// SetViewport records the viewport size; its midpoint is where roots go.
func (e *Engine) SetViewport(width, height float64) {
	e.center = r2.Vec{X: width / 2, Y: height / 2}
}

// Center returns the viewport midpoint.
func (e *Engine) Center() r2.Vec {
	return e.center
}

// Root returns the position for a new parentless node.
func (e *Engine) Root() r2.Vec {
	return e.center
}

// ReferenceAngle returns the outward direction of the cone for parent.
func (e *Engine) ReferenceAngle(src Source, parent *model.Node) float64 {
	origin := e.center
	root, ok := src.PrimaryRoot()
	if ok {
		if root.ID == parent.ID {
			return math.Pi / 2
		}
		origin = root.Pos()
	}

	d := r2.Sub(parent.Pos(), origin)
	if d.X == 0 && d.Y == 0 {
		return math.Pi / 2
	}
	return math.Atan2(d.Y, d.X)
}

// Cone returns the arc new children of parent are placed in.
func (e *Engine) Cone(src Source, parent *model.Node) geom.Arc {
	return geom.Arc{
		Center:    e.ReferenceAngle(src, parent),
		HalfWidth: geom.Radians(e.cfg.ConeDegrees / 2),
	}
}

// ChildAngle returns the direction, relative to parent, of its next child.
func (e *Engine) ChildAngle(src Source, parent *model.Node) float64 {
	cone := e.Cone(src, parent)

	children := src.Children(parent.ID)
	if len(children) == 0 {
		return cone.Center
	}

	points := []float64{cone.Lower(), cone.Upper()}
	for _, c := range children {
		d := r2.Sub(c.Pos(), parent.Pos())
		a := math.Atan2(d.Y, d.X)
		if cone.Contains(a) {
			points = append(points, a)
		}
	}

	gap, ok := geom.LargestGap(points, cone.Contains)
	if !ok {
		return cone.Center
	}
	return gap.Mid()
}

// Child returns the position for a new radial child of parent.
func (e *Engine) Child(src Source, parent *model.Node) r2.Vec {
	theta := e.ChildAngle(src, parent)
	return r2.Add(parent.Pos(), r2.Vec{
		X: e.cfg.Distance * math.Cos(theta),
		Y: e.cfg.Distance * math.Sin(theta),
	})
}

// ListItem returns the position of the index'th item of a list batch
// under parent. A nil parent stacks the batch under the viewport center.
func (e *Engine) ListItem(parent *model.Node, index int) r2.Vec {
	anchor := e.center
	if parent != nil {
		anchor = parent.Pos()
	}
	return r2.Add(anchor, r2.Vec{
		X: e.cfg.ListIndent,
		Y: e.cfg.ListOffset + float64(index)*e.cfg.ListSpacing,
	})
}
