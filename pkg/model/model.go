// Package model defines the node and link types shared by the layout packages.
package model

import (
	"math"
	"unicode/utf8"

	"gonum.org/v1/gonum/spatial/r2"
)

// Dynamic radius constants. A node grows by one unit per character of its
// label, bounded so that long labels do not swallow the map.
const (
	BaseRadius    = 15.0
	RadiusPerChar = 1.0
	MinRadius     = 15.0
	MaxRadius     = 70.0
)

// DefaultRestingDistance is the spring length assigned to every new link.
const DefaultRestingDistance = 100.0

// Node is a labeled, positioned point in the diagram.
//
// Position and velocity are owned by the simulation and mutated in place.
// Identity, parentage, depth and kind are owned by the graph store.
type Node struct {
	ID       int64
	Text     string
	X, Y     float64
	VX, VY   float64
	ParentID *int64 // nil for roots
	Depth    int
	Kind     Kind

	// Pin is set while the node is dragged; the simulation does not
	// integrate a pinned node.
	Pin *r2.Vec

	// Request is the token of the outstanding definition fetch that will
	// fill this node, zero when none is in flight.
	Request uint64
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// Parent returns the parent id and whether the node has one.
func (n *Node) Parent() (int64, bool) {
	if n.ParentID == nil {
		return 0, false
	}
	return *n.ParentID, true
}

// Pos returns the node position as a vector.
func (n *Node) Pos() r2.Vec {
	return r2.Vec{X: n.X, Y: n.Y}
}

// SetPos moves the node.
func (n *Node) SetPos(p r2.Vec) {
	n.X, n.Y = p.X, p.Y
}

// Radius returns the node's dynamic radius.
func (n *Node) Radius() float64 {
	return Radius(n.Text)
}

// HasValidPosition reports whether both coordinates are finite.
func (n *Node) HasValidPosition() bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y) && !math.IsInf(n.X, 0) && !math.IsInf(n.Y, 0)
}

// Radius computes clamp(base + k*len(text), min, max).
func Radius(text string) float64 {
	r := BaseRadius + float64(utf8.RuneCountInString(text))*RadiusPerChar
	return math.Max(MinRadius, math.Min(r, MaxRadius))
}

// Link is a directed edge from a parent node to one of its children.
type Link struct {
	Source *Node
	Target *Node

	// Curvature offsets of the quadratic control point. Assigned once at
	// creation and never used by layout.
	CurveX, CurveY float64

	RestingDistance float64
}

// Length returns the current euclidean distance between the endpoints.
func (l *Link) Length() float64 {
	return r2.Norm(r2.Sub(l.Target.Pos(), l.Source.Pos()))
}

// Touches reports whether the link has id as one of its endpoints.
func (l *Link) Touches(id int64) bool {
	return l.Source.ID == id || l.Target.ID == id
}
