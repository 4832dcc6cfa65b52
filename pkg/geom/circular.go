// Package geom provides circular-interval arithmetic on angles.
//
// All angles are radians. Normalized angles lie in [0, 2π).
package geom

import (
	"math"
	"sort"
)

// TwoPi is a full turn.
const TwoPi = 2 * math.Pi

// Epsilon is the tolerance used when comparing normalized angles.
const Epsilon = 1e-9

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Normalize maps any angle into [0, 2π).
func Normalize(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod can hand back a value a hair under 2π for tiny negatives.
	if a >= TwoPi-Epsilon/2 {
		return 0
	}
	return a
}

// Sweep returns the counter-clockwise angular distance from a to b in [0, 2π).
func Sweep(a, b float64) float64 {
	return Normalize(b - a)
}

// Arc is the closed circular interval [Center-HalfWidth, Center+HalfWidth].
type Arc struct {
	Center    float64
	HalfWidth float64
}

// Lower returns the normalized lower bound.
func (a Arc) Lower() float64 {
	return Normalize(a.Center - a.HalfWidth)
}

// Upper returns the normalized upper bound.
func (a Arc) Upper() float64 {
	return Normalize(a.Center + a.HalfWidth)
}

// Contains reports whether theta lies inside the arc, bounds included.
func (a Arc) Contains(theta float64) bool {
	if a.HalfWidth >= math.Pi {
		return true
	}
	return Sweep(a.Lower(), theta) <= 2*a.HalfWidth+Epsilon
}

// Gap is the empty interval between two consecutive points on the circle.
type Gap struct {
	Start float64 // normalized
	Width float64
}

// Mid returns the normalized midpoint of the gap.
func (g Gap) Mid() float64 {
	return Normalize(g.Start + g.Width/2)
}

// Unique normalizes, sorts and deduplicates points. Points closer than
// Epsilon collapse onto the first one, including across the 0/2π seam.
func Unique(points []float64) []float64 {
	norm := make([]float64, 0, len(points))
	for _, p := range points {
		norm = append(norm, Normalize(p))
	}
	sort.Float64s(norm)

	out := make([]float64, 0, len(norm))
	for _, p := range norm {
		if len(out) > 0 && p-out[len(out)-1] < Epsilon {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && TwoPi-out[len(out)-1]+out[0] < Epsilon {
		out = out[:len(out)-1]
	}
	return out
}

// Gaps returns the gaps between circularly consecutive points, starting
// from the lowest point. Fewer than two distinct points yield no gaps.
func Gaps(points []float64) []Gap {
	pts := Unique(points)
	if len(pts) < 2 {
		return nil
	}

	gaps := make([]Gap, 0, len(pts))
	for i, start := range pts {
		end := pts[(i+1)%len(pts)]
		gaps = append(gaps, Gap{Start: start, Width: Sweep(start, end)})
	}
	return gaps
}

// LargestGap returns the widest gap whose midpoint satisfies eligible.
// Equal widths resolve to the gap with the lowest start angle.
func LargestGap(points []float64, eligible func(mid float64) bool) (Gap, bool) {
	var (
		best  Gap
		found bool
	)
	for _, g := range Gaps(points) {
		if eligible != nil && !eligible(g.Mid()) {
			continue
		}
		if !found || g.Width > best.Width+Epsilon {
			best = g
			found = true
		}
	}
	return best, found
}
