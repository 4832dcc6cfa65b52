package simulation

import (
	"math"

	"github.com/ritzau/mindmap-layout/pkg/model"
)

// jiggle returns a tiny random offset used to separate coincident points.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyLinks pulls link endpoints toward the link's resting distance.
// Stiffness is the reciprocal of the lesser endpoint degree and the
// correction is split in proportion to degree, so hubs move less.
func (s *Simulation) applyLinks(links []*model.Link) {
	degree := make(map[int64]int, 2*len(links))
	for _, l := range links {
		degree[l.Source.ID]++
		degree[l.Target.ID]++
	}

	for _, l := range links {
		src, dst := l.Source, l.Target
		ds, dt := float64(degree[src.ID]), float64(degree[dst.ID])

		x := dst.X + dst.VX - src.X - src.VX
		if x == 0 {
			x = s.jiggle()
		}
		y := dst.Y + dst.VY - src.Y - src.VY
		if y == 0 {
			y = s.jiggle()
		}

		dist := math.Sqrt(x*x + y*y)
		k := (dist - l.RestingDistance) / dist * s.alpha / math.Min(ds, dt)
		x *= k
		y *= k

		bias := ds / (ds + dt)
		dst.VX -= x * bias
		dst.VY -= y * bias
		src.VX += x * (1 - bias)
		src.VY += y * (1 - bias)
	}
}

// applyCharge applies uniform pairwise inverse-distance repulsion.
func (s *Simulation) applyCharge(nodes []*model.Node) {
	strength := s.params.Charge * s.alpha
	for _, a := range nodes {
		for _, b := range nodes {
			if a == b {
				continue
			}
			x := b.X - a.X
			y := b.Y - a.Y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < minDistance2 {
				l = math.Sqrt(minDistance2 * l)
			}
			a.VX += x * strength / l
			a.VY += y * strength / l
		}
	}
}

// applyCenter shifts every node so the centroid moves toward the center.
func (s *Simulation) applyCenter(nodes []*model.Node) {
	if len(nodes) == 0 {
		return
	}

	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	n := float64(len(nodes))
	sx = (sx/n - s.center.X) * s.params.CenterStrength
	sy = (sy/n - s.center.Y) * s.params.CenterStrength

	for _, node := range nodes {
		node.X -= sx
		node.Y -= sy
	}
}

// applyCollide separates overlapping nodes using their predicted
// positions. Smaller nodes give way more than larger ones.
func (s *Simulation) applyCollide(nodes []*model.Node) {
	radii := make([]float64, len(nodes))
	for i, n := range nodes {
		radii[i] = n.Radius() + s.params.CollidePadding
	}

	for i, a := range nodes {
		ri := radii[i]
		ri2 := ri * ri
		xi := a.X + a.VX
		yi := a.Y + a.VY

		for j := i + 1; j < len(nodes); j++ {
			b := nodes[j]
			rj := radii[j]
			r := ri + rj

			x := xi - b.X - b.VX
			y := yi - b.Y - b.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}

			d := math.Sqrt(l)
			k := (r - d) / d * s.params.CollideStrength
			x *= k
			y *= k

			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			a.VX += x * share
			a.VY += y * share
			b.VX -= x * (1 - share)
			b.VY -= y * (1 - share)
		}
	}
}

// applyDrift adds a small random kick to every node, scaled by energy.
func (s *Simulation) applyDrift(nodes []*model.Node) {
	scale := s.params.DriftStrength * s.alpha
	for _, n := range nodes {
		n.VX += (s.rng.Float64() - 0.5) * scale
		n.VY += (s.rng.Float64() - 0.5) * scale
	}
}
