// Package camera computes and animates the viewport transform.
package camera

import (
	"math"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
func Identity() Transform {
	return Transform{K: 1}
}

// Apply maps a world point to the screen.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to the world.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

func lerp(a, b Transform, f float64) Transform {
	return Transform{
		X: a.X + (b.X-a.X)*f,
		Y: a.Y + (b.Y-a.Y)*f,
		K: a.K + (b.K-a.K)*f,
	}
}

// Config holds the zoom limits and transition timings.
type Config struct {
	MinZoom      float64       `koanf:"min_zoom" validate:"gt=0"`
	MaxZoom      float64       `koanf:"max_zoom" validate:"gtfield=MinZoom"`
	FitMargin    float64       `koanf:"fit_margin" validate:"gt=0,lte=1"`
	Duration     time.Duration `koanf:"duration" validate:"gte=0"`
	DragDuration time.Duration `koanf:"drag_duration" validate:"gte=0"`
}

// DefaultConfig returns zoom limits [0.1, 4], a 90% fit margin and 750ms
// transitions (250ms when following a dragged node).
func DefaultConfig() Config {
	return Config{
		MinZoom:      0.1,
		MaxZoom:      4,
		FitMargin:    0.9,
		Duration:     750 * time.Millisecond,
		DragDuration: 250 * time.Millisecond,
	}
}

// ClampZoom bounds k to the configured zoom range.
func (c Config) ClampZoom(k float64) float64 {
	return math.Max(c.MinZoom, math.Min(k, c.MaxZoom))
}

type transition struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

// Controller owns the viewport transform and its pending transition.
type Controller struct {
	cfg           Config
	width, height float64
	now           func() time.Time

	current Transform
	anim    *transition
}

// New creates a controller at the identity transform. now may be nil,
// in which case the wall clock is used.
func New(cfg Config, width, height float64, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		cfg:     cfg,
		width:   width,
		height:  height,
		now:     now,
		current: Identity(),
	}
}

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// SetConfig replaces the configuration. A running transition continues.
func (c *Controller) SetConfig(cfg Config) { c.cfg = cfg }

// Size returns the viewport dimensions.
func (c *Controller) Size() (width, height float64) {
	return c.width, c.height
}

// Resize changes the viewport dimensions.
func (c *Controller) Resize(width, height float64) {
	c.width, c.height = width, height
}

// Transform returns the transform at the current instant.
func (c *Controller) Transform() Transform {
	if c.anim == nil {
		return c.current
	}

	elapsed := c.now().Sub(c.anim.start)
	if elapsed >= c.anim.duration {
		c.current = c.anim.to
		c.anim = nil
		return c.current
	}

	f := float64(elapsed) / float64(c.anim.duration)
	c.current = lerp(c.anim.from, c.anim.to, easeCubicInOut(f))
	return c.current
}

// Target returns where the transform is heading, or the current
// transform when idle.
func (c *Controller) Target() Transform {
	if c.anim != nil {
		return c.anim.to
	}
	return c.current
}

// Animating reports whether a transition is in progress.
func (c *Controller) Animating() bool {
	c.Transform()
	return c.anim != nil
}

// Set jumps to t, cancelling any transition.
func (c *Controller) Set(t Transform) {
	c.anim = nil
	c.current = t
}

// AnimateTo starts a transition from the current transform to t. A
// non-positive duration jumps immediately.
func (c *Controller) AnimateTo(t Transform, d time.Duration) {
	if d <= 0 {
		c.Set(t)
		return
	}
	c.anim = &transition{
		from:     c.Transform(),
		to:       t,
		start:    c.now(),
		duration: d,
	}
}

// CenterOn moves the view so n sits at the viewport center, keeping the
// current zoom.
func (c *Controller) CenterOn(n *model.Node, d time.Duration) {
	if n == nil || !n.HasValidPosition() {
		return
	}
	k := c.Transform().K
	c.AnimateTo(c.centered(n.Pos(), k), d)
}

// FitView frames all nodes with a margin.
func (c *Controller) FitView(nodes []*model.Node, d time.Duration) {
	c.AnimateTo(Fit(nodes, c.width, c.height, c.cfg), d)
}

// Reset returns to the identity transform.
func (c *Controller) Reset(d time.Duration) {
	c.AnimateTo(Identity(), d)
}

func (c *Controller) centered(p r2.Vec, k float64) Transform {
	return Transform{
		X: c.width/2 - p.X*k,
		Y: c.height/2 - p.Y*k,
		K: k,
	}
}

// Fit returns the transform that frames nodes in a width x height
// viewport. Each node contributes its center expanded by its radius;
// nodes without a finite position are ignored. With nothing to frame it
// returns the identity, and a single node is centered at scale 1.
func Fit(nodes []*model.Node, width, height float64, cfg Config) Transform {
	var (
		box   r2.Box
		valid []*model.Node
	)
	for _, n := range nodes {
		if !n.HasValidPosition() {
			continue
		}
		r := n.Radius()
		nb := r2.NewBox(n.X-r, n.Y-r, n.X+r, n.Y+r)
		if len(valid) == 0 {
			box = nb
		} else {
			box = box.Union(nb)
		}
		valid = append(valid, n)
	}

	switch len(valid) {
	case 0:
		return Identity()
	case 1:
		n := valid[0]
		return Transform{X: width/2 - n.X, Y: height/2 - n.Y, K: 1}
	}

	size := box.Size()
	if size.X == 0 {
		size.X = width / 2
	}
	if size.Y == 0 {
		size.Y = height / 2
	}

	k := cfg.ClampZoom(math.Min(width/size.X, height/size.Y) * cfg.FitMargin)
	mid := box.Center()
	return Transform{
		X: width/2 - mid.X*k,
		Y: height/2 - mid.Y*k,
		K: k,
	}
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
