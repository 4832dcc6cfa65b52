package camera

import (
	"math"
	"testing"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newController() (*Controller, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	return New(DefaultConfig(), 800, 600, clock.now), clock
}

func TestFitEmptyIsIdentity(t *testing.T) {
	assert.Equal(t, Identity(), Fit(nil, 800, 600, DefaultConfig()))

	bad := &model.Node{X: math.NaN(), Y: 3}
	assert.Equal(t, Identity(), Fit([]*model.Node{bad}, 800, 600, DefaultConfig()))
}

func TestFitSingleNodeCentersAtUnitScale(t *testing.T) {
	n := &model.Node{Text: "hello", X: 120, Y: -40}
	got := Fit([]*model.Node{n}, 800, 600, DefaultConfig())

	assert.Equal(t, 1.0, got.K)
	center := got.Apply(n.Pos())
	assert.InDelta(t, 400, center.X, 1e-9)
	assert.InDelta(t, 300, center.Y, 1e-9)
}

func TestFitFramesAllNodes(t *testing.T) {
	nodes := []*model.Node{
		{ID: 0, X: 0, Y: 0},
		{ID: 1, X: 1000, Y: 0},
		{ID: 2, X: 500, Y: 200},
	}
	cfg := DefaultConfig()
	got := Fit(nodes, 800, 600, cfg)

	// Box spans [-15, 1015] x [-15, 215]; width dominates.
	want := 800.0 / 1030 * cfg.FitMargin
	assert.InDelta(t, want, got.K, 1e-12)

	mid := got.Apply(r2.Vec{X: 500, Y: 100})
	assert.InDelta(t, 400, mid.X, 1e-9)
	assert.InDelta(t, 300, mid.Y, 1e-9)

	for _, n := range nodes {
		p := got.Apply(n.Pos())
		assert.True(t, p.X >= 0 && p.X <= 800 && p.Y >= 0 && p.Y <= 600, "node %d off screen at %v", n.ID, p)
	}
}

func TestFitClampsZoom(t *testing.T) {
	cfg := DefaultConfig()
	far := []*model.Node{{X: -1e6}, {ID: 1, X: 1e6}}
	assert.Equal(t, cfg.MinZoom, Fit(far, 800, 600, cfg).K)

	cfg.MaxZoom = 1.5
	near := []*model.Node{{X: 0}, {ID: 1, X: 1}}
	assert.Equal(t, 1.5, Fit(near, 800, 600, cfg).K)
}

func TestCenterOnKeepsScale(t *testing.T) {
	c, _ := newController()
	c.Set(Transform{X: 10, Y: 10, K: 2})

	c.CenterOn(&model.Node{X: 50, Y: 25}, 0)
	got := c.Transform()
	assert.Equal(t, 2.0, got.K)
	p := got.Apply(r2.Vec{X: 50, Y: 25})
	assert.InDelta(t, 400, p.X, 1e-9)
	assert.InDelta(t, 300, p.Y, 1e-9)
}

func TestTransitionEasesToTarget(t *testing.T) {
	c, clock := newController()
	target := Transform{X: 100, Y: -50, K: 2}

	c.AnimateTo(target, time.Second)
	require.True(t, c.Animating())
	assert.Equal(t, Identity(), c.Transform())

	clock.advance(500 * time.Millisecond)
	half := c.Transform()
	assert.InDelta(t, 50, half.X, 1e-9)
	assert.InDelta(t, 1.5, half.K, 1e-9)

	clock.advance(100 * time.Millisecond)
	assert.Greater(t, c.Transform().X, 50.0)

	clock.advance(time.Second)
	assert.Equal(t, target, c.Transform())
	assert.False(t, c.Animating())
}

func TestTransitionRetargetsFromCurrent(t *testing.T) {
	c, clock := newController()
	c.AnimateTo(Transform{X: 100, K: 1}, time.Second)
	clock.advance(500 * time.Millisecond)

	c.AnimateTo(Identity(), time.Second)
	assert.InDelta(t, 50, c.Transform().X, 1e-9)
	assert.Equal(t, Identity(), c.Target())
}

func TestResetAndInvert(t *testing.T) {
	c, _ := newController()
	c.Set(Transform{X: 3, Y: 4, K: 0.5})

	p := r2.Vec{X: 7, Y: -2}
	got := c.Transform().Invert(c.Transform().Apply(p))
	assert.InDelta(t, p.X, got.X, 1e-12)
	assert.InDelta(t, p.Y, got.Y, 1e-12)

	c.Reset(0)
	assert.Equal(t, Identity(), c.Transform())
}

func TestEaseCubicInOut(t *testing.T) {
	assert.Equal(t, 0.0, easeCubicInOut(0))
	assert.Equal(t, 0.5, easeCubicInOut(0.5))
	assert.Equal(t, 1.0, easeCubicInOut(1))
	assert.Less(t, easeCubicInOut(0.25), 0.25)
	assert.Greater(t, easeCubicInOut(0.75), 0.75)
}
