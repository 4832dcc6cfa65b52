package placement

import (
	"math"
	"testing"

	"github.com/ritzau/mindmap-layout/pkg/geom"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeSource struct {
	root     *model.Node
	children map[int64][]*model.Node
}

func (f *fakeSource) PrimaryRoot() (*model.Node, bool) {
	return f.root, f.root != nil
}

func (f *fakeSource) Children(id int64) []*model.Node {
	return f.children[id]
}

func polar(origin r2.Vec, deg, dist float64) r2.Vec {
	rad := geom.Radians(deg)
	return r2.Add(origin, r2.Vec{X: dist * math.Cos(rad), Y: dist * math.Sin(rad)})
}

func nodeAt(id int64, p r2.Vec) *model.Node {
	return &model.Node{ID: id, X: p.X, Y: p.Y}
}

func TestRootGoesToViewportCenter(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	assert.Equal(t, r2.Vec{X: 400, Y: 300}, e.Root())
}

func TestChildOfPrimaryRootPointsDown(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{X: 400, Y: 300})
	src := &fakeSource{root: root}

	got := e.Child(src, root)
	assert.InDelta(t, 400, got.X, 1e-9)
	assert.InDelta(t, 400, got.Y, 1e-9)
}

func TestParentCoincidentWithRootPointsDown(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{X: 10, Y: 10})
	parent := nodeAt(1, r2.Vec{X: 10, Y: 10})
	src := &fakeSource{root: root}

	assert.InDelta(t, math.Pi/2, e.ReferenceAngle(src, parent), 1e-12)
}

func TestChildPointsAwayFromRoot(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{})
	parent := nodeAt(1, r2.Vec{X: -100, Y: 0})
	src := &fakeSource{root: root}

	assert.InDelta(t, math.Pi, geom.Normalize(e.ChildAngle(src, parent)), 1e-9)
}

func TestChildFillsLargestGapInCone(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{})
	parent := nodeAt(1, r2.Vec{X: 100, Y: 0})
	src := &fakeSource{
		root: root,
		children: map[int64][]*model.Node{
			1: {
				nodeAt(2, polar(parent.Pos(), 0, 100)),
				nodeAt(3, polar(parent.Pos(), 40, 100)),
			},
		},
	}

	theta := e.ChildAngle(src, parent)
	cone := e.Cone(src, parent)
	require.True(t, cone.Contains(theta))

	// Gaps inside the cone: [-80,0] 80°, [0,40] 40°, [40,80] 40°.
	assert.InDelta(t, geom.Normalize(geom.Radians(-40)), theta, 1e-9)

	want := polar(parent.Pos(), -40, 100)
	got := e.Child(src, parent)
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestChildrenOutsideConeAreIgnored(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{})
	parent := nodeAt(1, r2.Vec{X: 100, Y: 0})
	src := &fakeSource{
		root: root,
		children: map[int64][]*model.Node{
			1: {nodeAt(2, polar(parent.Pos(), 180, 100))},
		},
	}

	assert.InDelta(t, 0, geom.Normalize(e.ChildAngle(src, parent)), 1e-9)
}

func TestChildOnConeBoundary(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{})
	parent := nodeAt(1, r2.Vec{X: 100, Y: 0})
	src := &fakeSource{
		root: root,
		children: map[int64][]*model.Node{
			1: {nodeAt(2, polar(parent.Pos(), 80, 100))},
		},
	}

	// The boundary child collapses onto the bound; the full cone is free.
	assert.InDelta(t, 0, geom.Normalize(e.ChildAngle(src, parent)), 1e-9)
}

func TestChildAngleIsDeterministic(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	root := nodeAt(0, r2.Vec{})
	parent := nodeAt(1, r2.Vec{X: 30, Y: 70})
	src := &fakeSource{
		root: root,
		children: map[int64][]*model.Node{
			1: {
				nodeAt(2, polar(parent.Pos(), 50, 90)),
				nodeAt(3, polar(parent.Pos(), 75, 120)),
				nodeAt(4, polar(parent.Pos(), 100, 80)),
			},
		},
	}

	first := e.ChildAngle(src, parent)
	for range 10 {
		assert.Equal(t, first, e.ChildAngle(src, parent))
	}
}

func TestListItemStacksVertically(t *testing.T) {
	e := New(DefaultConfig(), 800, 600)
	parent := nodeAt(0, r2.Vec{X: 100, Y: 100})

	assert.Equal(t, r2.Vec{X: 120, Y: 180}, e.ListItem(parent, 0))
	assert.Equal(t, r2.Vec{X: 120, Y: 230}, e.ListItem(parent, 1))
	assert.Equal(t, r2.Vec{X: 420, Y: 380}, e.ListItem(nil, 0))
}
