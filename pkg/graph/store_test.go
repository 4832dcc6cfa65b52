package graph

import (
	"math/rand/v2"
	"testing"

	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/ritzau/mindmap-layout/pkg/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(seed uint64) *Store {
	engine := placement.New(placement.DefaultConfig(), 800, 600)
	return NewStore(engine, rand.New(rand.NewPCG(seed, seed)))
}

func ptr(id int64) *int64 { return &id }

func TestAddNodeAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(1)

	root, err := s.AddNode("root", nil, AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), root.ID)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, 400.0, root.X)
	assert.Equal(t, 300.0, root.Y)

	child, err := s.AddNode("- child", ptr(root.ID), AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), child.ID)
	assert.Equal(t, 1, child.Depth)
	assert.IsType(t, model.Bullet{}, child.Kind)

	link, ok := s.LinkTo(child.ID)
	require.True(t, ok)
	assert.Same(t, root, link.Source)
	assert.Same(t, child, link.Target)
	assert.Equal(t, model.DefaultRestingDistance, link.RestingDistance)
	assert.LessOrEqual(t, link.CurveX, CurveRange/2)
	assert.GreaterOrEqual(t, link.CurveX, -CurveRange/2)

	require.NoError(t, s.Validate())
}

func TestAddNodeUnknownParent(t *testing.T) {
	s := newTestStore(1)

	_, err := s.AddNode("orphan", ptr(42), AddOptions{})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Zero(t, s.Len())
	assert.Equal(t, int64(0), s.NextID())
}

func TestAddNodeForcedKind(t *testing.T) {
	s := newTestStore(1)
	root, _ := s.AddNode("root", nil, AddOptions{})

	def, err := s.AddNode(model.DefinitionTitle, ptr(root.ID), AddOptions{
		Kind: model.Definition{Content: model.DefinitionPending},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Definition{Content: model.DefinitionPending}, def.Kind)

	require.NoError(t, s.SetDefinition(def.ID, "a word"))
	assert.Equal(t, model.Definition{Content: "a word"}, def.Kind)
	assert.Error(t, s.SetDefinition(root.ID, "nope"))
}

func TestAddListStacksItems(t *testing.T) {
	s := newTestStore(1)
	root, _ := s.AddNode("root", nil, AddOptions{})

	items, _ := ParseNumberedList("1. A\n2. B\n3. C")
	nodes, err := s.AddList(items, ptr(root.ID))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	for i, n := range nodes {
		assert.Equal(t, model.ListItem{Label: items[i].Label}, n.Kind)
		assert.Equal(t, root.X+20, n.X)
		assert.Equal(t, root.Y+80+float64(i)*50, n.Y)
		assert.Equal(t, 1, n.Depth)
	}
	require.NoError(t, s.Validate())
}

func TestDeleteSubtree(t *testing.T) {
	s := newTestStore(2)
	root, _ := s.AddNode("root", nil, AddOptions{})
	a, _ := s.AddNode("a", ptr(root.ID), AddOptions{})
	b, _ := s.AddNode("b", ptr(root.ID), AddOptions{})
	a1, _ := s.AddNode("a1", ptr(a.ID), AddOptions{})
	a2, _ := s.AddNode("a2", ptr(a1.ID), AddOptions{})

	removed := s.DeleteSubtree(a.ID)
	assert.ElementsMatch(t, []int64{a.ID, a1.ID, a2.ID}, removed)
	assert.Equal(t, a.ID, removed[0])

	assert.Equal(t, 2, s.Len())
	for _, l := range s.Links() {
		for _, id := range removed {
			assert.False(t, l.Touches(id), "link %d->%d references removed node", l.Source.ID, l.Target.ID)
		}
	}
	_, ok := s.Node(b.ID)
	assert.True(t, ok)
	require.NoError(t, s.Validate())

	assert.Empty(t, s.DeleteSubtree(99))
}

func TestIDsAreNotReused(t *testing.T) {
	s := newTestStore(3)
	root, _ := s.AddNode("root", nil, AddOptions{})
	leaf, _ := s.AddNode("leaf", ptr(root.ID), AddOptions{})
	s.DeleteSubtree(leaf.ID)

	next, _ := s.AddNode("next", ptr(root.ID), AddOptions{})
	assert.Equal(t, int64(2), next.ID)

	s.Reset()
	first, _ := s.AddNode("fresh", nil, AddOptions{})
	assert.Equal(t, int64(0), first.ID)
}

func TestRemovePromotesOrphans(t *testing.T) {
	s := newTestStore(4)
	root, _ := s.AddNode("root", nil, AddOptions{})
	mid, _ := s.AddNode("mid", ptr(root.ID), AddOptions{})
	leaf, _ := s.AddNode("leaf", ptr(mid.ID), AddOptions{})
	deep, _ := s.AddNode("deep", ptr(leaf.ID), AddOptions{})

	assert.Equal(t, []int64{mid.ID}, s.Remove(mid.ID, 77))

	assert.True(t, leaf.IsRoot())
	assert.Equal(t, 0, leaf.Depth)
	assert.Equal(t, 1, deep.Depth)
	assert.Empty(t, s.Children(root.ID))
	require.NoError(t, s.Validate())
}

func TestPrimaryRootIsLowestRoot(t *testing.T) {
	s := newTestStore(5)
	_, ok := s.PrimaryRoot()
	assert.False(t, ok)

	first, _ := s.AddNode("first", nil, AddOptions{})
	second, _ := s.AddNode("second", nil, AddOptions{})

	got, ok := s.PrimaryRoot()
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	s.DeleteSubtree(first.ID)
	got, _ = s.PrimaryRoot()
	assert.Equal(t, second.ID, got.ID)
}

func TestSetText(t *testing.T) {
	s := newTestStore(6)
	root, _ := s.AddNode("root", nil, AddOptions{})
	items, _ := ParseNumberedList("1. x\n2. y")
	list, _ := s.AddList(items, ptr(root.ID))

	require.NoError(t, s.SetText(root.ID, "- now a bullet"))
	assert.IsType(t, model.Bullet{}, root.Kind)

	require.NoError(t, s.SetText(list[0].ID, "- still a list item"))
	assert.Equal(t, model.ListItem{Label: "1."}, list[0].Kind)

	assert.ErrorIs(t, s.SetText(42, "x"), ErrNodeNotFound)
}

func TestLinksTouching(t *testing.T) {
	s := newTestStore(7)
	root, _ := s.AddNode("root", nil, AddOptions{})
	mid, _ := s.AddNode("mid", ptr(root.ID), AddOptions{})
	s.AddNode("leaf1", ptr(mid.ID), AddOptions{})
	s.AddNode("leaf2", ptr(mid.ID), AddOptions{})

	assert.Len(t, s.LinksTouching(mid.ID), 3)
	assert.Len(t, s.LinksTouching(root.ID), 1)
}

func TestValidateDetectsDivergence(t *testing.T) {
	s := newTestStore(8)
	root, _ := s.AddNode("root", nil, AddOptions{})
	child, _ := s.AddNode("child", ptr(root.ID), AddOptions{})

	child.Depth = 5
	assert.Error(t, s.Validate())
	child.Depth = 1

	delete(s.links, child.ID)
	assert.Error(t, s.Validate())
}

func TestFindCycles(t *testing.T) {
	s := newTestStore(9)
	a, _ := s.AddNode("a", nil, AddOptions{})
	b, _ := s.AddNode("b", ptr(a.ID), AddOptions{})
	assert.Empty(t, findCycles(s.topo))

	s.topo.SetEdge(s.topo.NewEdge(s.topo.Node(b.ID), s.topo.Node(a.ID)))
	cycles := findCycles(s.topo)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, cycles[0])
}
