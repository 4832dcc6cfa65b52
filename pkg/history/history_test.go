package history

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushEvictsOldest(t *testing.T) {
	h := New(DefaultCapacity)
	for i := range 25 {
		h.Push(AddNode{NodeID: int64(i)})
	}

	require.Equal(t, 20, h.Len())
	entries := h.Entries()
	for i, e := range entries {
		assert.Equal(t, int64(i+5), e.(AddNode).NodeID)
	}
}

func TestPopReturnsMostRecent(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultCapacity, h.Capacity())

	_, err := h.Pop()
	assert.ErrorIs(t, err, ErrEmpty)

	parent := int64(0)
	h.Push(AddNode{NodeID: 1, ParentID: &parent})
	h.Push(AddList{NodeIDs: []int64{2, 3}, ParentID: &parent})

	e, err := h.Pop()
	require.NoError(t, err)
	assert.Equal(t, AddList{NodeIDs: []int64{2, 3}, ParentID: &parent}, e)
	assert.Equal(t, 1, h.Len())
}

func TestIrreversibleEntryStays(t *testing.T) {
	h := New(DefaultCapacity)
	h.Push(AddNode{NodeID: 0})
	h.Push(DeleteNodes{RootID: 0, NodeIDs: []int64{0}})

	e, err := h.Pop()
	assert.ErrorIs(t, err, ErrIrreversible)
	assert.Equal(t, "delete-nodes", e.Kind())
	assert.Equal(t, 2, h.Len())

	top, ok := h.Peek()
	require.True(t, ok)
	assert.Equal(t, e, top)
}

func TestResizeAndClear(t *testing.T) {
	h := New(5)
	for i := range 5 {
		h.Push(AddNode{NodeID: int64(i)})
	}
	h.Resize(2)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, int64(3), h.Entries()[0].(AddNode).NodeID)

	h.Clear()
	assert.Zero(t, h.Len())
}

func TestEntryStrings(t *testing.T) {
	p := int64(4)
	assert.Equal(t, "add node 7 under 4", AddNode{NodeID: 7, ParentID: &p}.String())
	assert.Equal(t, "add 2 list items under no parent", AddList{NodeIDs: []int64{1, 2}}.String())
	assert.Equal(t, "delete 3 nodes from 1", DeleteNodes{RootID: 1, NodeIDs: []int64{1, 2, 3}}.String())
}

func TestHistoryBoundProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("keeps the most recent entries in order", prop.ForAll(
		func(pushes int, capacity int) bool {
			h := New(capacity)
			for i := range pushes {
				h.Push(AddNode{NodeID: int64(i)})
			}

			want := min(pushes, capacity)
			if h.Len() != want {
				return false
			}
			for i, e := range h.Entries() {
				if e.(AddNode).NodeID != int64(pushes-want+i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}
