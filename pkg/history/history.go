// Package history keeps a bounded log of graph mutations for undo.
package history

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the number of entries kept before the oldest is
// evicted.
const DefaultCapacity = 20

var (
	// ErrEmpty is returned when there is nothing to undo.
	ErrEmpty = errors.New("nothing to undo")
	// ErrIrreversible is returned when the latest entry cannot be undone.
	ErrIrreversible = errors.New("action cannot be undone")
)

// Entry is one recorded mutation. Entries hold ids only; reversal
// reconstructs the removal from the current store.
type Entry interface {
	// Kind names the entry variant.
	Kind() string
	// Reversible reports whether undo can revert the entry.
	Reversible() bool
	fmt.Stringer
}

// AddNode records the creation of a single node.
type AddNode struct {
	NodeID   int64
	ParentID *int64
}

// AddList records the creation of a numbered-list batch, in order.
type AddList struct {
	NodeIDs  []int64
	ParentID *int64
}

// DeleteNodes records a subtree deletion. It is kept for the record but
// cannot be reverted.
type DeleteNodes struct {
	RootID  int64
	NodeIDs []int64
}

func (AddNode) Kind() string     { return "add-node" }
func (AddList) Kind() string     { return "add-list" }
func (DeleteNodes) Kind() string { return "delete-nodes" }

func (AddNode) Reversible() bool     { return true }
func (AddList) Reversible() bool     { return true }
func (DeleteNodes) Reversible() bool { return false }

func (e AddNode) String() string {
	return fmt.Sprintf("add node %d under %s", e.NodeID, parentString(e.ParentID))
}

func (e AddList) String() string {
	return fmt.Sprintf("add %d list items under %s", len(e.NodeIDs), parentString(e.ParentID))
}

func (e DeleteNodes) String() string {
	return fmt.Sprintf("delete %d nodes from %d", len(e.NodeIDs), e.RootID)
}

func parentString(p *int64) string {
	if p == nil {
		return "no parent"
	}
	return fmt.Sprintf("%d", *p)
}

// History is a fixed-capacity stack of entries.
type History struct {
	capacity int
	entries  []Entry
}

// New creates a history holding at most capacity entries. A
// non-positive capacity selects DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Capacity returns the maximum number of entries kept.
func (h *History) Capacity() int { return h.capacity }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Push records e, evicting the oldest entry when full.
func (h *History) Push(e Entry) {
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// Peek returns the most recent entry without removing it.
func (h *History) Peek() (Entry, bool) {
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1], true
}

// Pop removes and returns the most recent reversible entry. An
// irreversible entry stays in place and ErrIrreversible is returned.
func (h *History) Pop() (Entry, error) {
	e, ok := h.Peek()
	if !ok {
		return nil, ErrEmpty
	}
	if !e.Reversible() {
		return e, fmt.Errorf("%s: %w", e, ErrIrreversible)
	}
	h.entries = h.entries[:len(h.entries)-1]
	return e, nil
}

// Entries returns the entries oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Resize changes the capacity, evicting the oldest entries if needed.
func (h *History) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h.capacity = capacity
	if over := len(h.entries) - capacity; over > 0 {
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
	}
}

// Clear drops every entry.
func (h *History) Clear() {
	h.entries = nil
}
