package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ritzau/mindmap-layout/pkg/graph"
	"github.com/ritzau/mindmap-layout/pkg/history"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Submit is the text entry point. A numbered list becomes a batch of
// list items; anything else becomes one node. The new nodes go under
// the selected node when asChild is set or the selection is primed, next
// to it otherwise, and as roots when nothing is selected. The last new
// node becomes the selection.
func (s *Session) Submit(text string, asChild bool) ([]*model.Node, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	parent := s.submitParent(asChild)

	var created []*model.Node
	if items, ok := graph.ParseNumberedList(text); ok {
		nodes, err := s.store.AddList(items, parent)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		s.history.Push(history.AddList{NodeIDs: ids, ParentID: copyID(parent)})
		s.recordMutation("add_list")
		created = nodes
	} else {
		n, err := s.store.AddNode(text, parent, graph.AddOptions{})
		if err != nil {
			return nil, err
		}
		s.history.Push(history.AddNode{NodeID: n.ID, ParentID: copyID(parent)})
		s.recordMutation("add")
		created = []*model.Node{n}
	}

	last := created[len(created)-1]
	s.reheat(s.cfg.Simulation.Reheat, "add")
	s.Select(last.ID)
	if last.IsRoot() {
		s.FitView()
	}

	logging.Debug("submitted", "nodes", len(created), "parent", parentAttr(parent))
	return created, nil
}

// submitParent picks the parent for submitted text and consumes the
// primed state when it is used.
func (s *Session) submitParent(asChild bool) *int64 {
	sel, ok := s.Selected()
	if !ok {
		return nil
	}
	if asChild {
		return copyID(&sel.ID)
	}
	if s.primed {
		s.primed = false
		return copyID(&sel.ID)
	}
	return copyID(sel.ParentID)
}

// AddNode adds one node under parent (nil for a root) and records it.
// The selection is left alone.
func (s *Session) AddNode(text string, parent *int64) (*model.Node, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	n, err := s.store.AddNode(text, parent, graph.AddOptions{})
	if err != nil {
		return nil, err
	}
	s.history.Push(history.AddNode{NodeID: n.ID, ParentID: copyID(parent)})
	s.recordMutation("add")
	s.reheat(s.cfg.Simulation.Reheat, "add")
	if n.IsRoot() {
		s.FitView()
	}
	return n, nil
}

// Delete removes a node and its descendants. The deletion is recorded
// but cannot be undone.
func (s *Session) Delete(id int64) ([]int64, error) {
	removed := s.store.DeleteSubtree(id)
	if len(removed) == 0 {
		return nil, fmt.Errorf("delete %d: %w", id, graph.ErrNodeNotFound)
	}

	s.history.Push(history.DeleteNodes{RootID: id, NodeIDs: removed})
	s.forget(removed)
	s.recordMutation("delete")
	s.reheat(s.cfg.Simulation.Reheat, "delete")
	s.FitView()
	return removed, nil
}

// DeleteSelected deletes the selected node's subtree.
func (s *Session) DeleteSelected() ([]int64, error) {
	sel, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return s.Delete(sel.ID)
}

// forget drops per-node session state for removed nodes.
func (s *Session) forget(removed []int64) {
	for _, id := range removed {
		delete(s.ideas, id)
	}
	if s.selected != nil && slices.Contains(removed, *s.selected) {
		s.selected = nil
		s.primed = false
	}
}

// EditText relabels a node. It is not recorded in history.
func (s *Session) EditText(id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if err := s.store.SetText(id, text); err != nil {
		return err
	}
	s.recordMutation("edit")
	return nil
}

// Select makes id the selection, primes it for a child and centers the
// view on it. Suggestions shown for other nodes are dismissed.
func (s *Session) Select(id int64) error {
	n, ok := s.store.Node(id)
	if !ok {
		return fmt.Errorf("select %d: %w", id, graph.ErrNodeNotFound)
	}
	s.selected = copyID(&id)
	s.primed = true
	for other := range s.ideas {
		if other != id {
			delete(s.ideas, other)
		}
	}
	s.camera.CenterOn(n, s.cfg.Camera.Duration)
	s.touch(ChangeGraph | ChangeViewport)
	return nil
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.selected = nil
	s.primed = false
	s.touch(ChangeGraph)
}

// Undo reverts the most recent creation. Deletions stay on the history
// and report history.ErrIrreversible.
func (s *Session) Undo() (history.Entry, error) {
	e, err := s.history.Pop()
	switch {
	case errors.Is(err, history.ErrEmpty):
		s.metrics.RecordUndo("empty", 0)
		return nil, err
	case errors.Is(err, history.ErrIrreversible):
		logging.Warn("undo rejected", "entry", e.String())
		s.metrics.RecordUndo("irreversible", s.history.Len())
		return e, err
	case err != nil:
		return nil, err
	}

	var (
		removed []int64
		parent  *int64
	)
	switch e := e.(type) {
	case history.AddNode:
		removed = s.store.Remove(e.NodeID)
		parent = e.ParentID
	case history.AddList:
		removed = s.store.Remove(e.NodeIDs...)
		parent = e.ParentID
	}

	hadSelection := s.selected != nil && slices.Contains(removed, *s.selected)
	s.forget(removed)
	if hadSelection && parent != nil {
		if _, ok := s.store.Node(*parent); ok {
			s.selected = copyID(parent)
			s.primed = true
		}
	}

	s.metrics.RecordUndo("ok", s.history.Len())
	s.recordMutation("undo")
	s.reheat(s.cfg.Simulation.Settle, "undo")
	s.FitView()

	logging.Debug("undone", "entry", e.String(), "removed", len(removed))
	return e, nil
}

// Resize updates the viewport size everywhere it matters and refits.
func (s *Session) Resize(width, height float64) {
	s.cfg.Width, s.cfg.Height = width, height
	s.camera.Resize(width, height)
	s.placer.SetViewport(width, height)
	s.sim.SetCenter(s.placer.Center())
	s.FitView()
}

// FitView frames the whole map.
func (s *Session) FitView() {
	s.camera.FitView(s.store.Nodes(), s.cfg.Camera.Duration)
	s.touch(ChangeViewport)
}

// CenterOn centers the view on a node.
func (s *Session) CenterOn(id int64) error {
	n, ok := s.store.Node(id)
	if !ok {
		return fmt.Errorf("center on %d: %w", id, graph.ErrNodeNotFound)
	}
	s.camera.CenterOn(n, s.cfg.Camera.Duration)
	s.touch(ChangeViewport)
	return nil
}

// DragPhase is a step of a drag gesture.
type DragPhase string

const (
	DragStart DragPhase = "start"
	DragMove  DragPhase = "move"
	DragEnd   DragPhase = "end"
)

// Drag applies one step of a drag gesture to a node. Coordinates are in
// world space.
func (s *Session) Drag(id int64, phase DragPhase, p r2.Vec) error {
	n, ok := s.store.Node(id)
	if !ok {
		return fmt.Errorf("drag %d: %w", id, graph.ErrNodeNotFound)
	}

	switch phase {
	case DragStart:
		s.sim.DragStart(n)
		s.metrics.RecordReheat("drag")
	case DragMove:
		if n.Pin == nil {
			s.sim.DragStart(n)
		}
		s.sim.DragTo(n, p)
	case DragEnd:
		if n.Pin != nil {
			s.sim.DragTo(n, p)
		}
		s.sim.DragEnd(n)
		s.metrics.RecordReheat("release")
		if s.selected != nil && *s.selected == id {
			s.camera.CenterOn(n, s.cfg.Camera.DragDuration)
			s.touch(ChangeViewport)
		}
	default:
		return fmt.Errorf("unknown drag phase %q", phase)
	}
	s.touch(ChangeGraph)
	return nil
}

// Reset clears the map, history, selection and view. Ids start over.
func (s *Session) Reset() {
	s.store.Reset()
	s.history.Clear()
	s.selected = nil
	s.primed = false
	s.ideas = make(map[int64]*IdeaSet)
	s.camera.Reset(s.cfg.Camera.Duration)
	s.sim.SetAlphaTarget(0)
	s.recordMutation("reset")
	s.touch(ChangeViewport)
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func parentAttr(id *int64) any {
	if id == nil {
		return "none"
	}
	return *id
}
