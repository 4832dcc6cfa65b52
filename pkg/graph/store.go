// Package graph owns the node collection of a mind map and the mutations
// that keep its tree structure consistent.
//
// Each node's ParentID is the ground truth for structure. Links and the
// gonum topology index are projections of it, rebuilt by the mutation
// primitives and checked by Validate.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/ritzau/mindmap-layout/pkg/placement"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNodeNotFound is returned when an operation names an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// CurveRange is the width of the symmetric range link curvature offsets
// are drawn from.
const CurveRange = 70.0

// Placer computes initial positions for new nodes.
type Placer interface {
	Root() r2.Vec
	Child(src placement.Source, parent *model.Node) r2.Vec
	ListItem(parent *model.Node, index int) r2.Vec
}

var _ placement.Source = (*Store)(nil)

// AddOptions tweaks AddNode. The zero value adds a node whose kind is
// derived from its text and places it radially.
type AddOptions struct {
	// Kind forces a kind instead of classifying the text.
	Kind model.Kind
	// ListIndex is the position of a list item within its batch.
	ListIndex int
}

// Store holds nodes, their link projection and a topology index.
type Store struct {
	topo   *simple.DirectedGraph
	nodes  map[int64]*model.Node
	links  map[int64]*model.Link // keyed by target (child) id
	nextID int64

	placer Placer
	rng    *rand.Rand
}

// NewStore creates an empty store. rng drives link curvature only.
func NewStore(placer Placer, rng *rand.Rand) *Store {
	return &Store{
		topo:   simple.NewDirectedGraph(),
		nodes:  make(map[int64]*model.Node),
		links:  make(map[int64]*model.Link),
		placer: placer,
		rng:    rng,
	}
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// NextID returns the id the next added node will receive.
func (s *Store) NextID() int64 {
	return s.nextID
}

// Node returns the node with the given id.
func (s *Store) Node(id int64) (*model.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes ordered by id.
func (s *Store) Nodes() []*model.Node {
	out := make([]*model.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *model.Node) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Links returns all links ordered by target id.
func (s *Store) Links() []*model.Link {
	out := make([]*model.Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b *model.Link) int { return cmp.Compare(a.Target.ID, b.Target.ID) })
	return out
}

// LinkTo returns the link whose target is child.
func (s *Store) LinkTo(child int64) (*model.Link, bool) {
	l, ok := s.links[child]
	return l, ok
}

// LinksTouching returns every link with id as an endpoint.
func (s *Store) LinksTouching(id int64) []*model.Link {
	var out []*model.Link
	if l, ok := s.links[id]; ok {
		out = append(out, l)
	}
	for _, c := range s.childIDs(id) {
		out = append(out, s.links[c])
	}
	return out
}

// Children returns the direct children of id ordered by id.
func (s *Store) Children(id int64) []*model.Node {
	ids := s.childIDs(id)
	out := make([]*model.Node, 0, len(ids))
	for _, c := range ids {
		out = append(out, s.nodes[c])
	}
	return out
}

func (s *Store) childIDs(id int64) []int64 {
	if s.topo.Node(id) == nil {
		return nil
	}
	var ids []int64
	it := s.topo.From(id)
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}

// PrimaryRoot returns the lowest-id root, which the map is oriented around.
func (s *Store) PrimaryRoot() (*model.Node, bool) {
	var root *model.Node
	for _, n := range s.nodes {
		if n.IsRoot() && (root == nil || n.ID < root.ID) {
			root = n
		}
	}
	return root, root != nil
}

// AddNode creates a node labeled text under parent (nil for a new root)
// and positions it. It neither reheats the simulation nor records history.
func (s *Store) AddNode(text string, parent *int64, opts AddOptions) (*model.Node, error) {
	var p *model.Node
	if parent != nil {
		var ok bool
		if p, ok = s.nodes[*parent]; !ok {
			return nil, fmt.Errorf("add child of %d: %w", *parent, ErrNodeNotFound)
		}
	}

	kind := opts.Kind
	if kind == nil {
		kind = model.Classify(text)
	}

	var pos r2.Vec
	switch {
	case isListItem(kind):
		pos = s.placer.ListItem(p, opts.ListIndex)
	case p == nil:
		pos = s.placer.Root()
	default:
		pos = s.placer.Child(s, p)
	}

	n := &model.Node{
		ID:   s.nextID,
		Text: text,
		X:    pos.X,
		Y:    pos.Y,
		Kind: kind,
	}
	s.nextID++

	s.nodes[n.ID] = n
	s.topo.AddNode(simple.Node(n.ID))

	if p != nil {
		pid := p.ID
		n.ParentID = &pid
		n.Depth = p.Depth + 1
		s.link(p, n)
	}

	logging.Debug("node added", "id", n.ID, "kind", kind.Name(), "depth", n.Depth)
	return n, nil
}

// AddList adds one list-item node per entry under parent, stacked in order.
func (s *Store) AddList(items []ListEntry, parent *int64) ([]*model.Node, error) {
	if parent != nil {
		if _, ok := s.nodes[*parent]; !ok {
			return nil, fmt.Errorf("add list under %d: %w", *parent, ErrNodeNotFound)
		}
	}

	nodes := make([]*model.Node, 0, len(items))
	for i, item := range items {
		n, err := s.AddNode(item.Text, parent, AddOptions{
			Kind:      model.ListItem{Label: item.Label},
			ListIndex: i,
		})
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func isListItem(k model.Kind) bool {
	_, ok := k.(model.ListItem)
	return ok
}

func (s *Store) link(parent, child *model.Node) {
	s.topo.SetEdge(s.topo.NewEdge(simple.Node(parent.ID), simple.Node(child.ID)))
	s.links[child.ID] = &model.Link{
		Source:          parent,
		Target:          child,
		CurveX:          (s.rng.Float64() - 0.5) * CurveRange,
		CurveY:          (s.rng.Float64() - 0.5) * CurveRange,
		RestingDistance: model.DefaultRestingDistance,
	}
}

// Subtree returns id and every node reachable from it through child
// links, in breadth-first order. It is empty when id is unknown.
func (s *Store) Subtree(id int64) []int64 {
	start := s.topo.Node(id)
	if start == nil {
		return nil
	}

	var closure []int64
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { closure = append(closure, n.ID()) },
	}
	bf.Walk(s.topo, start, nil)
	return closure
}

// DeleteSubtree removes id and all its descendants together with every
// link touching them. Unknown ids are ignored. The removed ids are
// returned in breadth-first order.
func (s *Store) DeleteSubtree(id int64) []int64 {
	closure := s.Subtree(id)
	for _, c := range closure {
		s.drop(c)
	}
	if len(closure) > 0 {
		logging.Debug("subtree deleted", "root", id, "removed", len(closure))
	}
	return closure
}

// Remove deletes exactly the given nodes and the links touching them.
// Surviving children of a removed node become roots. Unknown ids are
// skipped; the ids actually removed are returned.
func (s *Store) Remove(ids ...int64) []int64 {
	gone := make(map[int64]bool, len(ids))
	var removed []int64
	for _, id := range ids {
		if _, ok := s.nodes[id]; ok && !gone[id] {
			gone[id] = true
			removed = append(removed, id)
		}
	}

	var orphans []int64
	for _, id := range removed {
		for _, c := range s.childIDs(id) {
			if !gone[c] {
				orphans = append(orphans, c)
			}
		}
	}

	for _, id := range removed {
		s.drop(id)
	}
	for _, o := range orphans {
		n := s.nodes[o]
		n.ParentID = nil
		s.relevel(n, 0)
	}

	if len(removed) > 0 {
		logging.Debug("nodes removed", "count", len(removed), "orphans", len(orphans))
	}
	return removed
}

// drop removes a node, its incoming link and its outgoing links.
func (s *Store) drop(id int64) {
	for _, c := range s.childIDs(id) {
		delete(s.links, c)
	}
	delete(s.links, id)
	s.topo.RemoveNode(id)
	delete(s.nodes, id)
}

func (s *Store) relevel(n *model.Node, depth int) {
	n.Depth = depth
	for _, c := range s.Children(n.ID) {
		s.relevel(c, depth+1)
	}
}

// SetText replaces a node's label. Plain and bullet nodes are
// re-classified from the new text; other kinds keep their variant.
func (s *Store) SetText(id int64, text string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrNodeNotFound)
	}
	n.Text = text
	if model.IsTextDerived(n.Kind) {
		n.Kind = model.Classify(text)
	}
	return nil
}

// SetDefinition replaces the content of a definition node.
func (s *Store) SetDefinition(id int64, content string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("define %d: %w", id, ErrNodeNotFound)
	}
	if _, ok := n.Kind.(model.Definition); !ok {
		return fmt.Errorf("node %d is a %s node, not a definition", id, n.Kind.Name())
	}
	n.Kind = model.Definition{Content: content}
	return nil
}

// Reset empties the store. Ids start over from zero.
func (s *Store) Reset() {
	s.topo = simple.NewDirectedGraph()
	s.nodes = make(map[int64]*model.Node)
	s.links = make(map[int64]*model.Link)
	s.nextID = 0
}
