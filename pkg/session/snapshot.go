package session

import (
	"github.com/ritzau/mindmap-layout/pkg/camera"
	"github.com/ritzau/mindmap-layout/pkg/model"
)

// NodeView is the rendering view of a node.
type NodeView struct {
	ID       int64   `json:"id"`
	Text     string  `json:"text"`
	Kind     string  `json:"kind"`
	Label    string  `json:"label,omitempty"`
	Content  string  `json:"content,omitempty"`
	ParentID *int64  `json:"parentId,omitempty"`
	Depth    int     `json:"depth"`
	Radius   float64 `json:"radius"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pinned   bool    `json:"pinned,omitempty"`
}

// LinkView is the rendering view of a link.
type LinkView struct {
	Source          int64   `json:"source"`
	Target          int64   `json:"target"`
	CurveX          float64 `json:"curveX"`
	CurveY          float64 `json:"curveY"`
	RestingDistance float64 `json:"restingDistance"`
}

// IdeasView is the suggestion set offered for one node.
type IdeasView struct {
	NodeID  int64    `json:"nodeId"`
	Ideas   []string `json:"ideas,omitempty"`
	Pending bool     `json:"pending,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Snapshot is the full state a renderer needs to draw the map.
type Snapshot struct {
	SessionID string           `json:"sessionId"`
	Nodes     []NodeView       `json:"nodes"`
	Links     []LinkView       `json:"links"`
	Selected  *int64           `json:"selected,omitempty"`
	Primed    bool             `json:"primed"`
	Viewport  camera.Transform `json:"viewport"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Alpha     float64          `json:"alpha"`
	Ticks     uint64           `json:"ticks"`
	History   int              `json:"history"`
	Ideas     []IdeasView      `json:"ideas,omitempty"`
}

// Frame is the per-tick update: positions only.
type Frame struct {
	Alpha     float64    `json:"alpha"`
	Tick      uint64     `json:"tick"`
	Positions []Position `json:"positions"`
}

// Position is a node's location in a frame.
type Position struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func viewNode(n *model.Node) NodeView {
	v := NodeView{
		ID:       n.ID,
		Text:     n.Text,
		Kind:     n.Kind.Name(),
		ParentID: copyID(n.ParentID),
		Depth:    n.Depth,
		Radius:   n.Radius(),
		X:        n.X,
		Y:        n.Y,
		Pinned:   n.Pin != nil,
	}
	switch k := n.Kind.(type) {
	case model.ListItem:
		v.Label = k.Label
	case model.Definition:
		v.Content = k.Content
	}
	return v
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	nodes := s.store.Nodes()
	links := s.store.Links()

	snap := Snapshot{
		SessionID: s.id,
		Nodes:     make([]NodeView, 0, len(nodes)),
		Links:     make([]LinkView, 0, len(links)),
		Selected:  copyID(s.selected),
		Primed:    s.primed,
		Viewport:  s.camera.Transform(),
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Alpha:     s.sim.Alpha(),
		Ticks:     s.sim.Ticks(),
		History:   s.history.Len(),
	}
	for _, n := range nodes {
		snap.Nodes = append(snap.Nodes, viewNode(n))
	}
	for _, l := range links {
		snap.Links = append(snap.Links, LinkView{
			Source:          l.Source.ID,
			Target:          l.Target.ID,
			CurveX:          l.CurveX,
			CurveY:          l.CurveY,
			RestingDistance: l.RestingDistance,
		})
	}
	for _, n := range nodes {
		set, ok := s.ideas[n.ID]
		if !ok {
			continue
		}
		snap.Ideas = append(snap.Ideas, IdeasView{
			NodeID:  n.ID,
			Ideas:   set.Ideas,
			Pending: set.Pending,
			Error:   set.Err,
		})
	}
	return snap
}

// Frame captures node positions after a tick.
func (s *Session) Frame() Frame {
	nodes := s.store.Nodes()
	f := Frame{
		Alpha:     s.sim.Alpha(),
		Tick:      s.sim.Ticks(),
		Positions: make([]Position, len(nodes)),
	}
	for i, n := range nodes {
		f.Positions[i] = Position{ID: n.ID, X: n.X, Y: n.Y}
	}
	return f
}
