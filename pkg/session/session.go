// Package session ties the layout components into one editable mind map.
//
// A Session is single-threaded: every method must be called from the
// goroutine that owns it, normally the event Loop. Collaborator calls
// run elsewhere and hand their results back as completions.
package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/mindmap-layout/pkg/camera"
	"github.com/ritzau/mindmap-layout/pkg/graph"
	"github.com/ritzau/mindmap-layout/pkg/history"
	"github.com/ritzau/mindmap-layout/pkg/metrics"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/ritzau/mindmap-layout/pkg/placement"
	"github.com/ritzau/mindmap-layout/pkg/simulation"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
)

var (
	// ErrNoSelection is returned by operations that need a selected node.
	ErrNoSelection = errors.New("no node selected")
	// ErrClosed is returned when a command reaches a stopped loop.
	ErrClosed = errors.New("session closed")
	// ErrEmptyText is returned when a label would be blank.
	ErrEmptyText = errors.New("text is empty")
	// ErrNoIdea is returned when accepting an idea that is not on offer.
	ErrNoIdea = errors.New("no such idea")
)

// Config holds the tunable parts of a session.
type Config struct {
	Width           float64
	Height          float64
	Placement       placement.Config
	Simulation      simulation.Params
	Camera          camera.Config
	HistoryCapacity int
}

// DefaultConfig returns an 800x600 viewport with stock tuning.
func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		Placement:       placement.DefaultConfig(),
		Simulation:      simulation.DefaultParams(),
		Camera:          camera.DefaultConfig(),
		HistoryCapacity: history.DefaultCapacity,
	}
}

// Task is collaborator work run off the event loop. It returns the
// completion to apply back on the session.
type Task func(ctx context.Context) func(*Session)

// Runner schedules tasks and applies their completions on the session's
// goroutine.
type Runner interface {
	Go(Task)
}

// Deps are the collaborators of a session. Zero values get defaults:
// a time-seeded generator, the wall clock, the mock suggestion client,
// a private metrics registry and an inline runner.
type Deps struct {
	Rand    *rand.Rand
	Now     func() time.Time
	Suggest suggest.Client
	Metrics *metrics.Registry
	Runner  Runner
}

// Change flags what a command altered, so the owner knows what to publish.
type Change uint8

const (
	ChangeGraph Change = 1 << iota
	ChangeViewport
)

// IdeaSet is the pending or received suggestion list for one node.
type IdeaSet struct {
	Ideas   []string
	Pending bool
	Err     string
	request uint64
}

// Session is one mind map with its layout state.
type Session struct {
	id  string
	cfg Config

	store   *graph.Store
	placer  *placement.Engine
	sim     *simulation.Simulation
	camera  *camera.Controller
	history *history.History

	selected *int64
	primed   bool
	ideas    map[int64]*IdeaSet

	suggest  suggest.Client
	metrics  *metrics.Registry
	runner   Runner
	requests uint64
	changes  Change
}

// New creates an empty session.
func New(cfg Config, deps Deps) *Session {
	if deps.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		deps.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if deps.Suggest == nil {
		deps.Suggest = suggest.Mock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}

	placer := placement.New(cfg.Placement, cfg.Width, cfg.Height)
	store := graph.NewStore(placer, deps.Rand)

	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		store:   store,
		placer:  placer,
		sim:     simulation.New(cfg.Simulation, store, placer.Center(), deps.Rand),
		camera:  camera.New(cfg.Camera, cfg.Width, cfg.Height, deps.Now),
		history: history.New(cfg.HistoryCapacity),
		ideas:   make(map[int64]*IdeaSet),
		suggest: deps.Suggest,
		metrics: deps.Metrics,
		runner:  deps.Runner,
	}
	if s.runner == nil {
		s.runner = inline{s}
	}
	return s
}

// inline runs tasks synchronously on the caller's goroutine.
type inline struct{ s *Session }

func (r inline) Go(t Task) {
	if done := t(context.Background()); done != nil {
		done(r.s)
	}
}

// ID identifies the session in logs and streams.
func (s *Session) ID() string { return s.id }

// Store exposes the graph for read access.
func (s *Session) Store() *graph.Store { return s.store }

// Simulation exposes the integrator.
func (s *Session) Simulation() *simulation.Simulation { return s.sim }

// Camera exposes the viewport controller.
func (s *Session) Camera() *camera.Controller { return s.camera }

// History exposes the undo log.
func (s *Session) History() *history.History { return s.history }

// SetRunner replaces the task runner.
func (s *Session) SetRunner(r Runner) { s.runner = r }

// Config returns the active configuration.
func (s *Session) Config() Config { return s.cfg }

// Selected returns the selected node, if any.
func (s *Session) Selected() (*model.Node, bool) {
	if s.selected == nil {
		return nil, false
	}
	return s.store.Node(*s.selected)
}

// Primed reports whether the next submission adds a child of the
// selected node.
func (s *Session) Primed() bool { return s.primed }

// Ideas returns the suggestion set of a node.
func (s *Session) Ideas(id int64) (IdeaSet, bool) {
	set, ok := s.ideas[id]
	if !ok {
		return IdeaSet{}, false
	}
	return *set, true
}

// TakeChanges returns and clears the accumulated change flags.
func (s *Session) TakeChanges() Change {
	c := s.changes
	s.changes = 0
	return c
}

func (s *Session) touch(c Change) {
	s.changes |= c
}

// Reconfigure applies new tuning to the running session. Viewport size
// changes go through Resize.
func (s *Session) Reconfigure(cfg Config) {
	s.cfg.Placement = cfg.Placement
	s.cfg.Simulation = cfg.Simulation
	s.cfg.Camera = cfg.Camera
	s.cfg.HistoryCapacity = cfg.HistoryCapacity

	s.placer.SetConfig(cfg.Placement)
	s.sim.SetParams(cfg.Simulation)
	s.camera.SetConfig(cfg.Camera)
	s.history.Resize(cfg.HistoryCapacity)
	s.metrics.HistoryEntries.Set(float64(s.history.Len()))
}

// Tick advances the simulation one step if it is active.
func (s *Session) Tick() bool {
	start := time.Now()
	if !s.sim.Tick() {
		return false
	}
	s.metrics.RecordTick(s.sim.Alpha(), time.Since(start))
	return true
}

func (s *Session) reheat(alpha float64, cause string) {
	s.sim.Reheat(alpha)
	s.metrics.RecordReheat(cause)
}

func (s *Session) recordMutation(op string) {
	s.metrics.RecordMutation(op, s.store.Len(), len(s.store.Links()))
	s.metrics.HistoryEntries.Set(float64(s.history.Len()))
	s.touch(ChangeGraph)
}
