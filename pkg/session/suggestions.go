package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/graph"
	"github.com/ritzau/mindmap-layout/pkg/history"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
)

func (s *Session) nextRequest() uint64 {
	s.requests++
	return s.requests
}

// RequestDefinition adds a definition node under parentID, selects it
// and asks the collaborator to fill it in. The node shows a placeholder
// until the reply lands; a reply for a node that is gone or has been
// asked again is dropped.
func (s *Session) RequestDefinition(parentID int64) (*model.Node, error) {
	parent, ok := s.store.Node(parentID)
	if !ok {
		return nil, fmt.Errorf("define %d: %w", parentID, graph.ErrNodeNotFound)
	}
	term := parent.Text

	n, err := s.store.AddNode(model.DefinitionTitle, copyID(&parentID), graph.AddOptions{
		Kind: model.Definition{Content: model.DefinitionPending},
	})
	if err != nil {
		return nil, err
	}
	s.history.Push(history.AddNode{NodeID: n.ID, ParentID: copyID(&parentID)})
	s.recordMutation("define")
	s.reheat(s.cfg.Simulation.Reheat, "add")
	s.Select(n.ID)

	token := s.nextRequest()
	n.Request = token
	id := n.ID
	client := s.suggest
	m := s.metrics

	s.runner.Go(func(ctx context.Context) func(*Session) {
		start := time.Now()
		content, err := suggest.Define(ctx, client, term)
		m.RecordSuggestion("definition", resultLabel(err), time.Since(start))
		if err != nil {
			logging.WarnContext(ctx, "definition failed", "node", id, "error", err)
			content = model.DefinitionUnavailable
		}
		return func(s *Session) { s.resolveDefinition(id, token, content) }
	})
	return n, nil
}

func (s *Session) resolveDefinition(id int64, token uint64, content string) {
	n, ok := s.store.Node(id)
	if !ok || n.Request != token {
		s.metrics.SuggestStaleTotal.Inc()
		logging.Debug("stale definition dropped", "node", id)
		return
	}
	n.Request = 0
	if err := s.store.SetDefinition(id, content); err != nil {
		logging.Warn("definition not applied", "node", id, "error", err)
		return
	}
	s.recordMutation("define")
	s.reheat(s.cfg.Simulation.Settle, "suggestion")
}

// RequestIdeas asks the collaborator for child ideas of a node. Asking
// again supersedes the earlier request.
func (s *Session) RequestIdeas(id int64) error {
	n, ok := s.store.Node(id)
	if !ok {
		return fmt.Errorf("ideas for %d: %w", id, graph.ErrNodeNotFound)
	}
	term := n.Text

	token := s.nextRequest()
	s.ideas[id] = &IdeaSet{Pending: true, request: token}
	s.touch(ChangeGraph)

	client := s.suggest
	m := s.metrics
	s.runner.Go(func(ctx context.Context) func(*Session) {
		start := time.Now()
		ideas, err := suggest.Ideas(ctx, client, term)
		m.RecordSuggestion("ideas", resultLabel(err), time.Since(start))
		if err != nil {
			logging.WarnContext(ctx, "ideas failed", "node", id, "error", err)
		}
		return func(s *Session) { s.resolveIdeas(id, token, ideas, err) }
	})
	return nil
}

func (s *Session) resolveIdeas(id int64, token uint64, ideas []string, err error) {
	set, ok := s.ideas[id]
	if !ok || set.request != token {
		s.metrics.SuggestStaleTotal.Inc()
		logging.Debug("stale ideas dropped", "node", id)
		return
	}
	set.Pending = false
	if err != nil {
		set.Err = err.Error()
	} else {
		set.Ideas = ideas
	}
	s.touch(ChangeGraph)
}

// AcceptIdea turns one offered idea into a child of id and selects it.
func (s *Session) AcceptIdea(id int64, index int) (*model.Node, error) {
	set, ok := s.ideas[id]
	if !ok || index < 0 || index >= len(set.Ideas) {
		return nil, fmt.Errorf("idea %d of node %d: %w", index, id, ErrNoIdea)
	}
	text := set.Ideas[index]

	n, err := s.store.AddNode(text, copyID(&id), graph.AddOptions{})
	if err != nil {
		return nil, err
	}
	delete(s.ideas, id)
	s.history.Push(history.AddNode{NodeID: n.ID, ParentID: copyID(&id)})
	s.recordMutation("add")
	s.reheat(s.cfg.Simulation.Reheat, "add")
	s.Select(n.ID)
	return n, nil
}

// DismissIdeas drops the suggestions of a node. A reply still in flight
// will be discarded.
func (s *Session) DismissIdeas(id int64) {
	if _, ok := s.ideas[id]; ok {
		delete(s.ideas, id)
		s.touch(ChangeGraph)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, suggest.ErrMalformed):
		return "malformed"
	default:
		return "error"
	}
}
