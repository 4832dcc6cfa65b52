package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ritzau/mindmap-layout/pkg/model"
	"github.com/ritzau/mindmap-layout/pkg/session"
	"gonum.org/v1/gonum/spatial/r2"
)

type inputRequest struct {
	Text    string `json:"text" validate:"required"`
	AsChild bool   `json:"asChild"`
}

type addNodeRequest struct {
	Text     string `json:"text" validate:"required"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gte=0"`
}

type textRequest struct {
	Text string `json:"text" validate:"required"`
}

type dragRequest struct {
	Phase string  `json:"phase" validate:"required,oneof=start move end"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type viewportRequest struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// mutationResponse is returned by every command: the ids it touched and
// the state right after it ran.
type mutationResponse struct {
	Nodes  []int64          `json:"nodes,omitempty"`
	Undone string           `json:"undone,omitempty"`
	State  session.Snapshot `json:"state"`
}

// command runs fn on the session loop and responds with the result.
func (s *Server) command(w http.ResponseWriter, r *http.Request, status int, fn func(*session.Session) (mutationResponse, error)) {
	var resp mutationResponse
	err := s.loop.Do(r.Context(), func(sess *session.Session) error {
		var err error
		resp, err = fn(sess)
		if err != nil {
			return err
		}
		resp.State = sess.Snapshot()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, resp)
}

func ids(nodes []*model.Node) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap session.Snapshot
	err := s.loop.Do(r.Context(), func(sess *session.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.command(w, r, http.StatusCreated, func(sess *session.Session) (mutationResponse, error) {
		nodes, err := sess.Submit(req.Text, req.AsChild)
		return mutationResponse{Nodes: ids(nodes)}, err
	})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.command(w, r, http.StatusCreated, func(sess *session.Session) (mutationResponse, error) {
		n, err := sess.AddNode(req.Text, req.ParentID)
		if err != nil {
			return mutationResponse{}, err
		}
		return mutationResponse{Nodes: []int64{n.ID}}, nil
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		removed, err := sess.Delete(id)
		return mutationResponse{Nodes: removed}, err
	})
}

func (s *Server) handleEditText(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	var req textRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		return mutationResponse{Nodes: []int64{id}}, sess.EditText(id, req.Text)
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		return mutationResponse{Nodes: []int64{id}}, sess.Select(id)
	})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	var req dragRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		err := sess.Drag(id, session.DragPhase(req.Phase), r2.Vec{X: req.X, Y: req.Y})
		return mutationResponse{Nodes: []int64{id}}, err
	})
}

func (s *Server) handleRequestDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	s.command(w, r, http.StatusAccepted, func(sess *session.Session) (mutationResponse, error) {
		n, err := sess.RequestDefinition(id)
		if err != nil {
			return mutationResponse{}, err
		}
		return mutationResponse{Nodes: []int64{n.ID}}, nil
	})
}

func (s *Server) handleRequestIdeas(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	s.command(w, r, http.StatusAccepted, func(sess *session.Session) (mutationResponse, error) {
		return mutationResponse{Nodes: []int64{id}}, sess.RequestIdeas(id)
	})
}

func (s *Server) handleAcceptIdea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	s.command(w, r, http.StatusCreated, func(sess *session.Session) (mutationResponse, error) {
		n, err := sess.AcceptIdea(id, index)
		if err != nil {
			return mutationResponse{}, err
		}
		return mutationResponse{Nodes: []int64{n.ID}}, nil
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		e, err := sess.Undo()
		if err != nil {
			return mutationResponse{}, err
		}
		return mutationResponse{Undone: e.String()}, nil
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		sess.Resize(req.Width, req.Height)
		return mutationResponse{}, nil
	})
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		sess.FitView()
		return mutationResponse{}, nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, http.StatusOK, func(sess *session.Session) (mutationResponse, error) {
		sess.Reset()
		return mutationResponse{}, nil
	})
}
