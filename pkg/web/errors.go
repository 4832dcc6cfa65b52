package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ritzau/mindmap-layout/pkg/graph"
	"github.com/ritzau/mindmap-layout/pkg/history"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/pubsub"
	"github.com/ritzau/mindmap-layout/pkg/session"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

type errorResponse struct {
	Error string `json:"error"`
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(err)
	}
	return s.validate.Struct(v)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, graph.ErrNodeNotFound),
		errors.Is(err, session.ErrNoIdea),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, history.ErrEmpty),
		errors.Is(err, history.ErrIrreversible),
		errors.Is(err, session.ErrNoSelection):
		return http.StatusConflict
	case errors.As(err, &verr),
		errors.Is(err, session.ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed),
		errors.Is(err, pubsub.ErrClosed),
		errors.Is(err, suggest.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request error", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("response not written", "error", err)
	}
}
