// Package web serves the HTTP API and event streams of a running session.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/metrics"
	"github.com/ritzau/mindmap-layout/pkg/pubsub"
	"github.com/ritzau/mindmap-layout/pkg/session"
)

// ShutdownTimeout bounds how long Serve waits for requests in flight.
const ShutdownTimeout = 5 * time.Second

// Server represents the web server
type Server struct {
	router    *mux.Router
	loop      *session.Loop
	publisher pubsub.Publisher
	metrics   *metrics.Registry
	validate  *validator.Validate
}

// NewServer creates a server driving loop. Events are streamed from
// publisher and instruments are recorded in reg.
func NewServer(loop *session.Loop, publisher pubsub.Publisher, reg *metrics.Registry) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		loop:      loop,
		publisher: publisher,
		metrics:   reg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware(s.metrics.RecordHTTPRequest, routeTemplate))

	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/input", s.handleInput).Methods(http.MethodPost)
	api.HandleFunc("/undo", s.handleUndo).Methods(http.MethodPost)
	api.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	api.HandleFunc("/viewport", s.handleResize).Methods(http.MethodPost)
	api.HandleFunc("/viewport/fit", s.handleFit).Methods(http.MethodPost)

	// Node routes - more specific routes must come first
	api.HandleFunc("/nodes", s.handleAddNode).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/ideas/{index:[0-9]+}", s.handleAcceptIdea).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/ideas", s.handleRequestIdeas).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/definition", s.handleRequestDefinition).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/drag", s.handleDrag).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/select", s.handleSelect).Methods(http.MethodPost)
	api.HandleFunc("/nodes/{id:[0-9]+}/text", s.handleEditText).Methods(http.MethodPut)
	api.HandleFunc("/nodes/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

// routeTemplate names a request by its matched route so that metrics
// labels stay bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !pubsub.KnownTopic(topic) {
		writeError(w, r, fmt.Errorf("unknown topic %q: %w", topic, errNotFound))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Close()

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "stream closed", "topic", topic, "error", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("web server listening", "url", "http://localhost"+addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logging.Info("web server stopped")
	return nil
}
