package logging

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestObserver receives the outcome of every request handled by the
// middleware. The route is the matched template when known.
type RequestObserver func(method, route string, status int, elapsed time.Duration)

// RequestIDMiddleware tags each request with an id, logs it and reports
// its outcome to observe (which may be nil).
func RequestIDMiddleware(observe RequestObserver, route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := WithRequestID(r.Context(), requestID)
			r = r.WithContext(ctx)
			w.Header().Set("X-Request-ID", requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
			)

			next.ServeHTTP(wrapped, r)

			elapsed := time.Since(start)
			if wrapped.statusCode >= 400 {
				WarnContext(ctx, "request failed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", wrapped.statusCode,
					"durationMs", elapsed.Milliseconds(),
				)
			} else {
				InfoContext(ctx, "request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", wrapped.statusCode,
					"durationMs", elapsed.Milliseconds(),
				)
			}

			if observe != nil {
				name := r.URL.Path
				if route != nil {
					name = route(r)
				}
				observe(r.Method, name, wrapped.statusCode, elapsed)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher for SSE support
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
