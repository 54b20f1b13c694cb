package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"techday/internal/adapters/http/perf"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 200 * time.Millisecond

const routeContextKey contextKey = "route"

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter atomic.Uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// routeLabel is filled in by the matched handler so the sample is keyed by
// pattern ("PUT /api/admin/sponsors/{id}") rather than by raw path.
type routeLabel struct {
	pattern string
}

// LabelRoute records the matched mux pattern for Timing.
// Call it from inside the handler, where r.Pattern is set.
func LabelRoute(r *http.Request) {
	if l, ok := r.Context().Value(routeContextKey).(*routeLabel); ok {
		l.pattern = r.Pattern
	}
}

// Timing logs request duration and records it in collector when non-nil.
// Normal requests log at DEBUG; requests slower than slow log at WARN.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestIDCounter.Add(1)
			label := &routeLabel{}
			r = r.WithContext(context.WithValue(r.Context(), routeContextKey, label))

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				route := label.pattern
				if route == "" {
					route = r.Method + " (unmatched)"
				}
				level := slog.LevelDebug
				msg := "request"
				if elapsed >= slow {
					level = slog.LevelWarn
					msg = "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", sw.status,
					"duration_ms", float64(elapsed.Microseconds())/1000.0,
				)
				if collector != nil {
					collector.Record(perf.Sample{
						Route:      route,
						Status:     sw.status,
						DurationMs: float64(elapsed.Microseconds()) / 1000.0,
						At:         start,
					})
				}
				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
