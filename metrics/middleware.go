package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument records one counter increment and one histogram observation per
// completed request, labeled with {method, route, status}. The route label is
// the chi route pattern when the request matched a route. For unmatched
// requests the label depends on rawPathFallback: true uses the raw URL path,
// which is unbounded label cardinality under dynamic paths; false collapses
// them into "unmatched".
func Instrument(reg *Registry, rawPathFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			if route == "" {
				if rawPathFallback {
					route = r.URL.Path
				} else {
					route = "unmatched"
				}
			}

			status := fmt.Sprintf("%d", wrapped.statusCode)

			reg.RequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			reg.RequestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
		})
	}
}
