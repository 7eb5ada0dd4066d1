// Package handlers provides HTTP request handlers for the monitoring demo
// endpoints and the Prometheus exposition endpoint. Handlers receive their
// dependencies (metrics registry, stats container) as constructor arguments.
package handlers

import (
	"net/http"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/praaatap/monitoring-prometheus-grafana/logging"
	"github.com/praaatap/monitoring-prometheus-grafana/metrics"
	"github.com/praaatap/monitoring-prometheus-grafana/sysstats"
)

// DefaultComputeDelay is how long /compute simulates work before responding
const DefaultComputeDelay = 5 * time.Second

// Home serves the root greeting
func Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Hello, Prometheus + Grafana!",
		})
	}
}

// User greets the caller by name, defaulting to "Guest". The name is
// NFC-normalized so composed and decomposed unicode spellings produce the
// same greeting.
func User() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "Guest"
		}
		name = norm.NFC.String(name)

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Hello, " + name,
		})
	}
}

// CPUStats serves the latest sampled CPU usage snapshot
func CPUStats(stats *sysstats.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := stats.GetSnapshot()

		respondWithJSON(w, http.StatusOK, map[string]any{
			"cpu_percent":     snapshot.CPUPercent,
			"num_cpu":         snapshot.NumCPU,
			"gomaxprocs":      snapshot.GOMAXPROCS,
			"num_goroutine":   snapshot.NumGoroutine,
			"gc_cpu_fraction": snapshot.GCCPUFraction,
			"sampled_at":      snapshot.SampledAt,
			"uptime_seconds":  stats.Uptime().Seconds(),
		})
	}
}

// Compute simulates a long computation: after delay it responds with a memory
// usage snapshot. The in-flight gauge is incremented on entry and decremented
// exactly once on exit, whether the timer fires or the client disconnects
// first. The select races the two completion sources so only one path runs.
func Compute(reg *metrics.Registry, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg.ComputeInFlight.Inc()
		defer reg.ComputeInFlight.Dec()

		start := time.Now()
		timer := time.NewTimer(delay)
		// Stop after fire is a no-op
		defer timer.Stop()

		select {
		case <-timer.C:
			respondWithJSON(w, http.StatusOK, sysstats.ReadMemoryUsage())
		case <-r.Context().Done():
			logging.Info("Compute request cancelled by client",
				"remote_addr", r.RemoteAddr,
				"waited_ms", time.Since(start).Milliseconds(),
			)
		}
	}
}

// Metrics serves the registry in the Prometheus text exposition format
func Metrics(reg *metrics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := reg.Serialize()
		if err != nil {
			logging.Error("Failed to serialize metrics", "error", err)
			http.Error(w, "failed to serialize metrics: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", reg.ContentType())
		w.Write(out)
	}
}

// NotFound serves a JSON 404 for unmatched routes
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Resource not found")
	}
}

// MethodNotAllowed serves a JSON 405 for matched routes with the wrong method
func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
