package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	if reg.RequestsTotal == nil || reg.RequestDuration == nil || reg.ComputeInFlight == nil {
		t.Fatal("NewRegistry() returned nil collectors")
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	duplicate := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	if err := reg.Register(duplicate); err == nil {
		t.Error("Expected error when registering a duplicate metric name, got nil")
	}
}

func TestSerializeEmptyRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	// No observations yet, serialization must still succeed
	if _, err := reg.Serialize(); err != nil {
		t.Errorf("Serialize() on fresh registry failed: %v", err)
	}
}

func TestSerializeIdempotent(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	reg.RequestsTotal.WithLabelValues("GET", "/", "200").Inc()
	reg.RequestDuration.WithLabelValues("GET", "/", "200").Observe(0.042)
	reg.ComputeInFlight.Inc()

	first, err := reg.Serialize()
	if err != nil {
		t.Fatalf("First Serialize() failed: %v", err)
	}
	second, err := reg.Serialize()
	if err != nil {
		t.Fatalf("Second Serialize() failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("Serialize() is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestSerializeFormat(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	reg.RequestsTotal.WithLabelValues("GET", "/cpu", "200").Inc()
	reg.RequestsTotal.WithLabelValues("GET", "/cpu", "200").Inc()

	out, err := reg.Serialize()
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# HELP http_requests_total Total HTTP requests",
		"# TYPE http_requests_total counter",
		`http_requests_total{method="GET",route="/cpu",status="200"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Serialized output missing %q:\n%s", want, text)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	// 0.03s lands above the 0.025 bound and below 0.05
	reg.RequestDuration.WithLabelValues("GET", "/user", "200").Observe(0.03)

	out, err := reg.Serialize()
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}
	text := string(out)

	tests := []struct {
		le   string
		want string
	}{
		{"0.001", "0"},
		{"0.005", "0"},
		{"0.01", "0"},
		{"0.025", "0"},
		{"0.05", "1"},
		{"0.1", "1"},
		{"1", "1"},
		{"10", "1"},
		{"+Inf", "1"},
	}

	for _, tt := range tests {
		line := `http_request_duration_seconds_bucket{method="GET",route="/user",status="200",le="` + tt.le + `"} ` + tt.want
		if !strings.Contains(text, line) {
			t.Errorf("Expected bucket line %q in output:\n%s", line, text)
		}
	}

	if !strings.Contains(text, `http_request_duration_seconds_count{method="GET",route="/user",status="200"} 1`) {
		t.Errorf("Expected histogram count of 1 in output:\n%s", text)
	}
}

func TestContentType(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	ct := reg.ContentType()
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text exposition content type, got %q", ct)
	}
	if !strings.Contains(ct, "version=") {
		t.Errorf("Expected versioned exposition content type, got %q", ct)
	}
}
