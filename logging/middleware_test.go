package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingMiddlewareCapturesStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest("GET", "/teapot?fill=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("Middleware altered status code: got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Middleware altered body: got %q", rec.Body.String())
	}

	line := buf.String()
	for _, want := range []string{"method=GET", "path=/teapot", "status_code=418", "bytes_written=15", "query=fill=1"} {
		if !strings.Contains(line, want) {
			t.Errorf("Log line missing %q: %s", want, line)
		}
	}
}

func TestLoggingMiddlewareOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	}

	lines := strings.Count(buf.String(), "\n")
	if lines != 3 {
		t.Errorf("Expected 3 log lines for 3 requests, got %d", lines)
	}
}

func TestPackageLevelHelpersDoNotPanicUninitialized(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Each helper must fall back to a console logger
	Info("info message", "k", "v")
	Warn("warn message")
	Error("error message")
	Debug("debug message")
}
