package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// captureLogs routes the default logger into a buffer of JSON lines for
// the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// lastEntry decodes the final log line in buf.
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func editorRouter(h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(Logger)
	r.Post("/api/editor/sessions/{id}/elements", h)
	return r
}

func TestLoggerRecordsRoutePattern(t *testing.T) {
	buf := captureLogs(t)
	h := editorRouter(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"el-1"}`))
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/editor/sessions/s-42/elements", nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rr.Code)
	}
	entry := lastEntry(t, buf)
	if entry["route"] != "/api/editor/sessions/{id}/elements" {
		t.Errorf("route: got %v", entry["route"])
	}
	if entry["path"] != "/api/editor/sessions/s-42/elements" {
		t.Errorf("path: got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status field: got %v", entry["status"])
	}
	if entry["bytes"] != float64(len(`{"id":"el-1"}`)) {
		t.Errorf("bytes field: got %v", entry["bytes"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level: got %v, want INFO", entry["level"])
	}
}

func TestLoggerServerErrorsAtErrorLevel(t *testing.T) {
	buf := captureLogs(t)
	h := editorRouter(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	})

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/editor/sessions/s-1/elements", nil))

	if got := lastEntry(t, buf)["level"]; got != "ERROR" {
		t.Errorf("level: got %v, want ERROR", got)
	}
}

func TestLoggerUnmatchedRoute(t *testing.T) {
	buf := captureLogs(t)
	h := Logger(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	entry := lastEntry(t, buf)
	if entry["route"] != "unmatched" {
		t.Errorf("route: got %v, want unmatched", entry["route"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status field: got %v", entry["status"])
	}
}

// ---------------------------------------------------------------------------
// responseWriter
// ---------------------------------------------------------------------------

func TestResponseWriterStatus(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *responseWriter)
		want  int
	}{
		{"body only", func(w *responseWriter) { w.Write([]byte("<table>")) }, http.StatusOK},
		{"explicit", func(w *responseWriter) { w.WriteHeader(http.StatusAccepted) }, http.StatusAccepted},
		{"first header wins", func(w *responseWriter) {
			w.WriteHeader(http.StatusNotFound)
			w.WriteHeader(http.StatusInternalServerError)
		}, http.StatusNotFound},
		{"header then body", func(w *responseWriter) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("ok"))
		}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
			tt.write(rw)
			if rw.statusCode != tt.want {
				t.Errorf("statusCode: got %d, want %d", rw.statusCode, tt.want)
			}
			if !rw.written {
				t.Error("written should be set")
			}
		})
	}
}

func TestResponseWriterCountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.Write([]byte("<tr>"))
	rw.Write([]byte("</tr>"))

	if rw.bytes != 9 {
		t.Errorf("bytes: got %d, want 9", rw.bytes)
	}
	if rw.Unwrap() != rec {
		t.Error("Unwrap should return the wrapped writer")
	}
}
