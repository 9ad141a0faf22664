package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bahjat/page-speed-tool/internal/platform/requestid"
)

type observation struct {
	path   string
	status int
}

type recordingObserver struct{ seen []observation }

func (o *recordingObserver) ObserveHTTP(path string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{path, status})
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a UUID", seen)
	}
	if got := rec.Header().Get(requestid.Header); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "valid", incoming: "edge-42", reused: true},
		{name: "spaces", incoming: "not valid", reused: false},
		{name: "too long", incoming: strings.Repeat("x", requestid.MaxLength+1), reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestid.Header, tt.incoming)
			h.ServeHTTP(httptest.NewRecorder(), req)

			if (seen == tt.incoming) != tt.reused {
				t.Errorf("id = %q, reused = %v, want %v", seen, seen == tt.incoming, tt.reused)
			}
		})
	}
}

func TestLogging_RecordsStatusAndRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	obs := &recordingObserver{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = w.Write([]byte(`{"error":"Gateway Timeout"}`))
	})
	h := RequestID(Logging(logger, obs)(mux))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/analyze", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	want := []observation{{"POST /analyze", http.StatusGatewayTimeout}, {"unmatched", http.StatusNotFound}}
	if len(obs.seen) != len(want) {
		t.Fatalf("observations = %+v, want %+v", obs.seen, want)
	}
	for i := range want {
		if obs.seen[i] != want[i] {
			t.Errorf("observation[%d] = %+v, want %+v", i, obs.seen[i], want[i])
		}
	}

	var first map[string]any
	line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	if err := json.Unmarshal(line, &first); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if first["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", first["level"])
	}
	if first["bytes"] != float64(len(`{"error":"Gateway Timeout"}`)) {
		t.Errorf("bytes = %v", first["bytes"])
	}
	if id, _ := first["request_id"].(string); id == "" {
		t.Error("request_id missing from log line")
	}
}

func TestLogging_NilObserver(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	h := Logging(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
