package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

// DefaultAnalyzeTimeout bounds one request when no timeout is configured.
const DefaultAnalyzeTimeout = 120 * time.Second

var errURLRequired = errors.New("the \"url\" field is required")

// Transport handles HTTP requests for page speed analysis.
type Transport struct {
	service *Service
	logger  *slog.Logger
	timeout time.Duration
}

// NewTransport creates an HTTP transport backed by the given service.
// A non-positive timeout selects DefaultAnalyzeTimeout.
func NewTransport(service *Service, logger *slog.Logger, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultAnalyzeTimeout
	}
	return &Transport{service: service, logger: logger, timeout: timeout}
}

// RegisterRoutes attaches the transport's handlers to the given mux.
func (t *Transport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", t.handleAnalyze)
	mux.HandleFunc("GET /healthz", t.handleHealth)
}

type analyzeRequest struct {
	URL      string      `json:"url"`
	RunCount int         `json:"run_count"`
	Flags    model.Flags `json:"flags"`
}

func (r analyzeRequest) validate() error {
	if r.URL == "" {
		return errURLRequired
	}
	return nil
}

func (t *Transport) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const maxRequestBody = 1 << 20 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.renderError(w, http.StatusBadRequest, errs.InvalidInput, "Invalid request body. Please send a JSON object with a \"url\" field.")
		return
	}

	if err := req.validate(); err != nil {
		t.renderError(w, http.StatusBadRequest, errs.InvalidInput, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), t.timeout)
	defer cancel()

	report, err := t.service.Analyze(ctx, model.AnalysisRequest{
		URL:      req.URL,
		RunCount: req.RunCount,
		Flags:    req.Flags,
	})
	if err != nil {
		t.handleServiceError(w, err)
		return
	}

	t.renderJSON(w, http.StatusOK, report)
}

func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	t.renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *Transport) handleServiceError(w http.ResponseWriter, err error) {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		t.renderError(w, statusFor(appErr.Kind), appErr.Kind, appErr.Message)
		return
	}

	t.renderError(w, http.StatusInternalServerError, errs.Unknown, "An unexpected error occurred.")
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.InvalidInput:
		return http.StatusBadRequest
	case errs.DNSFailure, errs.ConnectionRefused, errs.NetworkError:
		return http.StatusBadGateway
	case errs.Timeout:
		return http.StatusGatewayTimeout
	case errs.BackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (t *Transport) renderJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (t *Transport) renderError(w http.ResponseWriter, status int, kind errs.Kind, message string) {
	t.renderJSON(w, status, model.ErrorResponse{
		Error:      http.StatusText(status),
		StatusCode: status,
		Kind:       kind.String(),
		Message:    message,
	})
}
