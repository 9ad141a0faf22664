package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
	"github.com/Bahjat/page-speed-tool/internal/platform/requestid"
)

// Service orchestrates a SpeedProvider and logs results.
type Service struct {
	provider SpeedProvider
	logger   *slog.Logger
}

// NewService creates a Service backed by the given provider.
func NewService(provider SpeedProvider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	logger := s.logger.With(
		"url", req.URL,
		"run_count", req.RunCount,
		"request_id", requestid.FromContext(ctx),
	)

	report, err := s.provider.Analyze(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && errs.KindOf(err) != errs.Timeout {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: "Analysis timed out. The target URL may be slow to respond.",
				Cause:   err,
			}
		}

		attrs := []any{"error", err, "kind", errs.KindOf(err).String()}
		var appErr *errs.AppError
		if errors.As(err, &appErr) && appErr.UpstreamStatus != 0 {
			attrs = append(attrs, "target_status", appErr.UpstreamStatus)
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	var fallbacks []string
	for _, run := range report.Runs {
		if run.Load.FallbackReason != nil {
			fallbacks = append(fallbacks, *run.Load.FallbackReason)
		}
	}

	attrs := []any{
		"runs", len(report.Runs),
		"duration", report.Duration,
	}
	if len(fallbacks) > 0 {
		attrs = append(attrs, "browser_fallbacks", fallbacks)
	}
	if report.Summary != nil {
		attrs = append(attrs, "avg_response_time_ms", report.Summary.AvgResponseTimeMs)
	} else if len(report.Runs) == 1 {
		attrs = append(attrs,
			"response_time_ms", report.Runs[0].Fetch.ElapsedMs,
			"score", report.Runs[0].Verdict.Score,
		)
	}
	logger.Info("analysis complete", attrs...)
	return report, nil
}
