package analyzer

import (
	"context"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// SpeedProvider runs the probe pipeline for one analysis request.
type SpeedProvider interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error)
}
