package pagespeed

import (
	"context"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// Fallback reasons reported when the browser backend cannot measure a run.
const (
	ReasonBrowserDisabled     = "browser_disabled"
	ReasonBrowserNotInstalled = "browser_not_installed"
	ReasonBrowserLaunchFailed = "browser_launch_failed"
	ReasonNavigationFailed    = "navigation_failed"
)

// LoadInput is what a load backend may use to measure one run.
type LoadInput struct {
	URL            string
	Mobile         bool
	Body           string
	BaseResponseMs float64
}

// LoadBackend measures or estimates the full page load of one run.
// Implementations never fail: an unusable backend returns a zeroed
// estimate with FallbackReason set.
type LoadBackend interface {
	Measure(ctx context.Context, in LoadInput) model.LoadEstimate
}

func unavailableEstimate(reason string) model.LoadEstimate {
	return model.LoadEstimate{
		FallbackReason: &reason,
		Source:         model.LoadSourceBrowser,
	}
}
