package pagespeed

import (
	"context"
	"regexp"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// Per-resource costs used by SimulatedEstimator, in milliseconds.
const (
	cssCostMs      = 50
	jsCostMs       = 100
	imageCostMs    = 200
	networkDelayMs = 50
)

var (
	linkTagRe       = regexp.MustCompile(`(?i)<link\b[^>]*>`)
	stylesheetRelRe = regexp.MustCompile(`(?i)\brel\s*=\s*["']?stylesheet\b`)
	hrefAttrRe      = regexp.MustCompile(`(?i)\bhref\s*=\s*["'][^"']+["']`)
	scriptSrcRe     = regexp.MustCompile(`(?i)<script[^>]+src=["'][^"']+["']`)
	imageSrcRe      = regexp.MustCompile(`(?i)<img[^>]+src=["'][^"']+["']`)
)

// SimulatedEstimator approximates the full page load without a browser.
//
// The result is NOT a measurement. It is the base fetch time plus a fixed
// cost per referenced resource (50 ms per stylesheet, 100 ms per external
// script, 200 ms per image) and a flat 50 ms network delay. It is
// deterministic and explainable, and should be read as an order-of-magnitude
// hint only.
type SimulatedEstimator struct{}

// Measure implements LoadBackend.
func (SimulatedEstimator) Measure(_ context.Context, in LoadInput) model.LoadEstimate {
	return EstimateLoad(in.Body, in.BaseResponseMs)
}

// EstimateLoad counts stylesheet links, external scripts and images in body
// and applies the fixed resource costs on top of baseResponseMs.
func EstimateLoad(body string, baseResponseMs float64) model.LoadEstimate {
	var css int
	for _, tag := range linkTagRe.FindAllString(body, -1) {
		if stylesheetRelRe.MatchString(tag) && hrefAttrRe.MatchString(tag) {
			css++
		}
	}
	js := count(scriptSrcRe, body)
	images := count(imageSrcRe, body)

	additional := float64(css*cssCostMs + js*jsCostMs + images*imageCostMs)

	return model.LoadEstimate{
		TotalLoadTimeMs:  round2(baseResponseMs + additional + networkDelayMs),
		CSSFiles:         css,
		JSFiles:          js,
		Images:           images,
		AdditionalTimeMs: round2(additional),
		Source:           model.LoadSourceSimulated,
	}
}
