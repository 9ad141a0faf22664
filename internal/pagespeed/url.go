package pagespeed

import (
	"net"
	"net/url"
	"strings"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

// MaxRunCount bounds the number of runs in one request.
const MaxRunCount = 10

const invalidURLMessage = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."

// NormalizeURL trims the input and prefixes https:// when it carries no
// http:// or https:// scheme. It is idempotent; empty input stays empty.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	return raw
}

// ExtractHost returns the bare hostname of a normalized URL, without port.
func ExtractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if h := u.Hostname(); h != "" {
		return h
	}
	if host, _, err := net.SplitHostPort(u.Host); err == nil {
		return host
	}
	return u.Host
}

// NormalizeRequest validates req and returns a copy with a normalized URL
// and a run count of at least one. Without MultiTest the run count is one.
func NormalizeRequest(req model.AnalysisRequest) (model.AnalysisRequest, error) {
	req.URL = NormalizeURL(req.URL)
	if req.URL == "" {
		return req, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Please enter a URL.",
		}
	}

	parsed, err := url.Parse(req.URL)
	if err != nil {
		return req, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
			Cause:   err,
		}
	}
	if parsed.Host == "" {
		return req, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
		}
	}

	switch {
	case !req.Flags.MultiTest || req.RunCount < 1:
		req.RunCount = 1
	case req.RunCount > MaxRunCount:
		req.RunCount = MaxRunCount
	}

	return req, nil
}
