// Package app assembles the probe engine from configuration.
package app

import (
	"log/slog"

	"github.com/Bahjat/page-speed-tool/internal/pagespeed"
	"github.com/Bahjat/page-speed-tool/internal/platform/config"
)

// NewEngine builds an Engine from cfg. The browser backend and the
// technology detector are optional: when either cannot be set up the
// engine runs without it and the reason is logged.
func NewEngine(cfg config.Config, log *slog.Logger, rec pagespeed.Recorder) *pagespeed.Engine {
	fetcher := pagespeed.NewHTTPClient(pagespeed.ClientOptions{
		Timeout:              cfg.FetchTimeout,
		MaxBodyBytes:         cfg.MaxBodyBytes,
		BlockPrivateNetworks: cfg.BlockPrivateNetworks,
	})

	opts := []pagespeed.Option{}
	if rec != nil {
		opts = append(opts, pagespeed.WithRecorder(rec))
	}

	if cfg.BrowserEnabled {
		browser := pagespeed.NewBrowserBackend(pagespeed.BrowserOptions{ExecPath: cfg.ChromePath})
		if err := browser.Available(); err != nil {
			log.Warn("browser backend unavailable", "error", err)
		}
		// Kept even when unavailable so each run reports why it fell back.
		opts = append(opts, pagespeed.WithBrowser(browser))
	}

	if cfg.FingerprintEnabled {
		detector, err := pagespeed.NewWappalyzerDetector()
		if err != nil {
			log.Warn("technology detection disabled", "error", err)
		} else {
			opts = append(opts, pagespeed.WithTechDetector(detector))
		}
	}

	return pagespeed.NewEngine(fetcher, opts...)
}
