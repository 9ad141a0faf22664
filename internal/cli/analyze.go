package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bahjat/page-speed-tool/internal/analyzer"
	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/pagespeed"
	"github.com/Bahjat/page-speed-tool/internal/platform/config"
)

type analyzeOptions struct {
	runs      int
	deep      bool
	mobile    bool
	browser   bool
	tech      bool
	allowPriv bool
	timeout   time.Duration
	pretty    bool
}

func newAnalyzeCommand(root *rootOptions, factory providerFactory) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one URL and print the report as JSON",
		Example: `  pagespeed analyze example.com
  pagespeed analyze https://example.com --runs 5 --deep
  pagespeed analyze example.com --mobile --browser --pretty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runs < 1 || opts.runs > pagespeed.MaxRunCount {
				return fmt.Errorf("--runs must be between 1 and %d", pagespeed.MaxRunCount)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.browser {
				cfg.BrowserEnabled = true
			}
			if opts.tech {
				cfg.FingerprintEnabled = true
			}
			if opts.allowPriv {
				cfg.BlockPrivateNetworks = false
			}

			log := root.logger(cfg, cmd.ErrOrStderr())
			svc := analyzer.NewService(factory(cfg, log), log)

			timeout := opts.timeout
			if timeout <= 0 {
				timeout = cfg.AnalyzeTimeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			report, err := svc.Analyze(ctx, model.AnalysisRequest{
				URL:      args[0],
				RunCount: opts.runs,
				Flags: model.Flags{
					MultiTest:    opts.runs > 1,
					DeepAnalysis: opts.deep,
					MobileTest:   opts.mobile,
					RealBrowser:  opts.browser,
				},
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if opts.pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(report)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.runs, "runs", "n", 1, fmt.Sprintf("number of sequential runs (1-%d)", pagespeed.MaxRunCount))
	f.BoolVar(&opts.deep, "deep", false, "include estimated vitals and caching headers")
	f.BoolVar(&opts.mobile, "mobile", false, "use a mobile user agent and viewport")
	f.BoolVar(&opts.browser, "browser", false, "measure the full load in headless Chrome, simulating when unavailable")
	f.BoolVar(&opts.tech, "tech", false, "fingerprint the technologies the page uses")
	f.BoolVar(&opts.allowPriv, "allow-private", false, "allow targets on loopback and private networks")
	f.DurationVar(&opts.timeout, "timeout", 0, "overall deadline for the analysis; defaults to ANALYZE_TIMEOUT")
	f.BoolVar(&opts.pretty, "pretty", false, "indent the JSON report")

	return cmd
}
