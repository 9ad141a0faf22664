// Package cli implements the pagespeed command line.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bahjat/page-speed-tool/internal/analyzer"
	"github.com/Bahjat/page-speed-tool/internal/app"
	"github.com/Bahjat/page-speed-tool/internal/platform/config"
	"github.com/Bahjat/page-speed-tool/internal/platform/logger"
)

// providerFactory builds the analysis provider once flags are parsed.
type providerFactory func(cfg config.Config, log *slog.Logger) analyzer.SpeedProvider

func defaultProvider(cfg config.Config, log *slog.Logger) analyzer.SpeedProvider {
	return app.NewEngine(cfg, log, nil)
}

type rootOptions struct {
	logLevel string
	verbose  bool
}

// NewRootCommand returns the pagespeed command tree writing reports to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(out, os.Stderr, defaultProvider)
}

func newRootCommand(out, errOut io.Writer, factory providerFactory) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "pagespeed",
		Short: "Probe website loading performance",
		Long: `pagespeed fetches a URL one or more times, times each fetch, and
reports response timing, content structure, security headers, caching,
an estimated full page load and a 0-100 performance score.

Configuration is read from the environment (FETCH_TIMEOUT, MAX_BODY_BYTES,
BLOCK_PRIVATE_NETWORKS, BROWSER_ENABLED, CHROME_PATH, FINGERPRINT_ENABLED);
flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR); defaults to LOG_LEVEL")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level DEBUG")

	root.AddCommand(newAnalyzeCommand(opts, factory))
	return root
}

func (o *rootOptions) logger(cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.verbose {
		level = "DEBUG"
	}
	return logger.New(level, logger.WithOutput(w), logger.WithFormat(logger.Text), logger.WithoutSource())
}
