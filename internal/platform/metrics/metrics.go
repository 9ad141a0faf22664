package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records probe activity as Prometheus metrics.
type Collector struct {
	runsTotal      *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	contentBytes   prometheus.Histogram
	fallbacksTotal *prometheus.CounterVec
	analysesTotal  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewCollector registers the probe metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagespeed_runs_total",
				Help: "Total number of probe runs by outcome.",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagespeed_fetch_duration_seconds",
				Help:    "Wall-clock duration of the timed fetch.",
				Buckets: []float64{0.1, 0.2, 0.5, 1, 2, 3, 5, 10},
			},
		),
		contentBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagespeed_content_bytes",
				Help:    "Decoded response body size in bytes.",
				Buckets: prometheus.ExponentialBuckets(1<<10, 4, 8),
			},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagespeed_browser_fallbacks_total",
				Help: "Runs where the browser backend fell back to simulation, by reason.",
			},
			[]string{"reason"},
		),
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagespeed_analyses_total",
				Help: "Total number of analysis requests by outcome.",
			},
			[]string{"outcome"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagespeed_http_requests_total",
				Help: "API requests served, by path and status code.",
			},
			[]string{"path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pagespeed_http_request_duration_seconds",
				Help:    "API request latency by path.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"path"},
		),
	}
}

// ObserveRun records one completed or failed run.
func (c *Collector) ObserveRun(elapsed time.Duration, contentSize int64, err error) {
	if err != nil {
		c.runsTotal.WithLabelValues("error").Inc()
		return
	}
	c.runsTotal.WithLabelValues("ok").Inc()
	c.fetchDuration.Observe(elapsed.Seconds())
	c.contentBytes.Observe(float64(contentSize))
}

// ObserveFallback records a browser-to-simulation substitution.
func (c *Collector) ObserveFallback(reason string) {
	c.fallbacksTotal.WithLabelValues(reason).Inc()
}

// ObserveAnalysis records the outcome of a whole multi-run request.
func (c *Collector) ObserveAnalysis(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.analysesTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served API request.
func (c *Collector) ObserveHTTP(path string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
