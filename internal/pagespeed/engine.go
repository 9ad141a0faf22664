package pagespeed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

// dnsProber times a host resolution; nil means it failed.
type dnsProber interface {
	Probe(ctx context.Context, host string) *float64
}

// Recorder receives probe activity, typically for metrics.
type Recorder interface {
	ObserveRun(elapsed time.Duration, contentSize int64, err error)
	ObserveFallback(reason string)
	ObserveAnalysis(err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(time.Duration, int64, error) {}
func (nopRecorder) ObserveFallback(string)                 {}
func (nopRecorder) ObserveAnalysis(error)                  {}

// Option configures an Engine.
type Option func(*Engine)

// WithBrowser sets the backend used for runs that request a real browser.
// Without one, such runs fall back to simulation.
func WithBrowser(b LoadBackend) Option {
	return func(e *Engine) { e.browser = b }
}

// WithTechDetector enables technology fingerprinting of each response.
func WithTechDetector(d TechDetector) Option {
	return func(e *Engine) { e.tech = d }
}

// WithRecorder sets the activity recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithDNSProber replaces the default resolver-backed DNS probe.
func WithDNSProber(p dnsProber) Option {
	return func(e *Engine) { e.dns = p }
}

// Engine runs the probe pipeline for analysis requests.
type Engine struct {
	fetcher   Fetcher
	dns       dnsProber
	browser   LoadBackend
	simulator LoadBackend
	tech      TechDetector
	recorder  Recorder
	now       func() time.Time
}

// NewEngine returns an Engine backed by the given Fetcher.
func NewEngine(fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		dns:       NewDNSProber(),
		simulator: SimulatedEstimator{},
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze executes the requested runs one after another. Runs never
// overlap, so each one has the network to itself. The first failed fetch
// aborts the request and discards the runs completed before it.
func (e *Engine) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		e.recorder.ObserveAnalysis(err)
		return nil, err
	}

	started := e.now()
	runs := make([]model.RunResult, 0, req.RunCount)

	for i := 1; i <= req.RunCount; i++ {
		run, err := e.runOnce(ctx, req, i)
		if err != nil {
			e.recorder.ObserveAnalysis(err)
			return nil, fmt.Errorf("run %d of %d: %w", i, req.RunCount, err)
		}
		runs = append(runs, run)
	}

	report := &model.AnalysisReport{
		URL:       req.URL,
		Flags:     req.Flags,
		RunCount:  req.RunCount,
		Runs:      runs,
		StartedAt: started,
		Duration:  e.now().Sub(started),
	}
	if len(runs) > 1 {
		summary := Summarize(runs)
		report.Summary = &summary
	}

	e.recorder.ObserveAnalysis(nil)
	return report, nil
}

func (e *Engine) runOnce(ctx context.Context, req model.AnalysisRequest, index int) (model.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return model.RunResult{}, &errs.AppError{
			Kind:    errs.Timeout,
			Message: "Analysis timed out. The target URL may be slow to respond.",
			Cause:   err,
		}
	}

	dns := e.dns.Probe(ctx, ExtractHost(req.URL))

	fetched, err := e.fetcher.Fetch(ctx, req.URL, RequestHeaders(req.Flags.MobileTest))
	if err != nil {
		e.recorder.ObserveRun(0, 0, err)
		return model.RunResult{}, err
	}
	fetch := *fetched
	fetch.DNSLookupMs = dns
	e.recorder.ObserveRun(time.Duration(fetch.ElapsedMs*float64(time.Millisecond)), fetch.ContentSize, nil)

	headers := fetch.Headers
	contentType := headers.Get("Content-Type")
	content := AnalyzeContent(contentType, fetch.BodyText)

	result := model.RunResult{
		Run:         index,
		URL:         req.URL,
		Flags:       req.Flags,
		Fetch:       fetch,
		ContentType: valueOr(contentType, "Unknown"),
		Server:      valueOr(headers.Get("Server"), "Unknown"),
		Compression: valueOr(headers.Get("Content-Encoding"), "none"),
		CDN:         DetectCDN(headers),
		Content:     content,
		Load:        e.measureLoad(ctx, req, &fetch),
		DOMReadyMs:  DOMReadyMs(fetch.ElapsedMs, fetch.ContentSize),
		Security:    AnalyzeSecurity(headers),
		Verdict:     Score(fetch.ElapsedMs, fetch.ContentSize, headers),
		Speed:       RateSpeed(fetch.ElapsedMs),
		Insights:    Insights(fetch.ElapsedMs, fetch.ContentSize, fetch.StatusCode),
	}
	if content.HTML {
		result.Meta = ParseMeta(fetch.BodyText)
	}
	if e.tech != nil {
		result.Technologies = e.tech.Detect(headers, fetch.Body)
	}
	if req.Flags.DeepAnalysis {
		vitals := SynthesizeVitals(&fetch)
		result.Vitals = &vitals
		result.Caching = cacheDetails(headers)
	}

	return result, nil
}

// measureLoad asks the browser backend when the request wants one and
// substitutes the simulated estimate, keeping the reason, whenever the
// browser cannot measure.
func (e *Engine) measureLoad(ctx context.Context, req model.AnalysisRequest, fetch *model.FetchOutcome) model.LoadEstimate {
	in := LoadInput{
		URL:            req.URL,
		Mobile:         req.Flags.MobileTest,
		Body:           fetch.BodyText,
		BaseResponseMs: fetch.ElapsedMs,
	}

	if !req.Flags.RealBrowser {
		return e.simulator.Measure(ctx, in)
	}

	est := unavailableEstimate(ReasonBrowserDisabled)
	if e.browser != nil {
		est = e.browser.Measure(ctx, in)
	}
	if est.FallbackReason == nil {
		return est
	}

	e.recorder.ObserveFallback(*est.FallbackReason)
	simulated := e.simulator.Measure(ctx, in)
	simulated.FallbackReason = est.FallbackReason
	return simulated
}

// Summarize averages response time and content size across runs.
func Summarize(runs []model.RunResult) model.Summary {
	if len(runs) == 0 {
		return model.Summary{}
	}

	var totalTime, totalSize float64
	minTime, maxTime := runs[0].Fetch.ElapsedMs, runs[0].Fetch.ElapsedMs
	for _, r := range runs {
		totalTime += r.Fetch.ElapsedMs
		totalSize += float64(r.Fetch.ContentSize)
		minTime = min(minTime, r.Fetch.ElapsedMs)
		maxTime = max(maxTime, r.Fetch.ElapsedMs)
	}

	n := float64(len(runs))
	return model.Summary{
		AvgResponseTimeMs: round2(totalTime / n),
		AvgContentSize:    round2(totalSize / n),
		MinResponseTimeMs: minTime,
		MaxResponseTimeMs: maxTime,
	}
}

func cacheDetails(h http.Header) *model.CacheDetails {
	return &model.CacheDetails{
		CacheControl: valueOr(h.Get("Cache-Control"), "None"),
		Expires:      valueOr(h.Get("Expires"), "None"),
		LastModified: valueOr(h.Get("Last-Modified"), "None"),
		ETag:         valueOr(h.Get("ETag"), "None"),
		Connection:   valueOr(h.Get("Connection"), "None"),
		KeepAlive:    valueOr(h.Get("Keep-Alive"), "None"),
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
