package pagespeed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

// mockFetcher returns outcomes in order and then errs, if set.
type mockFetcher struct {
	mu       sync.Mutex
	outcomes []*model.FetchOutcome
	failAt   int
	err      error
	calls    int
	headers  []http.Header
}

func (m *mockFetcher) Fetch(_ context.Context, _ string, headers http.Header) (*model.FetchOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.headers = append(m.headers, headers)
	if m.err != nil && m.calls == m.failAt {
		return nil, m.err
	}
	return m.outcomes[(m.calls-1)%len(m.outcomes)], nil
}

type fixedDNS struct{ ms *float64 }

func (f fixedDNS) Probe(context.Context, string) *float64 { return f.ms }

type stubBackend struct {
	est   model.LoadEstimate
	calls int
}

func (s *stubBackend) Measure(context.Context, LoadInput) model.LoadEstimate {
	s.calls++
	return s.est
}

type recordingRecorder struct {
	runs      []error
	fallbacks []string
	analyses  []error
}

func (r *recordingRecorder) ObserveRun(_ time.Duration, _ int64, err error) {
	r.runs = append(r.runs, err)
}
func (r *recordingRecorder) ObserveFallback(reason string) { r.fallbacks = append(r.fallbacks, reason) }
func (r *recordingRecorder) ObserveAnalysis(err error)     { r.analyses = append(r.analyses, err) }

func newTestEngine(f Fetcher, opts ...Option) *Engine {
	opts = append([]Option{WithDNSProber(fixedDNS{})}, opts...)
	return NewEngine(f, opts...)
}

func htmlOutcome(body string, elapsedMs float64) *model.FetchOutcome {
	return &model.FetchOutcome{
		ElapsedMs:   elapsedMs,
		StatusCode:  http.StatusOK,
		Headers:     headersOf("Content-Type", "text/html; charset=utf-8", "Server", "nginx"),
		Body:        []byte(body),
		BodyText:    body,
		ContentSize: int64(len(body)),
		HTTPVersion: "HTTP/1.1",
	}
}

func sizedOutcome(elapsedMs float64, size int64) *model.FetchOutcome {
	o := htmlOutcome("<html></html>", elapsedMs)
	o.ContentSize = size
	return o
}

func TestEngine_Analyze_SingleRun(t *testing.T) {
	dns := 12.5
	body := `<!DOCTYPE html><html><head><title>Home</title></head><body><img src="a.png"></body></html>`
	f := &mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome(body, 150)}}
	rec := &recordingRecorder{}
	e := NewEngine(f, WithDNSProber(fixedDNS{ms: &dns}), WithRecorder(rec))

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{URL: "example.com"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", report.URL)
	assert.Equal(t, 1, report.RunCount)
	assert.Nil(t, report.Summary)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, 1, run.Run)
	require.NotNil(t, run.Fetch.DNSLookupMs)
	assert.InDelta(t, 12.5, *run.Fetch.DNSLookupMs, 0)
	assert.Equal(t, "nginx", run.Server)
	assert.Equal(t, "none", run.Compression)
	assert.Equal(t, UnknownCDN, run.CDN)
	assert.True(t, run.Content.HTML)
	assert.Equal(t, "Home", run.Meta.Title)
	assert.Equal(t, "HTML5", run.Meta.HTMLVersion)
	assert.Equal(t, model.LoadSourceSimulated, run.Load.Source)
	assert.Nil(t, run.Load.FallbackReason)
	assert.Nil(t, run.Vitals)
	assert.Nil(t, run.Caching)
	assert.NotEmpty(t, run.Verdict.Grade)

	assert.Equal(t, desktopUserAgent, f.headers[0].Get("User-Agent"))
	assert.Equal(t, []error{nil}, rec.runs)
	assert.Equal(t, []error{nil}, rec.analyses)
}

func TestEngine_Analyze_DNSOutcomeNotShared(t *testing.T) {
	dns := 3.0
	shared := htmlOutcome("<html></html>", 100)
	e := NewEngine(&mockFetcher{outcomes: []*model.FetchOutcome{shared}}, WithDNSProber(fixedDNS{ms: &dns}))

	_, err := e.Analyze(context.Background(), model.AnalysisRequest{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Nil(t, shared.DNSLookupMs)
}

func TestEngine_Analyze_MultiRunSummary(t *testing.T) {
	f := &mockFetcher{outcomes: []*model.FetchOutcome{
		sizedOutcome(100, 1000),
		sizedOutcome(200, 2000),
		sizedOutcome(300, 3000),
	}}
	e := newTestEngine(f)

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{
		URL:      "https://example.com",
		RunCount: 3,
		Flags:    model.Flags{MultiTest: true},
	})
	require.NoError(t, err)

	require.Len(t, report.Runs, 3)
	for i, run := range report.Runs {
		assert.Equal(t, i+1, run.Run)
	}
	require.NotNil(t, report.Summary)
	assert.InDelta(t, 200, report.Summary.AvgResponseTimeMs, 0.001)
	assert.InDelta(t, 2000, report.Summary.AvgContentSize, 0.001)
	assert.InDelta(t, 100, report.Summary.MinResponseTimeMs, 0)
	assert.InDelta(t, 300, report.Summary.MaxResponseTimeMs, 0)
}

func TestEngine_Analyze_RunCountIgnoredWithoutMultiTest(t *testing.T) {
	f := &mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome("<html></html>", 100)}}

	report, err := newTestEngine(f).Analyze(context.Background(), model.AnalysisRequest{
		URL:      "https://example.com",
		RunCount: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Len(t, report.Runs, 1)
}

func TestEngine_Analyze_FailureDiscardsEarlierRuns(t *testing.T) {
	fetchErr := &errs.AppError{Kind: errs.Timeout, Message: "Connection timeout. Please try again."}
	f := &mockFetcher{
		outcomes: []*model.FetchOutcome{htmlOutcome("<html></html>", 100)},
		failAt:   2,
		err:      fetchErr,
	}
	rec := &recordingRecorder{}
	e := newTestEngine(f, WithRecorder(rec))

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{
		URL:      "https://example.com",
		RunCount: 3,
		Flags:    model.Flags{MultiTest: true},
	})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, errs.Timeout, errs.KindOf(err))
	assert.Contains(t, err.Error(), "run 2 of 3")

	var appErr *errs.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Connection timeout. Please try again.", appErr.Message)

	assert.Equal(t, []error{nil, fetchErr}, rec.runs)
	require.Len(t, rec.analyses, 1)
	assert.Error(t, rec.analyses[0])
}

func TestEngine_Analyze_InvalidURL(t *testing.T) {
	f := &mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome("", 1)}}

	_, err := newTestEngine(f).Analyze(context.Background(), model.AnalysisRequest{URL: "   "})

	require.Error(t, err)
	assert.Equal(t, errs.InvalidInput, errs.KindOf(err))
	assert.Zero(t, f.calls)
}

func TestEngine_Analyze_CancelledContext(t *testing.T) {
	f := &mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome("", 1)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(f).Analyze(ctx, model.AnalysisRequest{URL: "https://example.com"})

	require.Error(t, err)
	assert.Equal(t, errs.Timeout, errs.KindOf(err))
	assert.Zero(t, f.calls)
}

func TestEngine_Analyze_DeepAnalysis(t *testing.T) {
	ttfb := 42.0
	o := htmlOutcome("<html></html>", 400)
	o.TTFBMs = &ttfb
	o.Headers.Set("Cache-Control", "max-age=60")
	e := newTestEngine(&mockFetcher{outcomes: []*model.FetchOutcome{o}})

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{
		URL:   "https://example.com",
		Flags: model.Flags{DeepAnalysis: true},
	})
	require.NoError(t, err)

	run := report.Runs[0]
	require.NotNil(t, run.Vitals)
	assert.InDelta(t, 42, run.Vitals.TTFBMs, 0)
	assert.Equal(t, model.TTFBSourceTransport, run.Vitals.TTFBSource)
	assert.True(t, run.Vitals.Estimated)
	assert.InDelta(t, 100, run.Vitals.FIDMs, 0)

	require.NotNil(t, run.Caching)
	assert.Equal(t, "max-age=60", run.Caching.CacheControl)
	assert.Equal(t, "None", run.Caching.ETag)
}

func TestEngine_Analyze_NonHTML(t *testing.T) {
	body := `{"img":"<img src=x.png>"}`
	o := htmlOutcome(body, 80)
	o.Headers.Set("Content-Type", "application/json")
	e := newTestEngine(&mockFetcher{outcomes: []*model.FetchOutcome{o}})

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{URL: "https://example.com/api"})
	require.NoError(t, err)

	run := report.Runs[0]
	assert.Equal(t, model.ContentSignals{}, run.Content)
	assert.Equal(t, model.PageMeta{}, run.Meta)
	assert.Equal(t, "application/json", run.ContentType)
}

func TestEngine_Analyze_MobileHeaders(t *testing.T) {
	f := &mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome("<html></html>", 100)}}

	_, err := newTestEngine(f).Analyze(context.Background(), model.AnalysisRequest{
		URL:   "https://example.com",
		Flags: model.Flags{MobileTest: true},
	})
	require.NoError(t, err)

	assert.Equal(t, mobileUserAgent, f.headers[0].Get("User-Agent"))
}

func TestEngine_MeasureLoad(t *testing.T) {
	reason := ReasonNavigationFailed
	body := `<script src="app.js"></script><img src="hero.jpg">`

	tests := []struct {
		name       string
		flags      model.Flags
		browser    *stubBackend
		wantSource string
		wantReason string
		wantTotal  float64
		wantCalls  int
	}{
		{
			name:       "simulated when browser not requested",
			browser:    &stubBackend{},
			wantSource: model.LoadSourceSimulated,
			wantTotal:  100 + 100 + 200 + 50,
		},
		{
			name:       "browser result used as is",
			flags:      model.Flags{RealBrowser: true},
			browser:    &stubBackend{est: model.LoadEstimate{TotalLoadTimeMs: 987, JSFiles: 4, Source: model.LoadSourceBrowser}},
			wantSource: model.LoadSourceBrowser,
			wantTotal:  987,
			wantCalls:  1,
		},
		{
			name:       "browser failure falls back to simulation",
			flags:      model.Flags{RealBrowser: true},
			browser:    &stubBackend{est: model.LoadEstimate{FallbackReason: &reason, Source: model.LoadSourceBrowser}},
			wantSource: model.LoadSourceSimulated,
			wantReason: ReasonNavigationFailed,
			wantTotal:  450,
			wantCalls:  1,
		},
		{
			name:       "no browser configured",
			flags:      model.Flags{RealBrowser: true},
			wantSource: model.LoadSourceSimulated,
			wantReason: ReasonBrowserDisabled,
			wantTotal:  450,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingRecorder{}
			opts := []Option{WithRecorder(rec)}
			if tt.browser != nil {
				opts = append(opts, WithBrowser(tt.browser))
			}
			e := newTestEngine(&mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome(body, 100)}}, opts...)

			report, err := e.Analyze(context.Background(), model.AnalysisRequest{
				URL:   "https://example.com",
				Flags: tt.flags,
			})
			require.NoError(t, err)

			load := report.Runs[0].Load
			assert.Equal(t, tt.wantSource, load.Source)
			assert.InDelta(t, tt.wantTotal, load.TotalLoadTimeMs, 0.001)
			if tt.wantReason == "" {
				assert.Nil(t, load.FallbackReason)
				assert.Empty(t, rec.fallbacks)
			} else {
				require.NotNil(t, load.FallbackReason)
				assert.Equal(t, tt.wantReason, *load.FallbackReason)
				assert.Equal(t, []string{tt.wantReason}, rec.fallbacks)
			}
			if tt.browser != nil {
				assert.Equal(t, tt.wantCalls, tt.browser.calls)
			}
		})
	}
}

func TestEngine_Technologies(t *testing.T) {
	detector := &WappalyzerDetector{client: &stubFingerprinter{found: map[string]struct{}{"Nginx": {}}}}
	e := newTestEngine(&mockFetcher{outcomes: []*model.FetchOutcome{htmlOutcome("<html></html>", 100)}}, WithTechDetector(detector))

	report, err := e.Analyze(context.Background(), model.AnalysisRequest{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Nginx"}, report.Runs[0].Technologies)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, model.Summary{}, Summarize(nil))
}
