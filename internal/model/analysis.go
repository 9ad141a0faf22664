package model

import (
	"net/http"
	"time"
)

// Flags selects the optional behavior of an analysis request.
type Flags struct {
	MultiTest    bool `json:"multi_test"`
	DeepAnalysis bool `json:"deep_analysis"`
	MobileTest   bool `json:"mobile_test"`
	RealBrowser  bool `json:"real_browser"`
}

// AnalysisRequest is the immutable configuration of one analysis.
type AnalysisRequest struct {
	URL      string `json:"url"`
	RunCount int    `json:"run_count"`
	Flags    Flags  `json:"flags"`
}

// FetchOutcome is the record of one timed HTTP GET.
type FetchOutcome struct {
	ElapsedMs     float64     `json:"elapsed_ms"`
	DNSLookupMs   *float64    `json:"dns_lookup_ms"`
	TTFBMs        *float64    `json:"ttfb_ms"`
	StatusCode    int         `json:"status_code"`
	Headers       http.Header `json:"headers"`
	Body          []byte      `json:"-"`
	BodyText      string      `json:"-"`
	TransferSize  int64       `json:"transfer_size"`
	ContentSize   int64       `json:"content_size"`
	RedirectCount int         `json:"redirect_count"`
	HTTPVersion   string      `json:"http_version"`
	FinalURL      string      `json:"final_url"`
}

// BestPractices are HTML hygiene signals found in the document.
type BestPractices struct {
	HasViewport        bool `json:"has_viewport"`
	HasTitle           bool `json:"has_title"`
	HasMetaDescription bool `json:"has_meta_description"`
	LazyLoadedImages   int  `json:"lazy_loaded_images"`
	HasPreloadCSS      bool `json:"has_preload_css"`
	HTTPResources      int  `json:"http_resources"`
}

// ContentSignals holds structural counts derived from the response body.
// All fields are zero when the response is not HTML.
type ContentSignals struct {
	HTML            bool          `json:"html"`
	Images          int           `json:"img_count"`
	Links           int           `json:"link_count"`
	Scripts         int           `json:"script_count"`
	Styles          int           `json:"style_count"`
	Divs            int           `json:"div_count"`
	InlineStyles    int           `json:"inline_styles"`
	ExternalScripts int           `json:"external_scripts"`
	ExternalStyles  int           `json:"external_styles"`
	BestPractices   BestPractices `json:"best_practices"`
}

// PageMeta is document metadata extracted by the HTML tokenizer.
type PageMeta struct {
	Title       string `json:"title"`
	HTMLVersion string `json:"html_version"`
}

// Load estimate sources.
const (
	LoadSourceBrowser   = "browser"
	LoadSourceSimulated = "simulated"
)

// LoadEstimate is the full page load measurement for one run.
//
// When Source is "simulated" the figures are a deterministic approximation
// computed from resource counts in the HTML, not a browser measurement.
type LoadEstimate struct {
	TotalLoadTimeMs  float64 `json:"total_load_time_ms"`
	CSSFiles         int     `json:"css_files"`
	JSFiles          int     `json:"js_files"`
	Images           int     `json:"images"`
	AdditionalTimeMs float64 `json:"additional_time_ms"`
	FallbackReason   *string `json:"fallback_reason"`
	Source           string  `json:"source"`
}

// TTFB sources.
const (
	TTFBSourceTransport = "transport"
	TTFBSourceEstimated = "estimated"
)

// DerivedVitals are heuristic web-vital stand-ins. They are estimates from
// response size and timing, never browser measurements; Estimated is always true.
type DerivedVitals struct {
	TTFBMs     float64 `json:"ttfb_ms"`
	TTFBSource string  `json:"ttfb_source"`
	LCPSeconds float64 `json:"lcp_seconds_estimate"`
	CLSScore   float64 `json:"cls_score_estimate"`
	FIDMs      float64 `json:"fid_ms_estimate"`
	Estimated  bool    `json:"estimated"`
}

// CacheDetails echoes caching and connection headers for deep analysis.
type CacheDetails struct {
	CacheControl string `json:"cache_control"`
	Expires      string `json:"expires"`
	LastModified string `json:"last_modified"`
	ETag         string `json:"etag"`
	Connection   string `json:"connection"`
	KeepAlive    string `json:"keep_alive"`
}

// SecurityPosture summarizes security-relevant response headers.
// An empty header value means the header was absent.
type SecurityPosture struct {
	StrictTransportSecurity string `json:"strict_transport_security"`
	XFrameOptions           string `json:"x_frame_options"`
	XContentTypeOptions     string `json:"x_content_type_options"`
	XXSSProtection          string `json:"x_xss_protection"`
	ContentSecurityPolicy   string `json:"content_security_policy"`
	ReferrerPolicy          string `json:"referrer_policy"`
	Score                   int    `json:"score"`
	Grade                   string `json:"grade"`
}

// PerformanceVerdict is the overall score, grade, and ranked recommendations.
type PerformanceVerdict struct {
	Score           int      `json:"score"`
	Grade           string   `json:"grade"`
	Recommendations []string `json:"recommendations"`
}

// SpeedRating rates the response time alone.
type SpeedRating struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// RunResult is everything measured and derived in one run.
type RunResult struct {
	Run          int                `json:"run"`
	URL          string             `json:"url"`
	Flags        Flags              `json:"flags"`
	Fetch        FetchOutcome       `json:"fetch"`
	ContentType  string             `json:"content_type"`
	Server       string             `json:"server"`
	Compression  string             `json:"compression"`
	CDN          string             `json:"cdn"`
	Content      ContentSignals     `json:"content"`
	Meta         PageMeta           `json:"meta"`
	Technologies []string           `json:"technologies,omitempty"`
	Load         LoadEstimate       `json:"load"`
	DOMReadyMs   float64            `json:"dom_ready_ms"`
	Vitals       *DerivedVitals     `json:"vitals,omitempty"`
	Caching      *CacheDetails      `json:"caching,omitempty"`
	Security     SecurityPosture    `json:"security"`
	Verdict      PerformanceVerdict `json:"verdict"`
	Speed        SpeedRating        `json:"speed"`
	Insights     []string           `json:"insights"`
}

// Summary aggregates a multi-run report.
type Summary struct {
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	AvgContentSize    float64 `json:"avg_content_size"`
	MinResponseTimeMs float64 `json:"min_response_time_ms"`
	MaxResponseTimeMs float64 `json:"max_response_time_ms"`
}

// AnalysisReport is the result of one analysis request.
type AnalysisReport struct {
	URL       string        `json:"url"`
	Flags     Flags         `json:"flags"`
	RunCount  int           `json:"run_count"`
	Runs      []RunResult   `json:"runs"`
	Summary   *Summary      `json:"summary,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}
