package pagespeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	"github.com/Bahjat/page-speed-tool/internal/model"
	"github.com/Bahjat/page-speed-tool/internal/platform/errs"
)

// Fetcher performs one timed GET and reports what it observed.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string, headers http.Header) (*model.FetchOutcome, error)
}

const (
	maxRedirects = 10

	// DefaultFetchTimeout bounds a single fetch, including the body download.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps both the wire and the decoded body.
	DefaultMaxBodyBytes = 32 << 20

	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15"
	acceptEncoding  = "br, gzip, deflate"

	blockedTargetMessage = "The URL points to a private or reserved network address."
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	Timeout              time.Duration
	MaxBodyBytes         int64
	BlockPrivateNetworks bool
}

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPClient returns a Fetcher whose transport negotiates HTTP/2, leaves
// content decoding to the caller-advertised Accept-Encoding, and optionally
// refuses to dial private or reserved addresses.
func NewHTTPClient(opts ClientOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         newDialer(opts.BlockPrivateNetworks).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true,
	}
	// Only fails when the transport was already configured for h2.
	_, _ = http2.ConfigureTransports(transport)

	return newHTTPClient(&http.Client{
		Timeout:       opts.Timeout,
		Transport:     transport,
		CheckRedirect: safeRedirectPolicy,
	}, opts.MaxBodyBytes)
}

func newHTTPClient(client *http.Client, maxBodyBytes int64) *HTTPClient {
	if client.CheckRedirect == nil {
		client.CheckRedirect = safeRedirectPolicy
	}
	return &HTTPClient{client: client, maxBodyBytes: maxBodyBytes}
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// RequestHeaders returns the probe headers: compressible encodings and a
// desktop user agent, or a mobile one when mobile is set.
func RequestHeaders(mobile bool) http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Encoding", acceptEncoding)
	h.Set("Connection", "keep-alive")
	h.Set("User-Agent", desktopUserAgent)
	if mobile {
		h.Set("User-Agent", mobileUserAgent)
	}
	return h
}

// Fetch performs a single GET. The elapsed time brackets the round trip and
// the body download only. Idle connections are dropped afterwards so the
// next run pays its own connection setup.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string, headers http.Header) (*model.FetchOutcome, error) {
	var (
		once      sync.Once
		firstByte time.Time
	)
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			once.Do(func() { firstByte = time.Now() })
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
			Cause:   err,
		}
	}
	for key, values := range RequestHeaders(false) {
		req.Header[key] = values
	}
	for key, values := range headers {
		req.Header[http.CanonicalHeaderKey(key)] = values
	}
	defer c.client.CloseIdleConnections()

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		return nil, classifyFetchError(err)
	}

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), raw, c.maxBodyBytes)
	if err != nil {
		// Mislabelled encodings are measured as sent.
		body = raw
	}

	outcome := &model.FetchOutcome{
		ElapsedMs:     roundMs(elapsed),
		StatusCode:    resp.StatusCode,
		Headers:       resp.Header.Clone(),
		Body:          body,
		BodyText:      string(body),
		TransferSize:  int64(len(raw)),
		ContentSize:   int64(len(body)),
		RedirectCount: redirectCount(resp),
		HTTPVersion:   httpVersion(resp),
		FinalURL:      resp.Request.URL.String(),
	}
	if !firstByte.IsZero() {
		ttfb := roundMs(firstByte.Sub(start))
		outcome.TTFBMs = &ttfb
	}

	return outcome, nil
}

func redirectCount(resp *http.Response) int {
	var n int
	for r := resp.Request.Response; r != nil; r = r.Request.Response {
		n++
	}
	return n
}

func httpVersion(resp *http.Response) string {
	switch {
	case resp.ProtoMajor == 3:
		return "HTTP/3"
	case resp.ProtoMajor == 2:
		return "HTTP/2"
	case resp.ProtoMajor == 1 && resp.ProtoMinor == 1:
		return "HTTP/1.1"
	case resp.ProtoMajor == 1 && resp.ProtoMinor == 0:
		return "HTTP/1.0"
	default:
		return "Unknown"
	}
}

// classifyFetchError maps a transport failure to one of the network error
// kinds. The raw error is kept only as the cause.
func classifyFetchError(err error) *errs.AppError {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.As(err, &dnsErr):
		return &errs.AppError{
			Kind:    errs.DNSFailure,
			Message: "The host name could not be resolved. Please check the URL.",
			Cause:   err,
		}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &errs.AppError{
			Kind:    errs.Timeout,
			Message: "Connection timeout. Please try again.",
			Cause:   err,
		}
	case errors.Is(err, errBlockedAddress):
		return &errs.AppError{
			Kind:    errs.NetworkError,
			Message: blockedTargetMessage,
			Cause:   err,
		}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &errs.AppError{
			Kind:    errs.ConnectionRefused,
			Message: "Connection error. Please check the URL.",
			Cause:   err,
		}
	default:
		return &errs.AppError{
			Kind:    errs.NetworkError,
			Message: "The provided URL could not be reached. Check the address.",
			Cause:   err,
		}
	}
}

func roundMs(d time.Duration) float64 {
	return round2(float64(d) / float64(time.Millisecond))
}
