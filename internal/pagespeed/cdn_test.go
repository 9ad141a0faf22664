package pagespeed

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCDN(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		want    string
	}{
		{name: "server header", headers: headersOf("Server", "cloudflare"), want: "cloudflare"},
		{name: "header name", headers: headersOf("X-Fastly-Request-ID", "abc"), want: "fastly"},
		{name: "header value", headers: headersOf("Via", "1.1 abc.cloudfront.net (CloudFront)"), want: "cloudfront"},
		{name: "akamai", headers: headersOf("Server", "AkamaiGHost"), want: "akamai"},
		{name: "list order wins", headers: headersOf("Server", "fastly", "X-Note", "via akamai"), want: "akamai"},
		{name: "none", headers: headersOf("Server", "nginx"), want: UnknownCDN},
		{name: "empty", headers: http.Header{}, want: UnknownCDN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCDN(tt.headers))
		})
	}
}
