package pagespeed

import (
	"net/http"
	"sort"
	"strings"
)

// UnknownCDN is reported when no signature matches.
const UnknownCDN = "unknown"

var cdnSignatures = []string{"cloudflare", "akamai", "fastly", "cloudfront", "cdn77", "incapsula", "cachefly"}

// DetectCDN matches known CDN names against the Server header and every
// header name and value. The first signature in list order wins.
func DetectCDN(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(headers.Get("Server"))
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(strings.Join(headers[k], ","))
	}
	blob := strings.ToLower(b.String())

	for _, sig := range cdnSignatures {
		if strings.Contains(blob, sig) {
			return sig
		}
	}
	return UnknownCDN
}
