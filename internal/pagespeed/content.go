package pagespeed

import (
	"regexp"
	"strings"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// Tag patterns are matched case-insensitively over raw markup. They need no
// parse tree, so malformed HTML only ever lowers a count.
var (
	imgTagRe         = regexp.MustCompile(`(?i)<img[^>]*>`)
	anchorHrefRe     = regexp.MustCompile(`(?i)<a[^>]*href=`)
	scriptTagRe      = regexp.MustCompile(`(?i)<script[^>]*>`)
	styleTagRe       = regexp.MustCompile(`(?i)<style[^>]*>`)
	divTagRe         = regexp.MustCompile(`(?i)<div[^>]*>`)
	inlineStyleRe    = regexp.MustCompile(`(?i)style\s*=`)
	externalScriptRe = regexp.MustCompile(`(?i)<script[^>]*src=`)
	externalStyleRe  = regexp.MustCompile(`(?i)<link[^>]*rel\s*=\s*["']stylesheet["']`)

	viewportRe        = regexp.MustCompile(`(?i)<meta[^>]+name=["']viewport["']`)
	titleRe           = regexp.MustCompile(`(?is)<title>.*?</title>`)
	metaDescriptionRe = regexp.MustCompile(`(?i)<meta[^>]+name=["']description["']`)
	lazyImageRe       = regexp.MustCompile(`(?i)<img[^>]*loading=["']lazy["']`)
	preloadStyleRe    = regexp.MustCompile(`(?i)<link[^>]+rel=["']preload["'][^>]+as=["']style["']`)
	insecureRefRe     = regexp.MustCompile(`(?i)\shref="http://|\ssrc="http://`)
)

// IsHTML reports whether a Content-Type header value denotes an HTML document.
func IsHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

// AnalyzeContent counts structural elements and best-practice signals in
// body. Non-HTML responses yield the zero value.
func AnalyzeContent(contentType, body string) model.ContentSignals {
	if !IsHTML(contentType) {
		return model.ContentSignals{}
	}

	return model.ContentSignals{
		HTML:            true,
		Images:          count(imgTagRe, body),
		Links:           count(anchorHrefRe, body),
		Scripts:         count(scriptTagRe, body),
		Styles:          count(styleTagRe, body),
		Divs:            count(divTagRe, body),
		InlineStyles:    count(inlineStyleRe, body),
		ExternalScripts: count(externalScriptRe, body),
		ExternalStyles:  count(externalStyleRe, body),
		BestPractices: model.BestPractices{
			HasViewport:        viewportRe.MatchString(body),
			HasTitle:           titleRe.MatchString(body),
			HasMetaDescription: metaDescriptionRe.MatchString(body),
			LazyLoadedImages:   count(lazyImageRe, body),
			HasPreloadCSS:      preloadStyleRe.MatchString(body),
			HTTPResources:      count(insecureRefRe, body),
		},
	}
}

func count(re *regexp.Regexp, s string) int {
	return len(re.FindAllStringIndex(s, -1))
}
