package pagespeed

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// ParseMeta tokenizes an HTML body for its title and doctype. Tokenizer
// errors end the scan and return whatever was found so far.
func ParseMeta(body string) model.PageMeta {
	meta := model.PageMeta{HTMLVersion: "Unknown"}

	z := html.NewTokenizer(strings.NewReader(body))
	var inTitle, titleSeen bool

	for {
		switch z.Next() {
		case html.ErrorToken:
			return meta

		case html.DoctypeToken:
			meta.HTMLVersion = detectHTMLVersion(z.Token())

		case html.StartTagToken:
			tn, _ := z.TagName()
			if string(tn) == "title" && !titleSeen {
				inTitle = true
			}

		case html.TextToken:
			if inTitle {
				meta.Title = strings.TrimSpace(string(z.Text()))
				inTitle = false
				titleSeen = true
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			switch string(tn) {
			case "title":
				inTitle = false
			case "head":
				// Titles outside <head> belong to inline SVG and the like.
				titleSeen = true
			}
		}
	}
}

func detectHTMLVersion(token html.Token) string {
	// HTML5: Data = "html"
	// Legacy: Data = `HTML PUBLIC "-//W3C//DTD HTML 4.01//EN" "..."`
	data := strings.ToLower(token.Data)

	if !strings.Contains(data, "public") {
		return "HTML5"
	}

	switch {
	case strings.Contains(data, "xhtml 1.1") || strings.Contains(data, "xhtml basic 1.1"):
		return "XHTML 1.1"
	case strings.Contains(data, "xhtml 1.0"):
		return "XHTML 1.0"
	case strings.Contains(data, "html 4.01"):
		return "HTML 4.01"
	default:
		return "Unknown"
	}
}
