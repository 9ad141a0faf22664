package pagespeed

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

const maxRecommendations = 5

// Score computes the overall verdict from response time, decoded content
// size and response headers. The score starts at 100, loses points for slow
// or heavy responses, gains points for caching, compression and a few
// security headers, and is clamped to [0, 100].
func Score(elapsedMs float64, contentSize int64, headers http.Header) model.PerformanceVerdict {
	score := 100

	switch {
	case elapsedMs > 3000:
		score -= 30
	case elapsedMs > 2000:
		score -= 20
	case elapsedMs > 1000:
		score -= 10
	}

	switch {
	case contentSize > 10*mib:
		score -= 25
	case contentSize > 5*mib:
		score -= 15
	case contentSize > 2*mib:
		score -= 10
	}

	if headers.Get("Cache-Control") != "" {
		score += 5
	}
	if headers.Get("Expires") != "" {
		score += 5
	}
	if headers.Get("Content-Encoding") != "" {
		score += 10
	}
	for _, h := range []string{"Strict-Transport-Security", "X-Frame-Options", "X-Content-Type-Options"} {
		if headers.Get(h) != "" {
			score += 2
		}
	}

	score = min(max(score, 0), 100)

	return model.PerformanceVerdict{
		Score:           score,
		Grade:           Grade(score),
		Recommendations: Recommendations(elapsedMs, contentSize, headers.Get("Server")),
	}
}

// Grade maps a 0-100 score to a letter grade.
func Grade(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Recommendations returns at most five suggestions. Order is part of the
// contract: response-time rules, then size rules, then general advice, then
// a server-specific hint; the list is cut after the fifth entry.
func Recommendations(elapsedMs float64, contentSize int64, server string) []string {
	var recs []string

	if elapsedMs > 2000 {
		recs = append(recs,
			"Use CDN to reduce response time",
			"Optimize server code and database",
			"Enable Gzip compression",
		)
	}

	if contentSize > mib {
		recs = append(recs,
			"Compress images with WebP format",
			"Remove unnecessary CSS and JavaScript code",
			"Use lazy loading for images",
		)
	}

	recs = append(recs,
		"Enable browser cache",
		"Use HTTP/2 for better performance",
		"Optimize JavaScript and CSS code",
	)

	server = strings.ToLower(server)
	switch {
	case strings.Contains(server, "nginx"):
		recs = append(recs, "Configure Nginx optimization")
	case strings.Contains(server, "apache"):
		recs = append(recs, "Configure Apache optimization")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// ResponseTimeScore rates response time alone on a 50-100 scale.
// It never increases as elapsedMs grows.
func ResponseTimeScore(elapsedMs float64) int {
	switch {
	case elapsedMs < 200:
		return 100
	case elapsedMs < 500:
		return 90
	case elapsedMs < 1000:
		return 80
	case elapsedMs < 2000:
		return 70
	case elapsedMs < 3000:
		return 60
	default:
		return 50
	}
}

// SpeedLabel describes a ResponseTimeScore.
func SpeedLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good"
	case score >= 70:
		return "Average"
	case score >= 60:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// RateSpeed pairs ResponseTimeScore with its label.
func RateSpeed(elapsedMs float64) model.SpeedRating {
	score := ResponseTimeScore(elapsedMs)
	return model.SpeedRating{Score: score, Label: SpeedLabel(score)}
}

// Insights returns one plain-language observation each for response time,
// content size and status code.
func Insights(elapsedMs float64, contentSize int64, statusCode int) []string {
	insights := make([]string, 0, 3)

	switch {
	case elapsedMs < 200:
		insights = append(insights, "Excellent response time - server is optimized")
	case elapsedMs < 1000:
		insights = append(insights, "Average response time - server improvement recommended")
	default:
		insights = append(insights, "Poor response time - urgent optimization needed")
	}

	switch {
	case contentSize < mib:
		insights = append(insights, "Content size is appropriate")
	case contentSize < 5*mib:
		insights = append(insights, "Average content size - compression recommended")
	default:
		insights = append(insights, "Large content size - optimization essential")
	}

	if statusCode == http.StatusOK {
		insights = append(insights, "Server responds correctly")
	} else {
		insights = append(insights, fmt.Sprintf("Status code %d - server check recommended", statusCode))
	}

	return insights
}
