package pagespeed

import (
	"net/http"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

// Security grades.
const (
	SecurityPoor      = "Poor"
	SecurityAverage   = "Average"
	SecurityGood      = "Good"
	SecurityExcellent = "Excellent"
)

// AnalyzeSecurity inspects the six tracked security headers. The score is
// the number present; the grade follows it directly.
func AnalyzeSecurity(headers http.Header) model.SecurityPosture {
	p := model.SecurityPosture{
		StrictTransportSecurity: headers.Get("Strict-Transport-Security"),
		XFrameOptions:           headers.Get("X-Frame-Options"),
		XContentTypeOptions:     headers.Get("X-Content-Type-Options"),
		XXSSProtection:          headers.Get("X-XSS-Protection"),
		ContentSecurityPolicy:   headers.Get("Content-Security-Policy"),
		ReferrerPolicy:          headers.Get("Referrer-Policy"),
	}

	for _, v := range []string{
		p.StrictTransportSecurity,
		p.XFrameOptions,
		p.XContentTypeOptions,
		p.XXSSProtection,
		p.ContentSecurityPolicy,
		p.ReferrerPolicy,
	} {
		if v != "" {
			p.Score++
		}
	}
	p.Grade = SecurityGrade(p.Score)

	return p
}

// SecurityGrade maps a present-header count to its grade.
func SecurityGrade(score int) string {
	switch {
	case score >= 5:
		return SecurityExcellent
	case score >= 3:
		return SecurityGood
	case score >= 1:
		return SecurityAverage
	default:
		return SecurityPoor
	}
}
