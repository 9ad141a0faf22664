package pagespeed

import (
	"math"

	"github.com/Bahjat/page-speed-tool/internal/model"
)

const (
	kib = 1 << 10
	mib = 1 << 20
)

// The figures below are size and time bucket heuristics that stand in for
// web vitals. None of them is measured in a browser.

// SynthesizeVitals derives estimated vitals from a fetch. TTFB comes from
// the transport trace when available and is tagged accordingly, since the
// two sources are not comparable across runs.
func SynthesizeVitals(f *model.FetchOutcome) model.DerivedVitals {
	v := model.DerivedVitals{
		LCPSeconds: EstimateLCP(f.ContentSize),
		CLSScore:   EstimateCLS(f.ContentSize),
		FIDMs:      EstimateFID(f.ElapsedMs),
		Estimated:  true,
	}

	if f.TTFBMs != nil {
		v.TTFBMs = *f.TTFBMs
		v.TTFBSource = model.TTFBSourceTransport
	} else {
		v.TTFBMs = EstimateTTFB(f.ElapsedMs)
		v.TTFBSource = model.TTFBSourceEstimated
	}

	return v
}

// EstimateTTFB is 30% of the total elapsed time.
func EstimateTTFB(elapsedMs float64) float64 {
	return round2(elapsedMs * 0.3)
}

// EstimateLCP buckets content size into a largest-contentful-paint guess in seconds.
func EstimateLCP(size int64) float64 {
	switch {
	case size < mib:
		return 1.2
	case size < 5*mib:
		return 2.5
	default:
		return 4.0
	}
}

// EstimateCLS buckets content size into a layout-shift guess.
func EstimateCLS(size int64) float64 {
	switch {
	case size < 500*kib:
		return 0.05
	case size < mib:
		return 0.15
	default:
		return 0.25
	}
}

// EstimateFID buckets response time into a first-input-delay guess in milliseconds.
func EstimateFID(elapsedMs float64) float64 {
	switch {
	case elapsedMs < 200:
		return 50
	case elapsedMs < 500:
		return 100
	default:
		return 200
	}
}

// DOMReadyMs scales the response time by a parse ratio that grows with content size.
func DOMReadyMs(elapsedMs float64, size int64) float64 {
	ratio := 0.85
	switch {
	case size < 500*kib:
		ratio = 0.70
	case size < mib:
		ratio = 0.80
	}
	return round2(elapsedMs * ratio)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
