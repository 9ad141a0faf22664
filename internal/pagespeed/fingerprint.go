package pagespeed

import (
	"fmt"
	"net/http"
	"sort"

	wappalyzer "github.com/projectdiscovery/wappalyzergo"
)

// fingerprintClient is the part of the wappalyzer client the engine needs.
type fingerprintClient interface {
	Fingerprint(headers map[string][]string, data []byte) map[string]struct{}
}

// TechDetector names the technologies a response was built with.
type TechDetector interface {
	Detect(headers http.Header, body []byte) []string
}

// WappalyzerDetector implements TechDetector with wappalyzer fingerprints.
type WappalyzerDetector struct {
	client fingerprintClient
}

// NewWappalyzerDetector loads the embedded fingerprint database.
func NewWappalyzerDetector() (*WappalyzerDetector, error) {
	client, err := wappalyzer.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize wappalyzer: %w", err)
	}
	return &WappalyzerDetector{client: client}, nil
}

// Detect returns the matched technology names in sorted order.
func (d *WappalyzerDetector) Detect(headers http.Header, body []byte) []string {
	found := d.client.Fingerprint(headers, body)
	if len(found) == 0 {
		return nil
	}

	techs := make([]string, 0, len(found))
	for name := range found {
		techs = append(techs, name)
	}
	sort.Strings(techs)
	return techs
}
