package pagespeed

import (
	"context"
	"net"
	"time"
)

const dnsProbeTimeout = 5 * time.Second

// Resolver is the subset of *net.Resolver used by the DNS probe.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNSProber times a standalone resolution of a host before the fetch.
type DNSProber struct {
	resolver Resolver
}

// NewDNSProber returns a prober backed by net.DefaultResolver.
func NewDNSProber() *DNSProber {
	return &DNSProber{resolver: net.DefaultResolver}
}

// Probe returns the lookup time in milliseconds, or nil when the host is
// empty or does not resolve. It never fails the caller.
func (p *DNSProber) Probe(ctx context.Context, host string) *float64 {
	if host == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, dnsProbeTimeout)
	defer cancel()

	start := time.Now()
	if _, err := p.resolver.LookupHost(ctx, host); err != nil {
		return nil
	}
	ms := roundMs(time.Since(start))
	return &ms
}
