package pagespeed

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"
)

var errBlockedAddress = errors.New("target address is private or reserved")

// Ranges that netip's IsPrivate/IsGlobalUnicast helpers let through.
// See RFC 6890 for the registry.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"),   // carrier-grade NAT
	netip.MustParsePrefix("192.0.0.0/24"),    // IETF protocol assignments
	netip.MustParsePrefix("192.0.2.0/24"),    // TEST-NET-1
	netip.MustParsePrefix("198.18.0.0/15"),   // benchmarking
	netip.MustParsePrefix("198.51.100.0/24"), // TEST-NET-2
	netip.MustParsePrefix("203.0.113.0/24"),  // TEST-NET-3
	netip.MustParsePrefix("240.0.0.0/4"),     // reserved for future use
	netip.MustParsePrefix("2001:db8::/32"),   // IPv6 documentation
	netip.MustParsePrefix("64:ff9b:1::/48"),  // local-use NAT64
}

// addressGuard vets the resolved address of every outbound connection, so
// a public name that resolves to an internal address is refused too.
type addressGuard struct {
	reserved []netip.Prefix
}

func newAddressGuard(extra ...netip.Prefix) addressGuard {
	reserved := make([]netip.Prefix, 0, len(reservedPrefixes)+len(extra))
	reserved = append(reserved, reservedPrefixes...)
	return addressGuard{reserved: append(reserved, extra...)}
}

// control is a net.Dialer Control hook.
func (g addressGuard) control(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: unparseable %q", errBlockedAddress, address)
	}
	if g.blocked(ap.Addr()) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ap.Addr())
	}
	return nil
}

func (g addressGuard) blocked(addr netip.Addr) bool {
	// ::ffff:10.0.0.1 is checked as 10.0.0.1.
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return true
	}
	for _, p := range g.reserved {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// newDialer returns the probe dialer, guarded when blockPrivate is set.
func newDialer(blockPrivate bool) *net.Dialer {
	d := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if blockPrivate {
		d.Control = newAddressGuard().control
	}
	return d
}
