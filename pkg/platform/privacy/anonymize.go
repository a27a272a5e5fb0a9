// Package privacy masks client identifiers before they reach logs.
package privacy

import (
	"net/netip"

	"folio/pkg/requestcontext"
)

// AnonymizeIP truncates an address to its network prefix so a log line never
// names a single visitor: IPv4 keeps the /24, IPv6 keeps the /48.
//
// The shared fallback key is passed through as "unknown"; anything that does
// not parse as an address (a raw forwarded header, for instance) becomes
// "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == requestcontext.UnknownClient {
		return requestcontext.UnknownClient
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
