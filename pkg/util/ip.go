package util

import (
	"fmt"
	"net/netip"
	"strings"
)

const maxASN = 4294967295 // max uint32, 4-byte ASN range

// ParseIPv4Interface parses an interface address in CIDR notation
// (e.g. "10.0.0.1/30"). The host bits are preserved.
func ParseIPv4Interface(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(s))
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR notation: %s", s)
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("not an IPv4 address: %s", s)
	}
	return p, nil
}

// ParseIPv4Network parses a network in CIDR notation. The address must be
// the network address: "10.0.0.1/30" is rejected rather than masked.
func ParseIPv4Network(s string) (netip.Prefix, error) {
	p, err := ParseIPv4Interface(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	if p != p.Masked() {
		return netip.Prefix{}, fmt.Errorf("%s has host bits set (network is %s)", strings.TrimSpace(s), p.Masked())
	}
	return p, nil
}

// BroadcastAddr returns the last address of the prefix
func BroadcastAddr(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().As4()
	hostBits := 32 - p.Bits()
	for i := 3; i >= 0 && hostBits > 0; i-- {
		n := hostBits
		if n > 8 {
			n = 8
		}
		b[i] |= byte(1<<n - 1)
		hostBits -= n
	}
	return netip.AddrFrom4(b)
}

// UsableHosts returns the first and last usable host address of an IPv4
// network, plus the usable count. /31 networks use both addresses (RFC 3021)
// and /32 has a single usable address.
func UsableHosts(p netip.Prefix) (first, last netip.Addr, count uint64) {
	p = p.Masked()
	switch bits := p.Bits(); {
	case bits == 32:
		return p.Addr(), p.Addr(), 1
	case bits == 31:
		return p.Addr(), p.Addr().Next(), 2
	default:
		size := uint64(1) << uint(32-bits)
		return p.Addr().Next(), BroadcastAddr(p).Prev(), size - 2
	}
}

// IsAssignableIPv4 reports whether the address part of an interface prefix can
// be configured on an interface: it must not be the network or broadcast
// address of its subnet unless the subnet is /31 or /32.
func IsAssignableIPv4(p netip.Prefix) bool {
	if !p.Addr().Is4() {
		return false
	}
	if p.Bits() >= 31 {
		return true
	}
	return p.Addr() != p.Masked().Addr() && p.Addr() != BroadcastAddr(p)
}

// PrefixesOverlap reports whether either interface prefix's address falls
// inside the other's network.
func PrefixesOverlap(a, b netip.Prefix) bool {
	return a.Masked().Contains(b.Addr()) || b.Masked().Contains(a.Addr())
}

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int64) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}
