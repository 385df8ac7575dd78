package coverage

import "net"

// CoversSubnet reports whether the outer CIDR fully contains the inner
// one: the outer prefix must be no longer than the inner's, and the inner
// base address masked to the outer prefix must land inside it. A CIDR
// covers itself.
func CoversSubnet(outer, inner string) bool {
	_, outerNet, err := net.ParseCIDR(outer)
	if err != nil {
		return false
	}
	_, innerNet, err := net.ParseCIDR(inner)
	if err != nil {
		return false
	}

	outerOnes, outerBits := outerNet.Mask.Size()
	innerOnes, innerBits := innerNet.Mask.Size()
	if outerBits != innerBits {
		return false
	}
	if outerOnes > innerOnes {
		return false
	}
	return outerNet.Contains(innerNet.IP)
}

// ContainsIP reports whether the CIDR contains the single address.
func ContainsIP(cidr, ip string) bool {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return network.Contains(parsed)
}
