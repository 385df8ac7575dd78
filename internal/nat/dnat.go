package nat

import (
	"github.com/ekobres/unifi-dns-audit/internal/coverage"
	"github.com/ekobres/unifi-dns-audit/internal/domain"
	"github.com/ekobres/unifi-dns-audit/internal/rules"
)

const dnsPort = 53

// Params carries everything the redirect validator needs for one run.
type Params struct {
	Rules         []domain.DnatRule
	Networks      []domain.NetworkInfo
	ExcludedVLANs []int

	// NativeVLAN identifies the untagged VLAN whose gateway is always an
	// acceptable redirect target. Zero means VLAN 1.
	NativeVLAN int

	// DnsControlActive gates the two validity checks. Without an active
	// DNS control mechanism a redirect target cannot be judged wrong, so
	// both checks default to valid.
	DnsControlActive bool

	// ThirdPartyIPs lists detected third-party resolver addresses. It is
	// populated only when third-party DNS is in site-wide use; an
	// internal-only resolver keeps expectations gateway-based.
	ThirdPartyIPs []string
}

// Validation is the outcome of auditing the DNS redirect rules: which
// networks their source selectors reach, and whether their destination
// filters and redirect targets hold up.
type Validation struct {
	HasDnsRules      bool
	FullCoverage     bool
	RedirectValid    bool
	DestinationValid bool

	Covered   []domain.NetworkInfo
	Uncovered []domain.NetworkInfo
	Excluded  []domain.NetworkInfo

	SingleIPRules    []string
	RestrictedRules  []string
	InvalidRedirects []string
}

// IsDnsRedirect reports whether a NAT entry participates in the DNS
// redirect audit: a DNAT rule, enabled, whose protocol family includes udp
// and whose destination port set includes 53. An absent port spec matches
// every port and therefore includes 53.
func IsDnsRedirect(rule domain.DnatRule) bool {
	if rule.Type != domain.NatTypeDNAT || !rule.Enabled {
		return false
	}
	if !rules.FamilyIncludes(rule.Protocol, domain.ProtocolUDP) {
		return false
	}
	return portSpecIncludes(rule.Destination.PortSpec, dnsPort)
}

func portSpecIncludes(spec string, port int) bool {
	if spec == "" {
		return true
	}
	for _, r := range rules.ParsePortSpec(spec) {
		if r.Contains(port) {
			return true
		}
	}
	return false
}

// Validate audits the DNS redirect rules against the network inventory.
// Coverage accrues for every applicable rule regardless of gating; the
// destination-filter and redirect-target checks run only while a DNS
// control mechanism is active.
func Validate(p Params) Validation {
	v := Validation{RedirectValid: true, DestinationValid: true}

	set := coverage.NewSet(p.Networks, p.ExcludedVLANs)

	expectedBase := make(map[string]bool, 1+len(p.ThirdPartyIPs))
	if gw := nativeGateway(p.Networks, p.NativeVLAN); gw != "" {
		expectedBase[gw] = true
	}
	for _, ip := range p.ThirdPartyIPs {
		expectedBase[ip] = true
	}

	for _, rule := range p.Rules {
		if !IsDnsRedirect(rule) {
			continue
		}
		v.HasDnsRules = true

		reached, ok := set.Apply(coverage.FromDnatRule(rule))
		if !ok {
			// A bare-address source restricts the redirect to one
			// client. Reported on its own; the validity checks do not
			// apply.
			v.SingleIPRules = append(v.SingleIPRules, ruleLabel(rule))
			continue
		}

		if !p.DnsControlActive {
			continue
		}

		if rule.Destination.Address != "" && !rule.Destination.InvertAddress {
			v.DestinationValid = false
			v.RestrictedRules = append(v.RestrictedRules, ruleLabel(rule))
		}

		expected := make(map[string]bool, len(expectedBase)+len(reached))
		for addr := range expectedBase {
			expected[addr] = true
		}
		for _, n := range reached {
			if n.Gateway != "" {
				expected[n.Gateway] = true
			}
		}
		for _, addr := range ParseAddressRange(rule.RedirectIP) {
			if !expected[addr] {
				v.RedirectValid = false
				v.InvalidRedirects = append(v.InvalidRedirects, redirectLabel(rule))
				break
			}
		}
	}

	v.FullCoverage = set.FullCoverage()
	v.Covered = set.Covered()
	v.Uncovered = set.Uncovered()
	v.Excluded = set.Excluded()
	return v
}

func nativeGateway(networks []domain.NetworkInfo, vlan int) string {
	if vlan == 0 {
		vlan = 1
	}
	for _, n := range networks {
		if n.VLAN == vlan && n.Gateway != "" {
			return n.Gateway
		}
	}
	return ""
}

func ruleLabel(rule domain.DnatRule) string {
	if rule.Description != "" {
		return rule.Description
	}
	if rule.RedirectIP != "" {
		return rule.RedirectIP
	}
	return rule.ID
}

func redirectLabel(rule domain.DnatRule) string {
	if rule.Description != "" {
		return rule.Description + " -> " + rule.RedirectIP
	}
	return rule.RedirectIP
}
