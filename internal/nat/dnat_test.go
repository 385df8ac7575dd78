package nat

import (
	"testing"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

func dnsRedirect(networkID, redirect string) domain.DnatRule {
	return domain.DnatRule{
		ID:         "nat-" + networkID,
		Type:       domain.NatTypeDNAT,
		Enabled:    true,
		Protocol:   domain.ProtocolUDP,
		RedirectIP: redirect,
		Destination: domain.DnatDestination{
			Address:       redirect,
			InvertAddress: true,
			PortSpec:      "53",
		},
		Source: domain.DnatSource{Kind: domain.FilterNetwork, NetworkID: networkID},
	}
}

func auditNetworks() []domain.NetworkInfo {
	return []domain.NetworkInfo{
		{ID: "net-default", Name: "Default", VLAN: 1, Subnet: "192.168.1.0/24", Gateway: "192.168.1.1"},
		{ID: "net-iot", Name: "IoT", VLAN: 20, Subnet: "192.168.20.0/24", Gateway: "192.168.20.1"},
	}
}

func TestIsDnsRedirect(t *testing.T) {
	tests := []struct {
		name string
		rule domain.DnatRule
		want bool
	}{
		{
			"udp 53",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolUDP,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			true,
		},
		{
			"tcp_udp 53",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolTCPUDP,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			true,
		},
		{
			"all protocols implied",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			true,
		},
		{
			"port range spanning 53",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolUDP,
				Destination: domain.DnatDestination{PortSpec: "50-60"}},
			true,
		},
		{
			"no port restriction",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolUDP},
			true,
		},
		{
			"tcp only",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolTCP,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			false,
		},
		{
			"wrong port",
			domain.DnatRule{Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolUDP,
				Destination: domain.DnatDestination{PortSpec: "5353"}},
			false,
		},
		{
			"disabled",
			domain.DnatRule{Type: domain.NatTypeDNAT, Protocol: domain.ProtocolUDP,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			false,
		},
		{
			"not dnat",
			domain.DnatRule{Type: "SNAT", Enabled: true, Protocol: domain.ProtocolUDP,
				Destination: domain.DnatDestination{PortSpec: "53"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsDnsRedirect(tt.rule)
			if got != tt.want {
				t.Errorf("IsDnsRedirect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_NetworkRedirectToThirdPartyResolver(t *testing.T) {
	networks := []domain.NetworkInfo{
		{ID: "net-default", Name: "Default", VLAN: 1, Subnet: "192.168.1.0/24",
			Gateway: "192.168.1.1", DNSServers: []string{"192.168.1.5"}},
	}
	rule := dnsRedirect("net-default", "192.168.1.5")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         networks,
		DnsControlActive: true,
		ThirdPartyIPs:    []string{"192.168.1.5"},
	})

	if !v.HasDnsRules {
		t.Error("expected HasDnsRules")
	}
	if !v.FullCoverage {
		t.Error("expected full coverage")
	}
	if !v.RedirectValid {
		t.Errorf("expected valid redirect, invalid list %v", v.InvalidRedirects)
	}
	if !v.DestinationValid {
		t.Error("expected valid destination filter")
	}
}

func TestValidate_RedirectToOwnGateway(t *testing.T) {
	rule := dnsRedirect("net-iot", "192.168.20.1")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if !v.RedirectValid {
		t.Errorf("redirect to the covered network's gateway should be valid, got %v", v.InvalidRedirects)
	}
	if v.FullCoverage {
		t.Error("one rule for one of two networks is not full coverage")
	}
	if len(v.Uncovered) != 1 || v.Uncovered[0].ID != "net-default" {
		t.Errorf("expected net-default uncovered, got %v", v.Uncovered)
	}
}

func TestValidate_RedirectToNativeGateway(t *testing.T) {
	// IoT clients redirected to the native VLAN's resolver address.
	rule := dnsRedirect("net-iot", "192.168.1.1")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if !v.RedirectValid {
		t.Errorf("redirect to the native VLAN gateway should be valid, got %v", v.InvalidRedirects)
	}
}

func TestValidate_RedirectToPublicResolverIsInvalid(t *testing.T) {
	rule := dnsRedirect("net-default", "8.8.8.8")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if v.RedirectValid {
		t.Error("redirect to a public resolver must be invalid")
	}
	if len(v.InvalidRedirects) != 1 {
		t.Fatalf("expected one invalid redirect entry, got %v", v.InvalidRedirects)
	}
}

func TestValidate_RedirectRangeMustBeFullyExpected(t *testing.T) {
	rule := dnsRedirect("net-default", "192.168.1.1-192.168.1.2")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if v.RedirectValid {
		t.Error("range containing a non-resolver address must be invalid")
	}
}

func TestValidate_RestrictedDestinationFilter(t *testing.T) {
	rule := dnsRedirect("net-default", "192.168.1.1")
	rule.Destination = domain.DnatDestination{Address: "8.8.8.8", InvertAddress: false, PortSpec: "53"}

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if v.DestinationValid {
		t.Error("non-inverted destination address must be flagged restricted")
	}
	if len(v.RestrictedRules) != 1 {
		t.Errorf("expected one restricted rule, got %v", v.RestrictedRules)
	}
}

func TestValidate_UnrestrictedDestinationFilter(t *testing.T) {
	rule := dnsRedirect("net-default", "192.168.1.1")
	rule.Destination = domain.DnatDestination{PortSpec: "53"}

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if !v.DestinationValid {
		t.Error("destination filter without an address is unrestricted")
	}
}

func TestValidate_ChecksGatedOnDnsControl(t *testing.T) {
	rule := dnsRedirect("net-default", "8.8.8.8")
	rule.Destination = domain.DnatDestination{Address: "8.8.8.8", PortSpec: "53"}

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: false,
	})

	if !v.RedirectValid || !v.DestinationValid {
		t.Error("validity checks must default to valid without an active DNS control mechanism")
	}
	if !v.HasDnsRules {
		t.Error("rule detection is not gated")
	}
	if v.FullCoverage {
		t.Error("coverage accounting is not gated either")
	}
}

func TestValidate_SingleIPRuleFlaggedAndSkipped(t *testing.T) {
	rule := dnsRedirect("", "8.8.8.8")
	rule.Source = domain.DnatSource{Kind: domain.FilterAddressAndPort, Address: "192.168.1.44"}

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if len(v.SingleIPRules) != 1 {
		t.Fatalf("expected one single-IP rule, got %v", v.SingleIPRules)
	}
	if v.FullCoverage {
		t.Error("a single-IP rule contributes no coverage")
	}
	if !v.RedirectValid {
		t.Error("validity checks do not apply to a single-IP rule")
	}
}

func TestValidate_UnionOfRulesCoversAllNetworksInAnyOrder(t *testing.T) {
	ruleA := dnsRedirect("net-default", "192.168.1.1")
	ruleB := dnsRedirect("net-iot", "192.168.20.1")

	for _, order := range [][]domain.DnatRule{
		{ruleA, ruleB},
		{ruleB, ruleA},
	} {
		v := Validate(Params{
			Rules:            order,
			Networks:         auditNetworks(),
			DnsControlActive: true,
		})
		if !v.FullCoverage {
			t.Errorf("union of per-network rules should be full coverage, uncovered %v", v.Uncovered)
		}
	}
}

func TestValidate_ExcludedVLANsDoNotBlockFullCoverage(t *testing.T) {
	rule := dnsRedirect("net-default", "192.168.1.1")

	v := Validate(Params{
		Rules:            []domain.DnatRule{rule},
		Networks:         auditNetworks(),
		ExcludedVLANs:    []int{20},
		DnsControlActive: true,
	})

	if !v.FullCoverage {
		t.Errorf("IoT VLAN excluded, covering Default should be full; uncovered %v", v.Uncovered)
	}
	if len(v.Excluded) != 1 || v.Excluded[0].ID != "net-iot" {
		t.Errorf("expected IoT excluded, got %v", v.Excluded)
	}
}

func TestValidate_NoApplicableRules(t *testing.T) {
	forward := domain.DnatRule{
		Type: domain.NatTypeDNAT, Enabled: true, Protocol: domain.ProtocolTCP,
		RedirectIP:  "192.168.1.80",
		Destination: domain.DnatDestination{PortSpec: "443"},
		Source:      domain.DnatSource{Kind: domain.FilterAny},
	}

	v := Validate(Params{
		Rules:            []domain.DnatRule{forward},
		Networks:         auditNetworks(),
		DnsControlActive: true,
	})

	if v.HasDnsRules {
		t.Error("a tcp/443 port forward is not a DNS redirect")
	}
	if v.FullCoverage {
		t.Error("nothing applied, coverage must be empty")
	}
	if !v.RedirectValid || !v.DestinationValid {
		t.Error("no applicable rules leaves both checks valid")
	}
}
