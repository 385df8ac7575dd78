package rules

import (
	"testing"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

func blockRule(name string, protocol domain.Protocol, portSpec string) domain.FirewallRule {
	return domain.FirewallRule{
		Name:     name,
		Enabled:  true,
		Action:   domain.ActionBlock,
		Protocol: protocol,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetPort,
			PortSpec:       portSpec,
		},
	}
}

func TestDetectBypassBlocks_Dns53(t *testing.T) {
	rules := []domain.FirewallRule{blockRule("Block DNS", domain.ProtocolUDP, "53")}

	result := DetectBypassBlocks(rules, "")

	if !result.Dns53.Found {
		t.Error("expected udp/53 block rule to satisfy DNS-53")
	}
	if result.Dns53.RuleName != "Block DNS" {
		t.Errorf("expected rule name recorded, got %q", result.Dns53.RuleName)
	}
	if result.Dot.Found || result.Doq.Found || result.Doh.Found || result.Doh3.Found {
		t.Error("udp/53 rule must not satisfy any other protocol")
	}
}

func TestDetectBypassBlocks_Dns53_TcpOnlyDoesNotCount(t *testing.T) {
	rules := []domain.FirewallRule{blockRule("Block DNS", domain.ProtocolTCP, "53")}

	result := DetectBypassBlocks(rules, "")

	if result.Dns53.Found {
		t.Error("tcp/53 rule must not satisfy DNS-53, which requires udp")
	}
}

func TestDetectBypassBlocks_TcpUdp853CoversDotAndDoq(t *testing.T) {
	rules := []domain.FirewallRule{blockRule("Block secure DNS", domain.ProtocolTCPUDP, "853")}

	result := DetectBypassBlocks(rules, "")

	if !result.Dot.Found {
		t.Error("tcp_udp/853 rule should satisfy DoT")
	}
	if !result.Doq.Found {
		t.Error("tcp_udp/853 rule should satisfy DoQ")
	}
	if result.Dns53.Found {
		t.Error("853 rule must not satisfy DNS-53")
	}
}

func TestDetectBypassBlocks_OppositePortsDoesNotCount(t *testing.T) {
	rule := blockRule("Everything but DNS", domain.ProtocolUDP, "53")
	rule.Destination.MatchOppositePorts = true

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if result.Dns53.Found {
		t.Error("inverted port 53 rule matches every port except 53")
	}
}

func TestDetectBypassBlocks_DisabledAndAllowSkipped(t *testing.T) {
	disabled := blockRule("Old block", domain.ProtocolUDP, "53")
	disabled.Enabled = false
	allow := blockRule("Permit DNS", domain.ProtocolUDP, "53")
	allow.Action = domain.ActionAllow

	result := DetectBypassBlocks([]domain.FirewallRule{disabled, allow}, "")

	if result.Dns53.Found {
		t.Error("disabled or allow rules must not count as block coverage")
	}
}

func TestDetectBypassBlocks_FirstMatchWins(t *testing.T) {
	rules := []domain.FirewallRule{
		blockRule("First", domain.ProtocolUDP, "53"),
		blockRule("Second", domain.ProtocolUDP, "53"),
	}

	result := DetectBypassBlocks(rules, "")

	if result.Dns53.RuleName != "First" {
		t.Errorf("expected first matching rule recorded, got %q", result.Dns53.RuleName)
	}
}

func TestDetectBypassBlocks_DohRequiresWebOrApp(t *testing.T) {
	portOnly := blockRule("Port 443 block", domain.ProtocolTCP, "443")

	result := DetectBypassBlocks([]domain.FirewallRule{portOnly}, "")

	if result.Doh.Found {
		t.Error("plain tcp/443 port rule would break all HTTPS; it must not count as DoH coverage")
	}
}

func TestDetectBypassBlocks_DohWebRule(t *testing.T) {
	rule := domain.FirewallRule{
		Name:     "Block DoH domains",
		Enabled:  true,
		Action:   domain.ActionBlock,
		Protocol: domain.ProtocolTCP,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetWeb,
			PortSpec:       "443",
			WebDomains:     []string{"dns.google", "cloudflare-dns.com"},
		},
	}

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if !result.Doh.Found {
		t.Fatal("web rule on tcp/443 should satisfy DoH")
	}
	if len(result.Doh.BlockedDomains) != 2 {
		t.Errorf("expected blocked domains recorded, got %v", result.Doh.BlockedDomains)
	}
	if result.Doh3.Found {
		t.Error("tcp rule must not satisfy DoH3, which requires udp")
	}
}

func TestDetectBypassBlocks_Doh3WebRule(t *testing.T) {
	rule := domain.FirewallRule{
		Name:     "Block QUIC DoH",
		Enabled:  true,
		Action:   domain.ActionBlock,
		Protocol: domain.ProtocolUDP,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetWeb,
			PortSpec:       "443",
			WebDomains:     []string{"dns.google"},
		},
	}

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if !result.Doh3.Found {
		t.Error("web rule on udp/443 should satisfy DoH3")
	}
	if result.Doh.Found {
		t.Error("udp rule must not satisfy DoH, which requires tcp")
	}
}

func TestDetectBypassBlocks_AppRuleCoversEverything(t *testing.T) {
	rule := domain.FirewallRule{
		Name:    "Block DNS apps",
		Enabled: true,
		Action:  domain.ActionBlock,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetApp,
			AppIDs:         []int{AppIDDns, AppIDDnsOverHTTPS},
		},
	}

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if !result.Dns53.Found || !result.Dot.Found || !result.Doq.Found || !result.Doh.Found || !result.Doh3.Found {
		t.Errorf("app rule without protocol defaults to all and should cover every variant, got %+v", result)
	}
}

func TestDetectBypassBlocks_AppRuleWithProtocolLimited(t *testing.T) {
	rule := domain.FirewallRule{
		Name:     "Block DNS apps udp",
		Enabled:  true,
		Action:   domain.ActionBlock,
		Protocol: domain.ProtocolUDP,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetApp,
			AppIDs:         []int{AppIDDnsOverTLS},
		},
	}

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if result.Dot.Found {
		t.Error("udp-only app rule must not satisfy DoT (tcp)")
	}
	if !result.Doq.Found || !result.Dns53.Found || !result.Doh3.Found {
		t.Errorf("udp-only app rule should satisfy the udp variants, got %+v", result)
	}
}

func TestDetectBypassBlocks_AppRuleUnrelatedApp(t *testing.T) {
	rule := domain.FirewallRule{
		Name:     "Block games",
		Enabled:  true,
		Action:   domain.ActionBlock,
		Protocol: domain.ProtocolAll,
		Destination: domain.RuleDestination{
			MatchingTarget: domain.DestTargetApp,
			AppIDs:         []int{42},
		},
	}

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if result.Dns53.Found || result.Doh.Found {
		t.Error("app rule without a DNS app id must not count")
	}
}

func TestDetectBypassBlocks_ZoneCondition(t *testing.T) {
	external := blockRule("To external", domain.ProtocolUDP, "53")
	external.Destination.ZoneID = "zone-ext"
	internal := blockRule("To internal", domain.ProtocolUDP, "53")
	internal.Destination.ZoneID = "zone-int"

	result := DetectBypassBlocks([]domain.FirewallRule{internal, external}, "zone-ext")

	if !result.Dns53.Found {
		t.Fatal("rule targeting the external zone should count")
	}
	if result.Dns53.RuleName != "To external" {
		t.Errorf("wrong-zone rule counted: got %q", result.Dns53.RuleName)
	}
}

func TestDetectBypassBlocks_NoZoneAlwaysCounts(t *testing.T) {
	rule := blockRule("Zoneless", domain.ProtocolUDP, "53")

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "zone-ext")

	if !result.Dns53.Found {
		t.Error("zone-agnostic rule should count even when an external zone id is supplied")
	}
}

func TestDetectBypassBlocks_LegacyRulesets(t *testing.T) {
	tests := []struct {
		name    string
		ruleset string
		spec    string
		proto   domain.Protocol
		check   func(BypassResult) bool
		want    bool
	}{
		{"WAN_OUT udp53 counts", domain.RulesetWANOut, "53", domain.ProtocolUDP, func(r BypassResult) bool { return r.Dns53.Found }, true},
		{"LAN_IN udp53 does not count", domain.RulesetLANIn, "53", domain.ProtocolUDP, func(r BypassResult) bool { return r.Dns53.Found }, false},
		{"LAN_IN tcp853 counts for DoT", domain.RulesetLANIn, "853", domain.ProtocolTCP, func(r BypassResult) bool { return r.Dot.Found }, true},
		{"LAN_IN udp853 counts for DoQ", domain.RulesetLANIn, "853", domain.ProtocolUDP, func(r BypassResult) bool { return r.Doq.Found }, true},
		{"GUEST_IN tcp853 does not count", domain.RulesetGuestIn, "853", domain.ProtocolTCP, func(r BypassResult) bool { return r.Dot.Found }, false},
		{"GUEST_IN udp853 does not count", domain.RulesetGuestIn, "853", domain.ProtocolUDP, func(r BypassResult) bool { return r.Doq.Found }, false},
		{"GUEST_IN udp53 counts", domain.RulesetGuestIn, "53", domain.ProtocolUDP, func(r BypassResult) bool { return r.Dns53.Found }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := blockRule(tt.name, tt.proto, tt.spec)
			rule.Ruleset = tt.ruleset

			result := DetectBypassBlocks([]domain.FirewallRule{rule}, "zone-ext")

			if got := tt.check(result); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDetectBypassBlocks_InversionAxesComposeIndependently(t *testing.T) {
	// Literal tcp + opposite protocol means udp; literal 443 + opposite
	// ports means everything except 443. The pair should block udp/53.
	rule := blockRule("Inverted both", domain.ProtocolTCP, "443")
	rule.MatchOppositeProtocol = true
	rule.Destination.MatchOppositePorts = true

	result := DetectBypassBlocks([]domain.FirewallRule{rule}, "")

	if !result.Dns53.Found {
		t.Error("inverted tcp + inverted 443 should cover udp/53")
	}
	if result.Doh3.Found {
		t.Error("inverted 443 must not cover udp/443")
	}
}
