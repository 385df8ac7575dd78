package rules

import (
	"testing"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

func TestProtocolIncludes(t *testing.T) {
	tests := []struct {
		name      string
		family    domain.Protocol
		opposite  bool
		candidate domain.Protocol
		want      bool
	}{
		{"tcp matches tcp", domain.ProtocolTCP, false, domain.ProtocolTCP, true},
		{"tcp not udp", domain.ProtocolTCP, false, domain.ProtocolUDP, false},
		{"udp matches udp", domain.ProtocolUDP, false, domain.ProtocolUDP, true},
		{"tcp_udp matches tcp", domain.ProtocolTCPUDP, false, domain.ProtocolTCP, true},
		{"tcp_udp matches udp", domain.ProtocolTCPUDP, false, domain.ProtocolUDP, true},
		{"tcp_udp not icmp", domain.ProtocolTCPUDP, false, domain.ProtocolICMP, false},
		{"all matches tcp", domain.ProtocolAll, false, domain.ProtocolTCP, true},
		{"all matches icmp", domain.ProtocolAll, false, domain.ProtocolICMP, true},
		{"absent matches udp", "", false, domain.ProtocolUDP, true},
		{"icmp not tcp", domain.ProtocolICMP, false, domain.ProtocolTCP, false},

		{"inverted tcp matches udp", domain.ProtocolTCP, true, domain.ProtocolUDP, true},
		{"inverted tcp not tcp", domain.ProtocolTCP, true, domain.ProtocolTCP, false},
		{"inverted udp matches tcp", domain.ProtocolUDP, true, domain.ProtocolTCP, true},
		{"inverted tcp_udp matches nothing", domain.ProtocolTCPUDP, true, domain.ProtocolTCP, false},
		{"inverted all matches nothing", domain.ProtocolAll, true, domain.ProtocolUDP, false},
		{"inverted icmp matches tcp", domain.ProtocolICMP, true, domain.ProtocolTCP, true},
		{"inverted icmp matches udp", domain.ProtocolICMP, true, domain.ProtocolUDP, true},
		{"inverted never matches icmp", domain.ProtocolTCP, true, domain.ProtocolICMP, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := domain.FirewallRule{Protocol: tt.family, MatchOppositeProtocol: tt.opposite}
			got := ProtocolIncludes(rule, tt.candidate)
			if got != tt.want {
				t.Errorf("ProtocolIncludes(%q opposite=%v, %q) = %v, want %v",
					tt.family, tt.opposite, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestProtocolIncludes_DoubleNegationIsIdentity(t *testing.T) {
	families := []domain.Protocol{domain.ProtocolTCP, domain.ProtocolUDP, domain.ProtocolTCPUDP, domain.ProtocolAll}
	for _, family := range families {
		for _, candidate := range []domain.Protocol{domain.ProtocolTCP, domain.ProtocolUDP} {
			plain := ProtocolIncludes(domain.FirewallRule{Protocol: family}, candidate)

			toggled := domain.FirewallRule{Protocol: family}
			toggled.MatchOppositeProtocol = !toggled.MatchOppositeProtocol
			toggled.MatchOppositeProtocol = !toggled.MatchOppositeProtocol

			if got := ProtocolIncludes(toggled, candidate); got != plain {
				t.Errorf("%s/%s: double-toggled inversion changed result from %v to %v",
					family, candidate, plain, got)
			}
		}
	}
}
