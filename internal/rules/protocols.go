package rules

import "github.com/ekobres/unifi-dns-audit/internal/domain"

// ProtocolIncludes reports whether the rule's effective protocol set
// contains the candidate protocol. The literal family is widened to a set
// (tcp_udp covers both, all and absent cover everything). When
// MatchOppositeProtocol is set the effective set is the complement of the
// literal set within {tcp, udp}; families outside that pair (icmp, gre)
// contribute nothing to the inverted set.
func ProtocolIncludes(rule domain.FirewallRule, candidate domain.Protocol) bool {
	if rule.MatchOppositeProtocol {
		if candidate != domain.ProtocolTCP && candidate != domain.ProtocolUDP {
			return false
		}
		return !familyIncludes(rule.Protocol, candidate)
	}
	return familyIncludes(rule.Protocol, candidate)
}

// FamilyIncludes is the bare family membership test for records that
// carry a protocol family without an inversion flag, such as NAT entries.
func FamilyIncludes(family, candidate domain.Protocol) bool {
	return familyIncludes(family, candidate)
}

func familyIncludes(family, candidate domain.Protocol) bool {
	switch family {
	case "", domain.ProtocolAll:
		return true
	case domain.ProtocolTCPUDP:
		return candidate == domain.ProtocolTCP || candidate == domain.ProtocolUDP
	default:
		return family == candidate
	}
}
