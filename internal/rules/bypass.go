package rules

import "github.com/ekobres/unifi-dns-audit/internal/domain"

// BlockRuleMatch records the first enabled rule found to block one DNS
// bypass protocol. Source is the matching rule's source selector, kept so
// callers can report which networks the block actually reaches.
type BlockRuleMatch struct {
	Found          bool
	RuleName       string
	BlockedDomains []string
	Source         domain.RuleSource
}

// BypassResult holds one match slot per DNS bypass protocol.
type BypassResult struct {
	Dns53 BlockRuleMatch
	Dot   BlockRuleMatch
	Doq   BlockRuleMatch
	Doh   BlockRuleMatch
	Doh3  BlockRuleMatch
}

type bypassCheck struct {
	port     int
	protocol domain.Protocol
	webBased bool
}

// DetectBypassBlocks reports, per DNS bypass protocol, the first enabled
// block rule in input order that covers it. Once a protocol is satisfied no
// further rules are inspected for it.
func DetectBypassBlocks(ruleList []domain.FirewallRule, externalZoneID string) BypassResult {
	return BypassResult{
		Dns53: findBlockRule(ruleList, bypassCheck{port: 53, protocol: domain.ProtocolUDP}, externalZoneID),
		Dot:   findBlockRule(ruleList, bypassCheck{port: 853, protocol: domain.ProtocolTCP}, externalZoneID),
		Doq:   findBlockRule(ruleList, bypassCheck{port: 853, protocol: domain.ProtocolUDP}, externalZoneID),
		Doh:   findBlockRule(ruleList, bypassCheck{port: 443, protocol: domain.ProtocolTCP, webBased: true}, externalZoneID),
		Doh3:  findBlockRule(ruleList, bypassCheck{port: 443, protocol: domain.ProtocolUDP, webBased: true}, externalZoneID),
	}
}

func findBlockRule(ruleList []domain.FirewallRule, check bypassCheck, externalZoneID string) BlockRuleMatch {
	for _, rule := range ruleList {
		if !rule.Enabled || rule.Action != domain.ActionBlock {
			continue
		}
		if !ruleBlocksProtocol(rule, check, externalZoneID) {
			continue
		}
		match := BlockRuleMatch{Found: true, RuleName: rule.Name, Source: rule.Source}
		if check.webBased && rule.Destination.MatchingTarget == domain.DestTargetWeb {
			match.BlockedDomains = rule.Destination.WebDomains
		}
		return match
	}
	return BlockRuleMatch{}
}

func ruleBlocksProtocol(rule domain.FirewallRule, check bypassCheck, externalZoneID string) bool {
	if !ProtocolIncludes(rule, check.protocol) {
		return false
	}
	if !PortIncludes(rule, check.port) {
		return false
	}
	if !destinationTargetCovers(rule, check) {
		return false
	}
	return zoneAllows(rule, check, externalZoneID)
}

// destinationTargetCovers applies the matching-target leg of the bypass
// table. App rules carrying a DNS application id cover every protocol the
// protocol/port legs admit; web rules only ever cover the HTTPS variants;
// the port-based protocols accept plain PORT and ANY targets.
func destinationTargetCovers(rule domain.FirewallRule, check bypassCheck) bool {
	target := rule.Destination.MatchingTarget
	if target == domain.DestTargetApp {
		return hasDnsApp(rule.Destination.AppIDs)
	}
	if check.webBased {
		return target == domain.DestTargetWeb
	}
	return target != domain.DestTargetWeb
}

// zoneAllows applies the zone leg of the bypass table. A rule pinned to a
// destination zone counts only when that zone is the supplied external
// zone; a rule without one cannot be proven wrong-zone and always counts.
// Legacy ruleset-tagged rules carry chain-specific exceptions: blocking
// udp/53 on LAN_IN also breaks the gateway's own resolver path, and
// blocking 853 on GUEST_IN says nothing about guests that resolve straight
// against external DNS.
func zoneAllows(rule domain.FirewallRule, check bypassCheck, externalZoneID string) bool {
	if rule.Destination.ZoneID != "" {
		if externalZoneID == "" {
			return true
		}
		return rule.Destination.ZoneID == externalZoneID
	}
	if rule.Ruleset != "" {
		switch {
		case check.port == 53 && rule.Ruleset == domain.RulesetLANIn:
			return false
		case check.port == 853 && rule.Ruleset == domain.RulesetGuestIn:
			return false
		}
	}
	return true
}
