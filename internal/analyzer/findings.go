package analyzer

import (
	"fmt"
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/coverage"
	"github.com/ekobres/unifi-dns-audit/internal/domain"
	"github.com/ekobres/unifi-dns-audit/internal/rules"
)

// collectFindings turns the evaluated result into the ordered issue list.
// Ordering is stable: bypass protocols first, then WAN DNS, NAT redirects,
// device configuration, and informational third-party entries last.
func collectFindings(result domain.Result, restrictedRules []string, dnsControl bool) []domain.Finding {
	var findings []domain.Finding

	bypassGaps := []struct {
		found    bool
		ftype    domain.FindingType
		severity domain.Severity
		impact   int
		message  string
	}{
		{result.HasDns53BlockRule, domain.FindingBypass53, domain.SeverityHigh, 20,
			"no firewall rule blocks outbound plain DNS (udp/53); clients can resolve against any external server"},
		{result.HasDotBlockRule, domain.FindingBypassDoT, domain.SeverityMedium, 10,
			"no firewall rule blocks DNS-over-TLS (tcp/853)"},
		{result.HasDoqBlockRule, domain.FindingBypassDoQ, domain.SeverityMedium, 10,
			"no firewall rule blocks DNS-over-QUIC (udp/853)"},
		{result.HasDohBlockRule, domain.FindingBypassDoH, domain.SeverityMedium, 10,
			"no firewall rule blocks DNS-over-HTTPS (tcp/443 web or app match)"},
		{result.HasDoh3BlockRule, domain.FindingBypassDoH3, domain.SeverityLow, 5,
			"no firewall rule blocks DNS-over-HTTP/3 (udp/443 web or app match)"},
	}
	for _, gap := range bypassGaps {
		if gap.found {
			continue
		}
		findings = append(findings, domain.Finding{
			Type:        gap.ftype,
			Severity:    gap.severity,
			Message:     gap.message,
			ScoreImpact: gap.impact,
		})
	}

	findings = append(findings, wanFindings(result)...)
	findings = append(findings, dnatFindings(result, restrictedRules, dnsControl)...)

	if result.DeviceDns.Misconfigured > 0 {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDeviceDns,
			Severity:    domain.SeverityLow,
			Message:     "devices with static DNS pointing outside the audited resolution path: " + strings.Join(result.DeviceDns.DeviceNames, ", "),
			ScoreImpact: 3,
		})
	}

	findings = append(findings, thirdPartyFindings(result.ThirdPartyDns)...)
	return findings
}

func wanFindings(result domain.Result) []domain.Finding {
	var findings []domain.Finding

	if result.DohConfigured && result.ExpectedDnsProvider != "" && !result.WanDnsMatchesDoH {
		message := fmt.Sprintf("no static WAN DNS servers are configured for the expected provider %s", result.ExpectedDnsProvider)
		if len(result.WanDnsServers) > 0 {
			message = fmt.Sprintf("WAN DNS servers %s do not match the expected provider %s",
				strings.Join(result.WanDnsServers, ", "), result.ExpectedDnsProvider)
		}
		findings = append(findings, domain.Finding{
			Type:        domain.FindingWanMismatch,
			Severity:    domain.SeverityMedium,
			Message:     message,
			ScoreImpact: 10,
			Metadata: map[string]string{
				"provider": result.ExpectedDnsProvider,
				"servers":  strings.Join(result.WanDnsServers, ","),
			},
		})
	}

	for _, wan := range result.WanInterfaces {
		if !wan.StaticDns {
			findings = append(findings, domain.Finding{
				Type:        domain.FindingWanNotStatic,
				Severity:    domain.SeverityLow,
				Message:     fmt.Sprintf("WAN interface %s takes ISP-assigned DNS instead of static servers", wan.Interface),
				Device:      wan.Interface,
				ScoreImpact: 5,
			})
		}
		if !wan.OrderCorrect {
			findings = append(findings, domain.Finding{
				Type:        domain.FindingWanOrder,
				Severity:    domain.SeverityLow,
				Message:     fmt.Sprintf("WAN interface %s lists the expected provider behind a foreign primary resolver", wan.Interface),
				Device:      wan.Interface,
				ScoreImpact: 3,
			})
		}
	}
	return findings
}

func dnatFindings(result domain.Result, restrictedRules []string, dnsControl bool) []domain.Finding {
	var findings []domain.Finding

	if dnsControl && !result.HasDnatDnsRules {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDnatMissing,
			Severity:    domain.SeverityHigh,
			Message:     "DNS control is active but no NAT rule redirects udp/53 to the local resolver",
			ScoreImpact: 15,
		})
	}
	if result.HasDnatDnsRules && !result.DnatProvidesFullCoverage {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDnatPartialCoverage,
			Severity:    domain.SeverityMedium,
			Message:     "DNS redirect rules do not cover networks: " + strings.Join(result.DnatUncoveredNetworks, ", "),
			ScoreImpact: 10,
			Metadata:    map[string]string{"uncovered": strings.Join(result.DnatUncoveredNetworks, ",")},
		})
	}
	if len(result.DnatSingleIPRules) > 0 {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDnatSingleIP,
			Severity:    domain.SeverityLow,
			Message:     "DNS redirect rules restricted to single client addresses: " + strings.Join(result.DnatSingleIPRules, ", "),
			ScoreImpact: 3,
		})
	}
	if !result.DnatDestinationFilterIsValid {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDnatRestrictedDestination,
			Severity:    domain.SeverityMedium,
			Message:     "DNS redirect rules only catch traffic already addressed to the resolver: " + strings.Join(restrictedRules, ", "),
			ScoreImpact: 8,
		})
	}
	if !result.DnatRedirectTargetIsValid {
		findings = append(findings, domain.Finding{
			Type:        domain.FindingDnatWrongTarget,
			Severity:    domain.SeverityHigh,
			Message:     "DNS redirect rules point at unexpected resolvers: " + strings.Join(result.DnatInvalidRedirects, ", "),
			ScoreImpact: 12,
			Metadata:    map[string]string{"redirects": strings.Join(result.DnatInvalidRedirects, ",")},
		})
	}
	return findings
}

// thirdPartyFindings emits one informational entry per distinct resolver
// address, naming every network that uses it.
func thirdPartyFindings(infos []domain.ThirdPartyDnsInfo) []domain.Finding {
	var findings []domain.Finding
	byAddress := make(map[string][]string)
	var order []string
	labels := make(map[string]string)
	for _, info := range infos {
		if _, seen := byAddress[info.Address]; !seen {
			order = append(order, info.Address)
			labels[info.Address] = info.Provider
		}
		byAddress[info.Address] = append(byAddress[info.Address], info.Network)
	}
	for _, addr := range order {
		findings = append(findings, domain.Finding{
			Type:     domain.FindingThirdParty,
			Severity: domain.SeverityInfo,
			Message: fmt.Sprintf("third-party DNS server %s (%s) serves networks: %s",
				addr, labels[addr], strings.Join(byAddress[addr], ", ")),
		})
	}
	return findings
}

// hardeningNotes adds free-text advice that goes beyond the issue list.
func hardeningNotes(result domain.Result, snap domain.Snapshot, bypass rules.BypassResult) []string {
	var notes []string

	if bypass.Dns53.Found {
		set := coverage.NewSet(snap.Networks, nil)
		set.Apply(coverage.FromRuleSource(bypass.Dns53.Source))
		if unreached := set.Uncovered(); len(unreached) > 0 {
			notes = append(notes, fmt.Sprintf("block rule %q does not apply to networks: %s",
				bypass.Dns53.RuleName, strings.Join(networkNames(unreached), ", ")))
		}
	}

	if result.HasDns53BlockRule && !result.HasDohBlockRule {
		notes = append(notes, "plain DNS is blocked but browsers can fall back to DNS-over-HTTPS; add web or app based block rules for the DoH endpoints")
	}

	if result.DohConfigured && (!result.HasDotBlockRule || !result.HasDoqBlockRule) {
		notes = append(notes, "the gateway resolves upstream via DoH; blocking tcp/853 and udp/853 keeps clients from pinning their own encrypted resolvers")
	}

	if result.HasDnatDnsRules {
		var guests []string
		uncovered := make(map[string]bool, len(result.DnatUncoveredNetworks))
		for _, name := range result.DnatUncoveredNetworks {
			uncovered[name] = true
		}
		for _, n := range snap.Networks {
			if n.IsGuest && uncovered[n.Name] {
				guests = append(guests, n.Name)
			}
		}
		if len(guests) > 0 {
			notes = append(notes, "guest networks outside the redirect rules resolve directly against external DNS: "+strings.Join(guests, ", "))
		}
	}

	if len(result.DnatExcludedNetworks) > 0 {
		notes = append(notes, "networks excluded from redirect coverage requirements: "+strings.Join(result.DnatExcludedNetworks, ", "))
	}

	return notes
}
