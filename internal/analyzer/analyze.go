package analyzer

import (
	"context"
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
	"github.com/ekobres/unifi-dns-audit/internal/nat"
	"github.com/ekobres/unifi-dns-audit/internal/provider"
	"github.com/ekobres/unifi-dns-audit/internal/rules"
)

// Analyze evaluates one configuration snapshot and returns the full audit
// result. The evaluation itself is pure; the only I/O is the optional
// third-party resolver probe, whose faults degrade to "no signature".
// Missing snapshot pieces read as "nothing configured".
func Analyze(ctx context.Context, snap domain.Snapshot, opts domain.Options) domain.Result {
	reg := provider.NewRegistry()
	var result domain.Result

	bypass := rules.DetectBypassBlocks(snap.Rules, externalZoneID(snap, opts))
	result.HasDns53BlockRule = bypass.Dns53.Found
	result.Dns53BlockRuleName = bypass.Dns53.RuleName
	result.HasDotBlockRule = bypass.Dot.Found
	result.DotBlockRuleName = bypass.Dot.RuleName
	result.HasDoqBlockRule = bypass.Doq.Found
	result.DoqBlockRuleName = bypass.Doq.RuleName
	result.HasDohBlockRule = bypass.Doh.Found
	result.DohBlockRuleName = bypass.Doh.RuleName
	result.DohBlockedDomains = bypass.Doh.BlockedDomains
	result.HasDoh3BlockRule = bypass.Doh3.Found
	result.Doh3BlockRuleName = bypass.Doh3.RuleName
	result.Doh3BlockedDomains = bypass.Doh3.BlockedDomains

	result.DohConfigured = snap.Doh.IsActive()
	expected, hasProvider := reg.ExpectedProvider(snap.Doh)
	if hasProvider {
		result.ExpectedDnsProvider = expected.Name
	}

	wans := snap.WanDns
	if len(wans) == 0 {
		wans = wanFromDevices(snap.Devices)
	}
	details, allMatch := provider.MatchWans(expected, hasProvider, wans)
	result.WanInterfaces = details
	result.WanDnsServers = combinedWanServers(wans)
	result.WanDnsMatchesDoH = allMatch

	result.ThirdPartyDns = provider.DetectThirdParty(ctx, reg, snap.Networks, opts.Prober)
	result.ThirdPartyDnsSiteWide = provider.SiteWide(result.ThirdPartyDns, snap.Networks)

	dnsControl := result.DohConfigured || len(result.ThirdPartyDns) > 0
	var thirdPartyIPs []string
	if result.ThirdPartyDnsSiteWide {
		thirdPartyIPs = provider.Addresses(result.ThirdPartyDns)
	}
	validation := nat.Validate(nat.Params{
		Rules:            snap.DnatRules,
		Networks:         snap.Networks,
		ExcludedVLANs:    opts.ExcludedVLANs,
		NativeVLAN:       opts.NativeVLAN,
		DnsControlActive: dnsControl,
		ThirdPartyIPs:    thirdPartyIPs,
	})
	result.HasDnatDnsRules = validation.HasDnsRules
	result.DnatProvidesFullCoverage = validation.FullCoverage
	result.DnatRedirectTargetIsValid = validation.RedirectValid
	result.DnatDestinationFilterIsValid = validation.DestinationValid
	result.DnatCoveredNetworks = networkNames(validation.Covered)
	result.DnatUncoveredNetworks = networkNames(validation.Uncovered)
	result.DnatExcludedNetworks = networkNames(validation.Excluded)
	result.DnatSingleIPRules = validation.SingleIPRules
	result.DnatInvalidRedirects = validation.InvalidRedirects

	result.DeviceDns = summarizeDevices(snap.Devices, snap.Networks, result.ThirdPartyDns)

	result.Findings = collectFindings(result, validation.RestrictedRules, dnsControl)
	result.HardeningNotes = hardeningNotes(result, snap, bypass)

	return result
}

// externalZoneID prefers the caller's explicit zone and falls back to the
// snapshot's zone table.
func externalZoneID(snap domain.Snapshot, opts domain.Options) string {
	if opts.ExternalZoneID != "" {
		return opts.ExternalZoneID
	}
	for _, z := range snap.Zones {
		if z.Key == domain.ZoneKeyExternal {
			return z.ID
		}
	}
	return ""
}

// wanFromDevices recovers WAN DNS settings from raw device records when
// the settings snapshot carried none.
func wanFromDevices(devices []domain.DeviceInfo) []domain.WanDnsConfig {
	var out []domain.WanDnsConfig
	for _, d := range devices {
		for _, w := range d.Wans {
			out = append(out, domain.WanDnsConfig{
				Interface: w.Name,
				Mode:      w.Mode,
				Servers:   w.DNS,
			})
		}
	}
	return out
}

func combinedWanServers(wans []domain.WanDnsConfig) []string {
	var out []string
	seen := make(map[string]bool)
	for _, wan := range wans {
		for _, ip := range wan.Servers {
			if ip == "" || seen[ip] {
				continue
			}
			seen[ip] = true
			out = append(out, ip)
		}
	}
	return out
}

// summarizeDevices counts infrastructure devices carrying static DNS and
// flags the ones whose servers point outside the audited resolution path:
// anything that is not a network gateway, the device's own gateway, or a
// detected third-party resolver.
func summarizeDevices(devices []domain.DeviceInfo, networks []domain.NetworkInfo, thirdParty []domain.ThirdPartyDnsInfo) domain.DeviceDnsSummary {
	approved := make(map[string]bool)
	for _, n := range networks {
		if n.Gateway != "" {
			approved[n.Gateway] = true
		}
	}
	for _, info := range thirdParty {
		approved[info.Address] = true
	}

	summary := domain.DeviceDnsSummary{Total: len(devices)}
	for _, d := range devices {
		if !strings.EqualFold(d.ConfigNetwork.Type, "static") || len(d.ConfigNetwork.DNS) == 0 {
			continue
		}
		summary.StaticDns++
		for _, ip := range d.ConfigNetwork.DNS {
			if ip == "" || approved[ip] || ip == d.ConfigNetwork.Gateway {
				continue
			}
			summary.Misconfigured++
			summary.DeviceNames = append(summary.DeviceNames, d.Name)
			break
		}
	}
	return summary
}

func networkNames(networks []domain.NetworkInfo) []string {
	if len(networks) == 0 {
		return nil
	}
	out := make([]string, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.Name)
	}
	return out
}
