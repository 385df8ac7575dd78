package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// Score aggregates finding impacts into a 0-100 audit score.
func Score(result domain.Result) int {
	score := 100
	for _, f := range result.Findings {
		score -= f.ScoreImpact
	}
	if score < 0 {
		score = 0
	}
	return score
}

func Grade(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Render writes the human-readable audit report.
func Render(w io.Writer, result domain.Result) error {
	score := Score(result)

	var b strings.Builder
	b.WriteString("DNS Leak Audit\n")
	b.WriteString("==============\n\n")
	fmt.Fprintf(&b, "Score: %d (%s)\n\n", score, Grade(score))

	b.WriteString("Upstream resolution\n")
	fmt.Fprintf(&b, "  DoH configured:     %s\n", yesNo(result.DohConfigured))
	if result.ExpectedDnsProvider != "" {
		fmt.Fprintf(&b, "  Expected provider:  %s\n", result.ExpectedDnsProvider)
	}
	if len(result.WanDnsServers) > 0 {
		fmt.Fprintf(&b, "  WAN DNS servers:    %s\n", strings.Join(result.WanDnsServers, ", "))
	}
	fmt.Fprintf(&b, "  WAN matches DoH:    %s\n", yesNo(result.WanDnsMatchesDoH))
	for _, wan := range result.WanInterfaces {
		fmt.Fprintf(&b, "  %-8s static=%s order=%s provider=%s\n",
			wan.Interface+":", yesNo(wan.StaticDns), yesNo(wan.OrderCorrect), yesNo(wan.MatchProvider))
	}
	b.WriteString("\n")

	b.WriteString("Bypass block rules\n")
	fmt.Fprintf(&b, "  DNS-53:  %s\n", ruleOrNone(result.HasDns53BlockRule, result.Dns53BlockRuleName))
	fmt.Fprintf(&b, "  DoT:     %s\n", ruleOrNone(result.HasDotBlockRule, result.DotBlockRuleName))
	fmt.Fprintf(&b, "  DoQ:     %s\n", ruleOrNone(result.HasDoqBlockRule, result.DoqBlockRuleName))
	fmt.Fprintf(&b, "  DoH:     %s\n", ruleOrNone(result.HasDohBlockRule, result.DohBlockRuleName))
	fmt.Fprintf(&b, "  DoH3:    %s\n", ruleOrNone(result.HasDoh3BlockRule, result.Doh3BlockRuleName))
	b.WriteString("\n")

	if len(result.ThirdPartyDns) > 0 {
		b.WriteString("Third-party DNS\n")
		for _, info := range result.ThirdPartyDns {
			fmt.Fprintf(&b, "  %s on %s (%s)\n", info.Address, info.Network, info.Provider)
		}
		fmt.Fprintf(&b, "  Site-wide: %s\n\n", yesNo(result.ThirdPartyDnsSiteWide))
	}

	b.WriteString("Redirect coverage\n")
	fmt.Fprintf(&b, "  Redirect rules:     %s\n", yesNo(result.HasDnatDnsRules))
	fmt.Fprintf(&b, "  Full coverage:      %s\n", yesNo(result.DnatProvidesFullCoverage))
	if len(result.DnatCoveredNetworks) > 0 {
		fmt.Fprintf(&b, "  Covered:            %s\n", strings.Join(result.DnatCoveredNetworks, ", "))
	}
	if len(result.DnatUncoveredNetworks) > 0 {
		fmt.Fprintf(&b, "  Uncovered:          %s\n", strings.Join(result.DnatUncoveredNetworks, ", "))
	}
	if len(result.DnatExcludedNetworks) > 0 {
		fmt.Fprintf(&b, "  Excluded:           %s\n", strings.Join(result.DnatExcludedNetworks, ", "))
	}
	b.WriteString("\n")

	if len(result.Findings) > 0 {
		b.WriteString("Findings\n")
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "  [%s] %s (%s", f.Severity, f.Message, f.Type)
			if f.ScoreImpact > 0 {
				fmt.Fprintf(&b, ", -%d", f.ScoreImpact)
			}
			b.WriteString(")\n")
		}
		b.WriteString("\n")
	}

	if len(result.HardeningNotes) > 0 {
		b.WriteString("Hardening notes\n")
		for _, note := range result.HardeningNotes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderJSON writes the result with the score folded in, for machine
// consumers.
func RenderJSON(w io.Writer, result domain.Result) error {
	payload := struct {
		Score int    `json:"score"`
		Grade string `json:"grade"`
		domain.Result
	}{
		Score:  Score(result),
		Grade:  Grade(Score(result)),
		Result: result,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func ruleOrNone(found bool, name string) string {
	if !found {
		return "(none)"
	}
	if name == "" {
		return "(unnamed rule)"
	}
	return name
}
