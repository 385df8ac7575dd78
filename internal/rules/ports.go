package rules

import (
	"strconv"
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

type PortRange struct {
	From int
	To   int
}

func (p PortRange) Contains(port int) bool {
	return port >= p.From && port <= p.To
}

// ParsePortSpec expands a literal port expression into ranges. Accepted
// forms: "53", "80,443", "8000-8080", "8000:8080", and comma-separated
// mixes of those. Unparsable or reversed tokens expand to nothing.
func ParsePortSpec(spec string) []PortRange {
	var ranges []PortRange
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		sep := ""
		switch {
		case strings.Contains(token, "-"):
			sep = "-"
		case strings.Contains(token, ":"):
			sep = ":"
		}
		if sep != "" {
			parts := strings.SplitN(token, sep, 2)
			from, errFrom := strconv.Atoi(strings.TrimSpace(parts[0]))
			to, errTo := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errFrom != nil || errTo != nil || from > to {
				continue
			}
			ranges = append(ranges, PortRange{From: from, To: to})
			continue
		}
		port, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		ranges = append(ranges, PortRange{From: port, To: port})
	}
	return ranges
}

// PortIncludes reports whether the rule's effective destination port set
// contains the candidate port. A rule without any port restriction includes
// every port; a port-group reference that resolved to no members includes
// none. MatchOppositePorts negates membership.
func PortIncludes(rule domain.FirewallRule, port int) bool {
	dest := rule.Destination
	if !dest.HasPortFilter() {
		return true
	}

	ranges := ParsePortSpec(dest.PortSpec)
	for _, member := range dest.PortGroupMembers {
		ranges = append(ranges, ParsePortSpec(member)...)
	}

	included := false
	for _, r := range ranges {
		if r.Contains(port) {
			included = true
			break
		}
	}
	if dest.MatchOppositePorts {
		return !included
	}
	return included
}
