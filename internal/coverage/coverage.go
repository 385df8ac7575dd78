package coverage

import (
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// Selector is the normalized source restriction of a rule, shared between
// firewall rules and NAT entries so both sides run the same coverage
// arithmetic.
type Selector struct {
	Kind          domain.FilterKind
	NetworkIDs    []string
	MatchOpposite bool
	Address       string
	InInterface   string
}

// FromRuleSource normalizes a firewall rule's source selector.
func FromRuleSource(src domain.RuleSource) Selector {
	sel := Selector{Kind: domain.FilterAny}
	if src.MatchingTarget == domain.SourceTargetNetwork {
		sel.Kind = domain.FilterNetwork
		sel.NetworkIDs = src.NetworkIDs
		sel.MatchOpposite = src.MatchOppositeNetworks
	}
	return sel
}

// FromDnatRule normalizes a NAT entry's source filter together with its
// bound interface.
func FromDnatRule(rule domain.DnatRule) Selector {
	sel := Selector{
		Kind:          rule.Source.Kind,
		Address:       rule.Source.Address,
		MatchOpposite: rule.Source.MatchOpposite,
		InInterface:   rule.InInterface,
	}
	if rule.Source.NetworkID != "" {
		sel.NetworkIDs = []string{rule.Source.NetworkID}
	}
	return sel
}

// Set accumulates which networks a series of rule selectors reaches.
// Networks on excluded VLANs are removed from consideration up front; if
// that removes everything, coverage is vacuously full.
type Set struct {
	remaining []domain.NetworkInfo
	excluded  []domain.NetworkInfo
	covered   map[string]bool
}

func NewSet(networks []domain.NetworkInfo, excludedVLANs []int) *Set {
	excludedSet := make(map[int]bool, len(excludedVLANs))
	for _, vlan := range excludedVLANs {
		excludedSet[vlan] = true
	}

	s := &Set{covered: make(map[string]bool)}
	for _, n := range networks {
		if excludedSet[n.VLAN] {
			s.excluded = append(s.excluded, n)
			continue
		}
		s.remaining = append(s.remaining, n)
	}
	return s
}

// Apply unions the selector's reach into the set and returns the networks
// it covers. The second result is false for an abnormal bare-address
// selector, which contributes no coverage and is reported separately by
// the caller.
func (s *Set) Apply(sel Selector) ([]domain.NetworkInfo, bool) {
	reached, ok := s.resolve(sel)
	for _, n := range reached {
		s.covered[n.ID] = true
	}
	return reached, ok
}

func (s *Set) resolve(sel Selector) ([]domain.NetworkInfo, bool) {
	switch sel.Kind {
	case domain.FilterNetwork:
		ids := make(map[string]bool, len(sel.NetworkIDs))
		for _, id := range sel.NetworkIDs {
			ids[id] = true
		}
		var reached []domain.NetworkInfo
		for _, n := range s.remaining {
			if ids[n.ID] != sel.MatchOpposite {
				reached = append(reached, n)
			}
		}
		return s.withBoundInterface(sel, reached), true

	case domain.FilterAddressAndPort:
		if !strings.Contains(sel.Address, "/") {
			// A bare address restricts the rule to one client; that is
			// not network coverage even on a bound interface.
			return nil, false
		}
		var reached []domain.NetworkInfo
		for _, n := range s.remaining {
			if n.Subnet != "" && CoversSubnet(sel.Address, n.Subnet) {
				reached = append(reached, n)
			}
		}
		return s.withBoundInterface(sel, reached), true

	default:
		// ANY, NONE, or an unrecognized kind: no source restriction. A
		// bound interface narrows it to that one network.
		if sel.InInterface != "" {
			return s.withBoundInterface(sel, nil), true
		}
		return append([]domain.NetworkInfo(nil), s.remaining...), true
	}
}

func (s *Set) withBoundInterface(sel Selector, reached []domain.NetworkInfo) []domain.NetworkInfo {
	if sel.InInterface == "" {
		return reached
	}
	for _, n := range reached {
		if n.ID == sel.InInterface {
			return reached
		}
	}
	for _, n := range s.remaining {
		if n.ID == sel.InInterface {
			return append(reached, n)
		}
	}
	return reached
}

// FullCoverage reports whether every non-excluded network is covered by at
// least one applied selector.
func (s *Set) FullCoverage() bool {
	for _, n := range s.remaining {
		if !s.covered[n.ID] {
			return false
		}
	}
	return true
}

func (s *Set) Covered() []domain.NetworkInfo {
	var out []domain.NetworkInfo
	for _, n := range s.remaining {
		if s.covered[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

func (s *Set) Uncovered() []domain.NetworkInfo {
	var out []domain.NetworkInfo
	for _, n := range s.remaining {
		if !s.covered[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

func (s *Set) Excluded() []domain.NetworkInfo {
	return s.excluded
}
