package provider

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

const probeConcurrency = 4

// GenericThirdPartyLabel names a LAN resolver no probe signature claimed.
const GenericThirdPartyLabel = "Third-Party LAN DNS"

// DetectThirdParty finds per-network DNS servers that are neither the
// network's own gateway nor a recognized public resolver, and asks the
// prober what product answers at each. Candidate addresses are probed once
// no matter how many networks share them; probes for distinct addresses
// run concurrently. A nil prober labels every candidate generically.
func DetectThirdParty(ctx context.Context, reg *Registry, networks []domain.NetworkInfo, prober domain.Prober) []domain.ThirdPartyDnsInfo {
	var order []string
	byIP := make(map[string][]domain.NetworkInfo)
	for _, n := range networks {
		for _, ip := range n.DNSServers {
			if ip == "" || ip == n.Gateway || reg.IsPublicResolver(ip) {
				continue
			}
			if _, seen := byIP[ip]; !seen {
				order = append(order, ip)
			}
			byIP[ip] = append(byIP[ip], n)
		}
	}
	if len(order) == 0 {
		return nil
	}

	signatures := make(map[string]*domain.ProbeSignature, len(order))
	if prober != nil {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(probeConcurrency)
		for _, ip := range order {
			ip := ip
			g.Go(func() error {
				sig := prober.Probe(gctx, ip)
				mu.Lock()
				signatures[ip] = sig
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	var out []domain.ThirdPartyDnsInfo
	for _, ip := range order {
		sig := signatures[ip]
		for _, n := range byIP[ip] {
			info := domain.ThirdPartyDnsInfo{
				Address:  ip,
				Network:  n.Name,
				Provider: GenericThirdPartyLabel,
			}
			if sig != nil {
				switch sig.Product {
				case domain.ProbeProductPiHole:
					info.IsPiHole = true
					info.Provider = domain.ProbeProductPiHole
				case domain.ProbeProductAdGuard:
					info.IsAdGuardHome = true
					info.Provider = domain.ProbeProductAdGuard
				}
			}
			out = append(out, info)
		}
	}
	return out
}

// SiteWide reports whether third-party DNS is in network-wide use: at
// least one network whose purpose is not Corporate relies on a detected
// third-party resolver. Corporate-only use reads as an internal resolver,
// not a site-wide one.
func SiteWide(infos []domain.ThirdPartyDnsInfo, networks []domain.NetworkInfo) bool {
	purposes := make(map[string]string, len(networks))
	for _, n := range networks {
		purposes[n.Name] = n.Purpose
	}
	for _, info := range infos {
		if purposes[info.Network] != domain.PurposeCorporate {
			return true
		}
	}
	return false
}

// Addresses returns the distinct resolver addresses, in first-seen order.
func Addresses(infos []domain.ThirdPartyDnsInfo) []string {
	var out []string
	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		if seen[info.Address] {
			continue
		}
		seen[info.Address] = true
		out = append(out, info.Address)
	}
	return out
}
