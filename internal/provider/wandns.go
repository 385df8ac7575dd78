package provider

import "github.com/ekobres/unifi-dns-audit/internal/domain"

// ExpectedProvider resolves which public provider the gateway's encrypted
// DNS is pointed at. The first enabled upstream decides: by alias, then by
// stamp-embedded hostname, then by the name as a literal hostname. A
// disabled-only server list, or a first upstream nobody recognizes, yields
// no provider.
func (r *Registry) ExpectedProvider(doh *domain.DohConfig) (domain.ProviderRecord, bool) {
	if !doh.IsActive() {
		return domain.ProviderRecord{}, false
	}
	for _, s := range doh.Servers {
		if !s.Enabled {
			continue
		}
		if rec, ok := r.ByAlias(s.Name); ok {
			return rec, true
		}
		if rec, ok := r.FromStamp(s.Stamp); ok {
			return rec, true
		}
		if rec, ok := r.ByHostname(s.Name); ok {
			return rec, true
		}
		return domain.ProviderRecord{}, false
	}
	return domain.ProviderRecord{}, false
}

// MatchWans grades each WAN interface's DNS servers against the expected
// provider. The combined match requires every configured address across
// every interface to belong to the provider; an empty combined list never
// matches. Order is wrong on an interface whose list contains the provider
// somewhere other than first, leaving the primary resolver elsewhere.
func MatchWans(rec domain.ProviderRecord, hasProvider bool, wans []domain.WanDnsConfig) ([]domain.WanDnsDetail, bool) {
	details := make([]domain.WanDnsDetail, 0, len(wans))
	total := 0
	allMatch := hasProvider

	for _, wan := range wans {
		d := domain.WanDnsDetail{
			Interface:     wan.Interface,
			Servers:       wan.Servers,
			StaticDns:     wan.Mode == domain.WanDnsModeStatic,
			OrderCorrect:  true,
			MatchProvider: hasProvider && len(wan.Servers) > 0,
		}

		anyOwned := false
		for _, ip := range wan.Servers {
			total++
			if hasProvider && OwnsIP(rec, ip) {
				anyOwned = true
				continue
			}
			d.MatchProvider = false
			allMatch = false
		}
		if anyOwned && !OwnsIP(rec, wan.Servers[0]) {
			d.OrderCorrect = false
		}

		details = append(details, d)
	}

	if total == 0 {
		allMatch = false
	}
	return details, allMatch
}
