package provider

import (
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/coverage"
	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// Registry is the immutable public-resolver lookup table. Records are
// ordered most-specific first so a filtered variant wins over its parent
// when both hostnames appear in a stamp.
type Registry struct {
	records []domain.ProviderRecord
	aliases map[string]int
}

func NewRegistry() *Registry {
	r := &Registry{
		records: []domain.ProviderRecord{
			{
				Name:      "Cloudflare Family",
				Hostnames: []string{"family.cloudflare-dns.com", "security.cloudflare-dns.com"},
				Prefixes: []string{
					"1.1.1.2", "1.0.0.2", "1.1.1.3", "1.0.0.3",
					"2606:4700:4700::1112", "2606:4700:4700::1002",
					"2606:4700:4700::1113", "2606:4700:4700::1003",
				},
			},
			{
				Name:      "Cloudflare",
				Hostnames: []string{"cloudflare-dns.com", "cloudflare.com", "one.one.one.one"},
				Prefixes: []string{
					"1.1.1.1", "1.0.0.1",
					"2606:4700:4700::1111", "2606:4700:4700::1001",
				},
			},
			{
				Name:      "Google",
				Hostnames: []string{"dns.google"},
				Prefixes: []string{
					"8.8.8.8", "8.8.4.4",
					"2001:4860:4860::8888", "2001:4860:4860::8844",
				},
			},
			{
				Name:      "Quad9",
				Hostnames: []string{"quad9.net"},
				Prefixes: []string{
					"9.9.9.9", "149.112.112.112",
					"9.9.9.10", "149.112.112.10",
					"9.9.9.11", "149.112.112.11",
					"2620:fe::fe", "2620:fe::9", "2620:fe::10", "2620:fe::11",
				},
			},
			{
				Name:      "OpenDNS",
				Hostnames: []string{"opendns.com"},
				Prefixes: []string{
					"208.67.222.222", "208.67.220.220",
					"208.67.222.123", "208.67.220.123",
					"2620:119:35::35", "2620:119:53::53",
				},
			},
			{
				Name:      "AdGuard",
				Hostnames: []string{"adguard-dns.com", "adguard.com"},
				Prefixes: []string{
					"94.140.14.14", "94.140.15.15",
					"94.140.14.15", "94.140.15.16",
					"94.140.14.140", "94.140.14.141",
					"2a10:50c0::ad1:ff", "2a10:50c0::ad2:ff",
					"2a10:50c0::bad1:ff", "2a10:50c0::bad2:ff",
					"2a10:50c0::1:ff", "2a10:50c0::2:ff",
				},
			},
			{
				Name:      "NextDNS",
				Hostnames: []string{"nextdns.io"},
				Prefixes: []string{
					"45.90.28.0/24", "45.90.30.0/24",
					"2a07:a8c0::/33", "2a07:a8c1::/33",
				},
			},
		},
	}

	r.aliases = make(map[string]int)
	for i, rec := range r.records {
		switch rec.Name {
		case "Cloudflare Family":
			r.aliases["cloudflare-family"] = i
			r.aliases["cloudflare-security"] = i
		case "Cloudflare":
			r.aliases["cloudflare"] = i
		case "Google":
			r.aliases["google"] = i
		case "Quad9":
			r.aliases["quad9"] = i
		case "OpenDNS":
			r.aliases["opendns"] = i
		case "AdGuard":
			r.aliases["adguard"] = i
		case "NextDNS":
			r.aliases["nextdns"] = i
		}
	}
	return r
}

// ByAlias resolves a configured upstream name directly, without stamp
// decoding. NextDNS profile names ("NextDNS-abc123") collapse to the
// NextDNS record.
func (r *Registry) ByAlias(name string) (domain.ProviderRecord, bool) {
	alias := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(alias, "nextdns-") {
		alias = "nextdns"
	}
	i, ok := r.aliases[alias]
	if !ok {
		return domain.ProviderRecord{}, false
	}
	return r.records[i], true
}

// ByHostname matches a hostname-bearing string against the table by
// substring. The first record whose hostname appears in the value wins.
func (r *Registry) ByHostname(value string) (domain.ProviderRecord, bool) {
	needle := strings.ToLower(value)
	for _, rec := range r.records {
		for _, host := range rec.Hostnames {
			if strings.Contains(needle, host) {
				return rec, true
			}
		}
	}
	return domain.ProviderRecord{}, false
}

// FromStamp identifies the provider behind an sdns:// stamp by matching
// its embedded plaintext fields against the table.
func (r *Registry) FromStamp(stamp string) (domain.ProviderRecord, bool) {
	for _, field := range stampFields(stamp) {
		if rec, ok := r.ByHostname(field); ok {
			return rec, true
		}
	}
	return domain.ProviderRecord{}, false
}

// IsPublicResolver reports whether the address belongs to any known public
// provider.
func (r *Registry) IsPublicResolver(ip string) bool {
	for _, rec := range r.records {
		if OwnsIP(rec, ip) {
			return true
		}
	}
	return false
}

// OwnsIP reports whether a provider's known address set contains the IP.
// Prefix entries are either exact addresses or CIDR blocks.
func OwnsIP(rec domain.ProviderRecord, ip string) bool {
	for _, prefix := range rec.Prefixes {
		if strings.Contains(prefix, "/") {
			if coverage.ContainsIP(prefix, ip) {
				return true
			}
			continue
		}
		if prefix == ip {
			return true
		}
	}
	return false
}
