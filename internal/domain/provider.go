package domain

import "context"

// ProviderRecord describes one known public DNS provider: the hostnames its
// endpoints embed in resolver stamps and the address prefixes (exact IPs or
// CIDRs) its resolvers answer from.
type ProviderRecord struct {
	Name      string
	Hostnames []string
	Prefixes  []string
}

type ThirdPartyDnsInfo struct {
	Address       string `json:"address"`
	Network       string `json:"network"`
	Provider      string `json:"provider"`
	IsPiHole      bool   `json:"is_pihole"`
	IsAdGuardHome bool   `json:"is_adguard_home"`
}

const (
	ProbeProductPiHole  = "Pi-hole"
	ProbeProductAdGuard = "AdGuard Home"
)

type ProbeSignature struct {
	Product    string
	DNSEnabled bool
}

// Prober asks a candidate LAN DNS address whether it answers as a known DNS
// product. A nil result means no signature was detected; probe faults are
// reported the same way and never abort an analysis.
type Prober interface {
	Probe(ctx context.Context, address string) *ProbeSignature
}
