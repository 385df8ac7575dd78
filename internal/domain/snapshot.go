package domain

// Snapshot is one point-in-time export of everything the audit consumes.
// Any piece may be nil or empty; evaluators treat missing data as "nothing
// configured" rather than an error.
type Snapshot struct {
	Doh       *DohConfig     `json:"doh,omitempty"`
	WanDns    []WanDnsConfig `json:"wan_dns,omitempty"`
	Rules     []FirewallRule `json:"rules,omitempty"`
	DnatRules []DnatRule     `json:"dnat_rules,omitempty"`
	Networks  []NetworkInfo  `json:"networks,omitempty"`
	Zones     []FirewallZone `json:"zones,omitempty"`
	Devices   []DeviceInfo   `json:"devices,omitempty"`
}

type Options struct {
	// ExternalZoneID is the WAN-facing firewall zone. When empty it is
	// resolved from the snapshot's zone table by key.
	ExternalZoneID string

	// ExcludedVLANs are VLAN ids exempt from DNAT coverage requirements.
	ExcludedVLANs []int

	// NativeVLAN overrides the default native VLAN id of 1.
	NativeVLAN int

	// Prober, when set, is asked to identify candidate third-party DNS
	// servers. A nil Prober disables probing.
	Prober Prober
}
