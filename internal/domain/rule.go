package domain

type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
)

type Protocol string

const (
	ProtocolTCP    Protocol = "tcp"
	ProtocolUDP    Protocol = "udp"
	ProtocolTCPUDP Protocol = "tcp_udp"
	ProtocolAll    Protocol = "all"
	ProtocolICMP   Protocol = "icmp"
)

type DestTarget string

const (
	DestTargetPort DestTarget = "PORT"
	DestTargetWeb  DestTarget = "WEB"
	DestTargetApp  DestTarget = "APP"
	DestTargetAny  DestTarget = "ANY"
)

type SourceTarget string

const (
	SourceTargetNetwork SourceTarget = "NETWORK"
	SourceTargetAny     SourceTarget = "ANY"
)

const (
	RulesetLANIn    = "LAN_IN"
	RulesetLANOut   = "LAN_OUT"
	RulesetLANLocal = "LAN_LOCAL"
	RulesetWANIn    = "WAN_IN"
	RulesetWANOut   = "WAN_OUT"
	RulesetWANLocal = "WAN_LOCAL"
	RulesetGuestIn  = "GUEST_IN"
	RulesetGuestOut = "GUEST_OUT"
)

// FirewallRule is the canonical form every vendor rule representation
// (legacy ruleset rules and zone-based policies) is reduced to before
// evaluation. Action is meaningful only while Enabled is true.
type FirewallRule struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Enabled bool   `json:"enabled"`
	Action  Action `json:"action"`
	Index   int    `json:"index,omitempty"`

	Protocol              Protocol `json:"protocol,omitempty"`
	MatchOppositeProtocol bool     `json:"match_opposite_protocol,omitempty"`

	Destination RuleDestination `json:"destination"`
	Source      RuleSource      `json:"source"`

	// Ruleset carries the legacy chain tag (LAN_IN, WAN_OUT, ...) for rules
	// that predate zone ids. Empty for zone-based rules.
	Ruleset string `json:"ruleset,omitempty"`
}

type RuleDestination struct {
	MatchingTarget DestTarget `json:"matching_target,omitempty"`

	// PortSpec is a literal port expression: a single port, a comma list,
	// or a from-to range. Empty when the rule references a port group or
	// carries no port restriction at all.
	PortSpec string `json:"port_spec,omitempty"`

	// PortGroupID is set when the vendor rule referenced a port group.
	// PortGroupMembers holds the group's expanded members; a non-empty
	// PortGroupID with no members means the reference did not resolve and
	// the rule matches no port.
	PortGroupID      string   `json:"port_group_id,omitempty"`
	PortGroupMembers []string `json:"port_group_members,omitempty"`

	MatchOppositePorts bool `json:"match_opposite_ports,omitempty"`

	WebDomains []string `json:"web_domains,omitempty"`
	AppIDs     []int    `json:"app_ids,omitempty"`

	ZoneID        string `json:"zone_id,omitempty"`
	Address       string `json:"address,omitempty"`
	InvertAddress bool   `json:"invert_address,omitempty"`
}

type RuleSource struct {
	MatchingTarget        SourceTarget `json:"matching_target,omitempty"`
	NetworkIDs            []string     `json:"network_ids,omitempty"`
	MatchOppositeNetworks bool         `json:"match_opposite_networks,omitempty"`
	ZoneID                string       `json:"zone_id,omitempty"`
}

// HasPortFilter reports whether the destination restricts ports at all.
// A rule without any port restriction applies to every port.
func (d RuleDestination) HasPortFilter() bool {
	return d.PortSpec != "" || d.PortGroupID != ""
}

type PortGroup struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Name    string   `json:"name,omitempty"`
	Members []string `json:"members,omitempty"`
}

const PortGroupType = "port-group"

type FirewallZone struct {
	ID   string `json:"id"`
	Key  string `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
}

const (
	ZoneKeyInternal = "internal"
	ZoneKeyExternal = "external"
	ZoneKeyGateway  = "gateway"
	ZoneKeyDMZ      = "dmz"
	ZoneKeyHotspot  = "hotspot"
	ZoneKeyVPN      = "vpn"
)
