package domain

type FilterKind string

const (
	FilterNetwork        FilterKind = "NETWORK_CONF"
	FilterAddressAndPort FilterKind = "ADDRESS_AND_PORT"
	FilterAny            FilterKind = "ANY"
	FilterNone           FilterKind = "NONE"
)

const NatTypeDNAT = "DNAT"

type DnatRule struct {
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type"`
	Enabled     bool     `json:"enabled"`
	Description string   `json:"description,omitempty"`
	Protocol    Protocol `json:"protocol,omitempty"`

	// RedirectIP is the translation target: a single address or an
	// "addr-addr" range string.
	RedirectIP   string `json:"redirect_ip,omitempty"`
	RedirectPort string `json:"redirect_port,omitempty"`

	Destination DnatDestination `json:"destination"`
	Source      DnatSource      `json:"source"`

	// InInterface binds the rule to one network when set.
	InInterface string `json:"in_interface,omitempty"`
}

type DnatDestination struct {
	Address       string `json:"address,omitempty"`
	InvertAddress bool   `json:"invert_address,omitempty"`
	PortSpec      string `json:"port_spec,omitempty"`
}

type DnatSource struct {
	Kind          FilterKind `json:"kind,omitempty"`
	NetworkID     string     `json:"network_id,omitempty"`
	Address       string     `json:"address,omitempty"`
	MatchOpposite bool       `json:"match_opposite,omitempty"`
}
