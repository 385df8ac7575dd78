package domain

const (
	PurposeHome       = "Home"
	PurposeCorporate  = "Corporate"
	PurposeIoT        = "IoT"
	PurposeGuest      = "Guest"
	PurposeManagement = "Management"
)

// NetworkInfo describes one configured network/VLAN. Instances are built
// once per snapshot and never mutated by the evaluators.
type NetworkInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	VLAN        int      `json:"vlan,omitempty"`
	Subnet      string   `json:"subnet,omitempty"`
	Gateway     string   `json:"gateway,omitempty"`
	DHCPEnabled bool     `json:"dhcp_enabled,omitempty"`
	DNSServers  []string `json:"dns_servers,omitempty"`
	Purpose     string   `json:"purpose,omitempty"`
	ZoneID      string   `json:"zone_id,omitempty"`
	IsGuest     bool     `json:"is_guest,omitempty"`
}
