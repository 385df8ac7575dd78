package domain

const (
	DohStateOff    = "off"
	DohStateAuto   = "auto"
	DohStateManual = "manual"
	DohStateCustom = "custom"
)

type DohConfig struct {
	State   string      `json:"state,omitempty"`
	Servers []DohServer `json:"servers,omitempty"`
}

// DohServer is one upstream entry from the DoH settings record: either a
// named provider alias or a custom sdns:// stamp.
type DohServer struct {
	Name    string `json:"name,omitempty"`
	Stamp   string `json:"stamp,omitempty"`
	Enabled bool   `json:"enabled"`
}

// IsActive reports whether DNS-over-HTTPS is on with at least one enabled
// upstream.
func (c *DohConfig) IsActive() bool {
	if c == nil || c.State == "" || c.State == DohStateOff {
		return false
	}
	for _, s := range c.Servers {
		if s.Enabled {
			return true
		}
	}
	return false
}

const (
	WanDnsModeAuto   = "auto"
	WanDnsModeStatic = "static"
)

type WanDnsConfig struct {
	Interface string   `json:"interface,omitempty"`
	NetworkID string   `json:"network_id,omitempty"`
	Mode      string   `json:"mode,omitempty"`
	Servers   []string `json:"servers,omitempty"`
}

type DeviceInfo struct {
	Name          string              `json:"name,omitempty"`
	MAC           string              `json:"mac,omitempty"`
	Type          string              `json:"type,omitempty"`
	ConfigNetwork DeviceNetworkConfig `json:"config_network"`
	Wans          []DeviceWanConfig   `json:"wans,omitempty"`
}

type DeviceNetworkConfig struct {
	Type    string   `json:"type,omitempty"`
	IP      string   `json:"ip,omitempty"`
	Gateway string   `json:"gateway,omitempty"`
	DNS     []string `json:"dns,omitempty"`
}

type DeviceWanConfig struct {
	Name string   `json:"name,omitempty"`
	Mode string   `json:"mode,omitempty"`
	DNS  []string `json:"dns,omitempty"`
}
