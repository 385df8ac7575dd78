package unifi

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Raw record shapes as the controller serves them. Only the fields the
// audit reads are declared; everything else in a record is ignored.
// Controllers drift on scalar encodings (numbers arriving as strings and
// the other way round), so the flex types absorb either form instead of
// failing the decode.

type responseMeta struct {
	Rc  string `json:"rc"`
	Msg string `json:"msg"`
}

// responseEnvelope is the v1 API wrapper: {"meta": {"rc": "ok"}, "data": [...]}.
// The v2 endpoints return bare arrays without it.
type responseEnvelope struct {
	Meta responseMeta    `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// flexInt decodes a JSON number or a numeric string. Anything else reads
// as zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
	}
	return nil
}

// flexString decodes a JSON string or a bare number. Anything else reads
// as empty.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	*f = ""
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*f = flexString(s)
		}
		return nil
	}
	s := strings.TrimSpace(string(data))
	if s != "null" && s != "true" && s != "false" && s != "" && s[0] != '{' && s[0] != '[' {
		*f = flexString(s)
	}
	return nil
}

// rawFirewallRule is a legacy /rest/firewallrule record. Legacy rules hang
// off a named ruleset chain and reference firewall groups for ports.
type rawFirewallRule struct {
	ID                    string     `json:"_id"`
	Ruleset               string     `json:"ruleset"`
	RuleIndex             flexInt    `json:"rule_index"`
	Name                  string     `json:"name"`
	Enabled               bool       `json:"enabled"`
	Action                string     `json:"action"`
	Protocol              string     `json:"protocol"`
	ProtocolMatchExcepted bool       `json:"protocol_match_excepted"`
	DstPort               flexString `json:"dst_port"`
	DstAddress            string     `json:"dst_address"`
	DstFirewallgroupIDs   []string   `json:"dst_firewallgroup_ids"`
	DstNetworkconfID      string     `json:"dst_networkconf_id"`
	SrcAddress            string     `json:"src_address"`
	SrcNetworkconfID      string     `json:"src_networkconf_id"`
}

// rawFirewallPolicy is a zone-based v2 firewall-policies record.
type rawFirewallPolicy struct {
	ID                    string            `json:"_id"`
	Name                  string            `json:"name"`
	Enabled               bool              `json:"enabled"`
	Action                string            `json:"action"`
	Index                 flexInt           `json:"index"`
	Protocol              string            `json:"protocol"`
	MatchOppositeProtocol bool              `json:"match_opposite_protocol"`
	Source                rawPolicyEndpoint `json:"source"`
	Destination           rawPolicyEndpoint `json:"destination"`
}

type rawPolicyEndpoint struct {
	ZoneID                string     `json:"zone_id"`
	MatchingTarget        string     `json:"matching_target"`
	Port                  flexString `json:"port"`
	PortGroupID           string     `json:"port_group_id"`
	MatchOppositePorts    bool       `json:"match_opposite_ports"`
	WebDomains            []string   `json:"web_domains"`
	AppIDs                []flexInt  `json:"app_ids"`
	NetworkIDs            []string   `json:"network_ids"`
	MatchOppositeNetworks bool       `json:"match_opposite_networks"`
	IPs                   []string   `json:"ips"`
	MatchOppositeIPs      bool       `json:"match_opposite_ips"`
}

type rawFirewallGroup struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	GroupType    string       `json:"group_type"`
	GroupMembers []flexString `json:"group_members"`
}

type rawFirewallZone struct {
	ID         string   `json:"_id"`
	Name       string   `json:"name"`
	ZoneKey    string   `json:"zone_key"`
	NetworkIDs []string `json:"network_ids"`
}

// rawNetwork is a /rest/networkconf record. WAN uplinks share the endpoint
// with LAN networks and are told apart by purpose.
type rawNetwork struct {
	ID              string  `json:"_id"`
	Name            string  `json:"name"`
	Purpose         string  `json:"purpose"`
	VlanEnabled     bool    `json:"vlan_enabled"`
	Vlan            flexInt `json:"vlan"`
	IPSubnet        string  `json:"ip_subnet"`
	DhcpdEnabled    bool    `json:"dhcpd_enabled"`
	DhcpdDNSEnabled bool    `json:"dhcpd_dns_enabled"`
	DhcpdDNS1       string  `json:"dhcpd_dns_1"`
	DhcpdDNS2       string  `json:"dhcpd_dns_2"`
	DhcpdDNS3       string  `json:"dhcpd_dns_3"`
	DhcpdDNS4       string  `json:"dhcpd_dns_4"`
	IsGuest         bool    `json:"is_guest"`
	WanNetworkGroup string  `json:"wan_networkgroup"`
	WanDNSPref      string  `json:"wan_dns_preference"`
	WanDNS1         string  `json:"wan_dns1"`
	WanDNS2         string  `json:"wan_dns2"`
}

type rawNatRule struct {
	ID          string       `json:"_id"`
	Type        string       `json:"type"`
	Enabled     bool         `json:"enabled"`
	Description string       `json:"description"`
	Protocol    string       `json:"protocol"`
	IPAddress   string       `json:"ip_address"`
	Port        flexString   `json:"port"`
	InInterface string       `json:"in_interface"`
	Source      rawNatFilter `json:"source"`
	Destination rawNatFilter `json:"destination"`
}

type rawNatFilter struct {
	FilterType    string     `json:"filter_type"`
	NetworkConfID string     `json:"network_conf_id"`
	Address       string     `json:"address"`
	Port          flexString `json:"port"`
	InvertAddress bool       `json:"invert_address"`
	MatchOpposite bool       `json:"match_opposite"`
}

// rawSettingTag peeks at a /rest/setting record's key so full decoding
// only happens for the record kinds the audit cares about.
type rawSettingTag struct {
	Key string `json:"key"`
}

const (
	settingKeyDoh    = "doh"
	settingKeyDns    = "dns"
	settingKeyWanDns = "wan_dns"
)

type rawDohSetting struct {
	State         string         `json:"state"`
	ServerNames   []string       `json:"server_names"`
	CustomServers []rawDohServer `json:"custom_servers"`
}

type rawDohServer struct {
	ServerName string `json:"server_name"`
	SdnsStamp  string `json:"sdns_stamp"`
	Enabled    bool   `json:"enabled"`
}

type rawWanDnsSetting struct {
	Mode      string   `json:"mode"`
	Interface string   `json:"interface"`
	NetworkID string   `json:"network_id"`
	Servers   []string `json:"servers"`
	DNS1      string   `json:"dns1"`
	DNS2      string   `json:"dns2"`
}

type rawDevice struct {
	Name          string           `json:"name"`
	Mac           string           `json:"mac"`
	Type          string           `json:"type"`
	ConfigNetwork rawDeviceNetwork `json:"config_network"`
	Wan1          *rawDeviceWan    `json:"wan1"`
	Wan2          *rawDeviceWan    `json:"wan2"`
}

type rawDeviceNetwork struct {
	Type    string   `json:"type"`
	IP      string   `json:"ip"`
	Gateway string   `json:"gateway"`
	DNS1    string   `json:"dns1"`
	DNS2    string   `json:"dns2"`
	DNS3    string   `json:"dns3"`
	DNS4    string   `json:"dns4"`
	DNSList []string `json:"dns"`
}

type rawDeviceWan struct {
	Ifname string   `json:"ifname"`
	Type   string   `json:"type"`
	DNS    []string `json:"dns"`
}

// rawSnapshot carries every endpoint payload one fetch produced, still in
// controller form.
type rawSnapshot struct {
	FirewallRules []rawFirewallRule
	Policies      []rawFirewallPolicy
	Groups        []rawFirewallGroup
	Zones         []rawFirewallZone
	Networks      []rawNetwork
	NatRules      []rawNatRule
	Settings      []json.RawMessage
	Devices       []rawDevice
}
