package unifi

import (
	"encoding/json"
	"net"
	"strings"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// buildSnapshot reduces raw controller records to the canonical snapshot
// the evaluators consume. Conversion is permissive: unknown fields are
// ignored and malformed values degrade to "no restriction" or empty
// instead of failing the build.
func buildSnapshot(raw rawSnapshot) domain.Snapshot {
	groups := groupTable(raw.Groups)
	networks, wans := convertNetworks(raw.Networks, raw.Zones)
	doh, settingWans := convertSettings(raw.Settings)
	if len(settingWans) > 0 {
		wans = settingWans
	}

	return domain.Snapshot{
		Doh:       doh,
		WanDns:    wans,
		Rules:     convertRules(raw.FirewallRules, raw.Policies, groups),
		DnatRules: convertNatRules(raw.NatRules),
		Networks:  networks,
		Zones:     convertZones(raw.Zones),
		Devices:   convertDevices(raw.Devices),
	}
}

func groupTable(raw []rawFirewallGroup) map[string]domain.PortGroup {
	groups := make(map[string]domain.PortGroup, len(raw))
	for _, g := range raw {
		members := make([]string, 0, len(g.GroupMembers))
		for _, m := range g.GroupMembers {
			members = append(members, string(m))
		}
		groups[g.ID] = domain.PortGroup{ID: g.ID, Type: g.GroupType, Name: g.Name, Members: members}
	}
	return groups
}

func convertRules(legacy []rawFirewallRule, policies []rawFirewallPolicy, groups map[string]domain.PortGroup) []domain.FirewallRule {
	rules := make([]domain.FirewallRule, 0, len(legacy)+len(policies))
	for _, r := range legacy {
		rules = append(rules, convertLegacyRule(r, groups))
	}
	for _, p := range policies {
		rules = append(rules, convertPolicy(p, groups))
	}
	return rules
}

func convertLegacyRule(r rawFirewallRule, groups map[string]domain.PortGroup) domain.FirewallRule {
	rule := domain.FirewallRule{
		ID:                    r.ID,
		Name:                  r.Name,
		Enabled:               r.Enabled,
		Action:                canonicalAction(r.Action),
		Index:                 int(r.RuleIndex),
		Protocol:              domain.Protocol(strings.ToLower(r.Protocol)),
		MatchOppositeProtocol: r.ProtocolMatchExcepted,
		Ruleset:               r.Ruleset,
	}

	dest := domain.RuleDestination{
		MatchingTarget: domain.DestTargetAny,
		Address:        r.DstAddress,
	}
	if r.DstPort != "" {
		dest.MatchingTarget = domain.DestTargetPort
		dest.PortSpec = string(r.DstPort)
	} else {
		// Legacy rules restrict ports through firewall groups. The first
		// referenced port group wins; a reference that does not resolve
		// keeps its id with no members, so the rule matches no port
		// rather than every port. Address groups are not port filters.
		for _, gid := range r.DstFirewallgroupIDs {
			group, known := groups[gid]
			if known && group.Type != domain.PortGroupType {
				continue
			}
			dest.MatchingTarget = domain.DestTargetPort
			dest.PortGroupID = gid
			dest.PortGroupMembers = group.Members
			break
		}
	}
	rule.Destination = dest

	src := domain.RuleSource{MatchingTarget: domain.SourceTargetAny}
	if r.SrcNetworkconfID != "" {
		src.MatchingTarget = domain.SourceTargetNetwork
		src.NetworkIDs = []string{r.SrcNetworkconfID}
	}
	rule.Source = src
	return rule
}

func convertPolicy(p rawFirewallPolicy, groups map[string]domain.PortGroup) domain.FirewallRule {
	rule := domain.FirewallRule{
		ID:                    p.ID,
		Name:                  p.Name,
		Enabled:               p.Enabled,
		Action:                canonicalAction(p.Action),
		Index:                 int(p.Index),
		Protocol:              domain.Protocol(strings.ToLower(p.Protocol)),
		MatchOppositeProtocol: p.MatchOppositeProtocol,
	}

	d := p.Destination
	dest := domain.RuleDestination{
		MatchingTarget:     destTarget(d.MatchingTarget),
		MatchOppositePorts: d.MatchOppositePorts,
		WebDomains:         d.WebDomains,
		ZoneID:             d.ZoneID,
	}
	if d.PortGroupID != "" {
		dest.PortGroupID = d.PortGroupID
		dest.PortGroupMembers = groups[d.PortGroupID].Members
	} else {
		dest.PortSpec = string(d.Port)
	}
	for _, id := range d.AppIDs {
		dest.AppIDs = append(dest.AppIDs, int(id))
	}
	if len(d.IPs) == 1 {
		dest.Address = d.IPs[0]
		dest.InvertAddress = d.MatchOppositeIPs
	}
	rule.Destination = dest

	src := domain.RuleSource{
		MatchingTarget: sourceTarget(p.Source.MatchingTarget),
		ZoneID:         p.Source.ZoneID,
	}
	if src.MatchingTarget == domain.SourceTargetNetwork {
		src.NetworkIDs = p.Source.NetworkIDs
		src.MatchOppositeNetworks = p.Source.MatchOppositeNetworks
	}
	rule.Source = src
	return rule
}

// canonicalAction folds the vendor's action synonyms: drop and reject are
// both block.
func canonicalAction(action string) domain.Action {
	switch strings.ToLower(action) {
	case "accept", "allow":
		return domain.ActionAllow
	case "drop", "reject", "block":
		return domain.ActionBlock
	default:
		return domain.Action(strings.ToLower(action))
	}
}

func destTarget(target string) domain.DestTarget {
	if target == "" {
		return domain.DestTargetAny
	}
	return domain.DestTarget(strings.ToUpper(target))
}

func sourceTarget(target string) domain.SourceTarget {
	if target == "" {
		return domain.SourceTargetAny
	}
	return domain.SourceTarget(strings.ToUpper(target))
}

// convertNetworks splits /rest/networkconf records into the LAN inventory
// and the WAN DNS settings carried by WAN-purpose records.
func convertNetworks(raw []rawNetwork, zones []rawFirewallZone) ([]domain.NetworkInfo, []domain.WanDnsConfig) {
	zoneOf := make(map[string]string)
	for _, z := range zones {
		for _, id := range z.NetworkIDs {
			zoneOf[id] = z.ID
		}
	}

	var networks []domain.NetworkInfo
	var wans []domain.WanDnsConfig
	for _, n := range raw {
		if strings.EqualFold(n.Purpose, "wan") {
			wans = append(wans, domain.WanDnsConfig{
				Interface: wanInterfaceName(n),
				NetworkID: n.ID,
				Mode:      wanDnsMode(n.WanDNSPref),
				Servers:   compactStrings(n.WanDNS1, n.WanDNS2),
			})
			continue
		}
		gateway, subnet := splitGatewayCIDR(n.IPSubnet)
		networks = append(networks, domain.NetworkInfo{
			ID:          n.ID,
			Name:        n.Name,
			VLAN:        networkVLAN(n),
			Subnet:      subnet,
			Gateway:     gateway,
			DHCPEnabled: n.DhcpdEnabled,
			DNSServers:  dhcpDNSServers(n),
			Purpose:     canonicalPurpose(n.Purpose),
			ZoneID:      zoneOf[n.ID],
			IsGuest:     n.IsGuest || strings.EqualFold(n.Purpose, "guest"),
		})
	}
	return networks, wans
}

func wanInterfaceName(n rawNetwork) string {
	if n.WanNetworkGroup != "" {
		return strings.ToLower(n.WanNetworkGroup)
	}
	return n.Name
}

// networkVLAN maps an untagged network to the native VLAN.
func networkVLAN(n rawNetwork) int {
	if n.VlanEnabled && int(n.Vlan) > 0 {
		return int(n.Vlan)
	}
	return 1
}

// splitGatewayCIDR takes the controller's "gateway/prefix" form
// ("192.168.1.1/24") apart into the gateway address and the masked subnet.
func splitGatewayCIDR(ipSubnet string) (gateway, subnet string) {
	if ipSubnet == "" {
		return "", ""
	}
	ip, ipnet, err := net.ParseCIDR(ipSubnet)
	if err != nil {
		return "", ""
	}
	return ip.String(), ipnet.String()
}

func dhcpDNSServers(n rawNetwork) []string {
	if !n.DhcpdDNSEnabled {
		return nil
	}
	return compactStrings(n.DhcpdDNS1, n.DhcpdDNS2, n.DhcpdDNS3, n.DhcpdDNS4)
}

func canonicalPurpose(purpose string) string {
	switch strings.ToLower(purpose) {
	case "corporate":
		return domain.PurposeCorporate
	case "guest":
		return domain.PurposeGuest
	case "home":
		return domain.PurposeHome
	case "iot":
		return domain.PurposeIoT
	case "management":
		return domain.PurposeManagement
	default:
		return purpose
	}
}

func convertZones(raw []rawFirewallZone) []domain.FirewallZone {
	var zones []domain.FirewallZone
	for _, z := range raw {
		key := strings.ToLower(z.ZoneKey)
		if key == "" {
			key = strings.ToLower(z.Name)
		}
		zones = append(zones, domain.FirewallZone{ID: z.ID, Key: key, Name: z.Name})
	}
	return zones
}

func convertNatRules(raw []rawNatRule) []domain.DnatRule {
	var rules []domain.DnatRule
	for _, r := range raw {
		rules = append(rules, domain.DnatRule{
			ID:           r.ID,
			Type:         strings.ToUpper(r.Type),
			Enabled:      r.Enabled,
			Description:  r.Description,
			Protocol:     domain.Protocol(strings.ToLower(r.Protocol)),
			RedirectIP:   r.IPAddress,
			RedirectPort: string(r.Port),
			InInterface:  r.InInterface,
			Destination: domain.DnatDestination{
				Address:       r.Destination.Address,
				InvertAddress: r.Destination.InvertAddress,
				PortSpec:      string(r.Destination.Port),
			},
			Source: domain.DnatSource{
				Kind:          filterKind(r.Source.FilterType),
				NetworkID:     r.Source.NetworkConfID,
				Address:       r.Source.Address,
				MatchOpposite: r.Source.MatchOpposite,
			},
		})
	}
	return rules
}

func filterKind(filterType string) domain.FilterKind {
	if filterType == "" {
		return domain.FilterNone
	}
	return domain.FilterKind(strings.ToUpper(filterType))
}

// convertSettings picks the doh and wan_dns records out of the settings
// list. Records that fail to decode are skipped, not fatal.
func convertSettings(settings []json.RawMessage) (*domain.DohConfig, []domain.WanDnsConfig) {
	var doh *domain.DohConfig
	var wans []domain.WanDnsConfig
	for _, msg := range settings {
		var tag rawSettingTag
		if err := json.Unmarshal(msg, &tag); err != nil {
			continue
		}
		switch tag.Key {
		case settingKeyDoh:
			var record rawDohSetting
			if err := json.Unmarshal(msg, &record); err != nil {
				continue
			}
			doh = convertDoh(record)
		case settingKeyDns, settingKeyWanDns:
			var record rawWanDnsSetting
			if err := json.Unmarshal(msg, &record); err != nil {
				continue
			}
			wans = append(wans, convertWanDnsSetting(record))
		}
	}
	return doh, wans
}

func convertDoh(record rawDohSetting) *domain.DohConfig {
	cfg := &domain.DohConfig{State: strings.ToLower(record.State)}
	for _, name := range record.ServerNames {
		cfg.Servers = append(cfg.Servers, domain.DohServer{Name: name, Enabled: true})
	}
	for _, s := range record.CustomServers {
		cfg.Servers = append(cfg.Servers, domain.DohServer{
			Name:    s.ServerName,
			Stamp:   s.SdnsStamp,
			Enabled: s.Enabled,
		})
	}
	return cfg
}

func convertWanDnsSetting(record rawWanDnsSetting) domain.WanDnsConfig {
	servers := record.Servers
	if len(servers) == 0 {
		servers = compactStrings(record.DNS1, record.DNS2)
	}
	iface := record.Interface
	if iface == "" {
		iface = "wan"
	}
	return domain.WanDnsConfig{
		Interface: iface,
		NetworkID: record.NetworkID,
		Mode:      wanDnsMode(record.Mode),
		Servers:   servers,
	}
}

// wanDnsMode normalizes the controller's mode spellings: manual and static
// both mean operator-pinned servers, everything else is provider-assigned.
func wanDnsMode(mode string) string {
	switch strings.ToLower(mode) {
	case "manual", "static":
		return domain.WanDnsModeStatic
	default:
		return domain.WanDnsModeAuto
	}
}

func convertDevices(raw []rawDevice) []domain.DeviceInfo {
	var devices []domain.DeviceInfo
	for _, d := range raw {
		dev := domain.DeviceInfo{
			Name: d.Name,
			MAC:  d.Mac,
			Type: d.Type,
			ConfigNetwork: domain.DeviceNetworkConfig{
				Type:    d.ConfigNetwork.Type,
				IP:      d.ConfigNetwork.IP,
				Gateway: d.ConfigNetwork.Gateway,
				DNS:     deviceDNS(d.ConfigNetwork),
			},
		}
		if d.Wan1 != nil {
			dev.Wans = append(dev.Wans, convertDeviceWan("wan1", *d.Wan1))
		}
		if d.Wan2 != nil {
			dev.Wans = append(dev.Wans, convertDeviceWan("wan2", *d.Wan2))
		}
		devices = append(devices, dev)
	}
	return devices
}

func convertDeviceWan(fallback string, wan rawDeviceWan) domain.DeviceWanConfig {
	name := wan.Ifname
	if name == "" {
		name = fallback
	}
	return domain.DeviceWanConfig{Name: name, Mode: wanDnsMode(wan.Type), DNS: wan.DNS}
}

func deviceDNS(n rawDeviceNetwork) []string {
	if len(n.DNSList) > 0 {
		return n.DNSList
	}
	return compactStrings(n.DNS1, n.DNS2, n.DNS3, n.DNS4)
}

func compactStrings(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
