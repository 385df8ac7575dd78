package domain

// Result is the full outcome of one analysis run. It is a pure value:
// callers render, score, or persist it without calling back into the
// evaluator.
type Result struct {
	HasDns53BlockRule  bool   `json:"has_dns53_block_rule"`
	Dns53BlockRuleName string `json:"dns53_block_rule_name,omitempty"`

	HasDotBlockRule  bool   `json:"has_dot_block_rule"`
	DotBlockRuleName string `json:"dot_block_rule_name,omitempty"`

	HasDoqBlockRule  bool   `json:"has_doq_block_rule"`
	DoqBlockRuleName string `json:"doq_block_rule_name,omitempty"`

	HasDohBlockRule   bool     `json:"has_doh_block_rule"`
	DohBlockRuleName  string   `json:"doh_block_rule_name,omitempty"`
	DohBlockedDomains []string `json:"doh_blocked_domains,omitempty"`

	HasDoh3BlockRule   bool     `json:"has_doh3_block_rule"`
	Doh3BlockRuleName  string   `json:"doh3_block_rule_name,omitempty"`
	Doh3BlockedDomains []string `json:"doh3_blocked_domains,omitempty"`

	DohConfigured       bool   `json:"doh_configured"`
	ExpectedDnsProvider string `json:"expected_dns_provider,omitempty"`

	WanDnsServers    []string       `json:"wan_dns_servers,omitempty"`
	WanDnsMatchesDoH bool           `json:"wan_dns_matches_doh"`
	WanInterfaces    []WanDnsDetail `json:"wan_interfaces,omitempty"`

	DeviceDns DeviceDnsSummary `json:"device_dns"`

	ThirdPartyDns         []ThirdPartyDnsInfo `json:"third_party_dns,omitempty"`
	ThirdPartyDnsSiteWide bool                `json:"third_party_dns_site_wide"`

	HasDnatDnsRules              bool     `json:"has_dnat_dns_rules"`
	DnatProvidesFullCoverage     bool     `json:"dnat_provides_full_coverage"`
	DnatRedirectTargetIsValid    bool     `json:"dnat_redirect_target_is_valid"`
	DnatDestinationFilterIsValid bool     `json:"dnat_destination_filter_is_valid"`
	DnatCoveredNetworks          []string `json:"dnat_covered_networks,omitempty"`
	DnatUncoveredNetworks        []string `json:"dnat_uncovered_networks,omitempty"`
	DnatExcludedNetworks         []string `json:"dnat_excluded_networks,omitempty"`
	DnatSingleIPRules            []string `json:"dnat_single_ip_rules,omitempty"`
	DnatInvalidRedirects         []string `json:"dnat_invalid_redirects,omitempty"`

	Findings       []Finding `json:"findings,omitempty"`
	HardeningNotes []string  `json:"hardening_notes,omitempty"`
}

type WanDnsDetail struct {
	Interface     string   `json:"interface"`
	Servers       []string `json:"servers,omitempty"`
	StaticDns     bool     `json:"static_dns"`
	OrderCorrect  bool     `json:"order_correct"`
	MatchProvider bool     `json:"match_provider"`
}

type DeviceDnsSummary struct {
	Total         int      `json:"total"`
	StaticDns     int      `json:"static_dns"`
	Misconfigured int      `json:"misconfigured"`
	DeviceNames   []string `json:"device_names,omitempty"`
}
