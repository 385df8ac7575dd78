package domain

type FindingType string

const (
	FindingBypass53   FindingType = "DNS_BYPASS_53"
	FindingBypassDoT  FindingType = "DNS_BYPASS_DOT"
	FindingBypassDoQ  FindingType = "DNS_BYPASS_DOQ"
	FindingBypassDoH  FindingType = "DNS_BYPASS_DOH"
	FindingBypassDoH3 FindingType = "DNS_BYPASS_DOH3"

	FindingWanMismatch  FindingType = "DNS_WAN_MISMATCH"
	FindingWanNotStatic FindingType = "DNS_WAN_NOT_STATIC"
	FindingWanOrder     FindingType = "DNS_WAN_ORDER"

	FindingDnatMissing               FindingType = "DNS_DNAT_MISSING"
	FindingDnatPartialCoverage       FindingType = "DNS_DNAT_PARTIAL_COVERAGE"
	FindingDnatSingleIP              FindingType = "DNS_DNAT_SINGLE_IP"
	FindingDnatRestrictedDestination FindingType = "DNS_DNAT_RESTRICTED_DESTINATION"
	FindingDnatWrongTarget           FindingType = "DNS_DNAT_WRONG_TARGET"

	FindingDeviceDns  FindingType = "DNS_DEVICE_STATIC"
	FindingThirdParty FindingType = "DNS_THIRD_PARTY"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Finding struct {
	Type        FindingType       `json:"type"`
	Severity    Severity          `json:"severity"`
	Message     string            `json:"message"`
	Device      string            `json:"device,omitempty"`
	ScoreImpact int               `json:"score_impact"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
