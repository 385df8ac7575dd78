package dnsaudit

import (
	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// Snapshot is one point-in-time export of the router configuration the
// audit consumes. Build one by hand, load one from JSON, or fetch one
// with a Controller.
type Snapshot = domain.Snapshot

// Options tunes one analysis run.
type Options = domain.Options

// Result is the full audit outcome: per-protocol block results, WAN and
// device DNS detail, DNAT coverage sets, findings, and hardening notes.
type Result = domain.Result

type Finding = domain.Finding

type FindingType = domain.FindingType

const (
	FindingBypass53   = domain.FindingBypass53
	FindingBypassDoT  = domain.FindingBypassDoT
	FindingBypassDoQ  = domain.FindingBypassDoQ
	FindingBypassDoH  = domain.FindingBypassDoH
	FindingBypassDoH3 = domain.FindingBypassDoH3

	FindingWanMismatch  = domain.FindingWanMismatch
	FindingWanNotStatic = domain.FindingWanNotStatic
	FindingWanOrder     = domain.FindingWanOrder

	FindingDnatMissing               = domain.FindingDnatMissing
	FindingDnatPartialCoverage       = domain.FindingDnatPartialCoverage
	FindingDnatSingleIP              = domain.FindingDnatSingleIP
	FindingDnatRestrictedDestination = domain.FindingDnatRestrictedDestination
	FindingDnatWrongTarget           = domain.FindingDnatWrongTarget

	FindingDeviceDns  = domain.FindingDeviceDns
	FindingThirdParty = domain.FindingThirdParty
)

type Severity = domain.Severity

const (
	SeverityInfo     = domain.SeverityInfo
	SeverityLow      = domain.SeverityLow
	SeverityMedium   = domain.SeverityMedium
	SeverityHigh     = domain.SeverityHigh
	SeverityCritical = domain.SeverityCritical
)

// Snapshot building blocks, for callers assembling their own input
// instead of fetching from a controller.
type (
	FirewallRule    = domain.FirewallRule
	RuleDestination = domain.RuleDestination
	RuleSource      = domain.RuleSource
	PortGroup       = domain.PortGroup
	FirewallZone    = domain.FirewallZone
	NetworkInfo     = domain.NetworkInfo
	DnatRule        = domain.DnatRule
	DnatDestination = domain.DnatDestination
	DnatSource      = domain.DnatSource
	DohConfig       = domain.DohConfig
	DohServer       = domain.DohServer
	WanDnsConfig    = domain.WanDnsConfig
	DeviceInfo      = domain.DeviceInfo
)

type (
	WanDnsDetail      = domain.WanDnsDetail
	DeviceDnsSummary  = domain.DeviceDnsSummary
	ThirdPartyDnsInfo = domain.ThirdPartyDnsInfo
)

// Prober fingerprints candidate third-party DNS addresses. Tests and
// embedders substitute their own; NewProber returns the HTTP one.
type Prober = domain.Prober

type ProbeSignature = domain.ProbeSignature
