// Package dnsaudit audits a UniFi gateway's configuration for DNS leak
// paths: firewall rules that fail to block bypass protocols, WAN DNS that
// disagrees with the configured DoH provider, and NAT redirects that miss
// networks or point at the wrong resolver.
package dnsaudit

import (
	"context"
	"io"
	"time"

	"github.com/ekobres/unifi-dns-audit/internal/analyzer"
	"github.com/ekobres/unifi-dns-audit/internal/probe"
	"github.com/ekobres/unifi-dns-audit/internal/report"
	"github.com/ekobres/unifi-dns-audit/internal/unifi"
)

// Analyze evaluates one configuration snapshot. The evaluation is pure;
// the only I/O is the optional third-party resolver probe in opts, and a
// nil or empty snapshot produces the same defaults a blank router would.
func Analyze(ctx context.Context, snap Snapshot, opts Options) Result {
	return analyzer.Analyze(ctx, snap, opts)
}

// ControllerConfig selects a UniFi controller and how to authenticate
// against it.
type ControllerConfig = unifi.Config

// Controller fetches snapshots from a live UniFi controller.
type Controller = unifi.Client

func NewController(cfg ControllerConfig) (*Controller, error) {
	return unifi.NewClient(cfg)
}

// NewProber returns the HTTP prober used to fingerprint third-party DNS
// servers (Pi-hole, AdGuard Home). Port 0 keeps the default management
// port; a zero timeout keeps the default.
func NewProber(port int, timeout time.Duration) Prober {
	var opts []probe.Option
	if port != 0 {
		opts = append(opts, probe.WithPort(port))
	}
	if timeout > 0 {
		opts = append(opts, probe.WithTimeout(timeout))
	}
	return probe.NewHTTPProber(opts...)
}

// Score folds a result's finding impacts into a 0-100 score.
func Score(result Result) int {
	return report.Score(result)
}

// Grade maps a score onto the A+ through F banding.
func Grade(score int) string {
	return report.Grade(score)
}

// Render writes the human-readable report for a result.
func Render(w io.Writer, result Result) error {
	return report.Render(w, result)
}

// RenderJSON writes the result with its score and grade as indented JSON.
func RenderJSON(w io.Writer, result Result) error {
	return report.RenderJSON(w, result)
}
