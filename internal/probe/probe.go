package probe

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

const (
	defaultTimeout = 3 * time.Second
	maxProbeBody   = 512 << 10
	maxBundleFetch = 3

	adguardSignature = "AdGuard Home"
)

// HTTPProber fingerprints candidate LAN resolvers over their web UIs. It
// makes one bounded attempt per product per address and reports nil for
// anything it cannot positively identify, including every transport
// fault.
type HTTPProber struct {
	client *http.Client
	port   int
}

type Option func(*HTTPProber)

// WithPort probes the management UI on a non-default port.
func WithPort(port int) Option {
	return func(p *HTTPProber) {
		p.port = port
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *HTTPProber) {
		p.client.Timeout = d
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *HTTPProber) {
		p.client = c
	}
}

func NewHTTPProber(opts ...Option) *HTTPProber {
	p := &HTTPProber{
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe implements domain.Prober.
func (p *HTTPProber) Probe(ctx context.Context, address string) *domain.ProbeSignature {
	base := p.baseURL(address)
	if sig := p.probePiHole(ctx, base); sig != nil {
		return sig
	}
	return p.probeAdGuard(ctx, base)
}

func (p *HTTPProber) baseURL(address string) string {
	host := address
	if p.port != 0 && p.port != 80 {
		host = net.JoinHostPort(address, strconv.Itoa(p.port))
	}
	return "http://" + host
}

// probePiHole hits the admin API status endpoint; a JSON object carrying a
// status field is the product signature, with "enabled" meaning the DNS
// service is up.
func (p *HTTPProber) probePiHole(ctx context.Context, base string) *domain.ProbeSignature {
	body, ok := p.get(ctx, base+"/admin/api.php?status")
	if !ok {
		return nil
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Status == "" {
		return nil
	}
	return &domain.ProbeSignature{
		Product:    domain.ProbeProductPiHole,
		DNSEnabled: payload.Status == "enabled",
	}
}

// probeAdGuard fetches the login page and looks for the product name
// there, or failing that inside the first few script bundles the page
// references.
func (p *HTTPProber) probeAdGuard(ctx context.Context, base string) *domain.ProbeSignature {
	body, ok := p.get(ctx, base+"/")
	if !ok {
		return nil
	}
	if strings.Contains(body, adguardSignature) {
		return &domain.ProbeSignature{Product: domain.ProbeProductAdGuard, DNSEnabled: true}
	}
	for _, ref := range scriptRefs(body) {
		bundle, ok := p.get(ctx, base+"/"+strings.TrimPrefix(ref, "/"))
		if ok && strings.Contains(bundle, adguardSignature) {
			return &domain.ProbeSignature{Product: domain.ProbeProductAdGuard, DNSEnabled: true}
		}
	}
	return nil
}

func (p *HTTPProber) get(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return "", false
	}
	return string(body), true
}

// scriptRefs extracts same-origin JavaScript bundle paths from an HTML
// page, capped to keep a hostile page from turning one probe into many
// fetches.
func scriptRefs(body string) []string {
	var refs []string
	rest := body
	for len(refs) < maxBundleFetch {
		i := strings.Index(rest, `src="`)
		if i < 0 {
			break
		}
		rest = rest[i+len(`src="`):]
		j := strings.Index(rest, `"`)
		if j < 0 {
			break
		}
		ref := rest[:j]
		rest = rest[j:]
		if !strings.HasSuffix(ref, ".js") || strings.Contains(ref, "://") {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
