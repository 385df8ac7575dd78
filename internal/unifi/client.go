package unifi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

const (
	defaultSite     = "default"
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = time.Minute

	// UniFi OS consoles nest the network application behind a proxy path;
	// standalone controllers serve the same endpoints at the root.
	osProxyPrefix = "/proxy/network"

	fetchConcurrency = 4
)

var errNotFound = errors.New("endpoint not found")

// Config selects the controller and how to authenticate against it.
// Username and password perform a cookie login; APIKey skips the login and
// rides along on every request instead. InsecureSkipVerify accepts the
// self-signed certificate stock controllers ship with.
type Config struct {
	BaseURL            string
	Site               string
	Username           string
	Password           string
	APIKey             string
	InsecureSkipVerify bool
	Timeout            time.Duration
	CacheTTL           time.Duration
}

// Client fetches audit snapshots from a UniFi controller. The login step
// detects whether it is talking to a UniFi OS console or a standalone
// controller and adjusts the endpoint prefix accordingly.
type Client struct {
	base     *url.URL
	site     string
	apiKey   string
	username string
	password string
	http     *http.Client
	cache    *snapshotCache

	mu       sync.Mutex
	prefix   string
	loggedIn bool
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse controller url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("controller url %q needs a scheme and host", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	site := cfg.Site
	if site == "" {
		site = defaultSite
	}

	return &Client{
		base:     base,
		site:     site,
		apiKey:   cfg.APIKey,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: transport,
		},
		cache:  newSnapshotCache(cfg.CacheTTL),
		prefix: osProxyPrefix,
	}, nil
}

// Snapshot fetches every record kind the audit consumes and reduces them
// to canonical form. The endpoints are independent, so they are fetched
// concurrently; results are cached per site for the configured TTL.
func (c *Client) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if snap, ok := c.cache.get(c.site); ok {
		return snap, nil
	}

	if err := c.login(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	var raw rawSnapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	g.Go(func() error {
		return c.getList(gCtx, c.sitePath("rest/firewallrule"), &raw.FirewallRules)
	})
	g.Go(func() error {
		return c.getList(gCtx, c.sitePath("rest/firewallgroup"), &raw.Groups)
	})
	g.Go(func() error {
		return c.getList(gCtx, c.sitePath("rest/networkconf"), &raw.Networks)
	})
	g.Go(func() error {
		return c.getList(gCtx, c.sitePath("rest/setting"), &raw.Settings)
	})
	g.Go(func() error {
		return c.getList(gCtx, c.sitePath("stat/device"), &raw.Devices)
	})
	g.Go(func() error {
		// NAT rules need a gateway on a recent release.
		return ignoreNotFound(c.getList(gCtx, c.sitePath("rest/nat"), &raw.NatRules))
	})
	g.Go(func() error {
		// Zone-based firewall endpoints do not exist on older controllers.
		return ignoreNotFound(c.getBare(gCtx, c.v2Path("firewall-policies"), &raw.Policies))
	})
	g.Go(func() error {
		return ignoreNotFound(c.getBare(gCtx, c.v2Path("firewall/zones"), &raw.Zones))
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}

	snap := buildSnapshot(raw)
	c.cache.set(c.site, snap)
	return snap, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

// login establishes a session cookie. UniFi OS consoles answer on
// /api/auth/login; a 404 there means a standalone controller, which logs
// in on /api/login and serves data endpoints without the proxy prefix.
// API-key authentication needs no session at all.
func (c *Client) login(ctx context.Context) error {
	if c.apiKey != "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}

	creds, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	status, err := c.postLogin(ctx, "/api/auth/login", creds)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		status, err = c.postLogin(ctx, "/api/login", creds)
		if err != nil {
			return err
		}
		if status/100 != 2 {
			return fmt.Errorf("login rejected with status %d", status)
		}
		c.prefix = ""
		c.loggedIn = true
		return nil
	}
	if status/100 != 2 {
		return fmt.Errorf("login rejected with status %d", status)
	}
	c.loggedIn = true
	return nil
}

func (c *Client) postLogin(ctx context.Context, path string, creds []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String()+path, bytes.NewReader(creds))
	if err != nil {
		return 0, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("login: %w", err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Client) sitePath(resource string) string {
	return fmt.Sprintf("/api/s/%s/%s", c.site, resource)
}

func (c *Client) v2Path(resource string) string {
	return fmt.Sprintf("/v2/api/site/%s/%s", c.site, resource)
}

// getList fetches a v1 endpoint and unwraps its meta/data envelope.
func (c *Client) getList(ctx context.Context, path string, out interface{}) error {
	var envelope responseEnvelope
	if err := c.getBare(ctx, path, &envelope); err != nil {
		return err
	}
	if envelope.Meta.Rc != "" && envelope.Meta.Rc != "ok" {
		msg := envelope.Meta.Msg
		if msg == "" {
			msg = envelope.Meta.Rc
		}
		return fmt.Errorf("get %s: controller error: %s", path, msg)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) getBare(ctx context.Context, path string, out interface{}) error {
	c.mu.Lock()
	prefix := c.prefix
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+prefix+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("get %s: %w", path, errNotFound)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
