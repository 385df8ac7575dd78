package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ekobres/unifi-dns-audit/internal/domain"
)

// proberFor points an HTTPProber at a test server's host and port.
func proberFor(t *testing.T, ts *httptest.Server) (*HTTPProber, string) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split test server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return NewHTTPProber(WithPort(port)), host
}

func TestHTTPProber_PiHole(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/api.php" {
			w.Write([]byte(`{"status":"enabled"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	sig := prober.Probe(context.Background(), host)

	if sig == nil || sig.Product != domain.ProbeProductPiHole {
		t.Fatalf("expected Pi-hole signature, got %+v", sig)
	}
	if !sig.DNSEnabled {
		t.Error("status enabled should report DNSEnabled")
	}
}

func TestHTTPProber_PiHoleDisabled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"disabled"}`))
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	sig := prober.Probe(context.Background(), host)

	if sig == nil || sig.Product != domain.ProbeProductPiHole {
		t.Fatalf("expected Pi-hole signature, got %+v", sig)
	}
	if sig.DNSEnabled {
		t.Error("status disabled should not report DNSEnabled")
	}
}

func TestHTTPProber_AdGuardLoginPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<html><head><title>AdGuard Home</title></head></html>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	sig := prober.Probe(context.Background(), host)

	if sig == nil || sig.Product != domain.ProbeProductAdGuard {
		t.Fatalf("expected AdGuard Home signature, got %+v", sig)
	}
}

func TestHTTPProber_AdGuardViaBundle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><body><script src="/static/js/main.abc123.js"></script></body></html>`))
		case "/static/js/main.abc123.js":
			w.Write([]byte(`var t={title:"AdGuard Home",login:!0};`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	sig := prober.Probe(context.Background(), host)

	if sig == nil || sig.Product != domain.ProbeProductAdGuard {
		t.Fatalf("expected AdGuard Home signature from bundle, got %+v", sig)
	}
}

func TestHTTPProber_UnknownServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<html><body>It works!</body></html>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	if sig := prober.Probe(context.Background(), host); sig != nil {
		t.Errorf("plain web server must yield no signature, got %+v", sig)
	}
}

func TestHTTPProber_ServerErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()
	prober, host := proberFor(t, ts)

	if sig := prober.Probe(context.Background(), host); sig != nil {
		t.Errorf("5xx responses must yield no signature, got %+v", sig)
	}
}

func TestHTTPProber_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	prober, host := proberFor(t, ts)
	ts.Close()

	if sig := prober.Probe(context.Background(), host); sig != nil {
		t.Errorf("connection failure must yield no signature, got %+v", sig)
	}
}

func TestScriptRefs(t *testing.T) {
	body := `<script src="/a.js"></script>
<img src="/logo.png">
<script src="https://cdn.example.com/b.js"></script>
<script src="static/c.js"></script>`

	refs := scriptRefs(body)

	if len(refs) != 2 || refs[0] != "/a.js" || refs[1] != "static/c.js" {
		t.Errorf("scriptRefs() = %v, want local .js refs only", refs)
	}
}
