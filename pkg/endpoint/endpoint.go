// Package endpoint decides where tile data comes from.
//
// A deployment has up to two endpoint classes: a self-hosted host that
// serves archives with byte-range support plus a dynamic tile endpoint,
// and a static fallback host with only pre-built archives. The resolver
// probes the self-hosted host's health endpoint with a bounded timeout
// and prefers it when reachable — even from a publicly hosted page,
// since byte-range serving is the better path whenever it is available.
//
// Selection happens once per session and is memoized; a dead self-hosted
// endpoint costs at most one probe timeout, never a stall per tile.
package endpoint

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds the liveness check so a dead self-hosted
// endpoint cannot stall page load.
const DefaultProbeTimeout = 2 * time.Second

// Class is a category of serving backend.
type Class int

// Endpoint classes, in preference order.
const (
	// SelfHosted serves archives with byte ranges and dynamic tiles.
	SelfHosted Class = iota
	// Fallback serves only pre-built static archives.
	Fallback
)

// String returns the class name for logs.
func (c Class) String() string {
	if c == SelfHosted {
		return "self-hosted"
	}
	return "fallback"
}

// DeploymentContext describes where the viewer itself is running.
type DeploymentContext int

// Deployment contexts.
const (
	// Local means the viewer is served from a development machine and
	// the self-hosted stack is expected nearby.
	Local DeploymentContext = iota
	// Hosted means the viewer is served from a public host; the
	// self-hosted stack may still be reachable and is still preferred.
	Hosted
)

// String returns the context name for logs.
func (d DeploymentContext) String() string {
	if d == Hosted {
		return "hosted"
	}
	return "local"
}

// Set names the sub-resources of one endpoint class. Only SelfHosted
// carries a dynamic base and health URL; Fallback is static-only.
type Set struct {
	StaticBase  string // base URL for archive byte-range fetches
	DynamicBase string // base URL for dynamic tile generation, SelfHosted only
	HealthURL   string // liveness endpoint, SelfHosted only
}

// StaticURL returns the byte-range fetch URL for a named archive.
func (s Set) StaticURL(name string) string {
	return strings.TrimSuffix(s.StaticBase, "/") + "/" + name
}

// Probe issues a single cancellable liveness check against healthURL.
//
// It returns true only for a 2xx response within timeout. Timeouts,
// network failures and error statuses all yield false; Probe never
// returns an error. A timeout of 0 uses [DefaultProbeTimeout].
func Probe(ctx context.Context, healthURL string, timeout time.Duration) bool {
	if healthURL == "" {
		return false
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Resolver selects an endpoint class once per session.
//
// The zero timeout means [DefaultProbeTimeout]. Resolver is safe for
// concurrent use; the probe runs at most once.
type Resolver struct {
	SelfHosted Set
	Fallback   Set

	// Context records where the viewer runs. Selection does not branch
	// on it: both deployment contexts probe the self-hosted health URL
	// and prefer self-hosted whenever it is reachable. It is kept for
	// diagnostics output.
	Context DeploymentContext

	Timeout time.Duration

	once     sync.Once
	selected Class
}

// Select probes the self-hosted endpoint and returns the chosen class.
// The result is memoized for the lifetime of the resolver; tile requests
// never re-probe.
func (r *Resolver) Select(ctx context.Context) Class {
	r.once.Do(func() {
		if Probe(ctx, r.SelfHosted.HealthURL, r.Timeout) {
			r.selected = SelfHosted
			return
		}
		r.selected = Fallback
	})
	return r.selected
}

// Endpoints returns the sub-resource set of the selected class.
func (r *Resolver) Endpoints(ctx context.Context) Set {
	if r.Select(ctx) == SelfHosted {
		return r.SelfHosted
	}
	return r.Fallback
}

// DynamicTileURL returns a z/x/y tile URL template for a dynamic source,
// or "" when the selected class has no dynamic capability. Callers must
// treat dynamic-source layers as optional and omit them on "".
func (r *Resolver) DynamicTileURL(ctx context.Context, source string) string {
	if r.Select(ctx) != SelfHosted || r.SelfHosted.DynamicBase == "" {
		return ""
	}
	return strings.TrimSuffix(r.SelfHosted.DynamicBase, "/") + "/mvt/" + source + "/{z}/{x}/{y}.mvt"
}
