package permission

import "slices"

// Wildcard satisfies any endpoint's requirement. Callers holding it can
// reach every endpoint, and endpoints requiring only it are public.
const Wildcard = "*"

// DefaultEndpoints maps each known endpoint to the permissions that grant
// access to it. Health and demo/read endpoints are effectively public.
var DefaultEndpoints = map[string][]string{
	"/predict":        {"predict", Wildcard},
	"/explain":        {"explain", Wildcard},
	"/features":       {"read", "features", Wildcard},
	"/metrics":        {"read", "metrics", Wildcard},
	"/status":         {"read", Wildcard},
	"/health":         {Wildcard},
	"/control/start":  {"admin", "control", Wildcard},
	"/control/stop":   {"admin", "control", Wildcard},
	"/control/config": {"admin", "control", Wildcard},
	"/demo-data":      {"read", "demo", Wildcard},
}

// Checker decides whether a caller's permission set grants access to an
// endpoint. It is a pure lookup over a static table, independent of how the
// caller was authenticated. The zero-config Checker uses DefaultEndpoints
// and treats unknown endpoints as public; use WithDefaultDeny to fail
// closed instead.
type Checker struct {
	endpoints   map[string][]string
	defaultDeny bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithEndpoints replaces the whole endpoint table.
func WithEndpoints(endpoints map[string][]string) Option {
	return func(c *Checker) {
		if endpoints != nil {
			c.endpoints = endpoints
		}
	}
}

// WithEndpoint adds or overrides a single endpoint's required set.
func WithEndpoint(endpoint string, required ...string) Option {
	return func(c *Checker) {
		c.endpoints[endpoint] = required
	}
}

// WithDefaultDeny makes unknown endpoints require the wildcard permission
// instead of being open to everyone.
func WithDefaultDeny() Option {
	return func(c *Checker) {
		c.defaultDeny = true
	}
}

// NewChecker creates a permission checker over DefaultEndpoints,
// adjusted by the given options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{endpoints: make(map[string][]string, len(DefaultEndpoints))}
	for endpoint, required := range DefaultEndpoints {
		c.endpoints[endpoint] = slices.Clone(required)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasPermission reports whether the permission set grants access to the
// endpoint: true when the caller holds the wildcard, when the endpoint is
// public (requires only the wildcard), or when the two sets intersect.
func (c *Checker) HasPermission(endpoint string, permissions []string) bool {
	if slices.Contains(permissions, Wildcard) {
		return true
	}

	required, known := c.endpoints[endpoint]
	if !known {
		// Fail-open by default: an unlisted endpoint behaves as public.
		return !c.defaultDeny
	}

	if isPublic(required) {
		return true
	}

	for _, p := range permissions {
		if slices.Contains(required, p) {
			return true
		}
	}
	return false
}

// Endpoints returns a copy of the endpoint table, for status reporting.
func (c *Checker) Endpoints() map[string][]string {
	out := make(map[string][]string, len(c.endpoints))
	for endpoint, required := range c.endpoints {
		out[endpoint] = slices.Clone(required)
	}
	return out
}

func isPublic(required []string) bool {
	return len(required) == 1 && required[0] == Wildcard
}
