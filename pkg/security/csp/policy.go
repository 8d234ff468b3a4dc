// Package csp assembles Content-Security-Policy header values. The API
// serves JSON only, so the production policy denies everything a browser
// would render; the builder exists so development setups and future HTML
// surfaces can relax individual directives.
package csp

import "strings"

// Policy accumulates CSP directives. Directives are emitted in the
// order they were first set, and setting a directive again replaces its
// sources without moving it.
//
// Thread safety: a Policy is not safe for concurrent mutation. Build
// the policy once at startup and reuse the resulting string.
type Policy struct {
	order      []string
	sources    map[string][]string
	reportOnly bool
}

// New returns an empty Policy.
func New() *Policy {
	return &Policy{sources: make(map[string][]string)}
}

// Set assigns the sources for one directive, e.g.
// Set("connect-src", "'self'", "https://api.example.com").
func (p *Policy) Set(directive string, sources ...string) *Policy {
	if _, seen := p.sources[directive]; !seen {
		p.order = append(p.order, directive)
	}
	p.sources[directive] = sources
	return p
}

// ReportOnly switches the policy to report-only mode, where browsers
// report violations without blocking anything. Used to trial a policy
// change before enforcing it.
func (p *Policy) ReportOnly() *Policy {
	p.reportOnly = true
	return p
}

// HeaderName returns the header this policy belongs under, which
// depends on whether it enforces or only reports.
func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// Build renders the header value. An empty policy renders "".
func (p *Policy) Build() string {
	parts := make([]string, 0, len(p.order))
	for _, directive := range p.order {
		srcs := p.sources[directive]
		if len(srcs) == 0 {
			continue
		}
		parts = append(parts, directive+" "+strings.Join(srcs, " "))
	}
	return strings.Join(parts, "; ")
}

// StrictPolicy is what production serves on every response: no fetches,
// no framing, and forms and base URIs pinned to the origin. connect-src
// stays 'self' so a same-origin dashboard could still call the API.
func StrictPolicy() *Policy {
	return New().
		Set("default-src", "'none'").
		Set("connect-src", "'self'").
		Set("frame-ancestors", "'none'").
		Set("base-uri", "'self'").
		Set("form-action", "'self'")
}

// RelaxedPolicy admits inline scripts, data URIs and any HTTPS origin.
// It exists for local development against browser tooling and must not
// reach production.
func RelaxedPolicy() *Policy {
	return New().
		Set("default-src", "'self'").
		Set("script-src", "'self'", "'unsafe-inline'", "'unsafe-eval'", "https:").
		Set("style-src", "'self'", "'unsafe-inline'", "https:").
		Set("img-src", "'self'", "data:", "https:").
		Set("font-src", "'self'", "data:", "https:").
		Set("connect-src", "'self'", "https:").
		Set("frame-ancestors", "'self'").
		Set("base-uri", "'self'").
		Set("form-action", "'self'")
}
