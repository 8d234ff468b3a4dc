// Package identity derives the rate limiting scope of a request: the JWT
// subject when the caller presents a valid bearer token, the client IP
// otherwise.
package identity

import (
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver turns an incoming request into a rate limiting scope.
//
// With a configured secret, requests carrying a valid HS256 bearer token are
// scoped per subject ("user:<sub>") so one client behind a shared NAT cannot
// exhaust another's quota. Everything else falls back to the client IP
// ("ip:<addr>"). An invalid token is treated like no token at all; quota
// scoping must not turn into an authentication gate.
type Resolver struct {
	secret []byte
}

// NewResolver creates a Resolver. An empty secret disables token scoping and
// every request is scoped by IP.
func NewResolver(secret string) *Resolver {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Resolver{secret: key}
}

// Scope returns the rate limiting scope for the request.
func (res *Resolver) Scope(r *http.Request) string {
	if sub := res.subject(r); sub != "" {
		return "user:" + sub
	}
	return "ip:" + ClientIP(r)
}

// subject extracts the verified JWT subject from the Authorization header,
// or "" when absent or invalid.
func (res *Resolver) subject(r *http.Request) string {
	if len(res.secret) == 0 {
		return ""
	}

	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return res.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// ClientIP extracts the client IP address from the HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first IP address from a comma-separated list.
func parseFirstIP(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			ip := net.ParseIP(s[:i])
			if ip != nil {
				return ip.String()
			}
			return ""
		}
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
