package middleware

import (
	"net/http"
	"strings"
)

// frameAncestors are the Farcaster clients allowed to embed the app as a
// mini app.
var frameAncestors = []string{
	"'self'",
	"https://farcaster.xyz",
	"https://*.farcaster.xyz",
	"https://warpcast.com",
	"https://*.warpcast.com",
}

// SecurityHeaders adds security-related HTTP headers to responses.
type SecurityHeaders struct {
	secure bool
	csp    string
}

// NewSecurityHeaders creates a new security headers middleware.
func NewSecurityHeaders(secure bool) *SecurityHeaders {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"connect-src 'self'",
		"frame-ancestors " + strings.Join(frameAncestors, " "),
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
	return &SecurityHeaders{secure: secure, csp: csp}
}

// Apply adds security headers to all responses.
func (s *SecurityHeaders) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		// No X-Frame-Options: framing is governed by frame-ancestors so the
		// Farcaster client can host the app.
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		h.Set("Content-Security-Policy", s.csp)
		if s.secure {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
