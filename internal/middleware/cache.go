package middleware

import (
	"net/http"
	"strings"
)

// CacheControl sets Cache-Control by route family. API answers and gated
// pages depend on the session, so only static assets are cacheable.
type CacheControl struct{}

// NewCacheControl creates a new cache control middleware.
func NewCacheControl() *CacheControl {
	return &CacheControl{}
}

// Apply adds cache headers based on the request path.
func (c *CacheControl) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheHeaderFor(r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func cacheHeaderFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/static/"):
		lower := strings.ToLower(path)
		if strings.HasSuffix(lower, ".css") || strings.HasSuffix(lower, ".js") {
			return "public, max-age=86400, must-revalidate"
		}
		if isImageAsset(lower) {
			return "public, max-age=31536000, immutable"
		}
		return "public, max-age=3600"
	case strings.HasPrefix(path, "/api/"), path == "/metrics":
		return "no-store"
	default:
		return "no-cache, private"
	}
}

func isImageAsset(path string) bool {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".woff2"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
