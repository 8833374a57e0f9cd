package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HammerMeetNail/braincast/internal/handlers"
	"github.com/HammerMeetNail/braincast/internal/logging"
)

// Gate decisions, exported as the "decision" label of the gate counter.
const (
	GateAllow         = "allow"
	GateLoginRedirect = "login_redirect"
	GateAdminRedirect = "admin_redirect"
	GateFailOpen      = "fail_open"
)

const (
	adminPrefix    = "/admin"
	adminLoginPath = "/admin/login"
	loginPath      = "/login"
)

var protectedPrefixes = []string{"/quiz/", "/profile", "/social", "/create"}

// RouteGate decides, before a page is served, whether the visitor may see
// it. It runs after Authenticate so the profile (or a store failure) is
// already in the request context.
type RouteGate struct {
	decisions *prometheus.CounterVec
	session   func(r *http.Request) (signedIn bool, err error)
}

func NewRouteGate(registerer prometheus.Registerer) *RouteGate {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "braincast_gate_decisions_total",
		Help: "Route gate decisions by outcome.",
	}, []string{"decision"})
	if registerer != nil {
		registerer.MustRegister(decisions)
	}
	return &RouteGate{decisions: decisions, session: sessionFromContext}
}

func sessionFromContext(r *http.Request) (bool, error) {
	if handlers.GetUserFromContext(r.Context()) != nil {
		return true, nil
	}
	return false, handlers.GetSessionErrorFromContext(r.Context())
}

func (g *RouteGate) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, decision := g.decide(r)
		g.decisions.WithLabelValues(decision).Inc()
		if target == "" {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// decide returns the redirect target, or "" when the request passes.
func (g *RouteGate) decide(r *http.Request) (target, decision string) {
	path := r.URL.Path
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(r.Context()).Warn("Route gate failed open", logging.Fields{
				"path":  path,
				"panic": fmt.Sprint(rec),
			})
			target, decision = "", GateFailOpen
		}
	}()

	switch {
	case strings.HasPrefix(path, "/api/"), path == loginPath, path == adminLoginPath:
		return "", GateAllow
	case hasPathPrefix(path, adminPrefix):
		if cookie, err := r.Cookie(handlers.AdminCookieName); err == nil && cookie.Value == handlers.AdminCookieValue {
			return "", GateAllow
		}
		return adminLoginPath + "?returnUrl=" + returnURL(path), GateAdminRedirect
	case !isProtected(path):
		return "", GateAllow
	}

	signedIn, err := g.session(r)
	if signedIn {
		return "", GateAllow
	}
	if err != nil {
		logging.FromContext(r.Context()).Warn("Route gate failed open", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return "", GateFailOpen
	}
	return loginPath + "?returnUrl=" + returnURL(path), GateLoginRedirect
}

func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// hasPathPrefix matches prefix as a whole path segment, so "/profile"
// covers "/profile/edit" but not "/profiles".
func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// returnURL query-escapes path but keeps its slashes readable, giving
// /login?returnUrl=/quiz/42.
func returnURL(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}
