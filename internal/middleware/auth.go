package middleware

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/braincast/internal/handlers"
	"github.com/HammerMeetNail/braincast/internal/logging"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type AuthMiddleware struct {
	sessionService services.SessionServiceInterface
}

func NewAuthMiddleware(sessionService services.SessionServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{sessionService: sessionService}
}

// Authenticate validates the session cookie and adds the profile to the
// context if valid. It never rejects a request. When the session store
// cannot be consulted the failure is recorded in the context instead.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(handlers.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		profile, err := m.sessionService.ValidateSession(r.Context(), cookie.Value)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(handlers.SetUserInContext(r.Context(), profile)))
		case errors.Is(err, services.ErrSessionNotFound),
			errors.Is(err, services.ErrSessionExpired),
			errors.Is(err, services.ErrProfileNotFound):
			next.ServeHTTP(w, r)
		default:
			logging.FromContext(r.Context()).Warn("Session lookup failed", logging.Fields{"error": err.Error()})
			next.ServeHTTP(w, r.WithContext(handlers.SetSessionErrorInContext(r.Context(), err)))
		}
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
