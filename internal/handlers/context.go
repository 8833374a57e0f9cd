package handlers

import (
	"context"
	"net/http"

	"github.com/HammerMeetNail/braincast/internal/models"
)

type contextKey string

const (
	userContextKey         contextKey = "user"
	sessionErrorContextKey contextKey = "session_error"
)

func SetUserInContext(ctx context.Context, user *models.Profile) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.Profile {
	user, _ := ctx.Value(userContextKey).(*models.Profile)
	return user
}

// SetSessionErrorInContext records that the session store could not be
// consulted for this request, as opposed to the session being absent.
func SetSessionErrorInContext(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, sessionErrorContextKey, err)
}

func GetSessionErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(sessionErrorContextKey).(error)
	return err
}

// requireUser returns the signed-in profile or answers 401. Mutating
// handlers call it before reading the body or touching the store.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return user, true
}
