package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

const SessionCookieName = "session_token"

type AuthHandler struct {
	sessionService services.SessionServiceInterface
	verifier       services.IdentityVerifierInterface
	notifications  services.NotificationServiceInterface
	secure         bool
}

func NewAuthHandler(sessionService services.SessionServiceInterface, verifier services.IdentityVerifierInterface, notifications services.NotificationServiceInterface, secure bool) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
		verifier:       verifier,
		notifications:  notifications,
		secure:         secure,
	}
}

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type SignInRequest struct {
	Token string `json:"token"`
	Nonce string `json:"nonce"`
}

type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.sessionService.IssueNonce(r.Context())
	if err != nil {
		writeInternalError(w, r, "Error issuing sign-in nonce", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, NonceResponse{Nonce: nonce})
}

// SignIn exchanges an identity token from the social client for a session.
// The token must carry the nonce this server issued, and each nonce works
// once.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	req.Nonce = strings.TrimSpace(req.Nonce)
	if req.Token == "" || req.Nonce == "" {
		writeError(w, http.StatusBadRequest, "Token and nonce are required")
		return
	}

	claims, err := h.verifier.Verify(req.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid identity token")
		return
	}
	if claims.Nonce != req.Nonce {
		writeError(w, http.StatusUnauthorized, "Invalid or expired nonce")
		return
	}
	if err := h.sessionService.ConsumeNonce(r.Context(), req.Nonce); err != nil {
		if errors.Is(err, services.ErrInvalidNonce) {
			writeError(w, http.StatusUnauthorized, "Invalid or expired nonce")
			return
		}
		writeInternalError(w, r, "Error consuming sign-in nonce", err)
		return
	}

	fid, _ := claims.FID()
	profile, err := h.sessionService.UpsertProfile(r.Context(), models.UpsertProfileParams{
		FID:         fid,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		PfpURL:      claims.PfpURL,
	})
	if err != nil {
		writeInternalError(w, r, "Error saving profile", err)
		return
	}

	token, err := h.sessionService.CreateSession(r.Context(), profile.ID)
	if err != nil {
		writeInternalError(w, r, "Error creating session", err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionService.DeleteSession(r.Context(), cookie.Value); err != nil {
			writeInternalError(w, r, "Error deleting session", err)
			return
		}
	}
	if user := GetUserFromContext(r.Context()); user != nil && r.URL.Query().Get("forget_devices") == "true" {
		if err := h.notifications.RemoveTokens(r.Context(), user.ID); err != nil {
			writeInternalError(w, r, "Error removing notification tokens", err)
			return
		}
	}
	h.clearSessionCookie(w)
	writeSuccess(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionService.Duration().Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}
