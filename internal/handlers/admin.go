package handlers

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	AdminCookieName  = "adminSession"
	AdminCookieValue = "true"
	adminSessionTTL  = 8 * time.Hour
)

type AdminHandler struct {
	passwordHash []byte
	secure       bool
}

func NewAdminHandler(passwordHash string, secure bool) *AdminHandler {
	return &AdminHandler{passwordHash: []byte(passwordHash), secure: secure}
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Login sets the admin flag cookie the route gate checks for /admin pages.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if len(h.passwordHash) == 0 {
		writeError(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	var req AdminLoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    AdminCookieValue,
		Path:     "/",
		MaxAge:   int(adminSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeSuccess(w)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
	writeSuccess(w)
}
