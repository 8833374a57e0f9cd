package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/braincast/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationServiceInterface
}

func NewNotificationHandler(notificationService services.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterTokenRequest mirrors the notificationDetails object the social
// client hands the mini app when notifications are enabled.
type RegisterTokenRequest struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req RegisterTokenRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	token, err := h.notificationService.RegisterToken(r.Context(), user.ID, req.URL, req.Token)
	if errors.Is(err, services.ErrInvalidNotificationToken) {
		writeError(w, http.StatusBadRequest, "Invalid notification token")
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error registering notification token", err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

func (h *NotificationHandler) RemoveTokens(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.RemoveTokens(r.Context(), user.ID); err != nil {
		writeInternalError(w, r, "Error removing notification tokens", err)
		return
	}
	writeSuccess(w)
}
