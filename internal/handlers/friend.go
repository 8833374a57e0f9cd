package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type SendFriendRequest struct {
	RecipientID string `json:"recipient_id"`
}

type FriendListResponse struct {
	Friends  []models.FriendWithProfile `json:"friends"`
	Requests []models.FriendWithProfile `json:"requests"`
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, r, "Error listing friends", err)
		return
	}
	requests, err := h.friendService.ListPending(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, r, "Error listing friend requests", err)
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{Friends: friends, Requests: requests})
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SendFriendRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient ID")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, recipientID)
	switch {
	case errors.Is(err, services.ErrCannotFriendSelf):
		writeError(w, http.StatusBadRequest, "Cannot send friend request to yourself")
	case errors.Is(err, services.ErrFriendRequestExists):
		writeError(w, http.StatusConflict, "Friend request already exists")
	case err != nil:
		writeInternalError(w, r, "Error sending friend request", err)
	default:
		writeJSON(w, http.StatusCreated, request)
	}
}

// Accept answers 404 for unknown ids, requests addressed to someone else
// and requests that are no longer pending alike.
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	requestID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}

	request, err := h.friendService.Accept(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrFriendRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error accepting friend request", err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

func (h *FriendHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	requestID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}

	err = h.friendService.Decline(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrFriendRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error declining friend request", err)
		return
	}

	writeSuccess(w)
}
