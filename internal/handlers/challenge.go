package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type ChallengeHandler struct {
	challengeService services.ChallengeServiceInterface
}

func NewChallengeHandler(challengeService services.ChallengeServiceInterface) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

type CreateChallengeRequest struct {
	QuizID      string `json:"quiz_id"`
	RecipientID string `json:"recipient_id"`
	SenderScore int    `json:"sender_score"`
}

type UpdateChallengeRequest struct {
	Status         string `json:"status"`
	RecipientScore *int   `json:"recipient_score"`
}

type ChallengeListResponse struct {
	Challenges []models.ChallengeWithQuiz `json:"challenges"`
}

// writeChallengeError maps challenge service errors onto HTTP statuses.
func writeChallengeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "Challenge not found")
	case errors.Is(err, services.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, services.ErrNotChallengeRecipient):
		writeError(w, http.StatusUnauthorized, "Only the recipient can update this challenge")
	case errors.Is(err, services.ErrChallengeNotPending):
		writeError(w, http.StatusBadRequest, "Challenge is not pending")
	case errors.Is(err, services.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "Challenge cannot move to that status")
	case errors.Is(err, services.ErrInvalidChallengeStatus):
		writeError(w, http.StatusBadRequest, "Invalid challenge status")
	case errors.Is(err, services.ErrCannotChallengeSelf):
		writeError(w, http.StatusBadRequest, "Cannot challenge yourself")
	default:
		writeInternalError(w, r, "Challenge operation failed", err)
	}
}

func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	challenges, err := h.challengeService.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeInternalError(w, r, "Error listing challenges", err)
		return
	}
	writeJSON(w, http.StatusOK, ChallengeListResponse{Challenges: challenges})
}

func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateChallengeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quiz ID")
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient ID")
		return
	}
	if req.SenderScore < 0 {
		writeError(w, http.StatusBadRequest, "Score cannot be negative")
		return
	}

	challenge, err := h.challengeService.Create(r.Context(), user.ID, models.CreateChallengeParams{
		QuizID:      quizID,
		RecipientID: recipientID,
		SenderScore: req.SenderScore,
	})
	if err != nil {
		writeChallengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	challengeID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Challenge not found")
		return
	}

	if _, err := h.challengeService.Decline(r.Context(), user.ID, challengeID); err != nil {
		writeChallengeError(w, r, err)
		return
	}
	writeSuccess(w)
}

func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	challengeID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Challenge not found")
		return
	}

	var req UpdateChallengeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.RecipientScore != nil && *req.RecipientScore < 0 {
		writeError(w, http.StatusBadRequest, "Score cannot be negative")
		return
	}

	challenge, err := h.challengeService.UpdateStatus(r.Context(), user.ID, challengeID, models.UpdateChallengeParams{
		Status:         models.ChallengeStatus(req.Status),
		RecipientScore: req.RecipientScore,
	})
	if err != nil {
		writeChallengeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}
