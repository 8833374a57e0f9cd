package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type QuizHandler struct {
	quizService services.QuizServiceInterface
}

func NewQuizHandler(quizService services.QuizServiceInterface) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

type CreateQuizRequest struct {
	Title       string                        `json:"title"`
	Description string                        `json:"description"`
	CategoryID  string                        `json:"category_id"`
	Questions   []models.CreateQuestionParams `json:"questions"`
}

type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

type QuizListResponse struct {
	Quizzes []models.Quiz `json:"quizzes"`
}

// Get is public. Every successful read counts as a play.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}

	quiz, err := h.quizService.GetQuiz(r.Context(), quizID)
	if errors.Is(err, services.ErrQuizNotFound) {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	if err != nil {
		writeInternalError(w, r, "Error loading quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.quizService.ListCategories(r.Context())
	if err != nil {
		writeInternalError(w, r, "Error listing categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: categories})
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *uuid.UUID
	if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	quizzes, err := h.quizService.ListQuizzes(r.Context(), categoryID)
	if err != nil {
		writeInternalError(w, r, "Error listing quizzes", err)
		return
	}
	writeJSON(w, http.StatusOK, QuizListResponse{Quizzes: quizzes})
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateQuizRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	params := models.CreateQuizParams{
		AuthorID:    user.ID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Questions:   req.Questions,
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		params.CategoryID = &id
	}

	quiz, err := h.quizService.CreateQuiz(r.Context(), params)
	switch {
	case errors.Is(err, services.ErrInvalidQuiz):
		writeError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, services.ErrCategoryNotFound):
		writeError(w, http.StatusBadRequest, "Category not found")
	case err != nil:
		writeInternalError(w, r, "Error creating quiz", err)
	default:
		writeJSON(w, http.StatusCreated, quiz)
	}
}

// validationMessage strips the sentinel prefix from a wrapped validation
// error, leaving the detail for the client.
func validationMessage(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok && detail != "" {
		return strings.ToUpper(detail[:1]) + detail[1:]
	}
	return msg
}
