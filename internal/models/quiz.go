package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Quiz struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Slug         string     `json:"slug"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	AuthorID     uuid.UUID  `json:"author_id"`
	AuthorName   string     `json:"author_username"`
	Plays        int        `json:"plays"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Question struct {
	ID           uuid.UUID `json:"id"`
	QuizID       uuid.UUID `json:"quiz_id"`
	Position     int       `json:"position"`
	Prompt       string    `json:"prompt"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
}

// QuizWithQuestions is the payload returned when a quiz is opened for play.
type QuizWithQuestions struct {
	Quiz
	Questions []Question `json:"questions"`
}

type CreateQuestionParams struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type CreateQuizParams struct {
	AuthorID    uuid.UUID
	Title       string
	Description string
	CategoryID  *uuid.UUID
	Questions   []CreateQuestionParams
}
