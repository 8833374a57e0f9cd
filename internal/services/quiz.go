package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/braincast/internal/models"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrInvalidQuiz      = errors.New("invalid quiz")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	maxQuizTitleLength = 120
	maxQuizQuestions   = 50
	quizListLimit      = 50
)

type QuizService struct {
	db DB
}

func NewQuizService(db DB) *QuizService {
	return &QuizService{db: db}
}

// GetQuiz loads a quiz with its ordered questions and counts one play.
func (s *QuizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error) {
	quiz := &models.QuizWithQuestions{}
	var categoryName *string
	err := s.db.QueryRow(ctx,
		`SELECT q.id, q.title, q.description, q.category_id, c.name, q.author_id, p.username, q.plays, q.created_at
		 FROM quizzes q
		 LEFT JOIN categories c ON c.id = q.category_id
		 JOIN profiles p ON p.id = q.author_id
		 WHERE q.id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CategoryID, &categoryName, &quiz.AuthorID, &quiz.AuthorName, &quiz.Plays, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting quiz: %w", err)
	}
	if categoryName != nil {
		quiz.CategoryName = *categoryName
	}
	quiz.Slug = slug.Make(quiz.Title)

	rows, err := s.db.Query(ctx,
		`SELECT id, quiz_id, position, prompt, options, correct_index
		 FROM questions WHERE quiz_id = $1
		 ORDER BY position`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Position, &q.Prompt, &q.Options, &q.CorrectIndex); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}

	// Single-statement increment so concurrent plays are never lost.
	var plays int
	err = s.db.QueryRow(ctx,
		"UPDATE quizzes SET plays = plays + 1 WHERE id = $1 RETURNING plays",
		quizID,
	).Scan(&plays)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("incrementing plays: %w", err)
	}
	quiz.Plays = plays

	return quiz, nil
}

func (s *QuizService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.Query(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// ListQuizzes returns the newest quizzes, optionally restricted to one category.
func (s *QuizService) ListQuizzes(ctx context.Context, categoryID *uuid.UUID) ([]models.Quiz, error) {
	rows, err := s.db.Query(ctx,
		`SELECT q.id, q.title, q.description, q.category_id, COALESCE(c.name, ''), q.author_id, p.username, q.plays, q.created_at
		 FROM quizzes q
		 LEFT JOIN categories c ON c.id = q.category_id
		 JOIN profiles p ON p.id = q.author_id
		 WHERE $1::uuid IS NULL OR q.category_id = $1
		 ORDER BY q.created_at DESC
		 LIMIT $2`,
		categoryID, quizListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.CategoryID, &q.CategoryName, &q.AuthorID, &q.AuthorName, &q.Plays, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning quiz: %w", err)
		}
		q.Slug = slug.Make(q.Title)
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quizzes: %w", err)
	}
	return quizzes, nil
}

// CreateQuiz inserts a quiz and its questions in one transaction.
func (s *QuizService) CreateQuiz(ctx context.Context, params models.CreateQuizParams) (*models.QuizWithQuestions, error) {
	params.Title = strings.TrimSpace(params.Title)
	if err := validateQuizParams(params); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if params.CategoryID != nil {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)",
			*params.CategoryID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking category: %w", err)
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
	}

	quiz := &models.QuizWithQuestions{}
	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, description, category_id, author_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, description, category_id, author_id, plays, created_at`,
		params.Title, params.Description, params.CategoryID, params.AuthorID,
	).Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.CategoryID, &quiz.AuthorID, &quiz.Plays, &quiz.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting quiz: %w", err)
	}
	quiz.Slug = slug.Make(quiz.Title)

	quiz.Questions = make([]models.Question, 0, len(params.Questions))
	for i, qp := range params.Questions {
		q := models.Question{QuizID: quiz.ID, Position: i, Prompt: strings.TrimSpace(qp.Prompt), Options: qp.Options, CorrectIndex: qp.CorrectIndex}
		if err := tx.QueryRow(ctx,
			`INSERT INTO questions (quiz_id, position, prompt, options, correct_index)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			quiz.ID, q.Position, q.Prompt, q.Options, q.CorrectIndex,
		).Scan(&q.ID); err != nil {
			return nil, fmt.Errorf("inserting question %d: %w", i, err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing quiz: %w", err)
	}
	return quiz, nil
}

func validateQuizParams(params models.CreateQuizParams) error {
	if params.Title == "" || len(params.Title) > maxQuizTitleLength {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidQuiz, maxQuizTitleLength)
	}
	if len(params.Questions) == 0 || len(params.Questions) > maxQuizQuestions {
		return fmt.Errorf("%w: a quiz needs 1-%d questions", ErrInvalidQuiz, maxQuizQuestions)
	}
	for i, q := range params.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has no prompt", ErrInvalidQuiz, i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuiz, i+1)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d has no valid correct answer", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}
