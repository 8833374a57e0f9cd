package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/braincast/internal/models"
)

var (
	ErrChallengeNotFound      = errors.New("challenge not found")
	ErrChallengeNotPending    = errors.New("challenge is not pending")
	ErrNotChallengeRecipient  = errors.New("only the recipient can update this challenge")
	ErrInvalidChallengeStatus = errors.New("invalid challenge status")
	ErrInvalidTransition      = errors.New("challenge cannot move to that status")
	ErrCannotChallengeSelf    = errors.New("cannot challenge yourself")
)

const challengeColumns = "id, quiz_id, sender_id, recipient_id, status, sender_score, recipient_score, created_at, updated_at"

type ChallengeService struct {
	db       DB
	notifier Notifier
}

func NewChallengeService(db DB, notifier Notifier) *ChallengeService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ChallengeService{db: db, notifier: notifier}
}

func (s *ChallengeService) Create(ctx context.Context, senderID uuid.UUID, params models.CreateChallengeParams) (*models.Challenge, error) {
	if senderID == params.RecipientID {
		return nil, ErrCannotChallengeSelf
	}

	var quizExists bool
	if err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM quizzes WHERE id = $1)",
		params.QuizID,
	).Scan(&quizExists); err != nil {
		return nil, fmt.Errorf("checking quiz: %w", err)
	}
	if !quizExists {
		return nil, ErrQuizNotFound
	}

	challenge, err := scanChallenge(s.db.QueryRow(ctx,
		`INSERT INTO challenges (quiz_id, sender_id, recipient_id, status, sender_score)
		 VALUES ($1, $2, $3, 'pending', $4)
		 RETURNING `+challengeColumns,
		params.QuizID, senderID, params.RecipientID, params.SenderScore,
	))
	if err != nil {
		return nil, fmt.Errorf("creating challenge: %w", err)
	}

	s.notifier.Notify(params.RecipientID, models.Notification{
		Title:     "You've been challenged!",
		Body:      fmt.Sprintf("Can you beat a score of %d?", params.SenderScore),
		TargetURL: "/quiz/" + params.QuizID.String() + "?challenge=" + challenge.ID.String(),
	})

	return challenge, nil
}

// Decline moves a pending challenge addressed to userID into declined.
func (s *ChallengeService) Decline(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	current, err := scanChallenge(s.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges
		 WHERE id = $1 AND recipient_id = $2`,
		challengeID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting challenge: %w", err)
	}
	if current.Status != models.ChallengeStatusPending {
		return nil, ErrChallengeNotPending
	}

	challenge, err := scanChallenge(s.db.QueryRow(ctx,
		`UPDATE challenges SET status = 'declined', updated_at = NOW()
		 WHERE id = $1 AND recipient_id = $2 AND status = 'pending'
		 RETURNING `+challengeColumns,
		challengeID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Another request resolved it between the read and the write.
		return nil, ErrChallengeNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("declining challenge: %w", err)
	}

	s.notifier.Notify(challenge.SenderID, models.Notification{
		Title:     "Challenge declined",
		Body:      "Your challenge was declined",
		TargetURL: "/social",
	})

	return challenge, nil
}

// UpdateStatus lets the recipient move a challenge forward and attach their
// score. Any other caller gets ErrNotChallengeRecipient whatever the status.
func (s *ChallengeService) UpdateStatus(ctx context.Context, userID, challengeID uuid.UUID, params models.UpdateChallengeParams) (*models.Challenge, error) {
	current, err := s.getByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if current.RecipientID != userID {
		return nil, ErrNotChallengeRecipient
	}

	if !params.Status.IsValid() {
		return nil, ErrInvalidChallengeStatus
	}
	if params.Status == models.ChallengeStatusDeclined && params.RecipientScore != nil {
		return nil, ErrInvalidChallengeStatus
	}
	if !current.Status.CanTransitionTo(params.Status) {
		return nil, ErrInvalidTransition
	}

	challenge, err := scanChallenge(s.db.QueryRow(ctx,
		`UPDATE challenges
		 SET status = $4, recipient_score = COALESCE($5, recipient_score), updated_at = NOW()
		 WHERE id = $1 AND recipient_id = $2 AND status = $3
		 RETURNING `+challengeColumns,
		challengeID, userID, current.Status, params.Status, params.RecipientScore,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("updating challenge: %w", err)
	}

	s.notifier.Notify(challenge.SenderID, challengeNotification(challenge))

	return challenge, nil
}

func (s *ChallengeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ChallengeWithQuiz, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.quiz_id, c.sender_id, c.recipient_id, c.status, c.sender_score, c.recipient_score,
		        c.created_at, c.updated_at, q.title, ps.username, pr.username
		 FROM challenges c
		 JOIN quizzes q ON q.id = c.quiz_id
		 JOIN profiles ps ON ps.id = c.sender_id
		 JOIN profiles pr ON pr.id = c.recipient_id
		 WHERE c.sender_id = $1 OR c.recipient_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT 100`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing challenges: %w", err)
	}
	defer rows.Close()

	challenges := []models.ChallengeWithQuiz{}
	for rows.Next() {
		var c models.ChallengeWithQuiz
		if err := rows.Scan(&c.ID, &c.QuizID, &c.SenderID, &c.RecipientID, &c.Status, &c.SenderScore, &c.RecipientScore,
			&c.CreatedAt, &c.UpdatedAt, &c.QuizTitle, &c.SenderUsername, &c.RecipientUsername); err != nil {
			return nil, fmt.Errorf("scanning challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating challenges: %w", err)
	}
	return challenges, nil
}

func (s *ChallengeService) getByID(ctx context.Context, challengeID uuid.UUID) (*models.Challenge, error) {
	challenge, err := scanChallenge(s.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`,
		challengeID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting challenge: %w", err)
	}
	return challenge, nil
}

func challengeNotification(c *models.Challenge) models.Notification {
	n := models.Notification{TargetURL: "/social"}
	switch c.Status {
	case models.ChallengeStatusCompleted:
		n.Title = "Challenge completed"
		if c.RecipientScore != nil {
			n.Body = fmt.Sprintf("They scored %d against your %d", *c.RecipientScore, c.SenderScore)
		} else {
			n.Body = "Your challenge has been played"
		}
	case models.ChallengeStatusDeclined:
		n.Title = "Challenge declined"
		n.Body = "Your challenge was declined"
	default:
		n.Title = "Challenge accepted"
		n.Body = "Your challenge was accepted"
	}
	return n
}

func scanChallenge(row Row) (*models.Challenge, error) {
	c := &models.Challenge{}
	err := row.Scan(&c.ID, &c.QuizID, &c.SenderID, &c.RecipientID, &c.Status, &c.SenderScore, &c.RecipientScore, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}
