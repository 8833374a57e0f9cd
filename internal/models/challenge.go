package models

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengeStatusPending   ChallengeStatus = "pending"
	ChallengeStatusAccepted  ChallengeStatus = "accepted"
	ChallengeStatusDeclined  ChallengeStatus = "declined"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// challengeTransitions lists, per status, the statuses the recipient may move
// the challenge to. Declined and completed are terminal.
var challengeTransitions = map[ChallengeStatus][]ChallengeStatus{
	ChallengeStatusPending:  {ChallengeStatusAccepted, ChallengeStatusDeclined, ChallengeStatusCompleted},
	ChallengeStatusAccepted: {ChallengeStatusAccepted, ChallengeStatusCompleted},
}

func (s ChallengeStatus) IsValid() bool {
	switch s {
	case ChallengeStatusPending, ChallengeStatusAccepted, ChallengeStatusDeclined, ChallengeStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle
// moving forward.
func (s ChallengeStatus) CanTransitionTo(next ChallengeStatus) bool {
	for _, allowed := range challengeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Challenge struct {
	ID             uuid.UUID       `json:"id"`
	QuizID         uuid.UUID       `json:"quiz_id"`
	SenderID       uuid.UUID       `json:"sender_id"`
	RecipientID    uuid.UUID       `json:"recipient_id"`
	Status         ChallengeStatus `json:"status"`
	SenderScore    int             `json:"sender_score"`
	RecipientScore *int            `json:"recipient_score"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateChallengeParams struct {
	QuizID      uuid.UUID
	RecipientID uuid.UUID
	SenderScore int
}

type UpdateChallengeParams struct {
	Status         ChallengeStatus
	RecipientScore *int
}

// ChallengeWithQuiz adds display fields for challenge lists.
type ChallengeWithQuiz struct {
	Challenge
	QuizTitle         string `json:"quiz_title"`
	SenderUsername    string `json:"sender_username"`
	RecipientUsername string `json:"recipient_username"`
}
