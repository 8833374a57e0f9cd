package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
)

// Notifier delivers a notification to a profile's devices without blocking.
type Notifier interface {
	Notify(profileID uuid.UUID, n models.Notification)
}

// SessionServiceInterface defines the contract for session and sign-in operations.
type SessionServiceInterface interface {
	Duration() time.Duration
	CreateSession(ctx context.Context, profileID uuid.UUID) (string, error)
	ValidateSession(ctx context.Context, token string) (*models.Profile, error)
	DeleteSession(ctx context.Context, token string) error
	IssueNonce(ctx context.Context) (string, error)
	ConsumeNonce(ctx context.Context, nonce string) error
	UpsertProfile(ctx context.Context, params models.UpsertProfileParams) (*models.Profile, error)
}

// IdentityVerifierInterface checks identity tokens issued by the social client.
type IdentityVerifierInterface interface {
	Verify(token string) (*IdentityClaims, error)
}

// FriendServiceInterface defines the contract for friend request operations.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error)
	Decline(ctx context.Context, userID, requestID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error)
}

// ChallengeServiceInterface defines the contract for challenge operations.
type ChallengeServiceInterface interface {
	Create(ctx context.Context, senderID uuid.UUID, params models.CreateChallengeParams) (*models.Challenge, error)
	Decline(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error)
	UpdateStatus(ctx context.Context, userID, challengeID uuid.UUID, params models.UpdateChallengeParams) (*models.Challenge, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ChallengeWithQuiz, error)
}

// QuizServiceInterface defines the contract for quiz operations.
type QuizServiceInterface interface {
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListQuizzes(ctx context.Context, categoryID *uuid.UUID) ([]models.Quiz, error)
	CreateQuiz(ctx context.Context, params models.CreateQuizParams) (*models.QuizWithQuestions, error)
}

// NotificationServiceInterface defines the contract for device token management.
type NotificationServiceInterface interface {
	RegisterToken(ctx context.Context, profileID uuid.UUID, url, token string) (*models.NotificationToken, error)
	RemoveTokens(ctx context.Context, profileID uuid.UUID) error
}
