package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type mockSessionService struct {
	CreateSessionFunc   func(ctx context.Context, profileID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.Profile, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
	IssueNonceFunc      func(ctx context.Context) (string, error)
	ConsumeNonceFunc    func(ctx context.Context, nonce string) error
	UpsertProfileFunc   func(ctx context.Context, params models.UpsertProfileParams) (*models.Profile, error)
}

func (m *mockSessionService) Duration() time.Duration {
	return time.Hour
}

func (m *mockSessionService) CreateSession(ctx context.Context, profileID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, profileID)
	}
	return "session-token", nil
}

func (m *mockSessionService) ValidateSession(ctx context.Context, token string) (*models.Profile, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *mockSessionService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

func (m *mockSessionService) IssueNonce(ctx context.Context) (string, error) {
	if m.IssueNonceFunc != nil {
		return m.IssueNonceFunc(ctx)
	}
	return "nonce", nil
}

func (m *mockSessionService) ConsumeNonce(ctx context.Context, nonce string) error {
	if m.ConsumeNonceFunc != nil {
		return m.ConsumeNonceFunc(ctx, nonce)
	}
	return nil
}

func (m *mockSessionService) UpsertProfile(ctx context.Context, params models.UpsertProfileParams) (*models.Profile, error) {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, params)
	}
	return &models.Profile{ID: uuid.New(), FID: params.FID, Username: params.Username}, nil
}

type mockVerifier struct {
	VerifyFunc func(token string) (*services.IdentityClaims, error)
}

func (m *mockVerifier) Verify(token string) (*services.IdentityClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return nil, services.ErrInvalidIdentityToken
}

type mockFriendService struct {
	SendRequestFunc func(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	AcceptFunc      func(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error)
	DeclineFunc     func(ctx context.Context, userID, requestID uuid.UUID) error
	ListFriendsFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error)
	ListPendingFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error)
}

func (m *mockFriendService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, senderID, recipientID)
	}
	return &models.FriendRequest{}, nil
}

func (m *mockFriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, userID, requestID)
	}
	return &models.FriendRequest{}, nil
}

func (m *mockFriendService) Decline(ctx context.Context, userID, requestID uuid.UUID) error {
	if m.DeclineFunc != nil {
		return m.DeclineFunc(ctx, userID, requestID)
	}
	return nil
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return []models.FriendWithProfile{}, nil
}

func (m *mockFriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, userID)
	}
	return []models.FriendWithProfile{}, nil
}

type mockChallengeService struct {
	CreateFunc       func(ctx context.Context, senderID uuid.UUID, params models.CreateChallengeParams) (*models.Challenge, error)
	DeclineFunc      func(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error)
	UpdateStatusFunc func(ctx context.Context, userID, challengeID uuid.UUID, params models.UpdateChallengeParams) (*models.Challenge, error)
	ListForUserFunc  func(ctx context.Context, userID uuid.UUID) ([]models.ChallengeWithQuiz, error)
}

func (m *mockChallengeService) Create(ctx context.Context, senderID uuid.UUID, params models.CreateChallengeParams) (*models.Challenge, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, senderID, params)
	}
	return &models.Challenge{}, nil
}

func (m *mockChallengeService) Decline(ctx context.Context, userID, challengeID uuid.UUID) (*models.Challenge, error) {
	if m.DeclineFunc != nil {
		return m.DeclineFunc(ctx, userID, challengeID)
	}
	return &models.Challenge{}, nil
}

func (m *mockChallengeService) UpdateStatus(ctx context.Context, userID, challengeID uuid.UUID, params models.UpdateChallengeParams) (*models.Challenge, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, userID, challengeID, params)
	}
	return &models.Challenge{}, nil
}

func (m *mockChallengeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ChallengeWithQuiz, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return []models.ChallengeWithQuiz{}, nil
}

type mockQuizService struct {
	GetQuizFunc        func(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error)
	ListCategoriesFunc func(ctx context.Context) ([]models.Category, error)
	ListQuizzesFunc    func(ctx context.Context, categoryID *uuid.UUID) ([]models.Quiz, error)
	CreateQuizFunc     func(ctx context.Context, params models.CreateQuizParams) (*models.QuizWithQuestions, error)
}

func (m *mockQuizService) GetQuiz(ctx context.Context, quizID uuid.UUID) (*models.QuizWithQuestions, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, quizID)
	}
	return &models.QuizWithQuestions{}, nil
}

func (m *mockQuizService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return []models.Category{}, nil
}

func (m *mockQuizService) ListQuizzes(ctx context.Context, categoryID *uuid.UUID) ([]models.Quiz, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx, categoryID)
	}
	return []models.Quiz{}, nil
}

func (m *mockQuizService) CreateQuiz(ctx context.Context, params models.CreateQuizParams) (*models.QuizWithQuestions, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, params)
	}
	return &models.QuizWithQuestions{}, nil
}

type mockNotificationService struct {
	RegisterTokenFunc func(ctx context.Context, profileID uuid.UUID, url, token string) (*models.NotificationToken, error)
	RemoveTokensFunc  func(ctx context.Context, profileID uuid.UUID) error
}

func (m *mockNotificationService) RegisterToken(ctx context.Context, profileID uuid.UUID, url, token string) (*models.NotificationToken, error) {
	if m.RegisterTokenFunc != nil {
		return m.RegisterTokenFunc(ctx, profileID, url, token)
	}
	return &models.NotificationToken{ProfileID: profileID, URL: url, Token: token}, nil
}

func (m *mockNotificationService) RemoveTokens(ctx context.Context, profileID uuid.UUID) error {
	if m.RemoveTokensFunc != nil {
		return m.RemoveTokensFunc(ctx, profileID)
	}
	return nil
}
