package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
	"github.com/HammerMeetNail/braincast/internal/services"
)

type fakeSessionService struct {
	validate func(ctx context.Context, token string) (*models.Profile, error)
}

func (f *fakeSessionService) Duration() time.Duration { return time.Hour }

func (f *fakeSessionService) CreateSession(ctx context.Context, profileID uuid.UUID) (string, error) {
	return "", nil
}

func (f *fakeSessionService) ValidateSession(ctx context.Context, token string) (*models.Profile, error) {
	if f.validate != nil {
		return f.validate(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (f *fakeSessionService) DeleteSession(ctx context.Context, token string) error { return nil }

func (f *fakeSessionService) IssueNonce(ctx context.Context) (string, error) { return "", nil }

func (f *fakeSessionService) ConsumeNonce(ctx context.Context, nonce string) error { return nil }

func (f *fakeSessionService) UpsertProfile(ctx context.Context, params models.UpsertProfileParams) (*models.Profile, error) {
	return nil, nil
}
