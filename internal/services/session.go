package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/braincast/internal/models"
)

const (
	defaultSessionDuration = 30 * 24 * time.Hour
	sessionKeyPrefix       = "session:"
	nonceKeyPrefix         = "signin_nonce:"
	nonceDuration          = 5 * time.Minute
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidNonce    = errors.New("invalid or expired nonce")
	ErrProfileNotFound = errors.New("profile not found")
)

// SessionService is the cookie-backed session store. Redis holds live
// sessions; Postgres is the fallback when Redis is unavailable.
type SessionService struct {
	db       DB
	redis    *redis.Client
	duration time.Duration
}

func NewSessionService(db DB, redisClient *redis.Client, duration time.Duration) *SessionService {
	if duration <= 0 {
		duration = defaultSessionDuration
	}
	return &SessionService{
		db:       db,
		redis:    redisClient,
		duration: duration,
	}
}

func (s *SessionService) Duration() time.Duration {
	return s.duration
}

func (s *SessionService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *SessionService) CreateSession(ctx context.Context, profileID uuid.UUID) (string, error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	err = s.redis.Set(ctx, sessionKeyPrefix+tokenHash, profileID.String(), s.duration).Err()
	if err != nil {
		_, err = s.db.Exec(ctx,
			`INSERT INTO sessions (profile_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
			profileID, tokenHash, time.Now().Add(s.duration),
		)
		if err != nil {
			return "", fmt.Errorf("creating session in database: %w", err)
		}
	}

	return token, nil
}

// ValidateSession resolves a session token to its profile. ErrSessionNotFound
// and ErrSessionExpired mean the caller is signed out; any other error means
// the store could not be consulted.
func (s *SessionService) ValidateSession(ctx context.Context, token string) (*models.Profile, error) {
	tokenHash := hashToken(token)
	redisKey := sessionKeyPrefix + tokenHash

	profileIDStr, err := s.redis.Get(ctx, redisKey).Result()
	if err == nil {
		s.redis.Expire(ctx, redisKey, s.duration)

		profileID, err := uuid.Parse(profileIDStr)
		if err != nil {
			return nil, fmt.Errorf("parsing profile id: %w", err)
		}
		profile, err := s.GetProfile(ctx, profileID)
		if errors.Is(err, ErrProfileNotFound) {
			// Profile deletes cascade to Postgres sessions only.
			s.redis.Del(ctx, redisKey)
			return nil, ErrSessionNotFound
		}
		return profile, err
	}

	var session models.Session
	err = s.db.QueryRow(ctx,
		`SELECT id, profile_id, token_hash, expires_at, created_at
		 FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&session.ID, &session.ProfileID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_, _ = s.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", session.ID)
		return nil, ErrSessionExpired
	}

	profile, err := s.GetProfile(ctx, session.ProfileID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrSessionNotFound
	}
	return profile, err
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	s.redis.Del(ctx, sessionKeyPrefix+tokenHash)

	_, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges Postgres fallback sessions past their expiry.
// Redis sessions expire on their own.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// IssueNonce returns a single-use value the client must embed in its
// identity token.
func (s *SessionService) IssueNonce(ctx context.Context) (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	nonce := hex.EncodeToString(bytes)

	if err := s.redis.Set(ctx, nonceKeyPrefix+nonce, "1", nonceDuration).Err(); err != nil {
		return "", fmt.Errorf("storing nonce: %w", err)
	}
	return nonce, nil
}

func (s *SessionService) ConsumeNonce(ctx context.Context, nonce string) error {
	if nonce == "" {
		return ErrInvalidNonce
	}
	_, err := s.redis.GetDel(ctx, nonceKeyPrefix+nonce).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidNonce
	}
	if err != nil {
		return fmt.Errorf("consuming nonce: %w", err)
	}
	return nil
}

func (s *SessionService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRow(ctx,
		`SELECT id, fid, username, display_name, pfp_url, created_at, updated_at
		 FROM profiles WHERE id = $1`,
		id,
	).Scan(&profile.ID, &profile.FID, &profile.Username, &profile.DisplayName, &profile.PfpURL, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

// UpsertProfile creates the profile for an FID on first sign-in and refreshes
// its display fields afterwards.
func (s *SessionService) UpsertProfile(ctx context.Context, params models.UpsertProfileParams) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO profiles (fid, username, display_name, pfp_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (fid) DO UPDATE
		   SET username = EXCLUDED.username,
		       display_name = EXCLUDED.display_name,
		       pfp_url = EXCLUDED.pfp_url,
		       updated_at = NOW()
		 RETURNING id, fid, username, display_name, pfp_url, created_at, updated_at`,
		params.FID, params.Username, params.DisplayName, params.PfpURL,
	).Scan(&profile.ID, &profile.FID, &profile.Username, &profile.DisplayName, &profile.PfpURL, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return profile, nil
}
