package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/HammerMeetNail/braincast/internal/logging"
	"github.com/HammerMeetNail/braincast/internal/models"
)

var ErrInvalidNotificationToken = errors.New("invalid notification token")

const (
	maxNotificationTitle = 32
	maxNotificationBody  = 128
	maxTokenLength       = 256
)

type NotificationConfig struct {
	AppURL      string
	Timeout     time.Duration
	Concurrency int
}

type NotificationService struct {
	db          DB
	client      *http.Client
	appURL      string
	concurrency int
	async       func(fn func())
}

func NewNotificationService(db DB, cfg NotificationConfig) *NotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &NotificationService{
		db:          db,
		client:      &http.Client{Timeout: cfg.Timeout},
		appURL:      strings.TrimRight(cfg.AppURL, "/"),
		concurrency: cfg.Concurrency,
		async: func(fn func()) {
			go fn()
		},
	}
}

func (s *NotificationService) SetAsync(fn func(fn func())) {
	s.async = fn
}

func (s *NotificationService) RegisterToken(ctx context.Context, profileID uuid.UUID, url, token string) (*models.NotificationToken, error) {
	url = strings.TrimSpace(url)
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxTokenLength || !strings.HasPrefix(url, "https://") {
		return nil, ErrInvalidNotificationToken
	}

	nt := &models.NotificationToken{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO notification_tokens (profile_id, url, token)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (profile_id, token) DO UPDATE SET url = EXCLUDED.url
		 RETURNING id, profile_id, url, token, created_at`,
		profileID, url, token,
	).Scan(&nt.ID, &nt.ProfileID, &nt.URL, &nt.Token, &nt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("registering notification token: %w", err)
	}
	return nt, nil
}

func (s *NotificationService) RemoveTokens(ctx context.Context, profileID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM notification_tokens WHERE profile_id = $1", profileID); err != nil {
		return fmt.Errorf("removing notification tokens: %w", err)
	}
	return nil
}

// Notify schedules delivery to every device of profileID and returns
// immediately. Failures are logged and never reach the caller.
func (s *NotificationService) Notify(profileID uuid.UUID, n models.Notification) {
	if s.async == nil {
		return
	}
	s.async(func() {
		if err := s.Deliver(context.Background(), profileID, n); err != nil {
			logging.Error("Failed to deliver notification", map[string]interface{}{
				"error":      err.Error(),
				"profile_id": profileID.String(),
			})
		}
	})
}

// Deliver sends n to each registered token of profileID, one webhook call
// per token. It returns the first delivery error after every call finished.
func (s *NotificationService) Deliver(ctx context.Context, profileID uuid.UUID, n models.Notification) error {
	tokens, err := s.listTokens(ctx, profileID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, t := range tokens {
		g.Go(func() error {
			invalid, err := s.send(ctx, t, n)
			if err != nil {
				logging.Warn("Notification webhook failed", map[string]interface{}{
					"error":    err.Error(),
					"token_id": t.ID.String(),
				})
				return err
			}
			if invalid {
				if _, err := s.db.Exec(ctx, "DELETE FROM notification_tokens WHERE id = $1", t.ID); err != nil {
					logging.Warn("Failed to drop invalid notification token", map[string]interface{}{
						"error":    err.Error(),
						"token_id": t.ID.String(),
					})
				}
			}
			return nil
		})
	}
	return g.Wait()
}

type webhookRequest struct {
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	TargetURL      string   `json:"targetUrl"`
	Tokens         []string `json:"tokens"`
}

type webhookResponse struct {
	Result struct {
		SuccessfulTokens  []string `json:"successfulTokens"`
		InvalidTokens     []string `json:"invalidTokens"`
		RateLimitedTokens []string `json:"rateLimitedTokens"`
	} `json:"result"`
}

// send performs one webhook call and reports whether the endpoint rejected
// the token as invalid.
func (s *NotificationService) send(ctx context.Context, t models.NotificationToken, n models.Notification) (bool, error) {
	payload, err := json.Marshal(webhookRequest{
		NotificationID: uuid.NewString(),
		Title:          truncate(n.Title, maxNotificationTitle),
		Body:           truncate(n.Body, maxNotificationBody),
		TargetURL:      s.appURL + n.TargetURL,
		Tokens:         []string{t.Token},
	})
	if err != nil {
		return false, fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var result webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Endpoints are not required to return a body.
		return false, nil
	}
	for _, invalid := range result.Result.InvalidTokens {
		if invalid == t.Token {
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationService) listTokens(ctx context.Context, profileID uuid.UUID) ([]models.NotificationToken, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, profile_id, url, token, created_at
		 FROM notification_tokens WHERE profile_id = $1`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notification tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.NotificationToken
	for rows.Next() {
		var t models.NotificationToken
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.URL, &t.Token, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification tokens: %w", err)
	}
	return tokens, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

type noopNotifier struct{}

func (noopNotifier) Notify(uuid.UUID, models.Notification) {}
