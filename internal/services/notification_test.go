package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/braincast/internal/models"
)

func tokenRows(url string, tokens ...string) *fakeRows {
	rows := &fakeRows{}
	for _, tok := range tokens {
		rows.rows = append(rows.rows, []any{uuid.New(), uuid.New(), url, tok, time.Now()})
	}
	return rows
}

func TestNotificationService_Deliver_OneCallPerToken(t *testing.T) {
	var mu sync.Mutex
	var received []webhookRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req webhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		received = append(received, req)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"result":{"successfulTokens":["` + req.Tokens[0] + `"]}}`))
	}))
	defer server.Close()

	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return tokenRows(server.URL, "t1", "t2", "t3"), nil
		},
	}
	svc := NewNotificationService(db, NotificationConfig{AppURL: "https://braincast.example/"})

	err := svc.Deliver(context.Background(), uuid.New(), models.Notification{
		Title:     "Challenge accepted",
		Body:      "Your challenge was accepted",
		TargetURL: "/social",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 3 {
		t.Fatalf("expected 3 webhook calls, got %d", len(received))
	}
	for _, req := range received {
		if len(req.Tokens) != 1 {
			t.Fatalf("expected a single token per call, got %v", req.Tokens)
		}
		if req.TargetURL != "https://braincast.example/social" {
			t.Fatalf("unexpected target url %q", req.TargetURL)
		}
		if req.NotificationID == "" {
			t.Fatal("expected notification id")
		}
	}
}

func TestNotificationService_Deliver_DropsInvalidTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"invalidTokens":["stale"]}}`))
	}))
	defer server.Close()

	var deleted int
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return tokenRows(server.URL, "stale"), nil
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if strings.Contains(sql, "DELETE FROM notification_tokens WHERE id") {
				deleted++
			}
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}
	svc := NewNotificationService(db, NotificationConfig{})

	if err := svc.Deliver(context.Background(), uuid.New(), models.Notification{Title: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected invalid token deleted, got %d deletes", deleted)
	}
}

func TestNotificationService_Deliver_ReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return tokenRows(server.URL, "t1"), nil
		},
	}
	svc := NewNotificationService(db, NotificationConfig{})

	if err := svc.Deliver(context.Background(), uuid.New(), models.Notification{}); err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestNotificationService_Notify_NeverSurfacesErrors(t *testing.T) {
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewNotificationService(db, NotificationConfig{})
	ran := false
	svc.SetAsync(func(fn func()) {
		ran = true
		fn()
	})

	svc.Notify(uuid.New(), models.Notification{Title: "hi"})
	if !ran {
		t.Fatal("expected async runner to be used")
	}
}

func TestNotificationService_RegisterToken_Validation(t *testing.T) {
	svc := NewNotificationService(&fakeDB{}, NotificationConfig{})
	cases := []struct{ url, token string }{
		{"http://insecure.example", "tok"},
		{"https://ok.example", ""},
		{"https://ok.example", strings.Repeat("x", maxTokenLength+1)},
	}
	for _, c := range cases {
		if _, err := svc.RegisterToken(context.Background(), uuid.New(), c.url, c.token); !errors.Is(err, ErrInvalidNotificationToken) {
			t.Fatalf("%q/%q: expected ErrInvalidNotificationToken, got %v", c.url, c.token, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := truncate("ok", 10); got != "ok" {
		t.Fatalf("unexpected %q", got)
	}
}
