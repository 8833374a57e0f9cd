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
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendRequestExists   = errors.New("friend request already exists")
	ErrCannotFriendSelf      = errors.New("cannot send friend request to yourself")
)

const friendRequestColumns = "id, sender_id, recipient_id, status, created_at"

type FriendService struct {
	db       DB
	notifier Notifier
}

func NewFriendService(db DB, notifier Notifier) *FriendService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &FriendService{db: db, notifier: notifier}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrCannotFriendSelf
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friends
			WHERE (sender_id = $1 AND recipient_id = $2)
			   OR (sender_id = $2 AND recipient_id = $1)
		)`,
		senderID, recipientID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking friend request existence: %w", err)
	}
	if exists {
		return nil, ErrFriendRequestExists
	}

	request, err := scanFriendRequest(s.db.QueryRow(ctx,
		`INSERT INTO friends (sender_id, recipient_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING `+friendRequestColumns,
		senderID, recipientID,
	))
	if isUniqueViolation(err) {
		return nil, ErrFriendRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	s.notifier.Notify(recipientID, models.Notification{
		Title:     "New friend request",
		Body:      "Someone wants to be your BrainCast friend",
		TargetURL: "/social",
	})

	return request, nil
}

// Accept moves a pending request addressed to userID into accepted. Wrong id,
// wrong recipient and already-resolved requests all report
// ErrFriendRequestNotFound so callers cannot probe other users' requests.
func (s *FriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.FriendRequest, error) {
	request, err := scanFriendRequest(s.db.QueryRow(ctx,
		`UPDATE friends SET status = 'accepted'
		 WHERE id = $1 AND recipient_id = $2 AND status = 'pending'
		 RETURNING `+friendRequestColumns,
		requestID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}

	s.notifier.Notify(request.SenderID, models.Notification{
		Title:     "Friend request accepted",
		Body:      "You have a new BrainCast friend",
		TargetURL: "/social",
	})

	return request, nil
}

// Decline deletes a pending request addressed to userID. It uses the same
// predicate as Accept.
func (s *FriendService) Decline(ctx context.Context, userID, requestID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM friends
		 WHERE id = $1 AND recipient_id = $2 AND status = 'pending'`,
		requestID, userID,
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.sender_id, f.recipient_id, f.status, f.created_at, p.username, p.display_name
		 FROM friends f
		 JOIN profiles p ON p.id = CASE WHEN f.sender_id = $1 THEN f.recipient_id ELSE f.sender_id END
		 WHERE (f.sender_id = $1 OR f.recipient_id = $1) AND f.status = 'accepted'
		 ORDER BY p.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return collectFriends(rows)
}

// ListPending returns requests waiting on userID's answer, newest first.
func (s *FriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.FriendWithProfile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.sender_id, f.recipient_id, f.status, f.created_at, p.username, p.display_name
		 FROM friends f
		 JOIN profiles p ON p.id = f.sender_id
		 WHERE f.recipient_id = $1 AND f.status = 'pending'
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	return collectFriends(rows)
}

func collectFriends(rows Rows) ([]models.FriendWithProfile, error) {
	defer rows.Close()

	friends := []models.FriendWithProfile{}
	for rows.Next() {
		var f models.FriendWithProfile
		if err := rows.Scan(&f.ID, &f.SenderID, &f.RecipientID, &f.Status, &f.CreatedAt, &f.FriendUsername, &f.FriendDisplayName); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}
	return friends, nil
}

func scanFriendRequest(row Row) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := row.Scan(&request.ID, &request.SenderID, &request.RecipientID, &request.Status, &request.CreatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}
