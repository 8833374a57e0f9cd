package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

// Declined requests are deleted, so there is no declined status.
const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

type FriendRequest struct {
	ID          uuid.UUID           `json:"id"`
	SenderID    uuid.UUID           `json:"sender_id"`
	RecipientID uuid.UUID           `json:"recipient_id"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

// FriendWithProfile is a friend request joined with the other party's profile.
type FriendWithProfile struct {
	FriendRequest
	FriendUsername    string `json:"friend_username"`
	FriendDisplayName string `json:"friend_display_name"`
}
