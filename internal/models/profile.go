package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a BrainCast user, keyed by the social-identity FID.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	FID         int64     `json:"fid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	PfpURL      string    `json:"pfp_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpsertProfileParams struct {
	FID         int64
	Username    string
	DisplayName string
	PfpURL      string
}

type Session struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
