package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationToken is a device token registered by the social client; each
// token is delivered to through its own webhook URL.
type NotificationToken struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	Title     string
	Body      string
	TargetURL string
}
