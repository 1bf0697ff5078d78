package models

import "time"

// NotificationType classifies a notification for the user-facing feed.
type NotificationType string

const (
	NotificationPayment NotificationType = "payment"
	NotificationAccess  NotificationType = "access"
)

// Notification is a write-once message for a user, created when access
// changes or a payment reminder fires. Data holds an optional JSON
// payload (amount, due date, days left, suspension reason).
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Data      string           `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
