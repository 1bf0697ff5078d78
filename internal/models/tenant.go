package models

import "time"

// TenantStatus is the access state of a tenant.
type TenantStatus string

const (
	TenantActive     TenantStatus = "active"
	TenantSuspended  TenantStatus = "suspended"
	TenantCheckedOut TenantStatus = "checked_out"
)

// Tenant represents an occupant of a room
type Tenant struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	RoomID           int64        `json:"room_id"`
	Status           TenantStatus `json:"status"`
	SuspendedAt      *time.Time   `json:"suspended_at,omitempty"`
	SuspensionReason *string      `json:"suspension_reason,omitempty"`
	ReactivatedAt    *time.Time   `json:"reactivated_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	User *User `json:"user,omitempty"`
	Room *Room `json:"room,omitempty"`
}
