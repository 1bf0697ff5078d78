package models

import "time"

// CardStatus is the access state of a physical RFID card.
type CardStatus string

const (
	CardActive    CardStatus = "active"
	CardSuspended CardStatus = "suspended"
)

// RfidCard represents a physical access credential bound to a tenant.
// A tenant may hold several cards; each mirrors the tenant's resolved
// access state after reconciliation.
type RfidCard struct {
	ID               int64      `json:"id"`
	TenantID         int64      `json:"tenant_id"`
	CardNumber       string     `json:"card_number"`
	Status           CardStatus `json:"status"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	SuspensionReason *string    `json:"suspension_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
