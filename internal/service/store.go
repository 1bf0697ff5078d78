package service

import (
	"context"
	"errors"
	"time"

	"github.com/kost-system/access-service/internal/models"
)

// ErrDuplicateReminder reports that a reminder with the same idempotency
// key (payment, lead day, calendar date) was already recorded.
var ErrDuplicateReminder = errors.New("reminder already sent")

// Store is the persistence surface the services depend on. The
// repository package provides the Postgres implementation.
type Store interface {
	// GetTenant loads a tenant with its user and room.
	GetTenant(ctx context.Context, id int64) (*models.Tenant, error)
	ListTenants(ctx context.Context, statuses []models.TenantStatus) ([]models.Tenant, error)
	ListTenantPayments(ctx context.Context, tenantID int64) ([]models.Payment, error)
	ListCards(ctx context.Context, tenantID int64) ([]models.RfidCard, error)
	ListPendingPayments(ctx context.Context) ([]models.Payment, error)
	CreateCard(ctx context.Context, card *models.RfidCard) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ApplyAccessChange commits one tenant's reconciliation write set
	// atomically.
	ApplyAccessChange(ctx context.Context, change *AccessChange) error

	// ReminderSent reports whether a reminder was already recorded for
	// the given idempotency key.
	ReminderSent(ctx context.Context, paymentID int64, leadDays int, remindOn time.Time) (bool, error)
	// CreateReminderNotification persists the notification and the
	// reminder-log row in one transaction. Returns ErrDuplicateReminder
	// when the key already exists.
	CreateReminderNotification(ctx context.Context, n *models.Notification, paymentID int64, leadDays int, remindOn time.Time) error
}

// TenantStatusUpdate describes the status fields to write for a tenant.
// Nil pointer fields are written as NULL, except ReactivatedAt which is
// left untouched when nil.
type TenantStatusUpdate struct {
	Status           models.TenantStatus
	SuspendedAt      *time.Time
	SuspensionReason *string
	ReactivatedAt    *time.Time
}

// CardStatusUpdate describes the status fields to write for one card.
type CardStatusUpdate struct {
	CardID           int64
	Status           models.CardStatus
	SuspendedAt      *time.Time
	SuspensionReason *string
}

// AccessChange is the per-tenant unit of atomicity: the tenant status
// write, all card writes and the user-facing notification commit
// together or not at all. Device fan-out stays outside of it.
type AccessChange struct {
	TenantID     int64
	Tenant       *TenantStatusUpdate
	Cards        []CardStatusUpdate
	Notification *models.Notification
}
