package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kost-system/access-service/internal/models"
	"github.com/kost-system/access-service/internal/service"
	"github.com/lib/pq"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetTenant retrieves a tenant with its user and room
func (r *Repository) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	tenant := &models.Tenant{User: &models.User{}, Room: &models.Room{}}
	var suspendedAt, reactivatedAt sql.NullTime
	var suspensionReason sql.NullString

	query := `
		SELECT t.id, t.user_id, t.room_id, t.status, t.suspended_at, t.suspension_reason, t.reactivated_at,
		       t.created_at, t.updated_at,
		       u.id, u.name, u.email,
		       r.id, r.room_number
		FROM kost.tenants t
		JOIN kost.users u ON u.id = t.user_id
		JOIN kost.rooms r ON r.id = t.room_id
		WHERE t.id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tenant.ID, &tenant.UserID, &tenant.RoomID, &tenant.Status, &suspendedAt, &suspensionReason, &reactivatedAt,
		&tenant.CreatedAt, &tenant.UpdatedAt,
		&tenant.User.ID, &tenant.User.Name, &tenant.User.Email,
		&tenant.Room.ID, &tenant.Room.RoomNumber,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tenant %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant %d: %w", id, err)
	}

	tenant.SuspendedAt = nullTimePtr(suspendedAt)
	tenant.SuspensionReason = nullStringPtr(suspensionReason)
	tenant.ReactivatedAt = nullTimePtr(reactivatedAt)
	return tenant, nil
}

// ListTenants retrieves all tenants whose status is in the given set
func (r *Repository) ListTenants(ctx context.Context, statuses []models.TenantStatus) ([]models.Tenant, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}

	query := `
		SELECT id, user_id, room_id, status, suspended_at, suspension_reason, reactivated_at, created_at, updated_at
		FROM kost.tenants
		WHERE status = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ss))
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		var suspendedAt, reactivatedAt sql.NullTime
		var suspensionReason sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.RoomID, &t.Status, &suspendedAt, &suspensionReason, &reactivatedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		t.SuspendedAt = nullTimePtr(suspendedAt)
		t.SuspensionReason = nullStringPtr(suspensionReason)
		t.ReactivatedAt = nullTimePtr(reactivatedAt)
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tenants: %w", err)
	}
	return tenants, nil
}

// ListTenantPayments retrieves all payments belonging to a tenant
func (r *Repository) ListTenantPayments(ctx context.Context, tenantID int64) ([]models.Payment, error) {
	query := `
		SELECT id, tenant_id, order_id, status, payment_month, amount, paid_at, created_at, updated_at
		FROM kost.payments
		WHERE tenant_id = $1
		ORDER BY payment_month`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for tenant %d: %w", tenantID, err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

// ListPendingPayments retrieves all payments awaiting payment
func (r *Repository) ListPendingPayments(ctx context.Context) ([]models.Payment, error) {
	query := `
		SELECT id, tenant_id, order_id, status, payment_month, amount, paid_at, created_at, updated_at
		FROM kost.payments
		WHERE status = $1
		ORDER BY payment_month`
	rows, err := r.db.QueryContext(ctx, query, models.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var paidAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.TenantID, &p.OrderID, &p.Status, &p.PaymentMonth, &p.Amount, &paidAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PaidAt = nullTimePtr(paidAt)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}
	return payments, nil
}

// ListCards retrieves all RFID cards belonging to a tenant
func (r *Repository) ListCards(ctx context.Context, tenantID int64) ([]models.RfidCard, error) {
	query := `
		SELECT id, tenant_id, card_number, status, suspended_at, suspension_reason, created_at, updated_at
		FROM kost.rfid_cards
		WHERE tenant_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for tenant %d: %w", tenantID, err)
	}
	defer rows.Close()

	var cards []models.RfidCard
	for rows.Next() {
		var c models.RfidCard
		var suspendedAt sql.NullTime
		var suspensionReason sql.NullString
		if err := rows.Scan(&c.ID, &c.TenantID, &c.CardNumber, &c.Status, &suspendedAt, &suspensionReason, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		c.SuspendedAt = nullTimePtr(suspendedAt)
		c.SuspensionReason = nullStringPtr(suspensionReason)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}
	return cards, nil
}

// CreateCard creates a new RFID card in the database
func (r *Repository) CreateCard(ctx context.Context, card *models.RfidCard) error {
	query := `
		INSERT INTO kost.rfid_cards (tenant_id, card_number, status, suspended_at, suspension_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, card.TenantID, card.CardNumber, card.Status, card.SuspendedAt, card.SuspensionReason).
		Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM kost.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ApplyAccessChange applies one tenant's reconciliation write set in a
// single transaction: the tenant status row, every card row and the
// user-facing notification commit together or not at all.
func (r *Repository) ApplyAccessChange(ctx context.Context, change *service.AccessChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if change.Tenant != nil {
		query := `
			UPDATE kost.tenants
			SET status = $1, suspended_at = $2, suspension_reason = $3,
			    reactivated_at = COALESCE($4, reactivated_at), updated_at = CURRENT_TIMESTAMP
			WHERE id = $5`
		if _, err := tx.ExecContext(ctx, query,
			change.Tenant.Status, change.Tenant.SuspendedAt, change.Tenant.SuspensionReason,
			change.Tenant.ReactivatedAt, change.TenantID); err != nil {
			return fmt.Errorf("failed to update tenant %d status: %w", change.TenantID, err)
		}
	}

	for _, card := range change.Cards {
		query := `
			UPDATE kost.rfid_cards
			SET status = $1, suspended_at = $2, suspension_reason = $3, updated_at = CURRENT_TIMESTAMP
			WHERE id = $4`
		if _, err := tx.ExecContext(ctx, query, card.Status, card.SuspendedAt, card.SuspensionReason, card.CardID); err != nil {
			return fmt.Errorf("failed to update card %d status: %w", card.CardID, err)
		}
	}

	if change.Notification != nil {
		if err := insertNotification(ctx, tx, change.Notification); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit access change for tenant %d: %w", change.TenantID, err)
	}
	return nil
}

// ReminderSent reports whether a reminder was already recorded for the
// given payment, lead day and calendar date
func (r *Repository) ReminderSent(ctx context.Context, paymentID int64, leadDays int, remindOn time.Time) (bool, error) {
	var sent bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM kost.reminder_log
			WHERE payment_id = $1 AND lead_days = $2 AND remind_on = $3
		)`
	err := r.db.QueryRowContext(ctx, query, paymentID, leadDays, remindOn.Format("2006-01-02")).Scan(&sent)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}
	return sent, nil
}

// CreateReminderNotification persists a reminder notification together
// with its reminder-log row. The log table carries a unique constraint
// on (payment_id, lead_days, remind_on); hitting it is reported as
// service.ErrDuplicateReminder.
func (r *Repository) CreateReminderNotification(ctx context.Context, n *models.Notification, paymentID int64, leadDays int, remindOn time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kost.reminder_log (payment_id, lead_days, remind_on, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`
	if _, err := tx.ExecContext(ctx, query, paymentID, leadDays, remindOn.Format("2006-01-02")); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return service.ErrDuplicateReminder
		}
		return fmt.Errorf("failed to record reminder log: %w", err)
	}

	if err := insertNotification(ctx, tx, n); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder for payment %d: %w", paymentID, err)
	}
	return nil
}

func insertNotification(ctx context.Context, tx *sql.Tx, n *models.Notification) error {
	var data interface{}
	if n.Data != "" {
		data = n.Data
	}
	query := `
		INSERT INTO kost.notifications (user_id, title, message, type, data, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, n.UserID, n.Title, n.Message, n.Type, data).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}

func nullStringPtr(s sql.NullString) *string {
	if s.Valid {
		return &s.String
	}
	return nil
}
