package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kost-system/access-service/internal/access"
	"github.com/kost-system/access-service/internal/models"
	"github.com/kost-system/access-service/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const cardSuspensionReason = "Tenant suspended due to overdue payments"

// rfidCardLength is the length of generated card UIDs in hex characters.
const rfidCardLength = 14

// MailSender mirrors user notifications over SMTP. Optional; a nil
// sender disables the channel.
type MailSender interface {
	SendPaymentReminder(to, name, monthName string, amount decimal.Decimal, dueDate time.Time, daysLeft int) error
	SendAccessSuspended(to, name, reason string) error
}

// AccessService reconciles tenant access state from payment history and
// is the only writer of tenant and card status fields.
type AccessService struct {
	store    Store
	notifier *DeviceNotifier
	events   EventSink
	mail     MailSender
	log      *logrus.Logger

	dueDayOfMonth   int
	gracePeriodDays int
	now             func() time.Time
}

// NewAccessService initializes the coordinator. mail may be nil.
func NewAccessService(store Store, notifier *DeviceNotifier, events EventSink, mail MailSender, log *logrus.Logger, dueDayOfMonth, gracePeriodDays int) *AccessService {
	return &AccessService{
		store:           store,
		notifier:        notifier,
		events:          events,
		mail:            mail,
		log:             log,
		dueDayOfMonth:   dueDayOfMonth,
		gracePeriodDays: gracePeriodDays,
		now:             time.Now,
	}
}

// ReconciliationResult reports the outcome of one tenant reconciliation.
// Failures are carried in Error; the call itself never panics or errors
// across its boundary.
type ReconciliationResult struct {
	Success        bool                `json:"success"`
	TenantID       int64               `json:"tenant_id"`
	PreviousStatus models.TenantStatus `json:"previous_status,omitempty"`
	CurrentStatus  models.TenantStatus `json:"current_status,omitempty"`
	HasAccess      bool                `json:"has_access"`
	Decision       *access.Decision    `json:"access_decision,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// BulkReconciliationResult aggregates a full sweep.
type BulkReconciliationResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Suspended int `json:"suspended"`
	Activated int `json:"activated"`
	Errors    int `json:"errors"`
}

// ReconcileTenant recomputes and applies one tenant's access state.
func (s *AccessService) ReconcileTenant(ctx context.Context, tenantID int64) *ReconciliationResult {
	res := s.reconcileTenant(ctx, tenantID)
	if !res.Success {
		s.log.Errorf("Failed to reconcile tenant %d: %s", tenantID, res.Error)
	}
	return res
}

func (s *AccessService) reconcileTenant(ctx context.Context, tenantID int64) *ReconciliationResult {
	fail := func(err error) *ReconciliationResult {
		return &ReconciliationResult{TenantID: tenantID, Error: err.Error()}
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return fail(err)
	}
	payments, err := s.store.ListTenantPayments(ctx, tenantID)
	if err != nil {
		return fail(err)
	}
	decision, err := access.Compute(payments, s.now(), s.dueDayOfMonth, s.gracePeriodDays)
	if err != nil {
		return fail(err)
	}
	intent := access.Resolve(tenant.Status, decision)

	cards, err := s.store.ListCards(ctx, tenantID)
	if err != nil {
		return fail(err)
	}

	// Capture the pre-transition status before the store gets a chance
	// to mutate the tenant row.
	previous := tenant.Status
	current := previous
	switch intent.Action {
	case access.Suspend:
		current = models.TenantSuspended
	case access.Activate:
		current = models.TenantActive
	}

	change, changedCards := s.buildChange(tenant, decision, intent, cards)
	if change != nil {
		if err := s.store.ApplyAccessChange(ctx, change); err != nil {
			return fail(err)
		}
	}

	// Device fan-out happens strictly after the transaction commits.
	for _, card := range changedCards {
		s.notifier.Notify(card, decision.HasAccess, tenant)
	}

	if previous != current {
		s.events.TenantAccessChanged(TenantAccessChanged{
			EventID:        uuid.NewString(),
			TenantID:       tenant.ID,
			PreviousStatus: previous,
			CurrentStatus:  current,
			Decision:       decision,
			OccurredAt:     s.now(),
		})
	}

	if intent.Action == access.Suspend && s.mail != nil && tenant.User != nil {
		if err := s.mail.SendAccessSuspended(tenant.User.Email, tenant.User.Name, intent.Reason); err != nil {
			s.log.Warnf("Failed to email suspension notice to tenant %d: %v", tenant.ID, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id":       tenantID,
		"previous_status": previous,
		"current_status":  current,
		"has_access":      decision.HasAccess,
		"reason":          decision.Reason,
	}).Info("Tenant access reconciled")

	return &ReconciliationResult{
		Success:        true,
		TenantID:       tenantID,
		PreviousStatus: previous,
		CurrentStatus:  current,
		HasAccess:      decision.HasAccess,
		Decision:       &decision,
	}
}

// buildChange assembles the transactional write set for a tenant. It
// returns nil when there is nothing to persist. The returned cards are
// the ones whose status actually changes; only those are pushed to the
// devices. Card sync runs on every pass, so a card attached while the
// tenant was suspended converges on the next reconciliation.
func (s *AccessService) buildChange(tenant *models.Tenant, decision access.Decision, intent access.Intent, cards []models.RfidCard) (*AccessChange, []models.RfidCard) {
	change := &AccessChange{TenantID: tenant.ID}
	now := s.now()

	switch intent.Action {
	case access.Suspend:
		reason := intent.Reason
		change.Tenant = &TenantStatusUpdate{
			Status:           models.TenantSuspended,
			SuspendedAt:      &now,
			SuspensionReason: &reason,
		}
		change.Notification = &models.Notification{
			UserID:  tenant.UserID,
			Title:   "Access Suspended",
			Message: "Your access has been suspended due to overdue payment. Reason: " + reason,
			Type:    models.NotificationAccess,
		}
	case access.Activate:
		change.Tenant = &TenantStatusUpdate{
			Status:        models.TenantActive,
			ReactivatedAt: &now,
		}
		change.Notification = &models.Notification{
			UserID:  tenant.UserID,
			Title:   "Access Restored",
			Message: "Your access has been restored. Thank you for completing your payment.",
			Type:    models.NotificationAccess,
		}
	}

	wantStatus := models.CardSuspended
	if decision.HasAccess {
		wantStatus = models.CardActive
	}

	var changed []models.RfidCard
	for _, card := range cards {
		if card.Status == wantStatus {
			continue
		}
		upd := CardStatusUpdate{CardID: card.ID, Status: wantStatus}
		if wantStatus == models.CardSuspended {
			reason := cardSuspensionReason
			upd.SuspendedAt = &now
			upd.SuspensionReason = &reason
		}
		change.Cards = append(change.Cards, upd)
		card.Status = wantStatus
		changed = append(changed, card)
	}

	if change.Tenant == nil && len(change.Cards) == 0 {
		return nil, nil
	}
	return change, changed
}

// ReconcileAll sweeps every active and suspended tenant. A failing
// tenant increments Errors and never aborts the batch; tenants in
// terminal states such as checked_out are skipped entirely.
func (s *AccessService) ReconcileAll(ctx context.Context) *BulkReconciliationResult {
	result := &BulkReconciliationResult{}

	tenants, err := s.store.ListTenants(ctx, []models.TenantStatus{models.TenantActive, models.TenantSuspended})
	if err != nil {
		s.log.Errorf("Failed to list tenants for reconciliation: %v", err)
		result.Errors++
		return result
	}

	for _, t := range tenants {
		result.Processed++
		res := s.ReconcileTenant(ctx, t.ID)
		if !res.Success {
			result.Errors++
			continue
		}
		if res.PreviousStatus != res.CurrentStatus {
			result.Updated++
			switch res.CurrentStatus {
			case models.TenantSuspended:
				result.Suspended++
			case models.TenantActive:
				result.Activated++
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"processed": result.Processed,
		"updated":   result.Updated,
		"suspended": result.Suspended,
		"activated": result.Activated,
		"errors":    result.Errors,
	}).Info("Bulk tenant access reconciliation completed")

	return result
}

// IssueCard creates a new RFID credential for a tenant. The card starts
// in the state matching the tenant's current status and the devices are
// notified about it.
func (s *AccessService) IssueCard(ctx context.Context, tenantID int64) (*models.RfidCard, error) {
	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	number, err := utils.GenerateCardNumber(rfidCardLength)
	if err != nil {
		return nil, err
	}

	card := &models.RfidCard{
		TenantID:   tenant.ID,
		CardNumber: number,
		Status:     models.CardActive,
	}
	if tenant.Status != models.TenantActive {
		now := s.now()
		reason := cardSuspensionReason
		card.Status = models.CardSuspended
		card.SuspendedAt = &now
		card.SuspensionReason = &reason
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.Infof("RFID card %s issued for tenant %d (status=%s)", card.CardNumber, tenant.ID, card.Status)
	s.notifier.Notify(*card, card.Status == models.CardActive, tenant)
	return card, nil
}
