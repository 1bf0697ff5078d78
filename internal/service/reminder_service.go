package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kost-system/access-service/internal/access"
	"github.com/kost-system/access-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ReminderService sends payment due-date reminders to tenants. It reads
// the payment store independently of the coordinator and writes only
// notifications and the reminder log.
type ReminderService struct {
	store Store
	mail  MailSender
	log   *logrus.Logger
	now   func() time.Time
}

// NewReminderService initializes the reminder job. mail may be nil.
func NewReminderService(store Store, mail MailSender, log *logrus.Logger) *ReminderService {
	return &ReminderService{store: store, mail: mail, log: log, now: time.Now}
}

// ReminderRunResult aggregates one reminder pass.
type ReminderRunResult struct {
	TotalSent int  `json:"total_sent"`
	Skipped   int  `json:"skipped"`
	Errors    int  `json:"errors"`
	DryRun    bool `json:"dry_run"`
}

// Run performs one reminder pass for the given lead days. A payment
// matches lead day d when its end-of-month due date falls on today+d.
// Dry-run performs every computation and idempotency check but persists
// nothing, so its counts are directly comparable to a live run.
func (s *ReminderService) Run(ctx context.Context, leadDays []int, dryRun bool) (*ReminderRunResult, error) {
	result := &ReminderRunResult{DryRun: dryRun}

	pending, err := s.store.ListPendingPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	now := s.now()
	for _, d := range leadDays {
		s.runForLeadDay(ctx, pending, d, now, dryRun, result)
	}

	s.log.WithFields(logrus.Fields{
		"total_sent": result.TotalSent,
		"skipped":    result.Skipped,
		"errors":     result.Errors,
		"dry_run":    dryRun,
	}).Info("Payment reminder run completed")

	return result, nil
}

func (s *ReminderService) runForLeadDay(ctx context.Context, pending []models.Payment, leadDays int, now time.Time, dryRun bool, result *ReminderRunResult) {
	target := now.AddDate(0, 0, leadDays)

	for _, payment := range pending {
		due, err := access.EndOfMonthDue(payment.PaymentMonth)
		if err != nil {
			s.log.Errorf("Skipping payment %d: %v", payment.ID, err)
			result.Errors++
			continue
		}
		if !access.SameDay(due, target) {
			continue
		}
		if err := s.remind(ctx, payment, leadDays, due, dryRun, result); err != nil {
			s.log.Errorf("Failed to send reminder for payment %d (%d days before due): %v", payment.ID, leadDays, err)
			result.Errors++
		}
	}
}

func (s *ReminderService) remind(ctx context.Context, payment models.Payment, leadDays int, due time.Time, dryRun bool, result *ReminderRunResult) error {
	sent, err := s.store.ReminderSent(ctx, payment.ID, leadDays, due)
	if err != nil {
		return err
	}
	if sent {
		s.log.Debugf("Reminder for payment %d (lead %d) already sent, skipping", payment.ID, leadDays)
		result.Skipped++
		return nil
	}

	tenant, err := s.store.GetTenant(ctx, payment.TenantID)
	if err != nil {
		return err
	}
	if tenant.User == nil {
		return fmt.Errorf("tenant %d has no user", tenant.ID)
	}

	title := reminderTitle(leadDays)
	message := reminderMessage(payment, leadDays, due)

	if !dryRun {
		data, err := json.Marshal(map[string]interface{}{
			"payment_id": payment.ID,
			"order_id":   payment.OrderID,
			"amount":     payment.Amount,
			"due_date":   due.Format("2006-01-02"),
			"days_left":  leadDays,
		})
		if err != nil {
			return fmt.Errorf("failed to encode reminder data: %w", err)
		}
		n := &models.Notification{
			UserID:  tenant.UserID,
			Title:   title,
			Message: message,
			Type:    models.NotificationPayment,
			Data:    string(data),
		}
		err = s.store.CreateReminderNotification(ctx, n, payment.ID, leadDays, due)
		if errors.Is(err, ErrDuplicateReminder) {
			result.Skipped++
			return nil
		}
		if err != nil {
			return err
		}

		if s.mail != nil {
			monthName := due.Format("January 2006")
			if err := s.mail.SendPaymentReminder(tenant.User.Email, tenant.User.Name, monthName, payment.Amount, due, leadDays); err != nil {
				s.log.Warnf("Failed to email reminder for payment %d: %v", payment.ID, err)
			}
		}
	}

	s.log.Infof("Reminder for %s (payment #%d): %s", tenant.User.Name, payment.ID, message)
	result.TotalSent++
	return nil
}

func reminderTitle(leadDays int) string {
	switch leadDays {
	case 3:
		return "Payment Reminder - 3 Days Left"
	case 2:
		return "Payment Reminder - 2 Days Left"
	case 1:
		return "Payment Reminder - Due Tomorrow"
	case 0:
		return "Payment Due Today"
	default:
		return "Payment Reminder"
	}
}

func reminderMessage(payment models.Payment, leadDays int, due time.Time) string {
	month := due.Format("January 2006")
	dueFmt := due.Format("02 January 2006")
	amount := access.FormatRupiah(payment.Amount)

	switch leadDays {
	case 3:
		return fmt.Sprintf("Your rent for %s (%s) is due in 3 days (%s). Please make your payment soon.", month, amount, dueFmt)
	case 2:
		return fmt.Sprintf("Your rent for %s (%s) is due in 2 days (%s). Don't be late!", month, amount, dueFmt)
	case 1:
		return fmt.Sprintf("Your rent for %s (%s) is due tomorrow (%s). Please pay as soon as possible.", month, amount, dueFmt)
	case 0:
		return fmt.Sprintf("Last day to pay your rent for %s (%s)! Please pay before midnight.", month, amount)
	default:
		return fmt.Sprintf("Your rent for %s (%s) is due on %s.", month, amount, dueFmt)
	}
}
