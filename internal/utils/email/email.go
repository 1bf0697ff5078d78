package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/kost-system/access-service/internal/access"
	"github.com/kost-system/access-service/internal/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending notification emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends a rent due-date reminder email
func (s *Sender) SendPaymentReminder(to, name, monthName string, amount decimal.Decimal, dueDate time.Time, daysLeft int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if daysLeft == 0 {
		e.Subject = "Rent Payment Due Today"
	} else {
		e.Subject = "Upcoming Rent Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if daysLeft == 0 {
		body += fmt.Sprintf(
			"Your rent for %s (%s) is due today, %s.\n"+
				"Please make your payment before midnight to keep your access active.\n",
			monthName, access.FormatRupiah(amount), dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your rent for %s (%s) is due in %d day(s), on %s.\n"+
				"Please make your payment on time to keep your access active.\n",
			monthName, access.FormatRupiah(amount), daysLeft, dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nKost Management"
	e.Text = []byte(body)

	return s.send(e)
}

// SendAccessSuspended sends a suspension notice email
func (s *Sender) SendAccessSuspended(to, name, reason string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Access Suspended"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your room access has been suspended due to overdue payment.\n"+
			"Reason: %s\n"+
			"Please settle your outstanding balance to restore access.\n"+
			"\nBest regards,\nKost Management",
		name, reason,
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", e.To[0], err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", e.To[0], e.Subject)
	return nil
}
