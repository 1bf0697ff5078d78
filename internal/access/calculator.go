package access

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kost-system/access-service/internal/models"
	"github.com/shopspring/decimal"
)

// Decision is the outcome of evaluating a tenant's payment history at a
// point in time. It is derived on demand and never persisted.
type Decision struct {
	HasAccess          bool            `json:"has_access"`
	ShouldSuspend      bool            `json:"should_suspend"`
	ShouldActivate     bool            `json:"should_activate"`
	OverdueCount       int             `json:"overdue_count"`
	OverdueAmount      decimal.Decimal `json:"overdue_amount"`
	OldestOverdueDue   *time.Time      `json:"oldest_overdue_due_date,omitempty"`
	DaysOverdue        int             `json:"days_overdue"`
	GracePeriodExpired bool            `json:"grace_period_expired"`
	Reason             string          `json:"reason"`
}

// Compute classifies a tenant's payments as current, overdue within the
// grace period, or overdue past it. Only the oldest unpaid month decides
// grace expiry; later unpaid months never widen or shrink the window.
// The caller supplies now, so results are reproducible.
func Compute(payments []models.Payment, now time.Time, dueDayOfMonth, gracePeriodDays int) (Decision, error) {
	var unpaid []models.Payment
	for _, p := range payments {
		if p.Status == models.PaymentPending || p.Status == models.PaymentOverdue {
			unpaid = append(unpaid, p)
		}
	}
	sort.Slice(unpaid, func(i, j int) bool { return unpaid[i].PaymentMonth < unpaid[j].PaymentMonth })

	d := Decision{
		HasAccess:      true,
		ShouldActivate: len(unpaid) == 0,
		OverdueCount:   len(unpaid),
		OverdueAmount:  decimal.Zero,
	}
	for _, p := range unpaid {
		d.OverdueAmount = d.OverdueAmount.Add(p.Amount)
	}

	if len(unpaid) == 0 {
		d.Reason = "All payments are current - Full access granted"
		return d, nil
	}

	due, err := DueDate(unpaid[0].PaymentMonth, dueDayOfMonth)
	if err != nil {
		return Decision{}, err
	}
	d.OldestOverdueDue = &due
	d.DaysOverdue = daysPastDue(due, now)
	d.GracePeriodExpired = now.After(due.AddDate(0, 0, gracePeriodDays))
	d.HasAccess = !d.GracePeriodExpired
	d.ShouldSuspend = d.GracePeriodExpired

	if d.GracePeriodExpired {
		d.Reason = fmt.Sprintf("Payment overdue by %d days - Grace period expired - Total overdue: %s",
			d.DaysOverdue, FormatRupiah(d.OverdueAmount))
	} else {
		d.Reason = fmt.Sprintf("Payment overdue by %d days - Still within grace period", d.DaysOverdue)
	}
	return d, nil
}

// daysPastDue counts whole days from due to now, clamped at zero so a
// pending payment that is not yet due never reports negative days.
func daysPastDue(due, now time.Time) int {
	days := int(now.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// FormatRupiah renders an amount as "Rp 1.500.000" with dot separators.
func FormatRupiah(amount decimal.Decimal) string {
	s := amount.Round(0).BigInt().String()
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	return "Rp " + strings.Join(groups, ".")
}
