package access

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// DueDate returns the suspension deadline for a billing month: the
// configured day of that month at midnight UTC. The grace period counts
// from this date.
func DueDate(paymentMonth string, dayOfMonth int) (time.Time, error) {
	m, err := time.Parse(monthLayout, paymentMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid payment month %q: %w", paymentMonth, err)
	}
	return time.Date(m.Year(), m.Month(), dayOfMonth, 0, 0, 0, 0, time.UTC), nil
}

// EndOfMonthDue returns the reminder deadline for a billing month: the
// last day of that month. This is deliberately a different rule from
// DueDate; reminders and suspension run on independent deadlines.
func EndOfMonthDue(paymentMonth string) (time.Time, error) {
	m, err := time.Parse(monthLayout, paymentMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid payment month %q: %w", paymentMonth, err)
	}
	firstOfNext := time.Date(m.Year(), m.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1), nil
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
