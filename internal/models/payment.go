package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a monthly rent payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment represents one month of rent for a tenant. PaymentMonth is the
// billing period in "YYYY-MM" form; due dates are derived from it, not
// stored. Payments are written by billing and gateway sync, the access
// engine only reads them.
type Payment struct {
	ID           int64           `json:"id"`
	TenantID     int64           `json:"tenant_id"`
	OrderID      string          `json:"order_id"`
	Status       PaymentStatus   `json:"status"`
	PaymentMonth string          `json:"payment_month"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
