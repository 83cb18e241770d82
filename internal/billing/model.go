package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the state of a subscription invoice.
type Status string

// Invoice states. Nothing in the application produces StatusOverdue; it is
// only ever set outside the application.
const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Invoice bills a commerce for its subscription.
type Invoice struct {
	ID         int64           `json:"id"`
	CommerceID int64           `json:"commerce_id"`
	Amount     decimal.Decimal `json:"amount"`
	IssuedAt   time.Time       `json:"issued_at"`
	DueDate    time.Time       `json:"due_date"`
	Status     Status          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// CreateInvoiceRequest issues a new invoice. A zero amount bills the
// commerce subscription price; an empty due date uses the configured term.
type CreateInvoiceRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}
