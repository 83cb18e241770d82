package expenses

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an append-only outgoing payment.
type Expense struct {
	ID          int64           `json:"id"`
	CommerceID  int64           `json:"commerce_id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	SpentOn     time.Time       `json:"spent_on"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListFilters narrows expense listings by spent_on date. Zero values mean unbounded.
type ListFilters struct {
	From     time.Time
	To       time.Time
	Category string
}

// CreateExpenseRequest is the payload for a new expense. SpentOn defaults to today.
type CreateExpenseRequest struct {
	Description string          `json:"description" validate:"required,max=200"`
	Category    string          `json:"category" validate:"max=60"`
	Amount      decimal.Decimal `json:"amount"`
	SpentOn     string          `json:"spent_on" validate:"omitempty,datetime=2006-01-02"`
}

// CategoryTotal is the sum of expenses in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
