package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable completed sale.
type Order struct {
	ID         int64           `json:"id"`
	CommerceID int64           `json:"commerce_id"`
	CashierID  int64           `json:"cashier_id"`
	ClientID   *int64          `json:"client_id,omitempty"`
	ClientName string          `json:"client_name"`
	TaxEnabled bool            `json:"tax_enabled"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	Tendered   decimal.Decimal `json:"tendered"`
	ChangeDue  decimal.Decimal `json:"change_due"`
	Lines      []Line          `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Line is a product snapshot inside an order.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ListFilters narrows order listings. Zero values mean unbounded.
type ListFilters struct {
	From  time.Time
	To    time.Time
	Limit int
}

// CreateOptions control side effects applied together with the insert.
type CreateOptions struct {
	// IdempotencyKey, when set, is claimed in the same transaction.
	IdempotencyKey string
	// DecrementStock lowers product stock by the sold quantities, floored at zero.
	DecrementStock bool
}

// IdempotencyModule scopes checkout idempotency keys.
const IdempotencyModule = "pos.checkout"
