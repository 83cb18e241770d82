package clients

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer that may buy on credit.
type Client struct {
	ID         int64           `json:"id"`
	CommerceID int64           `json:"commerce_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Email      string          `json:"email"`
	Address    string          `json:"address"`
	Credit     decimal.Decimal `json:"credit"`
	IsVIP      bool            `json:"is_vip"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListFilters narrows client listings.
type ListFilters struct {
	Search  string
	VIPOnly bool
}

// CreateClientRequest is the payload for a new client. Credit starts at zero.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=40"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"max=200"`
	IsVIP   bool   `json:"is_vip"`
}

// UpdateClientRequest is a merge-patch. Credit is not editable here.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=200"`
	IsVIP   *bool   `json:"is_vip,omitempty"`
}

// Apply merges the patch onto c.
func (req UpdateClientRequest) Apply(c Client) Client {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.IsVIP != nil {
		c.IsVIP = *req.IsVIP
	}
	return c
}

// AmountRequest carries a credit or payment amount.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=200"`
}
