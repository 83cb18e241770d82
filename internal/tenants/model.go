package tenants

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the billing state of a commerce.
type SubscriptionStatus string

// Subscription states.
const (
	SubscriptionActive   SubscriptionStatus = "Active"
	SubscriptionInactive SubscriptionStatus = "Inactive"
	SubscriptionTrial    SubscriptionStatus = "Trial"
)

// Commerce is a tenant of the platform.
type Commerce struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	OwnerName          string             `json:"owner_name"`
	OwnerEmail         string             `json:"owner_email"`
	Phone              string             `json:"phone"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	SubscriptionPrice  decimal.Decimal    `json:"subscription_price"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CreateCommerceRequest is the payload for a new tenant.
type CreateCommerceRequest struct {
	Name               string          `json:"name" validate:"required,max=120"`
	OwnerName          string          `json:"owner_name" validate:"max=120"`
	OwnerEmail         string          `json:"owner_email" validate:"omitempty,email"`
	Phone              string          `json:"phone" validate:"max=40"`
	SubscriptionStatus string          `json:"subscription_status" validate:"omitempty,oneof=Active Inactive Trial"`
	SubscriptionPrice  decimal.Decimal `json:"subscription_price"`
}

// UpdateCommerceRequest is a merge-patch.
type UpdateCommerceRequest struct {
	Name               *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	OwnerName          *string          `json:"owner_name,omitempty" validate:"omitempty,max=120"`
	OwnerEmail         *string          `json:"owner_email,omitempty" validate:"omitempty,email"`
	Phone              *string          `json:"phone,omitempty" validate:"omitempty,max=40"`
	SubscriptionStatus *string          `json:"subscription_status,omitempty" validate:"omitempty,oneof=Active Inactive Trial"`
	SubscriptionPrice  *decimal.Decimal `json:"subscription_price,omitempty"`
}

// Apply merges the patch onto c.
func (req UpdateCommerceRequest) Apply(c Commerce) Commerce {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.OwnerName != nil {
		c.OwnerName = *req.OwnerName
	}
	if req.OwnerEmail != nil {
		c.OwnerEmail = *req.OwnerEmail
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.SubscriptionStatus != nil {
		c.SubscriptionStatus = SubscriptionStatus(*req.SubscriptionStatus)
	}
	if req.SubscriptionPrice != nil {
		c.SubscriptionPrice = *req.SubscriptionPrice
	}
	return c
}
