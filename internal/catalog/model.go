package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry owned by one commerce.
type Product struct {
	ID         int64           `json:"id"`
	CommerceID int64           `json:"commerce_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Category   string          `json:"category"`
	Icon       string          `json:"icon"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListFilters narrows catalog listings.
type ListFilters struct {
	Search   string
	Category string
}

// CreateProductRequest is the payload for a new product.
type CreateProductRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Category string          `json:"category" validate:"max=60"`
	Icon     string          `json:"icon" validate:"max=16"`
}

// UpdateProductRequest is a merge-patch: nil fields keep their stored value.
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category *string          `json:"category,omitempty" validate:"omitempty,max=60"`
	Icon     *string          `json:"icon,omitempty" validate:"omitempty,max=16"`
}

// Apply merges the patch onto p.
func (req UpdateProductRequest) Apply(p Product) Product {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Icon != nil {
		p.Icon = *req.Icon
	}
	return p
}
