package orders

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Service reads the order ledger. Orders are only ever written by checkout.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's orders within filters.
func (s *Service) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Order, error) {
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return nil, fmt.Errorf("%w: range end before start", httpx.ErrValidation)
	}
	return s.repo.List(ctx, commerceID, filters)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, commerceID, id int64) (Order, error) {
	return s.repo.Get(ctx, commerceID, id)
}
