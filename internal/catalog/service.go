package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Service implements catalog rules on top of a Repository.
type Service struct {
	repo Repository
}

// NewService constructs a catalog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's products ordered by name.
func (s *Service) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Product, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	filters.Category = strings.TrimSpace(filters.Category)
	return s.repo.List(ctx, commerceID, filters)
}

// Get fetches a single product.
func (s *Service) Get(ctx context.Context, commerceID, id int64) (Product, error) {
	return s.repo.Get(ctx, commerceID, id)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, commerceID int64, req CreateProductRequest) (Product, error) {
	p := Product{
		CommerceID: commerceID,
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price,
		Stock:      req.Stock,
		Category:   strings.TrimSpace(req.Category),
		Icon:       req.Icon,
	}
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update merges req onto the stored product and persists the result.
func (s *Service) Update(ctx context.Context, commerceID, id int64, req UpdateProductRequest) (Product, error) {
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Product{}, err
	}
	next := req.Apply(current)
	next.Name = strings.TrimSpace(next.Name)
	if err := validateProduct(next); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, next)
}

// Delete removes a product. Past orders keep their snapshot of it.
func (s *Service) Delete(ctx context.Context, commerceID, id int64) error {
	return s.repo.Delete(ctx, commerceID, id)
}

func validateProduct(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", httpx.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", httpx.ErrValidation)
	}
	return nil
}
