package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, commerceID int64, filters ListFilters) ([]Product, error) {
	out := make([]Product, 0)
	for _, p := range m.products {
		if p.CommerceID != commerceID {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, commerceID, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok || p.CommerceID != commerceID {
		return Product{}, fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, p Product) (Product, error) {
	p.ID = m.nextID
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(_ context.Context, p Product) (Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, httpx.ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Delete(_ context.Context, commerceID, id int64) error {
	p, ok := m.products[id]
	if !ok || p.CommerceID != commerceID {
		return httpx.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateProductRequest{Name: "  ", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	_, err = svc.Create(ctx, 1, CreateProductRequest{Name: "Espresso", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	p, err := svc.Create(ctx, 1, CreateProductRequest{Name: " Espresso ", Price: decimal.RequireFromString("1.70"), Stock: 20, Category: "Coffee"})
	require.NoError(t, err)
	assert.Equal(t, "Espresso", p.Name)
	assert.Equal(t, int64(1), p.CommerceID)
}

func TestUpdateIsMergePatch(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, 1, CreateProductRequest{Name: "Tea", Price: decimal.NewFromInt(1), Stock: 5, Category: "Hot", Icon: "T"})
	require.NoError(t, err)

	price := decimal.RequireFromString("1.25")
	updated, err := svc.Update(ctx, 1, created.ID, UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Tea", updated.Name)
	assert.Equal(t, 5, updated.Stock)
	assert.Equal(t, "Hot", updated.Category)
	assert.Equal(t, "T", updated.Icon)
}

func TestUpdateRejectsNegativeStock(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, 1, CreateProductRequest{Name: "Tea", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	stock := -3
	_, err = svc.Update(ctx, 1, created.ID, UpdateProductRequest{Stock: &stock})
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestTenantIsolation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, 1, CreateProductRequest{Name: "Tea", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, created.ID)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, 2, created.ID), httpx.ErrNotFound))

	list, err := svc.List(ctx, 2, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
