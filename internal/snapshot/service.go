package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// ProductSource lists products.
type ProductSource interface {
	List(ctx context.Context, commerceID int64, filters catalog.ListFilters) ([]catalog.Product, error)
}

// ClientSource lists clients.
type ClientSource interface {
	List(ctx context.Context, commerceID int64, filters clients.ListFilters) ([]clients.Client, error)
}

// EmployeeSource lists employees.
type EmployeeSource interface {
	List(ctx context.Context, commerceID int64) ([]payroll.Employee, error)
}

// OrderSource lists orders.
type OrderSource interface {
	List(ctx context.Context, commerceID int64, filters orders.ListFilters) ([]orders.Order, error)
}

// ExpenseSource lists expenses.
type ExpenseSource interface {
	List(ctx context.Context, commerceID int64, filters expenses.ListFilters) ([]expenses.Expense, error)
}

// Invalidator drops cached reports after an import.
type Invalidator interface {
	Bump(ctx context.Context, commerceID int64) error
}

// ServiceParams groups the Service collaborators.
type ServiceParams struct {
	Products  ProductSource
	Clients   ClientSource
	Employees EmployeeSource
	Orders    OrderSource
	Expenses  ExpenseSource
	Store     Store
	Cache     Invalidator
	Logger    *slog.Logger
}

// Service exports and imports tenant snapshots.
type Service struct {
	p   ServiceParams
	now func() time.Time
}

// NewService constructs a Service.
func NewService(p ServiceParams) *Service {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Service{p: p, now: time.Now}
}

// Export fetches every ledger of the tenant concurrently.
func (s *Service) Export(ctx context.Context, commerceID int64) (Snapshot, error) {
	snap := Snapshot{ExportedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Products, err = s.p.Products.List(gctx, commerceID, catalog.ListFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Clients, err = s.p.Clients.List(gctx, commerceID, clients.ListFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Employees, err = s.p.Employees.List(gctx, commerceID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Orders, err = s.p.Orders.List(gctx, commerceID, orders.ListFilters{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Expenses, err = s.p.Expenses.List(gctx, commerceID, expenses.ListFilters{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Import replaces the tenant's ledgers with the snapshot. Tenant ids inside
// the snapshot are ignored; every row lands in commerceID.
func (s *Service) Import(ctx context.Context, actorID, commerceID int64, snap Snapshot) (ImportResult, error) {
	if commerceID <= 0 {
		return ImportResult{}, fmt.Errorf("%w: commerce required", httpx.ErrValidation)
	}
	normalized, err := Normalize(snap)
	if err != nil {
		return ImportResult{}, err
	}
	result, err := s.p.Store.Replace(ctx, commerceID, normalized, shared.AuditLog{
		ActorID:  actorID,
		Action:   "snapshot.import",
		Entity:   "commerce",
		EntityID: strconv.FormatInt(commerceID, 10),
		Meta:     map[string]any{"exported_at": snap.ExportedAt},
	})
	if err != nil {
		return ImportResult{}, err
	}
	if s.p.Cache != nil {
		if err := s.p.Cache.Bump(ctx, commerceID); err != nil {
			s.p.Logger.Warn("bump report cache", slog.Int64("commerce_id", commerceID), slog.Any("error", err))
		}
	}
	s.p.Logger.Info("snapshot imported",
		slog.Int64("commerce_id", commerceID),
		slog.Int("products", result.Products),
		slog.Int("orders", result.Orders))
	return result, nil
}

// Normalize validates snapshot rows and restores derived employee fields.
func Normalize(snap Snapshot) (Snapshot, error) {
	for i, p := range snap.Products {
		if p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
			return Snapshot{}, fmt.Errorf("%w: product %d is invalid", httpx.ErrValidation, i)
		}
	}
	for i, c := range snap.Clients {
		if c.Name == "" || c.Credit.IsNegative() {
			return Snapshot{}, fmt.Errorf("%w: client %d is invalid", httpx.ErrValidation, i)
		}
	}
	employees := make([]payroll.Employee, len(snap.Employees))
	for i, e := range snap.Employees {
		if err := payroll.Validate(e); err != nil {
			return Snapshot{}, fmt.Errorf("employee %d: %w", i, err)
		}
		employees[i] = payroll.Restore(e)
	}
	snap.Employees = employees
	for i, e := range snap.Expenses {
		if e.Description == "" || !e.Amount.IsPositive() || e.SpentOn.IsZero() {
			return Snapshot{}, fmt.Errorf("%w: expense %d is invalid", httpx.ErrValidation, i)
		}
	}
	for i, o := range snap.Orders {
		for _, line := range o.Lines {
			if line.Quantity < 1 || line.Price.IsNegative() {
				return Snapshot{}, fmt.Errorf("%w: order %d has an invalid line", httpx.ErrValidation, i)
			}
		}
	}
	return snap, nil
}
