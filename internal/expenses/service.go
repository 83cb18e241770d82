package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Invalidator drops cached report data of a tenant.
type Invalidator interface {
	Bump(ctx context.Context, commerceID int64) error
}

// Service implements the expense ledger.
type Service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// List returns expenses newest first.
func (s *Service) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Expense, error) {
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return nil, fmt.Errorf("%w: range end before start", httpx.ErrValidation)
	}
	filters.Category = strings.TrimSpace(filters.Category)
	return s.repo.List(ctx, commerceID, filters)
}

// Create appends an expense.
func (s *Service) Create(ctx context.Context, commerceID int64, req CreateExpenseRequest) (Expense, error) {
	if !req.Amount.IsPositive() {
		return Expense{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	spentOn := s.now().UTC().Truncate(24 * time.Hour)
	if req.SpentOn != "" {
		parsed, err := time.Parse("2006-01-02", req.SpentOn)
		if err != nil {
			return Expense{}, fmt.Errorf("%w: invalid spent_on", httpx.ErrValidation)
		}
		spentOn = parsed
	}
	e := Expense{
		CommerceID:  commerceID,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		SpentOn:     spentOn,
	}
	if e.Description == "" {
		return Expense{}, fmt.Errorf("%w: description is required", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return Expense{}, err
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx, commerceID); err != nil {
			s.logger.Warn("expense cache bump", slog.Int64("commerce_id", commerceID), slog.Any("error", err))
		}
	}
	return created, nil
}

// Total sums expense amounts.
func Total(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalsByCategory sums expenses per category in first-seen order.
// Uncategorised expenses are grouped under an empty category.
func TotalsByCategory(expenses []Expense) []CategoryTotal {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
	}
	return out
}
