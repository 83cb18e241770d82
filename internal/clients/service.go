package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// ErrInsufficientCredit rejects a payment larger than the outstanding credit.
var ErrInsufficientCredit = fmt.Errorf("%w: payment exceeds outstanding credit", httpx.ErrValidation)

// Auditor records ledger mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator drops cached report data of a tenant.
type Invalidator interface {
	Bump(ctx context.Context, commerceID int64) error
}

// Service implements the client ledger.
type Service struct {
	repo   Repository
	audit  Auditor
	cache  Invalidator
	logger *slog.Logger
}

// NewService constructs a Service. audit and cache may be nil.
func NewService(repo Repository, audit Auditor, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

// List returns the tenant's clients.
func (s *Service) List(ctx context.Context, commerceID int64, filters ListFilters) ([]Client, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	return s.repo.List(ctx, commerceID, filters)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, commerceID, id int64) (Client, error) {
	return s.repo.Get(ctx, commerceID, id)
}

// Create stores a new client with zero credit.
func (s *Service) Create(ctx context.Context, commerceID int64, req CreateClientRequest) (Client, error) {
	c := Client{
		CommerceID: commerceID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Email:      strings.TrimSpace(req.Email),
		Address:    strings.TrimSpace(req.Address),
		Credit:     decimal.Zero,
		IsVIP:      req.IsVIP,
	}
	if c.Name == "" {
		return Client{}, fmt.Errorf("%w: client name is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, c)
}

// Update merges req onto the stored client.
func (s *Service) Update(ctx context.Context, commerceID, id int64, req UpdateClientRequest) (Client, error) {
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Client{}, err
	}
	next := req.Apply(current)
	next.Name = strings.TrimSpace(next.Name)
	if next.Name == "" {
		return Client{}, fmt.Errorf("%w: client name is required", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, next)
}

// Delete removes a client. Orders keep the client name they were sold under.
func (s *Service) Delete(ctx context.Context, commerceID, id int64) error {
	if err := s.repo.Delete(ctx, commerceID, id); err != nil {
		return err
	}
	s.bump(ctx, commerceID)
	return nil
}

// AddCredit raises the amount the client owes.
func (s *Service) AddCredit(ctx context.Context, actorID, commerceID, id int64, req AmountRequest) (Client, error) {
	if !req.Amount.IsPositive() {
		return Client{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	c, err := s.repo.AdjustCredit(ctx, commerceID, id, req.Amount)
	if err != nil {
		return Client{}, err
	}
	s.record(ctx, actorID, "client.credit", c, req)
	return c, nil
}

// RecordPayment lowers the amount the client owes. Payments above the
// outstanding credit are rejected.
func (s *Service) RecordPayment(ctx context.Context, actorID, commerceID, id int64, req AmountRequest) (Client, error) {
	if !req.Amount.IsPositive() {
		return Client{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Client{}, err
	}
	if req.Amount.GreaterThan(current.Credit) {
		return Client{}, ErrInsufficientCredit
	}
	c, err := s.repo.AdjustCredit(ctx, commerceID, id, req.Amount.Neg())
	if err != nil {
		return Client{}, err
	}
	s.record(ctx, actorID, "client.payment", c, req)
	return c, nil
}

// TotalCredit sums the outstanding credit of clients.
func TotalCredit(clients []Client) decimal.Decimal {
	total := decimal.Zero
	for _, c := range clients {
		total = total.Add(c.Credit)
	}
	return total
}

func (s *Service) record(ctx context.Context, actorID int64, action string, c Client, req AmountRequest) {
	s.bump(ctx, c.CommerceID)
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "client",
		EntityID: strconv.FormatInt(c.ID, 10),
		Meta: map[string]any{
			"commerce_id": c.CommerceID,
			"amount":      req.Amount.StringFixed(2),
			"credit":      c.Credit.StringFixed(2),
			"note":        req.Note,
		},
	})
	if err != nil {
		s.logger.Warn("audit client ledger", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) bump(ctx context.Context, commerceID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, commerceID); err != nil {
		s.logger.Warn("client cache bump", slog.Int64("commerce_id", commerceID), slog.Any("error", err))
	}
}
