package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
)

// CommerceLookup resolves the billed commerce.
type CommerceLookup interface {
	Get(ctx context.Context, id int64) (tenants.Commerce, error)
}

// Auditor records billing actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the invoice ledger.
type Service struct {
	repo      Repository
	commerces CommerceLookup
	audit     Auditor
	dueDays   int
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service. dueDays is the default payment term.
func NewService(repo Repository, commerces CommerceLookup, audit Auditor, dueDays int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, commerces: commerces, audit: audit, dueDays: dueDays, logger: logger, now: time.Now}
}

// List returns a commerce's invoices, newest first.
func (s *Service) List(ctx context.Context, commerceID int64) ([]Invoice, error) {
	if _, err := s.commerces.Get(ctx, commerceID); err != nil {
		return nil, err
	}
	return s.repo.ListByCommerce(ctx, commerceID)
}

// CreateInvoice appends a pending invoice for the commerce.
func (s *Service) CreateInvoice(ctx context.Context, actorID, commerceID int64, req CreateInvoiceRequest) (Invoice, error) {
	commerce, err := s.commerces.Get(ctx, commerceID)
	if err != nil {
		return Invoice{}, err
	}
	amount := req.Amount
	if amount.IsZero() {
		amount = commerce.SubscriptionPrice
	}
	if !amount.IsPositive() {
		return Invoice{}, fmt.Errorf("%w: invoice amount must be positive", httpx.ErrValidation)
	}
	issued := s.now().UTC()
	due := DefaultDueDate(issued, s.dueDays)
	if req.DueDate != "" {
		due, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return Invoice{}, fmt.Errorf("%w: invalid due_date", httpx.ErrValidation)
		}
	}
	inv, err := s.repo.Create(ctx, Invoice{
		CommerceID: commerce.ID,
		Amount:     amount,
		IssuedAt:   issued,
		DueDate:    due,
		Status:     StatusPending,
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, actorID, "invoice.create", inv)
	return inv, nil
}

// MarkPaid settles an invoice. Paying an already paid invoice is a no-op.
func (s *Service) MarkPaid(ctx context.Context, actorID, id int64) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	next, changed, err := MarkPaid(inv, s.now())
	if err != nil {
		return Invoice{}, err
	}
	if !changed {
		return inv, nil
	}
	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, actorID, "invoice.paid", saved)
	return saved, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, inv Invoice) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoice",
		EntityID: strconv.FormatInt(inv.ID, 10),
		Meta: map[string]any{
			"commerce_id": inv.CommerceID,
			"amount":      inv.Amount.StringFixed(2),
		},
	})
	if err != nil {
		s.logger.Warn("audit invoice", slog.String("action", action), slog.Any("error", err))
	}
}
