package tenants

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Auditor records administrative actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages commerces for super-admins.
type Service struct {
	repo   Repository
	audit  Auditor
	logger *slog.Logger
}

// NewService constructs a Service. audit may be nil.
func NewService(repo Repository, audit Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns all commerces.
func (s *Service) List(ctx context.Context) ([]Commerce, error) {
	return s.repo.List(ctx)
}

// Get returns one commerce.
func (s *Service) Get(ctx context.Context, id int64) (Commerce, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new commerce. Status defaults to Trial.
func (s *Service) Create(ctx context.Context, req CreateCommerceRequest) (Commerce, error) {
	c := Commerce{
		Name:               strings.TrimSpace(req.Name),
		OwnerName:          strings.TrimSpace(req.OwnerName),
		OwnerEmail:         strings.TrimSpace(req.OwnerEmail),
		Phone:              strings.TrimSpace(req.Phone),
		SubscriptionStatus: SubscriptionStatus(req.SubscriptionStatus),
		SubscriptionPrice:  req.SubscriptionPrice,
	}
	if c.SubscriptionStatus == "" {
		c.SubscriptionStatus = SubscriptionTrial
	}
	if err := validateCommerce(c); err != nil {
		return Commerce{}, err
	}
	return s.repo.Create(ctx, c)
}

// Update merges req onto the stored commerce.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCommerceRequest) (Commerce, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Commerce{}, err
	}
	next := req.Apply(current)
	next.Name = strings.TrimSpace(next.Name)
	if err := validateCommerce(next); err != nil {
		return Commerce{}, err
	}
	return s.repo.Update(ctx, next)
}

// Delete removes a commerce with all of its data.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "tenant.delete", id)
	return nil
}

// View selects the tenant a super-admin works on for the rest of the session.
func (s *Service) View(ctx context.Context, sess *shared.Session, actorID, id int64) (Commerce, error) {
	if sess == nil {
		return Commerce{}, fmt.Errorf("%w: no session", httpx.ErrUnauthorized)
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Commerce{}, err
	}
	sess.Set(shared.ViewedTenantKey, strconv.FormatInt(c.ID, 10))
	s.record(ctx, actorID, "tenant.view", c.ID)
	return c, nil
}

// ExitView clears the tenant selection.
func (s *Service) ExitView(sess *shared.Session) {
	if sess != nil {
		sess.Delete(shared.ViewedTenantKey)
	}
}

func validateCommerce(c Commerce) error {
	if c.Name == "" {
		return fmt.Errorf("%w: commerce name is required", httpx.ErrValidation)
	}
	switch c.SubscriptionStatus {
	case SubscriptionActive, SubscriptionInactive, SubscriptionTrial:
	default:
		return fmt.Errorf("%w: unknown subscription status %q", httpx.ErrValidation, c.SubscriptionStatus)
	}
	if c.SubscriptionPrice.IsNegative() {
		return fmt.Errorf("%w: subscription price must not be negative", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "commerce",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("audit tenant", slog.String("action", action), slog.Any("error", err))
	}
}
