package payroll

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Auditor records ledger mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the payroll ledger.
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

// List returns the tenant's employees.
func (s *Service) List(ctx context.Context, commerceID int64) ([]Employee, error) {
	return s.repo.List(ctx, commerceID)
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, commerceID, id int64) (Employee, error) {
	return s.repo.Get(ctx, commerceID, id)
}

// Create stores a new employee with a derived balance.
func (s *Service) Create(ctx context.Context, commerceID int64, req CreateEmployeeRequest) (Employee, error) {
	e := Recompute(Employee{
		CommerceID: commerceID,
		Name:       strings.TrimSpace(req.Name),
		Role:       strings.TrimSpace(req.Role),
		Salary:     req.Salary,
		Advance:    req.Advance,
	})
	if err := Validate(e); err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, e)
}

// Update merges req onto the stored employee and recomputes the balance.
func (s *Service) Update(ctx context.Context, commerceID, id int64, req UpdateEmployeeRequest) (Employee, error) {
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Employee{}, err
	}
	next := req.Apply(current)
	next.Name = strings.TrimSpace(next.Name)
	if err := Validate(next); err != nil {
		return Employee{}, err
	}
	return s.repo.Save(ctx, next)
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, commerceID, id int64) error {
	return s.repo.Delete(ctx, commerceID, id)
}

// RecordAdvance adds an advance to the employee.
func (s *Service) RecordAdvance(ctx context.Context, actorID, commerceID, id int64, req AdvanceRequest) (Employee, error) {
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Employee{}, err
	}
	next, err := RecordAdvance(current, req.Amount)
	if err != nil {
		return Employee{}, err
	}
	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actorID, "payroll.advance", saved, map[string]any{"amount": req.Amount.StringFixed(2)})
	return saved, nil
}

// Pay settles the employee for the period.
func (s *Service) Pay(ctx context.Context, actorID, commerceID, id int64) (Employee, error) {
	current, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return Employee{}, err
	}
	saved, err := s.repo.Save(ctx, Pay(current))
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actorID, "payroll.pay", saved, map[string]any{
		"paid":    Balance(current).StringFixed(2),
		"advance": current.Advance.StringFixed(2),
	})
	return saved, nil
}

// Rollover opens a new month for one tenant.
func (s *Service) Rollover(ctx context.Context, actorID, commerceID int64) (RolloverResult, error) {
	employees, err := s.repo.List(ctx, commerceID)
	if err != nil {
		return RolloverResult{}, err
	}
	rolled := NewMonthRollover(employees)
	if err := s.repo.SaveAll(ctx, rolled); err != nil {
		return RolloverResult{}, err
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "payroll.rollover",
			Entity:   "commerce",
			EntityID: strconv.FormatInt(commerceID, 10),
			Meta:     map[string]any{"employees": len(rolled)},
		})
		if err != nil {
			s.logger.Warn("audit payroll rollover", slog.Any("error", err))
		}
	}
	return RolloverResult{CommerceID: commerceID, Employees: rolled}, nil
}

// RolloverAll opens a new month for every tenant with employees. It stops
// at the first tenant that fails.
func (s *Service) RolloverAll(ctx context.Context) (int, error) {
	ids, err := s.repo.CommerceIDs(ctx)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if _, err := s.Rollover(ctx, 0, id); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, e Employee, meta map[string]any) {
	if s.audit == nil {
		return
	}
	meta["commerce_id"] = e.CommerceID
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "employee",
		EntityID: strconv.FormatInt(e.ID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit payroll", slog.String("action", action), slog.Any("error", err))
	}
}
