package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Auditor records staff changes.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages the staff accounts of a commerce.
type Service struct {
	repo   Repository
	audit  Auditor
	logger *slog.Logger
	cost   int
}

// NewService builds Service instance.
func NewService(repo Repository, audit Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, cost: bcrypt.DefaultCost}
}

// List returns the staff of a commerce.
func (s *Service) List(ctx context.Context, commerceID int64) ([]User, error) {
	return s.repo.List(ctx, commerceID)
}

// Get returns one staff account.
func (s *Service) Get(ctx context.Context, commerceID, id int64) (User, error) {
	return s.repo.Get(ctx, commerceID, id)
}

// Create adds an active account to the commerce.
func (s *Service) Create(ctx context.Context, actorID, commerceID int64, req CreateUserRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, User{
		Email:      req.Email,
		Name:       strings.TrimSpace(req.Name),
		Role:       req.Role,
		CommerceID: commerceID,
		IsActive:   true,
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.create", user, nil)
	return user, nil
}

// Update patches an account. Actors cannot demote or disable themselves.
func (s *Service) Update(ctx context.Context, actorID, commerceID, id int64, req UpdateUserRequest) (User, error) {
	user, err := s.repo.Get(ctx, commerceID, id)
	if err != nil {
		return User{}, err
	}
	if id == actorID {
		if req.IsActive != nil && !*req.IsActive {
			return User{}, fmt.Errorf("%w: cannot disable your own account", httpx.ErrConflict)
		}
		if req.Role != nil && *req.Role != user.Role {
			return User{}, fmt.Errorf("%w: cannot change your own role", httpx.ErrConflict)
		}
	}

	changed := map[string]any{}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
		changed["name"] = user.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
		changed["role"] = user.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
		changed["is_active"] = user.IsActive
	}
	var hash string
	if req.Password != nil {
		raw, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return User{}, err
		}
		hash = string(raw)
		changed["password"] = "reset"
	}

	user, err = s.repo.Update(ctx, user, hash)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.update", user, changed)
	return user, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, u User, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["commerce_id"] = u.CommerceID
	meta["email"] = u.Email
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(u.ID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit user change", slog.String("action", action), slog.Any("error", err))
	}
}
