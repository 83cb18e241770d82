package shared

import (
	"context"
	"fmt"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Roles known to the application.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleCashier    = "cashier"
)

// ViewedTenantKey is the session key holding the tenant a super-admin is inspecting.
const ViewedTenantKey = "viewed_tenant"

type sessionContextKey struct{}

type principalContextKey struct{}

// Principal describes the authenticated actor of a request.
type Principal struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	CommerceID int64  `json:"commerce_id,omitempty"`
}

// IsSuperAdmin reports whether the principal may operate across tenants.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal loaded for the request, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok && p.UserID > 0
}

// TenantFromContext resolves the tenant every scoped operation works on.
// Super-admins use the tenant selected through the tenant switch; everybody
// else is pinned to their own commerce.
func TenantFromContext(ctx context.Context) (int64, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return 0, httpx.ErrUnauthorized
	}
	if !p.IsSuperAdmin() {
		if p.CommerceID <= 0 {
			return 0, fmt.Errorf("%w: user has no commerce", httpx.ErrForbidden)
		}
		return p.CommerceID, nil
	}
	sess := SessionFromContext(ctx)
	if sess == nil {
		return 0, ErrNoTenantSelected
	}
	id, err := strconv.ParseInt(sess.Get(ViewedTenantKey), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNoTenantSelected
	}
	return id, nil
}
