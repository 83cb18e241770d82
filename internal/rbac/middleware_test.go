package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, principal *shared.Principal) int {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAnyWithoutPrincipal(t *testing.T) {
	m := rbac.Middleware{Service: rbac.NewService()}
	assert.Equal(t, http.StatusUnauthorized, serve(t, m.RequireAny(rbac.PermPOSSell), nil))
}

func TestRequireAnyByRole(t *testing.T) {
	m := rbac.Middleware{Service: rbac.NewService()}
	cashier := &shared.Principal{UserID: 2, Role: shared.RoleCashier, CommerceID: 1}
	admin := &shared.Principal{UserID: 3, Role: shared.RoleAdmin, CommerceID: 1}
	super := &shared.Principal{UserID: 1, Role: shared.RoleSuperAdmin}

	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAny(rbac.PermPOSSell), cashier))
	assert.Equal(t, http.StatusForbidden, serve(t, m.RequireAny(rbac.PermPayrollEdit), cashier))
	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAny(rbac.PermPayrollEdit), admin))
	assert.Equal(t, http.StatusForbidden, serve(t, m.RequireAny(rbac.PermAdminTenants), admin))
	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAny(rbac.PermAdminTenants), super))
}

func TestRequireAll(t *testing.T) {
	m := rbac.Middleware{Service: rbac.NewService()}
	cashier := &shared.Principal{UserID: 2, Role: shared.RoleCashier, CommerceID: 1}

	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAll(rbac.PermPOSSell, rbac.PermCatalogView), cashier))
	assert.Equal(t, http.StatusForbidden, serve(t, m.RequireAll(rbac.PermPOSSell, rbac.PermCatalogEdit), cashier))
}

func TestPermissionsForUnknownRole(t *testing.T) {
	svc := rbac.NewService()
	require.Empty(t, svc.PermissionsForRole("auditor"))
	assert.Contains(t, svc.PermissionsForRole(" Admin "), rbac.PermReportsView)
}

func TestMissingPermissions(t *testing.T) {
	svc := rbac.NewService()
	cashier := shared.Principal{UserID: 2, Role: shared.RoleCashier, CommerceID: 1}
	assert.Equal(t, []string{rbac.PermCatalogEdit}, svc.Missing(cashier, []string{rbac.PermCatalogView, rbac.PermCatalogEdit}))
	assert.Empty(t, svc.Missing(cashier, nil))
}

func TestRequireNoPermissions(t *testing.T) {
	m := rbac.Middleware{Service: rbac.NewService()}
	cashier := &shared.Principal{UserID: 2, Role: shared.RoleCashier, CommerceID: 1}
	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAny(), cashier))
	assert.Equal(t, http.StatusNoContent, serve(t, m.RequireAll(" POS.sell ", rbac.PermPOSSell), cashier))
}
