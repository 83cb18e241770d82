package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// PermissionsHandler exposes the role grant table.
type PermissionsHandler struct {
	service *Service
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(service *Service, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{service: service, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny())
		r.Get("/", h.listMine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermAdminTenants))
		r.Get("/roles", h.listRoles)
	})
}

type rolePermissionsView struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, rolePermissionsView{
		Role:        principal.Role,
		Permissions: h.service.EffectivePermissions(principal),
	})
}

func (h *PermissionsHandler) listRoles(w http.ResponseWriter, _ *http.Request) {
	out := make([]rolePermissionsView, 0, len(Roles()))
	for _, role := range Roles() {
		out = append(out, rolePermissionsView{Role: role, Permissions: h.service.PermissionsForRole(role)})
	}
	httpx.JSON(w, http.StatusOK, out)
}
