package snapshot

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Handler exposes sync and snapshot endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers /sync and /snapshot on the root router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermDataExport))
		r.Get("/sync", h.sync)
		r.Get("/snapshot", h.export)
	})
	r.With(h.rbac.RequireAny(rbac.PermDataImport)).Post("/snapshot", h.importSnapshot)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, err := h.service.Export(r.Context(), tenant)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	snap, err := h.service.Export(r.Context(), tenant)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	filename := fmt.Sprintf("snapshot-%d-%s.json", tenant, snap.ExportedAt.Format("20060102T150405"))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var snap Snapshot
	if err := httpx.DecodeJSON(r, &snap); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	result, err := h.service.Import(r.Context(), principal.UserID, tenant, snap)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
