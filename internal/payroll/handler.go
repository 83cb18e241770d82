package payroll

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Handler exposes the payroll ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPayrollView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPayrollEdit))
		r.Post("/", h.create)
		r.Post("/rollover", h.rollover)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/advance", h.advance)
		r.Post("/{id}/pay", h.pay)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	employees, err := h.service.List(r.Context(), tenant)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employees)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.target(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), tenant, id)
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, err := h.service.Create(r.Context(), tenant, req)
	h.respond(w, r, http.StatusCreated, e, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, err := h.service.Update(r.Context(), tenant, id, req)
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), tenant, id); err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req AdvanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	e, err := h.service.RecordAdvance(r.Context(), principal.UserID, tenant, id, req)
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := h.target(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	e, err := h.service.Pay(r.Context(), principal.UserID, tenant, id)
	h.respond(w, r, http.StatusOK, e, err)
}

func (h *Handler) rollover(w http.ResponseWriter, r *http.Request) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	result, err := h.service.Rollover(r.Context(), principal.UserID, tenant)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, e Employee, err error) {
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, status, e)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	return tenant, id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	return true
}
