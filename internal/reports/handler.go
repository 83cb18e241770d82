package reports

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Handler exposes dashboard and report exports.
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

// EmailRequest asks for the summary to be emailed.
type EmailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermReportsView))
		r.Get("/dashboard", h.dashboard)
		r.Get("/summary.html", h.summaryHTML)
		r.Get("/summary.csv", h.summaryCSV)
		r.Get("/summary.pdf", h.summaryPDF)
		r.Get("/mailto", h.mailto)
		r.Post("/email", h.email)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPOSSell, rbac.PermOrdersView))
		r.Get("/receipts/{id}/html", h.receiptHTML)
		r.Get("/receipts/{id}/pdf", h.receiptPDF)
	})
}

func (h *Handler) filter(r *http.Request) (Filter, error) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		return Filter{}, err
	}
	from, to, err := httpx.DateRange(r)
	if err != nil {
		return Filter{}, err
	}
	return Filter{CommerceID: tenant, From: from, To: to}, nil
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) summaryHTML(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := h.service.RenderHTML(r.Context(), filter)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

func (h *Handler) summaryCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := h.service.WriteCSV(r.Context(), &buf, filter); err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=summary.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) summaryPDF(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.service.PDF(r.Context(), filter)
	if err != nil {
		if httpx.StatusOf(err) != http.StatusInternalServerError {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("render summary pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "pdf rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=summary.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) mailto(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	recipient := r.URL.Query().Get("recipient")
	if recipient != "" {
		if err := h.validator.Var(recipient, "email"); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid recipient")
			return
		}
	}
	link, err := h.service.Mailto(r.Context(), filter, recipient)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"href": link})
}

func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req EmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := h.service.Email(r.Context(), DeliveryRequest{
		CommerceID:  filter.CommerceID,
		From:        filter.From,
		To:          filter.To,
		Recipient:   req.Recipient,
		RequestedBy: principal.UserID,
	})
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (h *Handler) receiptTarget(r *http.Request) (int64, int64, error) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		return 0, 0, err
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return tenant, id, nil
}

func (h *Handler) receiptHTML(w http.ResponseWriter, r *http.Request) {
	tenant, id, err := h.receiptTarget(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := h.service.ReceiptHTML(r.Context(), tenant, id)
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

func (h *Handler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	tenant, id, err := h.receiptTarget(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.service.ReceiptPDF(r.Context(), tenant, id)
	if err != nil {
		if httpx.StatusOf(err) != http.StatusInternalServerError {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("render receipt pdf", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "pdf rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=receipt-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
