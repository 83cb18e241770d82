package cart

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// IdempotencyHeader lets clients retry checkout safely.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes the till over HTTP.
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

// MountRoutes registers cart routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPOSSell))
		r.Get("/", h.show)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Patch("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.removeItem)
		r.Put("/options", h.setOptions)
		r.Post("/checkout", h.checkout)
	})
}

// View is the cart with its computed totals.
type View struct {
	*Cart
	Totals Totals `json:"totals"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0,lte=9999"`
}

type updateItemRequest struct {
	Delta int `json:"delta" validate:"required,min=-9999,max=9999"`
}

type checkoutRequest struct {
	Tendered decimal.Decimal `json:"tendered"`
}

type checkoutResponse struct {
	Order     orders.Order    `json:"order"`
	ChangeDue decimal.Decimal `json:"change_due"`
}

type scope struct {
	sessionID string
	tenant    int64
	cashier   int64
}

func (h *Handler) scope(r *http.Request) (scope, error) {
	tenant, err := shared.TenantFromContext(r.Context())
	if err != nil {
		return scope{}, err
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	sc := scope{tenant: tenant, cashier: principal.UserID}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sc.sessionID = sess.ID
	}
	return sc, nil
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), sc.sessionID, sc.tenant)
	h.respondCart(w, r, c, err)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Clear(r.Context(), sc.sessionID); err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.AddItem(r.Context(), sc.sessionID, sc.tenant, req.ProductID, req.Quantity)
	h.respondCart(w, r, c, err)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.UpdateQuantity(r.Context(), sc.sessionID, sc.tenant, id, req.Delta)
	h.respondCart(w, r, c, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.RemoveItem(r.Context(), sc.sessionID, sc.tenant, id)
	h.respondCart(w, r, c, err)
}

func (h *Handler) setOptions(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req Options
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.SetOptions(r.Context(), sc.sessionID, sc.tenant, req)
	h.respondCart(w, r, c, err)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sc, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	order, err := h.service.Checkout(r.Context(), CheckoutRequest{
		SessionID:      sc.sessionID,
		CommerceID:     sc.tenant,
		CashierID:      sc.cashier,
		Tendered:       req.Tendered,
		IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
	})
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	if h.logger != nil {
		h.logger.Info("checkout completed",
			slog.Int64("order_id", order.ID),
			slog.Int64("commerce_id", order.CommerceID),
			slog.String("total", order.Total.StringFixed(2)))
	}
	httpx.JSON(w, http.StatusCreated, checkoutResponse{Order: order, ChangeDue: order.ChangeDue})
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *Cart, err error) {
	if err != nil {
		httpx.Fail(h.logger, w, r, err)
		return
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	httpx.JSON(w, http.StatusOK, View{Cart: c, Totals: c.Totals()})
}
