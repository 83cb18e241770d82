package report

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

const pingTimeout = 3 * time.Second

// Handler reports whether receipts and summaries can be rendered to PDF.
type Handler struct {
	client *Client
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger, now: time.Now}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
}

type pingResponse struct {
	Status    string `json:"status"`
	Renderer  string `json:"renderer"`
	LatencyMS int64  `json:"latency_ms"`
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if h.client == nil || h.client.baseURL == "" {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf renderer not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	started := h.now()
	if err := h.client.Ping(ctx); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.String("url", h.client.baseURL), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf renderer unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, pingResponse{
		Status:    "ok",
		Renderer:  "gotenberg",
		LatencyMS: h.now().Sub(started).Milliseconds(),
	})
}
