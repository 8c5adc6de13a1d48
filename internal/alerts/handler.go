package alerts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshtrack/freshtrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for derived alerts.
type Handler struct {
	logger  *slog.Logger
	deriver *Deriver
}

// NewHandler constructs the alerts handler.
func NewHandler(logger *slog.Logger, deriver *Deriver) *Handler {
	return &Handler{logger: logger, deriver: deriver}
}

// MountRoutes registers alert routes. Checks are POSTs because they
// recompute the notice lists and may raise the current alert.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Post("/check-expiration", h.handleCheckExpiration)
		r.Post("/check-low-stock", h.handleCheckLowStock)
		r.Get("/expiration", h.handleExpirationNotices)
		r.Get("/low-stock", h.handleLowStockNotices)
		r.Get("/current", h.handleCurrent)
		r.Delete("/current", h.handleClear)
	})
}

func (h *Handler) handleCheckExpiration(w http.ResponseWriter, r *http.Request) {
	notices := h.deriver.CheckExpiration()
	if len(notices) > 0 {
		h.logger.Info("expiration alert raised", slog.Int("count", len(notices)))
	}
	httpx.JSON(w, http.StatusOK, notices)
}

func (h *Handler) handleCheckLowStock(w http.ResponseWriter, r *http.Request) {
	notices := h.deriver.CheckLowStock()
	if len(notices) > 0 {
		h.logger.Info("low stock alert raised", slog.Int("count", len(notices)))
	}
	httpx.JSON(w, http.StatusOK, notices)
}

func (h *Handler) handleExpirationNotices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.deriver.ExpirationNotices())
}

func (h *Handler) handleLowStockNotices(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.deriver.LowStockNotices())
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	alert := h.deriver.Current()
	if alert == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, alert)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.deriver.Clear()
	w.WriteHeader(http.StatusNoContent)
}
