package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshtrack/freshtrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the movement ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/movements", func(r chi.Router) {
		r.Post("/", h.handleAppend)
		r.Get("/recent", h.handleRecent)
		r.Get("/range", h.handleRange)
		r.Get("/totals", h.handleTotals)
		r.Get("/product/{productID}", h.handleByProduct)
		r.Get("/type/{type}", h.handleByType)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	var input AppendInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement := h.service.Append(r.Context(), input)
	h.logger.Info("movement recorded",
		slog.String("id", movement.ID),
		slog.String("product_id", movement.ProductID),
		slog.String("type", string(movement.Type)))
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.service.Delete(r.Context(), chi.URLParam(r, "id")) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be an integer")
			return
		}
		limit = parsed
	}
	httpx.JSON(w, http.StatusOK, h.service.Recent(limit))
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be RFC3339")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.ByDateRange(from, to))
}

func (h *Handler) handleByProduct(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ByProduct(chi.URLParam(r, "productID")))
}

func (h *Handler) handleByType(w http.ResponseWriter, r *http.Request) {
	movementType := MovementType(chi.URLParam(r, "type"))
	if !movementType.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown movement type")
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.ByType(movementType))
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.TotalsByType())
}
