package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshtrack/freshtrack/internal/ledger"
	"github.com/freshtrack/freshtrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
		r.Get("/meta", h.handleMeta)
		r.Get("/stats", h.handleStats)
		r.Get("/expiring", h.handleExpiring)
		r.Get("/low-stock", h.handleLowStock)
		r.Get("/category/{category}", h.handleByCategory)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/adjust", h.handleAdjust)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.All())
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product := h.service.Add(r.Context(), input)
	h.logger.Info("product added", slog.String("id", product.ID), slog.String("name", product.Name))
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	product := h.service.ByID(chi.URLParam(r, "id"))
	if product == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch ProductPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if product == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.service.Delete(r.Context(), chi.URLParam(r, "id")) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Quantity int    `json:"quantity" validate:"min=0"`
	Type     string `json:"type" validate:"required,oneof=addition reduction"`
	Notes    string `json:"notes"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	change := h.service.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Quantity, ledger.MovementType(req.Type), req.Notes)
	if change == nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, change)
}

func (h *Handler) handleExpiring(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ExpiringSoon())
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.LowStock())
}

func (h *Handler) handleByCategory(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ByCategory(chi.URLParam(r, "category")))
}

type statsResponse struct {
	TotalValue           float64        `json:"totalValue"`
	TotalUnits           int            `json:"totalUnits"`
	CategoryDistribution map[string]int `json:"categoryDistribution"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, statsResponse{
		TotalValue:           h.service.TotalValue(),
		TotalUnits:           h.service.TotalUnits(),
		CategoryDistribution: h.service.CategoryDistribution(),
	})
}

type metaResponse struct {
	Categories []string `json:"categories"`
	Suppliers  []string `json:"suppliers"`
	Locations  []string `json:"locations"`
}

func (h *Handler) handleMeta(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, metaResponse{
		Categories: h.service.Categories(),
		Suppliers:  DefaultSuppliers,
		Locations:  DefaultLocations,
	})
}
