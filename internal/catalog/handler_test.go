package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/freshtrack/freshtrack/internal/ledger"
	"github.com/freshtrack/freshtrack/internal/platform/storage"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	store := storage.NewMemory()
	movements := ledger.NewService(testLogger(), store)
	svc := NewService(testLogger(), store, movements)
	r := chi.NewRouter()
	NewHandler(testLogger(), svc).MountRoutes(r)
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAddAndGet(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/products", sampleInput())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, r, http.MethodGet, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fetched))
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "Whole Milk", fetched.Name)
}

func TestHandlerAddRejectsInvalidInput(t *testing.T) {
	r, _ := newTestRouter(t)

	input := sampleInput()
	input.Name = ""
	rec := doJSON(t, r, http.MethodPost, "/products", input)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAdjustClamps(t *testing.T) {
	r, svc := newTestRouter(t)

	input := sampleInput()
	input.Stock = 4
	product := svc.Add(t.Context(), input)

	rec := doJSON(t, r, http.MethodPost, "/products/"+product.ID+"/adjust", map[string]any{
		"quantity": 20,
		"type":     "reduction",
		"notes":    "spoilage",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var change StockChange
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&change))
	require.Equal(t, 4, change.PreviousStock)
	require.Equal(t, 0, change.NewStock)
}

func TestHandlerAdjustRejectsUnknownType(t *testing.T) {
	r, svc := newTestRouter(t)
	product := svc.Add(t.Context(), sampleInput())

	rec := doJSON(t, r, http.MethodPost, "/products/"+product.ID+"/adjust", map[string]any{
		"quantity": 1,
		"type":     "teleport",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdateNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/products/unknown", map[string]any{"name": "x"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	r, svc := newTestRouter(t)
	product := svc.Add(t.Context(), sampleInput())

	rec := doJSON(t, r, http.MethodDelete, "/products/"+product.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/products/"+product.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerStats(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.Add(t.Context(), sampleInput())

	rec := doJSON(t, r, http.MethodGet, "/products/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 10, stats.TotalUnits)
	require.InDelta(t, 8.9, stats.TotalValue, 0.0001)
	require.Equal(t, 1, stats.CategoryDistribution["Dairy"])
}

func TestHandlerMeta(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/products/meta", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var meta metaResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&meta))
	require.Equal(t, DefaultCategories, meta.Categories)
	require.Equal(t, DefaultSuppliers, meta.Suppliers)
	require.Equal(t, DefaultLocations, meta.Locations)
}
