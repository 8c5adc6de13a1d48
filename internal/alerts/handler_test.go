package alerts

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/freshtrack/freshtrack/internal/catalog"
)

func newHandlerRouter(cat *stubCatalog) (chi.Router, *Deriver) {
	d := NewDeriver(cat)
	d.WithScheduler(func(time.Duration, func()) {})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, d).MountRoutes(r)
	return r, d
}

func TestHandlerCurrentLifecycle(t *testing.T) {
	cat := &stubCatalog{lowStock: []catalog.Product{
		product("p1", "Milk", 1, 5, time.Time{}),
	}}
	r, _ := newHandlerRouter(cat)

	req := httptest.NewRequest(http.MethodGet, "/alerts/current", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/alerts/check-low-stock", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var notices []StockNotice
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notices))
	require.Len(t, notices, 1)

	req = httptest.NewRequest(http.MethodGet, "/alerts/current", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var alert Alert
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&alert))
	require.Equal(t, SeverityError, alert.Type)

	req = httptest.NewRequest(http.MethodDelete, "/alerts/current", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/alerts/current", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
