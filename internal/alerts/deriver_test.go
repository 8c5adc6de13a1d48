package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshtrack/freshtrack/internal/catalog"
)

// stubCatalog serves fixed product lists.
type stubCatalog struct {
	expiring []catalog.Product
	lowStock []catalog.Product
}

func (s *stubCatalog) ExpiringSoon() []catalog.Product { return s.expiring }
func (s *stubCatalog) LowStock() []catalog.Product     { return s.lowStock }

// manualScheduler collects deferred actions so tests can fire them in
// any order.
type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) schedule(_ time.Duration, fn func()) {
	m.pending = append(m.pending, fn)
}

func newTestDeriver(cat *stubCatalog) (*Deriver, *manualScheduler) {
	d := NewDeriver(cat)
	sched := &manualScheduler{}
	d.WithScheduler(sched.schedule)
	return d, sched
}

func product(id, name string, stock, minStock int, expiry time.Time) catalog.Product {
	return catalog.Product{ID: id, Name: name, Stock: stock, MinStock: minStock, ExpiryDate: expiry}
}

func TestCheckExpirationRaisesWarning(t *testing.T) {
	expiry := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	cat := &stubCatalog{expiring: []catalog.Product{
		product("p1", "Milk", 10, 5, expiry),
		product("p2", "Yogurt", 8, 3, expiry),
	}}
	d, _ := newTestDeriver(cat)

	notices := d.CheckExpiration()
	require.Len(t, notices, 2)
	require.Equal(t, ExpiryNotice{ID: "p1", Name: "Milk", ExpiryDate: expiry}, notices[0])

	current := d.Current()
	require.NotNil(t, current)
	require.Equal(t, SeverityWarning, current.Type)
	require.Equal(t, "2 products are expiring soon", current.Message)
	require.Equal(t, "showExpirationAlerts", current.Action)
	require.Equal(t, "View", current.ActionText)
}

func TestCheckLowStockRaisesError(t *testing.T) {
	cat := &stubCatalog{lowStock: []catalog.Product{
		product("p1", "Milk", 2, 5, time.Time{}),
	}}
	d, _ := newTestDeriver(cat)

	notices := d.CheckLowStock()
	require.Len(t, notices, 1)
	require.Equal(t, StockNotice{ID: "p1", Name: "Milk", Stock: 2, MinStock: 5}, notices[0])

	current := d.Current()
	require.NotNil(t, current)
	require.Equal(t, SeverityError, current.Type)
	require.Equal(t, "1 products are low on stock", current.Message)
}

func TestCheckWithNothingToReportRaisesNoAlert(t *testing.T) {
	d, sched := newTestDeriver(&stubCatalog{})

	require.Empty(t, d.CheckExpiration())
	require.Empty(t, d.CheckLowStock())
	require.Nil(t, d.Current())
	require.Empty(t, sched.pending)
}

func TestStalenessGuard(t *testing.T) {
	d, sched := newTestDeriver(&stubCatalog{})

	d.Set(Alert{Message: "A", Type: SeverityInfo})
	d.Set(Alert{Message: "B", Type: SeverityInfo})
	require.Len(t, sched.pending, 2)

	// A's timer fires after B superseded it; B must survive.
	sched.pending[0]()
	current := d.Current()
	require.NotNil(t, current)
	require.Equal(t, "B", current.Message)

	// B's own timer clears it.
	sched.pending[1]()
	require.Nil(t, d.Current())
}

func TestAutoClear(t *testing.T) {
	d, sched := newTestDeriver(&stubCatalog{})

	d.Set(Alert{Message: "gone soon", Type: SeveritySuccess})
	require.NotNil(t, d.Current())

	sched.pending[0]()
	require.Nil(t, d.Current())
}

func TestClearDropsCurrentImmediately(t *testing.T) {
	d, _ := newTestDeriver(&stubCatalog{})

	d.Set(Alert{Message: "x", Type: SeverityInfo})
	d.Clear()
	require.Nil(t, d.Current())
}

func TestChecksRecomputeSnapshots(t *testing.T) {
	cat := &stubCatalog{lowStock: []catalog.Product{product("p1", "Milk", 1, 5, time.Time{})}}
	d, _ := newTestDeriver(cat)

	require.Len(t, d.CheckLowStock(), 1)
	require.Len(t, d.LowStockNotices(), 1)

	cat.lowStock = nil
	require.Empty(t, d.CheckLowStock())
	require.Empty(t, d.LowStockNotices())
}

func TestCurrentReturnsCopy(t *testing.T) {
	d, _ := newTestDeriver(&stubCatalog{})

	d.Set(Alert{Message: "original", Type: SeverityInfo})
	alert := d.Current()
	alert.Message = "mutated"

	current := d.Current()
	require.Equal(t, "original", current.Message)
}
