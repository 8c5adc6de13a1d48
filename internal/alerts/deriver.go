// Package alerts derives transient notifications from current catalog
// state. The deriver owns no persistent data; both notice lists are a
// full recomputation on every check.
package alerts

import (
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/freshtrack/freshtrack/internal/catalog"
)

// Severity tags an alert for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is the singleton current notification.
type Alert struct {
	Message    string   `json:"message"`
	Type       Severity `json:"type"`
	Action     string   `json:"action,omitempty"`
	ActionText string   `json:"actionText,omitempty"`
}

// ExpiryNotice is the light projection of a product expiring soon.
type ExpiryNotice struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ExpiryDate time.Time `json:"expiryDate"`
}

// StockNotice is the light projection of a product at or below its
// minimum stock.
type StockNotice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"minStock"`
}

// CatalogPort is the read capability the deriver needs from the catalog.
type CatalogPort interface {
	ExpiringSoon() []catalog.Product
	LowStock() []catalog.Product
}

// DefaultTTL is how long the current alert stays up before auto-clear.
const DefaultTTL = 5 * time.Second

// Deriver computes the expiring and low-stock notice lists and maintains
// the auto-clearing current alert.
type Deriver struct {
	mu         sync.Mutex
	catalog    CatalogPort
	ttl        time.Duration
	current    *Alert
	generation uint64
	expiring   []ExpiryNotice
	lowStock   []StockNotice
	printer    *message.Printer
	schedule   func(time.Duration, func())
}

// NewDeriver builds a Deriver over the given catalog port.
func NewDeriver(cat CatalogPort) *Deriver {
	return &Deriver{
		catalog:  cat,
		ttl:      DefaultTTL,
		printer:  message.NewPrinter(language.English),
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// WithTTL overrides the auto-clear delay.
func (d *Deriver) WithTTL(ttl time.Duration) {
	if ttl > 0 {
		d.ttl = ttl
	}
}

// WithScheduler overrides deferred execution for testing.
func (d *Deriver) WithScheduler(fn func(time.Duration, func())) {
	if fn != nil {
		d.schedule = fn
	}
}

// Set makes alert the current one and schedules its auto-clear. Each set
// bumps a generation counter; an expiry fire only clears the alert it
// was scheduled for, so a newer alert is never clobbered by a stale
// timer.
func (d *Deriver) Set(alert Alert) {
	d.mu.Lock()
	d.current = &alert
	d.generation++
	generation := d.generation
	ttl := d.ttl
	d.mu.Unlock()

	d.schedule(ttl, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.generation == generation {
			d.current = nil
		}
	})
}

// Clear drops the current alert immediately.
func (d *Deriver) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
}

// Current returns a copy of the current alert, or nil when none is up.
func (d *Deriver) Current() *Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil
	}
	alert := *d.current
	return &alert
}

// CheckExpiration recomputes the expiring-soon notices and raises a
// warning alert when any exist.
func (d *Deriver) CheckExpiration() []ExpiryNotice {
	products := d.catalog.ExpiringSoon()

	notices := make([]ExpiryNotice, 0, len(products))
	for _, p := range products {
		notices = append(notices, ExpiryNotice{ID: p.ID, Name: p.Name, ExpiryDate: p.ExpiryDate})
	}

	d.mu.Lock()
	d.expiring = notices
	d.mu.Unlock()

	if len(notices) > 0 {
		d.Set(Alert{
			Message:    d.printer.Sprintf("%d products are expiring soon", len(notices)),
			Type:       SeverityWarning,
			Action:     "showExpirationAlerts",
			ActionText: "View",
		})
	}
	return notices
}

// CheckLowStock recomputes the low-stock notices and raises an error
// alert when any exist.
func (d *Deriver) CheckLowStock() []StockNotice {
	products := d.catalog.LowStock()

	notices := make([]StockNotice, 0, len(products))
	for _, p := range products {
		notices = append(notices, StockNotice{ID: p.ID, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock})
	}

	d.mu.Lock()
	d.lowStock = notices
	d.mu.Unlock()

	if len(notices) > 0 {
		d.Set(Alert{
			Message:    d.printer.Sprintf("%d products are low on stock", len(notices)),
			Type:       SeverityError,
			Action:     "showLowStockAlerts",
			ActionText: "View",
		})
	}
	return notices
}

// ExpirationNotices returns the last computed expiring-soon list.
func (d *Deriver) ExpirationNotices() []ExpiryNotice {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ExpiryNotice, len(d.expiring))
	copy(out, d.expiring)
	return out
}

// LowStockNotices returns the last computed low-stock list.
func (d *Deriver) LowStockNotices() []StockNotice {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]StockNotice, len(d.lowStock))
	copy(out, d.lowStock)
	return out
}
