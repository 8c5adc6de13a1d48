package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshtrack/freshtrack/internal/platform/storage"
)

// SnapshotKey is the storage namespace for the movement collection.
const SnapshotKey = "food-inventory-movements"

// Service owns the append-only movement history. Appends never validate
// referential integrity against the catalog; a movement whose product is
// later deleted stays in the ledger as historical fact.
type Service struct {
	mu        sync.Mutex
	logger    *slog.Logger
	store     storage.Store
	movements []Movement
	now       func() time.Time
	newID     func() string
}

// NewService builds Service on top of the given snapshot store.
func NewService(logger *slog.Logger, store storage.Store) *Service {
	return &Service{
		logger: logger,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithIDFunc overrides id generation for testing.
func (s *Service) WithIDFunc(fn func() string) {
	if fn != nil {
		s.newID = fn
	}
}

// Load replaces the in-memory collection with the persisted snapshot. A
// missing snapshot leaves the collection empty; a malformed one is
// treated as missing so a bad disk state never blocks startup.
func (s *Service) Load(ctx context.Context) error {
	blob, ok, err := s.store.Read(ctx, SnapshotKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var movements []Movement
	if err := json.Unmarshal(blob, &movements); err != nil {
		s.logger.Warn("discarding malformed movements snapshot", slog.Any("error", err))
		return nil
	}
	s.mu.Lock()
	s.movements = movements
	s.mu.Unlock()
	return nil
}

// Append records a movement, assigns its id and persists the collection.
// It always succeeds.
func (s *Service) Append(ctx context.Context, input AppendInput) Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	movement := Movement{
		ID:            s.newID(),
		ProductID:     input.ProductID,
		ProductName:   input.ProductName,
		Type:          input.Type,
		Quantity:      input.Quantity,
		PreviousStock: input.PreviousStock,
		NewStock:      input.NewStock,
		Date:          date,
		Notes:         input.Notes,
	}
	s.movements = append(s.movements, movement)
	s.persist(ctx)
	return movement
}

// Delete removes the movement with the given id. It reports whether a
// movement was removed.
func (s *Service) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.movements {
		if m.ID == id {
			s.movements = append(s.movements[:i], s.movements[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// ByProduct returns movements referencing productID in insertion order,
// including entries for products no longer in the catalog.
func (s *Service) ByProduct(productID string) []Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Movement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Recent returns up to limit movements sorted descending by date. Ties
// keep insertion order. A non-positive limit defaults to 10.
func (s *Service) Recent(limit int) []Movement {
	if limit <= 0 {
		limit = 10
	}
	s.mu.Lock()
	out := make([]Movement, len(s.movements))
	copy(out, s.movements)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByDateRange returns movements whose date falls within [from, to].
func (s *Service) ByDateRange(from, to time.Time) []Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Movement
	for _, m := range s.movements {
		if m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ByType returns movements of the given type in insertion order.
func (s *Service) ByType(t MovementType) []Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Movement
	for _, m := range s.movements {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// TotalsByType sums quantities per movement type. Every type is present
// in the result, defaulting to zero.
func (s *Service) TotalsByType() map[MovementType]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[MovementType]int, 4)
	for _, t := range MovementTypes() {
		totals[t] = 0
	}
	for _, m := range s.movements {
		totals[m.Type] += m.Quantity
	}
	return totals
}

// persist writes the full collection snapshot. Failures are logged and
// swallowed; in-memory state stays authoritative for the session.
// Callers must hold s.mu.
func (s *Service) persist(ctx context.Context) {
	blob, err := json.Marshal(s.movements)
	if err != nil {
		s.logger.Warn("encode movements snapshot", slog.Any("error", err))
		return
	}
	if err := s.store.Write(ctx, SnapshotKey, blob); err != nil {
		s.logger.Warn("persist movements snapshot", slog.Any("error", err))
	}
}
