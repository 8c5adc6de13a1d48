package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshtrack/freshtrack/internal/ledger"
	"github.com/freshtrack/freshtrack/internal/platform/storage"
)

// SnapshotKey is the storage namespace for the product collection.
const SnapshotKey = "food-inventory-products"

// LedgerPort is the appending capability the catalog needs from the
// movement ledger.
type LedgerPort interface {
	Append(ctx context.Context, input ledger.AppendInput) ledger.Movement
}

// Service owns the product collection. Stock-affecting mutations cascade
// one movement each into the injected ledger; queries never mutate.
type Service struct {
	mu         sync.Mutex
	logger     *slog.Logger
	store      storage.Store
	movements  LedgerPort
	products   []Product
	categories []string
	now        func() time.Time
	newID      func() string
}

// NewService builds Service with its snapshot store and ledger port.
func NewService(logger *slog.Logger, store storage.Store, movements LedgerPort) *Service {
	return &Service{
		logger:     logger,
		store:      store,
		movements:  movements,
		categories: DefaultCategories,
		now:        time.Now,
		newID:      uuid.NewString,
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

// Categories returns the known category set.
func (s *Service) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Load replaces the in-memory collection with the persisted snapshot.
// Missing and malformed snapshots both leave the collection empty.
func (s *Service) Load(ctx context.Context) error {
	blob, ok, err := s.store.Read(ctx, SnapshotKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var products []Product
	if err := json.Unmarshal(blob, &products); err != nil {
		s.logger.Warn("discarding malformed products snapshot", slog.Any("error", err))
		return nil
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}

// Add creates a product and records its opening stock as an "initial"
// movement.
func (s *Service) Add(ctx context.Context, input ProductInput) Product {
	s.mu.Lock()
	now := s.now()
	product := Product{
		ID:            s.newID(),
		Name:          input.Name,
		Barcode:       input.Barcode,
		Category:      input.Category,
		ExpiryDate:    input.ExpiryDate,
		Stock:         input.Stock,
		MinStock:      input.MinStock,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
		Supplier:      input.Supplier,
		Location:      input.Location,
		ImageURL:      input.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.products = append(s.products, product)
	s.persist(ctx)
	s.mu.Unlock()

	s.movements.Append(ctx, ledger.AppendInput{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          ledger.MovementInitial,
		Quantity:      product.Stock,
		PreviousStock: 0,
		NewStock:      product.Stock,
		Date:          now,
		Notes:         "Initial stock",
	})
	return product
}

// Update merges patch over the product with the given id and returns the
// result, or nil when no such product exists. A stock change emits one
// addition or reduction movement for the difference.
func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) *Product {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	previous := s.products[idx]
	now := s.now()
	updated := applyPatch(previous, patch)
	updated.UpdatedAt = now
	s.products[idx] = updated
	s.persist(ctx)
	s.mu.Unlock()

	if patch.Stock != nil && *patch.Stock != previous.Stock {
		diff := *patch.Stock - previous.Stock
		movementType := ledger.MovementAddition
		if diff < 0 {
			movementType = ledger.MovementReduction
			diff = -diff
		}
		s.movements.Append(ctx, ledger.AppendInput{
			ProductID:     id,
			ProductName:   updated.Name,
			Type:          movementType,
			Quantity:      diff,
			PreviousStock: previous.Stock,
			NewStock:      *patch.Stock,
			Date:          now,
			Notes:         "Stock update",
		})
	}
	return &updated
}

// Delete removes the product with the given id. Ledger entries that
// reference it are retained on purpose.
func (s *Service) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	s.persist(ctx)
	return true
}

// AdjustStock applies a manual stock movement. Additions add quantity;
// reductions subtract and clamp at zero. Exactly one movement is
// recorded, carrying the caller's type and notes with the true
// previous/new stock. Returns nil when the product does not exist.
func (s *Service) AdjustStock(ctx context.Context, id string, quantity int, movementType ledger.MovementType, notes string) *StockChange {
	if quantity < 0 {
		quantity = 0
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	product := s.products[idx]
	previousStock := product.Stock
	newStock := previousStock
	switch movementType {
	case ledger.MovementAddition:
		newStock += quantity
	default:
		newStock -= quantity
		if newStock < 0 {
			newStock = 0
		}
	}

	now := s.now()
	product.Stock = newStock
	product.UpdatedAt = now
	s.products[idx] = product
	s.persist(ctx)
	s.mu.Unlock()

	s.movements.Append(ctx, ledger.AppendInput{
		ProductID:     id,
		ProductName:   product.Name,
		Type:          movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Date:          now,
		Notes:         notes,
	})
	return &StockChange{PreviousStock: previousStock, NewStock: newStock}
}

// ByID returns the product with the given id, or nil.
func (s *Service) ByID(id string) *Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	product := s.products[idx]
	return &product
}

// All returns the full collection in insertion order.
func (s *Service) All() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// ExpiringSoon returns products whose expiry date lies strictly after
// now and within the 30-day window, inclusive.
func (s *Service) ExpiringSoon() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(ExpiryWindow)
	var out []Product
	for _, p := range s.products {
		if p.ExpiryDate.After(now) && !p.ExpiryDate.After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// LowStock returns products at or below their minimum stock threshold.
func (s *Service) LowStock() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Product
	for _, p := range s.products {
		if p.Stock <= p.MinStock {
			out = append(out, p)
		}
	}
	return out
}

// ByCategory returns products in the given category.
func (s *Service) ByCategory(category string) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// TotalValue sums purchase price times stock across the collection.
func (s *Service) TotalValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, p := range s.products {
		total += p.PurchasePrice * float64(p.Stock)
	}
	return total
}

// TotalUnits sums stock across the collection.
func (s *Service) TotalUnits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, p := range s.products {
		total += p.Stock
	}
	return total
}

// CategoryDistribution counts products per known category. Categories
// with no products are present with a zero count.
func (s *Service) CategoryDistribution() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	distribution := make(map[string]int, len(s.categories))
	for _, c := range s.categories {
		distribution[c] = 0
	}
	for _, p := range s.products {
		if _, known := distribution[p.Category]; known {
			distribution[p.Category]++
		}
	}
	return distribution
}

// indexOf returns the product's position or -1. Callers must hold s.mu.
func (s *Service) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(p Product, patch ProductPatch) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Barcode != nil {
		p.Barcode = *patch.Barcode
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.ExpiryDate != nil {
		p.ExpiryDate = *patch.ExpiryDate
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.MinStock != nil {
		p.MinStock = *patch.MinStock
	}
	if patch.PurchasePrice != nil {
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.Supplier != nil {
		p.Supplier = *patch.Supplier
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	return p
}

// persist writes the full collection snapshot, logging and swallowing
// failures. Callers must hold s.mu.
func (s *Service) persist(ctx context.Context) {
	blob, err := json.Marshal(s.products)
	if err != nil {
		s.logger.Warn("encode products snapshot", slog.Any("error", err))
		return
	}
	if err := s.store.Write(ctx, SnapshotKey, blob); err != nil {
		s.logger.Warn("persist products snapshot", slog.Any("error", err))
	}
}
