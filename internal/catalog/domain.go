package catalog

import "time"

// Product is one catalog entry for a perishable good.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode"`
	Category      string    `json:"category"`
	ExpiryDate    time.Time `json:"expiryDate"`
	Stock         int       `json:"stock"`
	MinStock      int       `json:"minStock"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellingPrice  float64   `json:"sellingPrice"`
	Supplier      string    `json:"supplier"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"imageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProductInput carries the caller-supplied fields of a new product.
// ID and timestamps are assigned by the service.
type ProductInput struct {
	Name          string    `json:"name" validate:"required"`
	Barcode       string    `json:"barcode"`
	Category      string    `json:"category" validate:"required"`
	ExpiryDate    time.Time `json:"expiryDate"`
	Stock         int       `json:"stock" validate:"min=0"`
	MinStock      int       `json:"minStock" validate:"min=0"`
	PurchasePrice float64   `json:"purchasePrice" validate:"min=0"`
	SellingPrice  float64   `json:"sellingPrice" validate:"min=0"`
	Supplier      string    `json:"supplier"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"imageUrl"`
}

// ProductPatch is a partial update. Nil fields are left untouched; ID and
// timestamps cannot be patched.
type ProductPatch struct {
	Name          *string    `json:"name"`
	Barcode       *string    `json:"barcode"`
	Category      *string    `json:"category"`
	ExpiryDate    *time.Time `json:"expiryDate"`
	Stock         *int       `json:"stock" validate:"omitempty,min=0"`
	MinStock      *int       `json:"minStock" validate:"omitempty,min=0"`
	PurchasePrice *float64   `json:"purchasePrice" validate:"omitempty,min=0"`
	SellingPrice  *float64   `json:"sellingPrice" validate:"omitempty,min=0"`
	Supplier      *string    `json:"supplier"`
	Location      *string    `json:"location"`
	ImageURL      *string    `json:"imageUrl"`
}

// StockChange reports the outcome of a stock adjustment.
type StockChange struct {
	PreviousStock int `json:"previousStock"`
	NewStock      int `json:"newStock"`
}

// DefaultCategories is the known category set. Distribution aggregates
// report every entry, zero-counted when empty.
var DefaultCategories = []string{
	"Dairy", "Meat", "Produce", "Bakery", "Beverages",
	"Frozen", "Canned", "Dry Goods", "Snacks", "Other",
}

// DefaultSuppliers seeds the supplier picklist.
var DefaultSuppliers = []string{
	"Farm Fresh", "Global Foods", "Organic Valley",
	"Metro Distributors", "Quality Foods", "Local Farms",
}

// DefaultLocations seeds the storage location picklist.
var DefaultLocations = []string{
	"Shelf A1", "Shelf A2", "Shelf B1", "Shelf B2",
	"Freezer 1", "Freezer 2", "Cold Storage", "Dry Storage",
}

// ExpiryWindow is how far ahead a product counts as expiring soon.
const ExpiryWindow = 30 * 24 * time.Hour
