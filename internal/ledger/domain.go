package ledger

import "time"

// MovementType enumerates the recorded stock movement kinds.
type MovementType string

const (
	// MovementInitial records the opening stock of a new product.
	MovementInitial MovementType = "initial"
	// MovementAddition records stock coming in.
	MovementAddition MovementType = "addition"
	// MovementReduction records stock going out.
	MovementReduction MovementType = "reduction"
	// MovementAdjustment records a free-form correction.
	MovementAdjustment MovementType = "adjustment"
)

// MovementTypes lists every type in a stable order, used when an
// aggregate must cover all of them.
func MovementTypes() []MovementType {
	return []MovementType{MovementInitial, MovementAddition, MovementReduction, MovementAdjustment}
}

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInitial, MovementAddition, MovementReduction, MovementAdjustment:
		return true
	}
	return false
}

// Movement is one immutable ledger entry. ProductName is a snapshot
// taken at write time; the entry outlives the product it references.
type Movement struct {
	ID            string       `json:"id"`
	ProductID     string       `json:"productId"`
	ProductName   string       `json:"productName"`
	Type          MovementType `json:"type"`
	Quantity      int          `json:"quantity"`
	PreviousStock int          `json:"previousStock"`
	NewStock      int          `json:"newStock"`
	Date          time.Time    `json:"date"`
	Notes         string       `json:"notes"`
}

// AppendInput carries the fields of a movement to be recorded. The ID is
// assigned by the service.
type AppendInput struct {
	ProductID     string       `json:"productId" validate:"required"`
	ProductName   string       `json:"productName"`
	Type          MovementType `json:"type" validate:"required,oneof=initial addition reduction adjustment"`
	Quantity      int          `json:"quantity" validate:"min=0"`
	PreviousStock int          `json:"previousStock" validate:"min=0"`
	NewStock      int          `json:"newStock" validate:"min=0"`
	Date          time.Time    `json:"date"`
	Notes         string       `json:"notes"`
}
