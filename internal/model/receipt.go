// Package model defines the core domain types for receipt capture.
package model

// Bounds and defaults applied during validation and parsing.
const (
	// DefaultMerchant is used when the extraction produced no merchant name.
	DefaultMerchant = "Unknown Shop"
	// DefaultCategory is used for receipts and positions without a category.
	DefaultCategory = "other"
	// MaxTotalAmount is the upper bound for a receipt total.
	MaxTotalAmount = 1_000_000
	// MaxPositionPrice is the upper bound for a single line item price.
	MaxPositionPrice = 100_000
	// MaxPositions caps how many line items a receipt may carry.
	MaxPositions = 50
	// MaxUserID bounds owner identifiers well below int64 overflow territory.
	MaxUserID = int64(1) << 52
)

// DateLayout is the day-month-year textual format receipts carry.
// Dates that do not parse with it are dropped, never rejected.
const DateLayout = "02 Jan 2006"

// Receipt represents a single purchase (or income) record, both as a
// not-yet-persisted candidate and as the canonical committed form.
type Receipt struct {
	ID                  int64 // assigned on commit; zero for candidates
	Merchant            string
	Category            string
	Date                string // DateLayout, or empty for "no date"
	Description         string
	Positions           []Position // insertion order = item order on the receipt
	ReferenceReceiptIDs []int64    // related persisted receipts, e.g. a refund's original
	TotalAmount         float64
	UserID              int64
	IsIncome            bool
}

// Position is one line item. It has no lifecycle of its own; it exists
// only inside its parent Receipt.
type Position struct {
	Description string
	Quantity    string // free-form, e.g. "2" or "1kg"
	Category    string
	Price       float64
}

// SignedAmount returns the total with income/expense sign semantics applied:
// expenses are negative, income positive.
func (r *Receipt) SignedAmount() float64 {
	if r.IsIncome {
		return r.TotalAmount
	}
	return -r.TotalAmount
}

// HasDate reports whether the receipt carries a usable date.
func (r *Receipt) HasDate() bool {
	return r.Date != ""
}
