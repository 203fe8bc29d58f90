package inventory

import (
	"errors"
	"time"
)

// BatchKey identifies a batch within a stock item. The zero value means
// "unbatched" stock, which is distinct from a batch whose label happens to
// be the empty string; callers build keys through BatchKeyFor so the two
// never collide.
type BatchKey struct {
	label string
	named bool
}

// BatchKeyFor returns the key for a batch label. An empty label maps to the
// unbatched key.
func BatchKeyFor(label string) BatchKey {
	if label == "" {
		return BatchKey{}
	}
	return BatchKey{label: label, named: true}
}

// Unbatched is the key for stock held outside any named batch.
var Unbatched = BatchKey{}

// Named reports whether the key refers to a named batch.
func (k BatchKey) Named() bool {
	return k.named
}

// Label returns the batch label, empty for unbatched stock.
func (k BatchKey) Label() string {
	return k.label
}

// String implements fmt.Stringer.
func (k BatchKey) String() string {
	if !k.named {
		return "(unbatched)"
	}
	return k.label
}

// Batch is a named sub-lot of a stock item with its own quantity and pricing.
type Batch struct {
	Key    BatchKey
	Qty    float64
	Rate   float64
	MRP    float64
	Expiry *time.Time
}

// StockItem is the stock master record. Qty is always the sum of batch
// quantities; recomputing it from Batches is the only supported way to
// change it.
type StockItem struct {
	ID        int64
	FirmID    int64
	Item      string
	HSN       string
	UOM       string
	GSTRate   float64
	Qty       float64
	Batches   []Batch
	UpdatedAt time.Time
}

// AggregateQty sums the batch quantities.
func (s StockItem) AggregateQty() float64 {
	var total float64
	for _, b := range s.Batches {
		total += b.Qty
	}
	return total
}

// ErrStockNotFound indicates the stock item does not exist or belongs to another firm.
var ErrStockNotFound = errors.New("inventory: stock item not found")

// ErrBatchNotFound indicates the named batch is absent from the stock item.
var ErrBatchNotFound = errors.New("inventory: batch not found")

// ErrInsufficientStock triggered when a decrement would drive a batch negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrInvalidQuantity indicates a non-positive quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
