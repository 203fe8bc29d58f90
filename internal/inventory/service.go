package inventory

import (
	"context"
	"fmt"
)

// qtyEpsilon absorbs float drift when comparing batch quantities.
const qtyEpsilon = 1e-9

// TxStore exposes the stock operations available inside a caller-owned
// transaction. The billing engine hands the service a TxStore bound to its
// own transaction so stock mutation commits or rolls back with the voucher.
type TxStore interface {
	GetStockForUpdate(ctx context.Context, firmID, stockID int64) (StockItem, error)
	SaveBatches(ctx context.Context, stockID int64, batches []Batch, aggregateQty float64) error
}

// Service owns every mutation of StockItem batch lists. Nothing else in the
// repository writes batch or aggregate quantities.
type Service struct{}

// NewService builds Service.
func NewService() *Service {
	return &Service{}
}

// Allocate decrements qty from the batch identified by key. A missing batch
// fails with ErrBatchNotFound unless materialize is set, in which case the
// batch is created at zero first; the decrement is then subject to the usual
// non-negativity check, so the caller sees ErrInsufficientStock instead of a
// batch-identity error. Materialize is meant for reversal and return flows
// where stock was never formally received under that batch.
func (s *Service) Allocate(ctx context.Context, store TxStore, firmID, stockID int64, key BatchKey, qty float64, materialize bool) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	stock, err := store.GetStockForUpdate(ctx, firmID, stockID)
	if err != nil {
		return err
	}
	idx := findBatch(stock.Batches, key)
	if idx < 0 {
		if !materialize {
			return fmt.Errorf("%w: stock %d batch %s", ErrBatchNotFound, stockID, key)
		}
		stock.Batches = append(stock.Batches, Batch{Key: key})
		idx = len(stock.Batches) - 1
	}
	remaining := stock.Batches[idx].Qty - qty
	if remaining < -qtyEpsilon {
		return fmt.Errorf("%w: stock %d batch %s has %.3f, need %.3f",
			ErrInsufficientStock, stockID, key, stock.Batches[idx].Qty, qty)
	}
	if remaining < 0 {
		remaining = 0
	}
	stock.Batches[idx].Qty = remaining
	return store.SaveBatches(ctx, stockID, stock.Batches, StockItem{Batches: stock.Batches}.AggregateQty())
}

// Restore increments the batch identified by key, creating it when absent.
// Used when reversing a prior allocation (update, cancel and delete flows)
// and for inbound voucher kinds receiving stock.
func (s *Service) Restore(ctx context.Context, store TxStore, firmID, stockID int64, key BatchKey, qty float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	stock, err := store.GetStockForUpdate(ctx, firmID, stockID)
	if err != nil {
		return err
	}
	idx := findBatch(stock.Batches, key)
	if idx < 0 {
		stock.Batches = append(stock.Batches, Batch{Key: key})
		idx = len(stock.Batches) - 1
	}
	stock.Batches[idx].Qty += qty
	return store.SaveBatches(ctx, stockID, stock.Batches, StockItem{Batches: stock.Batches}.AggregateQty())
}

func findBatch(batches []Batch, key BatchKey) int {
	for i, b := range batches {
		if b.Key == key {
			return i
		}
	}
	return -1
}
