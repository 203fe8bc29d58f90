package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubTxStore struct {
	stock     StockItem
	saved     []Batch
	savedQty  float64
	saveCalls int
	err       error
}

func (s *stubTxStore) GetStockForUpdate(ctx context.Context, firmID, stockID int64) (StockItem, error) {
	if s.err != nil {
		return StockItem{}, s.err
	}
	return s.stock, nil
}

func (s *stubTxStore) SaveBatches(ctx context.Context, stockID int64, batches []Batch, aggregateQty float64) error {
	s.saved = append([]Batch(nil), batches...)
	s.savedQty = aggregateQty
	s.saveCalls++
	return nil
}

func TestAllocateDecrementsBatch(t *testing.T) {
	store := &stubTxStore{stock: StockItem{
		ID:     1,
		FirmID: 1,
		Batches: []Batch{
			{Key: BatchKeyFor("B1"), Qty: 10},
			{Key: BatchKeyFor("B2"), Qty: 5},
		},
	}}
	svc := NewService()

	err := svc.Allocate(context.Background(), store, 1, 1, BatchKeyFor("B1"), 4, false)
	require.NoError(t, err)
	require.Equal(t, 6.0, store.saved[0].Qty)
	require.Equal(t, 5.0, store.saved[1].Qty)
	require.Equal(t, 11.0, store.savedQty)
}

func TestAllocateInsufficientStockLeavesBatchesUntouched(t *testing.T) {
	store := &stubTxStore{stock: StockItem{
		Batches: []Batch{{Key: BatchKeyFor("B1"), Qty: 3}},
	}}
	svc := NewService()

	err := svc.Allocate(context.Background(), store, 1, 1, BatchKeyFor("B1"), 4, false)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Zero(t, store.saveCalls)
}

func TestAllocateMissingBatch(t *testing.T) {
	store := &stubTxStore{stock: StockItem{
		Batches: []Batch{{Key: BatchKeyFor("B1"), Qty: 10}},
	}}
	svc := NewService()

	err := svc.Allocate(context.Background(), store, 1, 1, BatchKeyFor("NOPE"), 1, false)
	require.ErrorIs(t, err, ErrBatchNotFound)

	// materialize creates the batch at zero; the decrement then fails the
	// non-negativity check instead
	err = svc.Allocate(context.Background(), store, 1, 1, BatchKeyFor("NOPE"), 1, true)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAllocateExactDrain(t *testing.T) {
	store := &stubTxStore{stock: StockItem{
		Batches: []Batch{{Key: Unbatched, Qty: 2.5}},
	}}
	svc := NewService()

	err := svc.Allocate(context.Background(), store, 1, 1, Unbatched, 2.5, false)
	require.NoError(t, err)
	require.Equal(t, 0.0, store.saved[0].Qty)
	require.Equal(t, 0.0, store.savedQty)
}

func TestAllocateRejectsNonPositiveQty(t *testing.T) {
	svc := NewService()
	err := svc.Allocate(context.Background(), &stubTxStore{}, 1, 1, Unbatched, 0, false)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	err = svc.Allocate(context.Background(), &stubTxStore{}, 1, 1, Unbatched, -1, false)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRestoreIncrements(t *testing.T) {
	store := &stubTxStore{stock: StockItem{
		Batches: []Batch{{Key: BatchKeyFor("B1"), Qty: 1}},
	}}
	svc := NewService()

	require.NoError(t, svc.Restore(context.Background(), store, 1, 1, BatchKeyFor("B1"), 2))
	require.Equal(t, 3.0, store.saved[0].Qty)
	require.Equal(t, 3.0, store.savedQty)

	store.stock.Batches = store.saved
	require.NoError(t, svc.Restore(context.Background(), store, 1, 1, BatchKeyFor("B2"), 4))
	require.Len(t, store.saved, 2)
	require.Equal(t, 4.0, store.saved[1].Qty)
	require.Equal(t, 7.0, store.savedQty)
}

func TestBatchKeyUnbatchedDistinctFromEmptyLabel(t *testing.T) {
	require.Equal(t, Unbatched, BatchKeyFor(""))
	require.False(t, BatchKeyFor("").Named())
	require.True(t, BatchKeyFor("B1").Named())
	require.Equal(t, "(unbatched)", Unbatched.String())
}

func TestAggregateQty(t *testing.T) {
	s := StockItem{Batches: []Batch{
		{Key: BatchKeyFor("A"), Qty: 1.5},
		{Key: BatchKeyFor("B"), Qty: 2.25},
		{Key: Unbatched, Qty: 0.25},
	}}
	require.Equal(t, 4.0, s.AggregateQty())
}
