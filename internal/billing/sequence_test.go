package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

type seqKey struct {
	firmID int64
	fy     shared.FinancialYear
	kind   VoucherKind
}

// stubSeqTx implements just the sequence slice of TxRepository.
type stubSeqTx struct {
	TxRepository
	counters map[seqKey]int64
}

func newStubSeqTx() *stubSeqTx {
	return &stubSeqTx{counters: map[seqKey]int64{}}
}

func (s *stubSeqTx) NextSequence(ctx context.Context, firmID int64, fy shared.FinancialYear, kind VoucherKind) (int64, error) {
	k := seqKey{firmID, fy, kind}
	s.counters[k]++
	return s.counters[k], nil
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

func TestNextNumberMonotonic(t *testing.T) {
	tx := newStubSeqTx()
	alloc := NewSequenceAllocator()
	alloc.WithNow(fixedClock(2025, time.June, 1))

	first, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "")
	require.NoError(t, err)
	require.Equal(t, "F1-0001/25-26", first)

	second, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "")
	require.NoError(t, err)
	require.Equal(t, "F1-0002/25-26", second)
}

func TestNextNumberIndependentPerKindAndFirm(t *testing.T) {
	tx := newStubSeqTx()
	alloc := NewSequenceAllocator()
	alloc.WithNow(fixedClock(2025, time.June, 1))

	sales, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "")
	require.NoError(t, err)
	require.Equal(t, "F1-0001/25-26", sales)

	purchase, err := alloc.NextNumber(context.Background(), tx, 1, VoucherPurchase, "")
	require.NoError(t, err)
	require.Equal(t, "F1-PV0001/25-26", purchase)

	otherFirm, err := alloc.NextNumber(context.Background(), tx, 2, VoucherSales, "")
	require.NoError(t, err)
	require.Equal(t, "F2-0001/25-26", otherFirm)
}

func TestNextNumberResetsAcrossYears(t *testing.T) {
	tx := newStubSeqTx()
	alloc := NewSequenceAllocator()

	n1, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "24-25")
	require.NoError(t, err)
	require.Equal(t, "F1-0001/24-25", n1)

	n2, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "25-26")
	require.NoError(t, err)
	require.Equal(t, "F1-0001/25-26", n2)
}

func TestNextNumberExhaustion(t *testing.T) {
	tx := newStubSeqTx()
	tx.counters[seqKey{1, "25-26", VoucherSales}] = maxSequencePerYear

	alloc := NewSequenceAllocator()
	_, err := alloc.NextNumber(context.Background(), tx, 1, VoucherSales, "25-26")
	require.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestNextNumberRejectsBadFinancialYear(t *testing.T) {
	alloc := NewSequenceAllocator()
	_, err := alloc.NextNumber(context.Background(), newStubSeqTx(), 1, VoucherSales, "25-27")
	require.ErrorIs(t, err, shared.ErrInvalidFinancialYear)
}

func TestValidateDocumentNo(t *testing.T) {
	require.NoError(t, ValidateDocumentNo("F1-0001/25-26"))
	require.NoError(t, ValidateDocumentNo("INV-42"))

	require.Error(t, ValidateDocumentNo(""))
	require.ErrorIs(t, ValidateDocumentNo("F1234-PV0001/25-26"), ErrDocumentNoTooLong)
	require.Error(t, ValidateDocumentNo("INV 42"))
	require.Error(t, ValidateDocumentNo("INV#42"))
}

func TestFormatDocumentNoFitsRegulatoryLength(t *testing.T) {
	// worst realistic case: two-digit firm, kind prefix, four digits, year
	n := FormatDocumentNo(99, "PV", 9999, "25-26")
	require.Equal(t, "F99-PV9999/25-26", n)
	require.LessOrEqual(t, len(n), maxDocumentNoLength)
}
