package billing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyForKnownKinds(t *testing.T) {
	sales := mustPolicy(t, VoucherSales)
	require.True(t, sales.StockOutbound)
	require.True(t, sales.PartyDebit)
	require.True(t, sales.PostsLedger)
	require.Equal(t, AccountDebtor, sales.PartyAccountType)

	purchase := mustPolicy(t, VoucherPurchase)
	require.False(t, purchase.StockOutbound)
	require.False(t, purchase.PartyDebit)
	require.True(t, purchase.MaterializeMissingBatch)
	require.Equal(t, AccountCreditor, purchase.PartyAccountType)
	require.Equal(t, "PV", purchase.SequencePrefix)

	creditNote := mustPolicy(t, VoucherCreditNote)
	require.False(t, creditNote.StockOutbound)
	require.Equal(t, AccountDebtor, creditNote.PartyAccountType)

	debitNote := mustPolicy(t, VoucherDebitNote)
	require.True(t, debitNote.StockOutbound)
	require.Equal(t, AccountCreditor, debitNote.PartyAccountType)

	delivery := mustPolicy(t, VoucherDeliveryNote)
	require.True(t, delivery.StockOutbound)
	require.False(t, delivery.PostsLedger)
}

func TestPolicyForUnknownKind(t *testing.T) {
	_, err := PolicyFor("PROFORMA")
	require.ErrorIs(t, err, ErrUnknownVoucherKind)
}
