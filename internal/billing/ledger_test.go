package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func postingBill(kind VoucherKind, totals BillTotals, reverseCharge bool) Bill {
	return Bill{
		ID:            7,
		FirmID:        1,
		Kind:          kind,
		DocumentDate:  time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		GrossTotal:    totals.GrossTotal,
		NetTotal:      totals.NetTotal,
		RoundOff:      totals.RoundOff,
		CGST:          totals.CGST,
		SGST:          totals.SGST,
		IGST:          totals.IGST,
		ReverseCharge: reverseCharge,
	}
}

func mustPolicy(t *testing.T, kind VoucherKind) VoucherPolicy {
	t.Helper()
	policy, err := PolicyFor(kind)
	require.NoError(t, err)
	return policy
}

func sumSides(entries []LedgerEntry) (debit, credit float64) {
	for _, e := range entries {
		debit += e.Debit
		credit += e.Credit
	}
	return round2(debit), round2(credit)
}

func TestBuildPostingSetBalancesForAllPostingKinds(t *testing.T) {
	lines := []LineTax{ComputeLineTax(33.33, 3, 2.5, 18, true)}
	charges := []OtherCharge{{Type: "Freight", Amount: 25, GSTRate: 18}}

	for _, kind := range []VoucherKind{VoucherSales, VoucherPurchase, VoucherCreditNote, VoucherDebitNote} {
		policy := mustPolicy(t, kind)
		totals := ComputeBillTotals(lines, charges, false, true)
		bill := postingBill(kind, totals, false)

		entries := BuildPostingSet(policy, bill, "Gupta Medicals", charges)
		require.NoError(t, ValidatePosting(entries), "kind %s", kind)

		debit, credit := sumSides(entries)
		require.Equal(t, debit, credit, "kind %s", kind)
	}
}

func TestBuildPostingSetSales(t *testing.T) {
	totals := ComputeBillTotals([]LineTax{ComputeLineTax(100, 2, 0, 18, true)}, nil, false, true)
	policy := mustPolicy(t, VoucherSales)
	bill := postingBill(VoucherSales, totals, false)

	entries := BuildPostingSet(policy, bill, "Gupta Medicals", nil)
	require.NoError(t, ValidatePosting(entries))

	byHead := map[string]LedgerEntry{}
	for _, e := range entries {
		byHead[e.AccountHead] = e
	}

	party := byHead["Gupta Medicals"]
	require.Equal(t, AccountDebtor, party.AccountType)
	require.Equal(t, 236.0, party.Debit)

	require.Equal(t, 18.0, byHead["Output CGST A/c"].Credit)
	require.Equal(t, 18.0, byHead["Output SGST A/c"].Credit)
	require.Equal(t, 200.0, byHead["Sales A/c"].Credit)
	require.Equal(t, AccountIncome, byHead["Sales A/c"].AccountType)
}

func TestBuildPostingSetPurchaseCreditsSupplier(t *testing.T) {
	totals := ComputeBillTotals([]LineTax{ComputeLineTax(100, 1, 0, 18, false)}, nil, false, false)
	policy := mustPolicy(t, VoucherPurchase)
	bill := postingBill(VoucherPurchase, totals, false)

	entries := BuildPostingSet(policy, bill, "Verma Distributors", nil)
	require.NoError(t, ValidatePosting(entries))

	byHead := map[string]LedgerEntry{}
	for _, e := range entries {
		byHead[e.AccountHead] = e
	}

	require.Equal(t, 118.0, byHead["Verma Distributors"].Credit)
	require.Equal(t, AccountCreditor, byHead["Verma Distributors"].AccountType)
	require.Equal(t, 18.0, byHead["Input IGST A/c"].Debit)
	require.Equal(t, 100.0, byHead["Purchases A/c"].Debit)
}

func TestBuildPostingSetReverseChargeOmitsTaxRows(t *testing.T) {
	totals := ComputeBillTotals([]LineTax{ComputeLineTax(100, 1, 0, 18, true)}, nil, true, true)
	policy := mustPolicy(t, VoucherPurchase)
	bill := postingBill(VoucherPurchase, totals, true)

	entries := BuildPostingSet(policy, bill, "Verma Distributors", nil)
	require.NoError(t, ValidatePosting(entries))
	for _, e := range entries {
		require.NotEqual(t, AccountTax, e.AccountType)
	}
}

func TestBuildPostingSetRoundOffSign(t *testing.T) {
	// raw 39.33 rounds to 39, round-off -0.33
	totals := ComputeBillTotals([]LineTax{ComputeLineTax(33.33, 1, 0, 18, true)}, nil, false, true)
	require.Negative(t, totals.RoundOff)

	sales := BuildPostingSet(mustPolicy(t, VoucherSales), postingBill(VoucherSales, totals, false), "P", nil)
	require.NoError(t, ValidatePosting(sales))
	purchase := BuildPostingSet(mustPolicy(t, VoucherPurchase), postingBill(VoucherPurchase, totals, false), "P", nil)
	require.NoError(t, ValidatePosting(purchase))

	findRound := func(entries []LedgerEntry) LedgerEntry {
		for _, e := range entries {
			if e.AccountHead == "Round Off A/c" {
				return e
			}
		}
		t.Fatal("round off row missing")
		return LedgerEntry{}
	}
	// rounding the receivable down leaves a debit gap on a sale and a
	// credit gap on a purchase
	require.Equal(t, 0.33, findRound(sales).Debit)
	require.Equal(t, 0.33, findRound(purchase).Credit)
}

func TestValidatePostingRejections(t *testing.T) {
	date := time.Now()
	ok := []LedgerEntry{
		{AccountHead: "A", Debit: 118, TransactionDate: date},
		{AccountHead: "B", Credit: 118, TransactionDate: date},
	}
	require.NoError(t, ValidatePosting(ok))

	require.ErrorIs(t, ValidatePosting(nil), ErrUnbalancedPosting)
	require.ErrorIs(t, ValidatePosting([]LedgerEntry{{Debit: 1}}), ErrUnbalancedPosting)
	require.ErrorIs(t, ValidatePosting([]LedgerEntry{
		{Debit: 100}, {Credit: 99},
	}), ErrUnbalancedPosting)
	require.ErrorIs(t, ValidatePosting([]LedgerEntry{
		{Debit: -5}, {Credit: -5},
	}), ErrUnbalancedPosting)
	require.ErrorIs(t, ValidatePosting([]LedgerEntry{
		{Debit: 5, Credit: 5}, {Credit: 0},
	}), ErrUnbalancedPosting)
}
