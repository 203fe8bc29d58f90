package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeLineTaxIntraState(t *testing.T) {
	line := ComputeLineTax(100, 2, 0, 18, true)
	require.Equal(t, 200.0, line.Taxable)
	require.Equal(t, 18.0, line.CGST)
	require.Equal(t, 18.0, line.SGST)
	require.Equal(t, 0.0, line.IGST)
	require.Equal(t, 236.0, line.LineTotal)
}

func TestComputeLineTaxInterState(t *testing.T) {
	line := ComputeLineTax(100, 2, 0, 18, false)
	require.Equal(t, 200.0, line.Taxable)
	require.Equal(t, 0.0, line.CGST)
	require.Equal(t, 0.0, line.SGST)
	require.Equal(t, 36.0, line.IGST)
	require.Equal(t, 236.0, line.LineTotal)
}

func TestComputeLineTaxDiscount(t *testing.T) {
	line := ComputeLineTax(100, 1, 10, 12, true)
	require.Equal(t, 90.0, line.Taxable)
	require.Equal(t, 5.4, line.CGST)
	require.Equal(t, 5.4, line.SGST)
	require.Equal(t, 100.8, line.LineTotal)
}

func TestComputeLineTaxZeroRate(t *testing.T) {
	line := ComputeLineTax(50, 3, 0, 0, true)
	require.Equal(t, 150.0, line.Taxable)
	require.Zero(t, line.CGST)
	require.Zero(t, line.SGST)
	require.Zero(t, line.IGST)
	require.Equal(t, 150.0, line.LineTotal)
}

func TestComputeBillTotalsRoundOff(t *testing.T) {
	lines := []LineTax{ComputeLineTax(33.33, 1, 0, 18, true)}
	totals := ComputeBillTotals(lines, nil, false, true)

	require.Equal(t, 33.33, totals.GrossTotal)
	require.Equal(t, 3.0, totals.CGST)
	require.Equal(t, 3.0, totals.SGST)
	// 33.33 + 3.00 + 3.00 = 39.33 rounds down to 39
	require.Equal(t, 39.0, totals.NetTotal)
	require.InDelta(t, -0.33, totals.RoundOff, 1e-9)
}

func TestComputeBillTotalsNetIsWholeRupee(t *testing.T) {
	cases := [][]LineTax{
		{ComputeLineTax(99.99, 1, 0, 18, true)},
		{ComputeLineTax(10.50, 3, 5, 12, false)},
		{ComputeLineTax(7, 13, 0, 28, true), ComputeLineTax(19.95, 2, 2.5, 5, true)},
	}
	for _, lines := range cases {
		totals := ComputeBillTotals(lines, nil, false, true)
		require.Equal(t, totals.NetTotal, math.Round(totals.NetTotal))
		require.LessOrEqual(t, math.Abs(totals.RoundOff), 0.5)
		require.InDelta(t, totals.NetTotal,
			totals.GrossTotal+totals.CGST+totals.SGST+totals.IGST+totals.RoundOff, 0.005)
	}
}

func TestComputeBillTotalsOtherCharges(t *testing.T) {
	lines := []LineTax{ComputeLineTax(100, 1, 0, 18, true)}
	charges := []OtherCharge{{Type: "Freight", Amount: 50, GSTRate: 18}}
	totals := ComputeBillTotals(lines, charges, false, true)

	require.Equal(t, 150.0, totals.GrossTotal)
	require.Equal(t, 13.5, totals.CGST)
	require.Equal(t, 13.5, totals.SGST)
	require.Equal(t, 177.0, totals.NetTotal)
	require.Equal(t, 0.0, totals.RoundOff)
}

func TestComputeBillTotalsReverseCharge(t *testing.T) {
	lines := []LineTax{ComputeLineTax(100, 1, 0, 18, true)}
	totals := ComputeBillTotals(lines, nil, true, true)

	// tax is reported but excluded from the payable net
	require.Equal(t, 9.0, totals.CGST)
	require.Equal(t, 9.0, totals.SGST)
	require.Equal(t, 100.0, totals.NetTotal)
	require.Equal(t, 0.0, totals.RoundOff)
}
