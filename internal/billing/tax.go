package billing

import "math"

// Tax computation is pure: no clock, no storage, no state. Amounts are
// rounded to two decimals per line and the bill net is reconciled to the
// nearest whole rupee with a signed round-off.

// LineTax is the tax split for a single cart line or other charge.
type LineTax struct {
	Taxable   float64
	CGST      float64
	SGST      float64
	IGST      float64
	LineTotal float64
}

// BillTotals aggregates line and charge taxes into bill-level figures.
// NetTotal is always a whole rupee; RoundOff is the signed difference to the
// raw total, at most 0.50 in magnitude.
type BillTotals struct {
	GrossTotal float64
	CGST       float64
	SGST       float64
	IGST       float64
	NetTotal   float64
	RoundOff   float64
}

// ComputeLineTax computes the taxable value and GST split for one line.
// Intra-state tax splits equally into CGST and SGST; inter-state flows
// entirely to IGST. A zero gstRate yields zero tax.
func ComputeLineTax(rate, qty, discountPct, gstRate float64, intraState bool) LineTax {
	taxable := round2(rate * qty * (1 - discountPct/100))
	tax := round2(taxable * gstRate / 100)

	line := LineTax{Taxable: taxable}
	if intraState {
		half := round2(tax / 2)
		line.CGST = half
		line.SGST = half
	} else {
		line.IGST = tax
	}
	line.LineTotal = round2(taxable + line.CGST + line.SGST + line.IGST)
	return line
}

// ComputeBillTotals sums line taxables and other charges into the bill
// totals. Charges are taxed the same way as lines. Under reverse charge the
// tax is still reported in the CGST/SGST/IGST fields but excluded from the
// payable net.
func ComputeBillTotals(lines []LineTax, charges []OtherCharge, reverseCharge, intraState bool) BillTotals {
	var totals BillTotals
	for _, line := range lines {
		totals.GrossTotal += line.Taxable
		totals.CGST += line.CGST
		totals.SGST += line.SGST
		totals.IGST += line.IGST
	}
	for _, charge := range charges {
		chargeTax := ComputeLineTax(charge.Amount, 1, 0, charge.GSTRate, intraState)
		totals.GrossTotal += chargeTax.Taxable
		totals.CGST += chargeTax.CGST
		totals.SGST += chargeTax.SGST
		totals.IGST += chargeTax.IGST
	}
	totals.GrossTotal = round2(totals.GrossTotal)
	totals.CGST = round2(totals.CGST)
	totals.SGST = round2(totals.SGST)
	totals.IGST = round2(totals.IGST)

	raw := totals.GrossTotal
	if !reverseCharge {
		raw = round2(raw + totals.CGST + totals.SGST + totals.IGST)
	}
	totals.NetTotal = math.Round(raw)
	totals.RoundOff = round2(totals.NetTotal - raw)
	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
