package billing

import (
	"context"
	"fmt"
	"math"
)

// LedgerPoster appends and reverses the balanced double-entry rows tied to a
// voucher. Reversal removes the voucher's whole posting set; balances stay
// correct and cancelled documents leave no ledger residue.
type LedgerPoster struct{}

// NewLedgerPoster builds LedgerPoster.
func NewLedgerPoster() *LedgerPoster {
	return &LedgerPoster{}
}

// Post validates that the set balances and inserts it.
func (p *LedgerPoster) Post(ctx context.Context, tx TxRepository, entries []LedgerEntry) error {
	if err := ValidatePosting(entries); err != nil {
		return err
	}
	return tx.InsertLedgerEntries(ctx, entries)
}

// Reverse deletes every ledger row belonging to the voucher.
func (p *LedgerPoster) Reverse(ctx context.Context, tx TxRepository, voucherID int64, kind VoucherKind) error {
	return tx.DeleteLedgerEntries(ctx, voucherID, kind)
}

// ValidatePosting checks that debits equal credits to the paisa and that no
// row carries both sides or a negative amount.
func ValidatePosting(entries []LedgerEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: need at least two rows", ErrUnbalancedPosting)
	}
	var debit, credit float64
	for i, e := range entries {
		if e.Debit < 0 || e.Credit < 0 {
			return fmt.Errorf("%w: row %d negative amount", ErrUnbalancedPosting, i)
		}
		if e.Debit > 0 && e.Credit > 0 {
			return fmt.Errorf("%w: row %d has both debit and credit", ErrUnbalancedPosting, i)
		}
		debit += e.Debit
		credit += e.Credit
	}
	if math.Abs(round2(debit)-round2(credit)) > 0.004 {
		return fmt.Errorf("%w: debit %.2f credit %.2f", ErrUnbalancedPosting, debit, credit)
	}
	return nil
}

// BuildPostingSet produces the standard rows for a voucher: the party
// account for the payable net, tax heads when tax applies, per-charge
// income/expense rows, a signed round-off row, and the balancing trading
// line sized to the taxable line total. Under reverse charge the tax stays
// on the bill header only, so the set balances without tax rows.
func BuildPostingSet(policy VoucherPolicy, bill Bill, partyName string, charges []OtherCharge) []LedgerEntry {
	entry := func(head string, accountType AccountType, amount float64, debit bool) LedgerEntry {
		e := LedgerEntry{
			FirmID:          bill.FirmID,
			VoucherID:       bill.ID,
			VoucherKind:     bill.Kind,
			AccountHead:     head,
			AccountType:     accountType,
			TransactionDate: bill.DocumentDate,
		}
		if debit {
			e.Debit = round2(amount)
		} else {
			e.Credit = round2(amount)
		}
		return e
	}

	var entries []LedgerEntry

	entries = append(entries, entry(partyName, policy.PartyAccountType, bill.NetTotal, policy.PartyDebit))

	if !bill.ReverseCharge {
		taxDebit := !policy.PartyDebit
		if bill.CGST > 0 {
			entries = append(entries, entry(policy.TaxHeadPrefix+" CGST A/c", AccountTax, bill.CGST, taxDebit))
		}
		if bill.SGST > 0 {
			entries = append(entries, entry(policy.TaxHeadPrefix+" SGST A/c", AccountTax, bill.SGST, taxDebit))
		}
		if bill.IGST > 0 {
			entries = append(entries, entry(policy.TaxHeadPrefix+" IGST A/c", AccountTax, bill.IGST, taxDebit))
		}
	}

	chargeDebit := !policy.PartyDebit
	chargeType := AccountExpense
	if policy.PartyDebit {
		chargeType = AccountIncome
	}
	var chargeTotal float64
	for _, charge := range charges {
		amount := round2(charge.Amount)
		chargeTotal += amount
		entries = append(entries, entry(charge.Type, chargeType, amount, chargeDebit))
	}

	if bill.RoundOff != 0 {
		roundDebit := (bill.RoundOff < 0) == policy.PartyDebit
		roundType := AccountIncome
		if roundDebit {
			roundType = AccountExpense
		}
		entries = append(entries, entry("Round Off A/c", roundType, math.Abs(bill.RoundOff), roundDebit))
	}

	trading := round2(bill.GrossTotal - chargeTotal)
	if trading != 0 {
		entries = append(entries, entry(policy.TradingAccount, policy.TradingAccountType, trading, !policy.PartyDebit))
	}

	return entries
}
