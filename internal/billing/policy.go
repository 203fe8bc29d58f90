package billing

import "fmt"

// VoucherPolicy parameterizes the transaction engine per voucher kind: which
// direction stock moves, which side of the ledger the party sits on, and how
// document numbers are prefixed. One engine, five policies, instead of five
// copies of the engine.
type VoucherPolicy struct {
	Kind VoucherKind

	// SequencePrefix is inserted into allocated document numbers.
	SequencePrefix string

	// StockOutbound is true when the voucher ships stock out (sales,
	// debit note, delivery note) and false when it receives stock
	// (purchase, credit note).
	StockOutbound bool

	// MaterializeMissingBatch permits Allocate to create an absent batch
	// at zero before decrementing. Set for return kinds where the batch
	// may never have been formally received.
	MaterializeMissingBatch bool

	// PostsLedger is false for delivery notes, which move stock without
	// any accounting effect.
	PostsLedger bool

	// PartyAccountType is DEBTOR for customer-facing kinds and CREDITOR
	// for supplier-facing kinds.
	PartyAccountType AccountType

	// PartyDebit is true when the party account is debited the net total
	// (sales, debit note) and false when it is credited (purchase,
	// credit note).
	PartyDebit bool

	// TradingAccount absorbs the balancing amount, e.g. "Sales A/c".
	TradingAccount     string
	TradingAccountType AccountType

	// TaxHeadPrefix distinguishes output tax (customer-facing kinds) from
	// input tax (supplier-facing kinds) in ledger account heads.
	TaxHeadPrefix string
}

var policies = map[VoucherKind]VoucherPolicy{
	VoucherSales: {
		Kind:               VoucherSales,
		SequencePrefix:     "",
		StockOutbound:      true,
		PostsLedger:        true,
		PartyAccountType:   AccountDebtor,
		PartyDebit:         true,
		TradingAccount:     "Sales A/c",
		TradingAccountType: AccountIncome,
		TaxHeadPrefix:      "Output",
	},
	VoucherPurchase: {
		Kind:                    VoucherPurchase,
		SequencePrefix:          "PV",
		StockOutbound:           false,
		MaterializeMissingBatch: true,
		PostsLedger:             true,
		PartyAccountType:        AccountCreditor,
		PartyDebit:              false,
		TradingAccount:          "Purchases A/c",
		TradingAccountType:      AccountExpense,
		TaxHeadPrefix:           "Input",
	},
	VoucherCreditNote: {
		Kind:                    VoucherCreditNote,
		SequencePrefix:          "CN",
		StockOutbound:           false,
		MaterializeMissingBatch: true,
		PostsLedger:             true,
		PartyAccountType:        AccountDebtor,
		PartyDebit:              false,
		TradingAccount:          "Sales Returns A/c",
		TradingAccountType:      AccountIncome,
		TaxHeadPrefix:           "Output",
	},
	VoucherDebitNote: {
		Kind:                    VoucherDebitNote,
		SequencePrefix:          "DN",
		StockOutbound:           true,
		MaterializeMissingBatch: true,
		PostsLedger:             true,
		PartyAccountType:        AccountCreditor,
		PartyDebit:              true,
		TradingAccount:          "Purchase Returns A/c",
		TradingAccountType:      AccountExpense,
		TaxHeadPrefix:           "Input",
	},
	VoucherDeliveryNote: {
		Kind:             VoucherDeliveryNote,
		SequencePrefix:   "DC",
		StockOutbound:    true,
		PostsLedger:      false,
		PartyAccountType: AccountDebtor,
		PartyDebit:       true,
	},
}

// PolicyFor returns the policy for a voucher kind.
func PolicyFor(kind VoucherKind) (VoucherPolicy, error) {
	policy, ok := policies[kind]
	if !ok {
		return VoucherPolicy{}, fmt.Errorf("%w: %q", ErrUnknownVoucherKind, kind)
	}
	return policy, nil
}
