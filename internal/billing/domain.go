package billing

import (
	"errors"
	"time"

	"github.com/bahikhata-erp/bahikhata/internal/inventory"
)

// VoucherKind enumerates the bill document types driven by the engine.
type VoucherKind string

const (
	VoucherSales        VoucherKind = "SALES"
	VoucherPurchase     VoucherKind = "PURCHASE"
	VoucherCreditNote   VoucherKind = "CREDIT_NOTE"
	VoucherDebitNote    VoucherKind = "DEBIT_NOTE"
	VoucherDeliveryNote VoucherKind = "DELIVERY_NOTE"
)

// BillStatus enumerates the bill lifecycle. CANCELLED and DELETED are
// terminal; only ACTIVE bills accept updates.
type BillStatus string

const (
	StatusActive    BillStatus = "ACTIVE"
	StatusCancelled BillStatus = "CANCELLED"
	StatusDeleted   BillStatus = "DELETED"
)

// AccountType classifies ledger account heads.
type AccountType string

const (
	AccountDebtor    AccountType = "DEBTOR"
	AccountCreditor  AccountType = "CREDITOR"
	AccountTax       AccountType = "TAX"
	AccountIncome    AccountType = "INCOME"
	AccountExpense   AccountType = "EXPENSE"
	AccountLiability AccountType = "LIABILITY"
)

// Bill is the voucher header. Totals change only through a full update
// cycle; Status is the only other mutable field after creation.
type Bill struct {
	ID            int64
	FirmID        int64
	DocumentNo    string
	DocumentDate  time.Time
	Kind          VoucherKind
	PartyID       int64
	ReferenceNo   string
	Narration     string
	GrossTotal    float64
	NetTotal      float64
	RoundOff      float64
	CGST          float64
	SGST          float64
	IGST          float64
	ReverseCharge bool
	Status        BillStatus
	CancelReason  string
	CancelledBy   string
	CancelledAt   *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LineItem is one cart line of a bill. Rows are immutable once written;
// updates replace the whole set.
type LineItem struct {
	ID          int64
	BillID      int64
	StockID     int64
	Item        string
	Batch       inventory.BatchKey
	Qty         float64
	Rate        float64
	GSTRate     float64
	DiscountPct float64
	Taxable     float64
	CGST        float64
	SGST        float64
	IGST        float64
	LineTotal   float64
	HSN         string
	UOM         string
}

// OtherCharge is a bill-level charge (freight, packing, ...) taxed the same
// way as a line.
type OtherCharge struct {
	Type    string
	Amount  float64
	GSTRate float64
}

// LedgerEntry is one double-entry row tied to a voucher. Entries are never
// mutated; reversal removes the whole set for the voucher.
type LedgerEntry struct {
	ID              int64
	FirmID          int64
	VoucherID       int64
	VoucherKind     VoucherKind
	AccountHead     string
	AccountType     AccountType
	Debit           float64
	Credit          float64
	TransactionDate time.Time
}

// BillWithDetails bundles a bill with its lines and ledger rows for reads.
type BillWithDetails struct {
	Bill
	Lines  []LineItem
	Ledger []LedgerEntry
}

// Engine errors. Handlers map these onto the HTTP taxonomy.
var (
	ErrBillNotFound         = errors.New("billing: bill not found")
	ErrBillNotActive        = errors.New("billing: bill is not active")
	ErrEmptyCart            = errors.New("billing: cart must not be empty")
	ErrDocumentNoImmutable  = errors.New("billing: document number cannot change on update")
	ErrDuplicateDocumentNo  = errors.New("billing: duplicate document number")
	ErrSequenceExhausted    = errors.New("billing: sequence exhausted for financial year")
	ErrDocumentNoTooLong    = errors.New("billing: document number exceeds 16 characters")
	ErrUnbalancedPosting    = errors.New("billing: ledger posting does not balance")
	ErrUnknownVoucherKind   = errors.New("billing: unknown voucher kind")
	ErrFirmNotFound         = errors.New("billing: firm not found")
)
