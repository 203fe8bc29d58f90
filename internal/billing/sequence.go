package billing

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// Sequence limits. GST rules cap tax invoice numbers at 16 characters and
// the per-year counter at four digits.
const (
	maxSequencePerYear  = 9999
	maxDocumentNoLength = 16
)

var documentNoPattern = regexp.MustCompile(`^[A-Za-z0-9/-]+$`)

// SequenceAllocator issues unique, monotonically increasing document numbers
// per (firm, financial year, voucher kind). Each kind keeps an independent
// counter; the counter row is created lazily on first use and advanced with
// a single atomic statement inside the caller's transaction.
type SequenceAllocator struct {
	now func() time.Time
}

// NewSequenceAllocator builds SequenceAllocator.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{now: time.Now}
}

// WithNow overrides the clock used for the default financial year.
func (a *SequenceAllocator) WithNow(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// NextNumber allocates and formats the next document number for the key.
// An empty financial year defaults to the current Indian fiscal year.
func (a *SequenceAllocator) NextNumber(ctx context.Context, tx TxRepository, firmID int64, kind VoucherKind, fy shared.FinancialYear) (string, error) {
	policy, err := PolicyFor(kind)
	if err != nil {
		return "", err
	}
	if fy == "" {
		fy = shared.CurrentFinancialYear(a.now())
	} else if _, err := shared.ParseFinancialYear(fy.String()); err != nil {
		return "", err
	}
	seq, err := tx.NextSequence(ctx, firmID, fy, kind)
	if err != nil {
		return "", err
	}
	if seq > maxSequencePerYear {
		return "", fmt.Errorf("%w: %s %s firm %d", ErrSequenceExhausted, kind, fy, firmID)
	}
	number := FormatDocumentNo(firmID, policy.SequencePrefix, seq, fy)
	if err := ValidateDocumentNo(number); err != nil {
		return "", err
	}
	return number, nil
}

// FormatDocumentNo renders a document number such as "F1-0001/25-26" or,
// with a kind prefix, "F1-PV0001/25-26".
func FormatDocumentNo(firmID int64, prefix string, seq int64, fy shared.FinancialYear) string {
	return fmt.Sprintf("F%d-%s%04d/%s", firmID, prefix, seq, fy)
}

// ValidateDocumentNo enforces the regulatory length and character set on
// both allocated and manually supplied numbers.
func ValidateDocumentNo(number string) error {
	if number == "" {
		return fmt.Errorf("billing: document number required")
	}
	if len(number) > maxDocumentNoLength {
		return fmt.Errorf("%w: %q", ErrDocumentNoTooLong, number)
	}
	if !documentNoPattern.MatchString(number) {
		return fmt.Errorf("billing: document number %q has invalid characters", number)
	}
	return nil
}
