package billing

import (
	"fmt"
	"time"
)

// CartLine is one requested bill line as handed in by the caller.
type CartLine struct {
	StockID     int64
	Item        string
	Batch       string
	Qty         float64
	Rate        float64
	GSTRate     float64
	DiscountPct float64
	HSN         string
	UOM         string
}

// ChargeInput is a requested bill-level charge.
type ChargeInput struct {
	Type    string
	Amount  float64
	GSTRate float64
}

// BillRequest is the typed request the coordinator consumes for create and
// update. DocumentNo is normally empty; a supplied value bypasses sequence
// allocation but is checked for per-firm uniqueness.
type BillRequest struct {
	Kind          VoucherKind
	DocumentNo    string
	DocumentDate  time.Time
	PartyID       int64
	ReferenceNo   string
	Narration     string
	ReverseCharge bool
	Cart          []CartLine
	OtherCharges  []ChargeInput
}

// Validate ensures the request meets the engine's minimum criteria before
// any transactional work starts.
func (r BillRequest) Validate() error {
	if _, err := PolicyFor(r.Kind); err != nil {
		return err
	}
	if len(r.Cart) == 0 {
		return ErrEmptyCart
	}
	if r.DocumentDate.IsZero() {
		return fmt.Errorf("billing: document date required")
	}
	if r.PartyID == 0 {
		return fmt.Errorf("billing: party required")
	}
	if r.DocumentNo != "" {
		if err := ValidateDocumentNo(r.DocumentNo); err != nil {
			return err
		}
	}
	for i, line := range r.Cart {
		if line.StockID == 0 {
			return fmt.Errorf("billing: cart line %d missing stock item", i)
		}
		if line.Qty <= 0 {
			return fmt.Errorf("billing: cart line %d quantity must be positive", i)
		}
		if line.Rate < 0 {
			return fmt.Errorf("billing: cart line %d rate must not be negative", i)
		}
		if line.DiscountPct < 0 || line.DiscountPct > 100 {
			return fmt.Errorf("billing: cart line %d discount out of range", i)
		}
		if line.GSTRate < 0 {
			return fmt.Errorf("billing: cart line %d gst rate must not be negative", i)
		}
	}
	for i, charge := range r.OtherCharges {
		if charge.Type == "" {
			return fmt.Errorf("billing: other charge %d missing type", i)
		}
		if charge.Amount < 0 {
			return fmt.Errorf("billing: other charge %d amount must not be negative", i)
		}
	}
	return nil
}

// BillResult is returned to the caller on successful create and update.
type BillResult struct {
	BillID     int64
	DocumentNo string
}

// ListFilter narrows bill listings.
type ListFilter struct {
	Kind   VoucherKind
	Status BillStatus
	From   time.Time
	To     time.Time
	Limit  int
}
