package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the bill transaction coordinator. Each create, update, cancel
// or delete runs inside one repository transaction: document number
// allocation, tax computation, batch allocation and ledger posting commit
// together or not at all.
type Service struct {
	repo      RepositoryPort
	stock     *inventory.Service
	sequences *SequenceAllocator
	ledger    *LedgerPoster
	audit     AuditPort
	now       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, stock *inventory.Service, audit AuditPort) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		sequences: NewSequenceAllocator(),
		ledger:    NewLedgerPoster(),
		audit:     audit,
		now:       time.Now,
	}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
		s.sequences.WithNow(now)
	}
}

// Create validates the request, allocates or accepts a document number,
// computes totals, applies stock deltas per cart line and posts the ledger
// set, all within one transaction.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req BillRequest) (BillResult, error) {
	if err := req.Validate(); err != nil {
		return BillResult{}, err
	}
	policy, err := PolicyFor(req.Kind)
	if err != nil {
		return BillResult{}, err
	}

	var result BillResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		firm, err := tx.GetFirm(ctx, actor.FirmID)
		if err != nil {
			return err
		}
		party, err := tx.GetParty(ctx, actor.FirmID, req.PartyID)
		if err != nil {
			return err
		}

		documentNo := req.DocumentNo
		if documentNo == "" {
			fy := shared.FinancialYearOf(req.DocumentDate)
			documentNo, err = s.sequences.NextNumber(ctx, tx, actor.FirmID, req.Kind, fy)
			if err != nil {
				return err
			}
		} else {
			taken, err := tx.DocumentNoExists(ctx, actor.FirmID, documentNo, 0)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", ErrDuplicateDocumentNo, documentNo)
			}
		}

		intraState := isIntraState(firm.StateCode, party.StateCode)
		lines, totals := computeCart(req, intraState)

		bill := Bill{
			FirmID:        actor.FirmID,
			DocumentNo:    documentNo,
			DocumentDate:  req.DocumentDate,
			Kind:          req.Kind,
			PartyID:       party.ID,
			ReferenceNo:   req.ReferenceNo,
			Narration:     req.Narration,
			GrossTotal:    totals.GrossTotal,
			NetTotal:      totals.NetTotal,
			RoundOff:      totals.RoundOff,
			CGST:          totals.CGST,
			SGST:          totals.SGST,
			IGST:          totals.IGST,
			ReverseCharge: req.ReverseCharge,
			Status:        StatusActive,
			CreatedBy:     actor.Username,
		}
		bill.ID, err = tx.InsertBill(ctx, bill)
		if err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, bill.ID, lines); err != nil {
			return err
		}
		if err := s.applyStock(ctx, tx, actor.FirmID, policy, lines); err != nil {
			return err
		}
		if policy.PostsLedger {
			entries := BuildPostingSet(policy, bill, party.Name, toOtherCharges(req.OtherCharges))
			if err := s.ledger.Post(ctx, tx, entries); err != nil {
				return err
			}
		}
		result = BillResult{BillID: bill.ID, DocumentNo: documentNo}
		return nil
	})
	if err != nil {
		return BillResult{}, err
	}
	s.record(ctx, actor, "bill.create", result.BillID, map[string]any{
		"document_no": result.DocumentNo,
		"kind":        string(req.Kind),
	})
	return result, nil
}

// Update fully reverses the prior application (stock restore plus ledger
// deletion), then reapplies the new cart against the same bill id and
// document number.
func (s *Service) Update(ctx context.Context, actor shared.Actor, billID int64, req BillRequest) (BillResult, error) {
	if err := req.Validate(); err != nil {
		return BillResult{}, err
	}
	policy, err := PolicyFor(req.Kind)
	if err != nil {
		return BillResult{}, err
	}

	var result BillResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.GetBillForUpdate(ctx, actor.FirmID, billID)
		if err != nil {
			return err
		}
		if existing.Status != StatusActive {
			return fmt.Errorf("%w: %s", ErrBillNotActive, existing.Status)
		}
		if existing.Kind != req.Kind {
			return fmt.Errorf("%w: %s", ErrUnknownVoucherKind, req.Kind)
		}
		if req.DocumentNo != "" && req.DocumentNo != existing.DocumentNo {
			return fmt.Errorf("%w: %s", ErrDocumentNoImmutable, req.DocumentNo)
		}
		party, err := tx.GetParty(ctx, actor.FirmID, req.PartyID)
		if err != nil {
			return err
		}
		firm, err := tx.GetFirm(ctx, actor.FirmID)
		if err != nil {
			return err
		}

		if err := s.reverseApplication(ctx, tx, actor.FirmID, policy, existing); err != nil {
			return err
		}
		if err := tx.DeleteLineItems(ctx, existing.ID); err != nil {
			return err
		}

		intraState := isIntraState(firm.StateCode, party.StateCode)
		lines, totals := computeCart(req, intraState)

		bill := existing
		bill.DocumentDate = req.DocumentDate
		bill.PartyID = party.ID
		bill.ReferenceNo = req.ReferenceNo
		bill.Narration = req.Narration
		bill.GrossTotal = totals.GrossTotal
		bill.NetTotal = totals.NetTotal
		bill.RoundOff = totals.RoundOff
		bill.CGST = totals.CGST
		bill.SGST = totals.SGST
		bill.IGST = totals.IGST
		bill.ReverseCharge = req.ReverseCharge

		if err := tx.UpdateBill(ctx, bill); err != nil {
			return err
		}
		if err := tx.InsertLineItems(ctx, bill.ID, lines); err != nil {
			return err
		}
		if err := s.applyStock(ctx, tx, actor.FirmID, policy, lines); err != nil {
			return err
		}
		if policy.PostsLedger {
			entries := BuildPostingSet(policy, bill, party.Name, toOtherCharges(req.OtherCharges))
			if err := s.ledger.Post(ctx, tx, entries); err != nil {
				return err
			}
		}
		result = BillResult{BillID: bill.ID, DocumentNo: bill.DocumentNo}
		return nil
	})
	if err != nil {
		return BillResult{}, err
	}
	s.record(ctx, actor, "bill.update", result.BillID, map[string]any{
		"document_no": result.DocumentNo,
		"kind":        string(req.Kind),
	})
	return result, nil
}

// Cancel reverses the bill's stock and ledger effects and marks it
// CANCELLED. Line items are kept for history.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, billID int64, reason string) error {
	return s.terminate(ctx, actor, billID, StatusCancelled, reason, "bill.cancel")
}

// Delete reverses the bill's effects and marks it DELETED.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, billID int64, reason string) error {
	return s.terminate(ctx, actor, billID, StatusDeleted, reason, "bill.delete")
}

func (s *Service) terminate(ctx context.Context, actor shared.Actor, billID int64, status BillStatus, reason, action string) error {
	var documentNo string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.GetBillForUpdate(ctx, actor.FirmID, billID)
		if err != nil {
			return err
		}
		if bill.Status != StatusActive {
			return fmt.Errorf("%w: %s", ErrBillNotActive, bill.Status)
		}
		policy, err := PolicyFor(bill.Kind)
		if err != nil {
			return err
		}
		if err := s.reverseApplication(ctx, tx, actor.FirmID, policy, bill); err != nil {
			return err
		}
		documentNo = bill.DocumentNo
		return tx.SetBillStatus(ctx, bill.ID, status, reason, actor.Username, s.now())
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor, action, billID, map[string]any{
		"document_no": documentNo,
		"reason":      reason,
	})
	return nil
}

// Get returns a bill with lines and ledger rows, firm-scoped.
func (s *Service) Get(ctx context.Context, actor shared.Actor, billID int64) (BillWithDetails, error) {
	return s.repo.GetBill(ctx, actor.FirmID, billID)
}

// List returns bill headers matching the filter, firm-scoped.
func (s *Service) List(ctx context.Context, actor shared.Actor, filter ListFilter) ([]Bill, error) {
	return s.repo.ListBills(ctx, actor.FirmID, filter)
}

// applyStock moves stock in the policy's direction for every cart line.
func (s *Service) applyStock(ctx context.Context, tx TxRepository, firmID int64, policy VoucherPolicy, lines []LineItem) error {
	for _, line := range lines {
		var err error
		if policy.StockOutbound {
			err = s.stock.Allocate(ctx, tx.Stock(), firmID, line.StockID, line.Batch, line.Qty, policy.MaterializeMissingBatch)
		} else {
			err = s.stock.Restore(ctx, tx.Stock(), firmID, line.StockID, line.Batch, line.Qty)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// reverseApplication undoes a bill's stock deltas in the opposite direction
// and removes its ledger rows. Reversal of an inbound kind decrements stock,
// so a batch consumed in the meantime surfaces ErrInsufficientStock and the
// transaction rolls back.
func (s *Service) reverseApplication(ctx context.Context, tx TxRepository, firmID int64, policy VoucherPolicy, bill Bill) error {
	lines, err := tx.ListLineItems(ctx, bill.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		var err error
		if policy.StockOutbound {
			err = s.stock.Restore(ctx, tx.Stock(), firmID, line.StockID, line.Batch, line.Qty)
		} else {
			err = s.stock.Allocate(ctx, tx.Stock(), firmID, line.StockID, line.Batch, line.Qty, policy.MaterializeMissingBatch)
		}
		if err != nil {
			return err
		}
	}
	if policy.PostsLedger {
		return s.ledger.Reverse(ctx, tx, bill.ID, bill.Kind)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action string, billID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		FirmID:   actor.FirmID,
		Actor:    actor.Username,
		Action:   action,
		Entity:   "bill",
		EntityID: fmt.Sprintf("%d", billID),
		Meta:     meta,
		At:       s.now(),
	})
}

// computeCart turns the request cart into persisted line items plus bill
// totals.
func computeCart(req BillRequest, intraState bool) ([]LineItem, BillTotals) {
	lines := make([]LineItem, 0, len(req.Cart))
	taxes := make([]LineTax, 0, len(req.Cart))
	for _, cart := range req.Cart {
		tax := ComputeLineTax(cart.Rate, cart.Qty, cart.DiscountPct, cart.GSTRate, intraState)
		taxes = append(taxes, tax)
		lines = append(lines, LineItem{
			StockID:     cart.StockID,
			Item:        cart.Item,
			Batch:       inventory.BatchKeyFor(cart.Batch),
			Qty:         cart.Qty,
			Rate:        cart.Rate,
			GSTRate:     cart.GSTRate,
			DiscountPct: cart.DiscountPct,
			Taxable:     tax.Taxable,
			CGST:        tax.CGST,
			SGST:        tax.SGST,
			IGST:        tax.IGST,
			LineTotal:   tax.LineTotal,
			HSN:         cart.HSN,
			UOM:         cart.UOM,
		})
	}
	totals := ComputeBillTotals(taxes, toOtherCharges(req.OtherCharges), req.ReverseCharge, intraState)
	return lines, totals
}

func toOtherCharges(inputs []ChargeInput) []OtherCharge {
	if len(inputs) == 0 {
		return nil
	}
	out := make([]OtherCharge, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, OtherCharge{Type: in.Type, Amount: in.Amount, GSTRate: in.GSTRate})
	}
	return out
}

// isIntraState compares the firm's GSTIN state code with the party's. An
// unregistered party with no state code is billed intra-state.
func isIntraState(firmState, partyState string) bool {
	if partyState == "" {
		return true
	}
	return firmState == partyState
}
