package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/bahikhata-erp/bahikhata/internal/inventory"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/firms"
	"github.com/bahikhata-erp/bahikhata/internal/masterdata/parties"
	"github.com/bahikhata-erp/bahikhata/internal/platform/db"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// RepositoryPort abstracts repository usage for the coordinator.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBill(ctx context.Context, firmID, billID int64) (BillWithDetails, error)
	ListBills(ctx context.Context, firmID int64, filter ListFilter) ([]Bill, error)
}

// TxRepository exposes the operations available inside one voucher
// transaction. Everything a create, update or cancel touches goes through
// this port so the whole operation commits or rolls back as a unit.
type TxRepository interface {
	GetFirm(ctx context.Context, firmID int64) (firms.Firm, error)
	GetParty(ctx context.Context, firmID, partyID int64) (parties.Party, error)

	NextSequence(ctx context.Context, firmID int64, fy shared.FinancialYear, kind VoucherKind) (int64, error)
	DocumentNoExists(ctx context.Context, firmID int64, number string, excludeBillID int64) (bool, error)

	InsertBill(ctx context.Context, bill Bill) (int64, error)
	UpdateBill(ctx context.Context, bill Bill) error
	GetBillForUpdate(ctx context.Context, firmID, billID int64) (Bill, error)
	SetBillStatus(ctx context.Context, billID int64, status BillStatus, reason, actor string, at time.Time) error

	InsertLineItems(ctx context.Context, billID int64, lines []LineItem) error
	ListLineItems(ctx context.Context, billID int64) ([]LineItem, error)
	DeleteLineItems(ctx context.Context, billID int64) error

	InsertLedgerEntries(ctx context.Context, entries []LedgerEntry) error
	DeleteLedgerEntries(ctx context.Context, voucherID int64, kind VoucherKind) error

	Stock() inventory.TxStore
}

// Repository persists billing data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, stock: inventory.NewTxStore(tx)})
	})
}

const billColumns = `id, firm_id, document_no, document_date, voucher_kind, party_id, reference_no, narration,
gross_total, net_total, round_off, cgst, sgst, igst, reverse_charge, status,
cancel_reason, cancelled_by, cancelled_at, created_by, created_at, updated_at`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.FirmID, &b.DocumentNo, &b.DocumentDate, &b.Kind, &b.PartyID, &b.ReferenceNo, &b.Narration,
		&b.GrossTotal, &b.NetTotal, &b.RoundOff, &b.CGST, &b.SGST, &b.IGST, &b.ReverseCharge, &b.Status,
		&b.CancelReason, &b.CancelledBy, &b.CancelledAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// GetBill fetches a bill with its lines and ledger rows.
func (r *Repository) GetBill(ctx context.Context, firmID, billID int64) (BillWithDetails, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1 AND firm_id=$2`, billID, firmID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BillWithDetails{}, ErrBillNotFound
		}
		return BillWithDetails{}, err
	}

	var (
		lines  []LineItem
		ledger []LedgerEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = listLineItems(gctx, r.pool, billID)
		return err
	})
	g.Go(func() error {
		var err error
		ledger, err = listLedgerEntries(gctx, r.pool, billID, bill.Kind)
		return err
	})
	if err := g.Wait(); err != nil {
		return BillWithDetails{}, err
	}
	return BillWithDetails{Bill: bill, Lines: lines, Ledger: ledger}, nil
}

// ListBills returns bill headers matching the filter, newest first.
func (r *Repository) ListBills(ctx context.Context, firmID int64, filter ListFilter) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE firm_id=$1`
	args := []any{firmID}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(` AND voucher_kind=$%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND document_date >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND document_date <= $%d`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY document_date DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

type txRepository struct {
	tx    pgx.Tx
	stock *inventory.TxStoreRepo
}

func (r *txRepository) Stock() inventory.TxStore {
	return r.stock
}

func (r *txRepository) GetFirm(ctx context.Context, firmID int64) (firms.Firm, error) {
	var f firms.Firm
	err := r.tx.QueryRow(ctx, `SELECT id, name, gstin, state_code, address, created_at FROM firms WHERE id=$1`, firmID).
		Scan(&f.ID, &f.Name, &f.GSTIN, &f.StateCode, &f.Address, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return firms.Firm{}, ErrFirmNotFound
		}
		return firms.Firm{}, err
	}
	return f, nil
}

func (r *txRepository) GetParty(ctx context.Context, firmID, partyID int64) (parties.Party, error) {
	var p parties.Party
	err := r.tx.QueryRow(ctx, `SELECT id, firm_id, name, address, gstin, state, state_code, created_at, updated_at
FROM parties WHERE id=$1 AND firm_id=$2`, partyID, firmID).
		Scan(&p.ID, &p.FirmID, &p.Name, &p.Address, &p.GSTIN, &p.State, &p.StateCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return parties.Party{}, parties.ErrPartyNotFound
		}
		return parties.Party{}, err
	}
	return p, nil
}

// NextSequence advances the (firm, year, kind) counter with a single atomic
// statement. The row is created lazily on first use; concurrent callers
// serialize on the row and never observe the same value.
func (r *txRepository) NextSequence(ctx context.Context, firmID int64, fy shared.FinancialYear, kind VoucherKind) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO financial_year_sequences (firm_id, financial_year, voucher_kind, last_sequence)
VALUES ($1, $2, $3, 1)
ON CONFLICT (firm_id, financial_year, voucher_kind)
DO UPDATE SET last_sequence = financial_year_sequences.last_sequence + 1, updated_at = NOW()
RETURNING last_sequence`, firmID, fy, kind).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *txRepository) DocumentNoExists(ctx context.Context, firmID int64, number string, excludeBillID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bills WHERE firm_id=$1 AND document_no=$2 AND id<>$3 AND status <> 'DELETED')`,
		firmID, number, excludeBillID).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertBill(ctx context.Context, bill Bill) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO bills (firm_id, document_no, document_date, voucher_kind, party_id, reference_no, narration,
gross_total, net_total, round_off, cgst, sgst, igst, reverse_charge, status, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
RETURNING id`,
		bill.FirmID, bill.DocumentNo, bill.DocumentDate, bill.Kind, bill.PartyID, bill.ReferenceNo, bill.Narration,
		bill.GrossTotal, bill.NetTotal, bill.RoundOff, bill.CGST, bill.SGST, bill.IGST, bill.ReverseCharge, bill.Status, bill.CreatedBy).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateDocumentNo, bill.DocumentNo)
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) UpdateBill(ctx context.Context, bill Bill) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE bills SET document_date=$2, party_id=$3, reference_no=$4, narration=$5,
gross_total=$6, net_total=$7, round_off=$8, cgst=$9, sgst=$10, igst=$11, reverse_charge=$12, updated_at=NOW()
WHERE id=$1`,
		bill.ID, bill.DocumentDate, bill.PartyID, bill.ReferenceNo, bill.Narration,
		bill.GrossTotal, bill.NetTotal, bill.RoundOff, bill.CGST, bill.SGST, bill.IGST, bill.ReverseCharge)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *txRepository) GetBillForUpdate(ctx context.Context, firmID, billID int64) (Bill, error) {
	bill, err := scanBill(r.tx.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1 AND firm_id=$2 FOR UPDATE`, billID, firmID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bill{}, ErrBillNotFound
		}
		return Bill{}, err
	}
	return bill, nil
}

func (r *txRepository) SetBillStatus(ctx context.Context, billID int64, status BillStatus, reason, actor string, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE bills SET status=$2, cancel_reason=$3, cancelled_by=$4, cancelled_at=$5, updated_at=NOW() WHERE id=$1`,
		billID, status, reason, actor, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *txRepository) InsertLineItems(ctx context.Context, billID int64, lines []LineItem) error {
	for _, line := range lines {
		var batch *string
		if line.Batch.Named() {
			label := line.Batch.Label()
			batch = &label
		}
		_, err := r.tx.Exec(ctx, `INSERT INTO line_items (bill_id, stock_id, item, batch, qty, rate, gst_rate, discount_pct,
taxable, cgst, sgst, igst, line_total, hsn, uom)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			billID, line.StockID, line.Item, batch, line.Qty, line.Rate, line.GSTRate, line.DiscountPct,
			line.Taxable, line.CGST, line.SGST, line.IGST, line.LineTotal, line.HSN, line.UOM)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) ListLineItems(ctx context.Context, billID int64) ([]LineItem, error) {
	return listLineItems(ctx, r.tx, billID)
}

func (r *txRepository) DeleteLineItems(ctx context.Context, billID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM line_items WHERE bill_id=$1`, billID)
	return err
}

func (r *txRepository) InsertLedgerEntries(ctx context.Context, entries []LedgerEntry) error {
	for _, e := range entries {
		_, err := r.tx.Exec(ctx, `INSERT INTO ledger_entries (firm_id, voucher_id, voucher_kind, account_head, account_type,
debit_amount, credit_amount, transaction_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.FirmID, e.VoucherID, e.VoucherKind, e.AccountHead, e.AccountType, e.Debit, e.Credit, e.TransactionDate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteLedgerEntries(ctx context.Context, voucherID int64, kind VoucherKind) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE voucher_id=$1 AND voucher_kind=$2`, voucherID, kind)
	return err
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listLineItems(ctx context.Context, q rowQuerier, billID int64) ([]LineItem, error) {
	rows, err := q.Query(ctx, `SELECT id, bill_id, stock_id, item, batch, qty, rate, gst_rate, discount_pct,
taxable, cgst, sgst, igst, line_total, hsn, uom
FROM line_items WHERE bill_id=$1 ORDER BY id ASC`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []LineItem
	for rows.Next() {
		var (
			line  LineItem
			batch *string
		)
		if err := rows.Scan(&line.ID, &line.BillID, &line.StockID, &line.Item, &batch, &line.Qty, &line.Rate, &line.GSTRate, &line.DiscountPct,
			&line.Taxable, &line.CGST, &line.SGST, &line.IGST, &line.LineTotal, &line.HSN, &line.UOM); err != nil {
			return nil, err
		}
		if batch != nil {
			line.Batch = inventory.BatchKeyFor(*batch)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func listLedgerEntries(ctx context.Context, q rowQuerier, voucherID int64, kind VoucherKind) ([]LedgerEntry, error) {
	rows, err := q.Query(ctx, `SELECT id, firm_id, voucher_id, voucher_kind, account_head, account_type,
debit_amount, credit_amount, transaction_date
FROM ledger_entries WHERE voucher_id=$1 AND voucher_kind=$2 ORDER BY id ASC`, voucherID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.FirmID, &e.VoucherID, &e.VoucherKind, &e.AccountHead, &e.AccountType,
			&e.Debit, &e.Credit, &e.TransactionDate); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
