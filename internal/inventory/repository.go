package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads stock data in PostgreSQL outside of voucher transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a stock item with its batches.
func (r *Repository) Get(ctx context.Context, firmID, stockID int64) (StockItem, error) {
	return loadStock(ctx, r.pool, firmID, stockID, false)
}

// List returns the firm's stock items without batch detail.
func (r *Repository) List(ctx context.Context, firmID int64, limit int) ([]StockItem, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, firm_id, item, hsn, uom, gst_rate, qty, updated_at
FROM stock_items WHERE firm_id=$1 ORDER BY item ASC LIMIT $2`, firmID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StockItem
	for rows.Next() {
		var s StockItem
		if err := rows.Scan(&s.ID, &s.FirmID, &s.Item, &s.HSN, &s.UOM, &s.GSTRate, &s.Qty, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// stockQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type stockQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadStock(ctx context.Context, q stockQuerier, firmID, stockID int64, forUpdate bool) (StockItem, error) {
	query := `SELECT id, firm_id, item, hsn, uom, gst_rate, qty, updated_at FROM stock_items WHERE id=$1 AND firm_id=$2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s StockItem
	err := q.QueryRow(ctx, query, stockID, firmID).
		Scan(&s.ID, &s.FirmID, &s.Item, &s.HSN, &s.UOM, &s.GSTRate, &s.Qty, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockItem{}, ErrStockNotFound
		}
		return StockItem{}, err
	}
	rows, err := q.Query(ctx, `SELECT label, qty, rate, mrp, expiry FROM stock_batches WHERE stock_id=$1 ORDER BY position ASC`, stockID)
	if err != nil {
		return StockItem{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			label *string
			b     Batch
		)
		if err := rows.Scan(&label, &b.Qty, &b.Rate, &b.MRP, &b.Expiry); err != nil {
			return StockItem{}, err
		}
		if label != nil {
			b.Key = BatchKeyFor(*label)
		}
		s.Batches = append(s.Batches, b)
	}
	return s, rows.Err()
}

// TxStoreRepo implements TxStore on top of a caller-owned pgx transaction.
type TxStoreRepo struct {
	tx pgx.Tx
}

// NewTxStore binds a TxStore to the given transaction.
func NewTxStore(tx pgx.Tx) *TxStoreRepo {
	return &TxStoreRepo{tx: tx}
}

// GetStockForUpdate locks the stock row for the duration of the transaction.
// Concurrent voucher operations against the same stock item serialize here.
func (r *TxStoreRepo) GetStockForUpdate(ctx context.Context, firmID, stockID int64) (StockItem, error) {
	return loadStock(ctx, r.tx, firmID, stockID, true)
}

// SaveBatches replaces the batch list wholesale and writes the recomputed
// aggregate in the same statement batch, keeping the sum invariant inside
// the row lock.
func (r *TxStoreRepo) SaveBatches(ctx context.Context, stockID int64, batches []Batch, aggregateQty float64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM stock_batches WHERE stock_id=$1`, stockID); err != nil {
		return err
	}
	for pos, b := range batches {
		var label *string
		if b.Key.Named() {
			l := b.Key.Label()
			label = &l
		}
		if _, err := r.tx.Exec(ctx, `INSERT INTO stock_batches (stock_id, position, label, qty, rate, mrp, expiry)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, stockID, pos, label, b.Qty, b.Rate, b.MRP, b.Expiry); err != nil {
			return err
		}
	}
	_, err := r.tx.Exec(ctx, `UPDATE stock_items SET qty=$2, updated_at=NOW() WHERE id=$1`, stockID, aggregateQty)
	return err
}
