package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockIntegrityJob reports stock items whose aggregate quantity differs
// from the sum of their batch quantities.
type StockIntegrityJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStockIntegrityJob constructs StockIntegrityJob.
func NewStockIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *StockIntegrityJob {
	return &StockIntegrityJob{pool: pool, logger: logger}
}

const stockScanQuery = `
	SELECT s.id, s.firm_id, s.qty, COALESCE(SUM(b.qty), 0) AS batch_qty
	FROM stock_items s
	LEFT JOIN stock_batches b ON b.stock_id = s.id
	WHERE ($1 = 0 OR s.firm_id = $1)
	GROUP BY s.id, s.firm_id, s.qty
	HAVING ABS(s.qty - COALESCE(SUM(b.qty), 0)) > 0.000001`

// Handle processes TaskStockIntegrity tasks.
func (j *StockIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload StockIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	rows, err := j.pool.Query(ctx, stockScanQuery, payload.FirmID)
	if err != nil {
		return err
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		var stockID, firmID int64
		var itemQty, batchQty float64
		if err := rows.Scan(&stockID, &firmID, &itemQty, &batchQty); err != nil {
			return err
		}
		found++
		j.logger.Error("stock aggregate drift",
			slog.Int64("stock_id", stockID),
			slog.Int64("firm_id", firmID),
			slog.Float64("item_qty", itemQty),
			slog.Float64("batch_qty", batchQty),
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	j.logger.Info("stock integrity scan complete",
		slog.Int64("firm_id", payload.FirmID),
		slog.Int("violations", found),
	)
	return nil
}
