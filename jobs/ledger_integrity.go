package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerIntegrityJob reports bills whose ledger entries do not balance.
// Entries are written inside the same transaction as the bill, so a hit
// here means either manual tampering or a bug worth paging on.
type LedgerIntegrityJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLedgerIntegrityJob constructs LedgerIntegrityJob.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{pool: pool, logger: logger}
}

const ledgerScanQuery = `
	SELECT voucher_id, firm_id, SUM(debit_amount) AS debits, SUM(credit_amount) AS credits
	FROM ledger_entries
	WHERE ($1 = 0 OR firm_id = $1)
	GROUP BY voucher_id, firm_id
	HAVING ABS(SUM(debit_amount) - SUM(credit_amount)) > 0.004`

// Handle processes TaskLedgerIntegrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	rows, err := j.pool.Query(ctx, ledgerScanQuery, payload.FirmID)
	if err != nil {
		return err
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		var voucherID, firmID int64
		var debits, credits float64
		if err := rows.Scan(&voucherID, &firmID, &debits, &credits); err != nil {
			return err
		}
		found++
		j.logger.Error("unbalanced ledger posting",
			slog.Int64("voucher_id", voucherID),
			slog.Int64("firm_id", firmID),
			slog.Float64("debits", debits),
			slog.Float64("credits", credits),
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	j.logger.Info("ledger integrity scan complete",
		slog.Int64("firm_id", payload.FirmID),
		slog.Int("violations", found),
	)
	return nil
}
