package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntegrityTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{FirmID: 7})
	require.NoError(t, err)
	require.Equal(t, TaskLedgerIntegrity, task.Type())

	var payload LedgerIntegrityPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, int64(7), payload.FirmID)
}

func TestIntegrityJobsSkipRetryOnBadPayload(t *testing.T) {
	bad := asynq.NewTask(TaskLedgerIntegrity, []byte("{"))

	ledger := NewLedgerIntegrityJob(nil, discardLogger())
	require.ErrorIs(t, ledger.Handle(context.Background(), bad), asynq.SkipRetry)

	stock := NewStockIntegrityJob(nil, discardLogger())
	require.ErrorIs(t, stock.Handle(context.Background(), bad), asynq.SkipRetry)
}

// The scanners run raw SQL against tables owned by the billing and inventory
// repositories. Pin the column names so a schema rename breaks here instead
// of in a failed nightly run.
func TestScanQueriesNameSchemaColumns(t *testing.T) {
	for _, col := range []string{"voucher_id", "firm_id", "debit_amount", "credit_amount"} {
		require.Contains(t, ledgerScanQuery, col)
	}
	require.NotContains(t, ledgerScanQuery, "bill_id")

	for _, col := range []string{"stock_id", "firm_id", "qty"} {
		require.Contains(t, stockScanQuery, col)
	}
}
