package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans posted vouchers for unbalanced ledger entries.
	TaskLedgerIntegrity = "integrity:ledger"
	// TaskStockIntegrity scans stock items whose aggregate quantity drifted
	// from the sum of their batches.
	TaskStockIntegrity = "integrity:stock"
)

// LedgerIntegrityPayload scopes a ledger scan.
type LedgerIntegrityPayload struct {
	FirmID int64 `json:"firm_id"` // 0 scans all firms
}

// StockIntegrityPayload scopes a stock scan.
type StockIntegrityPayload struct {
	FirmID int64 `json:"firm_id"` // 0 scans all firms
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewStockIntegrityTask constructs an Asynq task.
func NewStockIntegrityTask(payload StockIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockIntegrity, data), nil
}
