package cache

import (
	"context"
	"errors"
	"time"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt is the short-lived record of a successful execution, kept so the
// wallet UI can show a confirmation without loading full history.
type Receipt struct {
	ExecutionID            string    `json:"executionId"`
	ScheduledTransactionID string    `json:"scheduledTransactionId"`
	ReferenceID            string    `json:"referenceId"`
	ProviderStatus         string    `json:"providerStatus,omitempty"`
	ExecutedAt             time.Time `json:"executedAt"`
}

type ReceiptCache interface {
	StoreReceipt(ctx context.Context, r Receipt) error
	GetReceipt(ctx context.Context, executionID string) (Receipt, error)
}

func ReceiptFor(exec model.TransactionExecution) Receipt {
	return Receipt{
		ExecutionID:            exec.ID,
		ScheduledTransactionID: exec.ScheduledTransactionID,
		ReferenceID:            exec.ReferenceID,
		ProviderStatus:         exec.ProviderStatus,
		ExecutedAt:             exec.ExecutedAt,
	}
}
