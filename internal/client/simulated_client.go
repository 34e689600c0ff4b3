package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// SimulatedClient accepts every request after an optional delay. It stands in
// for the provider in local runs.
type SimulatedClient struct {
	Latency time.Duration
}

func (c SimulatedClient) SubmitTransfer(ctx context.Context, phone string, amount decimal.Decimal, currency, memo string) (model.PaymentResult, error) {
	if err := c.wait(ctx); err != nil {
		return model.PaymentResult{}, &model.PaymentError{Op: "submit transfer", Err: err}
	}
	return model.PaymentResult{ReferenceID: "txn_" + uuid.NewString(), Status: model.ProviderSuccessful}, nil
}

func (c SimulatedClient) SubmitBillPayment(ctx context.Context, billerType, accountNumber string, amount decimal.Decimal, currency string) (model.PaymentResult, error) {
	if err := c.wait(ctx); err != nil {
		return model.PaymentResult{}, &model.PaymentError{Op: "submit bill payment", Err: err}
	}
	return model.PaymentResult{ReferenceID: "bill_" + uuid.NewString(), Status: model.ProviderSuccessful}, nil
}

// TransferStatus reports every reference this client could have issued as settled.
func (c SimulatedClient) TransferStatus(ctx context.Context, referenceID string) (model.PaymentStatus, error) {
	if err := ctx.Err(); err != nil {
		return model.PaymentStatus{}, &model.PaymentError{Op: "transfer status", Err: err}
	}
	if !strings.HasPrefix(referenceID, "txn_") && !strings.HasPrefix(referenceID, "bill_") {
		return model.PaymentStatus{}, fmt.Errorf("%w: %s", model.ErrUnknownReference, referenceID)
	}
	return model.PaymentStatus{ReferenceID: referenceID, Status: model.ProviderSuccessful}, nil
}

func (c SimulatedClient) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
