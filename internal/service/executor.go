package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

const DefaultPaymentTimeout = 30 * time.Second

type PaymentClient interface {
	SubmitTransfer(ctx context.Context, phone string, amount decimal.Decimal, currency, memo string) (model.PaymentResult, error)
	SubmitBillPayment(ctx context.Context, billerType, accountNumber string, amount decimal.Decimal, currency string) (model.PaymentResult, error)
}

type Hook func(ctx context.Context, def model.ScheduledTransaction, exec model.TransactionExecution) error

// Executor performs one payment attempt for a due definition and resolves it
// to a success or failed execution record. It never returns a pending record.
type Executor struct {
	client  PaymentClient
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	onSuccess Hook
	onFailed  Hook
}

func NewExecutor(client PaymentClient, timeout time.Duration, log zerolog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultPaymentTimeout
	}
	return &Executor{
		client:  client,
		timeout: timeout,
		now:     time.Now,
		log:     log,
	}
}

func (e *Executor) WithHooks(onSuccess, onFailed Hook) *Executor {
	e.onSuccess = onSuccess
	e.onFailed = onFailed
	return e
}

func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

func (e *Executor) Execute(ctx context.Context, def model.ScheduledTransaction) model.TransactionExecution {
	exec := model.TransactionExecution{
		ID:                     uuid.NewString(),
		ScheduledTransactionID: def.ID,
		ExecutedAt:             e.now(),
		Status:                 model.ExecPending,
	}

	// An in-flight payment outlives scheduler shutdown; only the timeout bounds it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	start := time.Now()
	res, err := e.call(callCtx, def)
	if err != nil && isTimeout(callCtx, err) {
		err = &model.TimeoutError{Op: string(def.Kind), After: e.timeout}
	}
	if err == nil && res.Status == model.ProviderFailed {
		err = &model.PaymentError{Op: string(def.Kind), Err: fmt.Errorf("provider reported %s for %s", res.Status, res.ReferenceID)}
	}

	ev := e.log.With().
		Str("scheduled_id", def.ID).
		Str("execution_id", exec.ID).
		Str("kind", string(def.Kind)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Logger()

	if err != nil {
		exec.Status = model.ExecFailed
		exec.ErrorMessage = err.Error()
		ev.Warn().Err(err).Msg("scheduled payment failed")
		e.runHook(ctx, e.onFailed, def, exec)
		return exec
	}

	// Accepted-but-unsettled counts as success for scheduling purposes.
	exec.Status = model.ExecSuccess
	exec.ReferenceID = res.ReferenceID
	exec.ProviderStatus = res.Status
	ev.Info().Str("reference_id", res.ReferenceID).Str("provider_status", res.Status).Msg("scheduled payment submitted")
	e.runHook(ctx, e.onSuccess, def, exec)
	return exec
}

type outcome struct {
	res model.PaymentResult
	err error
}

// call bounds dispatch by ctx even when the client ignores it. A late answer
// from such a client is discarded.
func (e *Executor) call(ctx context.Context, def model.ScheduledTransaction) (model.PaymentResult, error) {
	done := make(chan outcome, 1)
	go func() {
		res, err := e.dispatch(ctx, def)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return model.PaymentResult{}, &model.PaymentError{Op: string(def.Kind), Err: ctx.Err()}
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (e *Executor) dispatch(ctx context.Context, def model.ScheduledTransaction) (res model.PaymentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.PaymentError{Op: string(def.Kind), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	switch def.Kind {
	case model.KindTransfer:
		return e.client.SubmitTransfer(ctx, def.RecipientPhone, def.Amount, def.Currency, memoFor(def))
	case model.KindBillPayment:
		return e.client.SubmitBillPayment(ctx, def.BillerType, def.AccountNumber, def.Amount, def.Currency)
	default:
		return model.PaymentResult{}, fmt.Errorf("unsupported kind %q", def.Kind)
	}
}

func (e *Executor) runHook(ctx context.Context, h Hook, def model.ScheduledTransaction, exec model.TransactionExecution) {
	if h == nil {
		return
	}
	if err := h(context.WithoutCancel(ctx), def, exec); err != nil {
		e.log.Warn().Err(err).Str("execution_id", exec.ID).Msg("execution hook failed")
	}
}

func memoFor(def model.ScheduledTransaction) string {
	if def.Memo != "" {
		return def.Memo
	}
	return def.Description
}
