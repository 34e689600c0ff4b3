package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindTransfer    Kind = "transfer"
	KindBillPayment Kind = "bill_payment"
)

func (k Kind) Valid() bool {
	return k == KindTransfer || k == KindBillPayment
}

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

type ExecutionStatus string

const (
	ExecPending ExecutionStatus = "pending"
	ExecSuccess ExecutionStatus = "success"
	ExecFailed  ExecutionStatus = "failed"
)

// ScheduledTransaction is a recurring payment intent. ID, CreatedAt and
// ExecutionHistory are owned by the manager and never set by callers.
type ScheduledTransaction struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	RecipientPhone string `json:"recipientPhone,omitempty"`
	RecipientName  string `json:"recipientName,omitempty"`
	Memo           string `json:"memo,omitempty"`

	BillerType    string `json:"billerType,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`

	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Frequency   Frequency       `json:"frequency"`
	Description string          `json:"description,omitempty"`

	NextExecutionDate time.Time  `json:"nextExecutionDate"`
	IsActive          bool       `json:"isActive"`
	LastExecuted      *time.Time `json:"lastExecuted,omitempty"`

	CreatedAt        time.Time              `json:"createdAt"`
	ExecutionHistory []TransactionExecution `json:"executionHistory"`
}

// Clone returns a deep copy so callers cannot mutate manager state.
func (s ScheduledTransaction) Clone() ScheduledTransaction {
	out := s
	if s.LastExecuted != nil {
		t := *s.LastExecuted
		out.LastExecuted = &t
	}
	out.ExecutionHistory = make([]TransactionExecution, len(s.ExecutionHistory))
	copy(out.ExecutionHistory, s.ExecutionHistory)
	return out
}

type TransactionExecution struct {
	ID                     string          `json:"id"`
	ScheduledTransactionID string          `json:"scheduledTransactionId"`
	ExecutedAt             time.Time       `json:"executedAt"`
	Status                 ExecutionStatus `json:"status"`
	ErrorMessage           string          `json:"errorMessage,omitempty"`
	ReferenceID            string          `json:"referenceId,omitempty"`
	ProviderStatus         string          `json:"providerStatus,omitempty"`
}

// Draft carries the caller-supplied fields of a new definition.
type Draft struct {
	Kind           Kind            `json:"kind"`
	RecipientPhone string          `json:"recipientPhone,omitempty"`
	RecipientName  string          `json:"recipientName,omitempty"`
	Memo           string          `json:"memo,omitempty"`
	BillerType     string          `json:"billerType,omitempty"`
	AccountNumber  string          `json:"accountNumber,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Frequency      Frequency       `json:"frequency"`
	Description    string          `json:"description,omitempty"`

	NextExecutionDate time.Time `json:"nextExecutionDate"`
	IsActive          bool      `json:"isActive"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Kind              *Kind            `json:"kind,omitempty"`
	RecipientPhone    *string          `json:"recipientPhone,omitempty"`
	RecipientName     *string          `json:"recipientName,omitempty"`
	Memo              *string          `json:"memo,omitempty"`
	BillerType        *string          `json:"billerType,omitempty"`
	AccountNumber     *string          `json:"accountNumber,omitempty"`
	Amount            *decimal.Decimal `json:"amount,omitempty"`
	Currency          *string          `json:"currency,omitempty"`
	Frequency         *Frequency       `json:"frequency,omitempty"`
	Description       *string          `json:"description,omitempty"`
	NextExecutionDate *time.Time       `json:"nextExecutionDate,omitempty"`
	IsActive          *bool            `json:"isActive,omitempty"`
}

func (p Patch) ApplyTo(s *ScheduledTransaction) {
	if p.Kind != nil {
		s.Kind = *p.Kind
	}
	if p.RecipientPhone != nil {
		s.RecipientPhone = *p.RecipientPhone
	}
	if p.RecipientName != nil {
		s.RecipientName = *p.RecipientName
	}
	if p.Memo != nil {
		s.Memo = *p.Memo
	}
	if p.BillerType != nil {
		s.BillerType = *p.BillerType
	}
	if p.AccountNumber != nil {
		s.AccountNumber = *p.AccountNumber
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Frequency != nil {
		s.Frequency = *p.Frequency
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.NextExecutionDate != nil {
		s.NextExecutionDate = *p.NextExecutionDate
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}
