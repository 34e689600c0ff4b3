package model

import (
	"regexp"
	"strings"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks the kind-specific required fields. It returns the first
// problem found as a *ValidationError.
func (s *ScheduledTransaction) Validate() error {
	if !s.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "must be transfer or bill_payment"}
	}

	switch s.Kind {
	case KindTransfer:
		if strings.TrimSpace(s.RecipientPhone) == "" {
			return &ValidationError{Field: "recipientPhone", Reason: "required for transfer"}
		}
	case KindBillPayment:
		if strings.TrimSpace(s.BillerType) == "" {
			return &ValidationError{Field: "billerType", Reason: "required for bill_payment"}
		}
		if strings.TrimSpace(s.AccountNumber) == "" {
			return &ValidationError{Field: "accountNumber", Reason: "required for bill_payment"}
		}
	}

	if !s.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be > 0"}
	}
	if !currencyRe.MatchString(s.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter uppercase code"}
	}
	if !s.Frequency.Valid() {
		return &ValidationError{Field: "frequency", Reason: "must be daily, weekly, monthly or yearly"}
	}
	if s.NextExecutionDate.IsZero() {
		return &ValidationError{Field: "nextExecutionDate", Reason: "required"}
	}
	return nil
}

// FromDraft builds an unsaved definition; the manager fills in identity and audit fields.
func FromDraft(d Draft) ScheduledTransaction {
	return ScheduledTransaction{
		Kind:              d.Kind,
		RecipientPhone:    strings.TrimSpace(d.RecipientPhone),
		RecipientName:     d.RecipientName,
		Memo:              d.Memo,
		BillerType:        strings.TrimSpace(d.BillerType),
		AccountNumber:     strings.TrimSpace(d.AccountNumber),
		Amount:            d.Amount,
		Currency:          d.Currency,
		Frequency:         d.Frequency,
		Description:       d.Description,
		NextExecutionDate: d.NextExecutionDate,
		IsActive:          d.IsActive,
	}
}
