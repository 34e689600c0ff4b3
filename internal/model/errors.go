package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for errors.Is checks; the typed errors below match them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("scheduled transaction not found")
	ErrPayment     = errors.New("payment rejected")
	ErrTimeout     = errors.New("payment timed out")
	ErrPersistence = errors.New("persistence failed")

	ErrUnknownReference = errors.New("payment reference not found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scheduled transaction %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PaymentError wraps a rejection or transport failure from the payment provider.
type PaymentError struct {
	Op  string
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

func (e *PaymentError) Is(target error) bool { return target == ErrPayment }

type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("TimeoutError: %s exceeded %s", e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
