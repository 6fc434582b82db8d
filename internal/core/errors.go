package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or out-of-range input. It is always
// returned before any write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// OverpaymentError reports a payment exceeding the bill's outstanding
// balance. Pending is the outstanding amount at the time of the check so the
// caller can display it.
type OverpaymentError struct {
	BillID    int
	Pending   decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds pending amount %s on bill %d",
		e.Attempted.StringFixed(2), e.Pending.StringFixed(2), e.BillID)
}

// InsufficientBalanceError reports a ledger entry that would drive the shop
// balance negative.
type InsufficientBalanceError struct {
	Balance   decimal.Decimal
	Attempted decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("entry of %s would drive shop balance %s negative",
		e.Attempted.StringFixed(2), e.Balance.StringFixed(2))
}

// StorageError wraps an I/O or transaction failure from the database layer.
// A StorageError from a multi-row write guarantees no partial row set was
// persisted; retry safety is the caller's concern.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DuplicatePaymentError reports an idempotency key that has already been
// recorded against a bill.
type DuplicatePaymentError struct {
	IdempotencyKey string
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("duplicate payment: idempotency key %s already exists", e.IdempotencyKey)
}
