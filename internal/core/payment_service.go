package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PaymentService interface {
	// RecordPayment records a payment against a bill and appends the matching
	// shop-balance entry. idempotencyKey may be empty; when supplied, a repeat
	// call with the same key fails with DuplicatePaymentError instead of
	// double-charging.
	RecordPayment(ctx context.Context, billID int, paidAmount decimal.Decimal,
		paidDate time.Time, idempotencyKey string) (*Payment, error)
	GetPayments(ctx context.Context, billID int) ([]Payment, error)
	PendingAmount(ctx context.Context, billID int) (decimal.Decimal, error)
}

type paymentService struct {
	pool *pgxpool.Pool
}

// NewPaymentService constructs a PaymentService backed by PostgreSQL.
func NewPaymentService(pool *pgxpool.Pool) PaymentService {
	return &paymentService{pool: pool}
}

// RecordPayment validates and persists one payment plus one balance entry as
// a single atomic unit. The transaction runs serializable and locks the bill
// row, so the pending-amount and balance checks are evaluated against a
// snapshot no concurrent commit can invalidate: two payments against the
// same bill cannot both read a stale pending amount and jointly overpay.
func (s *paymentService) RecordPayment(ctx context.Context, billID int, paidAmount decimal.Decimal,
	paidDate time.Time, idempotencyKey string) (*Payment, error) {

	if paidAmount.IsZero() || paidAmount.IsNegative() {
		return nil, &ValidationError{Field: "paid_amount", Reason: "must be positive"}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, &StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	var billAmount decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT bill_amount FROM bills WHERE id = $1 FOR UPDATE", billID,
	).Scan(&billAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "bill", ID: billID}
		}
		return nil, &StorageError{Op: fmt.Sprintf("fetch bill %d", billID), Err: err}
	}

	var paidSoFar decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(SUM(paid_amount), 0) FROM payments WHERE bill_id = $1", billID,
	).Scan(&paidSoFar); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("sum payments for bill %d", billID), Err: err}
	}

	currentPending := billAmount.Sub(paidSoFar)
	newPending := currentPending.Sub(paidAmount)
	if newPending.IsNegative() {
		return nil, &OverpaymentError{BillID: billID, Pending: currentPending, Attempted: paidAmount}
	}

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM shop_balance",
	).Scan(&balance); err != nil {
		return nil, &StorageError{Op: "sum shop balance", Err: err}
	}
	// Cannot fail for a positive payment; kept for symmetry with payout
	// entries so every writer runs the same check.
	if balance.Add(paidAmount).IsNegative() {
		return nil, &InsufficientBalanceError{Balance: balance, Attempted: paidAmount}
	}

	var key *string
	if idempotencyKey != "" {
		key = &idempotencyKey
	}

	p := &Payment{}
	if key != nil {
		err = tx.QueryRow(ctx, `
			INSERT INTO payments (bill_id, paid_amount, paid_date, pending_after, idempotency_key)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (idempotency_key) DO NOTHING
			RETURNING id, bill_id, paid_amount, paid_date::text, pending_after, idempotency_key, created_at`,
			billID, paidAmount, paidDate.Format("2006-01-02"), newPending, key,
		).Scan(&p.ID, &p.BillID, &p.PaidAmount, &p.PaidDate, &p.PendingAfter, &p.IdempotencyKey, &p.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &DuplicatePaymentError{IdempotencyKey: idempotencyKey}
		}
	} else {
		err = tx.QueryRow(ctx, `
			INSERT INTO payments (bill_id, paid_amount, paid_date, pending_after)
			VALUES ($1, $2, $3, $4)
			RETURNING id, bill_id, paid_amount, paid_date::text, pending_after, idempotency_key, created_at`,
			billID, paidAmount, paidDate.Format("2006-01-02"), newPending,
		).Scan(&p.ID, &p.BillID, &p.PaidAmount, &p.PaidDate, &p.PendingAfter, &p.IdempotencyKey, &p.CreatedAt)
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("insert payment for bill %d", billID), Err: err}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO shop_balance (payment_id, amount, entry_date, description)
		VALUES ($1, $2, $3, $4)`,
		p.ID, paidAmount, paidDate.Format("2006-01-02"),
		fmt.Sprintf("Payment received for bill %d", billID),
	); err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("insert balance entry for payment %d", p.ID), Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &StorageError{Op: "commit payment", Err: err}
	}

	return p, nil
}

// GetPayments returns all payments recorded against a bill, oldest first.
func (s *paymentService) GetPayments(ctx context.Context, billID int) ([]Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, bill_id, paid_amount, paid_date::text, pending_after, idempotency_key, created_at
		FROM payments
		WHERE bill_id = $1
		ORDER BY id`,
		billID,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("fetch payments for bill %d", billID), Err: err}
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.PaidAmount, &p.PaidDate,
			&p.PendingAfter, &p.IdempotencyKey, &p.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan payment", Err: err}
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate payments", Err: err}
	}
	return payments, nil
}

// PendingAmount returns a bill's outstanding amount, derived from the
// recorded payments on every call.
func (s *paymentService) PendingAmount(ctx context.Context, billID int) (decimal.Decimal, error) {
	var billAmount decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT bill_amount FROM bills WHERE id = $1", billID,
	).Scan(&billAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, &NotFoundError{Entity: "bill", ID: billID}
		}
		return decimal.Zero, &StorageError{Op: fmt.Sprintf("fetch bill %d", billID), Err: err}
	}

	payments, err := s.GetPayments(ctx, billID)
	if err != nil {
		return decimal.Zero, err
	}
	return PendingAmount(billAmount, payments), nil
}
