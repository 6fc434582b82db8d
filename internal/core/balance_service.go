package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BalanceService interface {
	// Balance returns the running total of all shop-balance entries, zero
	// when none exist.
	Balance(ctx context.Context) (decimal.Decimal, error)
	// GetStatement returns the entries dated within [from, to] with a running
	// balance that starts from the total of all earlier entries.
	GetStatement(ctx context.Context, from, to time.Time) ([]StatementLine, error)
	// RecordPayout appends a negative entry (cash leaving the shop). amount
	// is the positive payout value; the entry is stored with a negative sign.
	RecordPayout(ctx context.Context, amount decimal.Decimal, entryDate time.Time, description string) (*BalanceEntry, error)
}

type balanceService struct {
	pool *pgxpool.Pool
}

// NewBalanceService constructs a BalanceService backed by PostgreSQL.
func NewBalanceService(pool *pgxpool.Pool) BalanceService {
	return &balanceService{pool: pool}
}

func (s *balanceService) Balance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM shop_balance",
	).Scan(&balance); err != nil {
		return decimal.Zero, &StorageError{Op: "sum shop balance", Err: err}
	}
	return balance, nil
}

func (s *balanceService) GetStatement(ctx context.Context, from, to time.Time) ([]StatementLine, error) {
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")

	var opening decimal.Decimal
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM shop_balance WHERE entry_date < $1", fromStr,
	).Scan(&opening); err != nil {
		return nil, &StorageError{Op: "sum opening balance", Err: err}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, payment_id, amount, entry_date::text, description, created_at
		FROM shop_balance
		WHERE entry_date BETWEEN $1 AND $2
		ORDER BY entry_date, id`,
		fromStr, toStr,
	)
	if err != nil {
		return nil, &StorageError{Op: "fetch balance statement", Err: err}
	}
	defer rows.Close()

	running := opening
	var lines []StatementLine
	for rows.Next() {
		var e BalanceEntry
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Amount, &e.EntryDate,
			&e.Description, &e.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan balance entry", Err: err}
		}
		running = running.Add(e.Amount)
		lines = append(lines, StatementLine{Entry: e, Running: running})
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate balance entries", Err: err}
	}
	return lines, nil
}

// RecordPayout re-runs the non-negative balance check inside its own
// serializable transaction: it is the only writer of balance entries besides
// the payment path, and both must refuse to drive the balance below zero.
func (s *balanceService) RecordPayout(ctx context.Context, amount decimal.Decimal,
	entryDate time.Time, description string) (*BalanceEntry, error) {

	if amount.IsZero() || amount.IsNegative() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(description) == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}

	entryAmount := amount.Neg()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, &StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM shop_balance",
	).Scan(&balance); err != nil {
		return nil, &StorageError{Op: "sum shop balance", Err: err}
	}
	if balance.Add(entryAmount).IsNegative() {
		return nil, &InsufficientBalanceError{Balance: balance, Attempted: entryAmount}
	}

	e := &BalanceEntry{}
	if err := tx.QueryRow(ctx, `
		INSERT INTO shop_balance (amount, entry_date, description)
		VALUES ($1, $2, $3)
		RETURNING id, payment_id, amount, entry_date::text, description, created_at`,
		entryAmount, entryDate.Format("2006-01-02"), strings.TrimSpace(description),
	).Scan(&e.ID, &e.PaymentID, &e.Amount, &e.EntryDate, &e.Description, &e.CreatedAt); err != nil {
		return nil, &StorageError{Op: "insert payout entry", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &StorageError{Op: "commit payout", Err: err}
	}
	return e, nil
}
