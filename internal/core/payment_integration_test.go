package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopledger/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func mustCreateBill(t *testing.T, pool *pgxpool.Pool, amount string) *core.Bill {
	t.Helper()
	w := mustCreateWholesaler(t, pool, "Sharma Traders "+uuid.NewString()[:8])
	bill, err := core.NewBillService(pool).CreateBill(context.Background(), w.ID,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), dec("50.00"), dec(amount),
		[]core.ProductInput{{Name: "Stock", Quantity: 1, Rate: dec(amount)}})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func TestRecordPayment_PartialThenSettled(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "1000.00")
	payments := core.NewPaymentService(pool)
	balance := core.NewBalanceService(pool)
	paidDate := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	first, err := payments.RecordPayment(ctx, bill.ID, dec("400.00"), paidDate, "")
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if !first.PendingAfter.Equal(dec("600.00")) {
		t.Errorf("pending after first payment = %s, want 600.00", first.PendingAfter)
	}
	pending, err := payments.PendingAmount(ctx, bill.ID)
	if err != nil {
		t.Fatalf("PendingAmount: %v", err)
	}
	if !pending.Equal(dec("600.00")) {
		t.Errorf("pending = %s, want 600.00", pending)
	}
	bal, err := balance.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !bal.Equal(dec("400.00")) {
		t.Errorf("shop balance = %s, want 400.00", bal)
	}

	second, err := payments.RecordPayment(ctx, bill.ID, dec("600.00"), paidDate, "")
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if !second.PendingAfter.Equal(dec("0.00")) {
		t.Errorf("pending after second payment = %s, want 0.00", second.PendingAfter)
	}
	pending, _ = payments.PendingAmount(ctx, bill.ID)
	if !pending.IsZero() {
		t.Errorf("pending = %s, want 0", pending)
	}
	bal, _ = balance.Balance(ctx)
	if !bal.Equal(dec("1000.00")) {
		t.Errorf("shop balance = %s, want 1000.00", bal)
	}

	// Each payment produced exactly one balance entry.
	if n := countRows(t, pool, "shop_balance"); n != 2 {
		t.Errorf("shop_balance has %d rows, want 2", n)
	}
}

func TestRecordPayment_OverpaymentRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "1000.00")
	payments := core.NewPaymentService(pool)
	paidDate := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	if _, err := payments.RecordPayment(ctx, bill.ID, dec("400.00"), paidDate, ""); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if _, err := payments.RecordPayment(ctx, bill.ID, dec("600.00"), paidDate, ""); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	paymentsBefore := countRows(t, pool, "payments")
	balanceBefore := countRows(t, pool, "shop_balance")

	_, err := payments.RecordPayment(ctx, bill.ID, dec("1001.00"), paidDate, "")
	var op *core.OverpaymentError
	if !errors.As(err, &op) {
		t.Fatalf("expected OverpaymentError, got %v", err)
	}
	if !op.Pending.IsZero() {
		t.Errorf("reported pending = %s, want 0", op.Pending)
	}
	if !op.Attempted.Equal(dec("1001.00")) {
		t.Errorf("reported attempted = %s, want 1001.00", op.Attempted)
	}

	// Rejection left zero new rows behind.
	if n := countRows(t, pool, "payments"); n != paymentsBefore {
		t.Errorf("payments rows changed: %d -> %d", paymentsBefore, n)
	}
	if n := countRows(t, pool, "shop_balance"); n != balanceBefore {
		t.Errorf("shop_balance rows changed: %d -> %d", balanceBefore, n)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "100.00")
	payments := core.NewPaymentService(pool)

	for _, amount := range []string{"0", "-10.00"} {
		_, err := payments.RecordPayment(ctx, bill.ID, dec(amount), time.Now(), "")
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("amount %s: expected ValidationError, got %v", amount, err)
		}
	}

	if n := countRows(t, pool, "payments"); n != 0 {
		t.Errorf("payments table has %d rows, want 0", n)
	}
	if n := countRows(t, pool, "shop_balance"); n != 0 {
		t.Errorf("shop_balance table has %d rows, want 0", n)
	}
}

func TestRecordPayment_UnknownBill(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	payments := core.NewPaymentService(pool)
	_, err := payments.RecordPayment(context.Background(), 9999, dec("10.00"), time.Now(), "")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRecordPayment_Idempotency(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "1000.00")
	payments := core.NewPaymentService(pool)
	key := uuid.NewString()

	first, err := payments.RecordPayment(ctx, bill.ID, dec("400.00"), time.Now(), key)
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if first.IdempotencyKey == nil || *first.IdempotencyKey != key {
		t.Errorf("idempotency key not stored: %v", first.IdempotencyKey)
	}

	_, err = payments.RecordPayment(ctx, bill.ID, dec("400.00"), time.Now(), key)
	var dup *core.DuplicatePaymentError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePaymentError, got %v", err)
	}

	pending, _ := payments.PendingAmount(ctx, bill.ID)
	if !pending.Equal(dec("600.00")) {
		t.Errorf("pending = %s, want 600.00 (duplicate must not double-charge)", pending)
	}
	if n := countRows(t, pool, "shop_balance"); n != 1 {
		t.Errorf("shop_balance has %d rows, want 1", n)
	}
}

// Two concurrent payments that each fit the pending amount individually but
// jointly overpay: at most one may commit.
func TestRecordPayment_ConcurrentPaymentsCannotOverpay(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "1000.00")
	payments := core.NewPaymentService(pool)
	paidDate := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = payments.RecordPayment(ctx, bill.ID, dec("600.00"), paidDate, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded > 1 {
		t.Fatalf("both concurrent payments committed")
	}

	var paid decimal.Decimal
	if err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(paid_amount), 0) FROM payments WHERE bill_id = $1", bill.ID,
	).Scan(&paid); err != nil {
		t.Fatalf("sum payments: %v", err)
	}
	if paid.GreaterThan(dec("1000.00")) {
		t.Errorf("payments sum to %s, exceeding bill amount", paid)
	}
}

func TestGetOutstandingBills(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bills := core.NewBillService(pool)
	payments := core.NewPaymentService(pool)

	settled := mustCreateBill(t, pool, "100.00")
	partial := mustCreateBill(t, pool, "300.00")
	unpaid := mustCreateBill(t, pool, "50.00")

	if _, err := payments.RecordPayment(ctx, settled.ID, dec("100.00"), time.Now(), ""); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if _, err := payments.RecordPayment(ctx, partial.ID, dec("120.00"), time.Now(), ""); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	outstanding, err := bills.GetOutstandingBills(ctx)
	if err != nil {
		t.Fatalf("GetOutstandingBills: %v", err)
	}
	if len(outstanding) != 2 {
		t.Fatalf("got %d outstanding bills, want 2", len(outstanding))
	}
	byID := map[int]core.OutstandingBill{}
	for _, ob := range outstanding {
		byID[ob.Bill.ID] = ob
	}
	if _, ok := byID[settled.ID]; ok {
		t.Error("settled bill listed as outstanding")
	}
	if ob := byID[partial.ID]; !ob.Pending.Equal(dec("180.00")) || !ob.Paid.Equal(dec("120.00")) {
		t.Errorf("partial bill paid/pending = %s/%s, want 120.00/180.00", ob.Paid, ob.Pending)
	}
	if ob := byID[unpaid.ID]; !ob.Pending.Equal(dec("50.00")) {
		t.Errorf("unpaid bill pending = %s, want 50.00", ob.Pending)
	}
}

func TestPendingAmount_UnknownBill(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	_, err := core.NewPaymentService(pool).PendingAmount(context.Background(), 9999)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGetPayments_RoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bill := mustCreateBill(t, pool, "250.50")
	payments := core.NewPaymentService(pool)

	if _, err := payments.RecordPayment(ctx, bill.ID, dec("100.25"),
		time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), ""); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	got, err := payments.GetPayments(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetPayments: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d payments, want 1", len(got))
	}
	if !got[0].PaidAmount.Equal(dec("100.25")) {
		t.Errorf("paid amount = %s, want 100.25", got[0].PaidAmount)
	}
	if got[0].PaidDate != "2025-04-03" {
		t.Errorf("paid date = %s, want 2025-04-03", got[0].PaidDate)
	}
	if !got[0].PendingAfter.Equal(dec("150.25")) {
		t.Errorf("pending snapshot = %s, want 150.25", got[0].PendingAfter)
	}
}
