package core_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"shopledger/internal/core"
	"shopledger/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx,
		"TRUNCATE TABLE shop_balance, payments, products, bills, wholesalers RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

func mustCreateWholesaler(t *testing.T, pool *pgxpool.Pool, name string) *core.Wholesaler {
	t.Helper()
	w, err := core.NewWholesalerService(pool).CreateWholesaler(context.Background(),
		core.WholesalerInput{Name: name, Phone: "9876543210", Address: "Market Road"})
	if err != nil {
		t.Fatalf("create wholesaler: %v", err)
	}
	return w
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCreateBill_PersistsBillAndProducts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	w := mustCreateWholesaler(t, pool, "Sharma Traders")
	bills := core.NewBillService(pool)

	billDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bill, err := bills.CreateBill(ctx, w.ID, billDate, dec("50.00"), dec("130.00"),
		[]core.ProductInput{
			{Name: "Soap", Quantity: 2, Rate: dec("50.00")},
			{Name: "Shampoo", Quantity: 3, Rate: dec("10.00"), ExpiryDate: "2026-01-31"},
		})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	if bill.BillDate != "2025-03-10" {
		t.Errorf("bill date = %s, want 2025-03-10", bill.BillDate)
	}
	if !bill.ShippingCharges.Equal(dec("50.00")) {
		t.Errorf("shipping = %s, want 50.00", bill.ShippingCharges)
	}
	if len(bill.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(bill.Products))
	}
	if !bill.Products[0].Total.Equal(dec("100.00")) {
		t.Errorf("line 1 total = %s, want 100.00", bill.Products[0].Total)
	}
	if !bill.Products[1].Total.Equal(dec("30.00")) {
		t.Errorf("line 2 total = %s, want 30.00", bill.Products[1].Total)
	}
	for i, p := range bill.Products {
		if p.BillID != bill.ID {
			t.Errorf("line %d bill id = %d, want %d", i+1, p.BillID, bill.ID)
		}
		if p.WholesalerID != w.ID {
			t.Errorf("line %d wholesaler id = %d, want %d", i+1, p.WholesalerID, w.ID)
		}
	}
	if bill.Products[1].ExpiryDate == nil || *bill.Products[1].ExpiryDate != "2026-01-31" {
		t.Errorf("line 2 expiry = %v, want 2026-01-31", bill.Products[1].ExpiryDate)
	}

	// Round-trip: re-reading returns exactly what was written.
	reread, err := bills.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if !reread.BillAmount.Equal(bill.BillAmount) || !reread.ShippingCharges.Equal(bill.ShippingCharges) {
		t.Errorf("re-read bill amounts differ: %+v vs %+v", reread, bill)
	}
	if !reread.Products[0].Rate.Equal(dec("50.00")) {
		t.Errorf("re-read rate = %s, want 50.00", reread.Products[0].Rate)
	}
}

func TestCreateBill_ValidationWritesNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	w := mustCreateWholesaler(t, pool, "Gupta Stores")
	bills := core.NewBillService(pool)
	billDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		shipping string
		amount   string
		products []core.ProductInput
	}{
		{"empty products", "0", "100.00", nil},
		{"zero quantity", "0", "100.00", []core.ProductInput{{Name: "Soap", Quantity: 0, Rate: dec("10.00")}}},
		{"negative quantity", "0", "100.00", []core.ProductInput{{Name: "Soap", Quantity: -1, Rate: dec("10.00")}}},
		{"negative rate", "0", "100.00", []core.ProductInput{{Name: "Soap", Quantity: 1, Rate: dec("-10.00")}}},
		{"negative shipping", "-5.00", "100.00", []core.ProductInput{{Name: "Soap", Quantity: 1, Rate: dec("10.00")}}},
		{"negative bill amount", "0", "-100.00", []core.ProductInput{{Name: "Soap", Quantity: 1, Rate: dec("10.00")}}},
		{"blank product name", "0", "100.00", []core.ProductInput{{Name: "  ", Quantity: 1, Rate: dec("10.00")}}},
		{"bad expiry date", "0", "100.00", []core.ProductInput{{Name: "Soap", Quantity: 1, Rate: dec("10.00"), ExpiryDate: "soon"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bills.CreateBill(ctx, w.ID, billDate, dec(tc.shipping), dec(tc.amount), tc.products)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if n := countRows(t, pool, "bills"); n != 0 {
		t.Errorf("bills table has %d rows, want 0", n)
	}
	if n := countRows(t, pool, "products"); n != 0 {
		t.Errorf("products table has %d rows, want 0", n)
	}
}

func TestCreateBill_UnknownWholesaler(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	bills := core.NewBillService(pool)
	_, err := bills.CreateBill(context.Background(), 9999, time.Now(), dec("0"), dec("10.00"),
		[]core.ProductInput{{Name: "Soap", Quantity: 1, Rate: dec("10.00")}})

	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if countRows(t, pool, "bills") != 0 {
		t.Error("bill row written despite unknown wholesaler")
	}
}

func TestUpdateBill(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	w := mustCreateWholesaler(t, pool, "Verma & Sons")
	bills := core.NewBillService(pool)

	bill, err := bills.CreateBill(ctx, w.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		dec("20.00"), dec("500.00"),
		[]core.ProductInput{{Name: "Rice", Quantity: 10, Rate: dec("48.00")}})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	updated, err := bills.UpdateBill(ctx, bill.ID,
		time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), dec("25.00"), dec("505.00"))
	if err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if updated.BillDate != "2025-03-02" || !updated.BillAmount.Equal(dec("505.00")) {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(updated.Products) != 1 {
		t.Errorf("product lines changed by header update: %d", len(updated.Products))
	}

	if _, err := bills.UpdateBill(ctx, 9999, time.Now(), dec("0"), dec("0")); err == nil {
		t.Error("expected error updating missing bill")
	}
}

func TestGetBillsByWholesalerAndDate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	w1 := mustCreateWholesaler(t, pool, "Sharma Traders")
	w2 := mustCreateWholesaler(t, pool, "Gupta Stores")
	bills := core.NewBillService(pool)

	mk := func(wID int, date string, amount string) {
		d, _ := time.Parse("2006-01-02", date)
		if _, err := bills.CreateBill(ctx, wID, d, dec("0"), dec(amount),
			[]core.ProductInput{{Name: "Item", Quantity: 1, Rate: dec(amount)}}); err != nil {
			t.Fatalf("CreateBill: %v", err)
		}
	}
	mk(w1.ID, "2025-01-05", "100.00")
	mk(w1.ID, "2025-02-05", "200.00")
	mk(w2.ID, "2025-02-06", "300.00")

	byW, err := bills.GetBillsByWholesaler(ctx, w1.ID)
	if err != nil {
		t.Fatalf("GetBillsByWholesaler: %v", err)
	}
	if len(byW) != 2 {
		t.Errorf("got %d bills for wholesaler, want 2", len(byW))
	}

	from, _ := time.Parse("2006-01-02", "2025-02-01")
	to, _ := time.Parse("2006-01-02", "2025-02-28")
	byDate, err := bills.GetBillsByDate(ctx, from, to)
	if err != nil {
		t.Fatalf("GetBillsByDate: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("got %d bills in February, want 2", len(byDate))
	}
}

func TestGetExpiringProducts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	w := mustCreateWholesaler(t, pool, "Medico Distributors")
	bills := core.NewBillService(pool)

	soon := time.Now().Add(10 * 24 * time.Hour).Format("2006-01-02")
	far := time.Now().Add(365 * 24 * time.Hour).Format("2006-01-02")

	if _, err := bills.CreateBill(ctx, w.ID, time.Now(), dec("0"), dec("60.00"),
		[]core.ProductInput{
			{Name: "Syrup", Quantity: 1, Rate: dec("20.00"), ExpiryDate: soon},
			{Name: "Tablet", Quantity: 1, Rate: dec("20.00"), ExpiryDate: far},
			{Name: "Soap", Quantity: 1, Rate: dec("20.00")},
		}); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	expiring, err := bills.GetExpiringProducts(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("GetExpiringProducts: %v", err)
	}
	if len(expiring) != 1 || expiring[0].Name != "Syrup" {
		t.Errorf("expiring = %+v, want only Syrup", expiring)
	}
}
