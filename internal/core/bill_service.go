package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BillService interface {
	CreateBill(ctx context.Context, wholesalerID int, billDate time.Time,
		shippingCharges, billAmount decimal.Decimal, products []ProductInput) (*Bill, error)
	UpdateBill(ctx context.Context, billID int, billDate time.Time,
		shippingCharges, billAmount decimal.Decimal) (*Bill, error)
	GetBill(ctx context.Context, billID int) (*Bill, error)
	GetBillsByWholesaler(ctx context.Context, wholesalerID int) ([]Bill, error)
	GetBillsByDate(ctx context.Context, from, to time.Time) ([]Bill, error)
	GetOutstandingBills(ctx context.Context) ([]OutstandingBill, error)
	GetExpiringProducts(ctx context.Context, within time.Duration) ([]Product, error)
}

type billService struct {
	pool *pgxpool.Pool
}

// NewBillService constructs a BillService backed by PostgreSQL.
func NewBillService(pool *pgxpool.Pool) BillService {
	return &billService{pool: pool}
}

// CreateBill creates a bill and its product lines as one atomic unit.
// Each line's total is computed here as rate × quantity; caller-supplied
// totals are never trusted. Validation runs before any write, so a
// ValidationError guarantees nothing was persisted.
func (s *billService) CreateBill(ctx context.Context, wholesalerID int, billDate time.Time,
	shippingCharges, billAmount decimal.Decimal, products []ProductInput) (*Bill, error) {

	if shippingCharges.IsNegative() {
		return nil, &ValidationError{Field: "shipping_charges", Reason: "must not be negative"}
	}
	if billAmount.IsNegative() {
		return nil, &ValidationError{Field: "bill_amount", Reason: "must not be negative"}
	}
	if len(products) == 0 {
		return nil, &ValidationError{Field: "products", Reason: "bill must have at least one product"}
	}

	type resolvedLine struct {
		name       string
		quantity   int
		rate       decimal.Decimal
		total      decimal.Decimal
		expiryDate *string
	}

	resolved := make([]resolvedLine, 0, len(products))
	for i, input := range products {
		field := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(input.Name) == "" {
			return nil, &ValidationError{Field: field + ".name", Reason: "must not be empty"}
		}
		if input.Quantity <= 0 {
			return nil, &ValidationError{Field: field + ".quantity", Reason: "must be positive"}
		}
		if input.Rate.IsNegative() {
			return nil, &ValidationError{Field: field + ".rate", Reason: "must not be negative"}
		}
		rl := resolvedLine{
			name:     strings.TrimSpace(input.Name),
			quantity: input.Quantity,
			rate:     input.Rate,
			total:    input.Rate.Mul(decimal.NewFromInt(int64(input.Quantity))),
		}
		if input.ExpiryDate != "" {
			if _, err := time.Parse("2006-01-02", input.ExpiryDate); err != nil {
				return nil, &ValidationError{Field: field + ".expiry_date", Reason: "must be YYYY-MM-DD"}
			}
			expiry := input.ExpiryDate
			rl.expiryDate = &expiry
		}
		resolved = append(resolved, rl)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, &StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	var wholesalerExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM wholesalers WHERE id = $1 AND is_active = true)",
		wholesalerID,
	).Scan(&wholesalerExists); err != nil {
		return nil, &StorageError{Op: "validate wholesaler", Err: err}
	}
	if !wholesalerExists {
		return nil, &NotFoundError{Entity: "wholesaler", ID: wholesalerID}
	}

	var billID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO bills (wholesaler_id, bill_date, shipping_charges, bill_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		wholesalerID, billDate.Format("2006-01-02"), shippingCharges, billAmount,
	).Scan(&billID); err != nil {
		return nil, &StorageError{Op: "insert bill", Err: err}
	}

	for i, rl := range resolved {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (bill_id, wholesaler_id, name, quantity, rate, total, expiry_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			billID, wholesalerID, rl.name, rl.quantity, rl.rate, rl.total, rl.expiryDate,
		); err != nil {
			return nil, &StorageError{Op: fmt.Sprintf("insert product line %d", i+1), Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &StorageError{Op: "commit bill", Err: err}
	}

	return s.GetBill(ctx, billID)
}

// UpdateBill replaces a bill's date, shipping charge and declared amount.
// This is a plain field update outside the create-time atomicity contract;
// product lines are not touched.
func (s *billService) UpdateBill(ctx context.Context, billID int, billDate time.Time,
	shippingCharges, billAmount decimal.Decimal) (*Bill, error) {

	if shippingCharges.IsNegative() {
		return nil, &ValidationError{Field: "shipping_charges", Reason: "must not be negative"}
	}
	if billAmount.IsNegative() {
		return nil, &ValidationError{Field: "bill_amount", Reason: "must not be negative"}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE bills
		SET bill_date = $1, shipping_charges = $2, bill_amount = $3
		WHERE id = $4`,
		billDate.Format("2006-01-02"), shippingCharges, billAmount, billID,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("update bill %d", billID), Err: err}
	}
	if tag.RowsAffected() == 0 {
		return nil, &NotFoundError{Entity: "bill", ID: billID}
	}
	return s.GetBill(ctx, billID)
}

// GetBill returns a bill by id, including all product lines.
func (s *billService) GetBill(ctx context.Context, billID int) (*Bill, error) {
	b := &Bill{}
	err := s.pool.QueryRow(ctx, `
		SELECT b.id, b.wholesaler_id, w.name, b.bill_date::text,
		       b.shipping_charges, b.bill_amount, b.created_at
		FROM bills b
		JOIN wholesalers w ON w.id = b.wholesaler_id
		WHERE b.id = $1`,
		billID,
	).Scan(&b.ID, &b.WholesalerID, &b.WholesalerName, &b.BillDate,
		&b.ShippingCharges, &b.BillAmount, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "bill", ID: billID}
		}
		return nil, &StorageError{Op: fmt.Sprintf("get bill %d", billID), Err: err}
	}

	products, err := s.fetchProducts(ctx, billID)
	if err != nil {
		return nil, err
	}
	b.Products = products
	return b, nil
}

// GetBillsByWholesaler returns all bills for a wholesaler, newest first.
func (s *billService) GetBillsByWholesaler(ctx context.Context, wholesalerID int) ([]Bill, error) {
	return s.listBills(ctx, `
		SELECT b.id, b.wholesaler_id, w.name, b.bill_date::text,
		       b.shipping_charges, b.bill_amount, b.created_at
		FROM bills b
		JOIN wholesalers w ON w.id = b.wholesaler_id
		WHERE b.wholesaler_id = $1
		ORDER BY b.bill_date DESC, b.id DESC`,
		wholesalerID)
}

// GetBillsByDate returns all bills dated within [from, to], newest first.
func (s *billService) GetBillsByDate(ctx context.Context, from, to time.Time) ([]Bill, error) {
	return s.listBills(ctx, `
		SELECT b.id, b.wholesaler_id, w.name, b.bill_date::text,
		       b.shipping_charges, b.bill_amount, b.created_at
		FROM bills b
		JOIN wholesalers w ON w.id = b.wholesaler_id
		WHERE b.bill_date BETWEEN $1 AND $2
		ORDER BY b.bill_date DESC, b.id DESC`,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (s *billService) listBills(ctx context.Context, query string, args ...any) ([]Bill, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list bills", Err: err}
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.WholesalerID, &b.WholesalerName, &b.BillDate,
			&b.ShippingCharges, &b.BillAmount, &b.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan bill", Err: err}
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate bills", Err: err}
	}
	return bills, nil
}

// GetOutstandingBills returns every bill whose payments do not yet cover the
// bill amount, with paid and pending totals derived from the payment rows.
func (s *billService) GetOutstandingBills(ctx context.Context) ([]OutstandingBill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.wholesaler_id, w.name, b.bill_date::text,
		       b.shipping_charges, b.bill_amount, b.created_at,
		       COALESCE(SUM(p.paid_amount), 0) AS paid
		FROM bills b
		JOIN wholesalers w ON w.id = b.wholesaler_id
		LEFT JOIN payments p ON p.bill_id = b.id
		GROUP BY b.id, w.name
		HAVING b.bill_amount - COALESCE(SUM(p.paid_amount), 0) > 0
		ORDER BY b.bill_date, b.id`,
	)
	if err != nil {
		return nil, &StorageError{Op: "list outstanding bills", Err: err}
	}
	defer rows.Close()

	var outstanding []OutstandingBill
	for rows.Next() {
		var ob OutstandingBill
		if err := rows.Scan(&ob.Bill.ID, &ob.Bill.WholesalerID, &ob.Bill.WholesalerName,
			&ob.Bill.BillDate, &ob.Bill.ShippingCharges, &ob.Bill.BillAmount,
			&ob.Bill.CreatedAt, &ob.Paid); err != nil {
			return nil, &StorageError{Op: "scan outstanding bill", Err: err}
		}
		ob.Pending = ob.Bill.BillAmount.Sub(ob.Paid)
		outstanding = append(outstanding, ob)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate outstanding bills", Err: err}
	}
	return outstanding, nil
}

// GetExpiringProducts returns product lines whose expiry date falls within
// the given window from today, soonest first. Lines without an expiry date
// are excluded.
func (s *billService) GetExpiringProducts(ctx context.Context, within time.Duration) ([]Product, error) {
	cutoff := time.Now().Add(within).Format("2006-01-02")
	rows, err := s.pool.Query(ctx, `
		SELECT id, bill_id, wholesaler_id, name, quantity, rate, total, expiry_date::text
		FROM products
		WHERE expiry_date IS NOT NULL AND expiry_date <= $1
		ORDER BY expiry_date, id`,
		cutoff,
	)
	if err != nil {
		return nil, &StorageError{Op: "list expiring products", Err: err}
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.BillID, &p.WholesalerID, &p.Name,
			&p.Quantity, &p.Rate, &p.Total, &p.ExpiryDate); err != nil {
			return nil, &StorageError{Op: "scan product", Err: err}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate products", Err: err}
	}
	return products, nil
}

// fetchProducts returns all product lines for a bill.
func (s *billService) fetchProducts(ctx context.Context, billID int) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, bill_id, wholesaler_id, name, quantity, rate, total, expiry_date::text
		FROM products
		WHERE bill_id = $1
		ORDER BY id`,
		billID,
	)
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("fetch products for bill %d", billID), Err: err}
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.BillID, &p.WholesalerID, &p.Name,
			&p.Quantity, &p.Rate, &p.Total, &p.ExpiryDate); err != nil {
			return nil, &StorageError{Op: "scan product", Err: err}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate products", Err: err}
	}
	return products, nil
}
