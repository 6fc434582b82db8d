package app

import (
	"context"
	"time"

	"shopledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool        *pgxpool.Pool
	wholesalers core.WholesalerService
	bills       core.BillService
	payments    core.PaymentService
	balance     core.BalanceService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	wholesalers core.WholesalerService,
	bills core.BillService,
	payments core.PaymentService,
	balance core.BalanceService,
) ApplicationService {
	return &appService{
		pool:        pool,
		wholesalers: wholesalers,
		bills:       bills,
		payments:    payments,
		balance:     balance,
	}
}

func (s *appService) ListWholesalers(ctx context.Context) (*WholesalerListResult, error) {
	wholesalers, err := s.wholesalers.GetWholesalers(ctx)
	if err != nil {
		return nil, err
	}
	return &WholesalerListResult{Wholesalers: wholesalers}, nil
}

func (s *appService) GetWholesaler(ctx context.Context, id int) (*WholesalerResult, error) {
	w, err := s.wholesalers.GetWholesaler(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WholesalerResult{Wholesaler: w}, nil
}

func (s *appService) CreateWholesaler(ctx context.Context, req WholesalerRequest) (*WholesalerResult, error) {
	w, err := s.wholesalers.CreateWholesaler(ctx, core.WholesalerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &WholesalerResult{Wholesaler: w}, nil
}

func (s *appService) UpdateWholesaler(ctx context.Context, id int, req WholesalerRequest) (*WholesalerResult, error) {
	w, err := s.wholesalers.UpdateWholesaler(ctx, id, core.WholesalerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return nil, err
	}
	return &WholesalerResult{Wholesaler: w}, nil
}

func (s *appService) DeactivateWholesaler(ctx context.Context, id int) error {
	return s.wholesalers.DeactivateWholesaler(ctx, id)
}

func (s *appService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error) {
	billDate, err := parseDate("bill_date", req.BillDate)
	if err != nil {
		return nil, err
	}
	shipping, err := parseAmount("shipping_charges", req.ShippingCharges)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("bill_amount", req.BillAmount)
	if err != nil {
		return nil, err
	}

	products := make([]core.ProductInput, 0, len(req.Products))
	for _, p := range req.Products {
		rate, err := parseAmount("rate", p.Rate)
		if err != nil {
			return nil, err
		}
		products = append(products, core.ProductInput{
			Name:       p.Name,
			Quantity:   p.Quantity,
			Rate:       rate,
			ExpiryDate: p.ExpiryDate,
		})
	}

	bill, err := s.bills.CreateBill(ctx, req.WholesalerID, billDate, shipping, amount, products)
	if err != nil {
		return nil, err
	}
	return &BillResult{Bill: bill}, nil
}

func (s *appService) UpdateBill(ctx context.Context, billID int, req UpdateBillRequest) (*BillResult, error) {
	billDate, err := parseDate("bill_date", req.BillDate)
	if err != nil {
		return nil, err
	}
	shipping, err := parseAmount("shipping_charges", req.ShippingCharges)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("bill_amount", req.BillAmount)
	if err != nil {
		return nil, err
	}

	bill, err := s.bills.UpdateBill(ctx, billID, billDate, shipping, amount)
	if err != nil {
		return nil, err
	}
	return &BillResult{Bill: bill}, nil
}

func (s *appService) GetBill(ctx context.Context, billID int) (*BillDetailResult, error) {
	bill, err := s.bills.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.GetPayments(ctx, billID)
	if err != nil {
		return nil, err
	}
	paid := core.SumPaid(payments)
	return &BillDetailResult{
		Bill:     bill,
		Payments: payments,
		Paid:     paid,
		Pending:  bill.BillAmount.Sub(paid),
	}, nil
}

func (s *appService) ListBills(ctx context.Context, req ListBillsRequest) (*BillListResult, error) {
	if req.WholesalerID > 0 {
		bills, err := s.bills.GetBillsByWholesaler(ctx, req.WholesalerID)
		if err != nil {
			return nil, err
		}
		return &BillListResult{Bills: bills}, nil
	}

	from, err := parseDate("from_date", req.FromDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("to_date", req.ToDate)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.GetBillsByDate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &BillListResult{Bills: bills}, nil
}

func (s *appService) ListOutstandingBills(ctx context.Context) (*OutstandingBillsResult, error) {
	bills, err := s.bills.GetOutstandingBills(ctx)
	if err != nil {
		return nil, err
	}
	return &OutstandingBillsResult{Bills: bills}, nil
}

func (s *appService) ListExpiringProducts(ctx context.Context, withinDays int) (*ExpiringProductsResult, error) {
	if withinDays <= 0 {
		return nil, &core.ValidationError{Field: "within_days", Reason: "must be positive"}
	}
	products, err := s.bills.GetExpiringProducts(ctx, time.Duration(withinDays)*24*time.Hour)
	if err != nil {
		return nil, err
	}
	return &ExpiringProductsResult{Products: products}, nil
}

func (s *appService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	paidDate, err := parseDate("paid_date", req.PaidDate)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("paid_amount", req.PaidAmount)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.RecordPayment(ctx, req.BillID, amount, paidDate, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: payment}, nil
}

func (s *appService) PendingAmount(ctx context.Context, billID int) (*PendingResult, error) {
	pending, err := s.payments.PendingAmount(ctx, billID)
	if err != nil {
		return nil, err
	}
	return &PendingResult{BillID: billID, Pending: pending}, nil
}

func (s *appService) GetBalance(ctx context.Context) (*BalanceResult, error) {
	balance, err := s.balance.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{Balance: balance}, nil
}

func (s *appService) GetBalanceStatement(ctx context.Context, from, to string) (*StatementResult, error) {
	fromDate, err := parseDate("from", from)
	if err != nil {
		return nil, err
	}
	toDate, err := parseDate("to", to)
	if err != nil {
		return nil, err
	}
	lines, err := s.balance.GetStatement(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return &StatementResult{From: from, To: to, Lines: lines}, nil
}

func (s *appService) RecordPayout(ctx context.Context, req RecordPayoutRequest) (*BalanceEntryResult, error) {
	entryDate, err := parseDate("entry_date", req.EntryDate)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	entry, err := s.balance.RecordPayout(ctx, amount, entryDate, req.Description)
	if err != nil {
		return nil, err
	}
	return &BalanceEntryResult{Entry: entry}, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Reason: "must be a decimal number"}
	}
	return d, nil
}
