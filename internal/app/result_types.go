package app

import (
	"shopledger/internal/core"

	"github.com/shopspring/decimal"
)

// WholesalerResult is returned by single-wholesaler operations.
type WholesalerResult struct {
	Wholesaler *core.Wholesaler
}

// WholesalerListResult is returned by ListWholesalers.
type WholesalerListResult struct {
	Wholesalers []core.Wholesaler
}

// BillResult is returned by bill create/update operations.
type BillResult struct {
	Bill *core.Bill
}

// BillDetailResult is returned by GetBill: the bill with its payment history
// and derived amounts.
type BillDetailResult struct {
	Bill     *core.Bill
	Payments []core.Payment
	Paid     decimal.Decimal
	Pending  decimal.Decimal
}

// BillListResult is returned by ListBills.
type BillListResult struct {
	Bills []core.Bill
}

// OutstandingBillsResult is returned by ListOutstandingBills.
type OutstandingBillsResult struct {
	Bills []core.OutstandingBill
}

// ExpiringProductsResult is returned by ListExpiringProducts.
type ExpiringProductsResult struct {
	Products []core.Product
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	Payment *core.Payment
}

// PendingResult is returned by PendingAmount.
type PendingResult struct {
	BillID  int
	Pending decimal.Decimal
}

// BalanceResult is returned by GetBalance.
type BalanceResult struct {
	Balance decimal.Decimal
}

// StatementResult is returned by GetBalanceStatement.
type StatementResult struct {
	From  string
	To    string
	Lines []core.StatementLine
}

// BalanceEntryResult is returned by RecordPayout.
type BalanceEntryResult struct {
	Entry *core.BalanceEntry
}
