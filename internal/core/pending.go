package core

import "github.com/shopspring/decimal"

// PendingAmount derives a bill's outstanding amount from its recorded
// payments: billAmount minus the sum of paid amounts. It is the single
// definition of "pending" used by both the payment write path and read-only
// reporting — no cached running total exists anywhere.
func PendingAmount(billAmount decimal.Decimal, payments []Payment) decimal.Decimal {
	return billAmount.Sub(SumPaid(payments))
}

// SumPaid returns the total of the given payment amounts, zero for none.
func SumPaid(payments []Payment) decimal.Decimal {
	var sum decimal.Decimal
	for _, p := range payments {
		sum = sum.Add(p.PaidAmount)
	}
	return sum
}
