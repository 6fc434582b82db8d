package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wholesaler struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// WholesalerInput carries the caller-supplied fields for create/update.
type WholesalerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Bill is a wholesaler purchase: a header row plus one or more product lines.
// BillAmount is the declared total of the purchase; it is accepted from the
// caller and validated, not re-derived from the lines.
type Bill struct {
	ID              int             `json:"id"`
	WholesalerID    int             `json:"wholesaler_id"`
	WholesalerName  string          `json:"wholesaler_name,omitempty"`
	BillDate        string          `json:"bill_date"`
	ShippingCharges decimal.Decimal `json:"shipping_charges"`
	BillAmount      decimal.Decimal `json:"bill_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	Products        []Product       `json:"products,omitempty"`
}

// Product is a single line item on a bill. Total is always Rate × Quantity,
// computed at write time.
type Product struct {
	ID           int             `json:"id"`
	BillID       int             `json:"bill_id"`
	WholesalerID int             `json:"wholesaler_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	Total        decimal.Decimal `json:"total"`
	ExpiryDate   *string         `json:"expiry_date,omitempty"`
}

// ProductInput is a caller-supplied line item. Total is not accepted from the
// caller; CreateBill computes it.
type ProductInput struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	ExpiryDate string          `json:"expiry_date,omitempty"`
}

// Payment is an append-only record of money received against a bill.
// PendingAfter is the bill's outstanding amount immediately after this
// payment — an audit snapshot, never the live source of truth.
type Payment struct {
	ID             int             `json:"id"`
	BillID         int             `json:"bill_id"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PaidDate       string          `json:"paid_date"`
	PendingAfter   decimal.Decimal `json:"pending_after"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BalanceEntry is one signed movement in the shop cash ledger. Positive
// amounts are collections, negative amounts are payouts. PaymentID links the
// entry to the payment that produced it, when there is one.
type BalanceEntry struct {
	ID          int             `json:"id"`
	PaymentID   *int            `json:"payment_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	EntryDate   string          `json:"entry_date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StatementLine is a balance entry with the cumulative balance up to and
// including it.
type StatementLine struct {
	Entry   BalanceEntry    `json:"entry"`
	Running decimal.Decimal `json:"running"`
}

// OutstandingBill is a reporting row: a bill with its paid and pending totals.
type OutstandingBill struct {
	Bill    Bill            `json:"bill"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}
