package app

// WholesalerRequest carries wholesaler fields for create and update.
type WholesalerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProductRequest is one line item on a new bill. Total is computed
// server-side from Rate × Quantity.
type ProductRequest struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Rate       string `json:"rate"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// CreateBillRequest carries everything needed to create a bill atomically.
// Dates are YYYY-MM-DD; amounts are decimal strings.
type CreateBillRequest struct {
	WholesalerID    int              `json:"wholesaler_id"`
	BillDate        string           `json:"bill_date"`
	ShippingCharges string           `json:"shipping_charges"`
	BillAmount      string           `json:"bill_amount"`
	Products        []ProductRequest `json:"products"`
}

// UpdateBillRequest carries the mutable bill header fields.
type UpdateBillRequest struct {
	BillDate        string `json:"bill_date"`
	ShippingCharges string `json:"shipping_charges"`
	BillAmount      string `json:"bill_amount"`
}

// ListBillsRequest filters bills by wholesaler or date range. When
// WholesalerID is set the date range is ignored.
type ListBillsRequest struct {
	WholesalerID int    `json:"wholesaler_id,omitempty"`
	FromDate     string `json:"from_date,omitempty"`
	ToDate       string `json:"to_date,omitempty"`
}

// RecordPaymentRequest carries a payment against a bill. IdempotencyKey is
// optional; supplying one makes retries safe.
type RecordPaymentRequest struct {
	BillID         int    `json:"bill_id"`
	PaidAmount     string `json:"paid_amount"`
	PaidDate       string `json:"paid_date"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RecordPayoutRequest carries a cash-out entry for the shop balance ledger.
// Amount is the positive payout value.
type RecordPayoutRequest struct {
	Amount      string `json:"amount"`
	EntryDate   string `json:"entry_date"`
	Description string `json:"description"`
}
