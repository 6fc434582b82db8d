package app

import "context"

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// ListWholesalers returns all active wholesalers.
	ListWholesalers(ctx context.Context) (*WholesalerListResult, error)

	// GetWholesaler returns a single wholesaler by id.
	GetWholesaler(ctx context.Context, id int) (*WholesalerResult, error)

	// CreateWholesaler adds a new wholesaler.
	CreateWholesaler(ctx context.Context, req WholesalerRequest) (*WholesalerResult, error)

	// UpdateWholesaler replaces a wholesaler's mutable fields.
	UpdateWholesaler(ctx context.Context, id int, req WholesalerRequest) (*WholesalerResult, error)

	// DeactivateWholesaler soft-deletes a wholesaler.
	DeactivateWholesaler(ctx context.Context, id int) error

	// CreateBill creates a bill together with its product lines as one
	// atomic unit.
	CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error)

	// UpdateBill replaces a bill's date, shipping charge and amount.
	UpdateBill(ctx context.Context, billID int, req UpdateBillRequest) (*BillResult, error)

	// GetBill returns a bill with its products, payments and pending amount.
	GetBill(ctx context.Context, billID int) (*BillDetailResult, error)

	// ListBills returns bills filtered by wholesaler or date range.
	ListBills(ctx context.Context, req ListBillsRequest) (*BillListResult, error)

	// ListOutstandingBills returns bills that are not yet fully paid.
	ListOutstandingBills(ctx context.Context) (*OutstandingBillsResult, error)

	// ListExpiringProducts returns product lines expiring within the given
	// number of days.
	ListExpiringProducts(ctx context.Context, withinDays int) (*ExpiringProductsResult, error)

	// RecordPayment records a payment against a bill and the matching
	// shop-balance entry.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error)

	// PendingAmount returns a bill's outstanding amount.
	PendingAmount(ctx context.Context, billID int) (*PendingResult, error)

	// GetBalance returns the current shop cash balance.
	GetBalance(ctx context.Context) (*BalanceResult, error)

	// GetBalanceStatement returns balance entries in a date range with a
	// running total.
	GetBalanceStatement(ctx context.Context, from, to string) (*StatementResult, error)

	// RecordPayout appends a cash-out entry to the shop balance ledger.
	RecordPayout(ctx context.Context, req RecordPayoutRequest) (*BalanceEntryResult, error)
}
