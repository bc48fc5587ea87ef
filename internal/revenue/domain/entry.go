package revenue

// TransactionType tags a settlement-level ledger entry.
type TransactionType string

const (
	TypeCharge               TransactionType = "charge"
	TypePayment              TransactionType = "payment"
	TypePaymentRefund        TransactionType = "payment_refund"
	TypeRefund               TransactionType = "refund"
	TypePaymentReversal      TransactionType = "payment_reversal"
	TypePaymentFailureRefund TransactionType = "payment_failure_refund"
	TypeStripeFee            TransactionType = "stripe_fee"
	TypeStripeFXFee          TransactionType = "stripe_fx_fee"
	TypeTaxFee               TransactionType = "tax_fee"
)

// recognizedTypes is the fixed revenue type filter. Entries outside this
// set never contribute to totals.
var recognizedTypes = map[TransactionType]struct{}{
	TypeCharge:               {},
	TypePayment:              {},
	TypePaymentRefund:        {},
	TypeRefund:               {},
	TypePaymentReversal:      {},
	TypePaymentFailureRefund: {},
	TypeStripeFee:            {},
	TypeStripeFXFee:          {},
	TypeTaxFee:               {},
}

// Recognized reports whether the type belongs to the revenue filter.
func (t TransactionType) Recognized() bool {
	_, ok := recognizedTypes[t]
	return ok
}

// Transaction is the settlement-level ledger entry variant. Immutable
// once fetched.
type Transaction struct {
	ID       string
	Created  int64 // unix seconds
	Type     TransactionType
	NetCents int64 // signed
}

// Charge is the charge-level ledger entry variant used by per-station
// reports. Immutable once fetched.
type Charge struct {
	ID            string
	Created       int64 // unix seconds
	CapturedCents int64
	RefundedCents int64
	Customer      string
}
