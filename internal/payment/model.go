package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Type tags what a payment record settles. Closed enum: downstream
// reconciliation switches over it exhaustively.
type Type string

const (
	TypeIndividual  Type = "individual"
	TypeTeam        Type = "team"
	TypePrizePayout Type = "prize_payout"
	TypeRefund      Type = "refund"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusProcessing        Status = "processing"
	StatusSuccess           Status = "success"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusCancelled         Status = "cancelled"
	StatusOnHold            Status = "on_hold"
)

type GatewayKind string

const (
	GatewayManual   GatewayKind = "manual"
	GatewayWallet   GatewayKind = "wallet"
	GatewayRazorpay GatewayKind = "razorpay"
	GatewayNone     GatewayKind = "none"
)

// transitions is the allowed edge set of the payment state machine.
var transitions = map[Status][]Status{
	StatusPending:           {StatusProcessing, StatusSuccess, StatusFailed, StatusCancelled, StatusOnHold},
	StatusProcessing:        {StatusSuccess, StatusFailed, StatusCancelled},
	StatusOnHold:            {StatusSuccess, StatusFailed},
	StatusSuccess:           {StatusPartiallyRefunded, StatusRefunded},
	StatusPartiallyRefunded: {StatusPartiallyRefunded, StatusRefunded},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Metadata is the single open extension bag on a payment. Required invariant
// fields never live here, only provenance (gateway identifiers, rejection
// details, pricing echo).
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("metadata: unsupported scan type")
	}
	if len(b) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(b, m)
}

type Payment struct {
	ID   int  `db:"id" json:"id"`
	Type Type `db:"payment_type" json:"payment_type"`

	UserID       int  `db:"user_id" json:"user_id"`
	TournamentID int  `db:"tournament_id" json:"tournament_id"`
	TeamID       *int `db:"team_id" json:"team_id,omitempty"`

	// Amount breakdown, whole rupees. Amount is what the payer owes after
	// the discount.
	BaseAmount     int64  `db:"base_amount" json:"base_amount"`
	DiscountAmount int64  `db:"discount_amount" json:"discount_amount"`
	Amount         int64  `db:"amount" json:"amount"`
	Currency       string `db:"currency" json:"currency"`

	Status  Status      `db:"payment_status" json:"payment_status"`
	Gateway GatewayKind `db:"payment_gateway" json:"payment_gateway"`

	CouponID   *int   `db:"coupon_id" json:"coupon_id,omitempty"`
	CouponCode string `db:"coupon_code" json:"coupon_code,omitempty"`

	GatewayOrderID   string `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewaySignature string `db:"gateway_signature" json:"-"`

	InvoiceID      string `db:"invoice_id" json:"invoice_id"`
	TransactionRef string `db:"transaction_ref" json:"transaction_ref,omitempty"`

	RequiresManualReview bool   `db:"requires_manual_review" json:"requires_manual_review"`
	InternalNotes        string `db:"internal_notes" json:"-"`

	Metadata Metadata `db:"metadata" json:"metadata,omitempty"`

	InitiatedAt time.Time  `db:"initiated_at" json:"initiated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	RefundedAt  *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`

	VerifiedBy *int `db:"verified_by" json:"verified_by,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Refund is one refund attempt against a successful payment. Only rows with
// status "processed" count toward the refunded total.
type Refund struct {
	ID              int        `db:"id" json:"id"`
	PaymentID       int        `db:"payment_id" json:"payment_id"`
	Amount          int64      `db:"amount" json:"amount"`
	Reason          string     `db:"reason" json:"reason"`
	Status          string     `db:"status" json:"status"`
	GatewayRefundID string     `db:"gateway_refund_id" json:"gateway_refund_id,omitempty"`
	InitiatedBy     int        `db:"initiated_by" json:"initiated_by"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// NewInvoiceID mirrors the original numbering: POUT- for payouts, INV- for
// everything else, then a timestamp tail and 4 random digits.
func NewInvoiceID(t Type) string {
	prefix := "INV"
	if t == TypePrizePayout {
		prefix = "POUT"
	}
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return fmt.Sprintf("%s-%s%04d", prefix, ts, rand.Intn(10000))
}

// NewTransactionRef generates the TXN reference stamped on success.
func NewTransactionRef() string {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ts) > 10 {
		ts = ts[len(ts)-10:]
	}
	return fmt.Sprintf("TXN%s%03d", ts, rand.Intn(1000))
}
