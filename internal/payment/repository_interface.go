package payment

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
)

// Store is the persistence surface the payment service depends on.
type Store interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, p *Payment) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Payment, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Payment, error)
	ListManualReview(ctx context.Context, status Status, limit, offset int) ([]Payment, error)
	AttachGatewayOrder(ctx context.Context, paymentID int, orderID string) error
	MarkSuccessTx(ctx context.Context, tx *sqlx.Tx, p *Payment, gw GatewayKind, cb gateway.Callback, verifiedBy *int) error
	MarkFailedTx(ctx context.Context, tx *sqlx.Tx, p *Payment, notes string) error
	MarkCancelledTx(ctx context.Context, tx *sqlx.Tx, p *Payment, notes string) error
	InsertRefundTx(ctx context.Context, tx *sqlx.Tx, ref *Refund) (*Refund, error)
	SumProcessedRefundsTx(ctx context.Context, tx *sqlx.Tx, paymentID int) (int64, error)
	SetRefundStatusTx(ctx context.Context, tx *sqlx.Tx, p *Payment, status Status) error
	ListRefunds(ctx context.Context, paymentID int) ([]Refund, error)
}

// RosterStore is implemented by the tournament repository. It lets the
// payment service flip registration rows without importing the tournament
// package, which imports this one.
type RosterStore interface {
	// MarkPaidTx marks the participant (and team, for team payments) paid
	// inside the caller's transaction.
	MarkPaidTx(ctx context.Context, tx *sqlx.Tx, p *Payment) error
	// ReleaseSlotTx frees the roster slot held by a failed or rejected
	// payment and decrements the tournament's filled count.
	ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, p *Payment) error
}

// UsageCommitter is implemented by the coupon repository. Usage is committed
// only when a payment actually succeeds.
type UsageCommitter interface {
	CommitUsageTx(ctx context.Context, tx *sqlx.Tx, couponID, userID int) error
}
