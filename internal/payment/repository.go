package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/db"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidTransition   = errors.New("invalid payment status transition")
	ErrNotPayable          = errors.New("payment is not in a payable state")
	ErrAmountMismatch      = errors.New("payment amount mismatch")
	ErrRefundExceedsAmount = errors.New("refund exceeds refundable amount")
	ErrForbidden           = errors.New("payment belongs to another user")
)

const paymentColumns = `id, payment_type, user_id, tournament_id, team_id,
	base_amount, discount_amount, amount, currency,
	payment_status, payment_gateway, coupon_id, coupon_code,
	gateway_order_id, gateway_payment_id, gateway_signature,
	invoice_id, transaction_ref, requires_manual_review, internal_notes, metadata,
	initiated_at, completed_at, failed_at, refunded_at, cancelled_at,
	verified_by, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) *Repository {
	return &Repository{db: database}
}

// InTx runs fn inside a database transaction. The payment service uses it to
// compose status changes with roster, coupon and wallet writes atomically.
func (r *Repository) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return db.InTx(ctx, r.db, fn)
}

func (r *Repository) CreateTx(ctx context.Context, tx *sqlx.Tx, p *Payment) (*Payment, error) {
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.InvoiceID == "" {
		p.InvoiceID = NewInvoiceID(p.Type)
	}
	query := `
		INSERT INTO payments (
			payment_type, user_id, tournament_id, team_id,
			base_amount, discount_amount, amount, currency,
			payment_status, payment_gateway, coupon_id, coupon_code,
			invoice_id, requires_manual_review, metadata, initiated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
		RETURNING ` + paymentColumns
	var created Payment
	err := tx.GetContext(ctx, &created, query,
		p.Type, p.UserID, p.TournamentID, p.TeamID,
		p.BaseAmount, p.DiscountAmount, p.Amount, p.Currency,
		p.Status, p.Gateway, p.CouponID, p.CouponCode,
		p.InvoiceID, p.RequiresManualReview, p.Metadata)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetForUpdateTx loads a payment row under a row lock so concurrent
// verifications serialize on it.
func (r *Repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Payment, error) {
	var p Payment
	err := tx.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE gateway_order_id = $1`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	return payments, err
}

// ListManualReview returns payments flagged for admin review, optionally
// filtered by status.
func (r *Repository) ListManualReview(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	payments := []Payment{}
	if status != "" {
		err := r.db.SelectContext(ctx, &payments, `
			SELECT `+paymentColumns+` FROM payments
			WHERE requires_manual_review = TRUE AND payment_status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`, status, limit, offset)
		return payments, err
	}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM payments
		WHERE requires_manual_review = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return payments, err
}

// AttachGatewayOrder records the gateway order id and moves the payment to
// processing. The guarded WHERE keeps a second order creation from clobbering
// a payment that already moved on.
func (r *Repository) AttachGatewayOrder(ctx context.Context, paymentID int, orderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET gateway_order_id = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND payment_status = $4`,
		orderID, StatusProcessing, paymentID, StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPayable
	}
	return nil
}

// MarkSuccessTx completes a payment: status, gateway identifiers, transaction
// reference, completion time and verifier in one write.
func (r *Repository) MarkSuccessTx(ctx context.Context, tx *sqlx.Tx, p *Payment, gw GatewayKind, cb gateway.Callback, verifiedBy *int) error {
	if !CanTransition(p.Status, StatusSuccess) {
		return ErrInvalidTransition
	}
	if p.TransactionRef == "" {
		p.TransactionRef = NewTransactionRef()
	}
	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET payment_status = $1, payment_gateway = $2,
		    gateway_order_id = COALESCE(NULLIF($3, ''), gateway_order_id),
		    gateway_payment_id = COALESCE(NULLIF($4, ''), gateway_payment_id),
		    gateway_signature = COALESCE(NULLIF($5, ''), gateway_signature),
		    transaction_ref = $6, completed_at = $7, verified_by = $8, updated_at = NOW()
		WHERE id = $9`,
		StatusSuccess, gw, cb.OrderID, cb.PaymentID, cb.Signature,
		p.TransactionRef, now, verifiedBy, p.ID)
	if err != nil {
		return err
	}
	p.Status = StatusSuccess
	p.Gateway = gw
	p.CompletedAt = &now
	return nil
}

func (r *Repository) MarkFailedTx(ctx context.Context, tx *sqlx.Tx, p *Payment, notes string) error {
	if !CanTransition(p.Status, StatusFailed) {
		return ErrInvalidTransition
	}
	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET payment_status = $1, failed_at = $2, internal_notes = $3, updated_at = NOW()
		WHERE id = $4`,
		StatusFailed, now, notes, p.ID)
	if err != nil {
		return err
	}
	p.Status = StatusFailed
	p.FailedAt = &now
	return nil
}

func (r *Repository) MarkCancelledTx(ctx context.Context, tx *sqlx.Tx, p *Payment, notes string) error {
	if !CanTransition(p.Status, StatusCancelled) {
		return ErrInvalidTransition
	}
	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET payment_status = $1, cancelled_at = $2, internal_notes = $3, updated_at = NOW()
		WHERE id = $4`,
		StatusCancelled, now, notes, p.ID)
	if err != nil {
		return err
	}
	p.Status = StatusCancelled
	p.CancelledAt = &now
	return nil
}

// InsertRefundTx records a refund attempt against a payment.
func (r *Repository) InsertRefundTx(ctx context.Context, tx *sqlx.Tx, ref *Refund) (*Refund, error) {
	var created Refund
	err := tx.GetContext(ctx, &created, `
		INSERT INTO payment_refunds (payment_id, amount, reason, status, gateway_refund_id, initiated_by, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, payment_id, amount, reason, status, gateway_refund_id, initiated_by, processed_at, created_at`,
		ref.PaymentID, ref.Amount, ref.Reason, ref.Status, ref.GatewayRefundID, ref.InitiatedBy, ref.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SumProcessedRefundsTx totals successful refunds for a payment under the
// caller's transaction.
func (r *Repository) SumProcessedRefundsTx(ctx context.Context, tx *sqlx.Tx, paymentID int) (int64, error) {
	var total int64
	err := tx.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM payment_refunds
		WHERE payment_id = $1 AND status = 'processed'`, paymentID)
	return total, err
}

// SetRefundStatusTx moves a payment into partially_refunded or refunded
// after a processed refund.
func (r *Repository) SetRefundStatusTx(ctx context.Context, tx *sqlx.Tx, p *Payment, status Status) error {
	if !CanTransition(p.Status, status) {
		return ErrInvalidTransition
	}
	now := time.Now()
	_, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET payment_status = $1, refunded_at = $2, updated_at = NOW()
		WHERE id = $3`, status, now, p.ID)
	if err != nil {
		return err
	}
	p.Status = status
	p.RefundedAt = &now
	return nil
}

func (r *Repository) ListRefunds(ctx context.Context, paymentID int) ([]Refund, error) {
	refunds := []Refund{}
	err := r.db.SelectContext(ctx, &refunds, `
		SELECT id, payment_id, amount, reason, status, gateway_refund_id, initiated_by, processed_at, created_at
		FROM payment_refunds
		WHERE payment_id = $1
		ORDER BY created_at DESC`, paymentID)
	return refunds, err
}
