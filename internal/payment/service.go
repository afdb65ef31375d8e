package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

var (
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrNothingToRefund  = errors.New("payment has no refundable amount")
	ErrCouponUnusable   = errors.New("coupon could not be committed")
)

// Service drives the payment lifecycle. Every state change that has a
// consequence elsewhere (roster slot, coupon counter, wallet balance) happens
// in a single database transaction.
type Service interface {
	CreateOrder(ctx context.Context, userID, paymentID int) (*gateway.Order, *Payment, error)
	Verify(ctx context.Context, userID int, isAdmin bool, paymentID int, cb gateway.Callback) (*Payment, error)
	PayWithWallet(ctx context.Context, userID, paymentID int) (*Payment, error)
	Decide(ctx context.Context, adminID, paymentID int, approve bool, transactionRef, reason string) (*Payment, error)
	Refund(ctx context.Context, adminID, paymentID int, amount int64, reason string) (*Refund, error)
	Get(ctx context.Context, userID int, isAdmin bool, paymentID int) (*Payment, error)
	ListMine(ctx context.Context, userID, limit, offset int) ([]Payment, error)
	ListManualReview(ctx context.Context, status Status, limit, offset int) ([]Payment, error)
	ListRefunds(ctx context.Context, paymentID int) ([]Refund, error)
}

type service struct {
	repo      Store
	roster    RosterStore
	coupons   UsageCommitter
	wallet    wallet.Ledger
	gw        gateway.Gateway
	keySecret string
}

func NewService(repo Store, roster RosterStore, coupons UsageCommitter, ledger wallet.Ledger, gw gateway.Gateway, keySecret string) Service {
	return &service{
		repo:      repo,
		roster:    roster,
		coupons:   coupons,
		wallet:    ledger,
		gw:        gw,
		keySecret: keySecret,
	}
}

// CreateOrder opens a gateway order for a pending payment and moves it to
// processing. Zero-amount payments never reach the gateway.
func (s *service) CreateOrder(ctx context.Context, userID, paymentID int) (*gateway.Order, *Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if p.UserID != userID {
		return nil, nil, ErrForbidden
	}
	if p.Status != StatusPending {
		return nil, nil, ErrNotPayable
	}
	if p.Amount <= 0 {
		return nil, nil, ErrNotPayable
	}

	order, err := s.gw.CreateOrder(ctx, p.Amount, p.Currency, p.InvoiceID, map[string]string{
		"payment_id":    strconv.Itoa(p.ID),
		"tournament_id": strconv.Itoa(p.TournamentID),
		"user_id":       strconv.Itoa(p.UserID),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.AttachGatewayOrder(ctx, p.ID, order.ID); err != nil {
		return nil, nil, err
	}
	p.GatewayOrderID = order.ID
	p.Status = StatusProcessing
	return order, p, nil
}

// Verify settles a gateway callback. A bad signature fails the payment and
// releases its roster slot; a valid one marks it successful, flips the roster
// row and commits coupon usage, all in one transaction. Re-verifying an
// already successful payment is a no-op.
func (s *service) Verify(ctx context.Context, userID int, isAdmin bool, paymentID int, cb gateway.Callback) (*Payment, error) {
	valid := gateway.VerifySignature(cb, s.keySecret)

	var out *Payment
	err := s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.repo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.UserID != userID && !isAdmin {
			return ErrForbidden
		}
		if p.Status == StatusSuccess {
			out = p
			return nil
		}

		if !valid {
			if err := s.repo.MarkFailedTx(ctx, tx, p, "signature verification failed"); err != nil {
				return err
			}
			if err := s.roster.ReleaseSlotTx(ctx, tx, p); err != nil {
				return err
			}
			out = p
			return ErrInvalidSignature
		}

		if !CanTransition(p.Status, StatusSuccess) {
			return ErrNotPayable
		}
		if err := s.repo.MarkSuccessTx(ctx, tx, p, GatewayRazorpay, cb, nil); err != nil {
			return err
		}
		if err := s.roster.MarkPaidTx(ctx, tx, p); err != nil {
			return err
		}
		if p.CouponID != nil {
			if err := s.coupons.CommitUsageTx(ctx, tx, *p.CouponID, p.UserID); err != nil {
				return fmt.Errorf("%w: %v", ErrCouponUnusable, err)
			}
		}
		out = p
		return nil
	})
	if err != nil && !errors.Is(err, ErrInvalidSignature) {
		return nil, err
	}
	return out, err
}

// PayWithWallet settles a payment from the user's wallet balance. The debit,
// the status flip, the roster update and the coupon commit share one
// transaction, so a failed debit leaves the payment payable.
func (s *service) PayWithWallet(ctx context.Context, userID, paymentID int) (*Payment, error) {
	var out *Payment
	err := s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.repo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.UserID != userID {
			return ErrForbidden
		}
		if p.Status == StatusSuccess {
			out = p
			return nil
		}
		if !CanTransition(p.Status, StatusSuccess) {
			return ErrNotPayable
		}

		if p.Amount > 0 {
			desc := fmt.Sprintf("Tournament entry fee - %s", p.InvoiceID)
			_, err = s.wallet.DebitTx(ctx, tx, userID, p.Amount, wallet.KindTournamentFee, desc, wallet.Meta{
				TournamentID: &p.TournamentID,
				PaymentID:    &p.ID,
			})
			if err != nil {
				return err
			}
		}
		if err := s.repo.MarkSuccessTx(ctx, tx, p, GatewayWallet, gateway.Callback{}, nil); err != nil {
			return err
		}
		if err := s.roster.MarkPaidTx(ctx, tx, p); err != nil {
			return err
		}
		if p.CouponID != nil {
			if err := s.coupons.CommitUsageTx(ctx, tx, *p.CouponID, p.UserID); err != nil {
				return fmt.Errorf("%w: %v", ErrCouponUnusable, err)
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decide resolves a manually reviewed payment. Approval records the operator
// reference and completes registration; rejection fails the payment and frees
// the slot.
func (s *service) Decide(ctx context.Context, adminID, paymentID int, approve bool, transactionRef, reason string) (*Payment, error) {
	var out *Payment
	err := s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.repo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		if approve {
			if !CanTransition(p.Status, StatusSuccess) {
				return ErrNotPayable
			}
			if transactionRef != "" {
				p.TransactionRef = transactionRef
			}
			if err := s.repo.MarkSuccessTx(ctx, tx, p, GatewayManual, gateway.Callback{}, &adminID); err != nil {
				return err
			}
			if err := s.roster.MarkPaidTx(ctx, tx, p); err != nil {
				return err
			}
			if p.CouponID != nil {
				if err := s.coupons.CommitUsageTx(ctx, tx, *p.CouponID, p.UserID); err != nil {
					return fmt.Errorf("%w: %v", ErrCouponUnusable, err)
				}
			}
			out = p
			return nil
		}

		if err := s.repo.MarkFailedTx(ctx, tx, p, "manual review rejected: "+reason); err != nil {
			return err
		}
		if err := s.roster.ReleaseSlotTx(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Refund refunds part or all of a successful payment. Wallet payments are
// credited back to the wallet; gateway payments go through the provider.
// The running refunded total is capped at the paid amount.
func (s *service) Refund(ctx context.Context, adminID, paymentID int, amount int64, reason string) (*Refund, error) {
	if amount <= 0 {
		return nil, ErrRefundExceedsAmount
	}

	var out *Refund
	err := s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		p, err := s.repo.GetForUpdateTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != StatusSuccess && p.Status != StatusPartiallyRefunded {
			return ErrNothingToRefund
		}

		refunded, err := s.repo.SumProcessedRefundsTx(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if amount > p.Amount-refunded {
			return ErrRefundExceedsAmount
		}

		now := time.Now()
		ref := &Refund{
			PaymentID:   p.ID,
			Amount:      amount,
			Reason:      reason,
			Status:      "processed",
			InitiatedBy: adminID,
			ProcessedAt: &now,
		}

		switch p.Gateway {
		case GatewayWallet, GatewayManual:
			desc := fmt.Sprintf("Refund for %s - %s", p.InvoiceID, reason)
			_, err = s.wallet.CreditTx(ctx, tx, p.UserID, amount, wallet.KindRefund, desc, wallet.Meta{
				TournamentID: &p.TournamentID,
				PaymentID:    &p.ID,
			})
			if err != nil {
				return err
			}
		default:
			refundID, err := s.gw.Refund(ctx, p.GatewayPaymentID, amount, reason)
			if err != nil {
				return err
			}
			ref.GatewayRefundID = refundID
		}

		out, err = s.repo.InsertRefundTx(ctx, tx, ref)
		if err != nil {
			return err
		}

		status := StatusPartiallyRefunded
		if refunded+amount >= p.Amount {
			status = StatusRefunded
		}
		return s.repo.SetRefundStatusTx(ctx, tx, p, status)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID int, isAdmin bool, paymentID int) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *service) ListMine(ctx context.Context, userID, limit, offset int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListManualReview(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	return s.repo.ListManualReview(ctx, status, limit, offset)
}

func (s *service) ListRefunds(ctx context.Context, paymentID int) ([]Refund, error) {
	return s.repo.ListRefunds(ctx, paymentID)
}
