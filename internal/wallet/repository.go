package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrWalletLocked              = errors.New("wallet is locked")
	ErrBelowMinimumWithdrawal    = errors.New("amount below minimum withdrawal")
	ErrWithdrawalNotFound        = errors.New("withdrawal not found")
	ErrWithdrawalAlreadyResolved = errors.New("withdrawal already resolved")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrDuplicateGatewayPayment   = errors.New("gateway payment already credited")
)

const walletColumns = `id, user_id, balance, total_deposited, total_withdrawn, total_earned,
	total_spent, is_locked, lock_reason, withdrawal_method, withdrawal_account_name,
	withdrawal_account_no, withdrawal_ifsc, withdrawal_upi_id, created_at, updated_at`

type Repository struct {
	db *sqlx.DB

	// Platform floor for withdrawal requests, whole rupees.
	minWithdrawal int64
}

func NewRepository(db *sqlx.DB, minWithdrawal int64) *Repository {
	return &Repository{db: db, minWithdrawal: minWithdrawal}
}

func (r *Repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+walletColumns,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// lockWalletTx loads the user's wallet FOR UPDATE, creating it on first use.
func (r *Repository) lockWalletTx(ctx context.Context, tx *sqlx.Tx, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := tx.QueryRowxContext(ctx, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE`,
		userID,
	).StructScan(w)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		RETURNING `+walletColumns,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repository) appendTx(ctx context.Context, tx *sqlx.Tx, w *Wallet, kind Kind, amount, balanceAfter int64, description string, meta Meta) (*Transaction, error) {
	entry := &Transaction{}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO wallet_transactions
			(wallet_id, kind, amount, balance_after, description, status,
			 tournament_id, payment_id, gateway_order_id, gateway_payment_id)
		VALUES ($1, $2, $3, $4, $5, 'completed', $6, $7, NULLIF($8, ''), NULLIF($9, ''))
		RETURNING id, wallet_id, kind, amount, balance_after, description, status,
			tournament_id, payment_id,
			COALESCE(gateway_order_id, '') AS gateway_order_id,
			COALESCE(gateway_payment_id, '') AS gateway_payment_id,
			created_at`,
		w.ID, kind, amount, balanceAfter, description,
		meta.TournamentID, meta.PaymentID, meta.GatewayOrderID, meta.GatewayPaymentID,
	).StructScan(entry)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// CreditTx adds money inside the caller's transaction. The only failure
// beyond storage errors is a non-positive amount; credit has no other
// failure path.
func (r *Repository) CreditTx(ctx context.Context, tx *sqlx.Tx, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := r.lockWalletTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.Balance + amount

	var depositDelta, earnedDelta int64
	switch kind {
	case KindDeposit:
		depositDelta = amount
	case KindPrizeWon, KindRefund:
		earnedDelta = amount
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1,
		    total_deposited = total_deposited + $2,
		    total_earned = total_earned + $3,
		    updated_at = NOW()
		WHERE id = $4`,
		newBalance, depositDelta, earnedDelta, w.ID,
	)
	if err != nil {
		return nil, err
	}

	return r.appendTx(ctx, tx, w, kind, amount, newBalance, description, meta)
}

// DebitTx removes money inside the caller's transaction. The ledger entry is
// stored with a negative amount. Callers pairing a debit with another state
// change must run both in the same transaction so a downstream failure
// rolls the debit back too.
func (r *Repository) DebitTx(ctx context.Context, tx *sqlx.Tx, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := r.lockWalletTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if w.IsLocked {
		return nil, ErrWalletLocked
	}
	if amount > w.Balance {
		return nil, ErrInsufficientBalance
	}

	newBalance := w.Balance - amount

	var spentDelta, withdrawnDelta int64
	switch kind {
	case KindTournamentFee:
		spentDelta = amount
	case KindWithdrawal:
		withdrawnDelta = amount
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = $1,
		    total_spent = total_spent + $2,
		    total_withdrawn = total_withdrawn + $3,
		    updated_at = NOW()
		WHERE id = $4`,
		newBalance, spentDelta, withdrawnDelta, w.ID,
	)
	if err != nil {
		return nil, err
	}

	return r.appendTx(ctx, tx, w, kind, -amount, newBalance, description, meta)
}

func (r *Repository) Credit(ctx context.Context, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error) {
	var entry *Transaction
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		entry, err = r.CreditTx(ctx, tx, userID, amount, kind, description, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) Debit(ctx context.Context, userID int, amount int64, kind Kind, description string, meta Meta) (*Transaction, error) {
	var entry *Transaction
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		entry, err = r.DebitTx(ctx, tx, userID, amount, kind, description, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditFromGateway credits a verified top-up. The unique index on
// gateway_payment_id turns a replayed callback into ErrDuplicateGatewayPayment
// instead of a double credit.
func (r *Repository) CreditFromGateway(ctx context.Context, userID int, amount int64, orderID, paymentID string) (*Transaction, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM wallet_transactions WHERE gateway_payment_id = $1)`, paymentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateGatewayPayment
	}

	return r.Credit(ctx, userID, amount, KindDeposit, "Money added to wallet", Meta{
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
	})
}

// RequestWithdrawal moves the amount out of the spendable balance into a
// pending hold in one transaction. Balance drops now, not at approval time.
func (r *Repository) RequestWithdrawal(ctx context.Context, userID int, amount int64, method, accountDetails string) (*Withdrawal, error) {
	if amount < r.minWithdrawal {
		return nil, ErrBelowMinimumWithdrawal
	}

	var wd *Withdrawal
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		w, err := r.lockWalletTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if w.IsLocked {
			return ErrWalletLocked
		}
		if amount > w.Balance {
			return ErrInsufficientBalance
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
			w.Balance-amount, w.ID,
		)
		if err != nil {
			return err
		}

		wd = &Withdrawal{}
		return tx.QueryRowxContext(ctx, `
			INSERT INTO wallet_withdrawals (wallet_id, user_id, amount, method, account_details, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			RETURNING id, wallet_id, user_id, amount, method, account_details, status,
				requested_at, processed_at, processed_by,
				COALESCE(rejection_reason, '') AS rejection_reason,
				COALESCE(transaction_ref, '') AS transaction_ref`,
			w.ID, userID, amount, method, accountDetails,
		).StructScan(wd)
	})
	if err != nil {
		return nil, err
	}

	return wd, nil
}

// ResolveWithdrawal settles a pending hold. Completed appends the withdrawal
// ledger entry and bumps total_withdrawn; the balance does not move again
// because the hold already took it. Rejected returns the held amount and
// appends a refund entry.
func (r *Repository) ResolveWithdrawal(ctx context.Context, withdrawalID, adminID int, approve bool, transactionRef, rejectionReason string) (*Withdrawal, error) {
	var wd *Withdrawal
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		wd = &Withdrawal{}
		err := tx.QueryRowxContext(ctx, `
			SELECT id, wallet_id, user_id, amount, method, account_details, status,
				requested_at, processed_at, processed_by,
				COALESCE(rejection_reason, '') AS rejection_reason,
				COALESCE(transaction_ref, '') AS transaction_ref
			FROM wallet_withdrawals
			WHERE id = $1
			FOR UPDATE`,
			withdrawalID,
		).StructScan(wd)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWithdrawalNotFound
		}
		if err != nil {
			return err
		}

		if wd.Status != WithdrawalPending {
			return ErrWithdrawalAlreadyResolved
		}

		w := &Wallet{}
		if err := tx.QueryRowxContext(ctx, `
			SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, wd.WalletID,
		).StructScan(w); err != nil {
			return err
		}

		if approve {
			if _, err := tx.ExecContext(ctx, `
				UPDATE wallets SET total_withdrawn = total_withdrawn + $1, updated_at = NOW()
				WHERE id = $2`,
				wd.Amount, w.ID,
			); err != nil {
				return err
			}

			if _, err := r.appendTx(ctx, tx, w, KindWithdrawal, -wd.Amount, w.Balance,
				"Withdrawal processed - "+wd.Method, Meta{}); err != nil {
				return err
			}

			return tx.QueryRowxContext(ctx, `
				UPDATE wallet_withdrawals
				SET status = 'completed', processed_at = NOW(), processed_by = $2, transaction_ref = $3
				WHERE id = $1
				RETURNING id, wallet_id, user_id, amount, method, account_details, status,
					requested_at, processed_at, processed_by,
					COALESCE(rejection_reason, '') AS rejection_reason,
					COALESCE(transaction_ref, '') AS transaction_ref`,
				wd.ID, adminID, transactionRef,
			).StructScan(wd)
		}

		newBalance := w.Balance + wd.Amount
		if _, err := tx.ExecContext(ctx, `
			UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
			newBalance, w.ID,
		); err != nil {
			return err
		}

		if _, err := r.appendTx(ctx, tx, w, KindRefund, wd.Amount, newBalance,
			"Withdrawal rejected - "+rejectionReason, Meta{}); err != nil {
			return err
		}

		return tx.QueryRowxContext(ctx, `
			UPDATE wallet_withdrawals
			SET status = 'rejected', processed_at = NOW(), processed_by = $2, rejection_reason = $3
			WHERE id = $1
			RETURNING id, wallet_id, user_id, amount, method, account_details, status,
				requested_at, processed_at, processed_by,
				COALESCE(rejection_reason, '') AS rejection_reason,
				COALESCE(transaction_ref, '') AS transaction_ref`,
			wd.ID, adminID, rejectionReason,
		).StructScan(wd)
	})
	if err != nil {
		return nil, err
	}

	return wd, nil
}

func (r *Repository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, kind, amount, balance_after, description, status,
			tournament_id, payment_id,
			COALESCE(gateway_order_id, '') AS gateway_order_id,
			COALESCE(gateway_payment_id, '') AS gateway_payment_id,
			created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		walletID, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *Repository) GetWithdrawals(ctx context.Context, userID int) ([]Withdrawal, error) {
	var wds []Withdrawal
	err := r.db.SelectContext(ctx, &wds, `
		SELECT id, wallet_id, user_id, amount, method, account_details, status,
			requested_at, processed_at, processed_by,
			COALESCE(rejection_reason, '') AS rejection_reason,
			COALESCE(transaction_ref, '') AS transaction_ref
		FROM wallet_withdrawals
		WHERE user_id = $1
		ORDER BY requested_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return wds, nil
}

// ListWithdrawals returns holds across all wallets, optionally filtered by
// status, newest first. Used by the admin review queue.
func (r *Repository) ListWithdrawals(ctx context.Context, status string, limit, offset int) ([]Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}

	var wds []Withdrawal
	err := r.db.SelectContext(ctx, &wds, `
		SELECT id, wallet_id, user_id, amount, method, account_details, status,
			requested_at, processed_at, processed_by,
			COALESCE(rejection_reason, '') AS rejection_reason,
			COALESCE(transaction_ref, '') AS transaction_ref
		FROM wallet_withdrawals
		WHERE ($1 = '' OR status = $1)
		ORDER BY requested_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, err
	}

	return wds, nil
}

func (r *Repository) UpdateWithdrawalInfo(ctx context.Context, userID int, method, accountName, accountNo, ifsc, upiID string) (*Wallet, error) {
	if _, err := r.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	w := &Wallet{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE wallets
		SET withdrawal_method = $2, withdrawal_account_name = $3, withdrawal_account_no = $4,
		    withdrawal_ifsc = $5, withdrawal_upi_id = $6, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+walletColumns,
		userID, method, accountName, accountNo, ifsc, upiID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := r.db.GetContext(ctx, stats, `
		SELECT
			(SELECT COUNT(*) FROM wallets)                        AS total_wallets,
			COALESCE((SELECT SUM(balance) FROM wallets), 0)       AS total_balance,
			COALESCE((SELECT SUM(total_deposited) FROM wallets), 0) AS total_deposited,
			COALESCE((SELECT SUM(total_withdrawn) FROM wallets), 0) AS total_withdrawn,
			COALESCE((SELECT SUM(total_earned) FROM wallets), 0)  AS total_earned,
			(SELECT COUNT(*) FROM wallet_withdrawals WHERE status = 'pending') AS pending_withdrawal_count,
			COALESCE((SELECT SUM(amount) FROM wallet_withdrawals WHERE status = 'pending'), 0) AS pending_withdrawal_amount`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
