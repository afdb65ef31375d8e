package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB, 100)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

var walletCols = []string{
	"id", "user_id", "balance", "total_deposited", "total_withdrawn", "total_earned",
	"total_spent", "is_locked", "lock_reason", "withdrawal_method", "withdrawal_account_name",
	"withdrawal_account_no", "withdrawal_ifsc", "withdrawal_upi_id", "created_at", "updated_at",
}

func walletRow(id, userID int, balance int64, locked bool) *sqlmock.Rows {
	return sqlmock.NewRows(walletCols).AddRow(
		id, userID, balance, int64(0), int64(0), int64(0),
		int64(0), locked, "", "", "",
		"", "", "", time.Now(), time.Now(),
	)
}

var txCols = []string{
	"id", "wallet_id", "kind", "amount", "balance_after", "description", "status",
	"tournament_id", "payment_id", "gateway_order_id", "gateway_payment_id", "created_at",
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id)")).
		WithArgs(10).
		WillReturnRows(walletRow(5, 10, 0, false))

	w, err := repo.GetOrCreateWallet(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredit_UpdatesBalanceAndAppendsEntry(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRow(7, 20, 500, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(700), int64(0), int64(200), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WillReturnRows(sqlmock.NewRows(txCols).AddRow(
			1, 7, string(KindPrizeWon), int64(200), int64(700), "Prize for rank 1", "completed",
			nil, nil, "", "", time.Now()))
	mock.ExpectCommit()

	entry, err := repo.Credit(ctx, 20, 200, KindPrizeWon, "Prize for rank 1", Meta{})
	require.NoError(t, err)
	require.Equal(t, int64(200), entry.Amount)
	require.Equal(t, int64(700), entry.BalanceAfter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_InsufficientBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRow(7, 20, 50, false))
	mock.ExpectRollback()

	_, err := repo.Debit(ctx, 20, 100, KindTournamentFee, "Tournament entry fee", Meta{})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_LockedWallet(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRow(7, 20, 5000, true))
	mock.ExpectRollback()

	_, err := repo.Debit(ctx, 20, 100, KindTournamentFee, "Tournament entry fee", Meta{})
	require.ErrorIs(t, err, ErrWalletLocked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit_StoresNegativeAmount(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRow(7, 20, 1000, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(int64(900), int64(100), int64(0), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WillReturnRows(sqlmock.NewRows(txCols).AddRow(
			2, 7, string(KindTournamentFee), int64(-100), int64(900), "Tournament entry fee", "completed",
			nil, nil, "", "", time.Now()))
	mock.ExpectCommit()

	entry, err := repo.Debit(ctx, 20, 100, KindTournamentFee, "Tournament entry fee", Meta{})
	require.NoError(t, err)
	require.Equal(t, int64(-100), entry.Amount)
	require.Equal(t, int64(900), entry.BalanceAfter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditFromGateway_ReplayedCallback(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("pay_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.CreditFromGateway(ctx, 20, 500, "order_xyz", "pay_abc123")
	require.ErrorIs(t, err, ErrDuplicateGatewayPayment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestWithdrawal_BelowMinimum(t *testing.T) {
	repo, _, close := setupWalletMock(t)
	defer close()

	_, err := repo.RequestWithdrawal(context.Background(), 20, 99, "upi", "test@upi")
	require.ErrorIs(t, err, ErrBelowMinimumWithdrawal)
}

func TestRequestWithdrawal_HoldsBalanceImmediately(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets")).
		WithArgs(20).
		WillReturnRows(walletRow(7, 20, 1000, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1")).
		WithArgs(int64(600), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_withdrawals")).
		WithArgs(7, 20, int64(400), "upi", "test@upi").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "wallet_id", "user_id", "amount", "method", "account_details", "status",
			"requested_at", "processed_at", "processed_by", "rejection_reason", "transaction_ref",
		}).AddRow(3, 7, 20, int64(400), "upi", "test@upi", "pending", time.Now(), nil, nil, "", ""))
	mock.ExpectCommit()

	wd, err := repo.RequestWithdrawal(ctx, 20, 400, "upi", "test@upi")
	require.NoError(t, err)
	require.Equal(t, WithdrawalPending, wd.Status)
	require.Equal(t, int64(400), wd.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveWithdrawal_AlreadyResolved(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_withdrawals")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "wallet_id", "user_id", "amount", "method", "account_details", "status",
			"requested_at", "processed_at", "processed_by", "rejection_reason", "transaction_ref",
		}).AddRow(3, 7, 20, int64(400), "upi", "test@upi", "completed", time.Now(), time.Now(), 1, "", "UTR123"))
	mock.ExpectRollback()

	_, err := repo.ResolveWithdrawal(ctx, 3, 1, true, "UTR456", "")
	require.ErrorIs(t, err, ErrWithdrawalAlreadyResolved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveWithdrawal_RejectionRestoresBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_withdrawals")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "wallet_id", "user_id", "amount", "method", "account_details", "status",
			"requested_at", "processed_at", "processed_by", "rejection_reason", "transaction_ref",
		}).AddRow(3, 7, 20, int64(400), "upi", "test@upi", "pending", time.Now(), nil, nil, "", ""))
	mock.ExpectQuery(regexp.QuoteMeta("FROM wallets WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(walletRow(7, 20, 600, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance = $1")).
		WithArgs(int64(1000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WillReturnRows(sqlmock.NewRows(txCols).AddRow(
			4, 7, string(KindRefund), int64(400), int64(1000), "Withdrawal rejected - invalid UPI", "completed",
			nil, nil, "", "", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallet_withdrawals")).
		WithArgs(3, 1, "invalid UPI").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "wallet_id", "user_id", "amount", "method", "account_details", "status",
			"requested_at", "processed_at", "processed_by", "rejection_reason", "transaction_ref",
		}).AddRow(3, 7, 20, int64(400), "upi", "test@upi", "rejected", time.Now(), time.Now(), 1, "invalid UPI", ""))
	mock.ExpectCommit()

	wd, err := repo.ResolveWithdrawal(ctx, 3, 1, false, "", "invalid UPI")
	require.NoError(t, err)
	require.Equal(t, WithdrawalRejected, wd.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
