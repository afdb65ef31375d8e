package tournament_test

import (
	"context"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

func TestWalletCreditDebit_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := wallet.NewRepository(db, 50)
	ctx := context.Background()

	userID := createTestUser(t, db, "wallet@test.com", "Wallet User")

	w, err := repo.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, userID, w.UserID)
	require.Equal(t, int64(0), w.Balance)

	txn, err := repo.Credit(ctx, userID, 500, wallet.KindDeposit, "Wallet top-up", wallet.Meta{})
	require.NoError(t, err)
	require.Equal(t, int64(500), txn.BalanceAfter)

	txn, err = repo.Debit(ctx, userID, 100, wallet.KindTournamentFee, "Entry fee", wallet.Meta{})
	require.NoError(t, err)
	require.Equal(t, int64(-100), txn.Amount)
	require.Equal(t, int64(400), txn.BalanceAfter)

	w, err = repo.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(400), w.Balance)
	require.Equal(t, int64(500), w.TotalDeposited)
	require.Equal(t, int64(100), w.TotalSpent)

	txns, err := repo.GetTransactions(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestWalletInsufficientBalance_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := wallet.NewRepository(db, 50)
	ctx := context.Background()

	userID := createTestUser(t, db, "poor@test.com", "Poor User")

	_, err := repo.Debit(ctx, userID, 500, wallet.KindTournamentFee, "Entry fee", wallet.Meta{})
	require.ErrorIs(t, err, wallet.ErrInsufficientBalance)
}

func TestWalletDuplicateGatewayCredit_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := wallet.NewRepository(db, 50)
	ctx := context.Background()

	userID := createTestUser(t, db, "topup@test.com", "TopUp User")

	_, err := repo.CreditFromGateway(ctx, userID, 300, "order_abc", "pay_abc")
	require.NoError(t, err)

	// A replayed gateway callback must not credit twice.
	_, err = repo.CreditFromGateway(ctx, userID, 300, "order_abc", "pay_abc")
	require.ErrorIs(t, err, wallet.ErrDuplicateGatewayPayment)

	w, err := repo.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(300), w.Balance)
}

func TestWithdrawalHold_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := wallet.NewRepository(db, 50)
	ctx := context.Background()

	userID := createTestUser(t, db, "payout@test.com", "Payout User")
	adminID := createTestAdmin(t, db, "admin@test.com")

	_, err := repo.Credit(ctx, userID, 1000, wallet.KindPrizeWon, "Prize", wallet.Meta{})
	require.NoError(t, err)

	// The hold leaves the spendable balance as soon as the request lands.
	wd, err := repo.RequestWithdrawal(ctx, userID, 600, "upi", "player@upi")
	require.NoError(t, err)
	require.Equal(t, wallet.WithdrawalPending, wd.Status)

	w, err := repo.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(400), w.Balance)

	// Rejection refunds the held amount.
	wd, err = repo.ResolveWithdrawal(ctx, wd.ID, adminID, false, "", "account details did not match")
	require.NoError(t, err)
	require.Equal(t, wallet.WithdrawalRejected, wd.Status)

	w, err = repo.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), w.Balance)

	// A resolved hold cannot be resolved again.
	_, err = repo.ResolveWithdrawal(ctx, wd.ID, adminID, true, "UTR123", "")
	require.ErrorIs(t, err, wallet.ErrWithdrawalAlreadyResolved)
}

func TestWithdrawalBelowMinimum_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	repo := wallet.NewRepository(db, 50)
	ctx := context.Background()

	userID := createTestUser(t, db, "small@test.com", "Small User")

	_, err := repo.Credit(ctx, userID, 100, wallet.KindPrizeWon, "Prize", wallet.Meta{})
	require.NoError(t, err)

	_, err = repo.RequestWithdrawal(ctx, userID, 20, "upi", "player@upi")
	require.ErrorIs(t, err, wallet.ErrBelowMinimumWithdrawal)
}
