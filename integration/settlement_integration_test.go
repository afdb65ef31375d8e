package tournament_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/settlement"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/user"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

func newSettlementService(db *sqlx.DB) settlement.Service {
	return settlement.NewService(
		settlement.NewRepository(db),
		tournament.NewRepository(db),
		payment.NewRepository(db),
		wallet.NewRepository(db, 50),
		user.NewRepository(db),
	)
}

func TestSettlementPayout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	adminID := createTestAdmin(t, db, "admin@test.com")
	userID := createTestUser(t, db, "winner@test.com", "Winner")
	tournamentID := createTestTournament(t, db, adminID, "solo", 100, 50)
	createFreeCoupon(t, db, "FREE100", adminID)

	ctx := context.Background()

	// Free-coupon entry confirms immediately, which makes it payable.
	reg, err := newRegistrationService(db).Register(ctx, userID, tournamentID, tournament.RegisterRequest{CouponCode: "FREE100"})
	require.NoError(t, err)
	require.Equal(t, tournament.ParticipantConfirmed, reg.Participant.Status)

	svc := newSettlementService(db)

	results, err := svc.DeclareWinners(ctx, adminID, tournamentID, settlement.DeclareRequest{
		Winners: []settlement.WinnerEntry{
			{ParticipantID: reg.Participant.ID, Rank: 1, Kills: 5, PrizeAmount: 1000},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, settlement.ResultSettled, results[0].Status)

	// Prize 1000 plus 5 kills at 10 per kill.
	require.Equal(t, int64(1050), results[0].Amount)

	w, err := wallet.NewRepository(db, 50).GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1050), w.Balance)
	require.Equal(t, int64(1050), w.TotalEarned)

	winners, err := svc.Winners(ctx, tournamentID)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	require.Equal(t, 1, winners[0].Rank)
	require.Equal(t, int64(1050), winners[0].PrizeAmount)

	// Rank 1 bumps the player's win stats.
	var won int
	require.NoError(t, db.Get(&won, "SELECT tournaments_won FROM users WHERE id = $1", userID))
	require.Equal(t, 1, won)

	// Re-posting the declaration skips the settled rank instead of paying twice.
	results, err = svc.DeclareWinners(ctx, adminID, tournamentID, settlement.DeclareRequest{
		Winners: []settlement.WinnerEntry{
			{ParticipantID: reg.Participant.ID, Rank: 1, Kills: 5, PrizeAmount: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, settlement.ResultSkipped, results[0].Status)

	w, err = wallet.NewRepository(db, 50).GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1050), w.Balance)
}

func TestSettlementUnconfirmedParticipant_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanDatabase(t, db)

	adminID := createTestAdmin(t, db, "admin@test.com")
	userID := createTestUser(t, db, "pending@test.com", "Pending")
	tournamentID := createTestTournament(t, db, adminID, "solo", 100, 50)

	ctx := context.Background()

	// Paid entry that never settled: the slot is held but the entry is not
	// confirmed, so it cannot win.
	reg, err := newRegistrationService(db).Register(ctx, userID, tournamentID, tournament.RegisterRequest{})
	require.NoError(t, err)
	require.Equal(t, tournament.ParticipantPendingPayment, reg.Participant.Status)

	svc := newSettlementService(db)

	results, err := svc.DeclareWinners(ctx, adminID, tournamentID, settlement.DeclareRequest{
		Winners: []settlement.WinnerEntry{
			{ParticipantID: reg.Participant.ID, Rank: 1, PrizeAmount: 1000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, settlement.ResultFailed, results[0].Status)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM winners WHERE tournament_id = $1", tournamentID))
	require.Equal(t, 0, count)
}
