package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/user"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

// Service settles tournament results into wallet credits.
type Service interface {
	DeclareWinners(ctx context.Context, adminID, tournamentID int, req DeclareRequest) ([]EntryResult, error)
	Winners(ctx context.Context, tournamentID int) ([]Winner, error)
	Recent(ctx context.Context, limit int) ([]Winner, error)
}

type service struct {
	repo        Store
	tournaments tournament.Store
	payments    payment.Store
	wallet      wallet.Ledger
	users       user.Store
}

func NewService(repo Store, tournaments tournament.Store, payments payment.Store, ledger wallet.Ledger, users user.Store) Service {
	return &service{
		repo:        repo,
		tournaments: tournaments,
		payments:    payments,
		wallet:      ledger,
		users:       users,
	}
}

// DeclareWinners pays out declared ranks one transaction per entry. An
// already settled rank is skipped, so re-posting the same declaration after
// a partial failure finishes the remainder without double-paying anyone.
// For team entries the credit goes to the captain's wallet.
func (s *service) DeclareWinners(ctx context.Context, adminID, tournamentID int, req DeclareRequest) ([]EntryResult, error) {
	t, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	results := make([]EntryResult, 0, len(req.Winners))
	for _, entry := range req.Winners {
		res := s.settleEntry(ctx, adminID, t, entry)
		results = append(results, res)
	}
	return results, nil
}

func (s *service) settleEntry(ctx context.Context, adminID int, t *tournament.Tournament, entry WinnerEntry) EntryResult {
	var settled EntryResult
	err := s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		done, err := s.repo.RankSettledTx(ctx, tx, t.ID, entry.Rank)
		if err != nil {
			return err
		}
		if done {
			return ErrRankAlreadySettled
		}

		p, err := s.repo.ParticipantForUpdateTx(ctx, tx, t.ID, entry.ParticipantID)
		if err != nil {
			return err
		}
		if p.Status != tournament.ParticipantConfirmed {
			return ErrParticipantNotEligible
		}

		total := entry.PrizeAmount + int64(entry.Kills)*t.PerKillReward

		payout := &payment.Payment{
			Type:         payment.TypePrizePayout,
			UserID:       p.UserID,
			TournamentID: t.ID,
			TeamID:       p.TeamID,
			BaseAmount:   total,
			Amount:       total,
			Status:       payment.StatusPending,
			Gateway:      payment.GatewayWallet,
		}
		payout, err = s.payments.CreateTx(ctx, tx, payout)
		if err != nil {
			return err
		}
		if err := s.payments.MarkSuccessTx(ctx, tx, payout, payment.GatewayWallet, gateway.Callback{}, &adminID); err != nil {
			return err
		}

		if total > 0 {
			desc := fmt.Sprintf("Prize for rank %d - %s", entry.Rank, t.Title)
			_, err = s.wallet.CreditTx(ctx, tx, p.UserID, total, wallet.KindPrizeWon, desc, wallet.Meta{
				TournamentID: &t.ID,
				PaymentID:    &payout.ID,
			})
			if err != nil {
				return err
			}
		}

		if err := s.repo.RecordResultTx(ctx, tx, p.ID, entry.Rank, entry.Kills, total); err != nil {
			return err
		}
		if err := s.users.AddPrizeStatsTx(ctx, tx, p.UserID, entry.Rank, total); err != nil {
			return err
		}

		w, err := s.repo.InsertWinnerTx(ctx, tx, &Winner{
			TournamentID:  t.ID,
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Rank:          entry.Rank,
			Kills:         entry.Kills,
			PrizeAmount:   total,
			PaymentID:     payout.ID,
		})
		if err != nil {
			return err
		}

		settled = EntryResult{Rank: w.Rank, UserID: w.UserID, Amount: w.PrizeAmount, Status: ResultSettled}
		return nil
	})
	if err == nil {
		return settled
	}
	if errors.Is(err, ErrRankAlreadySettled) {
		return EntryResult{Rank: entry.Rank, Status: ResultSkipped, Message: err.Error()}
	}
	return EntryResult{Rank: entry.Rank, Status: ResultFailed, Message: err.Error()}
}

func (s *service) Winners(ctx context.Context, tournamentID int) ([]Winner, error) {
	return s.repo.ListByTournament(ctx, tournamentID)
}

func (s *service) Recent(ctx context.Context, limit int) ([]Winner, error) {
	return s.repo.Recent(ctx, limit)
}
