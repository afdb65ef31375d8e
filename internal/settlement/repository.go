package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/db"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
)

var (
	ErrRankAlreadySettled     = errors.New("rank already settled for this tournament")
	ErrParticipantNotEligible = errors.New("participant is not a confirmed entry")
	ErrParticipantNotFound    = errors.New("participant not found in this tournament")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return db.InTx(ctx, r.db, fn)
}

// RankSettledTx reports whether this rank was already paid out. Locked read
// so two admins declaring at once serialize.
func (r *Repository) RankSettledTx(ctx context.Context, tx *sqlx.Tx, tournamentID, rank int) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM winners WHERE tournament_id = $1 AND rank = $2)`,
		tournamentID, rank)
	return exists, err
}

// ParticipantForUpdateTx loads a participant scoped to the tournament under
// a row lock.
func (r *Repository) ParticipantForUpdateTx(ctx context.Context, tx *sqlx.Tx, tournamentID, participantID int) (*tournament.Participant, error) {
	var p tournament.Participant
	err := tx.GetContext(ctx, &p, `
		SELECT id, tournament_id, user_id, team_id, bgmi_id, in_game_name,
			status, payment_status, payment_id, kills, rank, prize_won, registered_at
		FROM tournament_participants
		WHERE id = $1 AND tournament_id = $2
		FOR UPDATE`,
		participantID, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) InsertWinnerTx(ctx context.Context, tx *sqlx.Tx, w *Winner) (*Winner, error) {
	var created Winner
	err := tx.GetContext(ctx, &created, `
		INSERT INTO winners (tournament_id, participant_id, user_id, rank, kills, prize_amount, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, tournament_id, participant_id, user_id, rank, kills, prize_amount, payment_id, created_at`,
		w.TournamentID, w.ParticipantID, w.UserID, w.Rank, w.Kills, w.PrizeAmount, w.PaymentID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RecordResultTx stamps rank, kills and prize onto the participant row.
func (r *Repository) RecordResultTx(ctx context.Context, tx *sqlx.Tx, participantID, rank, kills int, prize int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tournament_participants
		SET rank = $2, kills = $3, prize_won = $4
		WHERE id = $1`,
		participantID, rank, kills, prize)
	return err
}

func (r *Repository) ListByTournament(ctx context.Context, tournamentID int) ([]Winner, error) {
	winners := []Winner{}
	err := r.db.SelectContext(ctx, &winners, `
		SELECT w.id, w.tournament_id, w.participant_id, w.user_id, w.rank, w.kills,
			w.prize_amount, w.payment_id, w.created_at,
			u.name AS user_name, t.title AS tournament_title
		FROM winners w
		JOIN users u ON u.id = w.user_id
		JOIN tournaments t ON t.id = w.tournament_id
		WHERE w.tournament_id = $1
		ORDER BY w.rank ASC`, tournamentID)
	return winners, err
}

// Recent returns the latest settled winners across tournaments, for the
// public winners feed.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Winner, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	winners := []Winner{}
	err := r.db.SelectContext(ctx, &winners, `
		SELECT w.id, w.tournament_id, w.participant_id, w.user_id, w.rank, w.kills,
			w.prize_amount, w.payment_id, w.created_at,
			u.name AS user_name, t.title AS tournament_title
		FROM winners w
		JOIN users u ON u.id = w.user_id
		JOIN tournaments t ON t.id = w.tournament_id
		ORDER BY w.created_at DESC
		LIMIT $1`, limit)
	return winners, err
}
