package settlement

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
)

// Store is the persistence surface the settlement service depends on.
type Store interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	RankSettledTx(ctx context.Context, tx *sqlx.Tx, tournamentID, rank int) (bool, error)
	ParticipantForUpdateTx(ctx context.Context, tx *sqlx.Tx, tournamentID, participantID int) (*tournament.Participant, error)
	InsertWinnerTx(ctx context.Context, tx *sqlx.Tx, w *Winner) (*Winner, error)
	RecordResultTx(ctx context.Context, tx *sqlx.Tx, participantID, rank, kills int, prize int64) error
	ListByTournament(ctx context.Context, tournamentID int) ([]Winner, error)
	Recent(ctx context.Context, limit int) ([]Winner, error)
}
