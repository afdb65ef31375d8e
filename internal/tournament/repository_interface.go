package tournament

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
)

// Store is the persistence surface the tournament service depends on. The
// Repository also implements payment.RosterStore so payment settlement can
// flip roster rows in its own transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Create(ctx context.Context, req CreateRequest, createdBy int) (*Tournament, error)
	GetByID(ctx context.Context, id int) (*Tournament, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Tournament, error)
	List(ctx context.Context, status Status, game string, limit, offset int) ([]Tournament, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Tournament, error)
	SetRoom(ctx context.Context, id int, roomID, roomPassword string) error
	UpdateStatus(ctx context.Context, id int, status Status) error
	IsRegisteredTx(ctx context.Context, tx *sqlx.Tx, tournamentID, userID int) (bool, error)
	ReserveSlotsTx(ctx context.Context, tx *sqlx.Tx, tournamentID, n int) error
	CreateTeamTx(ctx context.Context, tx *sqlx.Tx, tournamentID, captainID int, name string) (*Team, error)
	AddTeamMemberTx(ctx context.Context, tx *sqlx.Tx, teamID int, userID *int, m MemberInput) (*TeamMember, error)
	CreateParticipantTx(ctx context.Context, tx *sqlx.Tx, p *Participant) (*Participant, error)
	AttachPaymentTx(ctx context.Context, tx *sqlx.Tx, participantID, paymentID int) error
	MarkPaidTx(ctx context.Context, tx *sqlx.Tx, p *payment.Payment) error
	ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, p *payment.Payment) error
	Participants(ctx context.Context, tournamentID int) ([]Participant, error)
	MyRegistration(ctx context.Context, tournamentID, userID int) (*Participant, *Team, error)
	ListMine(ctx context.Context, userID int) ([]Tournament, error)
	ParticipantByUserTx(ctx context.Context, tx *sqlx.Tx, tournamentID, userID int) (*Participant, error)
}
