package tournament

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/db"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrAlreadyRegistered   = errors.New("already registered for this tournament")
	ErrRegistrationClosed  = errors.New("registration is not open")
	ErrParticipantNotFound = errors.New("participant not found")
)

const tournamentColumns = `id, title, game, mode, map, entry_fee, prize_pool, per_kill_reward,
	max_players, filled_slots, status, start_time,
	COALESCE(room_id, '') AS room_id, COALESCE(room_password, '') AS room_password,
	COALESCE(rules, '') AS rules, created_by, created_at, updated_at`

const participantColumns = `id, tournament_id, user_id, team_id, bgmi_id, in_game_name,
	status, payment_status, payment_id, kills, rank, prize_won, registered_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) *Repository {
	return &Repository{db: database}
}

func (r *Repository) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return db.InTx(ctx, r.db, fn)
}

func (r *Repository) Create(ctx context.Context, req CreateRequest, createdBy int) (*Tournament, error) {
	var t Tournament
	err := r.db.GetContext(ctx, &t, `
		INSERT INTO tournaments (title, game, mode, map, entry_fee, prize_pool, per_kill_reward,
			max_players, status, start_time, rules, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+tournamentColumns,
		req.Title, req.Game, req.Mode, req.Map, req.EntryFee, req.PrizePool, req.PerKillReward,
		req.MaxPlayers, StatusUpcoming, req.StartTime, req.Rules, createdBy)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Tournament, error) {
	var t Tournament
	err := r.db.GetContext(ctx, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdateTx locks the tournament row so concurrent registrations
// serialize on the slot counter.
func (r *Repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Tournament, error) {
	var t Tournament
	err := tx.GetContext(ctx, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) List(ctx context.Context, status Status, game string, limit, offset int) ([]Tournament, error) {
	tournaments := []Tournament{}
	err := r.db.SelectContext(ctx, &tournaments, `
		SELECT `+tournamentColumns+` FROM tournaments
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR game = $2)
		ORDER BY start_time ASC
		LIMIT $3 OFFSET $4`,
		string(status), game, limit, offset)
	return tournaments, err
}

func (r *Repository) Update(ctx context.Context, id int, req UpdateRequest) (*Tournament, error) {
	var t Tournament
	err := r.db.GetContext(ctx, &t, `
		UPDATE tournaments
		SET title = COALESCE($2, title),
		    map = COALESCE($3, map),
		    entry_fee = COALESCE($4, entry_fee),
		    prize_pool = COALESCE($5, prize_pool),
		    per_kill_reward = COALESCE($6, per_kill_reward),
		    max_players = COALESCE($7, max_players),
		    status = COALESCE($8, status),
		    start_time = COALESCE($9, start_time),
		    rules = COALESCE($10, rules),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+tournamentColumns,
		id, req.Title, req.Map, req.EntryFee, req.PrizePool, req.PerKillReward,
		req.MaxPlayers, req.Status, req.StartTime, req.Rules)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) SetRoom(ctx context.Context, id int, roomID, roomPassword string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tournaments SET room_id = $2, room_password = $3, updated_at = NOW() WHERE id = $1`,
		id, roomID, roomPassword)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tournaments SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

// IsRegisteredTx reports whether the user already holds a non-cancelled slot.
func (r *Repository) IsRegisteredTx(ctx context.Context, tx *sqlx.Tx, tournamentID, userID int) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM tournament_participants
			WHERE tournament_id = $1 AND user_id = $2 AND status <> $3)`,
		tournamentID, userID, ParticipantCancelled)
	return exists, err
}

// ReserveSlotsTx bumps the filled counter by n, guarded against overflow.
// Zero rows affected means the tournament filled up under us.
func (r *Repository) ReserveSlotsTx(ctx context.Context, tx *sqlx.Tx, tournamentID, n int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE tournaments
		SET filled_slots = filled_slots + $2, updated_at = NOW()
		WHERE id = $1 AND filled_slots + $2 <= max_players`,
		tournamentID, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTournamentFull
	}
	return nil
}

func (r *Repository) CreateTeamTx(ctx context.Context, tx *sqlx.Tx, tournamentID, captainID int, name string) (*Team, error) {
	var team Team
	err := tx.GetContext(ctx, &team, `
		INSERT INTO tournament_teams (tournament_id, name, captain_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, tournament_id, name, captain_id, status, created_at`,
		tournamentID, name, captainID, ParticipantPendingPayment)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *Repository) AddTeamMemberTx(ctx context.Context, tx *sqlx.Tx, teamID int, userID *int, m MemberInput) (*TeamMember, error) {
	var member TeamMember
	err := tx.GetContext(ctx, &member, `
		INSERT INTO team_members (team_id, user_id, name, bgmi_id, in_game_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, team_id, user_id, name, bgmi_id, in_game_name`,
		teamID, userID, m.Name, m.BGMIID, m.InGameName)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *Repository) CreateParticipantTx(ctx context.Context, tx *sqlx.Tx, p *Participant) (*Participant, error) {
	var created Participant
	err := tx.GetContext(ctx, &created, `
		INSERT INTO tournament_participants
			(tournament_id, user_id, team_id, bgmi_id, in_game_name, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+participantColumns,
		p.TournamentID, p.UserID, p.TeamID, p.BGMIID, p.InGameName, p.Status, p.PaymentStatus)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// AttachPaymentTx links the held slot to the payment that settles it.
func (r *Repository) AttachPaymentTx(ctx context.Context, tx *sqlx.Tx, participantID, paymentID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tournament_participants SET payment_id = $2 WHERE id = $1`,
		participantID, paymentID)
	return err
}

// MarkPaidTx confirms the roster entry tied to a successful payment. It is
// the tournament side of the payment settlement transaction.
func (r *Repository) MarkPaidTx(ctx context.Context, tx *sqlx.Tx, p *payment.Payment) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE tournament_participants
		SET status = $2, payment_status = $3
		WHERE payment_id = $1`,
		p.ID, ParticipantConfirmed, PayPaid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrParticipantNotFound
	}
	if p.TeamID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE tournament_teams SET status = $2 WHERE id = $1`,
			*p.TeamID, ParticipantConfirmed)
	}
	return err
}

// ReleaseSlotTx cancels the roster entry tied to a failed payment and gives
// the slots back to the pool.
func (r *Repository) ReleaseSlotTx(ctx context.Context, tx *sqlx.Tx, p *payment.Payment) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE tournament_participants
		SET status = $2, payment_status = $3
		WHERE payment_id = $1 AND status <> $2`,
		p.ID, ParticipantCancelled, PayFailed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Already released; keep the slot count as-is.
		return nil
	}

	if p.TeamID != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tournament_teams SET status = $2 WHERE id = $1`,
			*p.TeamID, ParticipantCancelled); err != nil {
			return err
		}
	}

	var mode Mode
	if err := tx.GetContext(ctx, &mode, `SELECT mode FROM tournaments WHERE id = $1`, p.TournamentID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE tournaments
		SET filled_slots = GREATEST(filled_slots - $2, 0), updated_at = NOW()
		WHERE id = $1`,
		p.TournamentID, mode.TeamSize())
	return err
}

func (r *Repository) Participants(ctx context.Context, tournamentID int) ([]Participant, error) {
	participants := []Participant{}
	err := r.db.SelectContext(ctx, &participants, `
		SELECT `+participantColumns+` FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY registered_at ASC`, tournamentID)
	return participants, err
}

// MyRegistration returns the caller's slot in a tournament along with the
// team roster when one exists.
func (r *Repository) MyRegistration(ctx context.Context, tournamentID, userID int) (*Participant, *Team, error) {
	var p Participant
	err := r.db.GetContext(ctx, &p, `
		SELECT `+participantColumns+` FROM tournament_participants
		WHERE tournament_id = $1 AND user_id = $2 AND status <> $3
		ORDER BY registered_at DESC
		LIMIT 1`,
		tournamentID, userID, ParticipantCancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if p.TeamID == nil {
		return &p, nil, nil
	}

	var team Team
	err = r.db.GetContext(ctx, &team, `
		SELECT id, tournament_id, name, captain_id, status, created_at
		FROM tournament_teams WHERE id = $1`, *p.TeamID)
	if err != nil {
		return nil, nil, err
	}
	err = r.db.SelectContext(ctx, &team.Members, `
		SELECT id, team_id, user_id, name, bgmi_id, in_game_name
		FROM team_members WHERE team_id = $1 ORDER BY id ASC`, team.ID)
	if err != nil {
		return nil, nil, err
	}
	return &p, &team, nil
}

// ListMine returns every tournament the user holds a non-cancelled slot in.
func (r *Repository) ListMine(ctx context.Context, userID int) ([]Tournament, error) {
	tournaments := []Tournament{}
	err := r.db.SelectContext(ctx, &tournaments, `
		SELECT t.id, t.title, t.game, t.mode, t.map, t.entry_fee, t.prize_pool, t.per_kill_reward,
			t.max_players, t.filled_slots, t.status, t.start_time,
			COALESCE(t.room_id, '') AS room_id, COALESCE(t.room_password, '') AS room_password,
			COALESCE(t.rules, '') AS rules, t.created_by, t.created_at, t.updated_at
		FROM tournaments t
		JOIN tournament_participants p ON p.tournament_id = t.id
		WHERE p.user_id = $1 AND p.status <> $2
		ORDER BY t.start_time DESC`,
		userID, ParticipantCancelled)
	return tournaments, err
}

// ParticipantByUserTx loads the user's active slot under the registration
// transaction.
func (r *Repository) ParticipantByUserTx(ctx context.Context, tx *sqlx.Tx, tournamentID, userID int) (*Participant, error) {
	var p Participant
	err := tx.GetContext(ctx, &p, `
		SELECT `+participantColumns+` FROM tournament_participants
		WHERE tournament_id = $1 AND user_id = $2 AND status <> $3
		ORDER BY registered_at DESC
		LIMIT 1`,
		tournamentID, userID, ParticipantCancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
