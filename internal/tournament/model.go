package tournament

import "time"

type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeDuo   Mode = "duo"
	ModeSquad Mode = "squad"
)

// TeamSize returns how many roster slots one entry of this mode occupies.
func (m Mode) TeamSize() int {
	switch m {
	case ModeDuo:
		return 2
	case ModeSquad:
		return 4
	default:
		return 1
	}
}

type Status string

const (
	StatusUpcoming         Status = "upcoming"
	StatusRegistrationOpen Status = "registration_open"
	StatusLive             Status = "live"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

// Participant lifecycle. A slot is held from the moment the row exists;
// confirmation waits for the payment.
const (
	ParticipantPendingPayment = "pending_payment"
	ParticipantConfirmed      = "confirmed"
	ParticipantCancelled      = "cancelled"
)

const (
	PayPending = "pending"
	PayPaid    = "paid"
	PayFailed  = "failed"
)

type Tournament struct {
	ID    int    `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Game  string `db:"game" json:"game"`
	Mode  Mode   `db:"mode" json:"mode"`
	Map   string `db:"map" json:"map"`

	// Whole rupees.
	EntryFee      int64 `db:"entry_fee" json:"entry_fee"`
	PrizePool     int64 `db:"prize_pool" json:"prize_pool"`
	PerKillReward int64 `db:"per_kill_reward" json:"per_kill_reward"`

	MaxPlayers  int `db:"max_players" json:"max_players"`
	FilledSlots int `db:"filled_slots" json:"filled_slots"`

	Status    Status    `db:"status" json:"status"`
	StartTime time.Time `db:"start_time" json:"start_time"`

	// Shared with confirmed participants shortly before start.
	RoomID       string `db:"room_id" json:"room_id,omitempty"`
	RoomPassword string `db:"room_password" json:"-"`

	Rules     string    `db:"rules" json:"rules,omitempty"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (t *Tournament) SlotsLeft() int {
	return t.MaxPlayers - t.FilledSlots
}

type Participant struct {
	ID           int    `db:"id" json:"id"`
	TournamentID int    `db:"tournament_id" json:"tournament_id"`
	UserID       int    `db:"user_id" json:"user_id"`
	TeamID       *int   `db:"team_id" json:"team_id,omitempty"`
	BGMIID       string `db:"bgmi_id" json:"bgmi_id"`
	InGameName   string `db:"in_game_name" json:"in_game_name"`

	Status        string `db:"status" json:"status"`
	PaymentStatus string `db:"payment_status" json:"payment_status"`
	PaymentID     *int   `db:"payment_id" json:"payment_id,omitempty"`

	// Filled post-match by result entry.
	Kills    int   `db:"kills" json:"kills"`
	Rank     *int  `db:"rank" json:"rank,omitempty"`
	PrizeWon int64 `db:"prize_won" json:"prize_won"`

	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

type Team struct {
	ID           int    `db:"id" json:"id"`
	TournamentID int    `db:"tournament_id" json:"tournament_id"`
	Name         string `db:"name" json:"name"`
	CaptainID    int    `db:"captain_id" json:"captain_id"`
	Status       string `db:"status" json:"status"`

	Members []TeamMember `db:"-" json:"members,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TeamMember is a roster entry for a duo or squad. Only the captain needs an
// account; teammates are recorded by their in-game identity.
type TeamMember struct {
	ID         int    `db:"id" json:"id"`
	TeamID     int    `db:"team_id" json:"team_id"`
	UserID     *int   `db:"user_id" json:"user_id,omitempty"`
	Name       string `db:"name" json:"name"`
	BGMIID     string `db:"bgmi_id" json:"bgmi_id"`
	InGameName string `db:"in_game_name" json:"in_game_name"`
}

type CreateRequest struct {
	Title         string    `json:"title" binding:"required"`
	Game          string    `json:"game" binding:"required"`
	Mode          Mode      `json:"mode" binding:"required,oneof=solo duo squad"`
	Map           string    `json:"map"`
	EntryFee      int64     `json:"entry_fee" binding:"gte=0"`
	PrizePool     int64     `json:"prize_pool" binding:"gte=0"`
	PerKillReward int64     `json:"per_kill_reward" binding:"gte=0"`
	MaxPlayers    int       `json:"max_players" binding:"required,gt=0"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	Rules         string    `json:"rules"`
}

type UpdateRequest struct {
	Title         *string    `json:"title"`
	Map           *string    `json:"map"`
	EntryFee      *int64     `json:"entry_fee"`
	PrizePool     *int64     `json:"prize_pool"`
	PerKillReward *int64     `json:"per_kill_reward"`
	MaxPlayers    *int       `json:"max_players"`
	Status        *Status    `json:"status"`
	StartTime     *time.Time `json:"start_time"`
	Rules         *string    `json:"rules"`
}

type RoomRequest struct {
	RoomID       string `json:"room_id" binding:"required"`
	RoomPassword string `json:"room_password" binding:"required"`
}

type MemberInput struct {
	Name       string `json:"name" binding:"required"`
	BGMIID     string `json:"bgmi_id" binding:"required"`
	InGameName string `json:"in_game_name" binding:"required"`
}

type RegisterRequest struct {
	CouponCode string `json:"coupon_code"`

	// Team fields, required for duo and squad modes.
	TeamName string        `json:"team_name"`
	Members  []MemberInput `json:"members"`
}

// Registration is what a successful registration call returns: the held slot
// plus the payment the user must now settle.
type Registration struct {
	Participant *Participant `json:"participant"`
	Team        *Team        `json:"team,omitempty"`
	PaymentID   int          `json:"payment_id"`
	Amount      int64        `json:"amount"`
	Discount    int64        `json:"discount"`
	Settled     bool         `json:"settled"`
}
