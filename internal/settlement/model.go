package settlement

import "time"

// Winner is one settled rank of a tournament. The unique (tournament, rank)
// pair is what makes payout declaration replays skip instead of double-pay.
type Winner struct {
	ID            int   `db:"id" json:"id"`
	TournamentID  int   `db:"tournament_id" json:"tournament_id"`
	ParticipantID int   `db:"participant_id" json:"participant_id"`
	UserID        int   `db:"user_id" json:"user_id"`
	Rank          int   `db:"rank" json:"rank"`
	Kills         int   `db:"kills" json:"kills"`
	PrizeAmount   int64 `db:"prize_amount" json:"prize_amount"`
	PaymentID     int   `db:"payment_id" json:"payment_id"`

	// Denormalized for winner listings.
	UserName        string `db:"user_name" json:"user_name,omitempty"`
	TournamentTitle string `db:"tournament_title" json:"tournament_title,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type WinnerEntry struct {
	ParticipantID int   `json:"participant_id" binding:"required"`
	Rank          int   `json:"rank" binding:"required,gt=0"`
	Kills         int   `json:"kills" binding:"gte=0"`
	PrizeAmount   int64 `json:"prize_amount" binding:"gte=0"`
}

type DeclareRequest struct {
	Winners []WinnerEntry `json:"winners" binding:"required,min=1,dive"`
}

// EntryResult reports what happened to one declared rank. Settlement is
// per-entry: one bad entry never rolls back the others.
type EntryResult struct {
	Rank    int    `json:"rank"`
	UserID  int    `json:"user_id,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	ResultSettled = "settled"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)
