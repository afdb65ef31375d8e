package user

import "time"

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`

	// In-game identity, required before any tournament registration.
	BGMIID     string `db:"bgmi_id" json:"bgmi_id"`
	InGameName string `db:"in_game_name" json:"in_game_name"`

	// Prize stats, bumped by settlement.
	TournamentsWon  int   `db:"tournaments_won" json:"tournaments_won"`
	TotalPrizeMoney int64 `db:"total_prize_money" json:"total_prize_money"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasGameProfile reports whether the in-game identity fields are populated.
func (u *User) HasGameProfile() bool {
	return u.BGMIID != "" && u.InGameName != ""
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	BGMIID     string `json:"bgmi_id"`
	InGameName string `json:"in_game_name"`
}
