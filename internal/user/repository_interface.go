package user

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error)
	AddPrizeStatsTx(ctx context.Context, tx *sqlx.Tx, userID int, rank int, prizeAmount int64) error
}
