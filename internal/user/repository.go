package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, name, email, phone, password_hash, role, bgmi_id, in_game_name,
	tournaments_won, total_prize_money, created_at, updated_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		name, email, phone, passwordHash, role,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id int, req UpdateProfileRequest) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users
		SET name         = COALESCE(NULLIF($2, ''), name),
		    phone        = COALESCE(NULLIF($3, ''), phone),
		    bgmi_id      = COALESCE(NULLIF($4, ''), bgmi_id),
		    in_game_name = COALESCE(NULLIF($5, ''), in_game_name),
		    updated_at   = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.Name, req.Phone, req.BGMIID, req.InGameName,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// AddPrizeStatsTx bumps prize aggregates inside the caller's transaction.
// Rank 1 also counts as a tournament win.
func (r *Repository) AddPrizeStatsTx(ctx context.Context, tx *sqlx.Tx, userID int, rank int, prizeAmount int64) error {
	wonDelta := 0
	if rank == 1 {
		wonDelta = 1
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET tournaments_won   = tournaments_won + $2,
		    total_prize_money = total_prize_money + $3,
		    updated_at        = NOW()
		WHERE id = $1`,
		userID, wonDelta, prizeAmount,
	)
	return err
}
