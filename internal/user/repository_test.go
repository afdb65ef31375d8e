package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "phone", "password_hash", "role", "bgmi_id", "in_game_name",
		"tournaments_won", "total_prize_money", "created_at", "updated_at",
	}).AddRow(1, "Alice", "a@example.com", "9876543210", "hash", "user", "511223344", "PL4YER", 0, int64(0), now, now)
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()

	// Create
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, phone, password_hash, role)")).
		WithArgs("Alice", "a@example.com", "9876543210", "hash", "user").
		WillReturnRows(userRows(now))

	u, err := repo.Create(ctx, "Alice", "a@example.com", "9876543210", "hash", "user")
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)

	// FindByEmail
	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("a@example.com").
		WillReturnRows(userRows(now))

	fu, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", fu.Name)

	// EmailExists true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery("UPDATE users").
		WithArgs(1, "Alice", "", "511223344", "PL4YER").
		WillReturnRows(userRows(now))

	u, err := repo.UpdateProfile(context.Background(), 1, UpdateProfileRequest{
		Name:       "Alice",
		BGMIID:     "511223344",
		InGameName: "PL4YER",
	})
	require.NoError(t, err)
	require.Equal(t, "511223344", u.BGMIID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPrizeStatsTx_FirstRankCountsAsWin(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs(5, 1, int64(1050)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := repo.db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.AddPrizeStatsTx(context.Background(), tx, 5, 1, 1050))
	require.NoError(t, tx.Commit())

	// Rank 2 does not bump tournaments_won.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users").
		WithArgs(5, 0, int64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err = repo.db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.AddPrizeStatsTx(context.Background(), tx, 5, 2, 500))
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}
