package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "phone_num", "account_id", "measure_cnt", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	account := "kb-123"

	t.Run("success", func(t *testing.T) {
		now := time.Now().UTC()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Kim", "010-1234-5678", sql.NullString{String: account, Valid: true}).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "Kim", "010-1234-5678", account, 0, now))

		u, err := repo.Create(ctx, &model.User{Name: "Kim", PhoneNum: "010-1234-5678", AccountID: &account})
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
		require.NotNil(t, u.AccountID)
		assert.Equal(t, account, *u.AccountID)
		assert.Equal(t, 0, u.MeasureCnt)
	})

	t.Run("null account", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("Lee", "010", sql.NullString{}).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(2, "Lee", "010", nil, 0, time.Now()))

		u, err := repo.Create(ctx, &model.User{Name: "Lee", PhoneNum: "010"})
		require.NoError(t, err)
		assert.Nil(t, u.AccountID)
	})

	t.Run("duplicate name and phone", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "unique_name_phone"})

		u, err := repo.Create(ctx, &model.User{Name: "Kim", PhoneNum: "010-1234-5678"})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = ?").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "Park", "011", nil, 3, time.Now()))

		u, err := repo.FindByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "Park", u.Name)
		assert.Equal(t, 3, u.MeasureCnt)
	})

	t.Run("first by phone", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_num = (.+) ORDER BY id LIMIT 1").
			WithArgs("011").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(5, "Park", "011", nil, 0, time.Now()))

		u, err := repo.FindFirstByPhone(ctx, "011")
		require.NoError(t, err)
		assert.Equal(t, int64(5), u.ID)
	})

	t.Run("by name and phone not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE name = (.+) AND phone_num = ?").
			WithArgs("Choi", "012").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByNameAndPhone(ctx, "Choi", "012")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
