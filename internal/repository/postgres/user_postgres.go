package postgres

import (
	"context"
	"database/sql"

	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, name, phone_num, account_id, measure_cnt, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u       model.User
		account sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.PhoneNum, &account, &u.MeasureCnt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if account.Valid {
		u.AccountID = &account.String
	}
	return &u, nil
}

// Create inserts a user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (name, phone_num, account_id)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	var account sql.NullString
	if u.AccountID != nil {
		account = sql.NullString{String: *u.AccountID, Valid: true}
	}
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.Name, u.PhoneNum, account))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindFirstByPhone fetches the lowest-id user registered with phoneNum.
func (r *UserPostgres) FindFirstByPhone(ctx context.Context, phoneNum string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE phone_num = $1 ORDER BY id LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, q, phoneNum))
}

// FindByNameAndPhone fetches the user with the exact name and phone pair.
func (r *UserPostgres) FindByNameAndPhone(ctx context.Context, name, phoneNum string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE name = $1 AND phone_num = $2`
	return scanUser(r.db.QueryRowContext(ctx, q, name, phoneNum))
}
