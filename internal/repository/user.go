package repository

import (
	"context"

	"leftoverapi/internal/model"
)

// UserRepository defines data access for users. No business logic here.
type UserRepository interface {
	// Create inserts a user and returns the stored row.
	// A second user with the same name and phone number yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by primary key.
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindFirstByPhone returns the earliest registered user with the given phone number.
	FindFirstByPhone(ctx context.Context, phoneNum string) (*model.User, error)

	// FindByNameAndPhone returns the user identified by the name and phone pair.
	FindByNameAndPhone(ctx context.Context, name, phoneNum string) (*model.User, error)
}
