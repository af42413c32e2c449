package repository

import (
	"context"
	"errors"

	"taskdeck/internal/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist, or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername indicates a unique constraint violation on username.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail indicates a unique constraint violation on email.
	ErrDuplicateEmail = errors.New("email already taken")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
