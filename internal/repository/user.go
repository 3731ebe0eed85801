package repository

import (
	"context"

	"movie-api/internal/domain"
)

// UserRepository defines persistence operations for User entities. Username
// uniqueness is enforced at this layer; concurrent creates with the same
// username resolve to exactly one success and one domain.ErrAlreadyExists.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
