package repository

import (
	"context"

	"movie-api/internal/domain"
)

// MovieRepository exposes persistence operations for Movie aggregates.
// Get/List return movies without their reviews; the actor list is always
// populated.
type MovieRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, movie *domain.Movie) (int64, error)
	Update(ctx context.Context, movie *domain.Movie) error
	UpdatePosterKey(ctx context.Context, id int64, key string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	GetByTitle(ctx context.Context, title string) (*domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
}
