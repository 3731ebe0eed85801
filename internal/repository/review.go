package repository

import (
	"context"

	"movie-api/internal/domain"
)

// ReviewRepository manages review records. Create fails with
// domain.ErrNotFound when the referenced movie does not exist; deleting a
// movie cascades to its reviews at the store layer.
type ReviewRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, review *domain.Review) (int64, error)
	ListByMovie(ctx context.Context, movieID int64) ([]domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
}
