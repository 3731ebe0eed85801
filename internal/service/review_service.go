package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"movie-api/internal/auth"
	"movie-api/internal/domain"
	"movie-api/internal/repository"
)

// ReviewInput carries the client-supplied fields of a review. Rating is a
// pointer so that 0 binds as present while an absent field stays nil.
type ReviewInput struct {
	MovieID int64
	Review  string
	Rating  *float64
}

// ReviewEventPublisher emits a notification after a review is persisted.
// Publish failures must never fail the request.
type ReviewEventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// ReviewService creates and lists reviews. The author is always the
// authenticated principal; client-supplied usernames are ignored.
type ReviewService interface {
	Create(ctx context.Context, principal auth.Principal, input ReviewInput) (*domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
}

type reviewService struct {
	reviews   repository.ReviewRepository
	publisher ReviewEventPublisher
	logger    *logrus.Logger
}

// NewReviewService builds a ReviewService. publisher may be nil when event
// publishing is disabled, logger when the caller has none.
func NewReviewService(reviews repository.ReviewRepository, publisher ReviewEventPublisher, logger *logrus.Logger) ReviewService {
	if logger == nil {
		logger = logrus.New()
	}
	return &reviewService{
		reviews:   reviews,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *reviewService) Create(ctx context.Context, principal auth.Principal, input ReviewInput) (*domain.Review, error) {
	if input.MovieID == 0 {
		return nil, domain.NewValidationError("movieId", "is required")
	}
	if strings.TrimSpace(input.Review) == "" {
		return nil, domain.NewValidationError("review", "is required")
	}
	if input.Rating == nil {
		return nil, domain.NewValidationError("rating", "is required")
	}
	if *input.Rating < domain.MinRating || *input.Rating > domain.MaxRating {
		return nil, domain.NewValidationError("rating", "must be between 0 and 5")
	}

	review := &domain.Review{
		MovieID:  input.MovieID,
		Username: principal.Username,
		Review:   input.Review,
		Rating:   *input.Rating,
	}

	if _, err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReviewCreated(ctx, review); err != nil {
			s.logger.Warnf("publish review created: %v", err)
		}
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.List(ctx)
}
