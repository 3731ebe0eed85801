package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-api/internal/auth"
	"movie-api/internal/domain"
)

func TestCreateReviewRatingPresence(t *testing.T) {
	_, movies, reviews := testRepos(t)
	movieSvc := NewMovieService(movies, reviews)
	svc := NewReviewService(reviews, nil, nil)
	ctx := t.Context()

	movie, err := movieSvc.Create(ctx, validMovieInput())
	require.NoError(t, err)

	principal := auth.Principal{UserID: 1, Username: "alice"}

	// rating 0 is present and valid
	review, err := svc.Create(ctx, principal, ReviewInput{
		MovieID: movie.ID,
		Review:  "not for me",
		Rating:  ratingOf(0),
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), review.Rating)

	// absent rating is a missing field
	_, err = svc.Create(ctx, principal, ReviewInput{
		MovieID: movie.ID,
		Review:  "no rating",
	})
	assert.True(t, domain.IsValidation(err))

	for _, rating := range []float64{-0.5, 5.5} {
		_, err = svc.Create(ctx, principal, ReviewInput{
			MovieID: movie.ID,
			Review:  "out of range",
			Rating:  ratingOf(rating),
		})
		assert.True(t, domain.IsValidation(err), "rating %v", rating)
	}
}

func TestCreateReviewMissingFields(t *testing.T) {
	_, _, reviews := testRepos(t)
	svc := NewReviewService(reviews, nil, nil)
	principal := auth.Principal{UserID: 1, Username: "alice"}
	ctx := t.Context()

	_, err := svc.Create(ctx, principal, ReviewInput{Review: "text", Rating: ratingOf(3)})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, principal, ReviewInput{MovieID: 1, Rating: ratingOf(3)})
	assert.True(t, domain.IsValidation(err))
}

func TestCreateReviewUsesPrincipalUsername(t *testing.T) {
	_, movies, reviews := testRepos(t)
	movieSvc := NewMovieService(movies, reviews)
	svc := NewReviewService(reviews, nil, nil)
	ctx := t.Context()

	movie, err := movieSvc.Create(ctx, validMovieInput())
	require.NoError(t, err)

	review, err := svc.Create(ctx, auth.Principal{UserID: 9, Username: "carol"}, ReviewInput{
		MovieID: movie.ID,
		Review:  "solid",
		Rating:  ratingOf(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", review.Username)
}

func TestCreateReviewDanglingMovie(t *testing.T) {
	_, _, reviews := testRepos(t)
	svc := NewReviewService(reviews, nil, nil)
	ctx := t.Context()

	_, err := svc.Create(ctx, auth.Principal{UserID: 1, Username: "alice"}, ReviewInput{
		MovieID: 12345,
		Review:  "ghost movie",
		Rating:  ratingOf(2),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type recordingPublisher struct {
	published []*domain.Review
}

func (p *recordingPublisher) PublishReviewCreated(_ context.Context, review *domain.Review) error {
	p.published = append(p.published, review)
	return nil
}

func TestCreateReviewPublishesEvent(t *testing.T) {
	_, movies, reviews := testRepos(t)
	movieSvc := NewMovieService(movies, reviews)
	publisher := &recordingPublisher{}
	svc := NewReviewService(reviews, publisher, nil)
	ctx := t.Context()

	movie, err := movieSvc.Create(ctx, validMovieInput())
	require.NoError(t, err)

	_, err = svc.Create(ctx, auth.Principal{UserID: 1, Username: "alice"}, ReviewInput{
		MovieID: movie.ID,
		Review:  "great",
		Rating:  ratingOf(4),
	})
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, movie.ID, publisher.published[0].MovieID)
}

type failingPublisher struct{}

func (failingPublisher) PublishReviewCreated(context.Context, *domain.Review) error {
	return errors.New("broker down")
}

func TestCreateReviewSurvivesPublishFailure(t *testing.T) {
	_, movies, reviews := testRepos(t)
	movieSvc := NewMovieService(movies, reviews)
	svc := NewReviewService(reviews, failingPublisher{}, nil)
	ctx := t.Context()

	movie, err := movieSvc.Create(ctx, validMovieInput())
	require.NoError(t, err)

	review, err := svc.Create(ctx, auth.Principal{UserID: 1, Username: "alice"}, ReviewInput{
		MovieID: movie.ID,
		Review:  "great despite everything",
		Rating:  ratingOf(4),
	})
	require.NoError(t, err)
	require.NotNil(t, review)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
