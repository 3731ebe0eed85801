package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"movie-api/internal/domain"
	"movie-api/internal/repository"
)

// MovieInput carries the fields required to create a movie.
type MovieInput struct {
	Title       string
	ReleaseDate int
	Genre       string
	Actors      []ActorInput
}

// ActorInput is one cast entry of a movie input.
type ActorInput struct {
	ActorName     string
	CharacterName string
}

// MovieUpdate carries a partial update; nil fields are left unchanged.
type MovieUpdate struct {
	Title       *string
	ReleaseDate *int
	Genre       *string
	Actors      []ActorInput
}

// MovieService coordinates movie catalog operations, including the
// movie-with-reviews aggregation.
type MovieService interface {
	Create(ctx context.Context, input MovieInput) (*domain.Movie, error)
	Get(ctx context.Context, key string, includeReviews bool) (*domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Update(ctx context.Context, key string, update MovieUpdate) (*domain.Movie, error)
	Delete(ctx context.Context, id int64) error
	SetPosterKey(ctx context.Context, id int64, key string) error
}

type movieService struct {
	movies  repository.MovieRepository
	reviews repository.ReviewRepository
}

func NewMovieService(movies repository.MovieRepository, reviews repository.ReviewRepository) MovieService {
	return &movieService{
		movies:  movies,
		reviews: reviews,
	}
}

func (s *movieService) Create(ctx context.Context, input MovieInput) (*domain.Movie, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "is required")
	}
	if input.ReleaseDate == 0 {
		return nil, domain.NewValidationError("releaseDate", "is required")
	}
	if input.Genre == "" {
		return nil, domain.NewValidationError("genre", "is required")
	}
	if err := validateMovieFields(input.ReleaseDate, input.Genre, input.Actors, true); err != nil {
		return nil, err
	}

	movie := &domain.Movie{
		Title:       input.Title,
		ReleaseDate: input.ReleaseDate,
		Genre:       domain.Genre(input.Genre),
		Actors:      actorsFromInput(input.Actors),
	}

	if _, err := s.movies.Create(ctx, movie); err != nil {
		return nil, err
	}
	return movie, nil
}

// Get resolves key as a numeric id first, then as an exact title. With
// includeReviews it attaches every review referencing the movie; a movie
// without reviews yields an empty, non-nil slice.
func (s *movieService) Get(ctx context.Context, key string, includeReviews bool) (*domain.Movie, error) {
	movie, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if includeReviews {
		reviews, err := s.reviews.ListByMovie(ctx, movie.ID)
		if err != nil {
			return nil, err
		}
		if reviews == nil {
			reviews = []domain.Review{}
		}
		movie.Reviews = reviews
	}
	return movie, nil
}

func (s *movieService) List(ctx context.Context) ([]domain.Movie, error) {
	return s.movies.List(ctx)
}

func (s *movieService) Update(ctx context.Context, key string, update MovieUpdate) (*domain.Movie, error) {
	movie, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, domain.NewValidationError("title", "must not be empty")
		}
		movie.Title = title
	}
	if update.ReleaseDate != nil {
		movie.ReleaseDate = *update.ReleaseDate
	}
	if update.Genre != nil {
		movie.Genre = domain.Genre(*update.Genre)
	}
	if update.Actors != nil {
		movie.Actors = actorsFromInput(update.Actors)
	}
	if err := validateMovieFields(movie.ReleaseDate, string(movie.Genre), inputFromActors(movie.Actors), update.Actors != nil); err != nil {
		return nil, err
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, err
	}
	return s.movies.GetByID(ctx, movie.ID)
}

func (s *movieService) Delete(ctx context.Context, id int64) error {
	return s.movies.Delete(ctx, id)
}

func (s *movieService) SetPosterKey(ctx context.Context, id int64, key string) error {
	return s.movies.UpdatePosterKey(ctx, id, key)
}

func (s *movieService) resolve(ctx context.Context, key string) (*domain.Movie, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		movie, err := s.movies.GetByID(ctx, id)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return movie, err
		}
		// fall through: a purely numeric title is still reachable
	}
	return s.movies.GetByTitle(ctx, key)
}

func validateMovieFields(releaseDate int, genre string, actors []ActorInput, checkActors bool) error {
	if releaseDate < domain.MinReleaseYear || releaseDate > domain.MaxReleaseYear {
		return domain.NewValidationError("releaseDate", "must be between 1900 and 2100")
	}
	if !domain.Genre(genre).Valid() {
		return domain.NewValidationError("genre", "is not a known genre")
	}
	if checkActors {
		if len(actors) == 0 {
			return domain.NewValidationError("actors", "must include at least one actor")
		}
		for _, actor := range actors {
			if strings.TrimSpace(actor.ActorName) == "" || strings.TrimSpace(actor.CharacterName) == "" {
				return domain.NewValidationError("actors", "each actor must have actorName and characterName")
			}
		}
	}
	return nil
}

func actorsFromInput(inputs []ActorInput) []domain.Actor {
	actors := make([]domain.Actor, len(inputs))
	for i, input := range inputs {
		actors[i] = domain.Actor{
			ActorName:     input.ActorName,
			CharacterName: input.CharacterName,
		}
	}
	return actors
}

func inputFromActors(actors []domain.Actor) []ActorInput {
	inputs := make([]ActorInput, len(actors))
	for i, actor := range actors {
		inputs[i] = ActorInput{
			ActorName:     actor.ActorName,
			CharacterName: actor.CharacterName,
		}
	}
	return inputs
}
