package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"movie-api/internal/repository"
	"movie-api/internal/repository/sqlite"
)

// testRepos opens a throwaway sqlite database with the full schema.
func testRepos(t *testing.T) (repository.UserRepository, repository.MovieRepository, repository.ReviewRepository) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := t.Context()
	users := sqlite.NewUserRepository(db)
	movies := sqlite.NewMovieRepository(db)
	reviews := sqlite.NewReviewRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, movies.Init(ctx))
	require.NoError(t, reviews.Init(ctx))

	return users, movies, reviews
}

func validMovieInput() MovieInput {
	return MovieInput{
		Title:       "Blade Runner",
		ReleaseDate: 1982,
		Genre:       "Science Fiction",
		Actors: []ActorInput{
			{ActorName: "Harrison Ford", CharacterName: "Rick Deckard"},
		},
	}
}

func ratingOf(v float64) *float64 {
	return &v
}
