package domain

import "time"

type Genre string

const (
	GenreAction         Genre = "Action"
	GenreAdventure      Genre = "Adventure"
	GenreComedy         Genre = "Comedy"
	GenreDrama          Genre = "Drama"
	GenreFantasy        Genre = "Fantasy"
	GenreHorror         Genre = "Horror"
	GenreMystery        Genre = "Mystery"
	GenreThriller       Genre = "Thriller"
	GenreWestern        Genre = "Western"
	GenreScienceFiction Genre = "Science Fiction"
)

// Genres lists every accepted genre value.
var Genres = []Genre{
	GenreAction,
	GenreAdventure,
	GenreComedy,
	GenreDrama,
	GenreFantasy,
	GenreHorror,
	GenreMystery,
	GenreThriller,
	GenreWestern,
	GenreScienceFiction,
}

// Valid reports whether g is one of the fixed genre values.
func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Release years accepted for a movie.
const (
	MinReleaseYear = 1900
	MaxReleaseYear = 2100
)

// Movie is a catalog entry. Title is expected to be unique by application
// logic; Actors is never empty for a persisted movie.
type Movie struct {
	ID          int64
	Title       string
	ReleaseDate int
	Genre       Genre
	Actors      []Actor
	PosterKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Reviews     []Review
}

// Actor is a cast member of a movie.
type Actor struct {
	ID            int64
	MovieID       int64
	ActorName     string
	CharacterName string
}
