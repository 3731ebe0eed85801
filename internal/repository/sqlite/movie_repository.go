package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"movie-api/internal/domain"
	"movie-api/internal/repository"
)

const createMoviesTable = `
CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	release_date INTEGER NOT NULL,
	genre TEXT NOT NULL,
	poster_key TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(title);
`

const createMovieActorsTable = `
CREATE TABLE IF NOT EXISTS movie_actors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_id INTEGER NOT NULL,
	actor_name TEXT NOT NULL,
	character_name TEXT NOT NULL,
	FOREIGN KEY(movie_id) REFERENCES movies(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_movie_actors_movie_id ON movie_actors(movie_id);
`

type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) repository.MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMoviesTable); err != nil {
		return fmt.Errorf("create movies table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createMovieActorsTable); err != nil {
		return fmt.Errorf("create movie_actors table: %w", err)
	}
	return nil
}

func (r *MovieRepository) Create(ctx context.Context, movie *domain.Movie) (int64, error) {
	now := time.Now().UTC()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, `
INSERT INTO movies (title, release_date, genre, poster_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		movie.Title,
		movie.ReleaseDate,
		string(movie.Genre),
		movie.PosterKey,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("movie %q: %w", movie.Title, domain.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("insert movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("movie last insert id: %w", err)
	}
	movie.ID = id

	if err := replaceActorsTx(ctx, tx, id, movie.Actors); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

func (r *MovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	movie.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE movies
SET title=?, release_date=?, genre=?, updated_at=?
WHERE id=?`,
		movie.Title,
		movie.ReleaseDate,
		string(movie.Genre),
		movie.UpdatedAt,
		movie.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movie %q: %w", movie.Title, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("update movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update movie rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d: %w", movie.ID, domain.ErrNotFound)
	}

	if err := replaceActorsTx(ctx, tx, movie.ID, movie.Actors); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *MovieRepository) UpdatePosterKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE movies SET poster_key=?, updated_at=? WHERE id=?`,
		key, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update poster key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update poster key rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete movie rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, release_date, genre, poster_key, created_at, updated_at
FROM movies
WHERE id = ?`,
		id,
	)
	movie, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if movie.Actors, err = r.listActors(ctx, movie.ID); err != nil {
		return nil, err
	}
	return movie, nil
}

func (r *MovieRepository) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, release_date, genre, poster_key, created_at, updated_at
FROM movies
WHERE title = ?`,
		title,
	)
	movie, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if movie.Actors, err = r.listActors(ctx, movie.ID); err != nil {
		return nil, err
	}
	return movie, nil
}

func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, release_date, genre, poster_key, created_at, updated_at
FROM movies
ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var movie domain.Movie
		var genre string
		if err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.ReleaseDate,
			&genre,
			&movie.PosterKey,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movie.Genre = domain.Genre(genre)
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range movies {
		if movies[i].Actors, err = r.listActors(ctx, movies[i].ID); err != nil {
			return nil, err
		}
	}
	return movies, nil
}

func (r *MovieRepository) listActors(ctx context.Context, movieID int64) ([]domain.Actor, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, movie_id, actor_name, character_name
FROM movie_actors
WHERE movie_id=?
ORDER BY id ASC`, movieID)
	if err != nil {
		return nil, fmt.Errorf("query movie actors: %w", err)
	}
	defer rows.Close()

	var actors []domain.Actor
	for rows.Next() {
		var actor domain.Actor
		if err := rows.Scan(&actor.ID, &actor.MovieID, &actor.ActorName, &actor.CharacterName); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, actor)
	}
	return actors, rows.Err()
}

func replaceActorsTx(ctx context.Context, tx *sql.Tx, movieID int64, actors []domain.Actor) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id=?`, movieID); err != nil {
		return fmt.Errorf("delete actors: %w", err)
	}
	for _, actor := range actors {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO movie_actors (movie_id, actor_name, character_name)
VALUES (?, ?, ?)`,
			movieID,
			actor.ActorName,
			actor.CharacterName,
		); err != nil {
			return fmt.Errorf("insert actor: %w", err)
		}
	}
	return nil
}

func scanMovie(row *sql.Row) (*domain.Movie, error) {
	var movie domain.Movie
	var genre string
	if err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.ReleaseDate,
		&genre,
		&movie.PosterKey,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movie: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan movie: %w", err)
	}
	movie.Genre = domain.Genre(genre)
	return &movie, nil
}
