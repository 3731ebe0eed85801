package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"movie-api/internal/domain"
	"movie-api/internal/repository"
)

const createReviewsTable = `
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	movie_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	review TEXT NOT NULL,
	rating REAL NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(movie_id) REFERENCES movies(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_reviews_movie_id ON reviews(movie_id);
`

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReviewsTable); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (int64, error) {
	review.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reviews (movie_id, username, review, rating, created_at)
VALUES (?, ?, ?, ?, ?)`,
		review.MovieID,
		review.Username,
		review.Review,
		review.Rating,
		review.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("movie %d: %w", review.MovieID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review last insert id: %w", err)
	}
	review.ID = id
	return id, nil
}

func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx, `
SELECT id, movie_id, username, review, rating, created_at
FROM reviews
WHERE movie_id=?
ORDER BY id ASC`, movieID)
}

func (r *ReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	return r.queryReviews(ctx, `
SELECT id, movie_id, username, review, rating, created_at
FROM reviews
ORDER BY id ASC`)
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.MovieID,
			&review.Username,
			&review.Review,
			&review.Rating,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
