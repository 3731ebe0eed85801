package domain

import "time"

// Rating bounds for a review.
const (
	MinRating = 0
	MaxRating = 5
)

// Review is an opinion left on a movie. Username is always the authenticated
// author, never a client-supplied value.
type Review struct {
	ID        int64
	MovieID   int64
	Username  string
	Review    string
	Rating    float64
	CreatedAt time.Time
}
