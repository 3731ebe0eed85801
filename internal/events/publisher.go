// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: failures are returned to the caller, which logs and moves on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"movie-api/internal/domain"
)

// ReviewCreated is the payload emitted after a review is persisted.
type ReviewCreated struct {
	ReviewID  int64     `json:"review_id"`
	MovieID   int64     `json:"movie_id"`
	Username  string    `json:"username"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher sends events to a named queue. Each publish dials a fresh
// connection so a broker restart never wedges the service.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue}
}

// PublishReviewCreated declares the queue (idempotent) and publishes a
// persistent message for the given review.
func (p *Publisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		p.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(ReviewCreated{
		ReviewID:  review.ID,
		MovieID:   review.MovieID,
		Username:  review.Username,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
