package storage

import (
	"context"
	"io"
	"time"
)

// Service stores movie poster images in remote object storage.
type Service interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) (string, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}
