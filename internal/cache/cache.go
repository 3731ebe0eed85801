// Package cache provides an optional redis-backed response cache for the
// read-heavy movie endpoints. When redis is unreachable the service runs
// without caching.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewClient connects to redis and verifies the connection with a short ping.
// It returns nil when the server cannot be reached; callers degrade by
// disabling caching.
func NewClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

// ResponseCache caches successful GET responses under a shared key prefix.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger
}

func New(client *redis.Client, ttl time.Duration, prefix string, logger *logrus.Logger) *ResponseCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &ResponseCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter buffers the response body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves cached GET responses and stores fresh ones. Only 200
// responses are cached.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || rc.client == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := rc.key(c)
		if payload, err := rc.client.Get(c.Request.Context(), key).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(payload, &cached) == nil {
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := rc.client.Set(c.Request.Context(), key, payload, rc.ttl).Err(); err != nil {
			rc.logger.Warnf("cache set %s: %v", key, err)
		}
	}
}

// Flush drops every cached response under the prefix. Called after catalog
// mutations so stale reads never outlive a write by more than one round trip.
func (rc *ResponseCache) Flush(ctx context.Context) {
	if rc == nil || rc.client == nil {
		return
	}

	iter := rc.client.Scan(ctx, 0, rc.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		rc.logger.Warnf("cache scan: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		rc.logger.Warnf("cache flush: %v", err)
	}
}

func (rc *ResponseCache) key(c *gin.Context) string {
	key := rc.prefix + ":" + c.Request.Method + ":" + c.Request.URL.Path
	if raw := c.Request.URL.RawQuery; raw != "" {
		key += "?" + raw
	}
	return key
}
