package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"libraryhub/internal/http-api/models"

	"github.com/redis/go-redis/v9"
)

// BookCache caches book detail payloads. Availability is part of the payload,
// so every mutation of a book (catalog edit, borrow, return) must invalidate.
type BookCache interface {
	Get(ctx context.Context, bookID int64) (*models.Book, error)
	Set(ctx context.Context, book *models.Book) error
	Invalidate(ctx context.Context, bookID int64) error
}

type bookRedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookRedisCache connects to Redis and returns a cache with the given TTL.
func NewBookRedisCache(addr, password string, ttl time.Duration) (BookCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &bookRedisCache{client: rdb, ttl: ttl}, nil
}

func bookKey(bookID int64) string {
	return fmt.Sprintf("book:%d", bookID)
}

// Get returns the cached book, or (nil, nil) on a miss.
func (c *bookRedisCache) Get(ctx context.Context, bookID int64) (*models.Book, error) {
	if c == nil || c.client == nil {
		// No-op mode, behaves like a permanent miss
		return nil, nil
	}

	raw, err := c.client.Get(ctx, bookKey(bookID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var book models.Book
	if err := json.Unmarshal([]byte(raw), &book); err != nil {
		// a corrupt entry is treated as a miss
		return nil, nil
	}
	return &book, nil
}

func (c *bookRedisCache) Set(ctx context.Context, book *models.Book) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookKey(book.ID), raw, c.ttl).Err()
}

func (c *bookRedisCache) Invalidate(ctx context.Context, bookID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, bookKey(bookID)).Err()
}

// NoopBookCache returns a cache that never hits, for runs without Redis.
func NoopBookCache() BookCache {
	return (*bookRedisCache)(nil)
}
