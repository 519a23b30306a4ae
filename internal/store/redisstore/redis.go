package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	now    func() time.Time
}

func New(addr, password string, db int) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}))
}

// NewWithClient wraps an existing client.
func NewWithClient(c *redis.Client) *Store {
	return &Store{client: c, now: time.Now}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func rateKey(subject string, window time.Duration, now time.Time) string {
	bucket := now.UnixNano() / int64(window)
	return fmt.Sprintf("notechat:rl:%s:%d", subject, bucket)
}

// Allow counts one hit for subject in the current fixed window and reports
// whether it is within limit. It also returns the hits seen so far.
func (s *Store) Allow(ctx context.Context, subject string, limit int, window time.Duration) (bool, int64, error) {
	key := rateKey(subject, window, s.now())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	n := incr.Val()
	return n <= int64(limit), n, nil
}
