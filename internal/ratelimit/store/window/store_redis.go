package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio/internal/ratelimit/models"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "contact:rl:"
	maxWatchRetries = 5
)

// RedisStore keeps fixed-window counters in Redis. Each hit runs as a
// WATCH/MULTI transaction so the read-compare-write matches the in-memory
// semantics; key expiry ends the window, so no sweeping is needed.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(key string) string {
	return redisKeyPrefix + key
}

// Hit applies one request to the key's window.
func (s *RedisStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Decision, error) {
	redisKey := s.key(key)

	for range maxWatchRetries {
		var decision *models.Decision
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			count, ttl, err := readWindow(ctx, tx, redisKey)
			if err != nil {
				return err
			}

			if count == 0 || ttl <= 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, redisKey, 1, window)
					return nil
				})
				if err != nil {
					return err
				}
				decision = models.NewDecision(true, 1, limit, now.Add(window), now)
				return nil
			}

			resetAt := now.Add(ttl)
			if count >= limit {
				decision = models.NewDecision(false, count, limit, resetAt, now)
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Incr(ctx, redisKey)
				return nil
			})
			if err != nil {
				return err
			}
			decision = models.NewDecision(true, count+1, limit, resetAt, now)
			return nil
		}, redisKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis window hit: %w", err)
		}
		return decision, nil
	}
	return nil, fmt.Errorf("redis window hit: %w", redis.TxFailedErr)
}

// readWindow returns the current count and remaining TTL. A missing key
// reads as count 0.
func readWindow(ctx context.Context, tx *redis.Tx, key string) (int, time.Duration, error) {
	count, err := tx.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get window count: %w", err)
	}
	ttl, err := tx.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("get window ttl: %w", err)
	}
	return count, ttl, nil
}
