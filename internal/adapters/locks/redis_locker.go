package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/internal/domain/providers"
	redisclient "github.com/zatekoja/carebook/internal/infrastructure/clients/redis"
	"github.com/zatekoja/carebook/pkg/retry"
)

// errLockHeld signals another holder; it only drives the retry loop.
var errLockHeld = errors.New("lock held by another owner")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SlotLocker shared by every API instance pointing at the same Redis.
type RedisLocker struct {
	client *redisclient.Client
	prefix string
	ttl    time.Duration
	retry  retry.Config
}

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder can
// block a key; wait bounds how long Acquire polls before giving up.
func NewRedisLocker(client *redisclient.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "lock:",
		ttl:    ttl,
		retry: retry.Config{
			MaxAttempts:     50,
			InitialDelay:    5 * time.Millisecond,
			MaxDelay:        100 * time.Millisecond,
			BackoffFactor:   2.0,
			MaxTotalTimeout: wait,
		},
	}
}

var _ providers.SlotLocker = (*RedisLocker)(nil)

// Acquire blocks until key is held, ctx is done or the wait budget is spent
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.New().String()

	err := retry.Do(ctx, l.retry, func() error {
		ok, err := l.client.Client().SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return errLockHeld
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client.Client(), []string{redisKey}, token).Err(); err != nil {
			log.Warn().Err(err).Str("lock_key", key).Msg("failed to release redis lock")
		}
	}, nil
}
