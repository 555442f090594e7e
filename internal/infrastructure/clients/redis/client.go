package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/carebook/pkg/config"
	"github.com/zatekoja/carebook/pkg/retry"
)

// Client wraps the go-redis client shared by the slot locker, the catalog
// cache and the schedule event bus.
type Client struct {
	client *redis.Client
}

// NewClient creates a new Redis client from configuration, retrying the
// initial ping with exponential backoff
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	var c *Client
	err := retry.DoWithLog(context.Background(), retry.DefaultConfig(), "Redis",
		func() error {
			var err error
			c, err = NewClientWithOptions(opts)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Redis connection attempt failed")
		},
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("addr", opts.Addr).Msg("connected to Redis")
	return c, nil
}

// NewClientWithOptions creates a client from raw options and verifies the connection
func NewClientWithOptions(opts *redis.Options) (*Client, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &Client{client: client}, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping verifies the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
