package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ivankudrin/messenger/pkg/utils/retry"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	User     string
	Password string
	DB       int
}

func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	const op = "redis-client.New"

	var rdb *redis.Client

	err := retry.WithDelay(5, 500*time.Millisecond, func() error {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.User,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rdb, nil
}
