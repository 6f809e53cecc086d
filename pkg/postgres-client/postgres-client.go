package postgresclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ivankudrin/messenger/pkg/utils/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MinPools       int
	MaxPools       int
	MigrationsPath string
}

func (c Config) connString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d&pool_min_conns=%d",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.MaxPools,
		c.MinPools,
	)
}

// migrateURL strips the pool_* query params, which migrate's postgres
// driver rejects.
func (c Config) migrateURL() string {
	return strings.Split(c.connString(), "&")[0]
}

// New opens the pool and brings the schema up to date before returning.
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	const op = "postgres-client.New"

	var pool *pgxpool.Pool

	err := retry.WithDelay(5, 500*time.Millisecond, func() error {
		var err error

		pool, err = pgxpool.New(ctx, cfg.connString())
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err = pool.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.migrateURL())
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pool, nil
}
