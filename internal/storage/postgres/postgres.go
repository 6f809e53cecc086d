package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivankudrin/messenger/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Postgres interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Storage struct {
	db Postgres
}

func New(db Postgres) *Storage {
	return &Storage{
		db: db,
	}
}

// wrapErr translates driver errors into the storage sentinels:
// unique violations, missing foreign keys and empty result sets.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		case "23503":
			return fmt.Errorf("%s: %w", op, storage.ErrReferenceNotFound)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Migrated reports whether the schema is fully applied. Used by the
// health check: a dirty or absent schema_migrations row means a broken
// or never-run migration.
func (s *Storage) Migrated(ctx context.Context) error {
	const op = "storage.postgres.Migrated"

	var dirty bool
	err := s.db.QueryRow(ctx, "SELECT dirty FROM schema_migrations LIMIT 1").Scan(&dirty)
	if err != nil {
		return wrapErr(op, err)
	}
	if dirty {
		return fmt.Errorf("%s: schema is dirty", op)
	}

	return nil
}
