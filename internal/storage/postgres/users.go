package postgres

import (
	"context"

	"github.com/ivankudrin/messenger/internal/models"
	"github.com/jackc/pgx/v5"
)

const userColumns = "id, username, email, password_hash, first_name, last_name, groups, last_login, created_at, updated_at"

func (s *Storage) SaveUser(
	ctx context.Context,
	username string,
	passwordHash string,
	email string,
	firstName string,
	lastName string,
	groups []string,
) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	if groups == nil {
		groups = []string{}
	}

	sql := `INSERT INTO users (username, password_hash, email, first_name, last_name, groups)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + userColumns
	var user models.User
	err := s.db.QueryRow(ctx, sql, username, passwordHash, email, firstName, lastName, groups).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Groups,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, wrapErr(op, err)
	}

	return user, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (models.User, error) {
	const op = "storage.postgres.GetUser"

	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Groups,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, wrapErr(op, err)
	}

	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	const op = "storage.postgres.ListUsers"

	var count int64
	err := s.db.QueryRow(ctx, "SELECT count(*) FROM users").Scan(&count)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}

	sql := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		err = rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Groups,
			&user.LastLogin,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}

		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	return users, count, nil
}

// UpdateUser replaces the full record. Optional fields the caller left
// out arrive as zero values, matching PUT semantics.
func (s *Storage) UpdateUser(
	ctx context.Context,
	id int64,
	username string,
	passwordHash string,
	email string,
	firstName string,
	lastName string,
	groups []string,
) (models.User, error) {
	const op = "storage.postgres.UpdateUser"

	if groups == nil {
		groups = []string{}
	}

	sql := `UPDATE users
			SET username = $1, password_hash = $2, email = $3, first_name = $4,
				last_name = $5, groups = $6, updated_at = now()
			WHERE id = $7
			RETURNING ` + userColumns
	var user models.User
	err := s.db.QueryRow(ctx, sql, username, passwordHash, email, firstName, lastName, groups, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Groups,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, wrapErr(op, err)
	}

	return user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(op, pgx.ErrNoRows)
	}

	return nil
}

// ChatIDsByCreator lists chats that a user delete will sweep away, so the
// service can drop their cache entries.
func (s *Storage) ChatIDsByCreator(ctx context.Context, userID int64) ([]int64, error) {
	const op = "storage.postgres.ChatIDsByCreator"

	return s.chatIDs(ctx, op, "SELECT id FROM chats WHERE creator_id = $1", userID)
}

// ChatIDsByInvited lists chats that keep the user in their invited set.
// Those chats survive the user delete, but their cached copies go stale
// the moment the FK cascade drops the membership rows.
func (s *Storage) ChatIDsByInvited(ctx context.Context, userID int64) ([]int64, error) {
	const op = "storage.postgres.ChatIDsByInvited"

	return s.chatIDs(ctx, op, "SELECT chat_id FROM chat_invited WHERE user_id = $1", userID)
}

func (s *Storage) chatIDs(ctx context.Context, op, sql string, arg any) ([]int64, error) {
	rows, err := s.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, wrapErr(op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return ids, nil
}
