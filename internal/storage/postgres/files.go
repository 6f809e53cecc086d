package postgres

import (
	"context"

	"github.com/ivankudrin/messenger/internal/models"
	"github.com/jackc/pgx/v5"
)

const fileColumns = "id, message_id, document, created_at, updated_at"

func (s *Storage) SaveFile(ctx context.Context, messageID int64, document string) (models.File, error) {
	const op = "storage.postgres.SaveFile"

	sql := `INSERT INTO files (message_id, document)
			VALUES ($1, $2)
			RETURNING ` + fileColumns
	var file models.File
	err := s.db.QueryRow(ctx, sql, messageID, document).Scan(
		&file.ID,
		&file.MessageID,
		&file.Document,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return models.File{}, wrapErr(op, err)
	}

	return file, nil
}

func (s *Storage) GetFile(ctx context.Context, id int64) (models.File, error) {
	const op = "storage.postgres.GetFile"

	sql := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	var file models.File
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&file.ID,
		&file.MessageID,
		&file.Document,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return models.File{}, wrapErr(op, err)
	}

	return file, nil
}

func (s *Storage) ListFiles(ctx context.Context, limit, offset int) ([]models.File, int64, error) {
	const op = "storage.postgres.ListFiles"

	var count int64
	err := s.db.QueryRow(ctx, "SELECT count(*) FROM files").Scan(&count)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}

	sql := `SELECT ` + fileColumns + ` FROM files ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		var file models.File
		err = rows.Scan(
			&file.ID,
			&file.MessageID,
			&file.Document,
			&file.CreatedAt,
			&file.UpdatedAt,
		)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}
		files = append(files, file)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	return files, count, nil
}

// UpdateFile repoints the record at a new object key.
func (s *Storage) UpdateFile(ctx context.Context, id int64, messageID int64, document string) (models.File, error) {
	const op = "storage.postgres.UpdateFile"

	sql := `UPDATE files
			SET message_id = $1, document = $2, updated_at = now()
			WHERE id = $3
			RETURNING ` + fileColumns
	var file models.File
	err := s.db.QueryRow(ctx, sql, messageID, document, id).Scan(
		&file.ID,
		&file.MessageID,
		&file.Document,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return models.File{}, wrapErr(op, err)
	}

	return file, nil
}

func (s *Storage) DeleteFile(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteFile"

	tag, err := s.db.Exec(ctx, "DELETE FROM files WHERE id = $1", id)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(op, pgx.ErrNoRows)
	}

	return nil
}

// FileKeysByMessage returns object keys of blobs that the FK cascade will
// sweep away when the message is deleted. The service removes the blobs
// after the row delete commits.
func (s *Storage) FileKeysByMessage(ctx context.Context, messageID int64) ([]string, error) {
	const op = "storage.postgres.FileKeysByMessage"

	return s.fileKeys(ctx, op, "SELECT document FROM files WHERE message_id = $1", messageID)
}

// FileKeysByChat covers a chat delete: every file of every message in it.
func (s *Storage) FileKeysByChat(ctx context.Context, chatID int64) ([]string, error) {
	const op = "storage.postgres.FileKeysByChat"

	sql := `SELECT f.document
			FROM files f
			JOIN messages m ON m.id = f.message_id
			WHERE m.chat_id = $1`
	return s.fileKeys(ctx, op, sql, chatID)
}

// FileKeysByUser covers a user delete: files under messages the user sent,
// plus files under any message in chats the user created.
func (s *Storage) FileKeysByUser(ctx context.Context, userID int64) ([]string, error) {
	const op = "storage.postgres.FileKeysByUser"

	sql := `SELECT DISTINCT f.document
			FROM files f
			JOIN messages m ON m.id = f.message_id
			LEFT JOIN chats c ON c.id = m.chat_id
			WHERE m.sender_id = $1 OR c.creator_id = $1`
	return s.fileKeys(ctx, op, sql, userID)
}

func (s *Storage) fileKeys(ctx context.Context, op, sql string, arg any) ([]string, error) {
	rows, err := s.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, wrapErr(op, err)
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return keys, nil
}
