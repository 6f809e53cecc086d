package postgres

import (
	"context"

	"github.com/ivankudrin/messenger/internal/models"
	"github.com/jackc/pgx/v5"
)

const messageColumns = "id, chat_id, sender_id, text, status, created_at, updated_at"

func (s *Storage) SaveMessage(
	ctx context.Context,
	chatID int64,
	senderID int64,
	text string,
	status models.MessageStatus,
) (models.Message, error) {
	const op = "storage.postgres.SaveMessage"

	sql := `INSERT INTO messages (chat_id, sender_id, text, status)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + messageColumns
	var msg models.Message
	err := s.db.QueryRow(ctx, sql, chatID, senderID, text, status).Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.SenderID,
		&msg.Text,
		&msg.Status,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return models.Message{}, wrapErr(op, err)
	}

	return msg, nil
}

func (s *Storage) GetMessage(ctx context.Context, id int64) (models.Message, error) {
	const op = "storage.postgres.GetMessage"

	sql := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	var msg models.Message
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.SenderID,
		&msg.Text,
		&msg.Status,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return models.Message{}, wrapErr(op, err)
	}

	return msg, nil
}

func (s *Storage) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, int64, error) {
	const op = "storage.postgres.ListMessages"

	var count int64
	err := s.db.QueryRow(ctx, "SELECT count(*) FROM messages").Scan(&count)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}

	sql := `SELECT ` + messageColumns + ` FROM messages ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		err = rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.SenderID,
			&msg.Text,
			&msg.Status,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	return messages, count, nil
}

func (s *Storage) UpdateMessage(
	ctx context.Context,
	id int64,
	chatID int64,
	senderID int64,
	text string,
	status models.MessageStatus,
) (models.Message, error) {
	const op = "storage.postgres.UpdateMessage"

	sql := `UPDATE messages
			SET chat_id = $1, sender_id = $2, text = $3, status = $4, updated_at = now()
			WHERE id = $5
			RETURNING ` + messageColumns
	var msg models.Message
	err := s.db.QueryRow(ctx, sql, chatID, senderID, text, status, id).Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.SenderID,
		&msg.Text,
		&msg.Status,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return models.Message{}, wrapErr(op, err)
	}

	return msg, nil
}

func (s *Storage) DeleteMessage(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteMessage"

	tag, err := s.db.Exec(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(op, pgx.ErrNoRows)
	}

	return nil
}
