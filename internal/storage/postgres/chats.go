package postgres

import (
	"context"

	"github.com/ivankudrin/messenger/internal/models"
	"github.com/jackc/pgx/v5"
)

// chatColumns aggregates the invited set into an array so a chat reads
// back in a single query.
const chatColumns = `c.id, c.title, c.creator_id, c.is_closed, c.created_at, c.updated_at,
		COALESCE(array_agg(ci.user_id ORDER BY ci.user_id) FILTER (WHERE ci.user_id IS NOT NULL), '{}')`

const chatJoin = `FROM chats c
		LEFT JOIN chat_invited ci ON ci.chat_id = c.id`

func scanChat(row pgx.Row) (models.Chat, error) {
	var chat models.Chat
	err := row.Scan(
		&chat.ID,
		&chat.Title,
		&chat.CreatorID,
		&chat.IsClosed,
		&chat.CreatedAt,
		&chat.UpdatedAt,
		&chat.Invited,
	)
	return chat, err
}

// SaveChat inserts the chat and its invited set in one transaction.
func (s *Storage) SaveChat(
	ctx context.Context,
	title string,
	creatorID int64,
	invited []int64,
	isClosed bool,
) (models.Chat, error) {
	const op = "storage.postgres.SaveChat"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}
	defer tx.Rollback(ctx)

	sql := `INSERT INTO chats (title, creator_id, is_closed)
			VALUES ($1, $2, $3)
			RETURNING id, title, creator_id, is_closed, created_at, updated_at`
	var chat models.Chat
	err = tx.QueryRow(ctx, sql, title, creatorID, isClosed).Scan(
		&chat.ID,
		&chat.Title,
		&chat.CreatorID,
		&chat.IsClosed,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	chat.Invited, err = replaceInvited(ctx, tx, chat.ID, invited)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	return chat, nil
}

func (s *Storage) GetChat(ctx context.Context, id int64) (models.Chat, error) {
	const op = "storage.postgres.GetChat"

	sql := `SELECT ` + chatColumns + ` ` + chatJoin + ` WHERE c.id = $1 GROUP BY c.id`
	chat, err := scanChat(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	return chat, nil
}

func (s *Storage) ListChats(ctx context.Context, limit, offset int) ([]models.Chat, int64, error) {
	const op = "storage.postgres.ListChats"

	var count int64
	err := s.db.QueryRow(ctx, "SELECT count(*) FROM chats").Scan(&count)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}

	sql := `SELECT ` + chatColumns + ` ` + chatJoin + ` GROUP BY c.id ORDER BY c.id LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}
		chats = append(chats, chat)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	return chats, count, nil
}

// UpdateChat replaces the record and the whole invited set (PUT
// semantics), in one transaction.
func (s *Storage) UpdateChat(
	ctx context.Context,
	id int64,
	title string,
	creatorID int64,
	invited []int64,
	isClosed bool,
) (models.Chat, error) {
	const op = "storage.postgres.UpdateChat"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}
	defer tx.Rollback(ctx)

	sql := `UPDATE chats
			SET title = $1, creator_id = $2, is_closed = $3, updated_at = now()
			WHERE id = $4
			RETURNING id, title, creator_id, is_closed, created_at, updated_at`
	var chat models.Chat
	err = tx.QueryRow(ctx, sql, title, creatorID, isClosed, id).Scan(
		&chat.ID,
		&chat.Title,
		&chat.CreatorID,
		&chat.IsClosed,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	_, err = tx.Exec(ctx, "DELETE FROM chat_invited WHERE chat_id = $1", id)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	chat.Invited, err = replaceInvited(ctx, tx, id, invited)
	if err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Chat{}, wrapErr(op, err)
	}

	return chat, nil
}

func (s *Storage) DeleteChat(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteChat"

	tag, err := s.db.Exec(ctx, "DELETE FROM chats WHERE id = $1", id)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr(op, pgx.ErrNoRows)
	}

	return nil
}

// replaceInvited inserts the invited set, dropping duplicate ids so the
// returned slice matches what a later read will see.
func replaceInvited(ctx context.Context, tx pgx.Tx, chatID int64, invited []int64) ([]int64, error) {
	saved := make([]int64, 0, len(invited))
	seen := make(map[int64]struct{}, len(invited))
	for _, userID := range invited {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}

		_, err := tx.Exec(ctx,
			`INSERT INTO chat_invited (chat_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (chat_id, user_id) DO NOTHING`,
			chatID, userID,
		)
		if err != nil {
			return nil, err
		}
		saved = append(saved, userID)
	}
	return saved, nil
}
