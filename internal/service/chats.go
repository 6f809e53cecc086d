package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ivankudrin/messenger/internal/models"
)

func (s *Service) CreateChat(
	ctx context.Context,
	title string,
	creatorID int64,
	invited []int64,
	isClosed bool,
) (models.Chat, error) {
	const op = "service.CreateChat"

	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.Chat{}, fmt.Errorf("%s: %w", op, ErrTitleTooLong)
	}

	chat, err := s.storage.SaveChat(ctx, title, creatorID, invited, isClosed)
	if err != nil {
		return models.Chat{}, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.SaveChat(ctx, chat)

	return chat, nil
}

// GetChat reads through the cache and falls back to the database.
func (s *Service) GetChat(ctx context.Context, id int64) (models.Chat, error) {
	const op = "service.GetChat"

	chat, err := s.cache.GetChat(ctx, id)
	if err == nil {
		return chat, nil
	}

	chat, err = s.storage.GetChat(ctx, id)
	if err != nil {
		return models.Chat{}, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.SaveChat(ctx, chat)

	return chat, nil
}

func (s *Service) ListChats(ctx context.Context, limit, offset int) ([]models.Chat, int64, error) {
	const op = "service.ListChats"

	chats, count, err := s.storage.ListChats(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return chats, count, nil
}

func (s *Service) UpdateChat(
	ctx context.Context,
	id int64,
	title string,
	creatorID int64,
	invited []int64,
	isClosed bool,
) (models.Chat, error) {
	const op = "service.UpdateChat"

	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.Chat{}, fmt.Errorf("%s: %w", op, ErrTitleTooLong)
	}

	chat, err := s.storage.UpdateChat(ctx, id, title, creatorID, invited, isClosed)
	if err != nil {
		return models.Chat{}, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.SaveChat(ctx, chat)

	return chat, nil
}

func (s *Service) DeleteChat(ctx context.Context, id int64) error {
	const op = "service.DeleteChat"

	keys, err := s.storage.FileKeysByChat(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.storage.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.cache.DeleteChat(ctx, id)
	s.deleteDocuments(ctx, keys)

	return nil
}
