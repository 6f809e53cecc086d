package service

import (
	"context"
	"fmt"

	"github.com/ivankudrin/messenger/internal/models"
)

// CreateMessage attaches a message to a chat. Anyone may post to any
// chat: the invited list is advisory, not an access-control boundary.
func (s *Service) CreateMessage(
	ctx context.Context,
	chatID int64,
	senderID int64,
	text string,
	status models.MessageStatus,
) (models.Message, error) {
	const op = "service.CreateMessage"

	if status == 0 {
		status = models.StatusNotViewed
	}
	if !status.Valid() {
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	msg, err := s.storage.SaveMessage(ctx, chatID, senderID, text, status)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Service) GetMessage(ctx context.Context, id int64) (models.Message, error) {
	const op = "service.GetMessage"

	msg, err := s.storage.GetMessage(ctx, id)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, int64, error) {
	const op = "service.ListMessages"

	messages, count, err := s.storage.ListMessages(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return messages, count, nil
}

func (s *Service) UpdateMessage(
	ctx context.Context,
	id int64,
	chatID int64,
	senderID int64,
	text string,
	status models.MessageStatus,
) (models.Message, error) {
	const op = "service.UpdateMessage"

	if status == 0 {
		status = models.StatusNotViewed
	}
	if !status.Valid() {
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	msg, err := s.storage.UpdateMessage(ctx, id, chatID, senderID, text, status)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Service) DeleteMessage(ctx context.Context, id int64) error {
	const op = "service.DeleteMessage"

	keys, err := s.storage.FileKeysByMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.storage.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.deleteDocuments(ctx, keys)

	return nil
}
