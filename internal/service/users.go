package service

import (
	"context"
	"fmt"

	"github.com/ivankudrin/messenger/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func (s *Service) CreateUser(
	ctx context.Context,
	username string,
	password string,
	email string,
	firstName string,
	lastName string,
	groups []string,
) (models.User, error) {
	const op = "service.CreateUser"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.SaveUser(ctx, username, string(hash), email, firstName, lastName, groups)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (models.User, error) {
	const op = "service.GetUser"

	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	const op = "service.ListUsers"

	users, count, err := s.storage.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return users, count, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	username string,
	password string,
	email string,
	firstName string,
	lastName string,
	groups []string,
) (models.User, error) {
	const op = "service.UpdateUser"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UpdateUser(ctx, id, username, string(hash), email, firstName, lastName, groups)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// DeleteUser removes the user. The FK cascade takes created chats,
// sent messages and their files with it; invited-only memberships are
// dropped without touching those chats. Blob keys and chat ids are
// collected up front so the object store and cache can be swept after
// the row delete. Invited chats survive, but their cached copies still
// list the user and must be dropped too.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	const op = "service.DeleteUser"

	keys, err := s.storage.FileKeysByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	chatIDs, err := s.storage.ChatIDsByCreator(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	invitedChatIDs, err := s.storage.ChatIDsByInvited(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.storage.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, chatID := range append(chatIDs, invitedChatIDs...) {
		_ = s.cache.DeleteChat(ctx, chatID)
	}
	s.deleteDocuments(ctx, keys)

	return nil
}
