package service

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/ivankudrin/messenger/internal/models"
)

const documentPrefix = "file/"

func documentKey(filename string) string {
	return documentPrefix + uuid.NewString() + "-" + path.Base(filename)
}

// CreateFile uploads the blob first, then records the row. If the row
// insert fails (unknown message id), the freshly uploaded blob is
// removed again.
func (s *Service) CreateFile(
	ctx context.Context,
	messageID int64,
	filename string,
	contentType string,
	data []byte,
) (models.File, error) {
	const op = "service.CreateFile"

	key := documentKey(filename)

	if err := s.s3.SaveDocument(ctx, key, contentType, data); err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	file, err := s.storage.SaveFile(ctx, messageID, key)
	if err != nil {
		_ = s.s3.DeleteDocument(ctx, key)
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	file.URL, err = s.s3.DocumentURL(ctx, key)
	if err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	return file, nil
}

func (s *Service) GetFile(ctx context.Context, id int64) (models.File, error) {
	const op = "service.GetFile"

	file, err := s.storage.GetFile(ctx, id)
	if err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	file.URL, err = s.s3.DocumentURL(ctx, file.Document)
	if err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	return file, nil
}

func (s *Service) ListFiles(ctx context.Context, limit, offset int) ([]models.File, int64, error) {
	const op = "service.ListFiles"

	files, count, err := s.storage.ListFiles(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	for i := range files {
		files[i].URL, err = s.s3.DocumentURL(ctx, files[i].Document)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	return files, count, nil
}

// UpdateFile replaces the document with a new upload and drops the old
// blob once the row points at the new key.
func (s *Service) UpdateFile(
	ctx context.Context,
	id int64,
	messageID int64,
	filename string,
	contentType string,
	data []byte,
) (models.File, error) {
	const op = "service.UpdateFile"

	old, err := s.storage.GetFile(ctx, id)
	if err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	key := documentKey(filename)
	if err = s.s3.SaveDocument(ctx, key, contentType, data); err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	file, err := s.storage.UpdateFile(ctx, id, messageID, key)
	if err != nil {
		_ = s.s3.DeleteDocument(ctx, key)
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	_ = s.s3.DeleteDocument(ctx, old.Document)

	file.URL, err = s.s3.DocumentURL(ctx, key)
	if err != nil {
		return models.File{}, fmt.Errorf("%s: %w", op, err)
	}

	return file, nil
}

func (s *Service) DeleteFile(ctx context.Context, id int64) error {
	const op = "service.DeleteFile"

	file, err := s.storage.GetFile(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.storage.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.s3.DeleteDocument(ctx, file.Document)

	return nil
}
