package service

import (
	"context"
	"errors"

	"github.com/ivankudrin/messenger/internal/models"
)

const maxTitleLen = 50

var (
	ErrTitleTooLong  = errors.New("title is longer than 50 characters")
	ErrInvalidStatus = errors.New("status must be 1 (viewed) or 2 (not viewed)")
)

type Storage interface {
	SaveUser(
		ctx context.Context,
		username string,
		passwordHash string,
		email string,
		firstName string,
		lastName string,
		groups []string,
	) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdateUser(
		ctx context.Context,
		id int64,
		username string,
		passwordHash string,
		email string,
		firstName string,
		lastName string,
		groups []string,
	) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ChatIDsByCreator(ctx context.Context, userID int64) ([]int64, error)
	ChatIDsByInvited(ctx context.Context, userID int64) ([]int64, error)

	SaveChat(ctx context.Context, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error)
	GetChat(ctx context.Context, id int64) (models.Chat, error)
	ListChats(ctx context.Context, limit, offset int) ([]models.Chat, int64, error)
	UpdateChat(ctx context.Context, id int64, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error)
	DeleteChat(ctx context.Context, id int64) error

	SaveMessage(ctx context.Context, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error)
	GetMessage(ctx context.Context, id int64) (models.Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]models.Message, int64, error)
	UpdateMessage(ctx context.Context, id, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error

	SaveFile(ctx context.Context, messageID int64, document string) (models.File, error)
	GetFile(ctx context.Context, id int64) (models.File, error)
	ListFiles(ctx context.Context, limit, offset int) ([]models.File, int64, error)
	UpdateFile(ctx context.Context, id, messageID int64, document string) (models.File, error)
	DeleteFile(ctx context.Context, id int64) error
	FileKeysByMessage(ctx context.Context, messageID int64) ([]string, error)
	FileKeysByChat(ctx context.Context, chatID int64) ([]string, error)
	FileKeysByUser(ctx context.Context, userID int64) ([]string, error)
}

type Cache interface {
	SaveChat(ctx context.Context, chat models.Chat) error
	GetChat(ctx context.Context, id int64) (models.Chat, error)
	DeleteChat(ctx context.Context, id int64) error
}

type S3 interface {
	SaveDocument(ctx context.Context, key string, contentType string, data []byte) error
	DocumentURL(ctx context.Context, key string) (string, error)
	DeleteDocument(ctx context.Context, key string) error
}

type Service struct {
	storage Storage
	cache   Cache
	s3      S3
}

func New(storage Storage, cache Cache, s3 S3) *Service {
	return &Service{
		storage: storage,
		cache:   cache,
		s3:      s3,
	}
}

// deleteDocuments sweeps blobs left behind by a row cascade. Best
// effort: the rows are already gone, an orphaned blob is not worth
// failing the request over.
func (s *Service) deleteDocuments(ctx context.Context, keys []string) {
	for _, key := range keys {
		_ = s.s3.DeleteDocument(ctx, key)
	}
}
