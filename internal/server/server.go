package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ivankudrin/messenger/internal/models"
)

type Service interface {
	CreateUser(
		ctx context.Context,
		username string,
		password string,
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
		password string,
		email string,
		firstName string,
		lastName string,
		groups []string,
	) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateChat(ctx context.Context, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error)
	GetChat(ctx context.Context, id int64) (models.Chat, error)
	ListChats(ctx context.Context, limit, offset int) ([]models.Chat, int64, error)
	UpdateChat(ctx context.Context, id int64, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error)
	DeleteChat(ctx context.Context, id int64) error

	CreateMessage(ctx context.Context, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error)
	GetMessage(ctx context.Context, id int64) (models.Message, error)
	ListMessages(ctx context.Context, limit, offset int) ([]models.Message, int64, error)
	UpdateMessage(ctx context.Context, id, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error)
	DeleteMessage(ctx context.Context, id int64) error

	CreateFile(ctx context.Context, messageID int64, filename, contentType string, data []byte) (models.File, error)
	GetFile(ctx context.Context, id int64) (models.File, error)
	ListFiles(ctx context.Context, limit, offset int) ([]models.File, int64, error)
	UpdateFile(ctx context.Context, id, messageID int64, filename, contentType string, data []byte) (models.File, error)
	DeleteFile(ctx context.Context, id int64) error
}

// Check reports whether one health-check subsystem is alive.
type Check func(ctx context.Context) error

type Server struct {
	service Service
	checks  map[string]Check
}

func New(service Service, checks map[string]Check) *Server {
	return &Server{
		service: service,
		checks:  checks,
	}
}

func (s *Server) Register(r *gin.Engine) {
	api := r.Group("/api")

	users := api.Group("/users")
	users.GET("", s.listUsers)
	users.POST("", s.createUser)
	users.GET("/:id", s.getUser)
	users.PUT("/:id", s.updateUser)
	users.DELETE("/:id", s.deleteUser)

	chats := api.Group("/chats")
	chats.GET("", s.listChats)
	chats.POST("", s.createChat)
	chats.GET("/:id", s.getChat)
	chats.PUT("/:id", s.updateChat)
	chats.DELETE("/:id", s.deleteChat)

	messages := api.Group("/messages")
	messages.GET("", s.listMessages)
	messages.POST("", s.createMessage)
	messages.GET("/:id", s.getMessage)
	messages.PUT("/:id", s.updateMessage)
	messages.DELETE("/:id", s.deleteMessage)

	files := api.Group("/files")
	files.GET("", s.listFiles)
	files.POST("", s.createFile)
	files.GET("/:id", s.getFile)
	files.PUT("/:id", s.updateFile)
	files.DELETE("/:id", s.deleteFile)

	r.GET("/health_check", s.healthCheck)
}
