package models

import "time"

// MessageStatus mirrors the status column on messages.
type MessageStatus int16

const (
	StatusViewed    MessageStatus = 1
	StatusNotViewed MessageStatus = 2
)

func (s MessageStatus) Valid() bool {
	return s == StatusViewed || s == StatusNotViewed
}

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Groups       []string   `json:"groups"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Chat struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatorID int64     `json:"creator"`
	Invited   []int64   `json:"invited"`
	IsClosed  bool      `json:"is_closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID        int64         `json:"id"`
	ChatID    int64         `json:"chat"`
	SenderID  int64         `json:"sender"`
	Text      string        `json:"text"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// File references a blob in the object store. Document is the object key,
// URL is a presigned link filled in by the service layer and never persisted.
type File struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message"`
	Document  string    `json:"document"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
