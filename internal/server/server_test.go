package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/ivankudrin/messenger/internal/models"
	"github.com/ivankudrin/messenger/internal/service"
	"github.com/ivankudrin/messenger/internal/storage"
)

// stubService is an in-memory Service with the same error contract as
// the real one, cascade deletes included.
type stubService struct {
	users    map[int64]models.User
	chats    map[int64]models.Chat
	messages map[int64]models.Message
	files    map[int64]models.File
	nextID   int64
}

func newStubService() *stubService {
	return &stubService{
		users:    make(map[int64]models.User),
		chats:    make(map[int64]models.Chat),
		messages: make(map[int64]models.Message),
		files:    make(map[int64]models.File),
	}
}

func (s *stubService) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubService) CreateUser(_ context.Context, username, _, email, firstName, lastName string, groups []string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	u := models.User{ID: s.id(), Username: username, Email: email, FirstName: firstName, LastName: lastName, Groups: groups}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubService) GetUser(_ context.Context, id int64) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *stubService) ListUsers(_ context.Context, limit, offset int) ([]models.User, int64, error) {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var page []models.User
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		page = append(page, s.users[ids[i]])
	}
	return page, int64(len(ids)), nil
}

func (s *stubService) UpdateUser(_ context.Context, id int64, username, _, email, firstName, lastName string, groups []string) (models.User, error) {
	if _, ok := s.users[id]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	u := models.User{ID: id, Username: username, Email: email, FirstName: firstName, LastName: lastName, Groups: groups}
	s.users[id] = u
	return u, nil
}

func (s *stubService) DeleteUser(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	for chatID, chat := range s.chats {
		if chat.CreatorID == id {
			s.cascadeChat(chatID)
		}
	}
	return nil
}

func (s *stubService) CreateChat(_ context.Context, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error) {
	if utf8.RuneCountInString(title) > 50 {
		return models.Chat{}, service.ErrTitleTooLong
	}
	for _, c := range s.chats {
		if c.Title == title {
			return models.Chat{}, storage.ErrAlreadyExists
		}
	}
	for _, id := range invited {
		if _, ok := s.users[id]; !ok {
			return models.Chat{}, storage.ErrReferenceNotFound
		}
	}
	c := models.Chat{ID: s.id(), Title: title, CreatorID: creatorID, Invited: invited, IsClosed: isClosed}
	s.chats[c.ID] = c
	return c, nil
}

func (s *stubService) GetChat(_ context.Context, id int64) (models.Chat, error) {
	c, ok := s.chats[id]
	if !ok {
		return models.Chat{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *stubService) ListChats(_ context.Context, limit, offset int) ([]models.Chat, int64, error) {
	ids := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var page []models.Chat
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		page = append(page, s.chats[ids[i]])
	}
	return page, int64(len(ids)), nil
}

func (s *stubService) UpdateChat(_ context.Context, id int64, title string, creatorID int64, invited []int64, isClosed bool) (models.Chat, error) {
	if utf8.RuneCountInString(title) > 50 {
		return models.Chat{}, service.ErrTitleTooLong
	}
	if _, ok := s.chats[id]; !ok {
		return models.Chat{}, storage.ErrNotFound
	}
	c := models.Chat{ID: id, Title: title, CreatorID: creatorID, Invited: invited, IsClosed: isClosed}
	s.chats[id] = c
	return c, nil
}

func (s *stubService) DeleteChat(_ context.Context, id int64) error {
	if _, ok := s.chats[id]; !ok {
		return storage.ErrNotFound
	}
	s.cascadeChat(id)
	return nil
}

func (s *stubService) cascadeChat(id int64) {
	delete(s.chats, id)
	for msgID, msg := range s.messages {
		if msg.ChatID == id {
			delete(s.messages, msgID)
			for fileID, file := range s.files {
				if file.MessageID == msgID {
					delete(s.files, fileID)
				}
			}
		}
	}
}

func (s *stubService) CreateMessage(_ context.Context, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error) {
	if _, ok := s.chats[chatID]; !ok {
		return models.Message{}, storage.ErrReferenceNotFound
	}
	if status == 0 {
		status = models.StatusNotViewed
	}
	if !status.Valid() {
		return models.Message{}, service.ErrInvalidStatus
	}
	m := models.Message{ID: s.id(), ChatID: chatID, SenderID: senderID, Text: text, Status: status}
	s.messages[m.ID] = m
	return m, nil
}

func (s *stubService) GetMessage(_ context.Context, id int64) (models.Message, error) {
	m, ok := s.messages[id]
	if !ok {
		return models.Message{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *stubService) ListMessages(_ context.Context, limit, offset int) ([]models.Message, int64, error) {
	ids := make([]int64, 0, len(s.messages))
	for id := range s.messages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var page []models.Message
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		page = append(page, s.messages[ids[i]])
	}
	return page, int64(len(ids)), nil
}

func (s *stubService) UpdateMessage(_ context.Context, id, chatID, senderID int64, text string, status models.MessageStatus) (models.Message, error) {
	if _, ok := s.messages[id]; !ok {
		return models.Message{}, storage.ErrNotFound
	}
	if !status.Valid() {
		return models.Message{}, service.ErrInvalidStatus
	}
	m := models.Message{ID: id, ChatID: chatID, SenderID: senderID, Text: text, Status: status}
	s.messages[id] = m
	return m, nil
}

func (s *stubService) DeleteMessage(_ context.Context, id int64) error {
	if _, ok := s.messages[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *stubService) CreateFile(_ context.Context, messageID int64, filename, _ string, _ []byte) (models.File, error) {
	if _, ok := s.messages[messageID]; !ok {
		return models.File{}, storage.ErrReferenceNotFound
	}
	file := models.File{ID: s.id(), MessageID: messageID, Document: "file/" + filename, URL: "http://localhost:9000/file/" + filename}
	s.files[file.ID] = file
	return file, nil
}

func (s *stubService) GetFile(_ context.Context, id int64) (models.File, error) {
	file, ok := s.files[id]
	if !ok {
		return models.File{}, storage.ErrNotFound
	}
	return file, nil
}

func (s *stubService) ListFiles(_ context.Context, limit, offset int) ([]models.File, int64, error) {
	ids := make([]int64, 0, len(s.files))
	for id := range s.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var page []models.File
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		page = append(page, s.files[ids[i]])
	}
	return page, int64(len(ids)), nil
}

func (s *stubService) UpdateFile(_ context.Context, id, messageID int64, filename, _ string, _ []byte) (models.File, error) {
	if _, ok := s.files[id]; !ok {
		return models.File{}, storage.ErrNotFound
	}
	file := models.File{ID: id, MessageID: messageID, Document: "file/" + filename}
	s.files[id] = file
	return file, nil
}

func (s *stubService) DeleteFile(_ context.Context, id int64) error {
	if _, ok := s.files[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.files, id)
	return nil
}

func newTestServer(checks map[string]Check) (*gin.Engine, *stubService) {
	gin.SetMode(gin.TestMode)

	svc := newStubService()
	r := gin.New()
	New(svc, checks).Register(r)

	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}

	return v
}

func TestServer_UserCRUD(t *testing.T) {
	r, _ := newTestServer(nil)

	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{"username": "alice", "password": "pw"})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/users status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	alice := decode[models.User](t, w)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/users/:id status = %d, want %d", w.Code, http.StatusOK)
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%d", alice.ID), gin.H{"username": "alice", "password": "pw", "first_name": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /api/users/:id status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if got := decode[models.User](t, w); got.FirstName != "Alice" {
		t.Errorf("PUT /api/users/:id first_name = %q, want %q", got.FirstName, "Alice")
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/users/%d", alice.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /api/users/:id status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET deleted user status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	r, svc := newTestServer(nil)

	if _, err := svc.CreateUser(context.Background(), "alice", "pw", "", "", "", nil); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{
			name:   "duplicate username",
			method: http.MethodPost,
			path:   "/api/users",
			body:   gin.H{"username": "alice", "password": "pw"},
			want:   http.StatusConflict,
		},
		{
			name:   "missing required field",
			method: http.MethodPost,
			path:   "/api/users",
			body:   gin.H{"username": "bob"},
			want:   http.StatusBadRequest,
		},
		{
			name:   "title too long",
			method: http.MethodPost,
			path:   "/api/chats",
			body:   gin.H{"title": strings.Repeat("a", 51), "creator": 1},
			want:   http.StatusBadRequest,
		},
		{
			name:   "unknown invited user",
			method: http.MethodPost,
			path:   "/api/chats",
			body:   gin.H{"title": "room1", "creator": 1, "invited": []int64{999}},
			want:   http.StatusBadRequest,
		},
		{
			name:   "message into unknown chat",
			method: http.MethodPost,
			path:   "/api/messages",
			body:   gin.H{"chat": 999, "sender": 1, "text": "hi"},
			want:   http.StatusBadRequest,
		},
		{
			name:   "unknown chat id",
			method: http.MethodGet,
			path:   "/api/chats/999",
			body:   nil,
			want:   http.StatusNotFound,
		},
		{
			name:   "malformed id",
			method: http.MethodGet,
			path:   "/api/chats/abc",
			body:   nil,
			want:   http.StatusBadRequest,
		},
		{
			name:   "invalid page",
			method: http.MethodGet,
			path:   "/api/users?page=zero",
			body:   nil,
			want:   http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestServer_Pagination(t *testing.T) {
	r, svc := newTestServer(nil)

	for i := range 25 {
		if _, err := svc.CreateUser(context.Background(), fmt.Sprintf("user%d", i), "pw", "", "", "", nil); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}

	type page struct {
		Count    int64         `json:"count"`
		Next     *string       `json:"next"`
		Previous *string       `json:"previous"`
		Results  []models.User `json:"results"`
	}

	w := doJSON(t, r, http.MethodGet, "/api/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/users status = %d, want %d", w.Code, http.StatusOK)
	}
	first := decode[page](t, w)
	if first.Count != 25 || len(first.Results) != 10 {
		t.Errorf("first page count = %d, results = %d, want 25 and 10", first.Count, len(first.Results))
	}
	if first.Next == nil || !strings.HasSuffix(*first.Next, "/api/users?page=2") {
		t.Errorf("first page next = %v, want .../api/users?page=2", first.Next)
	}
	if first.Previous != nil {
		t.Errorf("first page previous = %v, want nil", *first.Previous)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users?page=2", nil)
	second := decode[page](t, w)
	if len(second.Results) != 10 {
		t.Errorf("second page results = %d, want 10", len(second.Results))
	}
	if second.Previous == nil || !strings.HasSuffix(*second.Previous, "/api/users") {
		t.Errorf("second page previous = %v, want .../api/users", second.Previous)
	}
	if second.Next == nil || !strings.HasSuffix(*second.Next, "/api/users?page=3") {
		t.Errorf("second page next = %v, want .../api/users?page=3", second.Next)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users?page=3", nil)
	third := decode[page](t, w)
	if len(third.Results) != 5 {
		t.Errorf("third page results = %d, want 5", len(third.Results))
	}
	if third.Next != nil {
		t.Errorf("third page next = %v, want nil", *third.Next)
	}
}

func TestServer_FileUpload(t *testing.T) {
	r, svc := newTestServer(nil)

	ctx := context.Background()
	chat, err := svc.CreateChat(ctx, "room1", 1, nil, false)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	msg, err := svc.CreateMessage(ctx, chat.ID, 1, "hi", 0)
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err = mw.WriteField("message", fmt.Sprintf("%d", msg.ID)); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	fw, err := mw.CreateFormFile("document", "pic.png")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err = fw.Write([]byte("png bytes")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/files status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	file := decode[models.File](t, w)
	if file.MessageID != msg.ID {
		t.Errorf("file message = %d, want %d", file.MessageID, msg.ID)
	}
	if file.URL == "" {
		t.Error("file url is empty")
	}
}

func TestServer_ChatLifecycle(t *testing.T) {
	r, _ := newTestServer(nil)

	w := doJSON(t, r, http.MethodPost, "/api/users", gin.H{"username": "alice", "password": "pw"})
	alice := decode[models.User](t, w)
	w = doJSON(t, r, http.MethodPost, "/api/users", gin.H{"username": "bob", "password": "pw"})
	bob := decode[models.User](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/chats", gin.H{
		"title":   "room1",
		"creator": alice.ID,
		"invited": []int64{bob.ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/chats status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	chat := decode[models.Chat](t, w)

	w = doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"chat":   chat.ID,
		"sender": bob.ID,
		"text":   "hello",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/messages status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	msg := decode[models.Message](t, w)
	if msg.Status != models.StatusNotViewed {
		t.Errorf("message status = %d, want %d", msg.Status, models.StatusNotViewed)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/chats/%d", chat.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /api/chats/:id status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/messages/%d", msg.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET message after chat delete status = %d, want %d", w.Code, http.StatusNotFound)
	}

	type page struct {
		Count int64 `json:"count"`
	}
	w = doJSON(t, r, http.MethodGet, "/api/messages", nil)
	if got := decode[page](t, w); got.Count != 0 {
		t.Errorf("message count after chat delete = %d, want 0", got.Count)
	}
}

func TestServer_HealthCheck(t *testing.T) {
	working := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantCache  string
	}{
		{
			name: "all working",
			checks: map[string]Check{
				"database": working,
				"cache":    working,
			},
			wantStatus: http.StatusOK,
			wantCache:  "working",
		},
		{
			name: "cache down",
			checks: map[string]Check{
				"database": working,
				"cache":    broken,
			},
			wantStatus: http.StatusInternalServerError,
			wantCache:  "connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestServer(tt.checks)

			w := doJSON(t, r, http.MethodGet, "/health_check", nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("GET /health_check status = %d, want %d", w.Code, tt.wantStatus)
			}

			report := decode[map[string]string](t, w)
			if report["cache"] != tt.wantCache {
				t.Errorf("cache = %q, want %q", report["cache"], tt.wantCache)
			}
		})
	}
}
