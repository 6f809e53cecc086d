package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ivankudrin/messenger/internal/models"
	"github.com/ivankudrin/messenger/internal/storage"
	"github.com/redis/go-redis/v9"
)

const chatKeyPrefix = "chat:"

type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis is a cache-aside store for chats, keyed chat:<id> with JSON
// values and a TTL.
type Redis struct {
	rdb        Client
	expiration time.Duration
}

func New(rdb Client, expiration time.Duration) *Redis {
	return &Redis{
		rdb:        rdb,
		expiration: expiration,
	}
}

func (r *Redis) SaveChat(ctx context.Context, chat models.Chat) error {
	const op = "storage.redis.SaveChat"

	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.rdb.Set(ctx, chatKey(chat.ID), data, r.expiration).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) GetChat(ctx context.Context, id int64) (models.Chat, error) {
	const op = "storage.redis.GetChat"

	data, err := r.rdb.Get(ctx, chatKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Chat{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Chat{}, fmt.Errorf("%s: %w", op, err)
	}

	var chat models.Chat
	if err = json.Unmarshal(data, &chat); err != nil {
		return models.Chat{}, fmt.Errorf("%s: %w", op, err)
	}

	return chat, nil
}

func (r *Redis) DeleteChat(ctx context.Context, id int64) error {
	const op = "storage.redis.DeleteChat"

	err := r.rdb.Del(ctx, chatKey(id)).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func chatKey(id int64) string {
	return chatKeyPrefix + strconv.FormatInt(id, 10)
}
