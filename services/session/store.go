package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"voyago/models"
)

const keyPrefix = "conv:"

// ErrNotFound marks a conversation id with no stored state, either never
// created or aged out by the TTL.
var ErrNotFound = errors.New("conversation not found")

// RedisStore keeps each conversation as one JSON value under a prefixed key.
// Every save refreshes the TTL, so a conversation only expires after the user
// stayed silent for the whole window.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisStore wires a store over an existing Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.ConversationState, error) {
	data, err := s.Client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *models.ConversationState) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", state.ID, err)
	}
	if err := s.Client.Set(ctx, keyPrefix+state.ID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", state.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}
