package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/mealmate/backend/internal/types"
)

// RedisStateStore keeps tracker state in Redis as JSON.
type RedisStateStore struct {
	redis     *redis.Client
	keyPrefix string
}

// NewRedisStateStore creates a store writing under keyPrefix.
func NewRedisStateStore(redisClient *redis.Client, keyPrefix string) *RedisStateStore {
	if keyPrefix == "" {
		keyPrefix = "quota:state"
	}
	return &RedisStateStore{
		redis:     redisClient,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStateStore) key(scope string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, scope)
}

// Load reads the state for scope.
func (s *RedisStateStore) Load(ctx context.Context, scope string) (*types.QuotaState, error) {
	data, err := s.redis.Get(ctx, s.key(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Nothing persisted yet
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quota state from Redis: %w", err)
	}

	var state types.QuotaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quota state: %w", err)
	}
	return &state, nil
}

// Save overwrites the state for scope. Records never expire.
func (s *RedisStateStore) Save(ctx context.Context, scope string, state types.QuotaState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal quota state: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(scope), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save quota state to Redis: %w", err)
	}
	return nil
}

// Delete drops the state for scope.
func (s *RedisStateStore) Delete(ctx context.Context, scope string) error {
	return s.redis.Del(ctx, s.key(scope)).Err()
}
