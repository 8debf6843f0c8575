package transcript

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "history:"

// RedisStore keeps each transcript as one JSON value under
// history:<NormalizedCode>. No TTL: tutoring history only goes away through
// an explicit clear.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(langCode string) string {
	return redisKeyPrefix + NormalizeCode(langCode)
}

func (s *RedisStore) Load(ctx context.Context, langCode string) (Transcript, error) {
	val, err := s.client.Get(ctx, s.key(langCode)).Result()
	if err == redis.Nil {
		return Transcript{}, nil
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("load history for %q: %w", langCode, err)
	}

	var t Transcript
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return Transcript{}, nil
	}
	return t, nil
}

func (s *RedisStore) Save(ctx context.Context, langCode string, t Transcript) error {
	if t == nil {
		t = Transcript{}
	}
	val, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal history for %q: %w", langCode, err)
	}
	if err := s.client.Set(ctx, s.key(langCode), val, 0).Err(); err != nil {
		return fmt.Errorf("save history for %q: %w", langCode, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, langCode string) error {
	if err := s.client.Del(ctx, s.key(langCode)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("clear history for %q: %w", langCode, err)
	}
	return nil
}
