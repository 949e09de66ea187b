package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"gatepass/internal/platform/redis"
	"gatepass/pkg/platform/sentinel"
)

const settingsKey = "gatepass:kiosk:settings"

// RedisStore keeps kiosk settings in Redis so every instance sees operator
// changes without a redeploy.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (Settings, error) {
	raw, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Settings{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load kiosk settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return Settings{}, fmt.Errorf("decode kiosk settings: %w", err)
	}
	return settings, nil
}

func (s *RedisStore) Save(ctx context.Context, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode kiosk settings: %w", err)
	}
	if err := s.client.Set(ctx, settingsKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save kiosk settings: %w", err)
	}
	return nil
}
