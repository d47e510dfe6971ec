package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot stores the document as a plain string value under key
func NewRedisSlot(client *redis.Client, key string) Slot {
	return &redisSlot{client: client, key: key}
}

func (s *redisSlot) Name() string {
	return "redis:" + s.key
}

func (s *redisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.key, err)
	}
	return data, nil
}

func (s *redisSlot) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", s.key, err)
	}
	return nil
}
