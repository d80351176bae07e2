package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

// ErrLocked is returned when a key lock is already held.
var ErrLocked = errors.New("resource locked")

// redisStore stores JSON documents under a key prefix.
type redisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func newRedisStore(client *redis.Client, prefix string, logger *zap.Logger) redisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return redisStore{client: client, prefix: prefix, logger: logger}
}

func (s redisStore) key(id string) string {
	return s.prefix + id
}

func (s redisStore) get(ctx context.Context, id string, dest interface{}) error {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrNotFound
		}
		return fmt.Errorf("redis get %s: %w", s.key(id), err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", s.key(id), err)
	}
	return nil
}

func (s redisStore) set(ctx context.Context, id string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.key(id), err)
	}
	if err := s.client.Set(ctx, s.key(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(id), err)
	}
	return nil
}

// update rewrites an existing document and keeps its remaining TTL.
func (s redisStore) update(ctx context.Context, id string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.key(id), err)
	}
	err = s.client.SetArgs(ctx, s.key(id), payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis update %s: %w", s.key(id), err)
	}
	return nil
}

func (s redisStore) del(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", s.key(id), err)
	}
	return nil
}

// lock takes a short-lived exclusive lock on id. The returned func releases it.
func (s redisStore) lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	lockKey := s.key(id) + ":lock"
	ok, err := s.client.SetNX(ctx, lockKey, "1", ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", lockKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := s.client.Del(context.Background(), lockKey).Err(); err != nil {
			s.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}
