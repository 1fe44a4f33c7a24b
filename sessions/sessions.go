// Package sessions maps opaque bearer tokens to the profile acting on a request.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"minigram/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Store interface {
	Issue(ctx context.Context, profileID uint) (string, error)
	// Resolve returns the profile behind token, or types.ErrNotFound.
	Resolve(ctx context.Context, token string) (uint, error)
	Revoke(ctx context.Context, token string) error
}

type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

var _ Store = (*RedisStore)(nil)

func key(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisStore) Issue(ctx context.Context, profileID uint) (string, error) {
	token := uuid.NewString()

	err := s.Client.Set(ctx, key(token), strconv.FormatUint(uint64(profileID), 10), s.TTL).Err()
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: empty session token", types.ErrNotFound)
	}

	val, err := s.Client.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: session", types.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", val, err)
	}

	return uint(id), nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	return s.Client.Del(ctx, key(token)).Err()
}
