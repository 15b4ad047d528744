package redisstore

// Package redisstore implements DurableStore on Redis so todo
// collections survive client restarts and can be shared across hosts.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/target/todo-sync/internal/errors"
)

// Store is a Redis-backed durable store.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// NewStore creates a Redis-backed store with the default key prefix.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client, prefix: "todo-sync:"}
}

// NewStoreWithPrefix creates a Redis-backed store with a custom key prefix.
func NewStoreWithPrefix(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", apperrors.Validation("storage key must not be empty")
	}

	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFoundf("no value for key %q", key)
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnavailable, fmt.Sprintf("redis get %q", key))
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return apperrors.Validation("storage key must not be empty")
	}

	// Values persist until overwritten; there is no TTL on todo data.
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, fmt.Sprintf("redis set %q", key))
	}
	return nil
}
