// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const visitPrefix = "shopassist:visit:"

// RedisStore shares markers between machines. Keys expire after ttl so a
// long-absent visitor is greeted again.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// OpenRedisStore connects to redisURL (redis://host:port/db) and pings it.
func OpenRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) MarkVisited(ctx context.Context, profile string) (bool, error) {
	first, err := s.rdb.SetNX(ctx, visitPrefix+profile, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("record visit: %w", err)
	}
	return first, nil
}

func (s *RedisStore) Forget(ctx context.Context, profile string) error {
	if err := s.rdb.Del(ctx, visitPrefix+profile).Err(); err != nil {
		return fmt.Errorf("forget visit: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
