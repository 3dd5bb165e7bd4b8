// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package storage provides a Redis-backed result cache shared between
// processes.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

const (
	defaultPrefix    = "availability:"
	defaultOpTimeout = 2 * time.Second
	scanBatch        = 100
)

// RedisCache implements [availability.Cache] on Redis. Values are stored
// as JSON under a key prefix and expire after the configured TTL.
//
// Redis failures are logged and treated as cache misses so a down cache
// never fails a check.
type RedisCache struct {
	Client *redis.Client

	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
	logger    *zap.Logger
}

var _ availability.Cache = (*RedisCache)(nil)

// Dial creates a Redis client for addr.
func Dial(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisCache wraps client. An empty prefix uses "availability:" and a
// nil logger discards everything.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		Client:    client,
		prefix:    prefix,
		ttl:       ttl,
		opTimeout: defaultOpTimeout,
		logger:    logger,
	}
}

// Get returns the cached result stored under key.
func (s *RedisCache) Get(key string) (availability.DomainResult, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	val, err := s.Client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis cache get failed", zap.String("key", key), zap.Error(err))
		}
		return availability.DomainResult{}, false
	}

	var r availability.DomainResult
	if err := json.Unmarshal(val, &r); err != nil {
		s.logger.Warn("redis cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return availability.DomainResult{}, false
	}
	return r, true
}

// Set stores val under key with the cache TTL.
func (s *RedisCache) Set(key string, val availability.DomainResult) {
	b, err := json.Marshal(val)
	if err != nil {
		s.logger.Warn("redis cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.Client.Set(ctx, s.prefix+key, b, s.ttl).Err(); err != nil {
		s.logger.Warn("redis cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Flush deletes every key under the cache prefix. Other keys in the same
// database are left alone.
func (s *RedisCache) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.flush(ctx); err != nil {
		s.logger.Warn("redis cache flush failed", zap.Error(err))
	}
}

func (s *RedisCache) flush(ctx context.Context) error {
	var keys []string
	iter := s.Client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	// Delete after the scan completes so the cursor sees a stable keyspace.
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := s.Client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisCache) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisCache) Close() error {
	return s.Client.Close()
}
