// Package remote implements the remote cache backend over Redis: a
// Backend wrapping github.com/redis/go-redis/v9 that stores values under
// the cache keys as given (no extra prefix), with SADD/SREM tracking sets.
//
// This backend never scans: pattern deletes without an extractable
// calendar id are no-ops. Every write sequence (value + tracking set) is
// non-atomic; a tracking set may reference a since-deleted value, or a
// value may briefly be missing from its tracking set. Both are harmless:
// DEL and SREM on an absent key are no-ops, and a stray untracked entry
// still expires on its own TTL.
package remote

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"calendar-backend/internal/cache"
)

// Backend is the Cache implementation backed by a Redis (or Redis-protocol
// compatible) client. Outbound calls are wrapped in a circuit breaker so a
// degraded remote cache fails fast instead of queueing latency onto every
// request, the same circuit-breaker decorator pattern applied to the
// persistence layer in internal/storage/dynamostore.
type Backend struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// New wraps client in a Backend. breakerName distinguishes this breaker's
// metrics from the storage-layer breaker when both are registered.
func New(client *redis.Client, breakerName string, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || err == redis.Nil
		},
	})
	return &Backend{client: client, cb: cb, logger: logger}
}

var _ cache.Cache = (*Backend)(nil)

func (b *Backend) do(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	v, err := b.cb.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, cache.ErrUnavailable
		}
		return nil, err
	}
	return v, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.do(ctx, func() (interface{}, error) {
		return b.client.Get(ctx, key).Bytes()
	})
	if err == cache.ErrUnavailable {
		return nil, false, err
	}
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		b.logger.Warn("remote cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false, cache.ErrUnavailable
	}
	return v.([]byte), true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.do(ctx, func() (interface{}, error) {
		return nil, b.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		b.logger.Warn("remote cache set failed", zap.String("key", key), zap.Error(err))
		return cache.ErrUnavailable
	}
	if cid, ok := cache.ExtractCalendarIDFromKey(key); ok && cache.IsCalendarEntryKey(key) {
		if _, err := b.do(ctx, func() (interface{}, error) {
			return nil, b.client.SAdd(ctx, cache.TrackingSetKey(cid), key).Err()
		}); err != nil {
			b.logger.Warn("remote cache tracking set add failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	switch cache.Classify(key) {
	case cache.ClassCalendarMetadata:
		cid, _ := cache.ExtractCalendarIDFromKey(key)
		members, err := b.client.SMembers(ctx, cache.TrackingSetKey(cid)).Result()
		if err != nil && err != redis.Nil {
			b.logger.Warn("remote cache tracking set read failed", zap.String("key", key), zap.Error(err))
		}
		for _, m := range members {
			b.deletePlain(ctx, m)
		}
		b.deletePlain(ctx, cache.TrackingSetKey(cid))
		b.deletePlain(ctx, key)
	case cache.ClassCalendarEntryRange:
		cid, _ := cache.ExtractCalendarIDFromKey(key)
		b.deletePlain(ctx, key)
		if err := b.client.SRem(ctx, cache.TrackingSetKey(cid), key).Err(); err != nil && err != redis.Nil {
			b.logger.Warn("remote cache tracking set remove failed", zap.String("key", key), zap.Error(err))
		}
	default:
		b.deletePlain(ctx, key)
	}
	return nil
}

func (b *Backend) deletePlain(ctx context.Context, key string) {
	if _, err := b.do(ctx, func() (interface{}, error) {
		return nil, b.client.Del(ctx, key).Err()
	}); err != nil {
		b.logger.Warn("remote cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// DeletePattern is a no-op unless the glob carries an extractable calendar
// id, in which case it purges exactly that calendar's tracked range keys.
// This backend never scans the keyspace.
func (b *Backend) DeletePattern(ctx context.Context, pattern string) error {
	cid, ok := cache.ExtractCalendarIDFromPattern(pattern)
	if !ok {
		b.logger.Debug("remote cache pattern delete with no extractable calendar id: no-op", zap.String("pattern", pattern))
		return nil
	}
	members, err := b.client.SMembers(ctx, cache.TrackingSetKey(cid)).Result()
	if err != nil && err != redis.Nil {
		b.logger.Warn("remote cache tracking set read failed", zap.String("pattern", pattern), zap.Error(err))
		return cache.ErrUnavailable
	}
	for _, m := range members {
		if cache.MatchGlob(m, pattern) {
			b.deletePlain(ctx, m)
			if err := b.client.SRem(ctx, cache.TrackingSetKey(cid), m).Err(); err != nil && err != redis.Nil {
				b.logger.Warn("remote cache tracking set remove failed", zap.String("key", m), zap.Error(err))
			}
		}
	}
	return nil
}
