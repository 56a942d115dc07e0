package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "leadflow:intake:idem:"

	// pendingMarker holds a reserved key until the request completes. A
	// reservation expires after pendingTTL so a crashed request does not pin
	// the key for the full replay window.
	pendingMarker = "\x00pending"
	pendingTTL    = 5 * time.Minute
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect initializes a Redis client from a redis:// URL or host:port and
// pings it.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Begin(ctx context.Context, key string) ([]byte, bool, error) {
	k := keyPrefix + storageKey(key)
	ok, err := r.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("idempotency: reserve: %w", err)
	}
	if ok {
		return nil, false, nil
	}

	raw, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released between SETNX and GET; try once more.
		ok, err = r.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return nil, false, fmt.Errorf("idempotency: reserve: %w", err)
		}
		if ok {
			return nil, false, nil
		}
		return nil, false, ErrInProgress
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency: lookup: %w", err)
	}
	if string(raw) == pendingMarker {
		return nil, false, ErrInProgress
	}
	return raw, true, nil
}

func (r *Redis) Complete(ctx context.Context, key string, result []byte) error {
	if err := r.client.Set(ctx, keyPrefix+storageKey(key), result, r.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: complete: %w", err)
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+storageKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}
