package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rivermart/storefront-backend/internal/logger"
)

// Revalidator is the page-cache invalidation signal: after a cart mutation
// the rendering layer is told its cached cart-bearing views are stale.
// Fire-and-forget; a failed signal is logged and never fails the mutation.
type Revalidator interface {
	Revalidate(ctx context.Context, path string)
}

type redisRevalidator struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisRevalidator connects to the render cache's redis. It publishes the
// stale path on a channel for live subscribers and deletes the cached render
// key so the next navigation re-renders.
func NewRedisRevalidator(log *logger.Logger) (Revalidator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_REVALIDATE_CHANNEL"))
	if ch == "" {
		ch = "revalidate"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisRevalidator{
		log:     log.With("service", "RedisRevalidator"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (r *redisRevalidator) Revalidate(ctx context.Context, path string) {
	if err := r.rdb.Del(ctx, "page:render:"+path).Err(); err != nil {
		r.log.Warn("failed to drop cached render", "path", path, "error", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, path).Err(); err != nil {
		r.log.Warn("failed to publish revalidation", "path", path, "error", err)
	}
}

type noopRevalidator struct{}

// NewNoopRevalidator is used when no render cache is configured, and by tests.
func NewNoopRevalidator() Revalidator {
	return noopRevalidator{}
}

func (noopRevalidator) Revalidate(ctx context.Context, path string) {}
