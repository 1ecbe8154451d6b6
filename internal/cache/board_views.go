// Package cache keeps rendered board payloads in redis, keyed by slug, so
// read-heavy board pages skip the aggregation query. Mutations invalidate the
// affected slugs; the cache is best effort and never fails a request.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "board:view:"

// BoardViews is the slug-keyed rendered board cache.
type BoardViews struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewBoardViews(client *redis.Client, ttl time.Duration, logger *zap.Logger) *BoardViews {
	return &BoardViews{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload for a slug, or false on miss or redis error.
func (c *BoardViews) Get(ctx context.Context, slug string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+slug).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("board view cache read failed",
				zap.String("slug", slug),
				zap.Error(err),
			)
		}
		return nil, false
	}
	return payload, true
}

func (c *BoardViews) Set(ctx context.Context, slug string, payload []byte) {
	if err := c.client.Set(ctx, keyPrefix+slug, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("board view cache write failed",
			zap.String("slug", slug),
			zap.Error(err),
		)
	}
}

// Invalidate drops the cached views for the given slugs. Called after every
// successful mutation, with both old and new slug on a rename.
func (c *BoardViews) Invalidate(ctx context.Context, slugs ...string) {
	if len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		keys = append(keys, keyPrefix+slug)
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("board view cache invalidation failed",
			zap.Strings("slugs", slugs),
			zap.Error(err),
		)
	}
}
