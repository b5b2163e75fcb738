package docstore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-gin-resource-api/internal/core/cache"
	"go-gin-resource-api/internal/domain"
)

// Cached is a read-through decorator: FindByID is served from redis and
// every write to a document invalidates its key. Query and Count always go to
// the wrapped store.
type Cached[T domain.Entity] struct {
	Store[T]
	cache      *cache.Cache
	collection string
	ttl        time.Duration
	log        *zap.Logger
}

func NewCached[T domain.Entity](inner Store[T], c *cache.Cache, collection string, ttl time.Duration, log *zap.Logger) *Cached[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached[T]{Store: inner, cache: c, collection: collection, ttl: ttl, log: log}
}

func (c *Cached[T]) key(id string) string { return c.cache.Key(c.collection, id) }

func (c *Cached[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	p, err := cache.GetOrLoadJSON(c.cache, ctx, c.key(id), c.ttl, func(ctx context.Context) (*T, error) {
		v, err := c.Store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return zero, err
	}
	if p == nil {
		return zero, ErrNotFound
	}
	return *p, nil
}

func (c *Cached[T]) CreateWithID(ctx context.Context, id string, data T) (T, error) {
	v, err := c.Store.CreateWithID(ctx, id, data)
	c.invalidate(ctx, id)
	return v, err
}

func (c *Cached[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	v, err := c.Store.Update(ctx, id, patch)
	c.invalidate(ctx, id)
	return v, err
}

func (c *Cached[T]) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := c.Store.Delete(ctx, id)
	c.invalidate(ctx, id)
	return ok, err
}

// invalidate 失败不回滚已完成的写入，只告警；旧值最多保留 ttl
func (c *Cached[T]) invalidate(ctx context.Context, id string) {
	key := c.key(id)
	if err := c.cache.Invalidate(context.WithoutCancel(ctx), key); err != nil {
		c.log.Warn("cache invalidate failed",
			zap.String("collection", c.collection),
			zap.String("key", key),
			zap.Duration("stale_for", c.ttl),
			zap.Error(err),
		)
	}
}
