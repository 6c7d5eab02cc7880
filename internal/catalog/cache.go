package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/optbazar/optbazar/internal/platform/cache"
)

// sharedLoadTimeout bounds a load shared by concurrent callers.
const sharedLoadTimeout = 10 * time.Second

// listCache memoises List results in Redis. Cache faults degrade to a direct
// repository read.
type listCache struct {
	store  *cache.Versioned
	group  singleflight.Group
	logger *slog.Logger
}

func newListCache(store *cache.Versioned, logger *slog.Logger) *listCache {
	return &listCache{store: store, logger: logger}
}

func (c *listCache) list(ctx context.Context, filter Filter, load func(context.Context) ([]Product, error)) ([]Product, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}
	key, err := c.store.BuildKey(ctx, "list", string(filter.Category), strings.ToLower(strings.TrimSpace(filter.Search)))
	if err != nil {
		c.warn("catalog cache key", err)
		return load(ctx)
	}

	resultCh := c.group.DoChan(key, func() (any, error) {
		// Waiters share this load, so it must outlive the caller that started it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		var (
			products []Product
			loadErr  error
		)
		err := c.store.FetchJSON(ctx, key, &products, func(ctx context.Context) (any, error) {
			items, err := load(ctx)
			loadErr = err
			return items, err
		})
		if loadErr != nil {
			return nil, loadErr
		}
		if err != nil {
			c.warn("catalog cache fetch", err)
			return load(ctx)
		}
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		products := res.Val.([]Product)
		out := make([]Product, len(products))
		copy(out, products)
		return out, nil
	}
}

func (c *listCache) invalidate(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Bump(ctx); err != nil {
		c.warn("catalog cache bump", err)
	}
}

func (c *listCache) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, slog.Any("error", err))
	}
}
