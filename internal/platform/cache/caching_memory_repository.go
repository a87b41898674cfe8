// Package cache provides Redis read-through decorators and a small JSON store.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vivimap/internal/feature/memories/domain/entity"
	"vivimap/internal/feature/memories/usecase"
	"vivimap/internal/shared/geo"
)

// CachingMemoryRepository decorates a MemoryRepository with a cached List.
// Positions always reads the inner repository so the placement rule sees
// every committed memory.
type CachingMemoryRepository struct {
	inner usecase.MemoryRepository
	store *JSONStore

	// gen counts creates; a List read that straddles a create is not saved.
	mu  sync.Mutex
	gen uint64
}

var _ usecase.MemoryRepository = (*CachingMemoryRepository)(nil)

// NewCachingMemoryRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "memories".
func NewCachingMemoryRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MemoryRepository, namespace string) *CachingMemoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "memories"
	}
	return &CachingMemoryRepository{
		inner: inner,
		store: NewJSONStore(rdb, ttl, namespace),
	}
}

func (c *CachingMemoryRepository) List(ctx context.Context) ([]entity.Memory, error) {
	if !c.store.Enabled() {
		return c.inner.List(ctx)
	}

	key := c.store.Key("list")
	var out []entity.Memory
	if c.store.Load(ctx, key, &out) {
		return out, nil
	}

	gen := c.generation()
	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return out, nil
	}
	c.store.Save(ctx, key, out)
	return out, nil
}

func (c *CachingMemoryRepository) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *CachingMemoryRepository) Positions(ctx context.Context) ([]geo.Point, error) {
	return c.inner.Positions(ctx)
}

// Create inserts m and invalidates every cached list.
func (c *CachingMemoryRepository) Create(ctx context.Context, m *entity.Memory) error {
	if err := c.inner.Create(ctx, m); err != nil {
		return err
	}
	if !c.store.Enabled() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err := c.store.DeleteByPattern(ctx, c.store.Key("")+"*"); err != nil {
		slog.Warn("memory cache invalidation failed", "error", err)
	}
	return nil
}
