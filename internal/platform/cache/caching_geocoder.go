package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"vivimap/internal/feature/search/domain/entity"
	"vivimap/internal/feature/search/usecase"
)

// DefaultGeocoderTTL keeps geocoding results for a day.
const DefaultGeocoderTTL = 24 * time.Hour

// CachingGeocoder decorates a Geocoder with Redis caching keyed by query.
// Failures are never cached.
type CachingGeocoder struct {
	inner usecase.Geocoder
	store *JSONStore
}

var _ usecase.Geocoder = (*CachingGeocoder)(nil)

func NewCachingGeocoder(rdb *redis.Client, ttl time.Duration, inner usecase.Geocoder) *CachingGeocoder {
	if ttl <= 0 {
		ttl = DefaultGeocoderTTL
	}
	return &CachingGeocoder{inner: inner, store: NewJSONStore(rdb, ttl, "search")}
}

func (c *CachingGeocoder) Search(ctx context.Context, query string) ([]entity.Place, error) {
	key := c.store.Key(query)

	var out []entity.Place
	if c.store.Load(ctx, key, &out) {
		return out, nil
	}

	out, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store.Save(ctx, key, out)
	return out, nil
}
