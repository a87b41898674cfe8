package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"vivimap/internal/config"
	searchusecase "vivimap/internal/feature/search/usecase"
	"vivimap/internal/platform/cache"
	"vivimap/internal/platform/externalapi/nominatim"
	infrahttp "vivimap/internal/platform/http"
	"vivimap/internal/shared/ratelimiter"
)

// NewGeocoder creates a Nominatim client limited to one request per second,
// cached in Redis when available.
func NewGeocoder(cfg *config.Config, rdb *redis.Client) searchusecase.Geocoder {
	ncfg := nominatim.Config{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.GeocoderTimeout(),
	}
	client := nominatim.NewClient(ncfg, infrahttp.NewHTTPClient(ncfg.Timeout), ratelimiter.NewThrottle(1, time.Second))
	return cache.NewCachingGeocoder(rdb, cache.DefaultGeocoderTTL, client)
}
