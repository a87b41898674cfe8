package di

import (
	"context"
	"log/slog"

	"vivimap/internal/config"
	memusecase "vivimap/internal/feature/memories/usecase"
	"vivimap/internal/platform/storage"
)

// NewUploadPresigner returns nil when object storage is not configured, which
// disables the upload endpoint.
func NewUploadPresigner(ctx context.Context, cfg config.StorageConfig) memusecase.UploadPresigner {
	opts := storage.Options{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		Bucket:    cfg.Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	}
	if !opts.Configured() {
		slog.Info("object storage not configured, uploads disabled")
		return nil
	}
	p, err := storage.NewS3Presigner(ctx, opts)
	if err != nil {
		slog.Warn("object storage unavailable, uploads disabled", "error", err)
		return nil
	}
	return p
}
