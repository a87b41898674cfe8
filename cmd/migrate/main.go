// Command migrate applies the schema and purges expired verification codes.
// It is meant to run as a one-shot job before or alongside the server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"vivimap/internal/config"
	authadapters "vivimap/internal/feature/auth/adapters"
	authentity "vivimap/internal/feature/auth/domain/entity"
	memadapters "vivimap/internal/feature/memories/adapters"
	infradb "vivimap/internal/platform/db"
	"vivimap/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}))

	db, err := infradb.Open(infradb.Options{
		URL:            cfg.Database.URL,
		ConnectTimeout: cfg.ConnectTimeout(),
		Models:         []any{&authentity.User{}, &authadapters.VerificationCodeModel{}, &memadapters.MemoryModel{}},
	})
	if err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = infradb.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := authadapters.NewVerificationCodeGorm(db).PurgeExpired(ctx)
	if err != nil {
		slog.Error("purge expired verification codes failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migrate ok", "purged_codes", n)
}
