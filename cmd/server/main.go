package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"vivimap/internal/app/di"
	"vivimap/internal/app/router"
	"vivimap/internal/config"
	authadapters "vivimap/internal/feature/auth/adapters"
	authentity "vivimap/internal/feature/auth/domain/entity"
	authhandler "vivimap/internal/feature/auth/transport/handler"
	authusecase "vivimap/internal/feature/auth/usecase"
	memadapters "vivimap/internal/feature/memories/adapters"
	memhandler "vivimap/internal/feature/memories/transport/handler"
	memusecase "vivimap/internal/feature/memories/usecase"
	searchhandler "vivimap/internal/feature/search/transport/handler"
	searchusecase "vivimap/internal/feature/search/usecase"
	"vivimap/internal/platform/cache"
	infradb "vivimap/internal/platform/db"
	"vivimap/internal/platform/http/handler"
	jwtmw "vivimap/internal/platform/jwt"
	"vivimap/internal/platform/logging"
	"vivimap/internal/platform/mail"
	infraredis "vivimap/internal/platform/redis"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.App.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	dbOpts := infradb.Options{URL: cfg.Database.URL, ConnectTimeout: cfg.ConnectTimeout()}
	if cfg.Database.RunMigrations {
		dbOpts.Models = []any{&authentity.User{}, &authadapters.VerificationCodeModel{}, &memadapters.MemoryModel{}}
	}
	db, err := infradb.Open(dbOpts)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := infradb.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Redis is optional
	var rdb *redisv9.Client
	if cfg.Redis.Addr != "" {
		if tmp, err := infraredis.NewRedisClient(ctx, infraredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}); err != nil {
			slog.Warn("Redis unavailable, running without cache")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	sender, err := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Mail.Host,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		FromName: cfg.Mail.FromName,
	})
	if err != nil {
		slog.Error("failed to configure mail sender", "error", err)
		os.Exit(1)
	}
	emails := di.NewEmailQueue(ctx, cfg, sender)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := emails.Close(closeCtx); err != nil {
			slog.Error("failed to drain email queue", "error", err)
		}
	}()

	tokens := jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.SessionTTL())

	// Repository
	users := authadapters.NewUserGorm(db)
	codes := di.NewVerificationCodeStore(rdb, db)
	memories := cache.NewCachingMemoryRepository(rdb, 0, memadapters.NewMemoryGorm(db), "memories")
	presigner := di.NewUploadPresigner(ctx, cfg.Storage)

	// Usecase
	authUC := authusecase.NewAuthUsecase(users, codes, tokens)
	memUC := memusecase.NewMemoriesUsecase(memories, users, presigner)
	searchUC := searchusecase.NewSearchUsecase(di.NewGeocoder(cfg, rdb))

	// Handler
	cookie := jwtmw.Cookie{Name: cfg.Auth.CookieName, MaxAge: cfg.SessionTTL(), Secure: cfg.IsProduction()}
	engine := router.NewRouter(router.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC, emails, tokens, cookie),
		Memories: memhandler.NewMemoriesHandler(memUC),
		Search:   searchhandler.NewSearchHandler(searchUC),
		Health:   handler.Health(healthChecks(db, rdb)...),
	}, router.Options{
		Tokens:         tokens,
		CookieName:     cfg.Auth.CookieName,
		AuthLimiter:    di.NewAuthLimiter(ctx, cfg, rdb),
		LimitWindow:    cfg.RateLimitWindow(),
		StaticDir:      cfg.App.StaticDir,
		UploadsEnabled: memUC.UploadsEnabled(),
		TrustedProxies: cfg.App.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func healthChecks(db *gorm.DB, rdb *redisv9.Client) []handler.Check {
	checks := []handler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
