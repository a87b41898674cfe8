// Package config loads the process-wide configuration once at startup.
// Values come from defaults, an optional TOML file and environment overrides,
// in that order. The resulting Config is passed explicitly to constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not defined")

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Mail     MailConfig     `toml:"mail"`
	Storage  StorageConfig  `toml:"storage"`
	Geocoder GeocoderConfig `toml:"geocoder"`
	Log      LogConfig      `toml:"log"`
}

type AppConfig struct {
	Name      string `toml:"name"`
	Env       string `toml:"env"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	GinMode   string `toml:"gin_mode"`
	StaticDir string `toml:"static_dir"`
	// TrustedProxies are the reverse proxies whose X-Forwarded-For is honoured
	// when resolving the client IP. Empty trusts none.
	TrustedProxies []string `toml:"trusted_proxies"`
}

type AuthConfig struct {
	JWTSecret         string `toml:"jwt_secret"`
	SessionTTLHours   int    `toml:"session_ttl_hours"`
	CookieName        string `toml:"cookie_name"`
	RateLimitRequests int    `toml:"rate_limit_requests"`
	RateLimitMinutes  int    `toml:"rate_limit_minutes"`
}

type DatabaseConfig struct {
	URL               string `toml:"url"`
	RunMigrations     bool   `toml:"run_migrations"`
	ConnectTimeoutSec int    `toml:"connect_timeout_seconds"`
}

// RedisConfig is optional; an empty Addr runs without Redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig is optional; an empty URL dispatches emails in-process.
type RabbitMQConfig struct {
	URL        string `toml:"url"`
	EmailQueue string `toml:"email_queue"`
}

type MailConfig struct {
	Host     string `toml:"host"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	FromName string `toml:"from_name"`
	Workers  int    `toml:"workers"`
}

// StorageConfig is optional; an empty Bucket disables upload presigning.
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type GeocoderConfig struct {
	BaseURL    string `toml:"base_url"`
	UserAgent  string `toml:"user_agent"`
	TimeoutSec int    `toml:"timeout_seconds"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

// Validate reports settings the server cannot boot without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is not defined")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// IsProduction controls the Secure attribute of the session cookie.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Auth.RateLimitMinutes) * time.Minute
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Database.ConnectTimeoutSec) * time.Second
}

func (c *Config) GeocoderTimeout() time.Duration {
	return time.Duration(c.Geocoder.TimeoutSec) * time.Second
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:      "vivimap",
			Env:       "development",
			Host:      "0.0.0.0",
			Port:      3001,
			GinMode:   "debug",
			StaticDir: "web",
		},
		Auth: AuthConfig{
			SessionTTLHours:   7 * 24,
			CookieName:        "token",
			RateLimitRequests: 10,
			RateLimitMinutes:  15,
		},
		Database: DatabaseConfig{
			URL:               "vivimap.db",
			RunMigrations:     true,
			ConnectTimeoutSec: 60,
		},
		RabbitMQ: RabbitMQConfig{
			EmailQueue: "vivimap.email.verification",
		},
		Mail: MailConfig{
			Host:     "smtp.gmail.com:465",
			FromName: "Vivimap",
			Workers:  2,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Geocoder: GeocoderConfig{
			BaseURL:    "https://nominatim.openstreetmap.org",
			UserAgent:  "vivimap/1.0",
			TimeoutSec: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.StaticDir = getEnv("STATIC_DIR", cfg.App.StaticDir)
	cfg.App.TrustedProxies = getEnvAsList("TRUSTED_PROXIES", cfg.App.TrustedProxies)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.SessionTTLHours = getEnvAsInt("SESSION_TTL_HOURS", cfg.Auth.SessionTTLHours)
	cfg.Auth.RateLimitRequests = getEnvAsInt("AUTH_RATE_LIMIT_REQUESTS", cfg.Auth.RateLimitRequests)
	cfg.Auth.RateLimitMinutes = getEnvAsInt("AUTH_RATE_LIMIT_MINUTES", cfg.Auth.RateLimitMinutes)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.RunMigrations = getEnvAsBool("RUN_MIGRATIONS", cfg.Database.RunMigrations)
	cfg.Database.ConnectTimeoutSec = getEnvAsInt("DB_CONNECT_TIMEOUT_SECONDS", cfg.Database.ConnectTimeoutSec)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EmailQueue = getEnv("RABBITMQ_EMAIL_QUEUE", cfg.RabbitMQ.EmailQueue)

	cfg.Mail.Host = getEnv("SMTP_HOST", cfg.Mail.Host)
	cfg.Mail.User = getEnv("EMAIL_USER", cfg.Mail.User)
	cfg.Mail.Password = getEnv("EMAIL_PASS", cfg.Mail.Password)
	cfg.Mail.FromName = getEnv("EMAIL_FROM_NAME", cfg.Mail.FromName)
	cfg.Mail.Workers = getEnvAsInt("EMAIL_WORKERS", cfg.Mail.Workers)

	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.Region = getEnv("S3_REGION", cfg.Storage.Region)
	cfg.Storage.Bucket = getEnv("S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)

	cfg.Geocoder.BaseURL = getEnv("GEOCODER_BASE_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.UserAgent = getEnv("GEOCODER_USER_AGENT", cfg.Geocoder.UserAgent)
	cfg.Geocoder.TimeoutSec = getEnvAsInt("GEOCODER_TIMEOUT_SECONDS", cfg.Geocoder.TimeoutSec)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
