package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Options configures Open.
type Options struct {
	URL            string
	ConnectTimeout time.Duration
	// Models are auto-migrated after connecting when non-empty.
	Models []any
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// DetectDriver picks the driver from the DSN shape and returns the DSN in the
// form that driver expects.
func DetectDriver(dsn string) (Driver, string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres, dsn
	case strings.HasPrefix(lower, "sqlite://"):
		return DriverSQLite, dsn[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		return DriverSQLite, dsn[len("sqlite:"):]
	case strings.HasPrefix(lower, "file:"), lower == ":memory:",
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return DriverSQLite, dsn
	case strings.HasPrefix(lower, "mysql://"):
		return DriverMySQL, ensureParseTime(dsn[len("mysql://"):])
	default:
		return DriverMySQL, ensureParseTime(dsn)
	}
}

func ensureParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "charset=utf8mb4&parseTime=true&loc=Local"
}

// Dialector returns the gorm dialector for dsn.
func Dialector(dsn string) gorm.Dialector {
	driver, normalized := DetectDriver(dsn)
	switch driver {
	case DriverPostgres:
		return postgres.Open(normalized)
	case DriverSQLite:
		return sqlite.Open(normalized)
	default:
		return gmysql.Open(normalized)
	}
}

// GormOpener opens dsn with error translation enabled so duplicate keys
// surface as gorm.ErrDuplicatedKey.
func GormOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(Dialector(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects to opts.URL and migrates opts.Models.
func Open(opts Options) (*gorm.DB, error) {
	if opts.URL == "" {
		return nil, errors.New("empty database url")
	}
	db, err := ConnectWithRetry(opts.URL, opts.ConnectTimeout, GormOpener)
	if err != nil {
		return nil, err
	}

	driver, _ := DetectDriver(opts.URL)
	slog.Info("database connected", "driver", driver)

	if len(opts.Models) > 0 {
		if err := db.AutoMigrate(opts.Models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
