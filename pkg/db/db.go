package db

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoURL is returned by Connect when no connection string is configured.
var ErrNoURL = errors.New("db: LEDGER_DATABASE_URL is not set")

// SlowQueryThreshold is the duration above which statements are logged as
// slow.
const SlowQueryThreshold = 500 * time.Millisecond

// Config holds ledger connection settings.
type Config struct {
	URL string
	// Debug logs every statement instead of only slow ones and errors.
	Debug bool
	// Logger receives GORM's statement log. Nil discards it.
	Logger *zap.Logger
}

// Connect opens the ledger database.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	conn, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{Logger: gormLogger(cfg)},
	)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return conn, nil
}

// gormLogger routes GORM's log through zap.
func gormLogger(cfg Config) logger.Interface {
	if cfg.Logger == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	return logger.New(zap.NewStdLog(cfg.Logger.Named("ledger")), logger.Config{
		SlowThreshold: SlowQueryThreshold,
		LogLevel:      level,
	})
}
