package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Options tunes the GORM session opened by Connect.
type Options struct {
	Logger             *slog.Logger
	SlowQueryThreshold time.Duration
	MaxOpenConns       int
	MaxIdleConns       int
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string, opts Options) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), GormConfig(opts))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// GormConfig builds the shared GORM configuration. Statements are logged through slog.
func GormConfig(opts Options) *gorm.Config {
	cfg := &gorm.Config{}
	if opts.Logger != nil {
		cfg.Logger = NewLogger(opts.Logger, opts.SlowQueryThreshold)
	}
	return cfg
}
