package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	"github.com/Apurer/northwind-orders/internal/platform/metrics"
	"github.com/Apurer/northwind-orders/internal/platform/migrations"
	platformpostgres "github.com/Apurer/northwind-orders/internal/platform/postgres"
)

// Store is the persistence selected for a process.
type Store struct {
	Repository  ports.Repository
	Catalog     ports.Catalog
	Idempotency ports.IdempotencyStore
	Backend     string
	close       func()
}

// Close releases the underlying connection pool, if any.
func (s Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects to PostgreSQL when a DSN is configured and falls back to the
// seeded in-memory repository otherwise. Pool statistics go to registerer when set.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger, registerer prometheus.Registerer) Store {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return memoryStore()
	}
	db, err := Connect(ctx, cfg, logger)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStore()
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStore()
	}
	if cfg.AutoMigrate {
		if err := migrations.Run(db.WithContext(ctx)); err != nil {
			logger.Error("schema migration failed", slog.String("error", err.Error()))
		}
	}
	if registerer != nil {
		metrics.RegisterDBStats(registerer, sqlDB, "northwind")
	}
	logger.Info("order repository configured with postgres")
	repo := orderspostgres.NewRepository(db)
	return Store{
		Repository:  repo,
		Catalog:     repo,
		Idempotency: orderspostgres.NewIdempotencyStore(db),
		Backend:     "postgres",
		close:       func() { _ = sqlDB.Close() },
	}
}

// Connect opens the configured PostgreSQL database.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, platformpostgres.Options{
		Logger:             logger,
		SlowQueryThreshold: cfg.SlowQuery,
		MaxOpenConns:       cfg.MaxOpenConns,
		MaxIdleConns:       cfg.MaxOpenConns / 2,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func memoryStore() Store {
	repo := memory.NewRepository(memory.SampleReferenceData())
	return Store{Repository: repo, Catalog: repo, Idempotency: memory.NewIdempotencyStore(), Backend: "memory"}
}
