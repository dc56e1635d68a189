//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	"github.com/Apurer/northwind-orders/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("northwind_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrations.Run(db))
	seedReferenceData(t, db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestPostgresRepository_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	id, err := repo.AddOrder(ctx, sampleOrder())
	require.NoError(t, err)

	got, err := repo.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Federal Shipping", got.Shipper.CompanyName)
	assert.InDelta(t, 32.38, got.Freight, 1e-9)
	require.Len(t, got.Details, 3)

	got.ReplaceDetails([]domain.OrderDetail{
		{Product: domain.Product{ID: 2}, UnitPrice: 19, Quantity: 3},
		{Product: domain.Product{ID: 77}, UnitPrice: 13, Quantity: 40},
	})
	require.NoError(t, repo.UpdateOrder(ctx, &got))
	assert.Equal(t, int64(2), countRows(t, db, &entities.OrderDetail{}, "order_id = ?", id))

	require.NoError(t, repo.RemoveOrder(ctx, id))
	_, err = repo.GetOrder(ctx, id)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_DuplicateProductIsUniqueViolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	order := sampleOrder()
	order.Details = append(order.Details, order.Details[0])

	_, err := NewRepository(db).AddOrder(context.Background(), order)
	require.ErrorIs(t, err, ports.ErrRepositoryFailure)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23505", pgErr.Code)
	assert.Zero(t, countRows(t, db, &entities.Order{}))
}

func TestPostgresRepository_Paging(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := repo.AddOrder(ctx, sampleOrder())
		require.NoError(t, err)
	}

	first, err := repo.GetOrders(ctx, 0, 10)
	require.NoError(t, err)
	second, err := repo.GetOrders(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	require.Len(t, second, 5)
	assert.Less(t, first[9].ID, second[0].ID)
}
