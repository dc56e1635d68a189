package postgres

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/platform/migrations"
)

func ptr[T any](v T) *T { return &v }

// openTestDB gives each test its own file-backed SQLite database with foreign keys enforced.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "northwind.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.Run(db))
	seedReferenceData(t, db)
	return db
}

func seedReferenceData(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]entities.Category{
		{ID: 1, CategoryName: "Beverages"},
		{ID: 4, CategoryName: "Dairy Products"},
	}).Error)
	require.NoError(t, db.Create(&[]entities.Supplier{
		{ID: 1, CompanyName: "Exotic Liquids"},
		{ID: 5, CompanyName: "Cooperativa de Quesos 'Las Cabras'"},
	}).Error)
	require.NoError(t, db.Create(&[]entities.Product{
		{ID: 1, ProductName: "Chai", CategoryID: ptr(int32(1)), SupplierID: ptr(int32(1)), UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(18))},
		{ID: 2, ProductName: "Chang", CategoryID: ptr(int32(1)), SupplierID: ptr(int32(1))},
		{ID: 11, ProductName: "Queso Cabrales", CategoryID: ptr(int32(4)), SupplierID: ptr(int32(5))},
		{ID: 12, ProductName: "Queso Manchego La Pastora", CategoryID: ptr(int32(4)), SupplierID: ptr(int32(5))},
		{ID: 77, ProductName: "Original Frankfurter"},
	}).Error)
	require.NoError(t, db.Create(&[]entities.Customer{
		{ID: "ALFKI", CompanyName: "Alfreds Futterkiste"},
		{ID: "VINET", CompanyName: "Vins et alcools Chevalier"},
	}).Error)
	require.NoError(t, db.Create(&[]entities.Employee{
		{ID: 2, FirstName: "Andrew", LastName: "Fuller", Country: ptr("USA")},
		{ID: 1, FirstName: "Nancy", LastName: "Davolio", Country: ptr("USA"), ReportsTo: ptr(int32(2))},
		{ID: 5, FirstName: "Steven", LastName: "Buchanan", Country: ptr("UK"), ReportsTo: ptr(int32(2))},
		{ID: 6, FirstName: "Michael", LastName: "Suyama", Country: ptr("UK"), ReportsTo: ptr(int32(5))},
	}).Error)
	require.NoError(t, db.Create(&[]entities.Shipper{
		{ID: 1, CompanyName: "Speedy Express"},
		{ID: 3, CompanyName: "Federal Shipping"},
	}).Error)
}

func sampleOrder() *domain.Order {
	orderDate := time.Date(1996, 7, 4, 0, 0, 0, 0, time.UTC)
	return &domain.Order{
		Customer:     domain.Customer{Code: domain.CustomerCode{Code: "VINET"}},
		Employee:     domain.Employee{ID: 5},
		Shipper:      domain.Shipper{ID: 3},
		OrderDate:    orderDate,
		RequiredDate: orderDate.AddDate(0, 0, 28),
		Freight:      32.38,
		ShipName:     "Vins et alcools Chevalier",
		ShippingAddress: domain.ShippingAddress{
			Address:    "59 rue de l'Abbaye",
			City:       "Reims",
			PostalCode: "51100",
			Country:    "France",
		},
		Details: []domain.OrderDetail{
			{Product: domain.Product{ID: 11}, UnitPrice: 14, Quantity: 12},
			{Product: domain.Product{ID: 12}, UnitPrice: 9.8, Quantity: 10, Discount: 0.25},
			{Product: domain.Product{ID: 1}, UnitPrice: 34.8, Quantity: 5, Discount: 0.05},
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
