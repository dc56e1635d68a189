package ports

import (
	"context"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

// Page selects a window of orders ordered by id.
type Page struct {
	Skip  int
	Count int
}

// Service exposes order use cases to adapters.
type Service interface {
	ListOrders(ctx context.Context, page Page) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	StoreOrder(ctx context.Context, order *domain.Order) (int64, error)
	ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	DirectReports(ctx context.Context, employeeID int64) ([]int64, error)
	ProductsInCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
}
