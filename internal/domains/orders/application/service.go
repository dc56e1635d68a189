package application

import (
	"context"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

// Service orchestrates order use cases on top of the repository.
type Service struct {
	repo    ports.Repository
	catalog ports.Catalog
}

func NewService(repo ports.Repository, catalog ports.Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) ListOrders(ctx context.Context, page ports.Page) ([]domain.Order, error) {
	return s.repo.GetOrders(ctx, page.Skip, page.Count)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PlaceOrder validates and stores a new order, then returns it as the store sees it.
func (s *Service) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	id, err := s.StoreOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// StoreOrder validates and stores a new order and returns only its id.
// A failed call stored nothing, so callers that retry never duplicate the order.
func (s *Service) StoreOrder(ctx context.Context, order *domain.Order) (int64, error) {
	if order == nil {
		return 0, errNilOrder
	}
	if err := order.Validate(); err != nil {
		return 0, mapError(err)
	}
	id, err := s.repo.AddOrder(ctx, order)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// ReplaceOrder overwrites an existing order including its full set of detail lines.
func (s *Service) ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errNilOrder
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, mapError(err)
	}
	return s.GetOrder(ctx, order.ID)
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.RemoveOrder(ctx, id)
}

// DirectReports lists the ids of employees reporting to employeeID.
func (s *Service) DirectReports(ctx context.Context, employeeID int64) ([]int64, error) {
	h, err := s.catalog.EmployeeHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return h.DirectReports(employeeID), nil
}

func (s *Service) ProductsInCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return s.catalog.ProductsByCategory(ctx, categoryID)
}

var _ ports.Service = (*Service)(nil)
