package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidArgument signals a precondition violation detected before any store access.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRepositoryFailure wraps unexpected store failures; the cause stays reachable via errors.As.
	ErrRepositoryFailure = errors.New("order repository failure")
)

// NotFoundError carries the identity that could not be resolved.
type NotFoundError struct {
	OrderID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds the error returned for a missing order.
func NewNotFound(id int64) error {
	return &NotFoundError{OrderID: id}
}

// Failure wraps a store error raised during op.
func Failure(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrRepositoryFailure, op, cause)
}

// Repository is the only mutation and query point for the order aggregate.
type Repository interface {
	GetOrders(ctx context.Context, skip, count int) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	AddOrder(ctx context.Context, order *domain.Order) (int64, error)
	RemoveOrder(ctx context.Context, id int64) error
	UpdateOrder(ctx context.Context, order *domain.Order) error
}

// ValidatePage checks pagination arguments shared by all repository implementations.
func ValidatePage(skip, count int) error {
	if skip < 0 {
		return fmt.Errorf("%w: skip must be non-negative, got %d", ErrInvalidArgument, skip)
	}
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidArgument, count)
	}
	return nil
}

// Catalog answers reverse-navigation questions over reference data by foreign key lookup.
type Catalog interface {
	EmployeeHierarchy(ctx context.Context) (*domain.EmployeeHierarchy, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
}
