package ports

import (
	"context"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

// PlacementRequest is a new order plus an optional client supplied idempotency key.
type PlacementRequest struct {
	Order          domain.Order
	IdempotencyKey string
}

// PlacementOrchestrator places new orders, durably when a workflow engine is available.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, req PlacementRequest) (*domain.Order, error)
}
