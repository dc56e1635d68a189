package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName validates and stores a new order aggregate.
	PersistOrderActivityName = "orders.activities.PersistOrder"
	// LoadOrderActivityName reads a stored order aggregate back with its navigations.
	LoadOrderActivityName = "orders.activities.LoadOrder"

	// Application error types carried back to the workflow starter.
	ValidationErrorType      = "OrderValidation"
	InvalidArgumentErrorType = "OrderInvalidArgument"
)

// PersistOrderInput is the activity payload.
type PersistOrderInput struct {
	Order domain.Order
}

// LoadOrderInput identifies the order to read back.
type LoadOrderInput struct {
	OrderID int64
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// PersistOrder stores a new order and returns its id. The id is recorded as heartbeat
// details, so an attempt that follows a committed one returns it instead of inserting again.
// Caller mistakes are not retried; store failures are.
func (a *Activities) PersistOrder(ctx context.Context, input PersistOrderInput) (int64, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized")
		return 0, errors.New("order persist activity not initialized")
	}
	customer := input.Order.Customer.Code.Code
	if activity.HasHeartbeatDetails(ctx) {
		var stored int64
		if err := activity.GetHeartbeatDetails(ctx, &stored); err == nil && stored > 0 {
			logger.Info("PersistOrder activity already stored the order", "orderId", stored)
			return stored, nil
		}
	}
	logger.Info("PersistOrder activity started", "customer", customer, "lines", len(input.Order.Details))
	order := input.Order
	id, err := a.service.StoreOrder(ctx, &order)
	if err != nil {
		logger.Error("PersistOrder activity failed", "customer", customer, "error", err)
		return 0, classify(err)
	}
	activity.RecordHeartbeat(ctx, id)
	logger.Info("PersistOrder activity completed", "orderId", id)
	return id, nil
}

// LoadOrder reads a stored order with its customer, employee, shipper and products resolved.
func (a *Activities) LoadOrder(ctx context.Context, input LoadOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order load activity not initialized")
		return nil, errors.New("order load activity not initialized")
	}
	order, err := a.service.GetOrder(ctx, input.OrderID)
	if err != nil {
		logger.Error("LoadOrder activity failed", "orderId", input.OrderID, "error", err)
		return nil, classify(err)
	}
	return order, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return temporal.NewNonRetryableApplicationError(err.Error(), ValidationErrorType, err)
	case errors.Is(err, ports.ErrInvalidArgument):
		return temporal.NewNonRetryableApplicationError(err.Error(), InvalidArgumentErrorType, err)
	default:
		return err
	}
}
