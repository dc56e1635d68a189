package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/platform/temporal/sequences"
)

const (
	// PlacementWorkflowName is the public identifier for registering the workflow.
	PlacementWorkflowName = "orders.workflows.Placement"
	// PlacementTaskQueue is the queue consumed by the worker processing order workflows.
	PlacementTaskQueue = "ORDER_PLACEMENT"
)

// PlacementWorkflowInput captures the payload required to place a new order.
type PlacementWorkflowInput struct {
	Order   domain.Order
	TraceID string
}

// PlacementWorkflow orchestrates the activities needed to persist an order aggregate.
func PlacementWorkflow(ctx workflow.Context, input PlacementWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	customer := input.Order.Customer.Code.Code
	logger.Info("PlacementWorkflow started", withTraceID(input.TraceID, "customer", customer)...)
	placed, err := sequences.RunOrderPersistenceSequence(ctx, input.Order)
	if err != nil {
		logger.Error("PlacementWorkflow failed", withTraceID(input.TraceID, "customer", customer, "error", err)...)
		return nil, err
	}
	logger.Info("PlacementWorkflow completed", withTraceID(input.TraceID, "orderId", placed.ID)...)
	return placed, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
