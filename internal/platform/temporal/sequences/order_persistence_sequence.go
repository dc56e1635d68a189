package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/northwind-orders/internal/platform/temporal/activities/orders"
)

// RunOrderPersistenceSequence executes the ordered set of activities needed to persist an order aggregate.
// Storing and reading back are separate activities so a failed read retries only the read.
func RunOrderPersistenceSequence(ctx workflow.Context, order domain.Order) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	customer := order.Customer.Code.Code
	logger.Info("order persistence sequence started", "customer", customer)
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				orderactivities.ValidationErrorType,
				orderactivities.InvalidArgumentErrorType,
			},
		},
	})

	var id int64
	input := orderactivities.PersistOrderInput{Order: order}
	if err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, input).Get(ctx, &id); err != nil {
		logger.Error("order persistence sequence failed", "customer", customer, "error", err)
		return nil, err
	}
	logger.Info("order persistence sequence persisted", "orderId", id)

	var placed domain.Order
	load := orderactivities.LoadOrderInput{OrderID: id}
	if err := workflow.ExecuteActivity(ctx, orderactivities.LoadOrderActivityName, load).Get(ctx, &placed); err != nil {
		logger.Error("order persistence sequence could not load order", "orderId", id, "error", err)
		return nil, err
	}
	return &placed, nil
}
