// Package worker boots the Temporal worker that executes order placements.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalworker "go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/northwind-orders/internal/app/bootstrap"
	ordersobs "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/northwind-orders/internal/domains/orders/application"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/northwind-orders/internal/platform/observability"
	orderactivities "github.com/Apurer/northwind-orders/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/northwind-orders/internal/platform/temporal/workflows/orders"
)

const serviceName = "northwind-orders-worker"

// Registry is satisfied by Temporal workers and test workflow environments.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register binds the placement workflow and its activities to w under their stable names.
func Register(w Registry, service ports.Service) {
	activities := orderactivities.NewActivities(service)
	w.RegisterWorkflowWithOptions(orderworkflows.PlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})
	w.RegisterActivityWithOptions(activities.LoadOrder, activity.RegisterOptions{Name: orderactivities.LoadOrderActivityName})
}

// Run starts the worker on the placement task queue and blocks until ctx ends or a signal arrives.
func Run(ctx context.Context) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.ConfigFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	store := bootstrap.OpenStore(ctx, cfg, logger, nil)
	defer store.Close()
	service := ordersobs.New(
		ordersapp.NewService(store.Repository, store.Catalog),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	temporalClient, err := bootstrap.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("failed to create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	return serve(ctx, temporalClient, service, logger)
}

func serve(ctx context.Context, c client.Client, service ports.Service, logger *slog.Logger) error {
	w := temporalworker.New(c, orderworkflows.PlacementTaskQueue, temporalworker.Options{})
	Register(w, service)

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlacementTaskQueue))
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
