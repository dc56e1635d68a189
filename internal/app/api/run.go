// Package api boots the order HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/Apurer/northwind-orders/internal/app/bootstrap"
	orderhandler "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/http/handler"
	ordersobs "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/northwind-orders/internal/domains/orders/application"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	"github.com/Apurer/northwind-orders/internal/platform/metrics"
	platformobservability "github.com/Apurer/northwind-orders/internal/platform/observability"
)

const serviceName = "northwind-orders-api"

// RouterDeps are the collaborators mounted on the HTTP router.
type RouterDeps struct {
	Service     ports.Service
	Placement   ports.PlacementOrchestrator
	Registry    *prometheus.Registry
	ServiceName string
}

// NewRouter builds the gin engine: health and metrics endpoints plus the order API under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if deps.ServiceName != "" {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}
	if deps.Registry != nil {
		router.Use(metrics.NewHTTPMetrics(deps.Registry).Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Registry)))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	orderhandler.New(deps.Service, deps.Placement, nil).Register(router.Group("/api"))
	return router
}

// Run boots the order HTTP API with observability, persistence, and workflows wired.
// It returns once ctx is cancelled or SIGINT/SIGTERM arrives and the server has drained.
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

	registry := prometheus.NewRegistry()
	store := bootstrap.OpenStore(ctx, cfg, logger, registry)
	defer store.Close()

	service := ordersobs.New(
		ordersapp.NewService(store.Repository, store.Catalog),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	var placement ports.PlacementOrchestrator = orderworkflows.NewInlinePlacement(service, orderworkflows.WithIdempotencyStore(store.Idempotency))
	if temporalClient, err := bootstrap.DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		placement = orderworkflows.NewTemporalPlacement(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: NewRouter(RouterDeps{
			Service:     service,
			Placement:   placement,
			Registry:    registry,
			ServiceName: serviceName,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("order API listening", slog.String("addr", server.Addr), slog.String("store", store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("order API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("order API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}
