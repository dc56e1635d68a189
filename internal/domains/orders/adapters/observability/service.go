package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.DiscardHandler),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) ListOrders(ctx context.Context, page ports.Page) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders",
		trace.WithAttributes(attribute.Int("page.skip", page.Skip), attribute.Int("page.count", page.Count)))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, page)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders",
			slog.Int("page.skip", page.Skip), slog.Int("page.count", page.Count))
	}
	span.SetAttributes(attribute.Int("orders.returned", len(result)))
	s.logInfo(ctx, "orders listed", slog.Int("page.skip", page.Skip), slog.Int("orders.returned", len(result)))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "loading order", slog.Int64("order.id", id))
	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	span.SetAttributes(attribute.Int("order.lines", len(result.Details)))
	return result, nil
}

func (s *Service) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(orderAttrs(order)...))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("order.customer", customerOf(order)), slog.Int("order.lines", linesOf(order)))
	result, err := s.inner.PlaceOrder(ctx, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.customer", customerOf(order)))
	}
	s.metrics.recordPlaced(ctx, result)
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.logInfo(ctx, "order placed", slog.Int64("order.id", result.ID), slog.Float64("order.total", result.Total()))
	return result, nil
}

func (s *Service) StoreOrder(ctx context.Context, order *domain.Order) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.StoreOrder", trace.WithAttributes(orderAttrs(order)...))
	defer span.End()

	s.logInfo(ctx, "storing order", slog.String("order.customer", customerOf(order)), slog.Int("order.lines", linesOf(order)))
	id, err := s.inner.StoreOrder(ctx, order)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to store order", slog.String("order.customer", customerOf(order)))
	}
	s.metrics.recordPlaced(ctx, order)
	span.SetAttributes(attribute.Int64("order.id", id))
	s.logInfo(ctx, "order stored", slog.Int64("order.id", id))
	return id, nil
}

func (s *Service) ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ReplaceOrder", trace.WithAttributes(orderAttrs(order)...))
	defer span.End()

	var id int64
	if order != nil {
		id = order.ID
	}
	s.logInfo(ctx, "replacing order", slog.Int64("order.id", id), slog.Int("order.lines", linesOf(order)))
	result, err := s.inner.ReplaceOrder(ctx, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to replace order", slog.Int64("order.id", id))
	}
	s.metrics.recordReplaced(ctx)
	s.logInfo(ctx, "order replaced", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id))
	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", id))
	return nil
}

func (s *Service) DirectReports(ctx context.Context, employeeID int64) ([]int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.DirectReports", trace.WithAttributes(attribute.Int64("employee.id", employeeID)))
	defer span.End()

	result, err := s.inner.DirectReports(ctx, employeeID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve direct reports", slog.Int64("employee.id", employeeID))
	}
	span.SetAttributes(attribute.Int("employee.reports", len(result)))
	return result, nil
}

func (s *Service) ProductsInCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ProductsInCategory", trace.WithAttributes(attribute.Int64("category.id", categoryID)))
	defer span.End()

	result, err := s.inner.ProductsInCategory(ctx, categoryID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list category products", slog.Int64("category.id", categoryID))
	}
	span.SetAttributes(attribute.Int("category.products", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

// handleError records err on the span. Caller mistakes log at warn, store failures at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	level := slog.LevelError
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrInvalidArgument) || errors.Is(err, domain.ErrValidation) {
		level = slog.LevelWarn
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.recordFailure(ctx, errorKind(err))
	s.logError(ctx, level, msg, err, attrs...)
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, ports.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, ports.ErrRepositoryFailure):
		return "repository_failure"
	default:
		return "unknown"
	}
}

func orderAttrs(order *domain.Order) []attribute.KeyValue {
	if order == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.Int64("order.id", order.ID),
		attribute.String("order.customer", order.Customer.Code.Code),
		attribute.Int("order.lines", len(order.Details)),
	}
}

func customerOf(order *domain.Order) string {
	if order == nil {
		return ""
	}
	return order.Customer.Code.Code
}

func linesOf(order *domain.Order) int {
	if order == nil {
		return 0
	}
	return len(order.Details)
}

type serviceMetrics struct {
	ordersPlaced   metric.Int64Counter
	ordersReplaced metric.Int64Counter
	ordersDeleted  metric.Int64Counter
	orderLines     metric.Int64Histogram
	failures       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	ordersReplaced, _ := m.Int64Counter("orders.service.orders_replaced", metric.WithDescription("Number of orders replaced"))
	ordersDeleted, _ := m.Int64Counter("orders.service.orders_deleted", metric.WithDescription("Number of orders deleted"))
	orderLines, _ := m.Int64Histogram("orders.service.order_lines", metric.WithDescription("Detail lines per placed order"))
	failures, _ := m.Int64Counter("orders.service.failures", metric.WithDescription("Failed order operations by error kind"))
	return serviceMetrics{
		ordersPlaced:   ordersPlaced,
		ordersReplaced: ordersReplaced,
		ordersDeleted:  ordersDeleted,
		orderLines:     orderLines,
		failures:       failures,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.Bool("order.shipped", order.ShippedDate != nil)))
	}
	if m.orderLines != nil {
		m.orderLines.Record(ctx, int64(len(order.Details)))
	}
}

func (m serviceMetrics) recordReplaced(ctx context.Context) {
	if m.ordersReplaced != nil {
		m.ordersReplaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFailure(ctx context.Context, kind string) {
	if m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("error.kind", kind)))
	}
}

var _ ports.Service = (*Service)(nil)
