package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/northwind-orders/internal/domains/orders/application"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/northwind-orders/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/northwind-orders/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.PlacementOrchestrator = (*TemporalPlacement)(nil)
	_ ports.PlacementOrchestrator = (*InlinePlacement)(nil)
)

// TemporalPlacement starts order placement workflows on a Temporal cluster.
type TemporalPlacement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPlacement wires a Temporal client into the orchestrator.
func NewTemporalPlacement(c client.Client) *TemporalPlacement {
	return &TemporalPlacement{client: c, taskQueue: orderworkflows.PlacementTaskQueue}
}

// PlaceOrder starts the placement workflow and waits for the persisted order.
// A repeated idempotency key joins the run already started for it.
func (o *TemporalPlacement) PlaceOrder(ctx context.Context, req ports.PlacementRequest) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order placement not configured")
	}
	traceID := workflowTraceID(ctx)
	workflowID := buildPlacementWorkflowID(req, traceID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	if strings.TrimSpace(req.IdempotencyKey) != "" {
		options.WorkflowIDReusePolicy = enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.PlacementWorkflowName,
		orderworkflows.PlacementWorkflowInput{Order: req.Order, TraceID: traceID},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(req.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var placed domain.Order
			if err := existingRun.Get(ctx, &placed); err != nil {
				return nil, translateWorkflowError(err)
			}
			return &placed, nil
		}
		return nil, err
	}
	var placed domain.Order
	if err := run.Get(ctx, &placed); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &placed, nil
}

const (
	defaultPendingPoll = 25 * time.Millisecond
	defaultPendingWait = 30 * time.Second
)

// InlinePlacement executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlinePlacement struct {
	service     ports.Service
	idempotency ports.IdempotencyStore
	pendingPoll time.Duration
	pendingWait time.Duration
}

// InlineOption configures an InlinePlacement.
type InlineOption func(*InlinePlacement)

// WithIdempotencyStore makes repeated idempotency keys replay the first placement.
func WithIdempotencyStore(store ports.IdempotencyStore) InlineOption {
	return func(o *InlinePlacement) { o.idempotency = store }
}

// WithPendingWait sets how often and how long a request polls a key another request is still placing.
func WithPendingWait(poll, limit time.Duration) InlineOption {
	return func(o *InlinePlacement) {
		if poll > 0 {
			o.pendingPoll = poll
		}
		if limit > 0 {
			o.pendingWait = limit
		}
	}
}

// NewInlinePlacement wraps the order service for synchronous execution.
func NewInlinePlacement(service ports.Service, opts ...InlineOption) *InlinePlacement {
	o := &InlinePlacement{service: service, pendingPoll: defaultPendingPoll, pendingWait: defaultPendingWait}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlaceOrder delegates to the application service without durable orchestration.
// With an idempotency key the key is reserved before the order is stored, so concurrent
// requests carrying it wait for the first one and replay its order.
func (o *InlinePlacement) PlaceOrder(ctx context.Context, req ports.PlacementRequest) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order placement not configured")
	}
	order := req.Order
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" || o.idempotency == nil {
		return o.service.PlaceOrder(ctx, &order)
	}

	hash, err := application.FingerprintOrder(order)
	if err != nil {
		return nil, fmt.Errorf("fingerprint order: %w", err)
	}
	var deadline <-chan time.Time
	for {
		record, claimed, err := o.idempotency.Reserve(ctx, key, hash)
		if err != nil {
			return nil, err
		}
		if claimed {
			return o.placeReserved(ctx, key, &order)
		}
		if record.RequestHash != hash {
			return nil, fmt.Errorf("%w: key %q already used with a different payload",
				ports.ErrIdempotencyConflict, record.Key)
		}
		if !record.Pending() {
			return o.service.GetOrder(ctx, record.OrderID)
		}
		if deadline == nil {
			timer := time.NewTimer(o.pendingWait)
			defer timer.Stop()
			deadline = timer.C
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("%w: key %q", ports.ErrIdempotencyInProgress, key)
		case <-time.After(o.pendingPoll):
		}
	}
}

// placeReserved stores the order under a reservation this request holds. The key is released
// only when nothing was stored; once the order exists the key points at it even if reading it back fails.
func (o *InlinePlacement) placeReserved(ctx context.Context, key string, order *domain.Order) (*domain.Order, error) {
	id, err := o.service.StoreOrder(ctx, order)
	if err != nil {
		if releaseErr := o.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			return nil, errors.Join(err, releaseErr)
		}
		return nil, err
	}
	if err := o.idempotency.Complete(context.WithoutCancel(ctx), key, id); err != nil {
		return nil, err
	}
	return o.service.GetOrder(ctx, id)
}

// translateWorkflowError restores the order error kinds lost crossing the workflow boundary.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case orderactivities.ValidationErrorType:
		return fmt.Errorf("%w: %s", domain.ErrValidation, appErr.Message())
	case orderactivities.InvalidArgumentErrorType:
		return fmt.Errorf("%w: %s", ports.ErrInvalidArgument, appErr.Message())
	default:
		return err
	}
}

// buildPlacementWorkflowID is deterministic for an idempotency key and unique otherwise.
func buildPlacementWorkflowID(req ports.PlacementRequest, traceID string) string {
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(key))
	}
	if traceID != "" {
		return fmt.Sprintf("order-placement-%s-%s", traceID, uuid.NewString())
	}
	return fmt.Sprintf("order-placement-%s", uuid.NewString())
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
