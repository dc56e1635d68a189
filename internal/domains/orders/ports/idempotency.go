package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict indicates the same key was used with a different order payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyInProgress indicates the placement holding the key has not stored its order yet.
	ErrIdempotencyInProgress = errors.New("idempotency key in progress")
)

// IdempotencyRecord associates a client-supplied key with the order it created.
// OrderID stays zero while the placement that reserved the key is running.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// Pending reports whether the reserving placement has not completed yet.
func (r IdempotencyRecord) Pending() bool { return r.OrderID == 0 }

// IdempotencyStore persists idempotency keys so retried placements replay the first result.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Reserve claims the key for a placement with the given request hash. It returns the
	// record now stored for the key and whether this call created it.
	Reserve(ctx context.Context, key, requestHash string) (*IdempotencyRecord, bool, error)
	// Complete attaches the stored order to a pending reservation.
	Complete(ctx context.Context, key string, orderID int64) error
	// Release drops a pending reservation whose placement stored nothing.
	Release(ctx context.Context, key string) error
}
