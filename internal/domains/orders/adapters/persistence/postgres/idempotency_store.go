package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists idempotency keys next to the orders they created.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record entities.IdempotencyKey
	if err := s.db.WithContext(ctx).First(&record, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, ports.Failure("get idempotency key", err)
	}
	return toPortRecord(record), nil
}

// Reserve inserts a pending row for the key. The primary key decides the race: a losing
// insert does nothing and the winner's row is read back. A row released between the two
// statements is claimed on the next attempt.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, requestHash string) (*ports.IdempotencyRecord, bool, error) {
	if err := s.ensureDB(); err != nil {
		return nil, false, err
	}
	for range 3 {
		row := entities.IdempotencyKey{Key: key, RequestHash: requestHash}
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return nil, false, ports.Failure("reserve idempotency key", result.Error)
		}
		if result.RowsAffected == 1 {
			return toPortRecord(row), true, nil
		}
		existing, err := s.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	return nil, false, ports.Failure("reserve idempotency key", fmt.Errorf("key %q keeps changing owner", key))
}

// Complete stores the order id on the pending row.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, orderID int64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Model(&entities.IdempotencyKey{}).
		Where("idempotency_key = ? AND order_id = 0", key).
		Update("order_id", orderID)
	if result.Error != nil {
		return ports.Failure("complete idempotency key", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: key %q has no pending reservation", ports.ErrIdempotencyConflict, key)
	}
	return nil
}

// Release deletes the row while it is still pending.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("idempotency_key = ? AND order_id = 0", key).
		Delete(&entities.IdempotencyKey{}).Error
	if err != nil {
		return ports.Failure("release idempotency key", err)
	}
	return nil
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return ports.Failure("idempotency store", errors.New("postgres idempotency store not configured"))
	}
	return nil
}

func toPortRecord(row entities.IdempotencyKey) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		OrderID:     int64(row.OrderID),
		CreatedAt:   row.CreatedAt,
	}
}
