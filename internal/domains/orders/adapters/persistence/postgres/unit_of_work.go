package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var errUnitOfWorkFinished = errors.New("unit of work already finished")

// unitOfWork scopes one database transaction to one repository write.
// Commit runs at most once; Rollback is safe to defer and does nothing after a commit.
type unitOfWork struct {
	tx   *gorm.DB
	done bool
}

func beginUnitOfWork(ctx context.Context, db *gorm.DB) (*unitOfWork, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &unitOfWork{tx: tx}, nil
}

// DB is the transactional handle every statement of the unit must use.
func (u *unitOfWork) DB() *gorm.DB { return u.tx }

func (u *unitOfWork) Commit() error {
	if u.done {
		return errUnitOfWorkFinished
	}
	u.done = true
	return u.tx.Commit().Error
}

func (u *unitOfWork) Rollback() {
	if u.done {
		return
	}
	u.done = true
	u.tx.Rollback()
}
