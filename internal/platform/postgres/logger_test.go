package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger_TraceErrors(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(newBufferLogger(&buf), time.Second)
	fc := func() (string, int64) { return "INSERT INTO orders", 0 }

	l.Trace(context.Background(), time.Now(), fc, errors.New("duplicate key"))
	assert.Contains(t, buf.String(), "sql statement failed")
	assert.Contains(t, buf.String(), "duplicate key")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())
}

func TestLogger_TraceSlowStatement(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(newBufferLogger(&buf), time.Millisecond)
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Contains(t, buf.String(), "slow sql statement")
}

func TestLogger_LogModeSilent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(newBufferLogger(&buf), time.Millisecond).LogMode(gormlogger.Silent)
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	l.Error(context.Background(), "boom %d", 1)
	assert.Empty(t, buf.String())
}
