package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

	require.NotNil(t, gormLog)
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, 200*time.Millisecond, gormLog.slowThreshold)
	assert.True(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLoggerWithOptions(t *testing.T) {
	gormLog, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

	newLogger := gormLog.LogMode(gormlogger.Warn)

	// the original keeps its level, LogMode returns a copy
	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	newGormLog, ok := newLogger.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, newGormLog.logLevel)
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info logged at info level", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)
		gormLog.Info(context.Background(), "migrating %s", "billing_records")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrating billing_records")
	})

	t.Run("info suppressed at silent level", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Silent)
		gormLog.Info(context.Background(), "migrating")

		assert.Empty(t, recorded.All())
	})

	t.Run("warn logged with warn level", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn)
		gormLog.Warn(context.Background(), "retrying %d", 2)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "retrying 2")
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("error logged with error level", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)
		gormLog.Error(context.Background(), "connection lost")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

	fc := func() (string, int64) {
		return "SELECT * FROM billing_records", 0
	}
	gormLog.Trace(context.Background(), time.Now(), fc, errors.New("syntax error"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Error")
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error,
		WithIgnoreRecordNotFoundError(true))

	fc := func() (string, int64) {
		return "SELECT * FROM billing_records WHERE share_token = ?", 0
	}
	gormLog.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn,
		WithSlowThreshold(time.Nanosecond))

	begin := time.Now().Add(-time.Second)
	fc := func() (string, int64) {
		return "SELECT * FROM billing_records", 10
	}
	gormLog.Trace(context.Background(), begin, fc, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SLOW SQL")
}

func TestGormLogger_Trace_NormalQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

	fc := func() (string, int64) {
		return "SELECT * FROM billing_records", 5
	}
	gormLog.Trace(context.Background(), time.Now(), fc, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Query")
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Silent)

	fc := func() (string, int64) {
		return "SELECT * FROM billing_records", 5
	}
	gormLog.Trace(context.Background(), time.Now(), fc, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_WithRequestID(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "test-req-id")
	fc := func() (string, int64) {
		return "SELECT * FROM billing_records", 5
	}
	gormLog.Trace(ctx, time.Now(), fc, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	hasRequestID := false
	for _, field := range logs[0].Context {
		if field.Key == "request_id" {
			hasRequestID = true
			assert.Equal(t, "test-req-id", field.String)
		}
	}
	assert.True(t, hasRequestID, "request_id should be in log fields")
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)
	var _ gormlogger.Interface = gormLog
}
