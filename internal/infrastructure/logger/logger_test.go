package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	l := New(Options{Level: "debug", Format: "json", Output: "stdout"})
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New(Options{Level: "warn", Format: "console", Output: "stderr"})
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestContextHelpers(t *testing.T) {
	base := zap.NewNop()

	t.Run("logger round-trips through context", func(t *testing.T) {
		ctx := WithContext(context.Background(), base)
		assert.Equal(t, base, FromContext(ctx))
	})

	t.Run("missing logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request and tenant IDs round-trip", func(t *testing.T) {
		ctx, enriched := WithRequestID(context.Background(), base, "req-123")
		assert.NotNil(t, enriched)
		assert.Equal(t, "req-123", GetRequestID(ctx))

		ctx, _ = WithTenantID(ctx, base, "tenant-456")
		assert.Equal(t, "tenant-456", GetTenantID(ctx))
	})

	t.Run("absent IDs are empty", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetTenantID(context.Background()))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
