package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with console format", func(t *testing.T) {
		l, err := New(DefaultConfig())

		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("creates logger with json format", func(t *testing.T) {
		l, err := New(ProductionConfig())

		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	})

	t.Run("parses warn aliases", func(t *testing.T) {
		assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
		assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	})
}

func TestNewForEnvironment(t *testing.T) {
	t.Run("production uses json config", func(t *testing.T) {
		l, err := NewForEnvironment("production")

		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("development uses console config", func(t *testing.T) {
		l, err := NewForEnvironment("development")

		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestContext(t *testing.T) {
	t.Run("round-trips logger through context", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)
		l := zap.New(core)

		ctx := WithContext(context.Background(), l)

		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("missing logger yields no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("request id is stored and enriches the logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		l := zap.New(core)

		ctx, enriched := WithRequestID(context.Background(), l, "req-123")
		enriched.Info("hello")

		assert.Equal(t, "req-123", GetRequestID(ctx))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
	})

	t.Run("actor email is stored and enriches the logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		l := zap.New(core)

		ctx, enriched := WithActor(context.Background(), l, "jane@example.com")
		enriched.Info("hello")

		assert.Equal(t, "jane@example.com", GetActor(ctx))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "jane@example.com", logs.All()[0].ContextMap()["actor"])
	})
}
