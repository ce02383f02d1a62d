package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/task-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level falls back to info", "verbose"},
		{"case insensitive", "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tt.logLevel})
			require.NoError(t, err)
			assert.NotNil(t, logger)
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestFromContextOrDefault(t *testing.T) {
	base := slog.Default()
	scoped := base.With(slog.String("trace_id", "abc"))

	t.Run("returns context logger when present", func(t *testing.T) {
		ctx := WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, FromContextOrDefault(ctx, base))
	})

	t.Run("falls back to provided default", func(t *testing.T) {
		assert.Same(t, base, FromContextOrDefault(context.Background(), base))
	})

	t.Run("falls back to slog default when both absent", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}
