package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies string-to-level conversion and the fallback.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	level, ok := ParseLogLevel("debug")
	require.True(t, ok)
	require.Equal(t, zapcore.DebugLevel, level)

	level, ok = ParseLogLevel(" WARN ")
	require.True(t, ok)
	require.Equal(t, zapcore.WarnLevel, level)

	level, ok = ParseLogLevel("gibberish")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, level)
}

// TestFromContextFallback ensures the global logger is used when the context carries none.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	require.Equal(t, Logger(), FromContext(context.Background()))
}

// TestContextRoundtrip ensures a logger attached to a context is returned unchanged.
func TestContextRoundtrip(t *testing.T) {
	t.Parallel()

	l := zap.NewNop().Sugar()
	ctx := ToContext(context.Background(), l)
	require.Equal(t, l, FromContext(ctx))
}
