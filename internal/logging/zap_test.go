package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.With("req_id", "42").Warn(ctx, "wrn", "b", 2)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "dbg", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])

	assert.Equal(t, "wrn", entries[1].Message)
	assert.Equal(t, "42", entries[1].ContextMap()["req_id"])
	assert.Equal(t, int64(2), entries[1].ContextMap()["b"])
}

func TestNewZapLogger_InvalidLevel(t *testing.T) {
	_, err := NewZapLogger("loud")
	require.Error(t, err)
}

func TestNew_SelectsImplementation(t *testing.T) {
	l, err := New(nil, "info", "json")
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	l, err = New(&discard{}, "debug", "text")
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)

	_, err = New(&discard{}, "nope", "text")
	require.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop().With("k", "v")
	l.Info(context.Background(), "ignored")
	l.Error(context.Background(), "ignored")
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }
