package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.WarnObj("probe failed", "probe_error", map[string]any{"probe_id": "p1"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "probe failed", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Contains(t, entries[0].ContextMap(), "probe_error")
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("ignored", "k", 1)
	assert.NoError(t, Close())
}

func TestNewHonoursLevel(t *testing.T) {
	l := NewStderr("warn")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}
