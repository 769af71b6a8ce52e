package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"taskType": "match-templates"}).
		WithError(errors.New("boom")).
		Warn("catalog degraded", map[string]interface{}{"b": 2, "a": 1})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		entry := entries[0]
		assert.Equal(t, "catalog degraded", entry.Message)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		ctx := entry.ContextMap()
		assert.Equal(t, "match-templates", ctx["taskType"])
		assert.Equal(t, "boom", ctx["error"])
		assert.EqualValues(t, 1, ctx["a"])
	}
}

func TestZapWrapper_NilErrorKeepsLogger(t *testing.T) {
	log := NewNoOpLogger()

	assert.Same(t, log, log.WithError(nil))
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New("debug", format)
		assert.NoError(t, err, format)
		assert.NotNil(t, l, format)
	}
}
