package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNew_BuildsLogger(t *testing.T) {
	l, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	require.NotNil(t, l)

	child := l.With(String("component", "test"))
	assert.NotNil(t, child)
}

func TestNew_Stderr(t *testing.T) {
	l, err := New(Config{Level: "warn", Stderr: true})
	require.NoError(t, err)
	l.Warn("to stderr")
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, &NoOpLogger{}, OrNop(nil))

	nop := NewNop()
	assert.Same(t, nop, OrNop(nop))
}
