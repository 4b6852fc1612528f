package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range cases {
		l, err := New(in)
		require.NoError(t, err, in)
		assert.True(t, l.Core().Enabled(want), in)
		if want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(want-1), in)
		}
	}
}

func TestL_BeforeInit(t *testing.T) {
	Logger = nil
	assert.NotNil(t, L())
	assert.NotPanics(t, func() {
		Info("ignored")
		Sync()
	})

	require.NoError(t, Init("info"))
	assert.Same(t, Logger, L())
}
