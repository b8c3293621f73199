package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		dev   bool
		want  zap.AtomicLevel
	}{
		{"debug", true, zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"info", false, zap.NewAtomicLevelAt(zap.InfoLevel)},
		{" WARN ", false, zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", true, zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, tt.dev)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want.Level()))
			if tt.want.Level() > zap.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want.Level()-1))
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger:")
}
