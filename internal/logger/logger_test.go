package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
		env   string
		want  zap.AtomicLevel
	}{
		{"production info", "info", "production", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"development debug", "DEBUG", "development", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warn with spaces", " warn ", "production", zap.NewAtomicLevelAt(zap.WarnLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.env)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want.Level()))
			assert.False(t, log.Core().Enabled(tt.want.Level()-1))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "production")
	assert.Error(t, err)
}
