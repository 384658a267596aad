package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewModes(t *testing.T) {
	tests := []struct {
		mode  string
		level string
		debug bool
		info  bool
	}{
		{"production", "", false, true},
		{"prod", "warn", false, false},
		{"development", "", true, true},
		{"dev", "error", false, false},
		{"", "", false, true},
		{"silent", "debug", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.level, func(t *testing.T) {
			l, err := New(tt.mode, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	_, err := New("verbose", "")
	assert.ErrorContains(t, err, "unknown log mode")

	_, err = New("production", "loud")
	assert.ErrorContains(t, err, "log level")
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode("Development"))
	assert.True(t, ValidMode("silent"))
	assert.False(t, ValidMode("json"))
}
