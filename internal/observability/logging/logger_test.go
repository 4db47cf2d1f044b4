package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		require.NoError(t, SetLogLevel(level))
		assert.Equal(t, want, GetLogLevel())
	}

	assert.Error(t, SetLogLevel("verbose"))
}

func TestNewLoggerRejectsInvalidLevel(t *testing.T) {
	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestFilterAttrRedactsSensitiveKeys(t *testing.T) {
	redacted := filterAttr(nil, slog.String("token", "secret-value"))
	assert.Equal(t, slog.Attr{}, redacted)

	kept := filterAttr(nil, slog.String("principal", "spiffe://foo"))
	assert.Equal(t, "principal", kept.Key)
}
