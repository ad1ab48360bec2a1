package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogConfigFromEnv(t *testing.T) {
	t.Run("uses default values when env vars not set", func(t *testing.T) {
		for _, key := range []string{
			"LOG_FILE_ENABLED", "LOG_FILE_PATH", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS",
			"LOG_MAX_AGE_DAYS", "LOG_COMPRESS", "LOG_LEVEL", "LOG_JSON_FORMAT", "LOG_STDERR",
		} {
			t.Setenv(key, "")
		}

		config := NewLogConfigFromEnv()

		assert.False(t, config.Enabled, "File logging is opt-in")
		assert.Equal(t, "./logs/shoppinglist-api.log", config.FilePath)
		assert.Equal(t, 100, config.MaxSize)
		assert.Equal(t, 3, config.MaxBackups)
		assert.Equal(t, 28, config.MaxAge)
		assert.True(t, config.Compress)
		assert.Equal(t, "info", config.Level)
		assert.False(t, config.JSONFormat)
		assert.False(t, config.Stderr)
	})

	t.Run("uses custom values from environment", func(t *testing.T) {
		t.Setenv("LOG_FILE_ENABLED", "true")
		t.Setenv("LOG_FILE_PATH", "/var/log/custom.log")
		t.Setenv("LOG_MAX_SIZE_MB", "50")
		t.Setenv("LOG_MAX_BACKUPS", "5")
		t.Setenv("LOG_MAX_AGE_DAYS", "7")
		t.Setenv("LOG_COMPRESS", "false")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_JSON_FORMAT", "true")
		t.Setenv("LOG_STDERR", "true")

		config := NewLogConfigFromEnv()

		assert.True(t, config.Enabled)
		assert.Equal(t, "/var/log/custom.log", config.FilePath)
		assert.Equal(t, 50, config.MaxSize)
		assert.Equal(t, 5, config.MaxBackups)
		assert.Equal(t, 7, config.MaxAge)
		assert.False(t, config.Compress)
		assert.Equal(t, "debug", config.Level)
		assert.True(t, config.JSONFormat)
		assert.True(t, config.Stderr)
	})

	t.Run("falls back to defaults on unparsable values", func(t *testing.T) {
		t.Setenv("LOG_MAX_SIZE_MB", "invalid")
		t.Setenv("LOG_MAX_BACKUPS", "not-a-number")
		t.Setenv("LOG_COMPRESS", "maybe")

		config := NewLogConfigFromEnv()

		assert.Equal(t, 100, config.MaxSize)
		assert.Equal(t, 3, config.MaxBackups)
		assert.True(t, config.Compress)
	})
}

func TestInitLogger(t *testing.T) {
	t.Run("initializes with text format", func(t *testing.T) {
		logger := InitLogger(&LogConfig{Level: "info"})

		assert.Same(t, Logger, logger)
		assert.Equal(t, logrus.InfoLevel, logger.Level)
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	})

	t.Run("initializes with JSON format", func(t *testing.T) {
		logger := InitLogger(&LogConfig{Level: "debug", JSONFormat: true})

		assert.Equal(t, logrus.DebugLevel, logger.Level)
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	})

	t.Run("handles invalid log level", func(t *testing.T) {
		logger := InitLogger(&LogConfig{Level: "invalid-level"})
		assert.Equal(t, logrus.InfoLevel, logger.Level)
	})

	t.Run("writes to the rotating log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger := InitLogger(&LogConfig{
			Enabled:  true,
			FilePath: path,
			MaxSize:  1,
			Level:    "info",
			Stderr:   true,
		})

		logger.WithField("list_id", "L1").Info("list view published")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "list view published")
		assert.Contains(t, string(data), "list_id=L1")
	})
}
