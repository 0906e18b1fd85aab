package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		// Given: a config file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: loading it
		conf := MustLoad(path)

		// Then: every other value falls back to its default
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "8080", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 20*time.Second, conf.Match.ResetDelay)
		assert.Equal(t, 100, conf.Match.EmptyTickLimit)
		assert.Equal(t, 10, conf.Match.OpenTickLimit)
		assert.Equal(t, int64(10), conf.Score.WinPoints)
		assert.Equal(t, int64(5), conf.Score.DrawPoints)
		assert.True(t, conf.Score.RequireRegistered)
		assert.Equal(t, LeaderboardDriverRedis, conf.Leaderboard.Driver)
	})

	t.Run("overrides", func(t *testing.T) {
		// Given: a config file with match timing
		path := writeConfig(t, "match:\n  tick-rate: 5\n  reset-delay: 3s\nscore:\n  require-registered: false\n")

		// When: loading it
		conf := MustLoad(path)

		// Then: the file wins over defaults
		assert.Equal(t, 200*time.Millisecond, conf.Match.TickInterval())
		assert.Equal(t, 3*time.Second, conf.Match.ResetDelay)
		assert.False(t, conf.Score.RequireRegistered)
	})

	t.Run("missing file panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
