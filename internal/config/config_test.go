package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/deckmacro/internal/config/loader"
)

// testEnv isolates tests from the real DECKMACRO_ environment.
func testEnv() Option {
	return WithEnvLoader(loader.NewEnvLoaderWithMapping("DECKMACRO_TEST_", nil))
}

func writeSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "deckmacro.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"), testEnv())
	require.NoError(t, err)

	s := c.Settings()
	assert.Equal(t, DefaultHostURL, s.Host.URL)
	assert.Equal(t, slog.LevelInfo, s.Logging.Level)
	assert.Equal(t, "robotgo", s.Input.Backend)
	assert.Equal(t, 10*time.Millisecond, s.Input.TickSpacing)
}

func TestLoadFile(t *testing.T) {
	path := writeSettings(t, t.TempDir(), `
[host]
url = "ws://localhost:4000/ws"

[logging]
level = "debug"

[input]
backend = "dryrun"
tickSpacing = "25ms"
`)

	c, err := Load(path, testEnv())
	require.NoError(t, err)

	s := c.Settings()
	assert.Equal(t, "ws://localhost:4000/ws", s.Host.URL)
	assert.Equal(t, slog.LevelDebug, s.Logging.Level)
	assert.Equal(t, "dryrun", s.Input.Backend)
	assert.Equal(t, 25*time.Millisecond, s.Input.TickSpacing)
	assert.Equal(t, path, c.Path())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeSettings(t, t.TempDir(), `
[logging]
level = "warn"

[input]
tickSpacing = 5
`)
	t.Setenv("DECKMACRO_TEST_LOGGING_LEVEL", "error")
	t.Setenv("DECKMACRO_TEST_INPUT_BACKEND", "dryrun")

	c, err := Load(path, testEnv())
	require.NoError(t, err)

	s := c.Settings()
	assert.Equal(t, slog.LevelError, s.Logging.Level)
	assert.Equal(t, "dryrun", s.Input.Backend)
	assert.Equal(t, 5*time.Millisecond, s.Input.TickSpacing, "integers are milliseconds")
}

func TestEnvOnly(t *testing.T) {
	t.Setenv("DECKMACRO_TEST_INPUT_TICK_SPACING", "3ms")

	c, err := Load("", testEnv())
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, c.Settings().Input.TickSpacing)
	require.NoError(t, c.Watch())
	require.NoError(t, c.Close())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(map[string]any{
		"host":    map[string]any{"url": ""},
		"logging": map[string]any{"level": "chatty"},
		"input": map[string]any{
			"backend":     int64(3),
			"tickSpacing": "soon",
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "host.url", verr.Path)

	for _, path := range []string{"host.url", "logging.level", "input.backend", "input.tickSpacing"} {
		assert.Contains(t, err.Error(), path)
	}
}

func TestDecodeRejectsNegativeSpacing(t *testing.T) {
	_, err := Decode(map[string]any{
		"input": map[string]any{"tickSpacing": "-1ms"},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestParseErrorKeepsSettings(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, `[input]
backend = "dryrun"
`)
	c, err := Load(path, testEnv())
	require.NoError(t, err)

	writeSettings(t, dir, "[input\n")
	err = c.Reload()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)
	assert.Equal(t, "dryrun", c.Settings().Input.Backend)
}

func TestOnChange(t *testing.T) {
	path := writeSettings(t, t.TempDir(), `[logging]
level = "debug"
`)
	c := New(path, testEnv())
	assert.Equal(t, slog.LevelInfo, c.Settings().Logging.Level)

	var got Settings
	var calls int
	c.OnChange(func(s Settings) {
		got = s
		calls++
	})

	require.NoError(t, c.Reload())
	assert.Equal(t, 1, calls)
	assert.Equal(t, slog.LevelDebug, got.Logging.Level)
}

func TestOnChangeDuringReload(t *testing.T) {
	path := writeSettings(t, t.TempDir(), `[logging]
level = "warn"
`)
	c := New(path, testEnv())

	var outer, inner int
	c.OnChange(func(Settings) {
		outer++
		c.OnChange(func(Settings) { inner++ })
	})

	require.NoError(t, c.Reload())
	assert.Equal(t, 1, outer)
	assert.Zero(t, inner)

	require.NoError(t, c.Reload())
	assert.Equal(t, 2, outer)
	assert.Equal(t, 1, inner)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, `[logging]
level = "info"
`)
	c, err := Load(path, testEnv())
	require.NoError(t, err)
	defer c.Close()

	var level atomic.Int64
	c.OnChange(func(s Settings) { level.Store(int64(s.Logging.Level)) })
	require.NoError(t, c.Watch())
	require.NoError(t, c.Watch())

	writeSettings(t, dir, `[logging]
level = "warn"
`)
	require.Eventually(t, func() bool {
		return slog.Level(level.Load()) == slog.LevelWarn
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, slog.LevelWarn, c.Settings().Logging.Level)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Watch(), ErrClosed)
}
