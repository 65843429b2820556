package config

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/dshills/deckmacro/internal/config/loader"
	"github.com/dshills/deckmacro/internal/config/watcher"
)

// Config holds the current Settings and reloads them on demand or when the
// settings file changes.
type Config struct {
	mu sync.RWMutex

	path    string
	file    *loader.TOMLLoader
	env     *loader.EnvLoader
	current Settings

	watcher  *watcher.Watcher
	handlers []func(Settings)
	closed   bool

	log *slog.Logger
	fs  loader.FileSystem
}

// Option configures a Config instance.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithFileSystem sets the file system the settings file is read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvLoader replaces the environment source.
func WithEnvLoader(env *loader.EnvLoader) Option {
	return func(c *Config) {
		c.env = env
	}
}

// New creates a Config for the settings file at path, holding defaults
// until Reload is called. An empty path reads only the environment.
func New(path string, opts ...Option) *Config {
	c := &Config{
		path:    path,
		current: Default(),
		log:     slog.Default(),
		fs:      loader.DefaultFS(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.env == nil {
		c.env = loader.NewEnvLoader(loader.EnvPrefix)
	}
	if path != "" {
		c.file = loader.NewTOMLLoaderWithFS(c.fs, path)
	}
	c.log = c.log.With("component", "config")
	return c
}

// Load creates a Config and reads its sources once.
func Load(path string, opts ...Option) (*Config, error) {
	c := New(path, opts...)
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the settings file path.
func (c *Config) Path() string {
	return c.path
}

// Settings returns the current settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// OnChange registers a handler called with the new settings after every
// successful reload.
func (c *Config) OnChange(fn func(Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// Reload re-reads all sources. On error the current settings are kept.
func (c *Config) Reload() error {
	var data map[string]any
	if c.file != nil {
		fileData, err := c.file.Load()
		if err != nil {
			return err
		}
		data = fileData
	}

	envData, err := c.env.Load()
	if err != nil {
		return err
	}
	data = loader.DeepMerge(data, envData)

	s, err := Decode(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = s
	handlers := slices.Clone(c.handlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(s)
	}
	return nil
}

// Watch reloads the settings whenever the file changes, until Close.
// Failed reloads are logged and the previous settings stay in effect.
func (c *Config) Watch() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.watcher != nil {
		return nil
	}

	w, err := watcher.New(watcher.WithLogger(c.log))
	if err != nil {
		return err
	}
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return err
	}
	w.OnChange(func(e watcher.Event) {
		if err := c.Reload(); err != nil {
			c.log.Error("settings reload failed", "path", e.Path, "op", e.Op.String(), "error", err)
			return
		}
		c.log.Info("settings reloaded", "path", e.Path)
	})
	c.watcher = w
	return nil
}

// Close stops watching.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.closed = true
	c.mu.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}
