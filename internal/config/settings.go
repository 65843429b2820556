package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/deckmacro/internal/config/loader"
)

// Default values.
const (
	DefaultHostURL     = "ws://127.0.0.1:19999/plugin"
	DefaultBackend     = "robotgo"
	DefaultTickSpacing = 10 * time.Millisecond
)

// backends lists the accepted input.backend values.
var backends = map[string]bool{
	"robotgo": true,
	"dryrun":  true,
}

// Settings is the typed daemon configuration.
type Settings struct {
	Host    HostSettings
	Logging LoggingSettings
	Input   InputSettings
}

// HostSettings configures the connection to the control-surface host.
type HostSettings struct {
	// URL is the host's websocket endpoint.
	URL string
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	Level slog.Level
}

// InputSettings configures input emission.
type InputSettings struct {
	// Backend selects the injector: "robotgo" or "dryrun".
	Backend string

	// TickSpacing is the wait before each wheel click.
	TickSpacing time.Duration
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Host:    HostSettings{URL: DefaultHostURL},
		Logging: LoggingSettings{Level: slog.LevelInfo},
		Input: InputSettings{
			Backend:     DefaultBackend,
			TickSpacing: DefaultTickSpacing,
		},
	}
}

// Decode builds Settings from a merged settings map. Absent values keep
// their defaults. All invalid values are reported together.
func Decode(data map[string]any) (Settings, error) {
	s := Default()
	var errs []error

	if v, ok, err := lookupString(data, "host.url"); err != nil {
		errs = append(errs, err)
	} else if ok {
		if v == "" {
			errs = append(errs, &ValidationError{Path: "host.url", Message: "must not be empty", Value: v})
		} else {
			s.Host.URL = v
		}
	}

	if v, ok, err := lookupString(data, "logging.level"); err != nil {
		errs = append(errs, err)
	} else if ok {
		if err := s.Logging.Level.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: v})
		}
	}

	if v, ok, err := lookupString(data, "input.backend"); err != nil {
		errs = append(errs, err)
	} else if ok {
		if !backends[v] {
			errs = append(errs, &ValidationError{Path: "input.backend", Message: "must be robotgo or dryrun", Value: v})
		} else {
			s.Input.Backend = v
		}
	}

	if d, ok, err := lookupDuration(data, "input.tickSpacing"); err != nil {
		errs = append(errs, err)
	} else if ok {
		if d < 0 {
			errs = append(errs, &ValidationError{Path: "input.tickSpacing", Message: "must not be negative", Value: d})
		} else {
			s.Input.TickSpacing = d
		}
	}

	return s, errors.Join(errs...)
}

func lookupString(data map[string]any, path string) (string, bool, error) {
	v, ok := loader.Lookup(data, path)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, &TypeError{Path: path, Expected: "string", Actual: fmt.Sprintf("%T", v)}
	}
	return s, true, nil
}

// lookupDuration accepts a duration string ("10ms"), a time.Duration from
// the environment, or an integer number of milliseconds.
func lookupDuration(data map[string]any, path string) (time.Duration, bool, error) {
	v, ok := loader.Lookup(data, path)
	if !ok {
		return 0, false, nil
	}
	switch d := v.(type) {
	case time.Duration:
		return d, true, nil
	case int64:
		return time.Duration(d) * time.Millisecond, true, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, false, &ValidationError{Path: path, Message: "invalid duration", Value: d}
		}
		return parsed, true, nil
	default:
		return 0, false, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%T", v)}
	}
}
