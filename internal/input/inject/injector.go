package inject

import (
	"errors"
	"fmt"

	"github.com/dshills/deckmacro/internal/input/key"
)

// Errors returned by injectors.
var (
	// ErrUnavailable indicates the backend was not compiled in or cannot run.
	ErrUnavailable = errors.New("input injection unavailable")

	// ErrUnsupportedKey indicates the backend has no mapping for a key code.
	ErrUnsupportedKey = errors.New("unsupported key")
)

// Injector emits synthetic keyboard and mouse-wheel input.
type Injector interface {
	// KeyDown presses a key.
	KeyDown(code key.Code) error

	// KeyUp releases a key.
	KeyUp(code key.Code) error

	// ScrollVertical turns the wheel one click. Positive is up, negative is down.
	ScrollVertical(delta int) error
}

// Chorder is implemented by injectors that can emit a whole chord in one
// indivisible call.
type Chorder interface {
	// Chord presses mods in order, taps code, then releases mods in reverse.
	// code may be key.None.
	Chord(mods []key.Code, code key.Code) error
}

// New returns the injector for a backend name.
func New(backend string) (Injector, error) {
	switch backend {
	case "robotgo", "":
		return NewRobot()
	case "dryrun", "recorder":
		return NewRecorder(), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnavailable, backend)
	}
}
