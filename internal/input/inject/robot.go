//go:build robotgo

package inject

import (
	"github.com/go-vgo/robotgo"

	"github.com/dshills/deckmacro/internal/input/key"
)

// Robot injects input into the running desktop session through robotgo.
// Note: building this requires cgo and the platform's input development
// headers. Default builds use a stub, see build tags (robotgo).
type Robot struct{}

// NewRobot returns the robotgo injector.
func NewRobot() (Injector, error) {
	return Robot{}, nil
}

// KeyDown implements Injector.
func (Robot) KeyDown(code key.Code) error {
	name, err := robotName(code)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "down")
}

// KeyUp implements Injector.
func (Robot) KeyUp(code key.Code) error {
	name, err := robotName(code)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "up")
}

// ScrollVertical implements Injector.
func (Robot) ScrollVertical(delta int) error {
	robotgo.Scroll(0, delta)
	return nil
}

// Chord implements Chorder. Chords of left-hand modifiers go out as a single
// robotgo tap; anything else is sent as separate toggles.
func (r Robot) Chord(mods []key.Code, code key.Code) error {
	flags, ok := robotFlags(mods)
	if !ok || code == key.None {
		return chordSequence(r, mods, code)
	}
	name, err := robotName(code)
	if err != nil {
		return err
	}
	return robotgo.KeyTap(name, flags)
}
