package key

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the key identifier from the extra fields the
// key-capture control appends.
const Delimiter = "___"

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Binding is a decoded key identifier.
type Binding struct {
	// ID is the key identifier the binding was decoded from.
	ID string

	// Code is the non-modifier key, or None for modifier-only bindings.
	Code Code

	// Modifiers are the abstract modifiers in the order they were written.
	Modifiers []ModifierKey
}

// IsEmpty returns true if the binding presses nothing.
func (b Binding) IsEmpty() bool {
	return b.Code == None && len(b.Modifiers) == 0
}

// Resolve maps the binding to the physical keys to press.
func (b Binding) Resolve(preferRight, includeRightAlt bool) Resolved {
	return Resolved{
		Code:      b.Code,
		Modifiers: Resolve(b.Modifiers, preferRight, includeRightAlt),
	}
}

// Resolved is a binding ready to be replayed.
type Resolved struct {
	// Code is the key to press, or None.
	Code Code

	// Modifiers are held around the key press.
	Modifiers Modifier
}

// String returns a representation like "LeftControl+S".
func (r Resolved) String() string {
	switch {
	case r.Modifiers.IsEmpty():
		if r.Code == None {
			return ""
		}
		return r.Code.String()
	case r.Code == None:
		return r.Modifiers.String()
	default:
		return r.Modifiers.String() + "+" + r.Code.String()
	}
}

// Label returns the key identifier of an encoded binding: everything before
// the first Delimiter.
func Label(encoded string) string {
	id, _, _ := strings.Cut(encoded, Delimiter)
	return strings.TrimSpace(id)
}

// Decode parses an encoded binding produced by the host's key-capture control.
// Malformed input decodes to the zero Binding; Decode never fails.
// Input without a Delimiter is read as a bare label.
func Decode(encoded string) Binding {
	b, err := Parse(Label(encoded))
	if err != nil {
		return Binding{}
	}
	return b
}

// Parse parses a key identifier such as "Control+Shift+P".
//
// Supported formats:
//   - Single key: "A", "7", "F4", "Enter", "NumPad1"
//   - With modifiers: "Control+S", "Alt+F4", "ControlOrCommand+Shift+P"
//   - Modifiers only: "Shift", "Control+Alt"
func Parse(spec string) (Binding, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Binding{}, ErrEmptySpec
	}

	parts := strings.Split(spec, "+")
	var mods []ModifierKey

	// All but the last part are modifiers
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierKeyFromName(p)
		if mod == ModNone {
			return Binding{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, strings.TrimSpace(p))
		}
		mods = appendModifier(mods, mod)
	}

	// Last part is the key, or one more modifier
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return Binding{}, fmt.Errorf("%w: missing key in %q", ErrInvalidSpec, spec)
	}
	if mod := ModifierKeyFromName(last); mod != ModNone {
		return Binding{ID: spec, Modifiers: appendModifier(mods, mod)}, nil
	}

	code := CodeFromName(last)
	if code == None {
		return Binding{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, last)
	}
	return Binding{ID: spec, Code: code, Modifiers: mods}, nil
}

// MustParse parses a key identifier and panics on error.
// Use only for known-valid specs in initialization code and tests.
func MustParse(spec string) Binding {
	b, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return b
}

func appendModifier(mods []ModifierKey, mod ModifierKey) []ModifierKey {
	for _, m := range mods {
		if m == mod {
			return mods
		}
	}
	return append(mods, mod)
}
