package key

import "strings"

// ModifierKey is an abstract modifier as captured by the host.
// It carries no left/right information.
type ModifierKey uint8

const (
	// ModNone indicates no modifier.
	ModNone ModifierKey = iota

	// ModControl indicates the Control key.
	ModControl

	// ModControlOrCommand indicates Control, or Command on macOS.
	// It resolves exactly like ModControl on Windows hosts.
	ModControlOrCommand

	// ModAlt indicates the Alt key.
	ModAlt

	// ModShift indicates the Shift key.
	ModShift

	// ModWindows indicates the Windows key.
	ModWindows

	// ModCapsLock indicates Caps Lock used as a modifier.
	ModCapsLock
)

// String returns the host's name for the modifier.
func (m ModifierKey) String() string {
	switch m {
	case ModControl:
		return "Control"
	case ModControlOrCommand:
		return "ControlOrCommand"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModWindows:
		return "Windows"
	case ModCapsLock:
		return "CapsLock"
	default:
		return "None"
	}
}

// modifierNameMap maps modifier names (lowercase) to ModifierKey values.
var modifierNameMap = map[string]ModifierKey{
	"control":          ModControl,
	"ctrl":             ModControl,
	"controlorcommand": ModControlOrCommand,
	"command":          ModControlOrCommand,
	"cmd":              ModControlOrCommand,
	"alt":              ModAlt,
	"menu":             ModAlt,
	"shift":            ModShift,
	"windows":          ModWindows,
	"win":              ModWindows,
	"capslock":         ModCapsLock,
}

// ModifierKeyFromName returns the ModifierKey for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierKeyFromName(name string) ModifierKey {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return ModNone
}

// Modifier is a set of physical modifier keys.
type Modifier uint16

const (
	// NoModifiers is the empty set.
	NoModifiers Modifier = 0

	// LeftControl is the left Control key.
	LeftControl Modifier = 1 << (iota - 1)
	// RightControl is the right Control key.
	RightControl
	// LeftAlt is the left Alt key.
	LeftAlt
	// RightAlt is the right Alt key (AltGr on many layouts).
	RightAlt
	// LeftShift is the left Shift key.
	LeftShift
	// RightShift is the right Shift key.
	RightShift
	// LeftWindows is the left Windows key.
	LeftWindows
	// RightWindows is the right Windows key.
	RightWindows
	// CapsLock is the Caps Lock key.
	CapsLock
)

// modifierOrder is the press order; releases walk it backwards.
var modifierOrder = []struct {
	mod  Modifier
	code Code
	name string
}{
	{LeftControl, LControl, "LeftControl"},
	{RightControl, RControl, "RightControl"},
	{LeftAlt, LMenu, "LeftAlt"},
	{RightAlt, RMenu, "RightAlt"},
	{LeftShift, LShift, "LeftShift"},
	{RightShift, RShift, "RightShift"},
	{LeftWindows, LWin, "LeftWindows"},
	{RightWindows, RWin, "RightWindows"},
	{CapsLock, Capital, "CapsLock"},
}

// Has returns true if m contains every key in mod.
func (m Modifier) Has(mod Modifier) bool {
	return mod != NoModifiers && m&mod == mod
}

// With returns a new set with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new set with mod removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == NoModifiers
}

// Len returns the number of physical keys in the set.
func (m Modifier) Len() int {
	n := 0
	for _, e := range modifierOrder {
		if m&e.mod != 0 {
			n++
		}
	}
	return n
}

// Codes returns the virtual-key codes in press order.
func (m Modifier) Codes() []Code {
	codes := make([]Code, 0, m.Len())
	for _, e := range modifierOrder {
		if m&e.mod != 0 {
			codes = append(codes, e.code)
		}
	}
	return codes
}

// String returns a representation like "LeftControl+RightAlt".
func (m Modifier) String() string {
	if m == NoModifiers {
		return ""
	}
	var parts []string
	for _, e := range modifierOrder {
		if m&e.mod != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "+")
}

// Resolve maps abstract modifiers to physical keys.
//
// Each modifier resolves to its left-hand key, or its right-hand key when
// preferRight is set. CapsLock ignores preferRight. When includeRightAlt is
// set, RightAlt is added to whatever the modifiers resolve to.
func Resolve(mods []ModifierKey, preferRight, includeRightAlt bool) Modifier {
	var result Modifier
	for _, mod := range mods {
		result = result.With(resolveOne(mod, preferRight))
	}
	if includeRightAlt {
		result = result.With(RightAlt)
	}
	return result
}

func resolveOne(mod ModifierKey, preferRight bool) Modifier {
	switch mod {
	case ModControl, ModControlOrCommand:
		if preferRight {
			return RightControl
		}
		return LeftControl
	case ModAlt:
		if preferRight {
			return RightAlt
		}
		return LeftAlt
	case ModShift:
		if preferRight {
			return RightShift
		}
		return LeftShift
	case ModWindows:
		if preferRight {
			return RightWindows
		}
		return LeftWindows
	case ModCapsLock:
		return CapsLock
	default:
		return NoModifiers
	}
}
