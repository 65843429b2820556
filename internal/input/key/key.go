package key

import (
	"fmt"
	"strings"
)

// Code is a Windows virtual-key code.
type Code uint16

// None represents no key.
const None Code = 0

// Special keys
const (
	Backspace   Code = 0x08
	Tab         Code = 0x09
	Clear       Code = 0x0C
	Enter       Code = 0x0D
	Pause       Code = 0x13
	Capital     Code = 0x14
	Escape      Code = 0x1B
	Space       Code = 0x20
	PageUp      Code = 0x21
	PageDown    Code = 0x22
	End         Code = 0x23
	Home        Code = 0x24
	Left        Code = 0x25
	Up          Code = 0x26
	Right       Code = 0x27
	Down        Code = 0x28
	PrintScreen Code = 0x2C
	Insert      Code = 0x2D
	Delete      Code = 0x2E
	Apps        Code = 0x5D
	NumLock     Code = 0x90
	ScrollLock  Code = 0x91
)

// Character keys. Letters and digits share their ASCII values.
const (
	Digit0 Code = 0x30
	Digit9 Code = 0x39
	KeyA   Code = 0x41
	KeyZ   Code = 0x5A
)

// Modifier keys
const (
	LWin     Code = 0x5B
	RWin     Code = 0x5C
	LShift   Code = 0xA0
	RShift   Code = 0xA1
	LControl Code = 0xA2
	RControl Code = 0xA3
	LMenu    Code = 0xA4
	RMenu    Code = 0xA5
)

// Keypad keys
const (
	NumPad0   Code = 0x60
	NumPad9   Code = 0x69
	Multiply  Code = 0x6A
	Add       Code = 0x6B
	Separator Code = 0x6C
	Subtract  Code = 0x6D
	Decimal   Code = 0x6E
	Divide    Code = 0x6F
)

// Function keys
const (
	F1  Code = 0x70
	F12 Code = 0x7B
	F24 Code = 0x87
)

// Media keys
const (
	VolumeMute     Code = 0xAD
	VolumeDown     Code = 0xAE
	VolumeUp       Code = 0xAF
	MediaNext      Code = 0xB0
	MediaPrev      Code = 0xB1
	MediaStop      Code = 0xB2
	MediaPlayPause Code = 0xB3
)

// Punctuation (US layout OEM keys)
const (
	Semicolon    Code = 0xBA
	Equals       Code = 0xBB
	Comma        Code = 0xBC
	Minus        Code = 0xBD
	Period       Code = 0xBE
	Slash        Code = 0xBF
	Backquote    Code = 0xC0
	BracketLeft  Code = 0xDB
	Backslash    Code = 0xDC
	BracketRight Code = 0xDD
	Quote        Code = 0xDE
)

// codeNames holds the canonical name for each known code.
var codeNames = map[Code]string{
	Backspace:      "Backspace",
	Tab:            "Tab",
	Clear:          "Clear",
	Enter:          "Enter",
	Pause:          "Pause",
	Capital:        "CapsLock",
	Escape:         "Escape",
	Space:          "Space",
	PageUp:         "PageUp",
	PageDown:       "PageDown",
	End:            "End",
	Home:           "Home",
	Left:           "Left",
	Up:             "Up",
	Right:          "Right",
	Down:           "Down",
	PrintScreen:    "PrintScreen",
	Insert:         "Insert",
	Delete:         "Delete",
	Apps:           "Apps",
	NumLock:        "NumLock",
	ScrollLock:     "ScrollLock",
	LWin:           "LWin",
	RWin:           "RWin",
	LShift:         "LShift",
	RShift:         "RShift",
	LControl:       "LControl",
	RControl:       "RControl",
	LMenu:          "LAlt",
	RMenu:          "RAlt",
	Multiply:       "Multiply",
	Add:            "Add",
	Separator:      "Separator",
	Subtract:       "Subtract",
	Decimal:        "Decimal",
	Divide:         "Divide",
	VolumeMute:     "VolumeMute",
	VolumeDown:     "VolumeDown",
	VolumeUp:       "VolumeUp",
	MediaNext:      "MediaNext",
	MediaPrev:      "MediaPrevious",
	MediaStop:      "MediaStop",
	MediaPlayPause: "MediaPlayPause",
	Semicolon:      "Semicolon",
	Equals:         "Equals",
	Comma:          "Comma",
	Minus:          "Minus",
	Period:         "Period",
	Slash:          "Slash",
	Backquote:      "Backquote",
	BracketLeft:    "BracketLeft",
	Backslash:      "Backslash",
	BracketRight:   "BracketRight",
	Quote:          "Quote",
}

// keyNameMap maps key names (lowercase) to codes.
// Letters, digits, keypad digits and function keys are added in init.
var keyNameMap = map[string]Code{
	"backspace":      Backspace,
	"back":           Backspace,
	"bs":             Backspace,
	"tab":            Tab,
	"clear":          Clear,
	"enter":          Enter,
	"return":         Enter,
	"pause":          Pause,
	"capslock":       Capital,
	"capital":        Capital,
	"escape":         Escape,
	"esc":            Escape,
	"space":          Space,
	"pageup":         PageUp,
	"prior":          PageUp,
	"pgup":           PageUp,
	"pagedown":       PageDown,
	"next":           PageDown,
	"pgdn":           PageDown,
	"end":            End,
	"home":           Home,
	"left":           Left,
	"up":             Up,
	"right":          Right,
	"down":           Down,
	"printscreen":    PrintScreen,
	"snapshot":       PrintScreen,
	"insert":         Insert,
	"ins":            Insert,
	"delete":         Delete,
	"del":            Delete,
	"apps":           Apps,
	"numlock":        NumLock,
	"scrolllock":     ScrollLock,
	"scroll":         ScrollLock,
	"multiply":       Multiply,
	"add":            Add,
	"separator":      Separator,
	"subtract":       Subtract,
	"decimal":        Decimal,
	"divide":         Divide,
	"volumemute":     VolumeMute,
	"volumedown":     VolumeDown,
	"volumeup":       VolumeUp,
	"medianext":      MediaNext,
	"medianexttrack": MediaNext,
	"mediaprevious":  MediaPrev,
	"mediaprevtrack": MediaPrev,
	"mediastop":      MediaStop,
	"mediaplaypause": MediaPlayPause,
	"semicolon":      Semicolon,
	"oem1":           Semicolon,
	";":              Semicolon,
	"equals":         Equals,
	"oemplus":        Equals,
	"plus":           Equals,
	"=":              Equals,
	"comma":          Comma,
	"oemcomma":       Comma,
	",":              Comma,
	"minus":          Minus,
	"oemminus":       Minus,
	"-":              Minus,
	"period":         Period,
	"oemperiod":      Period,
	".":              Period,
	"slash":          Slash,
	"oem2":           Slash,
	"/":              Slash,
	"backquote":      Backquote,
	"oem3":           Backquote,
	"`":              Backquote,
	"bracketleft":    BracketLeft,
	"oem4":           BracketLeft,
	"[":              BracketLeft,
	"backslash":      Backslash,
	"oem5":           Backslash,
	"\\":             Backslash,
	"bracketright":   BracketRight,
	"oem6":           BracketRight,
	"]":              BracketRight,
	"quote":          Quote,
	"oem7":           Quote,
	"'":              Quote,
}

func init() {
	for c := KeyA; c <= KeyZ; c++ {
		name := string(rune(c))
		codeNames[c] = name
		keyNameMap[strings.ToLower(name)] = c
		keyNameMap["key"+strings.ToLower(name)] = c
	}
	for c := Digit0; c <= Digit9; c++ {
		name := string(rune(c))
		codeNames[c] = name
		keyNameMap[name] = c
		keyNameMap["d"+name] = c
		keyNameMap["digit"+name] = c
	}
	for i := 0; i <= 9; i++ {
		c := NumPad0 + Code(i)
		codeNames[c] = fmt.Sprintf("NumPad%d", i)
		keyNameMap[fmt.Sprintf("numpad%d", i)] = c
		keyNameMap[fmt.Sprintf("num%d", i)] = c
	}
	for i := 0; i < 24; i++ {
		c := F1 + Code(i)
		codeNames[c] = fmt.Sprintf("F%d", i+1)
		keyNameMap[fmt.Sprintf("f%d", i+1)] = c
	}
}

// String returns a human-readable name for the code.
func (c Code) String() string {
	if c == None {
		return "None"
	}
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(0x%02X)", uint16(c))
}

// IsLetter returns true if c is A-Z.
func (c Code) IsLetter() bool {
	return c >= KeyA && c <= KeyZ
}

// IsDigit returns true if c is a top-row digit.
func (c Code) IsDigit() bool {
	return c >= Digit0 && c <= Digit9
}

// IsFunctionKey returns true if c is F1-F24.
func (c Code) IsFunctionKey() bool {
	return c >= F1 && c <= F24
}

// IsKeypadKey returns true if c is on the numeric keypad.
func (c Code) IsKeypadKey() bool {
	return c >= NumPad0 && c <= Divide
}

// IsModifier returns true if c is one of the physical modifier keys.
func (c Code) IsModifier() bool {
	switch c {
	case LWin, RWin, LShift, RShift, LControl, RControl, LMenu, RMenu, Capital:
		return true
	}
	return false
}

// CodeFromName returns the code for a given name (case-insensitive).
// Returns None if the name is not recognized.
func CodeFromName(name string) Code {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := keyNameMap[name]; ok {
		return c
	}
	return None
}
