package inject

import (
	"fmt"
	"strings"

	"github.com/dshills/deckmacro/internal/input/key"
)

// robotNames maps virtual-key codes to robotgo key names.
// Letters, digits and function keys are added in init.
var robotNames = map[key.Code]string{
	key.Backspace:      "backspace",
	key.Tab:            "tab",
	key.Enter:          "enter",
	key.Escape:         "escape",
	key.Space:          "space",
	key.PageUp:         "pageup",
	key.PageDown:       "pagedown",
	key.End:            "end",
	key.Home:           "home",
	key.Left:           "left",
	key.Up:             "up",
	key.Right:          "right",
	key.Down:           "down",
	key.PrintScreen:    "printscreen",
	key.Insert:         "insert",
	key.Delete:         "delete",
	key.Apps:           "menu",
	key.NumLock:        "num_lock",
	key.Capital:        "capslock",
	key.LWin:           "lcmd",
	key.RWin:           "rcmd",
	key.LShift:         "lshift",
	key.RShift:         "rshift",
	key.LControl:       "lctrl",
	key.RControl:       "rctrl",
	key.LMenu:          "lalt",
	key.RMenu:          "ralt",
	key.Multiply:       "num*",
	key.Add:            "num+",
	key.Subtract:       "num-",
	key.Decimal:        "num.",
	key.Divide:         "num/",
	key.VolumeMute:     "audio_mute",
	key.VolumeDown:     "audio_vol_down",
	key.VolumeUp:       "audio_vol_up",
	key.MediaNext:      "audio_next",
	key.MediaPrev:      "audio_prev",
	key.MediaStop:      "audio_stop",
	key.MediaPlayPause: "audio_play",
	key.Semicolon:      ";",
	key.Equals:         "=",
	key.Comma:          ",",
	key.Minus:          "-",
	key.Period:         ".",
	key.Slash:          "/",
	key.Backquote:      "`",
	key.BracketLeft:    "[",
	key.Backslash:      "\\",
	key.BracketRight:   "]",
	key.Quote:          "'",
}

func init() {
	for c := key.KeyA; c <= key.KeyZ; c++ {
		robotNames[c] = strings.ToLower(string(rune(c)))
	}
	for c := key.Digit0; c <= key.Digit9; c++ {
		robotNames[c] = string(rune(c))
	}
	for i := 0; i <= 9; i++ {
		robotNames[key.NumPad0+key.Code(i)] = fmt.Sprintf("num%d", i)
	}
	for i := 0; i < 24; i++ {
		robotNames[key.F1+key.Code(i)] = fmt.Sprintf("f%d", i+1)
	}
}

// robotName returns the robotgo name for code.
func robotName(code key.Code) (string, error) {
	name, ok := robotNames[code]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, code)
	}
	return name, nil
}

// robotFlagNames are the modifiers robotgo can send as tap flags. Its flags
// do not tell left from right, so only the left-hand keys are listed.
var robotFlagNames = map[key.Code]string{
	key.LShift:   "shift",
	key.LControl: "ctrl",
	key.LMenu:    "alt",
	key.LWin:     "cmd",
}

// robotFlags returns the tap flags for mods. It reports false if any modifier
// has no flag, in which case the chord must be sent as separate toggles.
func robotFlags(mods []key.Code) ([]string, bool) {
	flags := make([]string, 0, len(mods))
	for _, m := range mods {
		f, ok := robotFlagNames[m]
		if !ok {
			return nil, false
		}
		flags = append(flags, f)
	}
	return flags, true
}
