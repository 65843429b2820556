package macro

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/deckmacro/internal/input/key"
	"github.com/dshills/deckmacro/internal/input/replay"
)

// Parameter names as sent by the host's configuration editor.
const (
	ParamKey                 = "Key"
	ParamRightModifier       = "RightModifier"
	ParamRightAlt            = "RightAlt"
	ParamKeypressDuration    = "KeypressDuration"
	ParamRepeat              = "Repeat"
	ParamRepeatInterval      = "RepeatInterval"
	ParamMouseWheelDirection = "MouseWheelDirection"
	ParamDelayAfterKeypress  = "DelayAfterKeypress"
	ParamMouseWheelClicks    = "MousWheelClicks" // sic, the host's name
	ParamMaxRampUpMultiplier = "MaxRampUpMultiplier"
)

// keyboardParams and wheelParams fix the order parameters enter a fingerprint.
var (
	keyboardParams = []string{
		ParamKey, ParamRightModifier, ParamRightAlt, ParamKeypressDuration,
		ParamRepeat, ParamRepeatInterval,
	}
	wheelParams = []string{
		ParamKey, ParamRightModifier, ParamRightAlt, ParamMouseWheelDirection,
		ParamDelayAfterKeypress, ParamMouseWheelClicks, ParamMaxRampUpMultiplier,
	}
)

// Params are the configured values of one binding instance.
type Params map[string]string

// Get returns the trimmed value of name, or "".
func (p Params) Get(name string) string {
	return strings.TrimSpace(p[name])
}

// Bool returns the value of name as a bool.
// Absent, blank or unparseable values return def.
func (p Params) Bool(name string, def bool) bool {
	s := p.Get(name)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

// Int returns the value of name clamped to [lo, hi].
// Absent, blank or unparseable values return def.
func (p Params) Int(name string, def, lo, hi int) int {
	s := p.Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return min(max(n, lo), hi)
}

// ordered returns the values of names in order, followed by any other
// parameters sorted by name.
func (p Params) ordered(names []string) [][2]string {
	out := make([][2]string, 0, len(p)+len(names))
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
		out = append(out, [2]string{name, p.Get(name)})
	}
	var extra []string
	for name := range p {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, [2]string{name, p.Get(name)})
	}
	return out
}

// KeyboardSettings is the parsed form of a keyboard binding.
type KeyboardSettings struct {
	Binding       key.Binding
	Label         string
	RightModifier bool
	RightAlt      bool
	Hold          time.Duration
	Repeat        bool
	Interval      time.Duration
}

// ParseKeyboard parses keyboard binding parameters, substituting defaults
// for missing values and clamping out-of-range ones.
func ParseKeyboard(p Params) KeyboardSettings {
	interval := p.Int(ParamRepeatInterval, 1, 0, 10)
	if interval == 0 {
		interval = 1
	}
	return KeyboardSettings{
		Binding:       key.Decode(p[ParamKey]),
		Label:         key.Label(p[ParamKey]),
		RightModifier: p.Bool(ParamRightModifier, false),
		RightAlt:      p.Bool(ParamRightAlt, false),
		Hold:          time.Duration(p.Int(ParamKeypressDuration, 0, 0, 10000)) * time.Millisecond,
		Repeat:        p.Bool(ParamRepeat, false),
		Interval:      time.Duration(interval) * time.Second,
	}
}

// Resolve returns the physical keys to press.
func (s KeyboardSettings) Resolve() key.Resolved {
	return s.Binding.Resolve(s.RightModifier, s.RightAlt)
}

// WheelSettings is the parsed form of a mouse-wheel binding.
type WheelSettings struct {
	Binding       key.Binding
	Label         string
	RightModifier bool
	RightAlt      bool
	Direction     replay.Direction
	Settle        time.Duration
	Clicks        uint32
	MaxMultiplier uint32
}

// ParseWheel parses mouse-wheel binding parameters, substituting defaults
// for missing values and clamping out-of-range ones.
func ParseWheel(p Params) WheelSettings {
	return WheelSettings{
		Binding:       key.Decode(p[ParamKey]),
		Label:         key.Label(p[ParamKey]),
		RightModifier: p.Bool(ParamRightModifier, false),
		RightAlt:      p.Bool(ParamRightAlt, false),
		Direction:     replay.ParseDirection(p[ParamMouseWheelDirection]),
		Settle:        time.Duration(p.Int(ParamDelayAfterKeypress, 0, 0, 1000)) * time.Millisecond,
		Clicks:        uint32(p.Int(ParamMouseWheelClicks, 1, 1, 100)),
		MaxMultiplier: uint32(p.Int(ParamMaxRampUpMultiplier, 1, 1, 50)),
	}
}

// Resolve returns the physical keys to hold while scrolling.
func (s WheelSettings) Resolve() key.Resolved {
	return s.Binding.Resolve(s.RightModifier, s.RightAlt)
}
