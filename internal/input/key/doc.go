// Package key decodes captured key bindings into concrete virtual keys.
//
// This package defines the fundamental types for replaying keyboard input:
//
//   - Code: A Windows virtual-key code (letters, digits, function keys, ...)
//   - ModifierKey: An abstract modifier as captured by the host (Control, Alt, ...)
//   - Modifier: A set of physical modifier keys (LeftControl, RightAlt, ...)
//   - Binding: A decoded key binding with its abstract modifiers
//
// # Encoded Bindings
//
// The host's key-capture control produces strings of the form
//
//	<keyId>___<extra fields>
//
// Only keyId is meaningful here. It is written as modifier names followed by
// a key name, joined with "+":
//
//   - Simple keys: "A", "F4", "Enter", "NumPad5"
//   - With modifiers: "Control+S", "Alt+F4", "ControlOrCommand+Shift+P"
//   - Modifier only: "Shift", "Control+Alt"
//
// Decode never fails. Unknown or empty identifiers yield the zero Binding,
// which replays as a no-op.
//
// # Left and Right Modifiers
//
// Resolve maps abstract modifiers to physical keys. The left-hand key is used
// unless the binding asks for the right-hand variant; CapsLock has no side.
package key
