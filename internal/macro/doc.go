// Package macro runs control-surface macros: keyboard shortcuts with optional
// hold and toggle-repeat, and mouse-wheel gestures with ramp-up.
//
// The host delivers one Run call per physical button event, carrying the
// configured parameters of one binding instance. Run never blocks on timed
// work; holds, repeats and scrolls happen on their own goroutines.
//
// # Instances
//
// Every distinct parameter set is one binding instance, identified by an
// InstanceID fingerprint. Mutable state (repeat timers, ramp-up cadence) is
// kept per instance in a Registry, created on first use and kept for the life
// of the Engine. Access to one instance is serialized; different instances
// never contend.
//
// # Repeat
//
// A keyboard binding with Repeat set toggles a periodic replay: the first
// Run starts it, the next Run stops it. The interval is fixed when the timer
// starts. Once Stop returns, no further tick fires.
//
// # Ramp-up
//
// Wheel bindings invoked again within 100ms in the same direction scroll
// further, up to MaxRampUpMultiplier times the configured clicks. The window
// is measured from when the previous gesture finished its clicks.
package macro
