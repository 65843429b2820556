// Package inject is the boundary between the replay engine and the operating
// system's synthetic input facility.
//
// An Injector presses and releases virtual keys and turns the vertical mouse
// wheel one click at a time. The engine treats it as always available and
// never blocking; errors are reported but not acted upon.
//
// Implementations:
//
//   - Robot: real OS injection through robotgo (build with -tags robotgo)
//   - Recorder: in-memory event log, used by tests and dry runs
//   - Logger: decorator that logs every call through log/slog
package inject
