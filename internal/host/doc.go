// Package host connects the macro engine to a control-surface host over a
// websocket.
//
// The host sends one JSON text frame per button event:
//
//	{"event":"run","action":"keyboard","context":"btn-1","parameters":{"Key":"Control+C___67"}}
//	{"event":"titleRequested","action":"keyboard","context":"btn-1","parameters":{...}}
//
// The client answers titleRequested with a setTitle frame and sends
// imageChanged whenever a binding's visual state changes:
//
//	{"event":"setTitle","context":"btn-1","title":"Control+C active"}
//	{"event":"imageChanged"}
//
// Unknown events and malformed frames are logged and skipped.
package host
