package host

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/deckmacro/internal/macro"
)

// Event names.
const (
	EventRun            = "run"
	EventTitleRequested = "titleRequested"
	EventSetTitle       = "setTitle"
	EventImageChanged   = "imageChanged"
)

// ErrMalformed indicates a frame that is not a JSON object with an event.
var ErrMalformed = errors.New("malformed message")

// Message is a decoded host frame.
type Message struct {
	Event   string
	Action  string
	Context string
	Params  macro.Params
}

// DecodeMessage decodes a host frame. Parameter values that are not strings
// are kept in their JSON text form.
func DecodeMessage(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Message{}, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	event := root.Get("event")
	if event.Type != gjson.String || event.Str == "" {
		return Message{}, fmt.Errorf("%w: missing event", ErrMalformed)
	}

	msg := Message{
		Event:   event.Str,
		Action:  root.Get("action").String(),
		Context: root.Get("context").String(),
		Params:  macro.Params{},
	}
	params := root.Get("parameters")
	if !params.IsObject() {
		return msg, nil
	}
	params.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			msg.Params[k.String()] = v.Str
		} else {
			msg.Params[k.String()] = v.Raw
		}
		return true
	})
	return msg, nil
}

// encodeSetTitle builds a setTitle frame.
func encodeSetTitle(context, title string) ([]byte, error) {
	data, err := sjson.SetBytes(nil, "event", EventSetTitle)
	if err != nil {
		return nil, err
	}
	if data, err = sjson.SetBytes(data, "context", context); err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "title", title)
}

// encodeImageChanged builds an imageChanged frame.
func encodeImageChanged() ([]byte, error) {
	return sjson.SetBytes(nil, "event", EventImageChanged)
}
