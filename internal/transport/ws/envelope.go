package ws

import (
	"encoding/json"
	"fmt"
)

// Envelope is one call on the wire, in either direction:
//
//	{"call":"set_scene_name","args":["Level 1"]}
//
// Args is always a JSON array; an absent args field means no arguments.
type Envelope struct {
	Call string          `json:"call"`
	Args json.RawMessage `json:"args,omitempty"`
}

// NewEnvelope encodes args as the argument array of call.
func NewEnvelope(call string, args ...any) (Envelope, error) {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s args: %w", call, err)
	}
	return Envelope{Call: call, Args: raw}, nil
}

// ParseEnvelope decodes one inbound message.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Call == "" {
		return Envelope{}, fmt.Errorf("%w: missing call", ErrMalformedEnvelope)
	}
	return env, nil
}
