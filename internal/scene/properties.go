package scene

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/dshills/runebridge/internal/value"
)

var errPropertiesNotObject = errors.New("properties must be a JSON object")

// Properties is an ordered mapping from property key to tagged value.
// Key order follows the wire.
type Properties struct {
	keys   []string
	values map[string]value.Value
}

// NewProperties builds a mapping from pairs, in order.
func NewProperties(pairs ...Property) Properties {
	var p Properties
	for _, pair := range pairs {
		p.Set(pair.Key, pair.Value)
	}
	return p
}

// Property is one key/value pair.
type Property struct {
	Key   string
	Value value.Value
}

// Set assigns a value. A new key is appended; an existing key keeps its position.
func (p *Properties) Set(key string, v value.Value) {
	if p.values == nil {
		p.values = make(map[string]value.Value)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Get returns the value for key.
func (p Properties) Get(key string) (value.Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns all keys, private ones included, in wire order.
func (p Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of properties.
func (p Properties) Len() int {
	return len(p.keys)
}

// All returns every pair in order.
func (p Properties) All() []Property {
	out := make([]Property, len(p.keys))
	for i, k := range p.keys {
		out[i] = Property{Key: k, Value: p.values[k]}
	}
	return out
}

// UnmarshalJSON decodes a JSON object, keeping member order. Member values
// that are not valid tagged values decode to value.KindUnknown.
func (p *Properties) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errPropertiesNotObject
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return errPropertiesNotObject
	}

	*p = Properties{}
	res.ForEach(func(key, member gjson.Result) bool {
		p.Set(key.Str, value.Decode([]byte(member.Raw)))
		return true
	})
	return nil
}

// MarshalJSON encodes the mapping as a JSON object in key order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		quoted, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(quoted)
		buf.WriteByte(':')
		buf.Write(value.Encode(p.values[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONSchema describes Properties for schema export.
func (Properties) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: "Ordered property mapping; keys starting with '_' are engine-private.",
	}
}
