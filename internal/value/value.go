// Package value implements the tagged property value exchanged with the engine.
//
// On the wire a property value is a JSON object with exactly one key. The key
// is the discriminant and the member is the payload:
//
//	{"String": "player"}
//	{"Number": 1.5}
//	{"Array": [{"Boolean": true}, {"String": "x"}]}
//
// Anything else, including discriminants this package does not know about,
// decodes to KindUnknown and keeps its raw bytes so it can be sent back to the
// engine unchanged.
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindUnknown is an unrecognized or malformed value, kept opaquely.
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindEntityReference
	KindComponentReference
)

var kindTags = map[Kind]string{
	KindString:             "String",
	KindNumber:             "Number",
	KindBoolean:            "Boolean",
	KindArray:              "Array",
	KindEntityReference:    "EntityReference",
	KindComponentReference: "ComponentReference",
}

// Tag returns the wire discriminant for the kind, or "" for KindUnknown.
func (k Kind) Tag() string {
	return kindTags[k]
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return "Unknown"
}

// kindForTag maps a wire discriminant to its Kind.
func kindForTag(tag string) Kind {
	for k, t := range kindTags {
		if t == tag {
			return k
		}
	}
	return KindUnknown
}

// Value is one tagged property value.
// The zero Value is KindUnknown with no payload.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	items   []Value

	// raw holds the exact wire bytes for decoded values.
	raw []byte
}

// String returns a String value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a Number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Boolean returns a Boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Array returns an Array value holding items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value(nil), items...)}
}

// EntityReference returns a reference to another entity by id.
func EntityReference(id string) Value {
	return Value{kind: KindEntityReference, str: id}
}

// ComponentReference returns a reference to another component by id.
func ComponentReference(id string) Value {
	return Value{kind: KindComponentReference, str: id}
}

// Unknown wraps raw wire bytes that could not be decoded into a known variant.
func Unknown(raw []byte) Value {
	return Value{kind: KindUnknown, raw: append([]byte(nil), raw...)}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the wire bytes v was decoded from, or nil for values built in Go.
func (v Value) Raw() []byte {
	return v.raw
}

// Str returns the payload of a String or reference value.
func (v Value) Str() (string, bool) {
	switch v.kind {
	case KindString, KindEntityReference, KindComponentReference:
		return v.str, true
	default:
		return "", false
	}
}

// Num returns the payload of a Number value.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Bool returns the payload of a Boolean value.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.boolean, true
}

// Items returns the elements of an Array value.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Editable reports whether the UI has an input editor for this variant.
// Only String is editable; the other variants render read-only until a typed
// editor exists for them.
func (v Value) Editable() bool {
	return v.kind == KindString
}

// Display renders the value as read-only text.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindArray:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindEntityReference, KindComponentReference:
		return "@" + v.str
	default:
		return "Unknown"
	}
}

// Equal reports whether v and other hold the same variant and payload.
// Wire bytes are compared only for unknown values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString, KindEntityReference, KindComponentReference:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBoolean:
		return v.boolean == other.boolean
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return string(v.raw) == string(other.raw)
	}
}
