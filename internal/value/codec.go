package value

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Decode parses one wire value. It never fails: input that is not a single-key
// object with a recognized discriminant and a payload of the matching JSON
// type decodes to KindUnknown holding the raw bytes.
func Decode(raw []byte) Value {
	own := append([]byte(nil), raw...)
	if !gjson.ValidBytes(own) {
		return Value{kind: KindUnknown, raw: own}
	}

	res := gjson.ParseBytes(own)
	if !res.IsObject() {
		return Value{kind: KindUnknown, raw: own}
	}

	var (
		tag     string
		payload gjson.Result
		keys    int
	)
	res.ForEach(func(key, member gjson.Result) bool {
		keys++
		tag = key.Str
		payload = member
		return keys < 2
	})
	if keys != 1 {
		return Value{kind: KindUnknown, raw: own}
	}

	v, ok := decodePayload(kindForTag(tag), payload)
	if !ok {
		return Value{kind: KindUnknown, raw: own}
	}
	v.raw = own
	return v
}

func decodePayload(kind Kind, payload gjson.Result) (Value, bool) {
	switch kind {
	case KindString:
		if payload.Type != gjson.String {
			return Value{}, false
		}
		return String(payload.Str), true

	case KindEntityReference, KindComponentReference:
		if payload.Type != gjson.String {
			return Value{}, false
		}
		return Value{kind: kind, str: payload.Str}, true

	case KindNumber:
		if payload.Type != gjson.Number {
			return Value{}, false
		}
		return Number(payload.Num), true

	case KindBoolean:
		if payload.Type != gjson.True && payload.Type != gjson.False {
			return Value{}, false
		}
		return Boolean(payload.Bool()), true

	case KindArray:
		if !payload.IsArray() {
			return Value{}, false
		}
		elems := payload.Array()
		items := make([]Value, len(elems))
		for i, elem := range elems {
			items[i] = Decode([]byte(elem.Raw))
		}
		return Value{kind: KindArray, items: items}, true

	default:
		return Value{}, false
	}
}

// Encode returns the wire form of v. A decoded value encodes to exactly the
// bytes it was decoded from; a value built in Go encodes canonically.
func Encode(v Value) []byte {
	if v.raw != nil {
		return append([]byte(nil), v.raw...)
	}
	out, err := encodeCanonical(v)
	if err != nil {
		return []byte("null")
	}
	return out
}

func encodeCanonical(v Value) ([]byte, error) {
	tag := v.kind.Tag()
	switch v.kind {
	case KindString, KindEntityReference, KindComponentReference:
		return sjson.SetBytes([]byte(`{}`), tag, v.str)
	case KindNumber:
		return sjson.SetBytes([]byte(`{}`), tag, v.num)
	case KindBoolean:
		return sjson.SetBytes([]byte(`{}`), tag, v.boolean)
	case KindArray:
		list := []byte(`[]`)
		for _, item := range v.items {
			var err error
			list, err = sjson.SetRawBytes(list, "-1", Encode(item))
			if err != nil {
				return nil, err
			}
		}
		return sjson.SetRawBytes([]byte(`{}`), tag, list)
	default:
		return []byte("null"), nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return Encode(v), nil
}

// UnmarshalJSON implements json.Unmarshaler. It never returns an error;
// malformed members become KindUnknown.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Decode(data)
	return nil
}
