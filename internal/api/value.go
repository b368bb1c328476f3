package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a tagged union over the JSON value space: null, bool, number,
// string, array of Value, and object of Value. It replaces decode-by-trial
// into interface{} with an explicit variant per kind, so callers can switch
// exhaustively and re-encode losslessly.
type Value struct {
	kind ValueKind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a bool.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Number wraps a float64.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// String wraps a string.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Array wraps a slice of Values.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Object wraps a map of Values.
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Kind reports the variant held by the Value.
func (v Value) Kind() ValueKind { return v.kind }

// BoolValue returns the bool variant; ok is false for other kinds.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// NumberValue returns the number variant; ok is false for other kinds.
func (v Value) NumberValue() (float64, bool) { return v.num, v.kind == KindNumber }

// StringValue returns the string variant; ok is false for other kinds.
func (v Value) StringValue() (string, bool) { return v.str, v.kind == KindString }

// ArrayValue returns the array variant; ok is false for other kinds.
func (v Value) ArrayValue() ([]Value, bool) { return v.arr, v.kind == KindArray }

// ObjectValue returns the object variant; ok is false for other kinds.
func (v Value) ObjectValue() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// IsNull reports whether the Value holds null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// MarshalJSON encodes the held variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	default:
		return nil, fmt.Errorf("value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON decodes any JSON value by inspecting its first token.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("value: empty input")
	}
	switch trimmed[0] {
	case 'n':
		if string(trimmed) != "null" {
			return fmt.Errorf("value: invalid literal %q", trimmed)
		}
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Value{}
		}
		*v = Value{kind: KindArray, arr: items}
		return nil
	case '{':
		var fields map[string]Value
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		if fields == nil {
			fields = map[string]Value{}
		}
		*v = Value{kind: KindObject, obj: fields}
		return nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*v = Number(n)
		return nil
	}
}

// GoString renders a compact debug representation.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.arr))
	case KindObject:
		return fmt.Sprintf("object(%d)", len(v.obj))
	default:
		return "invalid"
	}
}
