package api_test

import (
	"encoding/json"
	"testing"

	"kai/internal/api"
)

func TestValueRoundTrip(t *testing.T) {
	raw := `{"theme":"dark","digest_hour":7,"quiet":true,"snooze":null,"days":["mon","tue"],"nested":{"limit":2.5}}`

	var v api.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	obj, ok := v.ObjectValue()
	if !ok {
		t.Fatalf("expected object, got %#v", v)
	}

	if s, ok := obj["theme"].StringValue(); !ok || s != "dark" {
		t.Fatalf("theme: got %#v", obj["theme"])
	}
	if n, ok := obj["digest_hour"].NumberValue(); !ok || n != 7 {
		t.Fatalf("digest_hour: got %#v", obj["digest_hour"])
	}
	if b, ok := obj["quiet"].BoolValue(); !ok || !b {
		t.Fatalf("quiet: got %#v", obj["quiet"])
	}
	if !obj["snooze"].IsNull() {
		t.Fatalf("snooze: expected null, got %#v", obj["snooze"])
	}
	arr, ok := obj["days"].ArrayValue()
	if !ok || len(arr) != 2 {
		t.Fatalf("days: got %#v", obj["days"])
	}
	nested, ok := obj["nested"].ObjectValue()
	if !ok {
		t.Fatalf("nested: got %#v", obj["nested"])
	}
	if n, ok := nested["limit"].NumberValue(); !ok || n != 2.5 {
		t.Fatalf("nested.limit: got %#v", nested["limit"])
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again api.Value
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	reObj, _ := again.ObjectValue()
	if len(reObj) != len(obj) {
		t.Fatalf("round trip lost keys: %d != %d", len(reObj), len(obj))
	}
}

func TestValueKinds(t *testing.T) {
	cases := []struct {
		raw  string
		kind api.ValueKind
	}{
		{`null`, api.KindNull},
		{`true`, api.KindBool},
		{`false`, api.KindBool},
		{`-12.75`, api.KindNumber},
		{`"hello"`, api.KindString},
		{`[]`, api.KindArray},
		{`{}`, api.KindObject},
	}
	for _, tc := range cases {
		var v api.Value
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if v.Kind() != tc.kind {
			t.Fatalf("%s: expected kind %d, got %d", tc.raw, tc.kind, v.Kind())
		}
	}
}

func TestValueRejectsGarbage(t *testing.T) {
	for _, raw := range []string{``, `nul`, `{bad}`} {
		var v api.Value
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestValueEmptyContainersEncodeAsEmpty(t *testing.T) {
	arr, err := json.Marshal(api.Array())
	if err != nil {
		t.Fatalf("marshal array: %v", err)
	}
	if string(arr) != "[]" {
		t.Fatalf("expected [], got %s", arr)
	}
	obj, err := json.Marshal(api.Object(nil))
	if err != nil {
		t.Fatalf("marshal object: %v", err)
	}
	if string(obj) != "{}" {
		t.Fatalf("expected {}, got %s", obj)
	}
}
