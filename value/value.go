// Package value implements the tagged-union Value type from the data model
// (spec §3): {Null, Bool, Int, Float, Text}. It is built on gopkg.in/guregu/null.v3
// rather than hand-rolled optionals, since that library already is what the
// dependency graph (pulled in by go.k6.io/k6) carries for nullable scalars.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	null "gopkg.in/guregu/null.v3"
)

// Kind tags which alternative of the union is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is the coerced result of a CSV field or the source of a JSON-bound
// cell. Exactly one of the embedded null.* fields is valid, selected by Kind.
type Value struct {
	kind Kind
	b    null.Bool
	i    null.Int
	f    null.Float
	s    null.String
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// FromBool wraps a bool.
func FromBool(b bool) Value { return Value{kind: KindBool, b: null.BoolFrom(b)} }

// FromInt wraps an int64.
func FromInt(i int64) Value { return Value{kind: KindInt, i: null.IntFrom(i)} }

// FromFloat wraps a float64.
func FromFloat(f float64) Value { return Value{kind: KindFloat, f: null.FloatFrom(f)} }

// FromText wraps a string.
func FromText(s string) Value { return Value{kind: KindText, s: null.StringFrom(s)} }

// Kind reports which alternative is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null alternative.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload and whether v was a Bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b.Bool, true
}

// Int returns the integer payload and whether v was an Int.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i.Int64, true
}

// Float returns the float payload and whether v was a Float.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f.Float64, true
}

// Text returns the string payload and whether v was Text.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.s.String, true
}

// String renders v the way the CSV codec stringifies a cell on output:
// null/undefined becomes empty, booleans become true/false, numbers use the
// shortest round-trip decimal (spec §4.C.1 step 1).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i.Int64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f.Float64, 'g', -1, 64)
	case KindText:
		return v.s.String
	default:
		return ""
	}
}

// Interface returns the plain Go value (nil, bool, int64, float64, or string)
// backing v, for callers building map[string]interface{} records.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b.Bool
	case KindInt:
		return v.i.Int64
	case KindFloat:
		return v.f.Float64
	case KindText:
		return v.s.String
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// FromInterface coerces a generic Go value (as decoded by encoding/json, or
// passed by a caller building records in-memory) into a Value without any
// text parsing — numbers and bools keep their native type.
func FromInterface(in interface{}) Value {
	switch t := in.(type) {
	case nil:
		return Null()
	case bool:
		return FromBool(t)
	case int:
		return FromInt(int64(t))
	case int64:
		return FromInt(t)
	case float64:
		return FromFloat(t)
	case string:
		return FromText(t)
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return FromText(fmt.Sprintf("%v", t))
		}
		return FromText(string(encoded))
	}
}

// CoerceOptions controls the text->Value coercion rules of spec §4.C.2.
type CoerceOptions struct {
	ParseNumbers  bool
	ParseBooleans bool
	Trim          bool
}

// CoerceFromText parses a raw CSV field into a Value per the coercion rules in
// spec §4.C.2: numbers are attempted first (only if they round-trip back to
// the same text, so e.g. "007" or "1e2" are left as text to avoid lossy
// coercion), then booleans, else the (optionally trimmed) text is kept.
func CoerceFromText(raw string, opt CoerceOptions) Value {
	field := raw
	if opt.Trim {
		field = strings.TrimSpace(field)
	}

	if opt.ParseNumbers && field != "" {
		if n, ok := parseRoundTripNumber(field); ok {
			return n
		}
	}
	if opt.ParseBooleans {
		switch strings.ToLower(field) {
		case "true":
			return FromBool(true)
		case "false":
			return FromBool(false)
		}
	}
	return FromText(field)
}

// parseRoundTripNumber attempts to parse field as an integer or float and
// requires the canonical re-rendering of the parsed number to reproduce the
// original text, so that decorated numeric-looking strings ("+5", "5.0",
// "0x5") are not silently coerced and corrupted.
func parseRoundTripNumber(field string) (Value, bool) {
	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		if strconv.FormatInt(i, 10) == field {
			return FromInt(i), true
		}
		return Value{}, false
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		rendered := strconv.FormatFloat(f, 'g', -1, 64)
		if rendered == field {
			return FromFloat(f), true
		}
	}
	return Value{}, false
}
