package scenespec

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a typed field value. Exactly one member is set, matching the
// declared field type; the explicit union keeps serialized specs free of
// float/int ambiguity across round trips.
type Value struct {
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
	Bool   *bool    `json:"bool,omitempty"`
	String *string  `json:"string,omitempty"`
}

// IntValue wraps an int64.
func IntValue(v int64) Value { return Value{Int: &v} }

// FloatValue wraps a float64.
func FloatValue(v float64) Value { return Value{Float: &v} }

// BoolValue wraps a bool.
func BoolValue(v bool) Value { return Value{Bool: &v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{String: &v} }

// Num returns the numeric view of the value: ints and floats as themselves,
// bools as 0/1, strings as 0.
func (v Value) Num() float64 {
	switch {
	case v.Int != nil:
		return float64(*v.Int)
	case v.Float != nil:
		return *v.Float
	case v.Bool != nil:
		if *v.Bool {
			return 1
		}
		return 0
	}
	return 0
}

// Str returns the string member, or "" for non-string values.
func (v Value) Str() string {
	if v.String != nil {
		return *v.String
	}
	return ""
}

// ParseValue types a raw literal against a declared field type. Quoted text
// is a string literal; "true"/"false" are booleans.
func ParseValue(raw, typ string) (Value, error) {
	switch typ {
	case "int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int literal %q", raw)
		}
		return IntValue(n), nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float literal %q", raw)
		}
		return FloatValue(f), nil
	case "bool":
		switch raw {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("invalid bool literal %q", raw)
	case "string":
		if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
			return StringValue(raw[1 : len(raw)-1]), nil
		}
		return Value{}, fmt.Errorf("invalid string literal %q", raw)
	}
	return Value{}, fmt.Errorf("unknown field type %q", typ)
}
