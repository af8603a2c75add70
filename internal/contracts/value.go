package contracts

import (
	"strconv"
	"strings"
)

// ValueType declares how a question's raw answers are typed.
type ValueType string

const (
	ValueNumeric     ValueType = "numeric"
	ValueCategorical ValueType = "categorical"
	ValueBoolean     ValueType = "boolean"
)

// IsValid reports whether vt is one of the declared value types.
func (vt ValueType) IsValid() bool {
	switch vt {
	case ValueNumeric, ValueCategorical, ValueBoolean:
		return true
	}
	return false
}

// Value is a typed observation value. Missing marks the reserved sentinel
// meaning "unknown"; a sentinel carries no payload and is excluded from
// numeric aggregation downstream.
type Value struct {
	Type    ValueType `json:"type"`
	Num     float64   `json:"num,omitempty"`
	Str     string    `json:"str,omitempty"`
	Bool    bool      `json:"bool,omitempty"`
	Missing bool      `json:"missing,omitempty"`
}

// Sentinel returns the reserved "unknown" value for the given type.
func Sentinel(vt ValueType) Value {
	return Value{Type: vt, Missing: true}
}

// Numeric returns a numeric value.
func Numeric(n float64) Value {
	return Value{Type: ValueNumeric, Num: n}
}

// Categorical returns a categorical value.
func Categorical(s string) Value {
	return Value{Type: ValueCategorical, Str: s}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{Type: ValueBoolean, Bool: b}
}

// AsFloat returns the numeric payload usable for aggregation. Booleans count
// as 1/0. Categorical and sentinel values report ok=false.
func (v Value) AsFloat() (float64, bool) {
	if v.Missing {
		return 0, false
	}
	switch v.Type {
	case ValueNumeric:
		return v.Num, true
	case ValueBoolean:
		if v.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Accepted boolean spellings in raw exports and configured defaults.
var boolWords = map[string]bool{
	"yes": true, "y": true, "true": true, "1": true,
	"no": false, "n": false, "false": false, "0": false,
}

// ParseValue converts a raw literal to a typed Value. The empty string is
// the sentinel. ok is false when the literal does not fit the type.
func ParseValue(raw string, vt ValueType) (Value, bool) {
	if raw == "" {
		return Sentinel(vt), true
	}
	switch vt {
	case ValueNumeric:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, false
		}
		return Numeric(n), true
	case ValueBoolean:
		b, ok := boolWords[strings.ToLower(raw)]
		if !ok {
			return Value{}, false
		}
		return Boolean(b), true
	default:
		return Categorical(raw), true
	}
}

// Render formats the value as an output table cell. Sentinels render as the
// empty string, matching the source system's convention.
func (v Value) Render() string {
	if v.Missing {
		return ""
	}
	switch v.Type {
	case ValueNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueBoolean:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Equal reports payload equality, treating any two sentinels of the same
// type as equal.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Missing != o.Missing {
		return false
	}
	if v.Missing {
		return true
	}
	switch v.Type {
	case ValueNumeric:
		return v.Num == o.Num
	case ValueBoolean:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}
