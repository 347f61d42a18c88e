package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for date cells in CSV input and JSON output.
const DateLayout = "2006-01-02"

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
	KindBool
)

// Value is a typed table cell. The zero Value is null, so reading a missing
// column from a Row yields null.
type Value struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Num wraps a float. NaN is stored as null.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Int wraps an integer as a number.
func Int(i int) Value { return Num(float64(i)) }

// Date wraps a point in time.
func Date(t time.Time) Value { return Value{kind: KindTime, tm: t} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Strs converts strings to values, handy for canonical key lists.
func Strs(ss ...string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = Str(s)
	}
	return out
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload; ok is false for non-string values.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsFloat returns the numeric payload; ok is false for non-number values.
func (v Value) AsFloat() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsTime returns the time payload; ok is false for non-time values.
func (v Value) AsTime() (time.Time, bool) {
	return v.tm, v.kind == KindTime
}

// AsBool returns the boolean payload; ok is false for non-bool values.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Year extracts a calendar year from a whole number or a time value.
func (v Value) Year() (int, bool) {
	switch v.kind {
	case KindNumber:
		if v.num != math.Trunc(v.num) {
			return 0, false
		}
		return int(v.num), true
	case KindTime:
		return v.tm.Year(), true
	default:
		return 0, false
	}
}

// String renders the value for display and for category matching.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		if isMidnight(v.tm) {
			return v.tm.Format(DateLayout)
		}
		return v.tm.Format(time.RFC3339)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface converts the value to a plain Go value for JSON chart data.
// Dates become calendar-day strings so renderers can parse them as temporal fields.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindTime:
		return v.String()
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.tm.Equal(o.tm)
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// Compare orders two values: nulls last, then by kind, then by payload.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		switch {
		case v.kind == KindNull:
			return 1
		case o.kind == KindNull:
			return -1
		case v.kind < o.kind:
			return -1
		default:
			return 1
		}
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.str, o.str)
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	case KindTime:
		return v.tm.Compare(o.tm)
	case KindBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		}
		return 1
	default:
		return 0
	}
}

// groupKey is a kind-prefixed encoding used to bucket equal values together.
func (v Value) groupKey() string {
	switch v.kind {
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTime:
		return "t:" + v.tm.UTC().Format(time.RFC3339Nano)
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// joinKey matches dates by calendar day so a daily reading at midnight finds a
// fire day recorded with a different clock component.
func (v Value) joinKey() string {
	if v.kind == KindTime {
		return "d:" + v.tm.Format(DateLayout)
	}
	return v.groupKey()
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
