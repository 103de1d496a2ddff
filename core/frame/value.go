// Package frame provides the in-memory record table the feature pipeline
// operates on: named, row-aligned columns of numeric, string or missing
// values.
//
// Tables are immutable. Every operation returns a new *Table; columns that
// an operation does not touch share storage with the input.
package frame

import (
	"math"
	"strconv"
)

// Kind is the type of a single cell.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "missing"
	}
}

// Value is one cell. The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num returns a numeric value. NaN is treated as missing.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Str returns a string value.
func Str(s string) Value {
	return Value{kind: KindString, str: s}
}

// Missing returns the missing value.
func Missing() Value {
	return Value{}
}

// Kind reports the type of v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is missing.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value and whether v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string value and whether v is a string.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// String formats v for display and for category names. Numbers use the
// shortest representation; missing values render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Key is a grouping key; numbers and strings never collide.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return "s:" + v.str
	default:
		return "-"
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

// Less orders values: missing first, then numbers ascending, then strings
// lexically.
func Less(a, b Value) bool {
	if a.kind != b.kind {
		return rank(a.kind) < rank(b.kind)
	}
	switch a.kind {
	case KindNumber:
		return a.num < b.num
	case KindString:
		return a.str < b.str
	default:
		return false
	}
}

func rank(k Kind) int {
	switch k {
	case KindNumber:
		return 1
	case KindString:
		return 2
	default:
		return 0
	}
}
