package types

import (
	"strconv"
	"strings"
)

type ConstKind uint8

const (
	ConstNone ConstKind = iota
	ConstInt
	ConstFloat
	ConstString
	ConstBool
	ConstNull
	ConstArray
	ConstRange
)

// Constant is a literal value known at analysis time. Range constants are
// produced by `a...b` and hold the half-open interval [Min, Max).
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Elems []Constant
	Min   int64
	Max   int64
}

func IntConst(v int64) Constant        { return Constant{Kind: ConstInt, Int: v} }
func FloatConst(v float64) Constant    { return Constant{Kind: ConstFloat, Float: v} }
func StringConst(v string) Constant    { return Constant{Kind: ConstString, Str: v} }
func BoolConst(v bool) Constant        { return Constant{Kind: ConstBool, Bool: v} }
func NullConst() Constant              { return Constant{Kind: ConstNull} }
func RangeConst(lo, hi int64) Constant { return Constant{Kind: ConstRange, Min: lo, Max: hi} }

// ArrayConst holds element constants; it is only built when every element is constant.
func ArrayConst(elems []Constant) Constant {
	return Constant{Kind: ConstArray, Elems: append([]Constant(nil), elems...)}
}

func (c Constant) IsSet() bool { return c.Kind != ConstNone }

// AsFloat widens numeric constants.
func (c Constant) AsFloat() (float64, bool) {
	switch c.Kind {
	case ConstInt:
		return float64(c.Int), true
	case ConstFloat:
		return c.Float, true
	}
	return 0, false
}

func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ConstInt:
		return c.Int == o.Int
	case ConstFloat:
		return c.Float == o.Float
	case ConstString:
		return c.Str == o.Str
	case ConstBool:
		return c.Bool == o.Bool
	case ConstRange:
		return c.Min == o.Min && c.Max == o.Max
	case ConstArray:
		if len(c.Elems) != len(o.Elems) {
			return false
		}
		for i := range c.Elems {
			if !c.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
	}
	return true
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.Str)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstNull:
		return "null"
	case ConstRange:
		return strconv.FormatInt(c.Min, 10) + "..." + strconv.FormatInt(c.Max, 10)
	case ConstArray:
		parts := make([]string, len(c.Elems))
		for i, e := range c.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}
