package lang

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/kikiluvv/autocut/internal/boolarr"
)

// Tag identifies the variant of a Value
type Tag int

const (
	TagInt Tag = iota
	TagRat
	TagFloat
	TagComplex
	TagBool
	TagString
	TagBoolArr
	TagNone
)

// Value is a runtime value. The set of implementations is closed.
type Value interface {
	Tag() Tag
	String() string
}

// Int is an exact integer of arbitrary precision
type Int struct{ V *big.Int }

// Rat is an exact rational whose denominator is never 1
type Rat struct{ V *big.Rat }

// Float is an inexact real
type Float float64

// Complex is a complex number
type Complex complex128

// Bool is a boolean, distinct from 0 and 1
type Bool bool

// Str is a UTF-8 string
type Str string

// BoolArr is a per-frame keep/cut array
type BoolArr []bool

// None is the result of side-effecting forms
type None struct{}

func (Int) Tag() Tag     { return TagInt }
func (Rat) Tag() Tag     { return TagRat }
func (Float) Tag() Tag   { return TagFloat }
func (Complex) Tag() Tag { return TagComplex }
func (Bool) Tag() Tag    { return TagBool }
func (Str) Tag() Tag     { return TagString }
func (BoolArr) Tag() Tag { return TagBoolArr }
func (None) Tag() Tag    { return TagNone }

func (v Int) String() string     { return v.V.String() }
func (v Rat) String() string     { return v.V.RatString() }
func (v Float) String() string   { return formatFloat(float64(v)) }
func (v Complex) String() string { return formatComplex(complex128(v)) }
func (v Str) String() string     { return string(v) }
func (v BoolArr) String() string { return boolarr.String(v) }
func (None) String() string      { return "" }

func (v Bool) String() string {
	if v {
		return "#t"
	}
	return "#f"
}

// NewInt returns an exact integer
func NewInt(n int64) Int {
	return Int{V: big.NewInt(n)}
}

// NewRat returns a/b in lowest terms, collapsing to Int when b divides a
func NewRat(a, b int64) Value {
	return exactRat(big.NewRat(a, b))
}

// exactRat normalises r to Int when it is integral
func exactRat(r *big.Rat) Value {
	if r.IsInt() {
		return Int{V: new(big.Int).Set(r.Num())}
	}
	return Rat{V: r}
}

// Repr renders v the way the REPL echoes it: strings quoted, everything else
// as display would.
func Repr(v Value) string {
	if s, ok := v.(Str); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	case math.IsNaN(f):
		return "+nan.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func formatComplex(c complex128) string {
	re := strconv.FormatFloat(real(c), 'g', -1, 64)
	im := strconv.FormatFloat(imag(c), 'g', -1, 64)
	if !strings.HasPrefix(im, "-") {
		im = "+" + im
	}
	return re + im + "i"
}

// Type predicates. They double as the checks primitives declare.

func isNumber(v Value) bool {
	switch v.Tag() {
	case TagInt, TagRat, TagFloat, TagComplex:
		return true
	}
	return false
}

func isReal(v Value) bool {
	switch v.Tag() {
	case TagInt, TagRat, TagFloat:
		return true
	}
	return false
}

func isExact(v Value) bool {
	return v.Tag() == TagInt || v.Tag() == TagRat
}

func isExactInt(v Value) bool { return v.Tag() == TagInt }
func isString(v Value) bool   { return v.Tag() == TagString }
func isBool(v Value) bool     { return v.Tag() == TagBool }
func isBoolArr(v Value) bool  { return v.Tag() == TagBoolArr }
func isAny(Value) bool        { return true }

// predicate pairs a type check with the name used in error messages
type predicate struct {
	name  string
	check func(Value) bool
}

var (
	anyP      = predicate{"any", isAny}
	numberP   = predicate{"number?", isNumber}
	realP     = predicate{"real?", isReal}
	exactIntP = predicate{"exact-integer?", isExactInt}
	stringP   = predicate{"string?", isString}
	boolArrP  = predicate{"boolarr?", isBoolArr}
)

// equalValues is structural equality where a float never equals a non-float
func equalValues(a, b Value) bool {
	if (a.Tag() == TagFloat) != (b.Tag() == TagFloat) {
		return false
	}
	if isNumber(a) && isNumber(b) {
		return numEqual(a, b)
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch x := a.(type) {
	case Bool:
		return x == b.(Bool)
	case Str:
		return x == b.(Str)
	case BoolArr:
		y := b.(BoolArr)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case None:
		return true
	}
	return false
}
