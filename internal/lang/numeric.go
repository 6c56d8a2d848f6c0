package lang

import (
	"math"
	"math/big"
	"math/cmplx"
)

// rank orders the numeric tower: Int < Rat < Float < Complex
func rank(v Value) Tag {
	return v.Tag()
}

func toRat(v Value) *big.Rat {
	switch x := v.(type) {
	case Int:
		return new(big.Rat).SetInt(x.V)
	case Rat:
		return x.V
	}
	return nil
}

func toFloat(v Value) float64 {
	switch x := v.(type) {
	case Int:
		f, _ := new(big.Float).SetInt(x.V).Float64()
		return f
	case Rat:
		f, _ := x.V.Float64()
		return f
	case Float:
		return float64(x)
	case Complex:
		return real(x)
	}
	return 0
}

func toComplex(v Value) complex128 {
	if c, ok := v.(Complex); ok {
		return complex128(c)
	}
	return complex(toFloat(v), 0)
}

// arith applies one of + - * to two numbers at the rank of the wider one.
func arith(op TokenType, a, b Value) Value {
	switch max(rank(a), rank(b)) {
	case TagInt:
		x, y := a.(Int).V, b.(Int).V
		z := new(big.Int)
		switch op {
		case TokPlus:
			z.Add(x, y)
		case TokMinus:
			z.Sub(x, y)
		default:
			z.Mul(x, y)
		}
		return Int{V: z}
	case TagRat:
		x, y := toRat(a), toRat(b)
		z := new(big.Rat)
		switch op {
		case TokPlus:
			z.Add(x, y)
		case TokMinus:
			z.Sub(x, y)
		default:
			z.Mul(x, y)
		}
		return exactRat(z)
	case TagFloat:
		x, y := toFloat(a), toFloat(b)
		switch op {
		case TokPlus:
			return Float(x + y)
		case TokMinus:
			return Float(x - y)
		}
		return Float(x * y)
	}
	x, y := toComplex(a), toComplex(b)
	switch op {
	case TokPlus:
		return Complex(x + y)
	case TokMinus:
		return Complex(x - y)
	}
	return Complex(x * y)
}

// divide returns a/b, exact when both operands are exact
func divide(a, b Value) (Value, error) {
	if isZero(b) {
		return nil, newError(EvalError, "division by zero")
	}
	switch max(rank(a), rank(b)) {
	case TagInt, TagRat:
		return exactRat(new(big.Rat).Quo(toRat(a), toRat(b))), nil
	case TagFloat:
		return Float(toFloat(a) / toFloat(b)), nil
	}
	return Complex(toComplex(a) / toComplex(b)), nil
}

func negate(v Value) Value {
	switch x := v.(type) {
	case Int:
		return Int{V: new(big.Int).Neg(x.V)}
	case Rat:
		return Rat{V: new(big.Rat).Neg(x.V)}
	case Float:
		return -x
	case Complex:
		return -x
	}
	return v
}

func isZero(v Value) bool {
	switch x := v.(type) {
	case Int:
		return x.V.Sign() == 0
	case Rat:
		return x.V.Sign() == 0
	case Float:
		return x == 0
	case Complex:
		return x == 0
	}
	return false
}

// sign returns -1, 0 or 1 for a real; NaN reports 0
func sign(v Value) int {
	switch x := v.(type) {
	case Int:
		return x.V.Sign()
	case Rat:
		return x.V.Sign()
	case Float:
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
	}
	return 0
}

func numEqual(a, b Value) bool {
	switch max(rank(a), rank(b)) {
	case TagInt, TagRat:
		return toRat(a).Cmp(toRat(b)) == 0
	case TagFloat:
		return toFloat(a) == toFloat(b)
	}
	return toComplex(a) == toComplex(b)
}

// compare orders two reals. ok is false when a NaN is involved.
func compare(a, b Value) (c int, ok bool) {
	if isExact(a) && isExact(b) {
		return toRat(a).Cmp(toRat(b)), true
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return 0, false
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

type roundMode int

const (
	roundEven roundMode = iota
	roundCeil
	roundFloor
)

// roundExact rounds an exact rational to an integer
func roundExact(r *big.Rat, mode roundMode) *big.Int {
	// big.Int Div/Mod are Euclidean; with a positive denominator that is floor division.
	q, m := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() == 0 {
		return q
	}
	switch mode {
	case roundCeil:
		return q.Add(q, big.NewInt(1))
	case roundFloor:
		return q
	}
	twice := new(big.Int).Lsh(m, 1)
	switch twice.Cmp(r.Denom()) {
	case -1:
		return q
	case 1:
		return q.Add(q, big.NewInt(1))
	}
	if q.Bit(0) == 1 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func roundFloat(f float64, mode roundMode) float64 {
	switch mode {
	case roundCeil:
		return math.Ceil(f)
	case roundFloor:
		return math.Floor(f)
	}
	return math.RoundToEven(f)
}

// roundReal rounds v. Floats stay floats unless exact is set.
func roundReal(v Value, mode roundMode, exact bool) (Value, error) {
	if f, ok := v.(Float); ok {
		r := roundFloat(float64(f), mode)
		if !exact {
			return Float(r), nil
		}
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, newError(EvalError, "no exact representation for %s", f)
		}
		n, _ := big.NewFloat(r).Int(nil)
		return Int{V: n}, nil
	}
	return Int{V: roundExact(toRat(v), mode)}, nil
}

func absValue(v Value) Value {
	if sign(v) < 0 {
		return negate(v)
	}
	if f, ok := v.(Float); ok {
		return Float(math.Abs(float64(f)))
	}
	return v
}

// sqrtValue takes the complex square root, collapsing to a real when the
// imaginary part is zero and to an exact integer when that real is integral.
func sqrtValue(v Value) Value {
	if n, ok := v.(Int); ok && n.V.Sign() >= 0 {
		s := new(big.Int).Sqrt(n.V)
		if new(big.Int).Mul(s, s).Cmp(n.V) == 0 {
			return Int{V: s}
		}
	}
	c := cmplx.Sqrt(toComplex(v))
	if imag(c) != 0 {
		return Complex(c)
	}
	re := real(c)
	if !math.IsInf(re, 0) && re == math.Trunc(re) {
		n, _ := big.NewFloat(re).Int(nil)
		return Int{V: n}
	}
	return Float(re)
}

// modulo returns a mod b with the sign of b
func modulo(a, b Int) (Value, error) {
	if b.V.Sign() == 0 {
		return nil, newError(EvalError, "division by zero")
	}
	m := new(big.Int).Mod(a.V, b.V)
	if b.V.Sign() < 0 && m.Sign() != 0 {
		m.Add(m, b.V)
	}
	return Int{V: m}, nil
}
