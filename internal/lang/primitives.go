package lang

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kikiluvv/autocut/internal/boolarr"
)

// primitive is a built-in procedure. max < 0 means unbounded. The last entry
// of types repeats for further arguments; nil types skips the check.
type primitive struct {
	min, max int
	types    []predicate
	call     func(ip *Interpreter, op Token, args []Value) (Value, error)
}

var primitives map[TokenType]*primitive

func init() {
	unary := func(types []predicate, fn func(Value) Value) *primitive {
		return &primitive{min: 1, max: 1, types: types, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			return fn(args[0]), nil
		}}
	}
	classify := func(fn func(Value) bool) *primitive {
		return unary([]predicate{anyP}, func(v Value) Value { return Bool(fn(v)) })
	}
	rounding := func(mode roundMode, exact bool) *primitive {
		return &primitive{min: 1, max: 1, types: []predicate{realP}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			return roundReal(args[0], mode, exact)
		}}
	}
	comparison := func(ok func(c int) bool) *primitive {
		return &primitive{min: 2, max: 2, types: []predicate{realP}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			c, comparable := compare(args[0], args[1])
			return Bool(comparable && ok(c)), nil
		}}
	}
	// a Caser keeps state between calls, so each call gets its own
	stringCase := func(newCaser func(language.Tag, ...cases.Option) cases.Caser) *primitive {
		return unary([]predicate{stringP}, func(v Value) Value {
			return Str(newCaser(language.Und).String(string(v.(Str))))
		})
	}
	smoothing := func(keep bool) *primitive {
		return &primitive{min: 2, max: 2, types: []predicate{exactIntP, boolArrP}, call: func(_ *Interpreter, op Token, args []Value) (Value, error) {
			lim, err := frameCount(op, args[0])
			if err != nil {
				return nil, err
			}
			return BoolArr(boolarr.RemoveSmall(args[1].(BoolArr), lim, keep)), nil
		}}
	}
	logical := func(b func(x, y bool) bool, arr func(x, y []bool) []bool) *primitive {
		return &primitive{min: 1, max: -1, call: func(_ *Interpreter, op Token, args []Value) (Value, error) {
			return reduceLogical(op, args, b, arr)
		}}
	}

	primitives = map[TokenType]*primitive{
		TokDisplay: {min: 1, max: 1, call: display},
		TokLength: unary([]predicate{boolArrP}, func(v Value) Value {
			return NewInt(int64(len(v.(BoolArr))))
		}),
		TokCountNonzero: unary([]predicate{boolArrP}, func(v Value) Value {
			return NewInt(int64(boolarr.CountTrue(v.(BoolArr))))
		}),
		TokNot: {min: 1, max: 1, call: not},
		TokOr:  logical(func(x, y bool) bool { return x || y }, boolarr.Or),
		TokAnd: logical(func(x, y bool) bool { return x && y }, boolarr.And),
		TokXor: logical(func(x, y bool) bool { return x != y }, boolarr.Xor),

		TokPlus:  {min: 0, max: -1, call: arithmetic},
		TokMinus: {min: 1, max: -1, call: arithmetic},
		TokMul:   {min: 0, max: -1, call: arithmetic},
		TokDiv:   {min: 1, max: -1, call: arithmetic},
		TokGt:    comparison(func(c int) bool { return c > 0 }),
		TokGe:    comparison(func(c int) bool { return c >= 0 }),
		TokLt:    comparison(func(c int) bool { return c < 0 }),
		TokLe:    comparison(func(c int) bool { return c <= 0 }),
		TokNumEq: {min: 1, max: -1, types: []predicate{numberP}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			for _, v := range args[1:] {
				if !numEqual(args[0], v) {
					return Bool(false), nil
				}
			}
			return Bool(true), nil
		}},

		TokRound:        rounding(roundEven, false),
		TokExactRound:   rounding(roundEven, true),
		TokCeiling:      rounding(roundCeil, false),
		TokExactCeiling: rounding(roundCeil, true),
		TokFloor:        rounding(roundFloor, false),
		TokExactFloor:   rounding(roundFloor, true),
		TokModulo: {min: 2, max: 2, types: []predicate{exactIntP}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			return modulo(args[0].(Int), args[1].(Int))
		}},
		TokAbs:  unary([]predicate{realP}, absValue),
		TokSqrt: unary([]predicate{numberP}, sqrtValue),
		TokAdd1: unary([]predicate{numberP}, func(v Value) Value { return arith(TokPlus, v, NewInt(1)) }),
		TokSub1: unary([]predicate{numberP}, func(v Value) Value { return arith(TokMinus, v, NewInt(1)) }),

		TokStringAppend: {min: 0, max: -1, types: []predicate{stringP}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			var b strings.Builder
			for _, v := range args {
				b.WriteString(string(v.(Str)))
			}
			return Str(b.String()), nil
		}},
		TokStringUpcase:    stringCase(cases.Upper),
		TokStringDowncase:  stringCase(cases.Lower),
		TokStringTitlecase: stringCase(cases.Title),
		TokStringLength: unary([]predicate{stringP}, func(v Value) Value {
			return NewInt(int64(utf8.RuneCountInString(string(v.(Str)))))
		}),
		TokNumberToString: unary([]predicate{numberP}, func(v Value) Value { return Str(v.String()) }),

		TokNumberQ:       classify(isNumber),
		TokRealQ:         classify(isReal),
		TokExactIntegerQ: classify(isExactInt),
		TokStringQ:       classify(isString),
		TokExactQ:        classify(isExact),
		TokBooleanQ:      classify(isBool),
		TokBoolArrQ:      classify(isBoolArr),
		TokZeroQ:         classify(func(v Value) bool { return isNumber(v) && isZero(v) }),
		TokPositiveQ:     classify(func(v Value) bool { return isReal(v) && sign(v) > 0 }),
		TokNegativeQ:     classify(func(v Value) bool { return isReal(v) && sign(v) < 0 }),
		TokEqualQ: {min: 2, max: 2, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			return Bool(equalValues(args[0], args[1])), nil
		}},

		TokMargin:  {min: 2, max: 3, call: margin},
		TokMinCut:  smoothing(false),
		TokMinClip: smoothing(true),
		TokCook: {min: 3, max: 3, types: []predicate{exactIntP, exactIntP, boolArrP}, call: func(_ *Interpreter, op Token, args []Value) (Value, error) {
			minCut, err := frameCount(op, args[0])
			if err != nil {
				return nil, err
			}
			minClip, err := frameCount(op, args[1])
			if err != nil {
				return nil, err
			}
			return BoolArr(boolarr.Cook(args[2].(BoolArr), minClip, minCut)), nil
		}},
		TokBoolArr: {min: 0, max: -1, types: []predicate{{"real?", func(v Value) bool { return isReal(v) || isBool(v) }}}, call: func(_ *Interpreter, _ Token, args []Value) (Value, error) {
			arr := make(BoolArr, len(args))
			for i, v := range args {
				if b, ok := v.(Bool); ok {
					arr[i] = bool(b)
				} else {
					arr[i] = !isZero(v)
				}
			}
			return arr, nil
		}},
	}
}

// checkArgs enforces the arity range and declared types of p
func checkArgs(op Token, p *primitive, args []Value) error {
	n := len(args)
	switch {
	case p.min == p.max && n != p.min:
		return newError(ArityError, "%s: Arity mismatch. Expected %d, got %d", op.Text, p.min, n)
	case p.max < 0 && n < p.min:
		return newError(ArityError, "%s: Arity mismatch. Expected at least %d, got %d", op.Text, p.min, n)
	case p.max >= 0 && (n < p.min || n > p.max):
		return newError(ArityError, "%s: Arity mismatch. Expected between %d and %d, got %d", op.Text, p.min, p.max, n)
	}
	return checkTypes(op, p.types, args)
}

func checkTypes(op Token, types []predicate, args []Value) error {
	if len(types) == 0 {
		return nil
	}
	for i, v := range args {
		if !types[min(i, len(types)-1)].check(v) {
			names := make([]string, len(types))
			for j, t := range types {
				names[j] = t.name
			}
			return newError(TypeError, "%s expects: %s", op.Text, strings.Join(names, " "))
		}
	}
	return nil
}

// frameCount converts an exact integer argument to an int
func frameCount(op Token, v Value) (int, error) {
	n := v.(Int).V
	if !n.IsInt64() || n.Int64() > math.MaxInt32 || n.Int64() < math.MinInt32 {
		return 0, newError(EvalError, "%s: %s is out of range", op.Text, n)
	}
	return int(n.Int64()), nil
}

func display(ip *Interpreter, _ Token, args []Value) (Value, error) {
	v := args[0]
	s := v.String()
	if isBoolArr(v) {
		s += "\n"
	}
	if _, err := fmt.Fprint(ip.out, s); err != nil {
		return nil, &Error{Kind: EvalError, Msg: "display", Err: err}
	}
	return None{}, nil
}

func not(_ *Interpreter, op Token, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Bool:
		return !v, nil
	case BoolArr:
		return BoolArr(boolarr.Not(v)), nil
	}
	return nil, newError(TypeError, "%s expects: boolean? or boolarr?", op.Text)
}

func reduceLogical(op Token, args []Value, b func(x, y bool) bool, arr func(x, y []bool) []bool) (Value, error) {
	switch args[0].(type) {
	case Bool:
		acc := bool(args[0].(Bool))
		for _, v := range args[1:] {
			x, ok := v.(Bool)
			if !ok {
				return nil, newError(TypeError, "%s got wrong type", op.Text)
			}
			acc = b(acc, bool(x))
		}
		return Bool(acc), nil
	case BoolArr:
		acc := []bool(args[0].(BoolArr))
		for _, v := range args[1:] {
			x, ok := v.(BoolArr)
			if !ok {
				return nil, newError(TypeError, "%s got wrong type", op.Text)
			}
			acc = arr(acc, x)
		}
		return BoolArr(acc), nil
	}
	return nil, newError(TypeError, "%s got wrong type", op.Text)
}

func arithmetic(_ *Interpreter, op Token, args []Value) (Value, error) {
	for _, v := range args {
		if !isNumber(v) {
			return nil, newError(TypeError, "%s got wrong type", op.Text)
		}
	}

	switch op.Type {
	case TokPlus, TokMul:
		acc := Value(NewInt(0))
		if op.Type == TokMul {
			acc = NewInt(1)
		}
		for _, v := range args {
			acc = arith(op.Type, acc, v)
		}
		return acc, nil
	case TokMinus:
		if len(args) == 1 {
			return negate(args[0]), nil
		}
		acc := args[0]
		for _, v := range args[1:] {
			acc = arith(TokMinus, acc, v)
		}
		return acc, nil
	}

	if len(args) == 1 {
		args = append([]Value{NewInt(1)}, args...)
	}
	acc := args[0]
	for _, v := range args[1:] {
		var err error
		if acc, err = divide(acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func margin(_ *Interpreter, op Token, args []Value) (Value, error) {
	types := []predicate{exactIntP, boolArrP}
	if len(args) == 3 {
		types = []predicate{exactIntP, exactIntP, boolArrP}
	}
	if err := checkTypes(op, types, args); err != nil {
		return nil, err
	}
	start, err := frameCount(op, args[0])
	if err != nil {
		return nil, err
	}
	end := start
	if len(args) == 3 {
		if end, err = frameCount(op, args[1]); err != nil {
			return nil, err
		}
	}
	return BoolArr(boolarr.Margin(args[len(args)-1].(BoolArr), start, end)), nil
}
