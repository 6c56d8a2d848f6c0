package lang

import "fmt"

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokEOF TokenType = iota
	TokLParen
	TokRParen

	// Literals
	TokNumber
	TokString
	TokBool
	TokDuration
	TokSelector

	TokIdent

	// Special forms
	TokDefine
	TokSet

	// Primitives
	TokDisplay
	TokLength
	TokNot
	TokOr
	TokAnd
	TokXor
	TokPlus
	TokMinus
	TokMul
	TokDiv
	TokGt
	TokGe
	TokLt
	TokLe
	TokNumEq
	TokRound
	TokExactRound
	TokCeiling
	TokExactCeiling
	TokFloor
	TokExactFloor
	TokModulo
	TokAbs
	TokSqrt
	TokAdd1
	TokSub1
	TokStringAppend
	TokStringUpcase
	TokStringDowncase
	TokStringTitlecase
	TokStringLength
	TokNumberToString
	TokNumberQ
	TokRealQ
	TokExactIntegerQ
	TokStringQ
	TokExactQ
	TokBooleanQ
	TokBoolArrQ
	TokPositiveQ
	TokNegativeQ
	TokZeroQ
	TokEqualQ
	TokMargin
	TokMinCut
	TokMinClip
	TokCook
	TokBoolArr
	TokCountNonzero
)

// Token is a single lexed token. Val carries the parsed value of literal
// tokens; Text is the source spelling.
type Token struct {
	Type TokenType
	Text string
	Val  Value
	Line int
	Col  int
}

func (t Token) String() string {
	switch t.Type {
	case TokEOF:
		return "end of input"
	case TokString:
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Text
}

// IsLiteral reports whether the token is a self-evaluating literal
func (t TokenType) IsLiteral() bool {
	return t >= TokNumber && t <= TokSelector
}

// IsOperator reports whether the token names a special form or primitive
func (t TokenType) IsOperator() bool {
	return t >= TokDefine
}

var operators = map[string]TokenType{
	"define":           TokDefine,
	"set!":             TokSet,
	"display":          TokDisplay,
	"length":           TokLength,
	"not":              TokNot,
	"or":               TokOr,
	"and":              TokAnd,
	"xor":              TokXor,
	"+":                TokPlus,
	"-":                TokMinus,
	"*":                TokMul,
	"/":                TokDiv,
	">":                TokGt,
	">=":               TokGe,
	"<":                TokLt,
	"<=":               TokLe,
	"=":                TokNumEq,
	"round":            TokRound,
	"exact-round":      TokExactRound,
	"ceiling":          TokCeiling,
	"exact-ceiling":    TokExactCeiling,
	"floor":            TokFloor,
	"exact-floor":      TokExactFloor,
	"modulo":           TokModulo,
	"abs":              TokAbs,
	"sqrt":             TokSqrt,
	"add1":             TokAdd1,
	"sub1":             TokSub1,
	"string-append":    TokStringAppend,
	"string-upcase":    TokStringUpcase,
	"string-downcase":  TokStringDowncase,
	"string-titlecase": TokStringTitlecase,
	"string-length":    TokStringLength,
	"number->string":   TokNumberToString,
	"number?":          TokNumberQ,
	"real?":            TokRealQ,
	"exact-integer?":   TokExactIntegerQ,
	"string?":          TokStringQ,
	"exact?":           TokExactQ,
	"boolean?":         TokBooleanQ,
	"boolarr?":         TokBoolArrQ,
	"positive?":        TokPositiveQ,
	"negative?":        TokNegativeQ,
	"zero?":            TokZeroQ,
	"equal?":           TokEqualQ,
	"margin":           TokMargin,
	"mcut":             TokMinCut,
	"mincut":           TokMinCut,
	"mclip":            TokMinClip,
	"minclip":          TokMinClip,
	"cook":             TokCook,
	"boolarr":          TokBoolArr,
	"count-nonzero":    TokCountNonzero,
}

var durationUnits = map[string]bool{
	"s":       true,
	"sec":     true,
	"secs":    true,
	"second":  true,
	"seconds": true,
}
