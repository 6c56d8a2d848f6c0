package lang

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kikiluvv/autocut/internal/selector"
)

// Lexer turns edit source text into tokens, one NextToken call at a time.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// NewLexer creates a lexer over text
func NewLexer(text string) *Lexer {
	return &Lexer{src: text, line: 1, col: 1}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(offset int) rune {
	p := l.pos
	for ; offset > 0 && p < len(l.src); offset-- {
		_, size := utf8.DecodeRuneInString(l.src[p:])
		p += size
	}
	if p >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[p:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) errorf(line, col int, format string, args ...any) *Error {
	e := newError(LexError, format, args...)
	e.Msg += " at " + strconv.Itoa(line) + ":" + strconv.Itoa(col)
	return e
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune("()[]{}\"'`;|\\", r) || unicode.IsSpace(r)
}

func isNumberChar(r rune) bool {
	return strings.ContainsRune("+-0123456789./", r)
}

func isNumberStart(r rune) bool {
	return r == '.' || (r >= '0' && r <= '9')
}

// NextToken returns the next token, or a TokEOF token once the input is
// exhausted.
func (l *Lexer) NextToken() (Token, error) {
	for !l.atEnd() {
		r := l.peek()
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		if r == ';' {
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			continue
		}

		line, col := l.line, l.col
		switch {
		case r == '(':
			l.advance()
			return Token{Type: TokLParen, Text: "(", Line: line, Col: col}, nil
		case r == ')':
			l.advance()
			return Token{Type: TokRParen, Text: ")", Line: line, Col: col}, nil
		case r == '"':
			return l.scanString()
		case (r == '+' || r == '-') && isNumberStart(l.peekAt(1)):
			return l.scanNumber()
		case isNumberStart(r):
			return l.scanNumber()
		case isDelimiter(r):
			l.advance()
			return Token{}, l.errorf(line, col, "unexpected character %q", r)
		}
		return l.scanWord()
	}
	return Token{Type: TokEOF, Line: l.line, Col: l.col}, nil
}

func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening quote

	var buf strings.Builder
	for !l.atEnd() {
		r := l.advance()
		switch r {
		case '"':
			return Token{Type: TokString, Text: buf.String(), Val: Str(buf.String()), Line: line, Col: col}, nil
		case '\\':
			if l.atEnd() {
				return Token{}, l.errorf(line, col, "unterminated string")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			default:
				return Token{}, l.errorf(line, col, "unknown escape sequence \\%c", esc)
			}
		default:
			buf.WriteRune(r)
		}
	}
	return Token{}, l.errorf(line, col, "unterminated string")
}

func (l *Lexer) scanWhile(ok func(rune) bool) string {
	start := l.pos
	for !l.atEnd() && ok(l.peek()) {
		l.advance()
	}
	return l.src[start:l.pos]
}

func (l *Lexer) scanNumber() (Token, error) {
	line, col := l.line, l.col
	digits := l.scanWhile(isNumberChar)
	unit := l.scanWhile(func(r rune) bool { return !isDelimiter(r) })

	ident := Token{Type: TokIdent, Text: digits + unit, Line: line, Col: col}
	switch {
	case unit == "i":
		c, ok := parseImaginary(digits)
		if !ok {
			return ident, nil
		}
		return Token{Type: TokNumber, Text: digits + unit, Val: c, Line: line, Col: col}, nil
	case unit != "" && !durationUnits[unit]:
		return ident, nil
	}

	v, ok := parseReal(digits)
	if !ok {
		return ident, nil
	}
	if unit != "" {
		return Token{Type: TokDuration, Text: digits + unit, Val: v, Line: line, Col: col}, nil
	}
	return Token{Type: TokNumber, Text: digits, Val: v, Line: line, Col: col}, nil
}

// parseReal reads an exact rational, a float or an exact integer.
func parseReal(s string) (Value, bool) {
	switch {
	case strings.Contains(s, "/"):
		num, den, _ := strings.Cut(s, "/")
		a, ok := new(big.Int).SetString(num, 10)
		if !ok {
			return nil, false
		}
		b, ok := new(big.Int).SetString(den, 10)
		if !ok || b.Sign() == 0 {
			return nil, false
		}
		return exactRat(new(big.Rat).SetFrac(a, b)), true
	case strings.Contains(s, "."):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return Float(f), true
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return Int{V: n}, true
}

// parseImaginary reads "b" or "a+b" / "a-b" in front of an "i" suffix.
func parseImaginary(s string) (Value, bool) {
	re, im := "", s
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		re, im = s[:i], s[i:]
	}
	b, err := strconv.ParseFloat(im, 64)
	if err != nil {
		return nil, false
	}
	var a float64
	if re != "" {
		if a, err = strconv.ParseFloat(re, 64); err != nil {
			return nil, false
		}
	}
	return Complex(complex(a, b)), true
}

func (l *Lexer) scanWord() (Token, error) {
	line, col := l.line, l.col
	word := l.scanWhile(func(r rune) bool { return !isDelimiter(r) })
	tok := Token{Type: TokIdent, Text: word, Line: line, Col: col}

	switch word {
	case "#t", "#true":
		tok.Type, tok.Val = TokBool, Bool(true)
		return tok, nil
	case "#f", "#false":
		tok.Type, tok.Val = TokBool, Bool(false)
		return tok, nil
	}
	if t, ok := operators[word]; ok {
		tok.Type = t
		return tok, nil
	}
	if _, ok := selector.Lookup(word); ok {
		tok.Type = TokSelector
		return tok, nil
	}
	return tok, nil
}
