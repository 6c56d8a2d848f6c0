package lang

import (
	"errors"
	"fmt"
)

// Kind classifies a language error
type Kind int

const (
	LexError Kind = iota
	ParseError
	EvalError
	ArityError
	TypeError
	ConfigError
)

var kindNames = [...]string{
	LexError:    "LexError",
	ParseError:  "ParseError",
	EvalError:   "EvalError",
	ArityError:  "ArityError",
	TypeError:   "TypeError",
	ConfigError: "ConfigError",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned by every stage of the language.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a language error of kind k
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}
