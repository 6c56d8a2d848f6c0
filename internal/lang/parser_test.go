package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendering(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(+ 1 2)", "(+ 1 2)"},
		{"(margin 6 (mcut 3 audio:0.1))", "(margin 6 (mcut 3 audio:0.1))"},
		{`(display "hi")`, `(display "hi")`},
		{"(define x 3) x", "(define x 3)\nx"},
		{"(+)", "(+)"},
		{"(x)", "x"},
		{"5s", "(exact-round (* 5 timebase))"},
		{"(margin 1/2sec audio)", "(margin (exact-round (* 1/2 timebase)) audio)"},
		{"#t #f", "#t\n#f"},
		{"+ 1 2", "(+ 1 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, prog.String())
		})
	}
}

func TestParseNodeTypes(t *testing.T) {
	prog, err := Parse(`x 1 "s" #t audio:stream=1 (not x)`)
	require.NoError(t, err)
	require.Len(t, prog.Children, 6)
	assert.IsType(t, &Var{}, prog.Children[0])
	assert.IsType(t, &NumLit{}, prog.Children[1])
	assert.IsType(t, &StrLit{}, prog.Children[2])
	assert.IsType(t, &BoolLit{}, prog.Children[3])
	assert.IsType(t, &SelectorLit{}, prog.Children[4])
	op, ok := prog.Children[5].(*ManyOp)
	require.True(t, ok)
	assert.Equal(t, TokNot, op.Op.Type)
	assert.Len(t, op.Children, 1)
}

func TestParseEmptyProgram(t *testing.T) {
	prog, err := Parse("  ; nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, prog.Children)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(5 1)", "expected procedure"},
		{`("s")`, "expected procedure"},
		{"(#t)", "expected procedure"},
		{"(audio)", "expected procedure"},
		{"(3s)", "expected procedure"},
		{"()", "expected procedure"},
		{")", "unmatched ')'"},
		{"(+ 1 2))", "unmatched ')'"},
		{"(+ 1 2", "unexpected end of input"},
		{"(", "unexpected end of input"},
		{"(x 1)", "expected ')'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.True(t, IsKind(err, ParseError), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParsePropagatesLexErrors(t *testing.T) {
	_, err := Parse(`(string-append "a\x")`)
	require.Error(t, err)
	assert.True(t, IsKind(err, LexError))
}
