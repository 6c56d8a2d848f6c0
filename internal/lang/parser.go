package lang

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser primes a parser with the first token of l
func NewParser(l *Lexer) (*Parser, error) {
	p := &Parser{lexer: l}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse lexes and parses a whole program
func Parse(text string) (*Compound, error) {
	p, err := NewParser(NewLexer(text))
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

func (p *Parser) next() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) errorf(format string, args ...any) *Error {
	return newError(ParseError, format, args...)
}

func (p *Parser) expect(tt TokenType) error {
	if p.cur.Type != tt {
		if p.cur.Type == TokEOF {
			return p.errorf("unexpected end of input, expected ')'")
		}
		return p.errorf("expected ')' at %d:%d, got %s", p.cur.Line, p.cur.Col, p.cur)
	}
	return p.next()
}

// ParseProgram parses top-level expressions until end of input.
func (p *Parser) ParseProgram() (*Compound, error) {
	prog := &Compound{}
	for p.cur.Type != TokEOF {
		if p.cur.Type == TokRParen {
			return nil, p.errorf("unmatched ')' at %d:%d", p.cur.Line, p.cur.Col)
		}
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, node)
	}
	return prog, nil
}

func (p *Parser) parseExpr() (Node, error) {
	tok := p.cur
	switch {
	case tok.Type == TokEOF:
		return nil, p.errorf("unexpected end of input")
	case tok.Type == TokRParen:
		return nil, p.errorf("unexpected ')' at %d:%d", tok.Line, tok.Col)
	case tok.Type == TokIdent:
		if err := p.next(); err != nil {
			return nil, err
		}
		return &Var{Name: tok.Text}, nil
	case tok.Type == TokLParen:
		return p.parseGroup()
	case tok.Type.IsOperator():
		return p.parseApply()
	}
	return p.parseLiteral()
}

func (p *Parser) parseLiteral() (Node, error) {
	tok := p.cur
	if err := p.next(); err != nil {
		return nil, err
	}
	switch tok.Type {
	case TokNumber:
		return &NumLit{Val: tok.Val}, nil
	case TokString:
		return &StrLit{Val: tok.Text}, nil
	case TokBool:
		return &BoolLit{Val: bool(tok.Val.(Bool))}, nil
	case TokSelector:
		return &SelectorLit{Raw: tok.Text}, nil
	case TokDuration:
		return durationFrames(tok), nil
	}
	return nil, p.errorf("unexpected token %s", tok)
}

// durationFrames rewrites "N<unit>" as (exact-round (* N timebase)).
func durationFrames(tok Token) Node {
	mul := &ManyOp{
		Op:       Token{Type: TokMul, Text: "*", Line: tok.Line, Col: tok.Col},
		Children: []Node{&NumLit{Val: tok.Val}, &Var{Name: "timebase"}},
	}
	return &ManyOp{
		Op:       Token{Type: TokExactRound, Text: "exact-round", Line: tok.Line, Col: tok.Col},
		Children: []Node{mul},
	}
}

func (p *Parser) parseGroup() (Node, error) {
	if err := p.next(); err != nil { // (
		return nil, err
	}
	switch {
	case p.cur.Type.IsLiteral():
		return nil, p.errorf("expected procedure at %d:%d, got %s", p.cur.Line, p.cur.Col, p.cur)
	case p.cur.Type == TokRParen:
		return nil, p.errorf("expected procedure at %d:%d, got ()", p.cur.Line, p.cur.Col)
	}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return node, nil
}

// parseApply consumes an operator and its arguments up to the next ')' or
// end of input. The ')' itself belongs to the enclosing group.
func (p *Parser) parseApply() (Node, error) {
	op := &ManyOp{Op: p.cur}
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.cur.Type != TokRParen && p.cur.Type != TokEOF {
		child, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		op.Children = append(op.Children, child)
	}
	return op, nil
}
