package lang

import (
	"strconv"
	"strings"
)

// Node is a parsed expression
type Node interface {
	String() string
	node()
}

// Compound is a whole program: its top-level expressions in order
type Compound struct {
	Children []Node
}

// ManyOp applies an operator to any number of argument expressions
type ManyOp struct {
	Op       Token
	Children []Node
}

// Var references a binding in the environment
type Var struct {
	Name string
}

// NumLit is a numeric literal
type NumLit struct {
	Val Value
}

// StrLit is a string literal
type StrLit struct {
	Val string
}

// BoolLit is #t or #f
type BoolLit struct {
	Val bool
}

// SelectorLit is an array selector such as "audio:threshold=0.1", resolved
// when evaluated.
type SelectorLit struct {
	Raw string
}

func (*Compound) node()    {}
func (*ManyOp) node()      {}
func (*Var) node()         {}
func (*NumLit) node()      {}
func (*StrLit) node()      {}
func (*BoolLit) node()     {}
func (*SelectorLit) node() {}

func (c *Compound) String() string {
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = child.String()
	}
	return strings.Join(parts, "\n")
}

func (m *ManyOp) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(m.Op.Text)
	for _, child := range m.Children {
		b.WriteString(" ")
		b.WriteString(child.String())
	}
	b.WriteString(")")
	return b.String()
}

func (v *Var) String() string         { return v.Name }
func (n *NumLit) String() string      { return n.Val.String() }
func (s *StrLit) String() string      { return strconv.Quote(s.Val) }
func (s *SelectorLit) String() string { return s.Raw }

func (b *BoolLit) String() string {
	return Bool(b.Val).String()
}
