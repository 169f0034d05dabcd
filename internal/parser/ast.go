// Package parser builds the AST from a token stream: a two-stack
// shunting-yard expression parser feeding a recursive-descent statement
// grammar (spec §4.G).
package parser

import "kslang/internal/lexer"

// Node is implemented by every AST node. Pos/End give the token range,
// used for diagnostics and by the compiler's debug side table.
type Node interface {
	Pos() lexer.Token
	End() lexer.Token
}

type base struct {
	pos, end lexer.Token
}

func (b base) Pos() lexer.Token { return b.pos }
func (b base) End() lexer.Token { return b.end }

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct{ base }

func (exprBase) exprNode() {}

// --- literals ---

type IntLit struct {
	exprBase
	Text string
}

type FloatLit struct {
	exprBase
	Text string
}

type StrLit struct {
	exprBase
	Raw string // unescaped lexeme; escapes resolved here at construction
}

type BoolLit struct {
	exprBase
	Value bool
}

type NoneLit struct{ exprBase }

type Ident struct {
	exprBase
	Name string
}

// --- compound literals ---

type TupleLit struct {
	exprBase
	Items []Expr
}

type ListLit struct {
	exprBase
	Items []Expr
}

type DictEntry struct {
	Key, Val Expr
}

type DictLit struct {
	exprBase
	Entries []DictEntry
}

// FuncLit is a function literal: `func(params) { body }` or
// `func name(params) { body }` at statement position (FuncDecl wraps it
// with a name binding there; as an expression it's anonymous).
type FuncLit struct {
	exprBase
	Name     string
	Params   []string
	Defaults []Expr // nil entries for params without a default
	Body     *Block
}

// --- operators ---

type UnaryExpr struct {
	exprBase
	Op      lexer.TokenType
	Operand Expr
}

type BinaryExpr struct {
	exprBase
	Op          lexer.TokenType
	Left, Right Expr
}

// LogicalExpr is && / || — kept distinct from BinaryExpr because its
// codegen is short-circuiting jump patterns, not an operator-slot call
// (SPEC_FULL.md Open Question decision 3).
type LogicalExpr struct {
	exprBase
	Op          lexer.TokenType // "&&" or "||"
	Left, Right Expr
}

type AssignExpr struct {
	exprBase
	Target Expr // Ident, AttrExpr, or IndexExpr
	Value  Expr
}

type AttrExpr struct {
	exprBase
	Object Expr
	Name   string
}

type IndexExpr struct {
	exprBase
	Object Expr
	Keys   []Expr
}

type CallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
}
