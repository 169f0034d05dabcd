package parser

import (
	"kslang/internal/kerr"
	"kslang/internal/lexer"
)

// Parser consumes a token slice and builds the AST. Expressions are
// parsed with an explicit two-stack shunting-yard (output values /
// pending operators), matching kscript's src/types/parser.c rather than
// the teacher's precedence-climbing recursive descent (spec §4.G);
// statements are recursive descent, following the teacher's
// consume/check/match/peek cursor idiom.
type Parser struct {
	file   string
	toks   []lexer.Token
	pos    int
}

func NewParser(file string, toks []lexer.Token) *Parser {
	// Statement parsing wants to see NEWLINE as a real token (it
	// terminates statements); expression parsing steps over newlines via
	// skipNL. Comments never carry meaning, so they are dropped up front
	// and neither kind of parsing sees them.
	filtered := make([]lexer.Token, 0, len(toks))
	for _, t := range toks {
		if t.Type != lexer.COMMENT {
			filtered = append(filtered, t)
		}
	}
	return &Parser{file: file, toks: filtered}
}

// Parse parses a whole source file as an implicit top-level block.
func (p *Parser) Parse() (*Block, error) {
	start := p.cur()
	var stmts []Stmt
	p.skipTerminators()
	for !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		p.skipTerminators()
	}
	return &Block{stmtBase: stmtBase{tok(start, p.cur())}, Stmts: stmts}, nil
}

// --- token cursor ---

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) atEnd() bool { return p.cur().Type == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(t lexer.TokenType) bool { return p.cur().Type == t }

func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errf("%s (got %s)", msg, p.cur().Type)
}

func (p *Parser) errf(format string, args ...any) error {
	c := p.cur()
	return kerr.NewAt(kerr.SyntaxError, p.file, c.Line, c.Column, format, args...)
}

// skipTerminators consumes any run of NEWLINE/SEMI tokens — spec §4.G's
// "flexible newline/comment/semicolon statement terminators".
func (p *Parser) skipTerminators() {
	for p.check(lexer.NEWLINE) || p.check(lexer.SEMI) {
		p.advance()
	}
}

// skipNL is used inside expression parsing contexts (call args, bracket
// bodies) where a newline is just layout, not a terminator.
func (p *Parser) skipNL() {
	for p.check(lexer.NEWLINE) {
		p.advance()
	}
}
