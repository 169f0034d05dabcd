package parser

import "kslang/internal/lexer"

// statement dispatches to the production named by the current token,
// per spec §4.G's grammar (ret / if-elif-else / while / try-catch /
// func / type / block / expression-statement).
func (p *Parser) statement() (Stmt, error) {
	switch p.cur().Type {
	case lexer.RET:
		return p.retStmt()
	case lexer.IF:
		return p.ifStmt()
	case lexer.WHILE:
		return p.whileStmt()
	case lexer.FOR:
		return p.forStmt()
	case lexer.TRY:
		return p.tryStmt()
	case lexer.FUNC:
		return p.funcDecl()
	case lexer.TYPE:
		return p.typeDecl()
	case lexer.LBRACE:
		return p.block()
	default:
		return p.exprStmt()
	}
}

// terminator consumes the one terminator a statement needs, tolerating
// any of newline/semicolon/EOF/a following '}', or a following
// 'else'/'elif' that continues a single-statement if clause (spec §4.G).
func (p *Parser) terminator() error {
	if p.check(lexer.NEWLINE) || p.check(lexer.SEMI) {
		p.advance()
		p.skipTerminators()
		return nil
	}
	if p.atEnd() || p.check(lexer.RBRACE) || p.check(lexer.ELSE) || p.check(lexer.ELIF) {
		return nil
	}
	return p.errf("expected end of statement, got %s", p.cur().Type)
}

func (p *Parser) exprStmt() (Stmt, error) {
	start := p.cur()
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	return &ExprStmt{stmtBase: stmtBase{tok(start, e.End())}, X: e}, nil
}

func (p *Parser) retStmt() (Stmt, error) {
	start := p.advance() // 'ret'
	end := start
	var value Expr
	if !p.check(lexer.NEWLINE) && !p.check(lexer.SEMI) && !p.atEnd() && !p.check(lexer.RBRACE) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
		end = v.End()
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	return &RetStmt{stmtBase: stmtBase{tok(start, end)}, Value: value}, nil
}

// singleOrBlock parses either a `{ ... }` block or, per spec §4.G's
// "comma-after-condition single-statement shorthand", a single
// statement introduced by a comma (`if x, ret 1`).
func (p *Parser) singleOrBlock() (*Block, error) {
	if p.check(lexer.LBRACE) {
		return p.block()
	}
	if p.check(lexer.COMMA) {
		p.advance()
		p.skipNL()
	}
	start := p.cur()
	st, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &Block{stmtBase: stmtBase{tok(start, st.End())}, Stmts: []Stmt{st}}, nil
}

func (p *Parser) block() (*Block, error) {
	open, err := p.consume(lexer.LBRACE, "expected '{'")
	if err != nil {
		return nil, err
	}
	p.skipTerminators()
	var stmts []Stmt
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		p.skipTerminators()
	}
	end, err := p.consume(lexer.RBRACE, "expected '}' to close block")
	if err != nil {
		return nil, err
	}
	return &Block{stmtBase: stmtBase{tok(open, end)}, Stmts: stmts}, nil
}

func (p *Parser) ifStmt() (Stmt, error) {
	start := p.advance() // 'if'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	// "then" is optional sugar before a single-statement body; accepted
	// and discarded when present, absent otherwise.
	p.match(lexer.THEN)
	body, err := p.singleOrBlock()
	if err != nil {
		return nil, err
	}
	clauses := []IfClause{{Cond: cond, Body: body}}
	var elseBlock *Block
	end := body.End()
	for p.check(lexer.ELIF) {
		p.advance()
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.match(lexer.THEN)
		b, err := p.singleOrBlock()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, IfClause{Cond: c, Body: b})
		end = b.End()
	}
	if p.check(lexer.ELSE) {
		p.advance()
		b, err := p.singleOrBlock()
		if err != nil {
			return nil, err
		}
		elseBlock = b
		end = b.End()
	}
	return &IfStmt{stmtBase: stmtBase{tok(start, end)}, Clauses: clauses, Else: elseBlock}, nil
}

func (p *Parser) whileStmt() (Stmt, error) {
	start := p.advance() // 'while'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(lexer.DO)
	body, err := p.singleOrBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{stmtBase: stmtBase{tok(start, body.End())}, Cond: cond, Body: body}, nil
}

// forStmt parses "for name[, name] in expr { body }", accepting the
// same comma-shorthand single-statement body while/if do.
func (p *Parser) forStmt() (Stmt, error) {
	start := p.advance() // 'for'
	first, err := p.consume(lexer.IDENT, "expected loop variable name")
	if err != nil {
		return nil, err
	}
	names := []string{first.Lexeme}
	if p.check(lexer.COMMA) {
		p.advance()
		second, err := p.consume(lexer.IDENT, "expected loop variable name")
		if err != nil {
			return nil, err
		}
		names = append(names, second.Lexeme)
	}
	if _, err := p.consume(lexer.IN, "expected 'in' after for-loop variable(s)"); err != nil {
		return nil, err
	}
	iterable, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.singleOrBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{stmtBase: stmtBase{tok(start, body.End())}, Names: names, Iterable: iterable, Body: body}, nil
}

func (p *Parser) tryStmt() (Stmt, error) {
	start := p.advance() // 'try'
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.CATCH, "expected 'catch' after try block"); err != nil {
		return nil, err
	}
	errName := ""
	if p.check(lexer.IDENT) {
		errName = p.advance().Lexeme
	}
	catchBody, err := p.block()
	if err != nil {
		return nil, err
	}
	return &TryStmt{stmtBase: stmtBase{tok(start, catchBody.End())}, Body: body, ErrName: errName, Catch: catchBody}, nil
}

func (p *Parser) funcDecl() (Stmt, error) {
	start := p.cur()
	lit, err := p.funcLiteral()
	if err != nil {
		return nil, err
	}
	fn := lit.(*FuncLit)
	if fn.Name == "" {
		return nil, p.errf("function declaration requires a name")
	}
	return &FuncDecl{stmtBase: stmtBase{tok(start, fn.End())}, Fn: fn}, nil
}

func (p *Parser) typeDecl() (Stmt, error) {
	start := p.advance() // 'type'
	name, err := p.consume(lexer.IDENT, "expected type name")
	if err != nil {
		return nil, err
	}
	var parents []string
	if p.check(lexer.COLON) {
		p.advance()
		for {
			pn, err := p.consume(lexer.IDENT, "expected parent type name")
			if err != nil {
				return nil, err
			}
			parents = append(parents, pn.Lexeme)
			if p.check(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.consume(lexer.LBRACE, "expected '{' to open type body"); err != nil {
		return nil, err
	}
	p.skipTerminators()
	var methods []*FuncLit
	for !p.check(lexer.RBRACE) && !p.atEnd() {
		if !p.check(lexer.FUNC) {
			return nil, p.errf("expected method declaration in type body, got %s", p.cur().Type)
		}
		lit, err := p.funcLiteral()
		if err != nil {
			return nil, err
		}
		fn := lit.(*FuncLit)
		if fn.Name == "" {
			return nil, p.errf("type method requires a name")
		}
		methods = append(methods, fn)
		p.skipTerminators()
	}
	end, err := p.consume(lexer.RBRACE, "expected '}' to close type body")
	if err != nil {
		return nil, err
	}
	return &TypeDecl{stmtBase: stmtBase{tok(start, end)}, Name: name.Lexeme, Parents: parents, Methods: methods}, nil
}
