package parser

import (
	"strings"

	"kslang/internal/lexer"
)

// opFrame is one entry of the shunting-yard's pending-operator stack.
type opFrame struct {
	op    lexer.TokenType
	prec  int
	right bool // right-associative
	at    lexer.Token
}

// binPrec returns (precedence, rightAssoc, ok) for a token that can
// appear as a binary infix operator, per spec §4.G's precedence chain
// (low to high): assignment, logical, comparison, additive,
// multiplicative — power and unary are handled inside unary since
// they bind tighter than anything on this stack.
func binPrec(t lexer.TokenType) (int, bool, bool) {
	switch t {
	case lexer.ASSIGN:
		return 1, true, true
	case lexer.OR:
		return 2, false, true
	case lexer.AND:
		return 3, false, true
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE, lexer.EQ, lexer.NE:
		return 4, false, true
	case lexer.PLUS, lexer.MINUS:
		return 5, false, true
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return 6, false, true
	}
	return 0, false, false
}

// expression runs the two-stack shunting-yard algorithm: operand() pushes
// onto the output stack; a binary operator is shifted onto the operator
// stack only after popping (and reducing) every pending operator that
// binds at least as tight, so the output stack always holds a valid
// postfix-reducible sequence.
func (p *Parser) expression() (Expr, error) {
	var output []Expr
	var ops []opFrame

	reduce := func() error {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := output[len(output)-1]
		left := output[len(output)-2]
		output = output[:len(output)-2]
		sp := tok(left.Pos(), right.End())
		switch top.op {
		case lexer.ASSIGN:
			output = append(output, &AssignExpr{exprBase: exprBase{sp}, Target: left, Value: right})
		case lexer.AND, lexer.OR:
			output = append(output, &LogicalExpr{exprBase: exprBase{sp}, Op: top.op, Left: left, Right: right})
		default:
			output = append(output, &BinaryExpr{exprBase: exprBase{sp}, Op: top.op, Left: left, Right: right})
		}
		return nil
	}

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	output = append(output, operand)

	for {
		prec, right, ok := binPrec(p.cur().Type)
		if !ok {
			break
		}
		for len(ops) > 0 && (ops[len(ops)-1].prec > prec || (ops[len(ops)-1].prec == prec && !right)) {
			if err := reduce(); err != nil {
				return nil, err
			}
		}
		opTok := p.advance()
		p.skipNL()
		ops = append(ops, opFrame{op: opTok.Type, prec: prec, right: right, at: opTok})
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		output = append(output, rhs)
	}
	for len(ops) > 0 {
		if err := reduce(); err != nil {
			return nil, err
		}
	}
	return output[0], nil
}

// unary handles prefix `-`/`~`, then power (right-assoc, binds tighter
// than unary: `-2**2` parses as `-(2**2)`), then the postfix chain.
func (p *Parser) unary() (Expr, error) {
	if p.check(lexer.MINUS) || p.check(lexer.TILDE) {
		opTok := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{exprBase: exprBase{tok(opTok, operand.End())}, Op: opTok.Type, Operand: operand}, nil
	}
	return p.power()
}

func (p *Parser) power() (Expr, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.POW) {
		p.advance()
		p.skipNL()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{exprBase: exprBase{tok(base.Pos(), exp.End())}, Op: lexer.POW, Left: base, Right: exp}, nil
	}
	return base, nil
}

// postfix handles the left-recursive suffix chain: attribute access,
// calls, and subscripts, any of which may repeat (`a.b[0](x).c`).
func (p *Parser) postfix() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(lexer.DOT):
			p.advance()
			name, err := p.consume(lexer.IDENT, "expected attribute name after '.'")
			if err != nil {
				return nil, err
			}
			e = &AttrExpr{exprBase: exprBase{tok(e.Pos(), name)}, Object: e, Name: name.Lexeme}
		case p.check(lexer.LPAREN):
			p.advance()
			args, endTok, err := p.exprList(lexer.RPAREN)
			if err != nil {
				return nil, err
			}
			e = &CallExpr{exprBase: exprBase{tok(e.Pos(), endTok)}, Callee: e, Args: args}
		case p.check(lexer.LBRACKET):
			p.advance()
			keys, endTok, err := p.exprList(lexer.RBRACKET)
			if err != nil {
				return nil, err
			}
			if len(keys) == 0 {
				return nil, p.errf("empty subscript")
			}
			e = &IndexExpr{exprBase: exprBase{tok(e.Pos(), endTok)}, Object: e, Keys: keys}
		default:
			return e, nil
		}
	}
}

// exprList parses a comma-separated expression list up to (and
// consuming) closing, tolerating newlines after commas/open bracket.
func (p *Parser) exprList(closing lexer.TokenType) ([]Expr, lexer.Token, error) {
	p.skipNL()
	var items []Expr
	if p.check(closing) {
		end := p.advance()
		return items, end, nil
	}
	for {
		e, err := p.expression()
		if err != nil {
			return nil, lexer.Token{}, err
		}
		items = append(items, e)
		p.skipNL()
		if p.check(lexer.COMMA) {
			p.advance()
			p.skipNL()
			if p.check(closing) { // trailing comma
				break
			}
			continue
		}
		break
	}
	end, err := p.consume(closing, "expected closing bracket")
	if err != nil {
		return nil, lexer.Token{}, err
	}
	return items, end, nil
}

// primary parses literals, identifiers, parenthesized groups/tuples,
// list/dict literals, and function literals. Tuple disambiguation (spec
// §4.G / §8): `(x)` is just `x`; `(x,)` is a 1-tuple; `(x, y)` is a
// 2-tuple; `()` is a SyntaxError (use `(,)` for the empty tuple).
func (p *Parser) primary() (Expr, error) {
	t := p.cur()
	switch t.Type {
	case lexer.INT:
		p.advance()
		return &IntLit{exprBase: exprBase{tok(t, t)}, Text: t.Lexeme}, nil
	case lexer.FLOAT:
		p.advance()
		return &FloatLit{exprBase: exprBase{tok(t, t)}, Text: t.Lexeme}, nil
	case lexer.STRING:
		p.advance()
		return &StrLit{exprBase: exprBase{tok(t, t)}, Raw: unescape(t.Lexeme)}, nil
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return &BoolLit{exprBase: exprBase{tok(t, t)}, Value: t.Type == lexer.TRUE}, nil
	case lexer.NONE:
		p.advance()
		return &NoneLit{exprBase: exprBase{tok(t, t)}}, nil
	case lexer.IDENT:
		p.advance()
		return &Ident{exprBase: exprBase{tok(t, t)}, Name: t.Lexeme}, nil
	case lexer.FUNC:
		return p.funcLiteral()
	case lexer.LBRACKET:
		p.advance()
		items, end, err := p.exprList(lexer.RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ListLit{exprBase: exprBase{tok(t, end)}, Items: items}, nil
	case lexer.LBRACE:
		return p.dictLiteral(t)
	case lexer.LPAREN:
		return p.parenOrTuple(t)
	}
	return nil, p.errf("unexpected token %s in expression", t.Type)
}

func (p *Parser) parenOrTuple(open lexer.Token) (Expr, error) {
	p.advance() // consume '('
	p.skipNL()
	if p.check(lexer.COMMA) {
		// "(,)" is the empty tuple spelling.
		p.advance()
		p.skipNL()
		end, err := p.consume(lexer.RPAREN, "expected ')' after '(,'")
		if err != nil {
			return nil, err
		}
		return &TupleLit{exprBase: exprBase{tok(open, end)}}, nil
	}
	if p.check(lexer.RPAREN) {
		end := p.advance()
		return nil, p.errf("empty '()' is not an expression; use '(,)' for the empty tuple at %d:%d", open.Line, end.Column)
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.skipNL()
	if p.check(lexer.COMMA) {
		items := []Expr{first}
		for p.check(lexer.COMMA) {
			p.advance()
			p.skipNL()
			if p.check(lexer.RPAREN) {
				break // trailing comma after the last element
			}
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			items = append(items, e)
			p.skipNL()
		}
		end, err := p.consume(lexer.RPAREN, "expected ')' to close tuple")
		if err != nil {
			return nil, err
		}
		return &TupleLit{exprBase: exprBase{tok(open, end)}, Items: items}, nil
	}
	if _, err := p.consume(lexer.RPAREN, "expected ')'"); err != nil {
		return nil, err
	}
	// A bare parenthesized expression: "(x)" is just x, not a 1-tuple.
	return first, nil
}

func (p *Parser) dictLiteral(open lexer.Token) (Expr, error) {
	p.advance() // '{'
	p.skipNL()
	var entries []DictEntry
	for !p.check(lexer.RBRACE) {
		key, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.COLON, "expected ':' in dict entry"); err != nil {
			return nil, err
		}
		p.skipNL()
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		entries = append(entries, DictEntry{Key: key, Val: val})
		p.skipNL()
		if p.check(lexer.COMMA) {
			p.advance()
			p.skipNL()
			continue
		}
		break
	}
	end, err := p.consume(lexer.RBRACE, "expected '}' to close dict literal")
	if err != nil {
		return nil, err
	}
	return &DictLit{exprBase: exprBase{tok(open, end)}, Entries: entries}, nil
}

func (p *Parser) funcLiteral() (Expr, error) {
	start := p.advance() // 'func'
	name := ""
	if p.check(lexer.IDENT) {
		name = p.advance().Lexeme
	}
	if _, err := p.consume(lexer.LPAREN, "expected '(' after func"); err != nil {
		return nil, err
	}
	var params []string
	var defaults []Expr
	p.skipNL()
	for !p.check(lexer.RPAREN) {
		pn, err := p.consume(lexer.IDENT, "expected parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, pn.Lexeme)
		if p.check(lexer.ASSIGN) {
			p.advance()
			d, err := p.expression()
			if err != nil {
				return nil, err
			}
			defaults = append(defaults, d)
		} else {
			defaults = append(defaults, nil)
		}
		p.skipNL()
		if p.check(lexer.COMMA) {
			p.advance()
			p.skipNL()
			continue
		}
		break
	}
	if _, err := p.consume(lexer.RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FuncLit{exprBase: exprBase{tok(start, body.End())}, Name: name, Params: params, Defaults: defaults, Body: body}, nil
}

// unescape resolves backslash escapes deferred by the lexer (spec §4.F:
// the scanner keeps string tokens raw; escapes are resolved when the AST
// literal node is built).
func unescape(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}
