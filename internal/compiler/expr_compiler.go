package compiler

import (
	"math"
	"strconv"

	"kslang/internal/bytecode"
	"kslang/internal/callable"
	"kslang/internal/lexer"
	"kslang/internal/object"
	"kslang/internal/parser"
	"kslang/internal/value"
)

func (c *Compiler) compileExpr(e parser.Expr) error {
	switch n := e.(type) {
	case *parser.IntLit:
		i, err := value.ParseInt(n.Text)
		if err != nil {
			return err
		}
		return c.pushConst(n, i)
	case *parser.FloatLit:
		f, err := value.ParseFloat(n.Text)
		if err != nil {
			return err
		}
		return c.pushConst(n, f)
	case *parser.StrLit:
		return c.pushConst(n, value.NewStr(n.Raw))
	case *parser.BoolLit:
		if n.Value {
			c.emitOp(n, bytecode.CONST_TRUE)
		} else {
			c.emitOp(n, bytecode.CONST_FALSE)
		}
		return nil
	case *parser.NoneLit:
		c.emitOp(n, bytecode.CONST_NONE)
		return nil
	case *parser.Ident:
		idx := c.constStr(n.Name)
		c.emitOpArg(n, bytecode.LOAD, int32(idx))
		return nil
	case *parser.TupleLit:
		return c.compileExprSeq(n, n.Items, bytecode.TUPLE)
	case *parser.ListLit:
		return c.compileExprSeq(n, n.Items, bytecode.LIST)
	case *parser.DictLit:
		return c.compileDictLit(n)
	case *parser.FuncLit:
		return c.compileFuncLit(n)
	case *parser.UnaryExpr:
		return c.compileUnary(n)
	case *parser.BinaryExpr:
		return c.compileBinary(n)
	case *parser.LogicalExpr:
		return c.compileLogical(n)
	case *parser.AssignExpr:
		return c.compileAssign(n)
	case *parser.AttrExpr:
		if err := c.compileExpr(n.Object); err != nil {
			return err
		}
		idx := c.constStr(n.Name)
		c.emitOpArg(n, bytecode.LOAD_A, int32(idx))
		return nil
	case *parser.IndexExpr:
		if err := c.compileExpr(n.Object); err != nil {
			return err
		}
		for _, k := range n.Keys {
			if err := c.compileExpr(k); err != nil {
				return err
			}
		}
		c.emitOpArg(n, bytecode.GETITEM, int32(len(n.Keys)))
		return nil
	case *parser.CallExpr:
		return c.compileCall(n)
	}
	return c.errAt(e, "unhandled expression kind %T", e)
}

// pushConst interns v into the constant pool (equal int, float and str
// constants share one slot) and emits CONST for it.
func (c *Compiler) pushConst(n parser.Node, v object.Value) error {
	var idx int
	switch x := v.(type) {
	case *value.Int:
		idx = c.constIdx("i:"+x.String(), func() object.Value { return v })
	case *value.Float:
		idx = c.constIdx("f:"+strconv.FormatUint(math.Float64bits(x.F), 16), func() object.Value { return v })
	case *value.Str:
		idx = c.constIdx("s:"+x.S, func() object.Value { return v })
	default:
		idx = c.chunk.AddConstant(v)
	}
	c.emitOpArg(n, bytecode.CONST, int32(idx))
	return nil
}

// compileExprSeq compiles a left-to-right list of items then emits a
// sequence-building opcode (TUPLE/LIST) with the item count as its
// argument (spec §4.H).
func (c *Compiler) compileExprSeq(n parser.Node, items []parser.Expr, op bytecode.OpCode) error {
	for _, item := range items {
		if err := c.compileExpr(item); err != nil {
			return err
		}
	}
	c.emitOpArg(n, op, int32(len(items)))
	return nil
}

// compileDictLit has no dedicated opcode (spec's instruction set doesn't
// include one): it calls the "dict" builtin to allocate an empty table,
// then DUPs it before each SETITEM so the table survives every entry
// (SETITEM consumes the object reference it's given).
func (c *Compiler) compileDictLit(n *parser.DictLit) error {
	idx := c.constStr("dict")
	c.emitOpArg(n, bytecode.LOAD, int32(idx))
	c.emitOpArg(n, bytecode.CALL, 0)
	for _, entry := range n.Entries {
		c.emitOp(n, bytecode.DUP)
		if err := c.compileExpr(entry.Key); err != nil {
			return err
		}
		if err := c.compileExpr(entry.Val); err != nil {
			return err
		}
		c.emitOpArg(n, bytecode.SETITEM, 1)
	}
	return nil
}

func (c *Compiler) compileFuncLit(n *parser.FuncLit) error {
	fc := New(c.file)
	for _, st := range n.Body.Stmts {
		if err := fc.compileStmt(st); err != nil {
			return err
		}
	}
	fc.chunk.WriteOp(bytecode.RET_NONE)
	name := n.Name
	if name == "" {
		name = "<anonymous>"
	}
	code := callable.NewCode(name, n.Params, fc.chunk)

	defaults := make([]parser.Expr, 0)
	for _, d := range n.Defaults {
		if d != nil {
			defaults = append(defaults, d)
		}
	}
	code.NumDefault = len(defaults)
	codeIdx := c.chunk.AddConstant(code)
	c.emitOpArg(n, bytecode.CONST, int32(codeIdx))
	// Defaults are compiled in the *enclosing* scope at definition time,
	// pushed in order, then bundled into a tuple the VM splices onto the
	// trailing parameters when __make_func__ builds the KFunc.
	for _, d := range defaults {
		if err := c.compileExpr(d); err != nil {
			return err
		}
	}
	c.emitOpArg(n, bytecode.TUPLE, int32(len(defaults)))
	// MAKE_FUNC is expressed as a CALL to the "__make_func__" builtin
	// (code, defaultsTuple) -> kfunc, keeping the opcode set closed per
	// spec §4.I.
	idx := c.constStr("__make_func__")
	c.emitOpArg(n, bytecode.LOAD, int32(idx))
	// stack right now: [code, defaultsTuple, makeFuncCallee] — CALL pops
	// the callee, then takes the argc values beneath it in push order,
	// matching compileCall's own args-then-callee convention.
	c.emitOpArg(n, bytecode.CALL, 2)
	return nil
}

func (c *Compiler) compileUnary(n *parser.UnaryExpr) error {
	if err := c.compileExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case lexer.MINUS:
		c.emitOp(n, bytecode.NEG)
	case lexer.TILDE:
		c.emitOp(n, bytecode.SQIG)
	default:
		return c.errAt(n, "unsupported unary operator %s", n.Op)
	}
	return nil
}

var binOps = map[lexer.TokenType]bytecode.OpCode{
	lexer.PLUS: bytecode.ADD, lexer.MINUS: bytecode.SUB,
	lexer.STAR: bytecode.MUL, lexer.SLASH: bytecode.DIV,
	lexer.PERCENT: bytecode.MOD, lexer.POW: bytecode.POW,
	lexer.LT: bytecode.LT, lexer.LE: bytecode.LE,
	lexer.GT: bytecode.GT, lexer.GE: bytecode.GE,
	lexer.EQ: bytecode.EQ, lexer.NE: bytecode.NE,
}

// compileBinary constant-folds two integer literals at compile time
// (spec §4.H); non-integer and cross-function folding is explicitly not
// attempted.
func (c *Compiler) compileBinary(n *parser.BinaryExpr) error {
	if folded, ok, err := c.tryFoldInts(n); err != nil {
		return err
	} else if ok {
		return c.pushConst(n, folded)
	}
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	op, ok := binOps[n.Op]
	if !ok {
		return c.errAt(n, "unsupported binary operator %s", n.Op)
	}
	c.emitOp(n, op)
	return nil
}

func (c *Compiler) tryFoldInts(n *parser.BinaryExpr) (*value.Int, bool, error) {
	l, ok1 := n.Left.(*parser.IntLit)
	r, ok2 := n.Right.(*parser.IntLit)
	if !ok1 || !ok2 {
		return nil, false, nil
	}
	li, err := value.ParseInt(l.Text)
	if err != nil {
		return nil, false, err
	}
	ri, err := value.ParseInt(r.Text)
	if err != nil {
		return nil, false, err
	}
	switch n.Op {
	case lexer.PLUS:
		return value.IntAdd(li, ri), true, nil
	case lexer.MINUS:
		return value.IntSub(li, ri), true, nil
	case lexer.STAR:
		return value.IntMul(li, ri), true, nil
	case lexer.POW:
		return value.IntPow(li, ri), true, nil
	}
	return nil, false, nil
}

// compileLogical implements short-circuit && / || via jump patterns, not
// dedicated opcodes (SPEC_FULL.md Open Question decision 3): `a && b`
// evaluates a, JMPF-past-b leaving a's falsy value as the result,
// otherwise pops a and evaluates b; `||` mirrors this with JMPT.
func (c *Compiler) compileLogical(n *parser.LogicalExpr) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	c.emitOp(n, bytecode.DUP)
	var skip int
	if n.Op == lexer.AND {
		skip = c.emitJump(n, bytecode.JMPF)
	} else {
		skip = c.emitJump(n, bytecode.JMPT)
	}
	c.emitOp(n, bytecode.POPU)
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	c.patchJumpHere(skip)
	return nil
}

func (c *Compiler) compileAssign(n *parser.AssignExpr) error {
	if err := c.compileExpr(n.Value); err != nil {
		return err
	}
	c.emitOp(n, bytecode.DUP) // assignment is itself an expression: leave the value on the stack
	switch target := n.Target.(type) {
	case *parser.Ident:
		idx := c.constStr(target.Name)
		c.emitOpArg(n, bytecode.STORE, int32(idx))
	case *parser.AttrExpr:
		if err := c.compileExpr(target.Object); err != nil {
			return err
		}
		idx := c.constStr(target.Name)
		c.emitOpArg(n, bytecode.STORE_A, int32(idx))
	case *parser.IndexExpr:
		if err := c.compileExpr(target.Object); err != nil {
			return err
		}
		for _, k := range target.Keys {
			if err := c.compileExpr(k); err != nil {
				return err
			}
		}
		c.emitOpArg(n, bytecode.SETITEM, int32(len(target.Keys)))
	default:
		return c.errAt(n, "invalid assignment target")
	}
	return nil
}

// compileCall pushes arguments left-to-right, then the callee, then
// emits CALL with the argument count (spec §4.H "arg-then-callee").
func (c *Compiler) compileCall(n *parser.CallExpr) error {
	for _, a := range n.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	if err := c.compileExpr(n.Callee); err != nil {
		return err
	}
	c.emitOpArg(n, bytecode.CALL, int32(len(n.Args)))
	return nil
}
