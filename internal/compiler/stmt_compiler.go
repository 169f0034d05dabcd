package compiler

import (
	"kslang/internal/bytecode"
	"kslang/internal/parser"
	"kslang/internal/value"
)

func (c *Compiler) compileStmt(s parser.Stmt) error {
	switch n := s.(type) {
	case *parser.ExprStmt:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.emitOp(n, bytecode.POPU)
		return nil
	case *parser.RetStmt:
		if n.Value == nil {
			c.emitOp(n, bytecode.RET_NONE)
			return nil
		}
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.emitOp(n, bytecode.RET)
		return nil
	case *parser.Block:
		return c.compileBlock(n)
	case *parser.IfStmt:
		return c.compileIf(n)
	case *parser.WhileStmt:
		return c.compileWhile(n)
	case *parser.ForStmt:
		return c.compileFor(n)
	case *parser.TryStmt:
		return c.compileTry(n)
	case *parser.FuncDecl:
		return c.compileFuncDecl(n)
	case *parser.TypeDecl:
		return c.compileTypeDecl(n)
	}
	return c.errAt(s, "unhandled statement kind %T", s)
}

func (c *Compiler) compileBlock(b *parser.Block) error {
	for _, st := range b.Stmts {
		if err := c.compileStmt(st); err != nil {
			return err
		}
	}
	return nil
}

// compileIf emits each clause as "cond; JMPF next; body; JMP end",
// back-patching each JMPF/JMP once the following clause's (or the
// else/end's) offset is known — the same backpatch idiom the teacher's
// stmt_compiler.go uses for its if/while/try lowering.
func (c *Compiler) compileIf(n *parser.IfStmt) error {
	var endJumps []int
	for _, clause := range n.Clauses {
		if err := c.compileExpr(clause.Cond); err != nil {
			return err
		}
		falseJump := c.emitJump(clause.Body, bytecode.JMPF)
		if err := c.compileBlock(clause.Body); err != nil {
			return err
		}
		endJumps = append(endJumps, c.emitJump(clause.Body, bytecode.JMP))
		c.patchJumpHere(falseJump)
	}
	if n.Else != nil {
		if err := c.compileBlock(n.Else); err != nil {
			return err
		}
	}
	for _, j := range endJumps {
		c.patchJumpHere(j)
	}
	return nil
}

func (c *Compiler) compileWhile(n *parser.WhileStmt) error {
	loopStart := c.here()
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	exitJump := c.emitJump(n.Body, bytecode.JMPF)
	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	backJump := c.emitJump(n.Body, bytecode.JMP)
	c.chunk.PatchArg(backJump, loopStart)
	c.patchJumpHere(exitJump)
	return nil
}

// compileFor lowers for/in to a single GETITER followed by a
// FORITER-gated loop (spec §8's dict-iteration scenario, grounded on
// the original's dict/list iterators via internal/container/iter.go):
// one bound name takes each yielded value directly; two names
// destructure the (key, value) tuple a dict's iterator yields.
func (c *Compiler) compileFor(n *parser.ForStmt) error {
	if err := c.compileExpr(n.Iterable); err != nil {
		return err
	}
	c.emitOp(n, bytecode.GETITER)
	loopStart := c.here()
	exitJump := c.emitJump(n.Body, bytecode.FORITER)

	if len(n.Names) == 1 {
		idx := c.constStr(n.Names[0])
		c.emitOpArg(n, bytecode.STORE, int32(idx))
	} else {
		kIdx := c.constStr(n.Names[0])
		vIdx := c.constStr(n.Names[1])

		c.emitOp(n, bytecode.DUP)
		if err := c.pushConst(n, value.NewInt(0)); err != nil {
			return err
		}
		c.emitOpArg(n, bytecode.GETITEM, 1)
		c.emitOpArg(n, bytecode.STORE, int32(kIdx))

		c.emitOp(n, bytecode.DUP)
		if err := c.pushConst(n, value.NewInt(1)); err != nil {
			return err
		}
		c.emitOpArg(n, bytecode.GETITEM, 1)
		c.emitOpArg(n, bytecode.STORE, int32(vIdx))

		c.emitOp(n, bytecode.POPU)
	}

	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	backJump := c.emitJump(n.Body, bytecode.JMP)
	c.chunk.PatchArg(backJump, loopStart)
	c.patchJumpHere(exitJump)
	return nil
}

// compileTry implements try/catch by registering an exception handler
// at the catch block's entry before running the body, and removing it
// once the body completes normally (spec §4.I: EXC_ADD pushes a handler,
// EXC_REM pops it; the VM's unwind-to-handler logic does the rest).
func (c *Compiler) compileTry(n *parser.TryStmt) error {
	handlerJump := c.emitJump(n, bytecode.EXC_ADD)
	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	c.emitOp(n, bytecode.EXC_REM)
	skipCatch := c.emitJump(n, bytecode.JMP)
	c.patchJumpHere(handlerJump)
	if n.ErrName != "" {
		idx := c.constStr(n.ErrName)
		c.emitOpArg(n, bytecode.STORE, int32(idx))
	} else {
		c.emitOp(n, bytecode.POPU)
	}
	if err := c.compileBlock(n.Catch); err != nil {
		return err
	}
	c.patchJumpHere(skipCatch)
	return nil
}

func (c *Compiler) compileFuncDecl(n *parser.FuncDecl) error {
	if err := c.compileFuncLit(n.Fn); err != nil {
		return err
	}
	idx := c.constStr(n.Fn.Name)
	c.emitOpArg(n, bytecode.STORE, int32(idx))
	return nil
}

// compileTypeDecl compiles each method to its own kfunc constant, then
// calls the "__build_type__" builtin with (name, parents-tuple,
// methods-dict) to construct the runtime object.Type — spec's closed
// instruction set has no dedicated type-building opcode, so this reuses
// CALL the same way dict literals reuse SETITEM.
func (c *Compiler) compileTypeDecl(n *parser.TypeDecl) error {
	nameIdx := c.constStr(n.Name)
	c.emitOpArg(n, bytecode.CONST, int32(nameIdx))

	for _, p := range n.Parents {
		pIdx := c.constStr(p)
		c.emitOpArg(n, bytecode.LOAD, int32(pIdx))
	}
	c.emitOpArg(n, bytecode.TUPLE, int32(len(n.Parents)))

	methodsIdx := c.constStr("dict")
	c.emitOpArg(n, bytecode.LOAD, int32(methodsIdx))
	c.emitOpArg(n, bytecode.CALL, 0)
	for _, m := range n.Methods {
		c.emitOp(n, bytecode.DUP)
		mnIdx := c.constStr(m.Name)
		c.emitOpArg(n, bytecode.CONST, int32(mnIdx))
		if err := c.compileFuncLit(m); err != nil {
			return err
		}
		c.emitOpArg(n, bytecode.SETITEM, 1)
	}

	builderIdx := c.constStr("__build_type__")
	c.emitOpArg(n, bytecode.LOAD, int32(builderIdx))
	c.emitOpArg(n, bytecode.CALL, 3)

	storeIdx := c.constStr(n.Name)
	c.emitOpArg(n, bytecode.STORE, int32(storeIdx))
	return nil
}
