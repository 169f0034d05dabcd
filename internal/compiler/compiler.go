// Package compiler lowers the AST into bytecode chunks: one Chunk per
// function body (including the implicit top-level one), a deduped
// constant pool, and a per-offset debug side table (spec §4.H).
package compiler

import (
	"kslang/internal/bytecode"
	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/parser"
	"kslang/internal/value"
)

// Compiler emits into a single Chunk. Nested function bodies get their
// own Compiler instance (see compileFuncLit), following the teacher's
// stmt_compiler.go "one compiler per function" structure.
type Compiler struct {
	file  string
	chunk *bytecode.Chunk

	// constCache dedups identical int/str/float constants (bools have
	// their own opcodes) so the same literal appearing twice shares one
	// pool slot (spec §4.H).
	constCache map[any]int
}

func New(file string) *Compiler {
	return &Compiler{file: file, chunk: bytecode.NewChunk(), constCache: make(map[any]int)}
}

// CompileProgram compiles a whole source file's top-level block into a
// callable.Code ready to run as the module's entry point.
func CompileProgram(file string, block *parser.Block) (*callable.Code, error) {
	c := New(file)
	for _, st := range block.Stmts {
		if err := c.compileStmt(st); err != nil {
			return nil, err
		}
	}
	c.chunk.WriteOp(bytecode.RET_NONE)
	return callable.NewCode("<module>", nil, c.chunk), nil
}

func (c *Compiler) debugAt(n parser.Node, off int) {
	p := n.Pos()
	c.chunk.Debug[off] = bytecode.DebugInfo{Line: p.Line, Column: p.Column, Node: n}
}

func (c *Compiler) emitOp(n parser.Node, op bytecode.OpCode) int {
	off := c.chunk.WriteOp(op)
	c.debugAt(n, off)
	return off
}

func (c *Compiler) emitOpArg(n parser.Node, op bytecode.OpCode, arg int32) int {
	off := c.emitOp(n, op)
	c.chunk.WriteArg(arg)
	return off
}

// emitJump writes a jump opcode with a placeholder target, returning the
// argument's offset so the caller can patch it once the real target is
// known (the teacher's backpatching idiom, internal/compiler/stmt_compiler.go).
func (c *Compiler) emitJump(n parser.Node, op bytecode.OpCode) int {
	c.emitOp(n, op)
	argOff := len(c.chunk.Code)
	c.chunk.WriteArg(0)
	return argOff
}

func (c *Compiler) patchJumpHere(argOff int) {
	c.chunk.PatchArg(argOff, int32(len(c.chunk.Code)))
}

func (c *Compiler) here() int32 { return int32(len(c.chunk.Code)) }

// constIdx interns a primitive constant, deduping by Go-native key (spec
// §4.H "constant pool dedup"); constStr and pushConst build the keys.
func (c *Compiler) constIdx(key any, make func() object.Value) int {
	if idx, ok := c.constCache[key]; ok {
		return idx
	}
	idx := c.chunk.AddConstant(make())
	c.constCache[key] = idx
	return idx
}

func (c *Compiler) constStr(s string) int {
	return c.constIdx("s:"+s, func() object.Value { return value.NewStr(s) })
}

func (c *Compiler) errAt(n parser.Node, format string, args ...any) error {
	p := n.Pos()
	return kerr.NewAt(kerr.SyntaxError, c.file, p.Line, p.Column, format, args...)
}
