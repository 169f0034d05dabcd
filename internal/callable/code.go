// Package callable implements the three callable kinds: cfunc (native Go
// functions exposed to scripts), kfunc (compiled script functions), and
// pfunc (a partial application, the realization of a bound method) —
// spec §4.J.
package callable

import (
	"kslang/internal/bytecode"
	"kslang/internal/object"
)

// Code wraps a compiled chunk as a heap value so it can sit in a
// constant pool and be shared by every kfunc instantiated from the same
// function literal (spec §4.H/§4.I).
type Code struct {
	object.Header
	Chunk      *bytecode.Chunk
	Params     []string // ordered parameter names
	Name       string
	NumDefault int // how many trailing params have default values
}

var CodeType = object.NewType("code")

func (c *Code) DecRef() { c.Header.DecRef(nil) }

func NewCode(name string, params []string, chunk *bytecode.Chunk) *Code {
	return &Code{Header: object.NewHeader(CodeType), Chunk: chunk, Params: params, Name: name}
}
