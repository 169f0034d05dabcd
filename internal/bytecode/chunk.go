package bytecode

import "kslang/internal/object"

// DebugInfo records the source position and, for the compiler's benefit,
// the originating AST node for one byte offset — spec §4.H's "side table
// mapping byte offsets to AST nodes".
type DebugInfo struct {
	Line   int
	Column int
	Node   any // *parser node; kept untyped here to avoid an import cycle
}

// Chunk is a compiled function body: the instruction stream, its constant
// pool, and a parallel debug side table indexed by the offset of each
// opcode byte (spec §4.H, §4.I).
type Chunk struct {
	Code      []byte
	Constants []object.Value
	Debug     map[int]DebugInfo
}

func NewChunk() *Chunk {
	return &Chunk{Debug: make(map[int]DebugInfo)}
}

// WriteOp appends an opcode byte and returns its offset, for callers that
// need to backpatch a following jump argument.
func (c *Chunk) WriteOp(op OpCode) int {
	c.Code = append(c.Code, byte(op))
	return len(c.Code) - 1
}

func (c *Chunk) WriteOpWithDebug(op OpCode, d DebugInfo) int {
	off := c.WriteOp(op)
	c.Debug[off] = d
	return off
}

// WriteArg appends a little-endian 32-bit operand, returning the offset
// of its first byte (the patch point for jump targets).
func (c *Chunk) WriteArg(arg int32) int {
	off := len(c.Code)
	c.Code = append(c.Code, byte(arg), byte(arg>>8), byte(arg>>16), byte(arg>>24))
	return off
}

// PatchArg overwrites a 4-byte argument previously written at off (used
// to back-patch forward jumps once the target offset is known).
func (c *Chunk) PatchArg(off int, arg int32) {
	c.Code[off] = byte(arg)
	c.Code[off+1] = byte(arg >> 8)
	c.Code[off+2] = byte(arg >> 16)
	c.Code[off+3] = byte(arg >> 24)
}

func (c *Chunk) ReadArg(off int) int32 {
	return int32(uint32(c.Code[off]) | uint32(c.Code[off+1])<<8 |
		uint32(c.Code[off+2])<<16 | uint32(c.Code[off+3])<<24)
}

// AddConstant appends val to the constant pool and returns its index.
// Deduping equal constants (spec §4.H "constant pool dedup") is the
// compiler's job, not this package's: it requires coercing an Eq slot's
// result to a Go bool, which belongs to the value package, and bytecode
// is deliberately kept dependency-light (object only).
func (c *Chunk) AddConstant(val object.Value) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

func (c *Chunk) GetDebugInfo(ip int) DebugInfo { return c.Debug[ip] }
