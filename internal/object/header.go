// Package object implements the common object header and reference-counting
// discipline every heap value in the runtime is built on (spec §3, §4.A).
package object

// flag bits stored in Header.flags.
const (
	flagImmortal uint32 = 1 << iota
)

// Header is embedded in every heap-allocated value. It carries the
// refcount, the immortal bit, and the value's type pointer.
//
// Invariants (spec §3):
//   - a live, non-immortal object's count is >= 1
//   - every holder of a reference (container slot, VM stack slot, local)
//     contributes exactly one to the count
//   - decref to 0 runs the type's finalizer exactly once
//   - immortal objects are never freed regardless of count
type Header struct {
	count uint32
	flags uint32
	typ   *Type
}

// NewHeader initializes a header with refcount 1 for type t.
func NewHeader(t *Type) Header {
	return Header{count: 1, typ: t}
}

// NewImmortalHeader initializes a header that never gets freed.
func NewImmortalHeader(t *Type) Header {
	return Header{count: 1, flags: flagImmortal, typ: t}
}

// TypeOf returns the object's type.
func (h *Header) TypeOf() *Type { return h.typ }

// SetType rebinds the header's type (used by type construction's __new__
// step, which allocates before __init__ knows the final shape).
func (h *Header) SetType(t *Type) { h.typ = t }

// Immortal reports whether decref is a no-op for this object.
func (h *Header) Immortal() bool { return h.flags&flagImmortal != 0 }

// RefCount returns the current reference count, for diagnostics/tests only.
func (h *Header) RefCount() uint32 { return h.count }

// IncRef bumps the refcount by one. No-op on immortal objects.
func (h *Header) IncRef() {
	if h.Immortal() {
		return
	}
	h.count++
}

// DecRef drops the refcount by one, invoking fin exactly once when the
// count reaches zero. No-op on immortal objects. The caller passes its own
// object's finalizer closure (no vtable indirection is needed since every
// concrete type knows how to release its own children).
func (h *Header) DecRef(fin func()) {
	if h.Immortal() {
		return
	}
	if h.count == 0 {
		// Already finalized; double-decref is a programming error in the
		// VM, not a user-visible one. Guard rather than corrupt state.
		return
	}
	h.count--
	if h.count == 0 && fin != nil {
		fin()
	}
}

// Value is implemented by every heap value in the runtime: none, bool,
// int, float, complex, str, tuple, list, dict, code, the callable kinds,
// type, and module (spec §3).
type Value interface {
	TypeOf() *Type
	IncRef()
	DecRef()
}

// IncRef is a nil-safe convenience wrapper so call sites don't need to
// guard every stack/local slot against a nil Value.
func IncRef(v Value) {
	if v != nil {
		v.IncRef()
	}
}

// DecRef is the nil-safe counterpart to IncRef.
func DecRef(v Value) {
	if v != nil {
		v.DecRef()
	}
}

// NewRef increfs v and returns it, for call sites that want to both store
// and return a reference in one expression.
func NewRef(v Value) Value {
	IncRef(v)
	return v
}
