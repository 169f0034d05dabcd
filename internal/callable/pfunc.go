package callable

import "kslang/internal/object"

// binding is one (position, value) pair spliced into a call's argument
// list ahead of the call site's own arguments.
type binding struct {
	pos int
	val object.Value
}

// PFunc is a partial application: an underlying callable plus a set of
// arguments already bound to fixed positions. Bound methods (spec §4.D
// "bound methods realized as partial-application callables") are the
// common case — a PFunc binding position 0 to the receiver — but PFunc
// itself is a general currying primitive, matching kscript's pfunc
// contract.
type PFunc struct {
	object.Header
	Target   object.Value // the callable being partially applied
	Bindings []binding
}

var PFuncType = object.NewType("pfunc")

func (p *PFunc) DecRef() {
	p.Header.DecRef(func() {
		object.DecRef(p.Target)
		for _, b := range p.Bindings {
			object.DecRef(b.val)
		}
	})
}

// Bind creates a new pfunc wrapping target with val fixed at pos. It
// takes ownership of both references.
func Bind(target object.Value, pos int, val object.Value) *PFunc {
	var bindings []binding
	if prior, ok := target.(*PFunc); ok {
		// Binding a position on an already-partial function extends its
		// binding list rather than nesting pfuncs, so Merge only ever
		// has to walk one level.
		bindings = append(bindings, prior.Bindings...)
		object.IncRef(prior.Target)
		t := prior.Target
		object.DecRef(target)
		target = t
	}
	bindings = append(bindings, binding{pos: pos, val: val})
	return &PFunc{Header: object.NewHeader(PFuncType), Target: target, Bindings: bindings}
}

// BindSelf is the common bound-method case: bind val at position 0.
func BindSelf(target object.Value, self object.Value) *PFunc {
	return Bind(target, 0, self)
}

// Merge splices the pfunc's bound arguments into callArgs at their
// fixed positions, returning the full argument list to dispatch to
// Target (spec §4.J "splices bound args at call time").
func (p *PFunc) Merge(callArgs []object.Value) []object.Value {
	total := len(callArgs) + len(p.Bindings)
	out := make([]object.Value, total)
	used := make([]bool, total)
	for _, b := range p.Bindings {
		out[b.pos] = b.val
		used[b.pos] = true
		object.IncRef(b.val)
	}
	ci := 0
	for i := 0; i < total; i++ {
		if used[i] {
			continue
		}
		if ci < len(callArgs) {
			out[i] = callArgs[ci]
			ci++
		}
	}
	return out
}

func init() {
	PFuncType.Slots.Str = func(v object.Value) (string, error) {
		return "<bound method>", nil
	}
	PFuncType.Slots.Repr = PFuncType.Slots.Str
}
