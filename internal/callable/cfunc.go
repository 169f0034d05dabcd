package callable

import "kslang/internal/object"

// NativeFn is the Go-side signature every native extension function
// implements (the same (args []Value) (Value, error) shape the teacher's
// NativeFunction.Function field uses throughout internal/vm/*_bindings.go).
type NativeFn func(args []object.Value) (object.Value, error)

// CFunc wraps a native Go function as a callable script value.
type CFunc struct {
	object.Header
	Name  string
	Arity int // -1 means variadic
	Fn    NativeFn
}

var CFuncType = object.NewType("cfunc")

func (c *CFunc) DecRef() { c.Header.DecRef(nil) }

func NewCFunc(name string, arity int, fn NativeFn) *CFunc {
	return &CFunc{Header: object.NewHeader(CFuncType), Name: name, Arity: arity, Fn: fn}
}

func init() {
	CFuncType.Slots.Str = func(v object.Value) (string, error) {
		return "<cfunc " + v.(*CFunc).Name + ">", nil
	}
	CFuncType.Slots.Repr = CFuncType.Slots.Str
	CFuncType.Slots.Call = func(self object.Value, args []object.Value) (object.Value, error) {
		return self.(*CFunc).Fn(args)
	}
}
