package callable

import "kslang/internal/object"

// KFunc is a compiled script function: a Code body plus the default
// values for its trailing optional parameters (spec §4.J). Unlike CFunc,
// a kfunc's Call slot is intentionally left unset — invoking one needs a
// new VM frame (locals array, PC, exception-handler stack), which only
// internal/vm has the state to create. The VM type-switches on *KFunc in
// its CALL instruction rather than going through Slots.Call.
type KFunc struct {
	object.Header
	Code     *Code
	Defaults []object.Value
}

var KFuncType = object.NewType("kfunc")

func (f *KFunc) DecRef() {
	f.Header.DecRef(func() {
		for _, d := range f.Defaults {
			object.DecRef(d)
		}
	})
}

func NewKFunc(code *Code, defaults []object.Value) *KFunc {
	return &KFunc{Header: object.NewHeader(KFuncType), Code: code, Defaults: defaults}
}

func init() {
	KFuncType.Slots.Str = func(v object.Value) (string, error) {
		return "<func " + v.(*KFunc).Code.Name + ">", nil
	}
	KFuncType.Slots.Repr = KFuncType.Slots.Str
}
