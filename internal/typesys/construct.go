package typesys

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Construct implements calling a type as a constructor: "__new__" builds
// the bare instance, then "__init__" (if present) runs against it (spec
// §4.D). Built-in types set both slots directly; user-defined types get
// a generic New that allocates an attribute-bag instance and an Init
// that dispatches to the user's "init" method, wired by internal/vm when
// it processes a `type` statement.
func Construct(t *object.Type, args []object.Value) (object.Value, error) {
	if t.Slots.New == nil {
		return nil, kerr.New(kerr.TypeError, "%s is not constructible", t.Name)
	}
	inst, err := t.Slots.New(t, args)
	if err != nil {
		return nil, err
	}
	if t.Slots.Init != nil {
		if err := t.Slots.Init(inst, args); err != nil {
			object.DecRef(inst)
			return nil, err
		}
	}
	return inst, nil
}
