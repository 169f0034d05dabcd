package typesys

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Instance is the generic representation of a value constructed from a
// user-defined `type` statement: a bag of instance attributes plus the
// type's own dict/parents for methods (spec §4.D). Built-in types (int,
// str, list, ...) use their own concrete Go structs instead; Instance
// only backs script-defined types.
type Instance struct {
	object.Header
	Attrs map[string]object.Value
}

func (o *Instance) DecRef() {
	o.Header.DecRef(func() {
		for _, v := range o.Attrs {
			object.DecRef(v)
		}
	})
}

// NewInstanceType builds a *object.Type for a user `type` statement,
// wiring Slots.New/GetAttr/SetAttr to the generic Instance machinery.
// Method slots (Init, Str, operators, ...) are populated separately by
// internal/vm once it resolves which method names the type body defines.
func NewInstanceType(name string, parents ...*object.Type) *object.Type {
	t := object.NewType(name, parents...)
	t.Slots.New = func(self *object.Type, args []object.Value) (object.Value, error) {
		inst := &Instance{Attrs: make(map[string]object.Value)}
		inst.Header = object.NewHeader(self)
		return inst, nil
	}
	t.Slots.GetAttr = func(self object.Value, name string) (object.Value, error) {
		inst := self.(*Instance)
		if v, ok := inst.Attrs[name]; ok {
			object.IncRef(v)
			return v, nil
		}
		v, ok := self.TypeOf().Lookup(name)
		if !ok {
			return nil, kerr.New(kerr.AttrError, "%s has no attribute %q", self.TypeOf().Name, name)
		}
		if isCallable(v) {
			object.IncRef(v)
			return bindMethod(v, self), nil
		}
		object.IncRef(v)
		return v, nil
	}
	t.Slots.SetAttr = func(self object.Value, name string, val object.Value) error {
		inst := self.(*Instance)
		if old, ok := inst.Attrs[name]; ok {
			object.DecRef(old)
		}
		inst.Attrs[name] = val
		return nil
	}
	return t
}
