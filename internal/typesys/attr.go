// Package typesys implements the cross-cutting parts of the type system
// that object.Type itself can't own without creating an import cycle:
// attribute resolution with bound-method synthesis, and type
// construction (spec §4.D).
package typesys

import (
	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// GetAttr implements "o.attr" (spec §4.D):
//  1. if the type defines a GetAttr slot, defer to it entirely
//  2. otherwise search type(o)'s own dict, then its parents in order
//     (first-parent-wins)
//  3. if what's found is callable, wrap it as a pfunc bound to o at
//     position 0 (a bound method)
//  4. otherwise AttrError
func GetAttr(o object.Value, name string) (object.Value, error) {
	t := o.TypeOf()
	if t == nil {
		return nil, kerr.New(kerr.AttrError, "no attribute %q", name)
	}
	if t.Slots.GetAttr != nil {
		return t.Slots.GetAttr(o, name)
	}
	v, ok := t.Lookup(name)
	if !ok {
		return nil, kerr.New(kerr.AttrError, "%s has no attribute %q", t.Name, name)
	}
	if isCallable(v) {
		object.IncRef(v)
		return bindMethod(v, o), nil
	}
	object.IncRef(v)
	return v, nil
}

// bindMethod wraps a looked-up method value as a pfunc bound to self at
// position 0 (spec §4.D "bound methods realized as partial application").
func bindMethod(method, self object.Value) object.Value {
	object.IncRef(self)
	return callable.BindSelf(method, self)
}

// SetAttr implements "o.attr = val" (spec §4.D).
func SetAttr(o object.Value, name string, val object.Value) error {
	t := o.TypeOf()
	if t == nil || t.Slots.SetAttr == nil {
		return kerr.New(kerr.AttrError, "cannot set attribute %q", name)
	}
	return t.Slots.SetAttr(o, name, val)
}

func isCallable(v object.Value) bool {
	switch v.(type) {
	case *callable.CFunc, *callable.KFunc, *callable.PFunc:
		return true
	}
	if t := v.TypeOf(); t != nil && t.Slots.Call != nil {
		return true
	}
	return false
}

// IsSub re-exports object.IsSub so callers working with typesys don't
// also need to import object directly for this one check.
func IsSub(a, b *object.Type) bool { return object.IsSub(a, b) }
