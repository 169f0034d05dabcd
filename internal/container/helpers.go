package container

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/value"
)

// hashValue dispatches to a value's own Hash slot, the same slot-table
// indirection the VM uses for every other operator (spec §4.D).
func hashValue(v object.Value) (uint64, error) {
	t := v.TypeOf()
	if t == nil || t.Slots.Hash == nil {
		return 0, kerr.New(kerr.TypeError, "unhashable type: %s", typeNameOf(v))
	}
	return t.Slots.Hash(v)
}

// valuesEqual dispatches to the LHS's Eq slot, falling back to identity
// if neither side defines one.
func valuesEqual(a, b object.Value) (bool, error) {
	if t := a.TypeOf(); t != nil && t.Slots.Eq != nil {
		r, err := t.Slots.Eq(a, b)
		if err != nil {
			return false, err
		}
		return value.Truthy(r), nil
	}
	return a == b, nil
}

func boolVal(b bool) object.Value { return value.Bool(b) }

func typeNameOf(v object.Value) string {
	if v == nil {
		return "none"
	}
	if t := v.TypeOf(); t != nil {
		return t.Name
	}
	return "?"
}
