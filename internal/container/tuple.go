// Package container implements the compound value kinds: tuple, list, and
// dict (spec §4.C).
package container

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/value"
)

// Tuple is an immutable, fixed-length sequence.
type Tuple struct {
	object.Header
	Items []object.Value
}

var TupleType = object.NewType("tuple")

func (t *Tuple) DecRef() {
	t.Header.DecRef(func() {
		for _, v := range t.Items {
			object.DecRef(v)
		}
	})
}

// NewTupleAdopt builds a tuple taking ownership of items as-is (the
// caller's references are transferred, not duplicated) — used when the
// VM pops items it already owns off the value stack (spec §4.C "two
// construction variants").
func NewTupleAdopt(items []object.Value) *Tuple {
	return &Tuple{Header: object.NewHeader(TupleType), Items: items}
}

// NewTupleRef builds a tuple that takes its own reference on each item,
// leaving the caller's references untouched — used when building a tuple
// from values still referenced elsewhere (e.g. copying an existing
// sequence).
func NewTupleRef(items []object.Value) *Tuple {
	cp := make([]object.Value, len(items))
	for i, v := range items {
		object.IncRef(v)
		cp[i] = v
	}
	return &Tuple{Header: object.NewHeader(TupleType), Items: cp}
}

func (t *Tuple) Len() int { return len(t.Items) }

func init() {
	TupleType.Slots.GetItem = func(self object.Value, keys []object.Value) (object.Value, error) {
		if len(keys) != 1 {
			return nil, kerr.New(kerr.TypeError, "tuple index takes exactly one key")
		}
		i, ok := keys[0].(*value.Int)
		if !ok {
			return nil, kerr.New(kerr.TypeError, "tuple index must be int, not %s", typeNameOf(keys[0]))
		}
		tp := self.(*Tuple)
		n := int64(len(tp.Items))
		idx := i.Int64()
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return nil, kerr.New(kerr.KeyError, "tuple index out of range")
		}
		v := tp.Items[idx]
		object.IncRef(v)
		return v, nil
	}
	TupleType.Slots.Hash = func(v object.Value) (uint64, error) {
		tp := v.(*Tuple)
		h := uint64(7)
		for _, item := range tp.Items {
			ih, err := hashValue(item)
			if err != nil {
				return 0, err
			}
			h = h*31 + ih
		}
		if h == 0 {
			h = 1
		}
		return h, nil
	}
	TupleType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		x := a.(*Tuple)
		y, ok := b.(*Tuple)
		if !ok || len(x.Items) != len(y.Items) {
			return boolVal(false), nil
		}
		for i := range x.Items {
			eq, err := valuesEqual(x.Items[i], y.Items[i])
			if err != nil {
				return nil, err
			}
			if !eq {
				return boolVal(false), nil
			}
		}
		return boolVal(true), nil
	}
}
