// Package value implements the primitive value kinds: none, bool, int
// (int64 with bignum promotion), float, complex, str, and strbuilder
// (spec §3, §4.B).
package value

import "kslang/internal/object"

// None is the sole instance of the none type (spec §3 "none is a single
// immortal instance").
type None struct {
	object.Header
}

var NoneType = object.NewType("none")

var noneInstance = &None{Header: object.NewImmortalHeader(NoneType)}

// NoneVal returns the singleton none value.
func NoneVal() *None { return noneInstance }

func (n *None) DecRef() { n.Header.DecRef(nil) }

func init() {
	NoneType.Slots.Str = func(object.Value) (string, error) { return "none", nil }
	NoneType.Slots.Repr = func(object.Value) (string, error) { return "none", nil }
	NoneType.Slots.Hash = func(object.Value) (uint64, error) { return 1, nil }
	NoneType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		_, ok := b.(*None)
		return Bool(ok), nil
	}
}
