package value

import "kslang/internal/object"

// BoolVal is the boolean type. Like None, true and false are immortal
// singletons (spec §3) rather than allocated per use.
type BoolVal struct {
	object.Header
	B bool
}

var BoolType = object.NewType("bool")

var (
	trueInstance  = &BoolVal{Header: object.NewImmortalHeader(BoolType), B: true}
	falseInstance = &BoolVal{Header: object.NewImmortalHeader(BoolType), B: false}
)

// Bool returns the canonical true/false singleton for b.
func Bool(b bool) *BoolVal {
	if b {
		return trueInstance
	}
	return falseInstance
}

func (b *BoolVal) DecRef() { b.Header.DecRef(nil) }

func init() {
	BoolType.Slots.Str = func(v object.Value) (string, error) {
		if v.(*BoolVal).B {
			return "true", nil
		}
		return "false", nil
	}
	BoolType.Slots.Repr = BoolType.Slots.Str
	BoolType.Slots.Hash = func(v object.Value) (uint64, error) {
		if v.(*BoolVal).B {
			return 1, nil
		}
		return 1, nil // spec §4.B: zero hashes normalize to 1, same as every other primitive
	}
	BoolType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		bv, ok := b.(*BoolVal)
		return Bool(ok && a.(*BoolVal).B == bv.B), nil
	}
	BoolType.Slots.Ne = func(a, b object.Value) (object.Value, error) {
		r, err := BoolType.Slots.Eq(a, b)
		if err != nil {
			return nil, err
		}
		return Bool(!r.(*BoolVal).B), nil
	}
	BoolType.Slots.Not = func(v object.Value) (object.Value, error) {
		return Bool(!v.(*BoolVal).B), nil
	}
}

// Truthy implements kscript's kso_bool coercion table (supplemented
// feature, see SPEC_FULL.md): none/false are falsy; int, float and
// complex are falsy iff zero; str/list/tuple/dict are falsy iff empty;
// everything else is truthy. Containers are checked via the Sizer interface to avoid an
// import cycle with internal/container.
type Sizer interface {
	Len() int
}

func Truthy(v object.Value) bool {
	switch x := v.(type) {
	case *None:
		return false
	case *BoolVal:
		return x.B
	case *Int:
		return !x.IsZero()
	case *Float:
		return x.F != 0
	case *Complex:
		return x.Re != 0 || x.Im != 0
	case *Str:
		return len(x.S) != 0
	case Sizer:
		return x.Len() != 0
	default:
		return true
	}
}
