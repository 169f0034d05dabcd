package value

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Str is an immutable string, with its hash cached on first use (spec
// §4.B). Length is cached too since it's measured in runes, not bytes.
type Str struct {
	object.Header
	S        string
	hash     uint64
	hashSet  bool
	length   int
	lenKnown bool
}

var StrType = object.NewType("str")

func (s *Str) DecRef() { s.Header.DecRef(nil) }

func NewStr(s string) *Str {
	return &Str{Header: object.NewHeader(StrType), S: s}
}

func (s *Str) Len() int {
	if !s.lenKnown {
		s.length = len([]rune(s.S))
		s.lenKnown = true
	}
	return s.length
}

// Hash uses the same polynomial as spec §4.B specifies (seed 7,
// multiplier 31), normalized so a zero hash reads as 1 — matching the
// other primitives' "hash 0 means empty/uninitialized" convention.
func (s *Str) Hash() uint64 {
	if s.hashSet {
		return s.hash
	}
	h := uint64(7)
	for i := 0; i < len(s.S); i++ {
		h = h*31 + uint64(s.S[i])
	}
	if h == 0 {
		h = 1
	}
	s.hash = h
	s.hashSet = true
	return h
}

func init() {
	StrType.Slots.Str = func(v object.Value) (string, error) { return v.(*Str).S, nil }
	StrType.Slots.Repr = func(v object.Value) (string, error) { return quote(v.(*Str).S), nil }
	StrType.Slots.Hash = func(v object.Value) (uint64, error) { return v.(*Str).Hash(), nil }
	StrType.Slots.Add = func(a, b object.Value) (object.Value, error) {
		x, ok1 := a.(*Str)
		y, ok2 := b.(*Str)
		if !ok1 || !ok2 {
			bad := a
			if ok1 {
				bad = b
			}
			return nil, kerr.New(kerr.TypeError, "unsupported operand type for +: %s", typeName(bad))
		}
		return NewStr(x.S + y.S), nil
	}
	StrType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		y, ok := b.(*Str)
		return Bool(ok && a.(*Str).S == y.S), nil
	}
	StrType.Slots.Ne = func(a, b object.Value) (object.Value, error) {
		r, _ := StrType.Slots.Eq(a, b)
		return Bool(!r.(*BoolVal).B), nil
	}
	cmp := func(ok func(int) bool) object.OpFunc {
		return func(a, b object.Value) (object.Value, error) {
			x, ok1 := a.(*Str)
			y, ok2 := b.(*Str)
			if !ok1 || !ok2 {
				bad := a
				if ok1 {
					bad = b
				}
				return nil, kerr.New(kerr.TypeError, "unsupported operand type for comparison: %s", typeName(bad))
			}
			switch {
			case x.S < y.S:
				return Bool(ok(-1)), nil
			case x.S > y.S:
				return Bool(ok(1)), nil
			default:
				return Bool(ok(0)), nil
			}
		}
	}
	StrType.Slots.Lt = cmp(func(c int) bool { return c < 0 })
	StrType.Slots.Le = cmp(func(c int) bool { return c <= 0 })
	StrType.Slots.Gt = cmp(func(c int) bool { return c > 0 })
	StrType.Slots.Ge = cmp(func(c int) bool { return c >= 0 })
	StrType.Slots.GetItem = func(self object.Value, keys []object.Value) (object.Value, error) {
		if len(keys) != 1 {
			return nil, kerr.New(kerr.TypeError, "str index takes exactly one key")
		}
		ix, ok := keys[0].(*Int)
		if !ok {
			return nil, kerr.New(kerr.TypeError, "str index must be int, not %s", typeName(keys[0]))
		}
		runes := []rune(self.(*Str).S)
		n := int64(len(runes))
		idx := ix.Int64()
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return nil, kerr.New(kerr.KeyError, "str index out of range")
		}
		return NewStr(string(runes[idx])), nil
	}
}

// quote implements the repr/str split supplemented from kscript's
// ks_str_new_vcfmt (SPEC_FULL.md "Supplemented features").
func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}
