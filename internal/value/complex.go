package value

import (
	"fmt"
	"math"
	"math/cmplx"

	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Complex is a pair of doubles (spec §4.B). It does not support ordering
// (Lt/Le/Gt/Ge are left nil, so attempting to order complex values raises
// a TypeError through the ordinary "no such operator" path).
type Complex struct {
	object.Header
	Re, Im float64
}

var ComplexType = object.NewType("complex")

func (c *Complex) DecRef() { c.Header.DecRef(nil) }

func NewComplex(re, im float64) *Complex {
	return &Complex{Header: object.NewHeader(ComplexType), Re: re, Im: im}
}

func (c *Complex) c128() complex128 { return complex(c.Re, c.Im) }

func complexOf(v object.Value) (complex128, bool) {
	switch x := v.(type) {
	case *Complex:
		return x.c128(), true
	case *Float:
		return complex(x.F, 0), true
	case *Int:
		return complex(x.Float64(), 0), true
	}
	return 0, false
}

func fromC128(c complex128) *Complex { return NewComplex(real(c), imag(c)) }

func (c *Complex) Hash() uint64 {
	h := math.Float64bits(c.Re) ^ (math.Float64bits(c.Im) * 31)
	if h == 0 {
		h = 1
	}
	return h
}

func init() {
	ComplexType.Slots.Str = func(v object.Value) (string, error) {
		c := v.(*Complex)
		if c.Im >= 0 {
			return fmt.Sprintf("%g+%gi", c.Re, c.Im), nil
		}
		return fmt.Sprintf("%g%gi", c.Re, c.Im), nil
	}
	ComplexType.Slots.Repr = ComplexType.Slots.Str
	ComplexType.Slots.Hash = func(v object.Value) (uint64, error) { return v.(*Complex).Hash(), nil }
	ComplexType.Slots.Neg = func(v object.Value) (object.Value, error) {
		c := v.(*Complex)
		return NewComplex(-c.Re, -c.Im), nil
	}

	binop := func(name string, fn func(a, b complex128) (complex128, error)) object.OpFunc {
		return func(a, b object.Value) (object.Value, error) {
			x, ok1 := complexOf(a)
			y, ok2 := complexOf(b)
			if !ok1 || !ok2 {
				bad := a
				if ok1 {
					bad = b
				}
				return nil, kerr.New(kerr.TypeError, "unsupported operand type for %s: %s", name, typeName(bad))
			}
			r, err := fn(x, y)
			if err != nil {
				return nil, err
			}
			return fromC128(r), nil
		}
	}
	ComplexType.Slots.Add = binop("+", func(a, b complex128) (complex128, error) { return a + b, nil })
	ComplexType.Slots.Sub = binop("-", func(a, b complex128) (complex128, error) { return a - b, nil })
	ComplexType.Slots.Mul = binop("*", func(a, b complex128) (complex128, error) { return a * b, nil })
	ComplexType.Slots.Div = binop("/", func(a, b complex128) (complex128, error) {
		if b == 0 {
			return 0, kerr.New(kerr.MathError, "division by zero")
		}
		return a / b, nil
	})
	ComplexType.Slots.Pow = binop("**", func(a, b complex128) (complex128, error) { return cmplx.Pow(a, b), nil })
	ComplexType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		x, ok1 := complexOf(a)
		y, ok2 := complexOf(b)
		return Bool(ok1 && ok2 && x == y), nil
	}
	ComplexType.Slots.Ne = func(a, b object.Value) (object.Value, error) {
		r, _ := ComplexType.Slots.Eq(a, b)
		return Bool(!r.(*BoolVal).B), nil
	}
}
