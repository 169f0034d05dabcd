package value

import (
	"math"
	"strconv"

	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Float is a double-precision float (spec §4.B).
type Float struct {
	object.Header
	F float64
}

var FloatType = object.NewType("float")

func (f *Float) DecRef() { f.Header.DecRef(nil) }

func NewFloat(f float64) *Float {
	return &Float{Header: object.NewHeader(FloatType), F: f}
}

func ParseFloat(s string) (*Float, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, kerr.New(kerr.SyntaxError, "invalid float literal %q", s)
	}
	return NewFloat(f), nil
}

// Hash agrees with Int.Hash whenever the float's value equals an integer
// (spec §4.B: "hash(1.0) == hash(1)", required so float/int keys that
// compare equal land in the same dict bucket), falling back to the raw
// bit pattern otherwise.
func (f *Float) Hash() uint64 {
	if f.F == math.Trunc(f.F) && f.F >= math.MinInt64 && f.F <= math.MaxInt64 {
		return NewInt(int64(f.F)).Hash()
	}
	h := math.Float64bits(f.F)
	if h == 0 {
		h = 1
	}
	return h
}

func floatOf(v object.Value) (float64, bool) {
	switch x := v.(type) {
	case *Float:
		return x.F, true
	case *Int:
		return x.Float64(), true
	}
	return 0, false
}

func init() {
	FloatType.Slots.Str = func(v object.Value) (string, error) {
		return strconv.FormatFloat(v.(*Float).F, 'g', -1, 64), nil
	}
	FloatType.Slots.Repr = FloatType.Slots.Str
	FloatType.Slots.Hash = func(v object.Value) (uint64, error) { return v.(*Float).Hash(), nil }
	FloatType.Slots.Neg = func(v object.Value) (object.Value, error) { return NewFloat(-v.(*Float).F), nil }

	binop := func(name string, fn func(a, b float64) (float64, error)) object.OpFunc {
		return func(a, b object.Value) (object.Value, error) {
			x, ok1 := floatOf(a)
			y, ok2 := floatOf(b)
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
			return NewFloat(r), nil
		}
	}
	FloatType.Slots.Add = binop("+", func(a, b float64) (float64, error) { return a + b, nil })
	FloatType.Slots.Sub = binop("-", func(a, b float64) (float64, error) { return a - b, nil })
	FloatType.Slots.Mul = binop("*", func(a, b float64) (float64, error) { return a * b, nil })
	FloatType.Slots.Div = binop("/", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, kerr.New(kerr.MathError, "division by zero")
		}
		return a / b, nil
	})
	FloatType.Slots.Mod = binop("%", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, kerr.New(kerr.MathError, "division by zero")
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	})
	FloatType.Slots.Pow = binop("**", func(a, b float64) (float64, error) { return math.Pow(a, b), nil })

	cmp := func(name string, ok func(int) bool) object.OpFunc {
		return func(a, b object.Value) (object.Value, error) {
			x, ok1 := floatOf(a)
			y, ok2 := floatOf(b)
			if !ok1 || !ok2 {
				bad := a
				if ok1 {
					bad = b
				}
				return nil, kerr.New(kerr.TypeError, "unsupported operand type for %s: %s", name, typeName(bad))
			}
			switch {
			case x < y:
				return Bool(ok(-1)), nil
			case x > y:
				return Bool(ok(1)), nil
			default:
				return Bool(ok(0)), nil
			}
		}
	}
	FloatType.Slots.Lt = cmp("<", func(c int) bool { return c < 0 })
	FloatType.Slots.Le = cmp("<=", func(c int) bool { return c <= 0 })
	FloatType.Slots.Gt = cmp(">", func(c int) bool { return c > 0 })
	FloatType.Slots.Ge = cmp(">=", func(c int) bool { return c >= 0 })
	FloatType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		x, ok1 := floatOf(a)
		y, ok2 := floatOf(b)
		return Bool(ok1 && ok2 && x == y), nil
	}
	FloatType.Slots.Ne = func(a, b object.Value) (object.Value, error) {
		r, _ := FloatType.Slots.Eq(a, b)
		return Bool(!r.(*BoolVal).B), nil
	}
}
