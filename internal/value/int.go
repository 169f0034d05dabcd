package value

import (
	"math/big"
	"strconv"

	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Int is the runtime's arbitrary-precision integer. It stays in the small
// (int64) representation until an operation would overflow, at which
// point it promotes to big, matching spec §4.B's three-level dispatch:
// small+small fast path, small+big/big+big via math/big, demote back to
// small when a big result turns out to fit.
type Int struct {
	object.Header
	small int64
	big   *big.Int // non-nil only when the value doesn't fit in small
}

var IntType = object.NewType("int")

func (i *Int) DecRef() { i.Header.DecRef(nil) }

// NewInt wraps a machine int64.
func NewInt(n int64) *Int {
	return &Int{Header: object.NewHeader(IntType), small: n}
}

// newFromBig normalizes a *big.Int, demoting to the small representation
// when it fits, per spec §4.B ("the boundary is not observable to a
// script other than through performance").
func newFromBig(b *big.Int) *Int {
	if b.IsInt64() {
		return NewInt(b.Int64())
	}
	return &Int{Header: object.NewHeader(IntType), big: b}
}

// ParseInt parses a base-10 literal, promoting straight to big on
// overflow (used by the lexer/compiler for int literal tokens).
func ParseInt(s string) (*Int, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(n), nil
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, kerr.New(kerr.SyntaxError, "invalid integer literal %q", s)
	}
	return newFromBig(b), nil
}

func (i *Int) IsZero() bool {
	if i.big != nil {
		return i.big.Sign() == 0
	}
	return i.small == 0
}

func (i *Int) asBig() *big.Int {
	if i.big != nil {
		return i.big
	}
	return big.NewInt(i.small)
}

func (i *Int) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return strconv.FormatInt(i.small, 10)
}

// Int64 truncates to a machine int, for call sites like list/tuple
// indexing where a huge big value is already nonsensical.
func (i *Int) Int64() int64 {
	if i.big != nil {
		return i.big.Int64()
	}
	return i.small
}

func (i *Int) Float64() float64 {
	if i.big != nil {
		f, _ := new(big.Float).SetInt(i.big).Float64()
		return f
	}
	return float64(i.small)
}

// addSmall reports the int64 sum and whether it overflowed (Hacker's
// Delight's signed-overflow test: overflow iff the operands share a sign
// that differs from the result's).
func addSmall(a, b int64) (int64, bool) {
	r := a + b
	return r, ((a ^ r) & (b ^ r)) < 0
}

func mulSmall(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	return r, r/b != a
}

func IntAdd(x, y *Int) *Int {
	if x.big == nil && y.big == nil {
		if r, overflow := addSmall(x.small, y.small); !overflow {
			return NewInt(r)
		}
	}
	return newFromBig(new(big.Int).Add(x.asBig(), y.asBig()))
}

func IntSub(x, y *Int) *Int {
	if x.big == nil && y.big == nil && y.small != minInt64 {
		if r, overflow := addSmall(x.small, -y.small); !overflow {
			return NewInt(r)
		}
	}
	return newFromBig(new(big.Int).Sub(x.asBig(), y.asBig()))
}

const minInt64 = -1 << 63

func IntMul(x, y *Int) *Int {
	if x.big == nil && y.big == nil {
		if r, overflow := mulSmall(x.small, y.small); !overflow {
			return NewInt(r)
		}
	}
	return newFromBig(new(big.Int).Mul(x.asBig(), y.asBig()))
}

// IntDivMod implements Euclidean-flavoured division: the result of Mod
// always carries the sign of the divisor (SPEC_FULL.md Open Question 2).
// It runs big.Int QuoRem for every operand, then, when a non-zero
// remainder's sign differs from the divisor's, adds the divisor to the
// remainder and subtracts one from the quotient, so the small and big
// representations agree.
func IntDivMod(x, y *Int) (q, m *Int, err error) {
	if y.IsZero() {
		return nil, nil, kerr.New(kerr.MathError, "division by zero")
	}
	xb, yb := x.asBig(), y.asBig()
	qb := new(big.Int)
	mb := new(big.Int)
	qb.QuoRem(xb, yb, mb)
	if mb.Sign() != 0 && (mb.Sign() < 0) != (yb.Sign() < 0) {
		mb.Add(mb, yb)
		qb.Sub(qb, big.NewInt(1))
	}
	return newFromBig(qb), newFromBig(mb), nil
}

func IntDiv(x, y *Int) (*Int, error) {
	q, _, err := IntDivMod(x, y)
	return q, err
}

func IntMod(x, y *Int) (*Int, error) {
	_, m, err := IntDivMod(x, y)
	return m, err
}

// IntPow implements non-negative exponents via repeated squaring on
// math/big; negative exponents on an integer base return 0, per
// SPEC_FULL.md's decision on spec.md's Open Question 1.
func IntPow(x, y *Int) *Int {
	if y.big == nil && y.small < 0 {
		return NewInt(0)
	}
	if x.big == nil && y.big == nil {
		return newFromBig(new(big.Int).Exp(big.NewInt(x.small), big.NewInt(y.small), nil))
	}
	return newFromBig(new(big.Int).Exp(x.asBig(), y.asBig(), nil))
}

func IntNeg(x *Int) *Int {
	if x.big == nil && x.small != minInt64 {
		return NewInt(-x.small)
	}
	return newFromBig(new(big.Int).Neg(x.asBig()))
}

func IntCmp(x, y *Int) int {
	if x.big == nil && y.big == nil {
		switch {
		case x.small < y.small:
			return -1
		case x.small > y.small:
			return 1
		default:
			return 0
		}
	}
	return x.asBig().Cmp(y.asBig())
}

// Hash follows spec §4.B's "hash of 0 normalizes to 1" rule, shared with
// every hashable primitive.
func (i *Int) Hash() uint64 {
	var h uint64
	if i.big == nil {
		h = uint64(i.small)
	} else {
		h = uint64(i.big.Int64()) // truncating hash is fine; only equality need agree
		for _, w := range i.big.Bits() {
			h = h*31 + uint64(w)
		}
	}
	if h == 0 {
		h = 1
	}
	return h
}

func init() {
	IntType.Slots.Str = func(v object.Value) (string, error) { return v.(*Int).String(), nil }
	IntType.Slots.Repr = IntType.Slots.Str
	IntType.Slots.Hash = func(v object.Value) (uint64, error) { return v.(*Int).Hash(), nil }
	IntType.Slots.Neg = func(v object.Value) (object.Value, error) { return IntNeg(v.(*Int)), nil }
	IntType.Slots.Not = func(v object.Value) (object.Value, error) {
		x := v.(*Int)
		if x.big != nil {
			return newFromBig(new(big.Int).Not(x.big)), nil
		}
		return NewInt(^x.small), nil
	}

	asInt := func(op string, a, b object.Value) (*Int, *Int, error) {
		ai, ok := a.(*Int)
		if !ok {
			return nil, nil, kerr.New(kerr.TypeError, "unsupported operand type for %s: %s", op, typeName(a))
		}
		bi, ok := b.(*Int)
		if !ok {
			return nil, nil, kerr.New(kerr.TypeError, "unsupported operand type for %s: %s", op, typeName(b))
		}
		return ai, bi, nil
	}

	IntType.Slots.Add = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("+", a, b)
		if err != nil {
			return nil, err
		}
		return IntAdd(x, y), nil
	}
	IntType.Slots.Sub = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("-", a, b)
		if err != nil {
			return nil, err
		}
		return IntSub(x, y), nil
	}
	IntType.Slots.Mul = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("*", a, b)
		if err != nil {
			return nil, err
		}
		return IntMul(x, y), nil
	}
	IntType.Slots.Div = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("/", a, b)
		if err != nil {
			return nil, err
		}
		return IntDiv(x, y)
	}
	IntType.Slots.Mod = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("%", a, b)
		if err != nil {
			return nil, err
		}
		return IntMod(x, y)
	}
	IntType.Slots.Pow = func(a, b object.Value) (object.Value, error) {
		x, y, err := asInt("**", a, b)
		if err != nil {
			return nil, err
		}
		return IntPow(x, y), nil
	}
	cmp := func(name string, ok func(int) bool) object.OpFunc {
		return func(a, b object.Value) (object.Value, error) {
			x, y, err := asInt(name, a, b)
			if err != nil {
				return nil, err
			}
			return Bool(ok(IntCmp(x, y))), nil
		}
	}
	IntType.Slots.Lt = cmp("<", func(c int) bool { return c < 0 })
	IntType.Slots.Le = cmp("<=", func(c int) bool { return c <= 0 })
	IntType.Slots.Gt = cmp(">", func(c int) bool { return c > 0 })
	IntType.Slots.Ge = cmp(">=", func(c int) bool { return c >= 0 })
	IntType.Slots.Eq = func(a, b object.Value) (object.Value, error) {
		y, ok := b.(*Int)
		if !ok {
			return Bool(false), nil
		}
		return Bool(IntCmp(a.(*Int), y) == 0), nil
	}
	IntType.Slots.Ne = func(a, b object.Value) (object.Value, error) {
		r, _ := IntType.Slots.Eq(a, b)
		return Bool(!r.(*BoolVal).B), nil
	}
}

// typeName is a small formatting helper shared by the primitive slot
// implementations for TypeError messages (spec §4.I "naming both types").
func typeName(v object.Value) string {
	if v == nil {
		return "none"
	}
	if t := v.TypeOf(); t != nil {
		return t.Name
	}
	return "?"
}
