package value

import (
	"math"
	"testing"
)

func TestIntAddPromotesOnOverflow(t *testing.T) {
	x := NewInt(math.MaxInt64)
	y := NewInt(1)
	r := IntAdd(x, y)
	if r.big == nil {
		t.Fatalf("expected promotion to big, got small %d", r.small)
	}
	if r.String() != "9223372036854775808" {
		t.Errorf("got %s", r.String())
	}
}

func TestIntMulSmallResultStaysSmall(t *testing.T) {
	r := IntMul(NewInt(10), NewInt(100))
	if r.big != nil {
		t.Fatalf("10 * 100 should stay in the small representation")
	}
	if r.Int64() != 1000 {
		t.Errorf("got %d, want 1000", r.Int64())
	}
}

func TestIntDivModSignOfDivisor(t *testing.T) {
	tests := []struct {
		a, b, q, m int64
	}{
		{-7, 3, -3, 2},
		{7, -3, -3, -2},
		{7, 3, 2, 1},
		{-7, -3, 2, -1},
	}
	for _, tt := range tests {
		q, m, err := IntDivMod(NewInt(tt.a), NewInt(tt.b))
		if err != nil {
			t.Fatalf("%d/%d: unexpected error %v", tt.a, tt.b, err)
		}
		if q.Int64() != tt.q || m.Int64() != tt.m {
			t.Errorf("%d divmod %d = (%d, %d), want (%d, %d)", tt.a, tt.b, q.Int64(), m.Int64(), tt.q, tt.m)
		}
	}
}

func TestIntDivModByZeroRaisesMathError(t *testing.T) {
	_, _, err := IntDivMod(NewInt(1), NewInt(0))
	if err == nil {
		t.Fatal("expected division by zero to error")
	}
}

func TestIntPowNegativeExponentIsZero(t *testing.T) {
	r := IntPow(NewInt(2), NewInt(-1))
	if r.Int64() != 0 {
		t.Errorf("2 ** -1 = %d, want 0", r.Int64())
	}
}

func TestIntPowPositive(t *testing.T) {
	r := IntPow(NewInt(2), NewInt(10))
	if r.Int64() != 1024 {
		t.Errorf("2 ** 10 = %d, want 1024", r.Int64())
	}
}

func TestIntHashNeverZero(t *testing.T) {
	if NewInt(0).Hash() == 0 {
		t.Error("hash of 0 must normalize to a nonzero value")
	}
}

func TestIntCmp(t *testing.T) {
	if IntCmp(NewInt(1), NewInt(2)) >= 0 {
		t.Error("1 should compare less than 2")
	}
	if IntCmp(NewInt(2), NewInt(2)) != 0 {
		t.Error("2 should compare equal to 2")
	}
}
