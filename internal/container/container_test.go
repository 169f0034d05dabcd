package container

import (
	"testing"

	"kslang/internal/object"
	"kslang/internal/value"
)

func TestListPushGetSet(t *testing.T) {
	l := NewList()
	l.Push(value.NewInt(1))
	l.Push(value.NewInt(2))
	l.Push(value.NewInt(3))
	if l.Len() != 3 {
		t.Fatalf("got len %d, want 3", l.Len())
	}
	v, err := l.Get(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*value.Int).Int64() != 2 {
		t.Errorf("l[1] = %d, want 2", v.(*value.Int).Int64())
	}
	if err := l.Set(0, value.NewInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v0, _ := l.Get(0)
	if v0.(*value.Int).Int64() != 100 {
		t.Errorf("l[0] = %d, want 100", v0.(*value.Int).Int64())
	}
}

func TestListNegativeIndexAndOutOfRange(t *testing.T) {
	l := NewList()
	l.Push(value.NewInt(1))
	l.Push(value.NewInt(2))
	v, err := l.Get(-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(*value.Int).Int64() != 2 {
		t.Errorf("l[-1] = %d, want 2", v.(*value.Int).Int64())
	}
	if _, err := l.Get(5); err == nil {
		t.Error("expected an out-of-range error")
	}
}

func TestListPopFromEmptyErrors(t *testing.T) {
	l := NewList()
	if _, err := l.Pop(); err == nil {
		t.Error("pop from empty list should error")
	}
}

func TestDictSetGetDelete(t *testing.T) {
	d := NewDict()
	if err := d.Set(value.NewStr("a"), value.NewInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, found, err := d.Get(value.NewStr("a"))
	if err != nil || !found {
		t.Fatalf("expected to find key a, found=%v err=%v", found, err)
	}
	if v.(*value.Int).Int64() != 1 {
		t.Errorf("d[\"a\"] = %d, want 1", v.(*value.Int).Int64())
	}
	ok, err := d.Delete(value.NewStr("a"))
	if err != nil || !ok {
		t.Fatalf("expected delete to succeed, ok=%v err=%v", ok, err)
	}
	if _, found, _ := d.Get(value.NewStr("a")); found {
		t.Error("key should be gone after delete")
	}
}

func TestDictOverwriteReleasesOldValue(t *testing.T) {
	d := NewDict()
	old := value.NewInt(1)
	if err := d.Set(value.NewStr("k"), old); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Set(value.NewStr("k"), value.NewInt(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("overwriting an existing key must not grow size, got %d", d.Len())
	}
	v, _, _ := d.Get(value.NewStr("k"))
	if v.(*value.Int).Int64() != 2 {
		t.Errorf("d[\"k\"] = %d, want 2", v.(*value.Int).Int64())
	}
	if old.RefCount() != 0 {
		t.Errorf("overwritten value still holds %d references, want 0", old.RefCount())
	}
}

func TestDictRehashPreservesAllEntries(t *testing.T) {
	d := NewDict()
	const n = 64
	for i := 0; i < n; i++ {
		if err := d.Set(value.NewInt(int64(i)), value.NewInt(int64(i*2))); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if d.Len() != n {
		t.Fatalf("got %d entries, want %d", d.Len(), n)
	}
	for i := 0; i < n; i++ {
		v, found, err := d.Get(value.NewInt(int64(i)))
		if err != nil || !found {
			t.Fatalf("key %d missing after rehash, found=%v err=%v", i, found, err)
		}
		if v.(*value.Int).Int64() != int64(i*2) {
			t.Errorf("d[%d] = %d, want %d", i, v.(*value.Int).Int64(), i*2)
		}
	}
}

func TestTupleIsImmutableAndHashable(t *testing.T) {
	tp := NewTupleAdopt([]object.Value{value.NewInt(1), value.NewInt(2)})
	if tp.Len() != 2 {
		t.Fatalf("got len %d, want 2", tp.Len())
	}
	if TupleType.Slots.SetItem != nil {
		t.Error("tuple must not support item assignment")
	}
	h1, err := TupleType.Slots.Hash(tp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := TupleType.Slots.Hash(tp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Error("hashing the same tuple twice must be stable")
	}
}

func TestListIterYieldsItemsInOrder(t *testing.T) {
	l := NewList()
	l.Push(value.NewInt(10))
	l.Push(value.NewInt(20))
	it, err := ListType.Slots.Iter(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []int64
	for {
		v, ok, err := ListIterType.Slots.Next(it)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v.(*value.Int).Int64())
	}
	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Errorf("got %v, want [10 20]", got)
	}
	if _, ok, _ := ListIterType.Slots.Next(it); ok {
		t.Error("exhausted iterator must keep reporting ok=false")
	}
}

func TestDictIterYieldsKeyValueTuples(t *testing.T) {
	d := NewDict()
	if err := d.Set(value.NewStr("a"), value.NewInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Set(value.NewStr("b"), value.NewInt(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it, err := DictType.Slots.Iter(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]int64{}
	for {
		v, ok, err := DictIterType.Slots.Next(it)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		pair := v.(*Tuple)
		if pair.Len() != 2 {
			t.Fatalf("expected a (key, value) pair, got len %d", pair.Len())
		}
		seen[pair.Items[0].(*value.Str).S] = pair.Items[1].(*value.Int).Int64()
	}
	if len(seen) != 2 || seen["a"] != 1 || seen["b"] != 2 {
		t.Errorf("got %v, want map[a:1 b:2]", seen)
	}
}

func TestTupleEq(t *testing.T) {
	a := NewTupleAdopt([]object.Value{value.NewInt(1), value.NewInt(2)})
	b := NewTupleAdopt([]object.Value{value.NewInt(1), value.NewInt(2)})
	eq, err := TupleType.Slots.Eq(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Truthy(eq) {
		t.Error("equal-valued tuples must compare equal")
	}
}
