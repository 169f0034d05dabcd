package object

import "testing"

func TestIncRefDecRefBalanced(t *testing.T) {
	h := NewHeader(nil)
	if h.RefCount() != 1 {
		t.Fatalf("new header should start at refcount 1, got %d", h.RefCount())
	}
	h.IncRef()
	if h.RefCount() != 2 {
		t.Fatalf("after IncRef, refcount should be 2, got %d", h.RefCount())
	}
	fired := 0
	h.DecRef(func() { fired++ })
	if h.RefCount() != 1 || fired != 0 {
		t.Fatalf("finalizer must not fire until count reaches 0, got count=%d fired=%d", h.RefCount(), fired)
	}
	h.DecRef(func() { fired++ })
	if fired != 1 {
		t.Fatalf("finalizer must fire exactly once, fired=%d", fired)
	}
}

func TestDoubleDecRefDoesNotRefireFinalizer(t *testing.T) {
	h := NewHeader(nil)
	fired := 0
	h.DecRef(func() { fired++ })
	h.DecRef(func() { fired++ }) // guard against a programming-error double free
	if fired != 1 {
		t.Fatalf("finalizer should only fire once even under a double decref, fired=%d", fired)
	}
}

func TestImmortalNeverFrees(t *testing.T) {
	h := NewImmortalHeader(nil)
	fired := false
	for i := 0; i < 5; i++ {
		h.DecRef(func() { fired = true })
	}
	if fired {
		t.Fatal("immortal header's finalizer must never run")
	}
	if h.RefCount() != 1 {
		t.Fatalf("immortal header's refcount should stay untouched, got %d", h.RefCount())
	}
}

func TestNilSafeIncDecRef(t *testing.T) {
	var v Value
	IncRef(v) // must not panic on a nil Value
	DecRef(v)
}
