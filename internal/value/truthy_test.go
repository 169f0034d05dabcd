package value

import "testing"

func TestBoolSingletons(t *testing.T) {
	if Bool(true) != Bool(true) {
		t.Error("Bool(true) must return the same singleton every call")
	}
	if Bool(false) != Bool(false) {
		t.Error("Bool(false) must return the same singleton every call")
	}
	if Bool(true) == Bool(false) {
		t.Error("true and false must be distinct singletons")
	}
}

func TestTruthy(t *testing.T) {
	if Truthy(NoneVal()) {
		t.Error("none must be falsy")
	}
	if Truthy(Bool(false)) {
		t.Error("false must be falsy")
	}
	if !Truthy(Bool(true)) {
		t.Error("true must be truthy")
	}
	if Truthy(NewInt(0)) {
		t.Error("0 must be falsy")
	}
	if !Truthy(NewInt(1)) {
		t.Error("nonzero int must be truthy")
	}
	if Truthy(NewStr("")) {
		t.Error("empty string must be falsy")
	}
	if !Truthy(NewStr("x")) {
		t.Error("non-empty string must be truthy")
	}
}
