package module

import (
	"testing"

	"kslang/internal/callable"
	"kslang/internal/object"
	"kslang/internal/value"
)

func noopRun(code *callable.Code) (map[string]object.Value, error) {
	return map[string]object.Value{}, nil
}

func TestLoaderCachesNativeModuleByName(t *testing.T) {
	calls := 0
	Register("loader_test_native", func(argc int, argv []string) (*Module, error) {
		calls++
		m := New("loader_test_native", "<builtin>")
		m.Set("n", value.NewInt(int64(calls)))
		return m, nil
	})

	l := NewLoader(noopRun)
	m1, err := l.Load("loader_test_native")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := l.Load("loader_test_native")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("native init should run exactly once across repeated loads, ran %d times", calls)
	}
	if m1.Attrs["n"].(*value.Int).Int64() != m2.Attrs["n"].(*value.Int).Int64() {
		t.Error("repeated Load of the same name must return the same cached module")
	}
}

func TestLoaderUnknownModuleErrors(t *testing.T) {
	l := NewLoader(noopRun)
	if _, err := l.Load("does_not_exist_anywhere"); err == nil {
		t.Error("expected an error resolving an unregistered, nonexistent module")
	}
}
