package vm

import (
	"testing"

	"kslang/internal/compiler"
	"kslang/internal/lexer"
	"kslang/internal/object"
	"kslang/internal/parser"
	"kslang/internal/value"
)

// compileAndRun lexes, parses, compiles and executes source on a fresh
// VM, mirroring cmd/kslang's own pipeline end to end.
func compileAndRun(t *testing.T, source string) (object.Value, error) {
	t.Helper()
	sc := lexer.NewScanner("<test>", source)
	toks, err := sc.ScanTokens()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	p := parser.NewParser("<test>", toks)
	block, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	code, err := compiler.CompileProgram("<test>", block)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	m := New()
	return m.Run(code)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int64
	}{
		{"add", "ret 2 + 3", 5},
		{"sub", "ret 10 - 4", 6},
		{"mul", "ret 6 * 7", 42},
		{"pow", "ret 2 ** 10", 1024},
		{"mod_neg", "ret -7 % 3", 2}, // SPEC_FULL Open Question 2: sign-of-divisor
		{"precedence", "ret 2 + 3 * 4", 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := compileAndRun(t, tt.source)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}
			iv, ok := res.(*value.Int)
			if !ok {
				t.Fatalf("expected int, got %T", res)
			}
			if got := iv.Int64(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIfElifElse(t *testing.T) {
	src := `
func classify(n) {
	if n < 0 then ret "neg"
	elif n == 0 then ret "zero"
	else ret "pos"
}
ret classify(-5) + classify(0) + classify(5)
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	s, ok := res.(*value.Str)
	if !ok {
		t.Fatalf("expected str, got %T", res)
	}
	if s.S != "negzeropos" {
		t.Errorf("got %q", s.S)
	}
}

func TestWhileLoop(t *testing.T) {
	src := `
i = 0
total = 0
while i < 5 do {
	total = total + i
	i = i + 1
}
ret total
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 10 {
		t.Errorf("got %d, want 10", iv.Int64())
	}
}

func TestForLoopOverList(t *testing.T) {
	src := `
total = 0
for x in [1, 2, 3, 4] {
	total = total + x
}
ret total
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 10 {
		t.Errorf("got %d, want 10", iv.Int64())
	}
}

func TestForLoopOverDictDestructuresKeyValue(t *testing.T) {
	src := `
d = {"a": 1, "b": 2, "c": 3}
total = 0
count = 0
for k, v in d {
	total = total + v
	count = count + 1
}
ret total
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 6 {
		t.Errorf("got %d, want 6", iv.Int64())
	}
}

func TestForLoopOverEmptyListSkipsBody(t *testing.T) {
	src := `
ran = false
for x in [] {
	ran = true
}
ret ran
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if value.Truthy(res) {
		t.Error("loop body must not run over an empty list")
	}
}

func TestTryCatch(t *testing.T) {
	src := `
result = ""
try {
	x = 1 / 0
	result = "unreached"
} catch e {
	result = e.kind
}
ret result
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	s := res.(*value.Str)
	if s.S != "MathError" {
		t.Errorf("got %q, want MathError", s.S)
	}
}

func TestFunctionDefaultsAndArity(t *testing.T) {
	src := `
func greet(name, greeting = "hi") {
	ret greeting + " " + name
}
ret greet("world")
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	s := res.(*value.Str)
	if s.S != "hi world" {
		t.Errorf("got %q", s.S)
	}
}

func TestArityMismatchRaisesArgError(t *testing.T) {
	src := `
func need_two(a, b) { ret a + b }
ret need_two(1)
`
	_, err := compileAndRun(t, src)
	if err == nil {
		t.Fatal("expected an ArgError, got nil")
	}
}

func TestTypeDeclAndBoundMethod(t *testing.T) {
	src := `
type Counter {
	func init(self, start) {
		self.n = start
	}
	func bump(self, by) {
		self.n = self.n + by
		ret self.n
	}
}
c = Counter(10)
ret c.bump(5)
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 15 {
		t.Errorf("got %d, want 15", iv.Int64())
	}
}

func TestMultipleInheritanceFirstParentWins(t *testing.T) {
	src := `
type A {
	func who(self) { ret "A" }
}
type B {
	func who(self) { ret "B" }
}
type C : A, B {
}
c = C()
ret c.who()
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	s := res.(*value.Str)
	if s.S != "A" {
		t.Errorf("got %q, want A (first-parent-wins)", s.S)
	}
}

func TestListAndDictLiterals(t *testing.T) {
	src := `
xs = [1, 2, 3]
d = dict()
d["a"] = 1
ret xs[1] + d["a"]
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 3 {
		t.Errorf("got %d, want 3", iv.Int64())
	}
}

func TestAliasedListLenAfterClosedProgram(t *testing.T) {
	src := `
xs = [1, 2, 3]
ys = xs
ret len(ys)
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 3 {
		t.Errorf("got %d, want 3", iv.Int64())
	}
}

func TestPartialApplicationBoundMethod(t *testing.T) {
	src := `
type Adder {
	func init(self, base) { self.base = base }
	func add(self, x) { ret self.base + x }
}
a = Adder(100)
f = a.add
ret f(23)
`
	res, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	iv := res.(*value.Int)
	if iv.Int64() != 123 {
		t.Errorf("got %d, want 123", iv.Int64())
	}
}

func TestUncaughtErrorPropagatesToEmbedder(t *testing.T) {
	_, err := compileAndRun(t, "ret 1 / 0")
	if err == nil {
		t.Fatal("expected a MathError to escape uncaught")
	}
}
