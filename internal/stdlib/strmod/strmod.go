// Package strmod is a native extension module layering display
// formatting on top of the builtin str/int types: human-readable byte
// sizes, ordinal suffixes, and thousands separators (spec §4.J native
// extension modules).
package strmod

import (
	"github.com/dustin/go-humanize"

	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("str", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("str", "<builtin>")
	m.Set("humansize", callable.NewCFunc("str.humansize", 1, humansize))
	m.Set("ordinal", callable.NewCFunc("str.ordinal", 1, ordinal))
	m.Set("commas", callable.NewCFunc("str.commas", 1, commas))
	return m, nil
}

func intArg(v object.Value) (int64, error) {
	defer object.DecRef(v)
	i, ok := v.(*value.Int)
	if !ok {
		return 0, kerr.New(kerr.TypeError, "expected int, got %s", typeName(v))
	}
	return i.Int64(), nil
}

func typeName(v object.Value) string {
	if t := v.TypeOf(); t != nil {
		return t.Name
	}
	return "?"
}

func humansize(args []object.Value) (object.Value, error) {
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	return value.NewStr(humanize.Bytes(uint64(n))), nil
}

func ordinal(args []object.Value) (object.Value, error) {
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewStr(humanize.Ordinal(int(n))), nil
}

func commas(args []object.Value) (object.Value, error) {
	n, err := intArg(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewStr(humanize.Comma(n)), nil
}
