// Package timemod is a native extension module exposing wall-clock time:
// the current unix timestamp and strftime-style formatting (spec §4.J).
package timemod

import (
	"time"

	"github.com/ncruces/go-strftime"

	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("time", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("time", "<builtin>")
	m.Set("now", callable.NewCFunc("time.now", 0, func(args []object.Value) (object.Value, error) {
		return value.NewInt(time.Now().Unix()), nil
	}))
	m.Set("strftime", callable.NewCFunc("time.strftime", 2, strftimeFn))
	return m, nil
}

func strftimeFn(args []object.Value) (object.Value, error) {
	tsv, ok := args[0].(*value.Int)
	object.DecRef(args[0])
	if !ok {
		object.DecRef(args[1])
		return nil, kerr.New(kerr.TypeError, "time.strftime: expected int timestamp")
	}
	layout, ok := args[1].(*value.Str)
	object.DecRef(args[1])
	if !ok {
		return nil, kerr.New(kerr.TypeError, "time.strftime: expected str layout")
	}
	t := time.Unix(tsv.Int64(), 0).UTC()
	return value.NewStr(strftime.Format(layout.S, t)), nil
}
