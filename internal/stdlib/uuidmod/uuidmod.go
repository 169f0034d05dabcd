// Package uuidmod is a native extension module exposing random UUID
// generation, exercising §6's native-module contract and giving the
// module loader's cache a concrete collaborator with real object
// identity (spec §4.J).
package uuidmod

import (
	"github.com/google/uuid"

	"kslang/internal/callable"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("uuid", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("uuid", "<builtin>")
	m.Set("v4", callable.NewCFunc("uuid.v4", 0, func(args []object.Value) (object.Value, error) {
		return value.NewStr(uuid.New().String()), nil
	}))
	m.Set("nil", value.NewStr(uuid.Nil.String()))
	return m, nil
}
