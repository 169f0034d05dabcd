// Package module implements module objects and the loader that resolves,
// compiles, and caches them by name (spec §4.J). A module is an object
// with a name string and an attribute dictionary, built either by running
// a source file's top-level code to completion and capturing its globals,
// or by a native extension module's initializer.
package module

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
)

// Module is a loaded module: its own attribute dictionary, looked up
// directly (unlike a type instance's attributes, module functions are not
// rebound as bound methods on lookup — spec §4.J describes modules as a
// plain name + dict, not an instance of some type participating in §4.D
// attribute binding).
type Module struct {
	object.Header
	Name  string
	Path  string // "<builtin>" for a native extension module
	Attrs map[string]object.Value
}

var ModuleType = object.NewType("module")

func init() {
	ModuleType.Slots.Str = func(v object.Value) (string, error) {
		return "<module " + v.(*Module).Name + ">", nil
	}
	ModuleType.Slots.Repr = ModuleType.Slots.Str
	ModuleType.Slots.GetAttr = func(self object.Value, name string) (object.Value, error) {
		m := self.(*Module)
		v, ok := m.Attrs[name]
		if !ok {
			return nil, kerr.New(kerr.AttrError, "module %q has no attribute %q", m.Name, name)
		}
		object.IncRef(v)
		return v, nil
	}
}

// New allocates an empty module named name, loaded from path.
func New(name, path string) *Module {
	return &Module{Header: object.NewHeader(ModuleType), Name: name, Path: path, Attrs: make(map[string]object.Value)}
}

func (m *Module) DecRef() {
	m.Header.DecRef(func() {
		for _, v := range m.Attrs {
			object.DecRef(v)
		}
	})
}

// Set installs name -> val, adopting val's reference.
func (m *Module) Set(name string, val object.Value) {
	m.Attrs[name] = val
}
