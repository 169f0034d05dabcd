package typesys

import (
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/value"
)

// ErrorType is the runtime type every *kerr.Error reports via TypeOf once
// the VM has stamped it (kerr itself can't depend on typesys, or on
// object.Type's richer slots, without an import cycle back to callable).
var ErrorType = object.NewType("error")

func init() {
	ErrorType.Slots.Str = func(v object.Value) (string, error) { return v.(*kerr.Error).Error(), nil }
	ErrorType.Slots.Repr = ErrorType.Slots.Str
	ErrorType.Slots.GetAttr = func(self object.Value, name string) (object.Value, error) {
		e := self.(*kerr.Error)
		switch name {
		case "kind":
			return value.NewStr(string(e.Kind)), nil
		case "message":
			return value.NewStr(e.Message), nil
		}
		return nil, kerr.New(kerr.AttrError, "error has no attribute %q", name)
	}
}

// WrapError stamps e with ErrorType so it can flow as a normal heap Value
// (thrown, caught, inspected) the moment it's raised by the VM.
func WrapError(e *kerr.Error) *kerr.Error {
	e.SetType(ErrorType)
	return e
}
