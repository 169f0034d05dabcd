package vm

import (
	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/typesys"
)

// dispatchCall implements spec §4.I's "Call semantics": a native function
// invokes inline; a script function allocates a new frame; a partial
// function merges its bound arguments and re-dispatches; a type object
// constructs an instance. It takes ownership of callee and every element
// of args.
//
// Exactly one of (result, newFrame) is non-nil on success: result for a
// call that completed immediately (cfunc, pfunc-wrapping-cfunc, type
// construction), newFrame when a kfunc call needs the outer loop to push
// it and keep running.
func (vm *VM) dispatchCall(callee object.Value, args []object.Value) (result object.Value, newFrame *frame, err error) {
	for {
		switch c := callee.(type) {
		case *callable.CFunc:
			if c.Arity >= 0 && len(args) != c.Arity {
				for _, a := range args {
					object.DecRef(a)
				}
				object.DecRef(callee)
				return nil, nil, kerr.New(kerr.ArgError, "%s takes %d argument(s), got %d", c.Name, c.Arity, len(args))
			}
			r, cerr := c.Fn(args)
			object.DecRef(callee)
			return r, nil, cerr

		case *callable.KFunc:
			nf, ferr := vm.buildKFuncFrame(c, args)
			object.DecRef(callee)
			if ferr != nil {
				return nil, nil, ferr
			}
			return nil, nf, nil

		case *callable.PFunc:
			merged := c.Merge(args)
			object.IncRef(c.Target)
			next := c.Target
			object.DecRef(callee)
			callee = next
			args = merged
			continue

		case *object.Type:
			r, terr := typesys.Construct(c, args)
			for _, a := range args {
				object.DecRef(a)
			}
			object.DecRef(callee)
			return r, nil, terr

		default:
			if t := callee.TypeOf(); t != nil && t.Slots.Call != nil {
				r, cerr := t.Slots.Call(callee, args)
				object.DecRef(callee)
				return r, nil, cerr
			}
			name := typeNameOf(callee)
			object.DecRef(callee)
			for _, a := range args {
				object.DecRef(a)
			}
			return nil, nil, kerr.New(kerr.TypeError, "%s is not callable", name)
		}
	}
}

// buildKFuncFrame binds args to the kfunc's parameter names with strict
// arity (spec §4.I): too few required arguments or too many total is an
// ArgError. Missing trailing parameters are filled from Defaults.
func (vm *VM) buildKFuncFrame(c *callable.KFunc, args []object.Value) (*frame, error) {
	params := c.Code.Params
	required := len(params) - len(c.Defaults)
	if len(args) < required || len(args) > len(params) {
		for _, a := range args {
			object.DecRef(a)
		}
		return nil, kerr.New(kerr.ArgError, "%s takes %d to %d arguments, got %d",
			c.Code.Name, required, len(params), len(args))
	}
	locals := make(map[string]object.Value, len(params))
	for i, name := range params {
		if i < len(args) {
			locals[name] = args[i]
			continue
		}
		d := c.Defaults[i-required]
		object.IncRef(d)
		locals[name] = d
	}
	object.IncRef(c.Code)
	return &frame{code: c.Code, locals: locals}, nil
}
