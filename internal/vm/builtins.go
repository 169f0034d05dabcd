package vm

import (
	"fmt"
	"os"

	"kslang/internal/callable"
	"kslang/internal/container"
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/typesys"
	"kslang/internal/value"
)

// registerBuiltins installs the global names the compiler assumes exist:
// "dict" and "__make_func__" (dict literals and function literals reuse
// CALL rather than getting dedicated opcodes, spec §4.H/§4.I), plus the
// small set of always-available script-facing functions every kscript
// program expects (print, len, str, repr, type, issub).
func (vm *VM) registerBuiltins() {
	reg := func(name string, arity int, fn callable.NativeFn) {
		vm.globals[name] = callable.NewCFunc(name, arity, fn)
	}

	reg("dict", 0, func(args []object.Value) (object.Value, error) {
		return container.NewDict(), nil
	})

	reg("__make_func__", 2, func(args []object.Value) (object.Value, error) {
		code, ok := args[0].(*callable.Code)
		if !ok {
			return nil, kerr.New(kerr.InternalError, "__make_func__: expected code, got %s", typeNameOf(args[0]))
		}
		defaultsTuple, ok := args[1].(*container.Tuple)
		if !ok {
			return nil, kerr.New(kerr.InternalError, "__make_func__: expected tuple, got %s", typeNameOf(args[1]))
		}
		defaults := append([]object.Value(nil), defaultsTuple.Items...)
		object.IncRef(code)
		for _, d := range defaults {
			object.IncRef(d)
		}
		object.DecRef(defaultsTuple)
		return callable.NewKFunc(code, defaults), nil
	})

	reg("__build_type__", 3, func(args []object.Value) (object.Value, error) {
		name, ok := args[0].(*value.Str)
		if !ok {
			return nil, kerr.New(kerr.InternalError, "__build_type__: expected str name, got %s", typeNameOf(args[0]))
		}
		parentsTuple, ok := args[1].(*container.Tuple)
		if !ok {
			return nil, kerr.New(kerr.InternalError, "__build_type__: expected tuple parents, got %s", typeNameOf(args[1]))
		}
		methods, ok := args[2].(*container.Dict)
		if !ok {
			return nil, kerr.New(kerr.InternalError, "__build_type__: expected dict methods, got %s", typeNameOf(args[2]))
		}
		parents := make([]*object.Type, 0, len(parentsTuple.Items))
		for _, p := range parentsTuple.Items {
			pt, ok := p.(*object.Type)
			if !ok {
				return nil, kerr.New(kerr.TypeError, "parent %s is not a type", typeNameOf(p))
			}
			parents = append(parents, pt)
		}
		t := typesys.NewInstanceType(name.S, parents...)
		for _, k := range methods.Keys() {
			mn, ok := k.(*value.Str)
			if !ok {
				continue
			}
			mv, _, _ := methods.Get(k)
			kf, ok := mv.(*callable.KFunc)
			if !ok {
				continue
			}
			object.IncRef(kf)
			t.Attrs[mn.S] = kf
			if mn.S == "init" {
				t.Slots.Init = wireInit(vm, kf)
			}
			if mn.S == "str" {
				t.Slots.Str = wireStr(vm, kf)
			}
		}
		object.DecRef(name)
		object.DecRef(parentsTuple)
		object.DecRef(methods)
		return t, nil
	})

	reg("print", -1, func(args []object.Value) (object.Value, error) {
		parts := make([]any, 0, len(args))
		for _, a := range args {
			s, err := strOf(a)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
			object.DecRef(a)
		}
		fmt.Println(parts...)
		return value.NoneVal(), nil
	})

	reg("len", 1, func(args []object.Value) (object.Value, error) {
		v := args[0]
		defer object.DecRef(v)
		n, err := lenOf(v)
		if err != nil {
			return nil, err
		}
		return value.NewInt(int64(n)), nil
	})

	reg("str", 1, func(args []object.Value) (object.Value, error) {
		v := args[0]
		defer object.DecRef(v)
		s, err := strOf(v)
		if err != nil {
			return nil, err
		}
		return value.NewStr(s), nil
	})

	reg("repr", 1, func(args []object.Value) (object.Value, error) {
		v := args[0]
		defer object.DecRef(v)
		s, err := reprOf(v)
		if err != nil {
			return nil, err
		}
		return value.NewStr(s), nil
	})

	reg("type", 1, func(args []object.Value) (object.Value, error) {
		v := args[0]
		defer object.DecRef(v)
		t := v.TypeOf()
		if t == nil {
			return nil, kerr.New(kerr.InternalError, "value has no type")
		}
		return t, nil
	})

	reg("import", 1, func(args []object.Value) (object.Value, error) {
		name, ok := args[0].(*value.Str)
		object.DecRef(args[0])
		if !ok {
			return nil, kerr.New(kerr.TypeError, "import expects a string module name")
		}
		return vm.loader.Load(name.S)
	})

	reg("issub", 2, func(args []object.Value) (object.Value, error) {
		a, ok1 := args[0].(*object.Type)
		b, ok2 := args[1].(*object.Type)
		object.DecRef(args[0])
		object.DecRef(args[1])
		if !ok1 || !ok2 {
			return nil, kerr.New(kerr.TypeError, "issub expects two types")
		}
		return value.Bool(object.IsSub(a, b)), nil
	})

	reg("exit", 1, func(args []object.Value) (object.Value, error) {
		code, ok := args[0].(*value.Int)
		object.DecRef(args[0])
		if !ok {
			return nil, kerr.New(kerr.TypeError, "exit expects an int code")
		}
		os.Exit(int(code.Int64()))
		return nil, nil // unreachable
	})
}

func strOf(v object.Value) (string, error) {
	if t := v.TypeOf(); t != nil && t.Slots.Str != nil {
		return t.Slots.Str(v)
	}
	return reprOf(v)
}

func reprOf(v object.Value) (string, error) {
	if t := v.TypeOf(); t != nil && t.Slots.Repr != nil {
		return t.Slots.Repr(v)
	}
	return fmt.Sprintf("<%s>", typeNameOf(v)), nil
}

func lenOf(v object.Value) (int, error) {
	switch x := v.(type) {
	case *value.Str:
		return x.Len(), nil
	case *container.List:
		return x.Len(), nil
	case *container.Tuple:
		return x.Len(), nil
	case *container.Dict:
		return x.Len(), nil
	}
	return 0, kerr.New(kerr.TypeError, "%s has no len()", typeNameOf(v))
}

// wireInit/wireStr adapt a user-defined method (a kfunc) into the native
// Go function shape object.Type's Init/Str slots need, by re-entering the
// VM's own call dispatch and running the kfunc's frame to completion
// (spec §4.D: user types' init/str are ordinary script functions,
// discovered by name in the type body).
func wireInit(vm *VM, kf *callable.KFunc) object.InitFunc {
	return func(self object.Value, args []object.Value) error {
		object.IncRef(kf)
		object.IncRef(self)
		full := append([]object.Value{self}, incRefAll(args)...)
		r, err := vm.callSync(kf, full)
		object.DecRef(r)
		return err
	}
}

func wireStr(vm *VM, kf *callable.KFunc) object.StrFunc {
	return func(self object.Value) (string, error) {
		object.IncRef(kf)
		object.IncRef(self)
		r, err := vm.callSync(kf, []object.Value{self})
		if err != nil {
			return "", err
		}
		defer object.DecRef(r)
		return strOf(r)
	}
}

func incRefAll(args []object.Value) []object.Value {
	for _, a := range args {
		object.IncRef(a)
	}
	return args
}

// callSync runs a kfunc call to completion from within a native-function
// context (a type slot invoked mid-opcode), by pushing its frame and
// driving the same loop used for top-level execution. This nests a
// second call to loop() on the Go call stack, which is safe because the
// nested loop returns (popping back to the original frame count) before
// the outer step() that triggered it continues.
func (vm *VM) callSync(callee object.Value, args []object.Value) (object.Value, error) {
	res, nf, err := vm.dispatchCall(callee, args)
	if err != nil {
		return nil, err
	}
	if nf == nil {
		return res, nil
	}
	vm.frames = append(vm.frames, nf)
	depth := len(vm.frames) - 1
	for len(vm.frames) > depth {
		f := vm.frames[len(vm.frames)-1]
		result, pushedFrame, serr := vm.step(f)
		if serr != nil {
			if !vm.raise(serr, depth) {
				return nil, serr
			}
			continue
		}
		if pushedFrame {
			continue
		}
		if result != nil {
			vm.popFrame()
			if len(vm.frames) == depth {
				return result, nil
			}
			vm.frames[len(vm.frames)-1].push(result)
		}
	}
	return value.NoneVal(), nil
}
