package vm

import (
	"kslang/internal/bytecode"
	"kslang/internal/container"
	"kslang/internal/kerr"
	"kslang/internal/object"
	"kslang/internal/typesys"
	"kslang/internal/value"
)

// step decodes and executes exactly one instruction in frame f. It
// returns (result, false) when f has returned (RET/RET_NONE; result is
// the owned return value, possibly none) and (nil, true) when a CALL
// pushed a new frame; a non-nil result and pushedFrame=true are never
// returned together, so they are mutually exclusive signals to the
// outer loop in vm.go.
func (vm *VM) step(f *frame) (result object.Value, pushedFrame bool, err error) {
	code := f.code.Chunk.Code
	if f.ip >= len(code) {
		return nil, false, kerr.Internal(nil, "instruction pointer past end of chunk")
	}
	op := bytecode.OpCode(code[f.ip])
	f.ip++

	switch op {
	case bytecode.NOOP:
		// nothing

	case bytecode.POPU:
		object.DecRef(f.pop())

	case bytecode.DUP:
		v := f.peek()
		object.IncRef(v)
		f.push(v)

	case bytecode.CONST:
		idx := f.readArg()
		v := f.code.Chunk.Constants[idx]
		object.IncRef(v)
		f.push(v)

	case bytecode.CONST_TRUE:
		f.push(value.Bool(true))
	case bytecode.CONST_FALSE:
		f.push(value.Bool(false))
	case bytecode.CONST_NONE:
		f.push(value.NoneVal())

	case bytecode.LOAD:
		name := f.constStr(f.readArg())
		v, ok := f.locals[name]
		if !ok {
			v, ok = vm.globals[name]
		}
		if !ok {
			return nil, false, kerr.New(kerr.KeyError, "undefined name %q", name)
		}
		object.IncRef(v)
		f.push(v)

	case bytecode.STORE:
		name := f.constStr(f.readArg())
		val := f.pop()
		if old, ok := f.locals[name]; ok {
			object.DecRef(old)
		}
		f.locals[name] = val

	case bytecode.LOAD_A:
		name := f.constStr(f.readArg())
		obj := f.pop()
		v, aerr := typesys.GetAttr(obj, name)
		object.DecRef(obj)
		if aerr != nil {
			return nil, false, aerr
		}
		f.push(v)

	case bytecode.STORE_A:
		name := f.constStr(f.readArg())
		obj := f.pop()
		val := f.pop()
		serr := typesys.SetAttr(obj, name, val)
		object.DecRef(obj)
		if serr != nil {
			return nil, false, serr
		}

	case bytecode.GETITEM:
		n := int(f.readArg())
		keys := takeTail(f, n)
		obj := f.pop()
		v, gerr := getItem(obj, keys)
		object.DecRef(obj)
		for _, k := range keys {
			object.DecRef(k)
		}
		if gerr != nil {
			return nil, false, gerr
		}
		f.push(v)

	case bytecode.SETITEM:
		n := int(f.readArg())
		keys := takeTail(f, n)
		obj := f.pop()
		val := f.pop()
		serr := setItem(obj, keys, val)
		object.DecRef(obj)
		for _, k := range keys {
			object.DecRef(k)
		}
		if serr != nil {
			return nil, false, serr
		}

	case bytecode.CALL:
		argc := int(f.readArg())
		callee := f.pop()
		n := len(f.stack)
		args := append([]object.Value(nil), f.stack[n-argc:]...)
		f.stack = f.stack[:n-argc]
		res, newFrame, cerr := vm.dispatchCall(callee, args)
		if cerr != nil {
			return nil, false, cerr
		}
		if newFrame != nil {
			vm.frames = append(vm.frames, newFrame)
			return nil, true, nil
		}
		f.push(res)

	case bytecode.TUPLE:
		n := int(f.readArg())
		items := takeTail(f, n)
		f.push(container.NewTupleAdopt(items))

	case bytecode.LIST:
		n := int(f.readArg())
		items := takeTail(f, n)
		f.push(container.NewListAdopt(items))

	case bytecode.ADD:
		return nil, false, binOp(f, "+", func(s *object.Slots) object.OpFunc { return s.Add })
	case bytecode.SUB:
		return nil, false, binOp(f, "-", func(s *object.Slots) object.OpFunc { return s.Sub })
	case bytecode.MUL:
		return nil, false, binOp(f, "*", func(s *object.Slots) object.OpFunc { return s.Mul })
	case bytecode.DIV:
		return nil, false, binOp(f, "/", func(s *object.Slots) object.OpFunc { return s.Div })
	case bytecode.MOD:
		return nil, false, binOp(f, "%", func(s *object.Slots) object.OpFunc { return s.Mod })
	case bytecode.POW:
		return nil, false, binOp(f, "**", func(s *object.Slots) object.OpFunc { return s.Pow })
	case bytecode.LT:
		return nil, false, binOp(f, "<", func(s *object.Slots) object.OpFunc { return s.Lt })
	case bytecode.LE:
		return nil, false, binOp(f, "<=", func(s *object.Slots) object.OpFunc { return s.Le })
	case bytecode.GT:
		return nil, false, binOp(f, ">", func(s *object.Slots) object.OpFunc { return s.Gt })
	case bytecode.GE:
		return nil, false, binOp(f, ">=", func(s *object.Slots) object.OpFunc { return s.Ge })
	case bytecode.EQ:
		return nil, false, binOp(f, "==", func(s *object.Slots) object.OpFunc { return s.Eq })
	case bytecode.NE:
		return nil, false, binOp(f, "!=", func(s *object.Slots) object.OpFunc { return s.Ne })

	case bytecode.NEG:
		return nil, false, unaryOp(f, "-", func(s *object.Slots) object.UnaryFunc { return s.Neg })
	case bytecode.SQIG:
		return nil, false, unaryOp(f, "~", func(s *object.Slots) object.UnaryFunc { return s.Not })

	case bytecode.JMP:
		f.ip = int(f.readArg())
	case bytecode.JMPT:
		target := f.readArg()
		v := f.pop()
		truthy := value.Truthy(v)
		object.DecRef(v)
		if truthy {
			f.ip = int(target)
		}
	case bytecode.JMPF:
		target := f.readArg()
		v := f.pop()
		truthy := value.Truthy(v)
		object.DecRef(v)
		if !truthy {
			f.ip = int(target)
		}

	case bytecode.RET:
		return f.pop(), false, nil
	case bytecode.RET_NONE:
		return value.NoneVal(), false, nil

	case bytecode.EXC_ADD:
		target := f.readArg()
		f.handlers = append(f.handlers, handler{ip: target, stackDepth: len(f.stack)})
	case bytecode.EXC_REM:
		f.handlers = f.handlers[:len(f.handlers)-1]

	case bytecode.GETITER:
		obj := f.pop()
		it, ierr := iterOf(obj)
		object.DecRef(obj)
		if ierr != nil {
			return nil, false, ierr
		}
		f.push(it)

	case bytecode.FORITER:
		target := f.readArg()
		it := f.peek()
		v, ok, nerr := nextOf(it)
		if nerr != nil {
			return nil, false, nerr
		}
		if ok {
			f.push(v)
		} else {
			object.DecRef(f.pop())
			f.ip = int(target)
		}

	default:
		return nil, false, kerr.Internal(nil, "unknown opcode %d", op)
	}
	return nil, false, nil
}

func takeTail(f *frame, n int) []object.Value {
	base := len(f.stack) - n
	items := append([]object.Value(nil), f.stack[base:]...)
	f.stack = f.stack[:base]
	return items
}

// binOp implements spec §4.I's operator resolution: try the LHS type's
// slot; only if it has none, try the RHS type's. If it returns a result
// or an error, that is the outcome either way.
func binOp(f *frame, symbol string, pick func(*object.Slots) object.OpFunc) error {
	b := f.pop()
	a := f.pop()
	defer func() {
		object.DecRef(a)
		object.DecRef(b)
	}()
	if t := a.TypeOf(); t != nil {
		if fn := pick(&t.Slots); fn != nil {
			r, err := fn(a, b)
			if err != nil {
				return err
			}
			f.push(r)
			return nil
		}
	}
	if t := b.TypeOf(); t != nil {
		if fn := pick(&t.Slots); fn != nil {
			r, err := fn(a, b)
			if err != nil {
				return err
			}
			f.push(r)
			return nil
		}
	}
	return kerr.New(kerr.TypeError, "unsupported operand types for %s: %s and %s", symbol, typeNameOf(a), typeNameOf(b))
}

func unaryOp(f *frame, symbol string, pick func(*object.Slots) object.UnaryFunc) error {
	a := f.pop()
	defer object.DecRef(a)
	if t := a.TypeOf(); t != nil {
		if fn := pick(&t.Slots); fn != nil {
			r, err := fn(a)
			if err != nil {
				return err
			}
			f.push(r)
			return nil
		}
	}
	return kerr.New(kerr.TypeError, "unsupported operand type for unary %s: %s", symbol, typeNameOf(a))
}

func getItem(obj object.Value, keys []object.Value) (object.Value, error) {
	t := obj.TypeOf()
	if t == nil || t.Slots.GetItem == nil {
		return nil, kerr.New(kerr.TypeError, "%s is not subscriptable", typeNameOf(obj))
	}
	return t.Slots.GetItem(obj, keys)
}

func setItem(obj object.Value, keys []object.Value, val object.Value) error {
	t := obj.TypeOf()
	if t == nil || t.Slots.SetItem == nil {
		object.DecRef(val)
		return kerr.New(kerr.TypeError, "%s does not support item assignment", typeNameOf(obj))
	}
	return t.Slots.SetItem(obj, keys, val)
}

// iterOf/nextOf drive GETITER/FORITER through a value's Iter/Next slots
// (spec's for-loop supplement, grounded on the original's dict/list
// iterators; see internal/container/iter.go).
func iterOf(obj object.Value) (object.Value, error) {
	t := obj.TypeOf()
	if t == nil || t.Slots.Iter == nil {
		return nil, kerr.New(kerr.TypeError, "%s is not iterable", typeNameOf(obj))
	}
	return t.Slots.Iter(obj)
}

func nextOf(it object.Value) (object.Value, bool, error) {
	t := it.TypeOf()
	if t == nil || t.Slots.Next == nil {
		return nil, false, kerr.Internal(nil, "%s is not an iterator", typeNameOf(it))
	}
	return t.Slots.Next(it)
}

func typeNameOf(v object.Value) string {
	if v == nil {
		return "none"
	}
	if t := v.TypeOf(); t != nil {
		return t.Name
	}
	return "?"
}
