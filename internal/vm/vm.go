// Package vm executes compiled chunks: one operand stack and one locals
// map per call frame, an explicit frame stack (not Go call recursion, so
// exception unwinding can walk it per spec §4.I), and a single dispatch
// loop over the bytecode instruction set (spec §4.I).
package vm

import (
	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/typesys"
	"kslang/internal/value"
)

// handler is a registered (pc, stack_depth) landing pad, per spec §4.I's
// glossary entry for "Handler".
type handler struct {
	ip         int32
	stackDepth int
}

// frame is one call's execution state: its code, instruction pointer,
// operand stack, locals, and exception-handler stack.
type frame struct {
	code     *callable.Code
	ip       int
	stack    []object.Value
	locals   map[string]object.Value
	handlers []handler
	isGlobal bool // true only for the module's root frame, whose locals IS vm.globals
}

func (f *frame) push(v object.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() object.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack[n] = nil
	f.stack = f.stack[:n]
	return v
}

func (f *frame) peek() object.Value { return f.stack[len(f.stack)-1] }

// VM is one interpreter instance. Per spec §5 it is single-threaded and
// not safe for concurrent use; an embedder wanting parallelism runs
// independent VMs, each with its own copy of global state.
type VM struct {
	globals map[string]object.Value
	frames  []*frame
	loader  *module.Loader
}

// New creates a VM with its builtins registered (spec §6 "Embed API:
// init once at process start").
func New() *VM {
	vm := &VM{globals: make(map[string]object.Value)}
	vm.loader = module.NewLoader(vm.RunModule)
	vm.registerBuiltins()
	return vm
}

// Globals exposes the VM's global dict so an embedder can bind additional
// native functions or modules before running a program (spec §6).
func (vm *VM) Globals() map[string]object.Value { return vm.globals }

// Run executes a compiled module's top-level code to completion, returning
// its final ret value (none, if the module falls off the end).
func (vm *VM) Run(code *callable.Code) (object.Value, error) {
	object.IncRef(code)
	root := &frame{code: code, locals: vm.globals, isGlobal: true}
	vm.frames = append(vm.frames, root)
	return vm.loop()
}

func (vm *VM) loop() (object.Value, error) {
	for len(vm.frames) > 0 {
		f := vm.frames[len(vm.frames)-1]
		result, pushedFrame, err := vm.step(f)
		if err != nil {
			if !vm.raise(err, 0) {
				return nil, err
			}
			continue
		}
		if pushedFrame {
			continue
		}
		if result != nil {
			// step() only ever returns a non-nil result for RET/RET_NONE,
			// signalling that f is done.
			vm.popFrame()
			if len(vm.frames) == 0 {
				return result, nil
			}
			vm.frames[len(vm.frames)-1].push(result)
		}
	}
	return nil, kerr.Internal(nil, "VM frame stack exhausted without a return")
}

// popFrame discards the current top frame. Its own code reference is
// released; its locals are released unless it's the global frame, whose
// locals map is vm.globals and outlives the call.
func (vm *VM) popFrame() {
	n := len(vm.frames) - 1
	f := vm.frames[n]
	vm.frames = vm.frames[:n]
	object.DecRef(f.code)
	if !f.isGlobal {
		for _, v := range f.locals {
			object.DecRef(v)
		}
	}
}

// raise implements spec §4.I's exception propagation: walk frames from the
// top, looking for a handler. The first one found truncates its frame's
// stack, pushes the error value, and resumes there. Frames without a
// handler are discarded (their stacks and locals released) and the
// search continues in the caller, but never past floor frames — a nested
// call driven by vm.callSync (a user "init"/"str" method invoked from a
// type slot) must not unwind frames that belong to an outer, unrelated
// call. Returns false if no handler existed down to floor, meaning the
// error is uncaught within this sub-call (or, at floor 0, uncaught by
// the whole program).
func (vm *VM) raise(err error, floor int) bool {
	var ev object.Value
	if e, ok := err.(*kerr.Error); ok {
		ev = typesys.WrapError(e)
	} else {
		ev = typesys.WrapError(kerr.Internal(err, "%v", err))
	}
	for len(vm.frames) > floor {
		f := vm.frames[len(vm.frames)-1]
		if len(f.handlers) > 0 {
			h := f.handlers[len(f.handlers)-1]
			f.handlers = f.handlers[:len(f.handlers)-1]
			for len(f.stack) > h.stackDepth {
				object.DecRef(f.pop())
			}
			f.push(ev)
			f.ip = int(h.ip)
			return true
		}
		for _, v := range f.stack {
			object.DecRef(v)
		}
		vm.popFrame()
	}
	object.DecRef(ev)
	return false
}

// readArg reads the 4-byte little-endian operand at f.ip and advances
// past it.
func (f *frame) readArg() int32 {
	v := f.code.Chunk.ReadArg(f.ip)
	f.ip += 4
	return v
}

// constStr resolves a CONST-pool index the compiler emitted for a name
// (LOAD/STORE/LOAD_A/STORE_A's operand), per spec §4.H.
func (f *frame) constStr(idx int32) string {
	return f.code.Chunk.Constants[idx].(*value.Str).S
}

// RunModule executes a loaded module's top-level code to completion in
// its own fresh global scope, returning that scope so the caller (the
// module loader) can adopt it as the module's attribute dictionary (spec
// §4.J). It nests a sub-loop on vm.frames exactly like callSync, bounded
// below by depth so unwinding during the module's own execution can
// never touch the frame that triggered the import.
func (vm *VM) RunModule(code *callable.Code) (map[string]object.Value, error) {
	object.IncRef(code)
	g := make(map[string]object.Value)
	vm.frames = append(vm.frames, &frame{code: code, locals: g, isGlobal: true})
	depth := len(vm.frames) - 1
	for len(vm.frames) > depth {
		f := vm.frames[len(vm.frames)-1]
		result, pushedFrame, err := vm.step(f)
		if err != nil {
			if !vm.raise(err, depth) {
				return nil, err
			}
			continue
		}
		if pushedFrame {
			continue
		}
		if result != nil {
			object.DecRef(result)
			vm.popFrame()
		}
	}
	return g, nil
}
