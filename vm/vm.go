// Package vm implements a stack-based bytecode virtual machine: a dispatch
// loop over call frames, a value stack, globals, string interning, and the
// open-upvalue list needed for closures.
package vm

import (
	"fmt"
	"io"
	"os"

	"loxvm/bytecode"
	"loxvm/compiler"
)

const defaultMaxFrames = 64
const defaultMaxStack = defaultMaxFrames * 256

// CallFrame holds one activation record: the closure being executed, an
// instruction pointer into that closure's function chunk, and the stack
// index where the frame's slots begin (slot 0 is the receiver/callee).
type CallFrame struct {
	closure *bytecode.ObjClosure
	ip      int
	slots   int
}

// InterpretResult is the outcome of running a script, mapped to a process
// exit code at the driver boundary.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM owns the value stack, call-frame stack, globals table, string intern
// table, and the open-upvalue list.
type VM struct {
	stack    []bytecode.Value
	frames   []CallFrame
	globals  *bytecode.Table
	Interner *bytecode.Interner
	openUpvalues *bytecode.ObjUpvalue

	Stdout io.Writer

	initString *bytecode.ObjString

	maxFrames int
	maxStack  int
}

func New() *VM {
	interner := bytecode.NewInterner()
	v := &VM{
		stack:     make([]bytecode.Value, 0, 256),
		frames:    make([]CallFrame, 0, defaultMaxFrames),
		globals:   bytecode.NewTable(),
		Interner:  interner,
		Stdout:    os.Stdout,
		maxFrames: defaultMaxFrames,
		maxStack:  defaultMaxStack,
	}
	v.initString = interner.Intern("init")
	RegisterNatives(v)
	return v
}

// SetLimits overrides the VM's frame and stack ceilings; a zero value keeps
// the built-in default for that field.
func (vm *VM) SetLimits(maxFrames, maxStack int) {
	if maxFrames > 0 {
		vm.maxFrames = maxFrames
	}
	if maxStack > 0 {
		vm.maxStack = maxStack
	}
}

func (vm *VM) push(v bytecode.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() bytecode.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) bytecode.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

// DefineGlobal exposes a name -> value binding, used by the driver/natives
// to install `clock` and friends before running a script.
func (vm *VM) DefineGlobal(name string, v bytecode.Value) {
	vm.globals.Set(vm.Interner.Intern(name), v)
}

// Interpret compiles and runs source as a fresh top-level script. Globals
// and the intern table persist across calls, so a REPL can build up state
// one line at a time: only the compiled bytecode of this call is discarded
// afterward.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, err := compiler.Compile(source, vm.Interner)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return InterpretCompileError
	}

	closure := bytecode.NewClosure(fn)
	vm.push(bytecode.Obj_(closure))
	if !vm.callValue(bytecode.Obj_(closure), 0) {
		return InterpretRuntimeError
	}

	return vm.run()
}
