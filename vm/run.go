package vm

import (
	"fmt"
	"os"

	"loxvm/bytecode"
	"loxvm/debug"
)

func (frame *CallFrame) readByte() byte {
	b := frame.closure.Function.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (frame *CallFrame) readShort() uint16 {
	hi := frame.closure.Function.Chunk.Code[frame.ip]
	lo := frame.closure.Function.Chunk.Code[frame.ip+1]
	frame.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (frame *CallFrame) readConstant() bytecode.Value {
	return frame.closure.Function.Chunk.Constants[frame.readByte()]
}

func (frame *CallFrame) readString() *bytecode.ObjString {
	return frame.readConstant().AsString()
}

// run is the VM's dispatch loop: it decodes and executes one instruction at
// a time from the current call frame's chunk until the outermost frame
// returns or a runtime error occurs.
func (vm *VM) run() InterpretResult {
	frame := vm.currentFrame()

	for {
		if debug.Enabled() {
			debug.Step(vm.stack, &frame.closure.Function.Chunk, frame.ip, frame.closure.Function.Name)
		}

		op := bytecode.OpCode(frame.readByte())

		switch op {
		case bytecode.OpConstant:
			vm.push(frame.readConstant())

		case bytecode.OpNil:
			vm.push(bytecode.Nil())
		case bytecode.OpTrue:
			vm.push(bytecode.Bool_(true))
		case bytecode.OpFalse:
			vm.push(bytecode.Bool_(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case bytecode.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := frame.readString()
			value, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}
			vm.push(value)
		case bytecode.OpDefineGlobal:
			name := frame.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := frame.readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}

		case bytecode.OpGetUpvalue:
			slot := frame.readByte()
			up := frame.closure.Upvalues[slot]
			if up.IsClosed {
				vm.push(up.Closed)
			} else {
				vm.push(vm.stack[up.Location])
			}
		case bytecode.OpSetUpvalue:
			slot := frame.readByte()
			up := frame.closure.Upvalues[slot]
			if up.IsClosed {
				up.Closed = vm.peek(0)
			} else {
				vm.stack[up.Location] = vm.peek(0)
			}

		case bytecode.OpGetProperty:
			instance, ok := vm.peek(0).Obj.(*bytecode.ObjInstance)
			if !vm.peek(0).IsObj() || !ok {
				vm.runtimeError("Only instances have properties.")
				return InterpretRuntimeError
			}
			name := frame.readString()
			if value, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(value)
				break
			}
			if !vm.bindMethod(instance.Class, name) {
				return InterpretRuntimeError
			}
		case bytecode.OpSetProperty:
			instance, ok := vm.peek(1).Obj.(*bytecode.ObjInstance)
			if !vm.peek(1).IsObj() || !ok {
				vm.runtimeError("Only instances have fields.")
				return InterpretRuntimeError
			}
			name := frame.readString()
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)
		case bytecode.OpGetSuper:
			name := frame.readString()
			superclass := vm.pop().Obj.(*bytecode.ObjClass)
			if !vm.bindMethod(superclass, name) {
				return InterpretRuntimeError
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(bytecode.Bool_(bytecode.Equal(a, b)))
		case bytecode.OpGreater:
			if !vm.binaryNumberOp(func(a, b float64) bytecode.Value { return bytecode.Bool_(a > b) }) {
				return InterpretRuntimeError
			}
		case bytecode.OpLess:
			if !vm.binaryNumberOp(func(a, b float64) bytecode.Value { return bytecode.Bool_(a < b) }) {
				return InterpretRuntimeError
			}

		case bytecode.OpAdd:
			if !vm.add() {
				return InterpretRuntimeError
			}
		case bytecode.OpSubtract:
			if !vm.binaryNumberOp(func(a, b float64) bytecode.Value { return bytecode.Number(a - b) }) {
				return InterpretRuntimeError
			}
		case bytecode.OpMultiply:
			if !vm.binaryNumberOp(func(a, b float64) bytecode.Value { return bytecode.Number(a * b) }) {
				return InterpretRuntimeError
			}
		case bytecode.OpDivide:
			if !vm.binaryNumberOp(func(a, b float64) bytecode.Value { return bytecode.Number(a / b) }) {
				return InterpretRuntimeError
			}
		case bytecode.OpNot:
			vm.push(bytecode.Bool_(!vm.pop().Truthy()))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return InterpretRuntimeError
			}
			vm.push(bytecode.Number(-vm.pop().Number))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case bytecode.OpJump:
			offset := frame.readShort()
			frame.ip += int(offset)
		case bytecode.OpJumpIfFalse:
			offset := frame.readShort()
			if !vm.peek(0).Truthy() {
				frame.ip += int(offset)
			}
		case bytecode.OpLoop:
			offset := frame.readShort()
			frame.ip -= int(offset)

		case bytecode.OpCall:
			argCount := frame.readByte()
			if !vm.callValue(vm.peek(int(argCount)), argCount) {
				return InterpretRuntimeError
			}
			frame = vm.currentFrame()
		case bytecode.OpInvoke:
			method := frame.readString()
			argCount := frame.readByte()
			if !vm.invoke(method, argCount) {
				return InterpretRuntimeError
			}
			frame = vm.currentFrame()
		case bytecode.OpSuperInvoke:
			method := frame.readString()
			argCount := frame.readByte()
			superclass := vm.pop().Obj.(*bytecode.ObjClass)
			if !vm.invokeFromClass(superclass, method, argCount) {
				return InterpretRuntimeError
			}
			frame = vm.currentFrame()

		case bytecode.OpClosure:
			fn := frame.readConstant().Obj.(*bytecode.ObjFunction)
			closure := bytecode.NewClosure(fn)
			vm.push(bytecode.Obj_(closure))
			for i := range closure.Upvalues {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			closedTo := frame.slots
			vm.closeUpvalues(closedTo)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop()
				return InterpretOK
			}
			vm.stack = vm.stack[:frame.slots]
			vm.push(result)
			frame = vm.currentFrame()

		case bytecode.OpClass:
			vm.push(bytecode.Obj_(bytecode.NewClass(frame.readString().Chars)))
		case bytecode.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.Obj.(*bytecode.ObjClass)
			if !superVal.IsObj() || !ok {
				vm.runtimeError("Superclass must be a class.")
				return InterpretRuntimeError
			}
			subclass := vm.peek(0).Obj.(*bytecode.ObjClass)
			superclass.Methods.AddAll(subclass.Methods)
			vm.pop()
		case bytecode.OpMethod:
			vm.defineMethod(frame.readString())

		default:
			vm.runtimeError("Unknown opcode %d.", byte(op))
			return InterpretRuntimeError
		}
	}
}

func (vm *VM) binaryNumberOp(f func(a, b float64) bytecode.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop()
	a := vm.pop()
	vm.push(f(a.Number, b.Number))
	return true
}

// add implements the overloaded '+': numeric addition or string
// concatenation, depending on the runtime types of both operands.
func (vm *VM) add() bool {
	b := vm.peek(0)
	a := vm.peek(1)
	switch {
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		vm.push(bytecode.Obj_(vm.Interner.Intern(a.AsString().Chars + b.AsString().Chars)))
		return true
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(bytecode.Number(a.Number + b.Number))
		return true
	default:
		vm.runtimeError("Operands must be two numbers or two strings.")
		return false
	}
}

// runtimeError prints the formatted message followed by a stack trace from
// the innermost frame outward, then resets the VM to a clean, empty state.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)

	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		line := fn.Chunk.LineForOffset(f.ip - 1)
		name := "script"
		if fn.Name != "" {
			name = fn.Name + "()"
		}
		fmt.Fprintf(os.Stderr, "[line %d] in %s\n", line, name)
	}

	vm.resetStack()
}
