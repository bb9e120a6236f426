package vm

import "loxvm/bytecode"

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

// callValue implements the call convention for every callable kind:
// closures, bound methods, classes (constructors), and natives.
func (vm *VM) callValue(callee bytecode.Value, argCount byte) bool {
	if callee.IsObj() {
		switch obj := callee.Obj.(type) {
		case *bytecode.ObjClosure:
			return vm.call(obj, argCount)
		case *bytecode.ObjBoundMethod:
			vm.stack[len(vm.stack)-int(argCount)-1] = obj.Receiver
			return vm.call(obj.Method, argCount)
		case *bytecode.ObjClass:
			instance := bytecode.NewInstance(obj)
			vm.stack[len(vm.stack)-int(argCount)-1] = bytecode.Obj_(instance)
			if initializer, ok := obj.Methods.Get(vm.initString); ok {
				return vm.call(initializer.Obj.(*bytecode.ObjClosure), argCount)
			} else if argCount != 0 {
				vm.runtimeError("Expected 0 arguments but got %d.", argCount)
				return false
			}
			return true
		case *bytecode.ObjNative:
			return vm.callNative(obj, argCount)
		}
	}
	vm.runtimeError("Can only call functions and classes.")
	return false
}

func (vm *VM) callNative(native *bytecode.ObjNative, argCount byte) bool {
	if int(argCount) != native.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", native.Arity, argCount)
		return false
	}
	args := vm.stack[len(vm.stack)-int(argCount):]
	result, errMsg := native.Fn(args)
	if errMsg != "" {
		vm.runtimeError("%s", errMsg)
		return false
	}
	vm.stack = vm.stack[:len(vm.stack)-int(argCount)-1]
	vm.push(result)
	return true
}

func (vm *VM) call(closure *bytecode.ObjClosure, argCount byte) bool {
	if int(argCount) != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if len(vm.frames) >= vm.maxFrames {
		vm.runtimeError("Stack overflow.")
		return false
	}
	if vm.maxStack > 0 && len(vm.stack) >= vm.maxStack {
		vm.runtimeError("Stack overflow.")
		return false
	}
	vm.frames = append(vm.frames, CallFrame{
		closure: closure,
		ip:      0,
		slots:   len(vm.stack) - int(argCount) - 1,
	})
	return true
}

// invoke fuses a property lookup and call (OP_INVOKE), avoiding an
// intermediate BoundMethod allocation for the common `x.m(args)` shape.
func (vm *VM) invoke(name *bytecode.ObjString, argCount byte) bool {
	receiver := vm.peek(int(argCount))
	instance, ok := receiver.Obj.(*bytecode.ObjInstance)
	if !ok || !receiver.IsObj() {
		vm.runtimeError("Only instances have methods.")
		return false
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[len(vm.stack)-int(argCount)-1] = field
		return vm.callValue(field, argCount)
	}

	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *bytecode.ObjClass, name *bytecode.ObjString, argCount byte) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method.Obj.(*bytecode.ObjClosure), argCount)
}

func (vm *VM) bindMethod(class *bytecode.ObjClass, name *bytecode.ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := &bytecode.ObjBoundMethod{Receiver: vm.peek(0), Method: method.Obj.(*bytecode.ObjClosure)}
	vm.pop()
	vm.push(bytecode.Obj_(bound))
	return true
}

// captureUpvalue searches the sorted open-upvalue list for an existing open
// upvalue at slot, reusing it, or allocates and inserts a new one, keeping
// the list sorted in descending stack-slot order.
func (vm *VM) captureUpvalue(slot int) *bytecode.ObjUpvalue {
	var prev *bytecode.ObjUpvalue
	curr := vm.openUpvalues
	for curr != nil && curr.Location > slot {
		prev = curr
		curr = curr.Next
	}
	if curr != nil && curr.Location == slot {
		return curr
	}

	created := &bytecode.ObjUpvalue{Location: slot, Next: curr}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose stack slot is >= last,
// copying the slot's current value into the upvalue and unlinking it.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= last {
		up := vm.openUpvalues
		up.Closed = vm.stack[up.Location]
		up.IsClosed = true
		vm.openUpvalues = up.Next
		up.Next = nil
	}
}

func (vm *VM) defineMethod(name *bytecode.ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).Obj.(*bytecode.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}
