package bytecode

// OpCode is a single bytecode instruction tag. Each opcode's operand width
// and stack effect are fixed by its definition below and by the compiler's
// emit site.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall
	OpInvoke
	OpSuperInvoke

	OpClosure
	OpCloseUpvalue
	OpReturn

	OpClass
	OpInherit
	OpMethod
)

var opNames = map[OpCode]string{
	OpConstant: "OP_CONSTANT", OpNil: "OP_NIL", OpTrue: "OP_TRUE",
	OpFalse: "OP_FALSE", OpPop: "OP_POP",
	OpGetLocal: "OP_GET_LOCAL", OpSetLocal: "OP_SET_LOCAL",
	OpGetGlobal: "OP_GET_GLOBAL", OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal: "OP_SET_GLOBAL",
	OpGetUpvalue: "OP_GET_UPVALUE", OpSetUpvalue: "OP_SET_UPVALUE",
	OpGetProperty: "OP_GET_PROPERTY", OpSetProperty: "OP_SET_PROPERTY",
	OpGetSuper: "OP_GET_SUPER",
	OpEqual:    "OP_EQUAL", OpGreater: "OP_GREATER", OpLess: "OP_LESS",
	OpAdd: "OP_ADD", OpSubtract: "OP_SUBTRACT", OpMultiply: "OP_MULTIPLY",
	OpDivide: "OP_DIVIDE", OpNot: "OP_NOT", OpNegate: "OP_NEGATE",
	OpPrint: "OP_PRINT", OpJump: "OP_JUMP", OpJumpIfFalse: "OP_JUMP_IF_FALSE",
	OpLoop: "OP_LOOP",
	OpCall: "OP_CALL", OpInvoke: "OP_INVOKE", OpSuperInvoke: "OP_SUPER_INVOKE",
	OpClosure: "OP_CLOSURE", OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn: "OP_RETURN",
	OpClass:  "OP_CLASS", OpInherit: "OP_INHERIT", OpMethod: "OP_METHOD",
}

func (op OpCode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "OP_UNKNOWN"
}
