// Package debug implements bytecode disassembly and execution tracing, the
// support tooling the driver's `disassemble` subcommand and its trace flag
// expose: a run-length line map, per-opcode operand formatting, and a
// global, filterable execution tracer.
package debug

import (
	"fmt"
	"io"

	"loxvm/bytecode"
)

// DisassembleChunk writes a full human-readable listing of chunk to w,
// preceded by a "== name ==" header.
func DisassembleChunk(w io.Writer, chunk *bytecode.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		offset = DisassembleInstruction(w, chunk, offset)
	}
}

// DisassembleInstruction writes one instruction at offset and returns the
// offset of the next instruction.
func DisassembleInstruction(w io.Writer, chunk *bytecode.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	line := chunk.LineForOffset(offset)
	if offset > 0 && line == chunk.LineForOffset(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := bytecode.OpCode(chunk.Code[offset])
	switch op {
	case bytecode.OpConstant:
		return constantInstruction(w, chunk, offset)
	case bytecode.OpGetLocal, bytecode.OpSetLocal, bytecode.OpCall,
		bytecode.OpGetUpvalue, bytecode.OpSetUpvalue:
		return byteInstruction(w, op, chunk, offset)
	case bytecode.OpGetGlobal, bytecode.OpDefineGlobal, bytecode.OpSetGlobal,
		bytecode.OpGetProperty, bytecode.OpSetProperty, bytecode.OpGetSuper,
		bytecode.OpClass, bytecode.OpMethod:
		return constantInstruction(w, chunk, offset)
	case bytecode.OpJump, bytecode.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, chunk, offset)
	case bytecode.OpLoop:
		return jumpInstruction(w, op, -1, chunk, offset)
	case bytecode.OpInvoke, bytecode.OpSuperInvoke:
		return invokeInstruction(w, op, chunk, offset)
	case bytecode.OpClosure:
		return closureInstruction(w, chunk, offset)
	default:
		return simple(w, op, offset)
	}
}

func simple(w io.Writer, op bytecode.OpCode, offset int) int {
	fmt.Fprintln(w, op.String())
	return offset + 1
}

func constantInstruction(w io.Writer, chunk *bytecode.Chunk, offset int) int {
	op := bytecode.OpCode(chunk.Code[offset])
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op.String(), idx, chunk.Constants[idx].String())
	return offset + 2
}

func byteInstruction(w io.Writer, op bytecode.OpCode, chunk *bytecode.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op.String(), slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op bytecode.OpCode, sign int, chunk *bytecode.Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op.String(), offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w io.Writer, op bytecode.OpCode, chunk *bytecode.Chunk, offset int) int {
	nameIdx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op.String(), argCount, nameIdx, chunk.Constants[nameIdx].String())
	return offset + 3
}

func closureInstruction(w io.Writer, chunk *bytecode.Chunk, offset int) int {
	offset++
	constIdx := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", bytecode.OpClosure.String(), constIdx, chunk.Constants[constIdx].String())

	fn := chunk.Constants[constIdx].Obj.(*bytecode.ObjFunction)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
