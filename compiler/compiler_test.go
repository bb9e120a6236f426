package compiler

import (
	"testing"

	"loxvm/bytecode"
)

func mustCompile(t *testing.T, source string) *bytecode.ObjFunction {
	t.Helper()
	fn, err := Compile(source, bytecode.NewInterner())
	if err != nil {
		t.Fatalf("Compile(%q) returned error: %v", source, err)
	}
	return fn
}

func TestCompileArithmeticEmitsExpectedBytecode(t *testing.T) {
	fn := mustCompile(t, "1 + 2;")
	want := []bytecode.OpCode{
		bytecode.OpConstant,
		bytecode.OpConstant,
		bytecode.OpAdd,
		bytecode.OpPop,
		bytecode.OpNil,
		bytecode.OpReturn,
	}
	code := fn.Chunk.Code
	pos := 0
	for _, op := range want {
		if pos >= len(code) {
			t.Fatalf("ran out of bytecode looking for %s", op)
		}
		if bytecode.OpCode(code[pos]) != op {
			t.Fatalf("at offset %d: got %s, want %s", pos, bytecode.OpCode(code[pos]), op)
		}
		pos++
		switch op {
		case bytecode.OpConstant:
			pos++ // skip constant index operand
		}
	}
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	_, err := Compile("var;", bytecode.NewInterner())
	if err == nil {
		t.Fatal("expected a compile error for a variable declaration with no name")
	}
}

func TestInitializerCannotReturnValue(t *testing.T) {
	_, err := Compile(`class Q { init() { return 1; } }`, bytecode.NewInterner())
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestUndefinedVariableIsNotACompileError(t *testing.T) {
	// Undefined globals are a runtime concern, not a compile-time one:
	// compilation of a bare identifier reference must succeed.
	mustCompile(t, "print nope;")
}

func TestClosureCompiles(t *testing.T) {
	fn := mustCompile(t, `
		fun make(x) {
			fun inner() { return x; }
			return inner;
		}
		var f = make(42);
		print f();
	`)
	if fn == nil {
		t.Fatal("expected a compiled script function")
	}
}

func TestClassWithSuperclassCompiles(t *testing.T) {
	mustCompile(t, `
		class A { speak() { print "A"; } }
		class B < A {
			speak() {
				super.speak();
				print "B";
			}
		}
		B().speak();
	`)
}

func TestSelfInheritanceIsCompileError(t *testing.T) {
	_, err := Compile(`class A < A {}`, bytecode.NewInterner())
	if err == nil {
		t.Fatal("a class inheriting from itself must be a compile error")
	}
}
