package vm

import (
	"bytes"
	"testing"
)

func run(t *testing.T, source string) (string, InterpretResult) {
	t.Helper()
	var out bytes.Buffer
	v := New()
	v.Stdout = &out
	result := v.Interpret(source)
	return out.String(), result
}

func TestArithmeticPrecedence(t *testing.T) {
	out, result := run(t, "print 1 + 2 * 3;")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if out != "7\n" {
		t.Fatalf("output = %q, want %q", out, "7\n")
	}
}

func TestStringConcatenation(t *testing.T) {
	out, _ := run(t, `var a = "hi"; print a + " there";`)
	if out != "hi there\n" {
		t.Fatalf("output = %q, want %q", out, "hi there\n")
	}
}

func TestClosureCapturesAfterOuterReturns(t *testing.T) {
	out, result := run(t, `
		fun make(x) {
			fun inner() {
				return x;
			}
			return inner;
		}
		var f = make(42);
		print f();
	`)
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if out != "42\n" {
		t.Fatalf("output = %q, want %q", out, "42\n")
	}
}

func TestSuperCallsChain(t *testing.T) {
	out, _ := run(t, `
		class A {
			speak() { print "A"; }
		}
		class B < A {
			speak() {
				super.speak();
				print "B";
			}
		}
		B().speak();
	`)
	if out != "A\nB\n" {
		t.Fatalf("output = %q, want %q", out, "A\nB\n")
	}
}

func TestInitializerReturnsInstanceFieldValue(t *testing.T) {
	out, _ := run(t, `
		class P {
			init(n) { this.n = n; }
		}
		print P(7).n;
	`)
	if out != "7\n" {
		t.Fatalf("output = %q, want %q", out, "7\n")
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, result := run(t, "print undefined_var;")
	if result != InterpretRuntimeError {
		t.Fatalf("result = %v, want InterpretRuntimeError", result)
	}
}

func TestFieldsShadowMethods(t *testing.T) {
	out, _ := run(t, `
		class C {
			m() { print "method"; }
		}
		var inst = C();
		inst.m = "field";
		print inst.m;
	`)
	if out != "field\n" {
		t.Fatalf("output = %q, want %q", out, "field\n")
	}
}

func TestDivisionByZeroIsInfinityNotError(t *testing.T) {
	out, result := run(t, "print 1 / 0;")
	if result != InterpretOK {
		t.Fatalf("result = %v, want InterpretOK", result)
	}
	if out != "+Inf\n" {
		t.Fatalf("output = %q, want %q", out, "+Inf\n")
	}
}

func TestStackEmptyAfterTopLevelStatement(t *testing.T) {
	v := New()
	var out bytes.Buffer
	v.Stdout = &out
	v.Interpret(`var a = 1; var b = 2; print a + b;`)
	if len(v.stack) != 0 {
		t.Fatalf("stack height after statement = %d, want 0", len(v.stack))
	}
}

func TestGlobalsAndInternerPersistAcrossInterpretCalls(t *testing.T) {
	v := New()
	var out bytes.Buffer
	v.Stdout = &out

	if result := v.Interpret(`var counter = 0;`); result != InterpretOK {
		t.Fatalf("first Interpret failed: %v", result)
	}
	if result := v.Interpret(`counter = counter + 1; print counter;`); result != InterpretOK {
		t.Fatalf("second Interpret failed: %v", result)
	}
	if out.String() != "1\n" {
		t.Fatalf("output = %q, want %q", out.String(), "1\n")
	}
}

func TestClassInstanceStringRepresentation(t *testing.T) {
	out, _ := run(t, `
		class Foo {}
		print Foo();
	`)
	if out != "<Foo instance>\n" {
		t.Fatalf("output = %q, want %q", out, "<Foo instance>\n")
	}
}
