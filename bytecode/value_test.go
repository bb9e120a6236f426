package bytecode

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Nil(), false},
		{Bool_(false), false},
		{Bool_(true), true},
		{Number(0), true},
		{Number(-1), true},
		{Obj_(&ObjString{Chars: ""}), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestEqualAcrossTypes(t *testing.T) {
	if Equal(Number(0), Bool_(false)) {
		t.Fatal("values of different kinds must never be equal")
	}
	if !Equal(Nil(), Nil()) {
		t.Fatal("nil must equal nil")
	}
	if !Equal(Number(1), Number(1)) {
		t.Fatal("equal numbers must compare equal")
	}
}

func TestEqualObjectsByIdentity(t *testing.T) {
	a := &ObjString{Chars: "x", Hash: HashString("x")}
	b := &ObjString{Chars: "x", Hash: HashString("x")}
	if Equal(Obj_(a), Obj_(b)) {
		t.Fatal("distinct (non-interned) string objects with equal content must not be Equal by pointer identity")
	}
	if !Equal(Obj_(a), Obj_(a)) {
		t.Fatal("an object must equal itself")
	}
}

func TestFormatNumber(t *testing.T) {
	if got := Number(7).String(); got != "7" {
		t.Errorf("Number(7).String() = %q, want %q", got, "7")
	}
	if got := Number(1.5).String(); got != "1.5" {
		t.Errorf("Number(1.5).String() = %q, want %q", got, "1.5")
	}
}
