package bytecode

import "testing"

func intern(s string) *ObjString {
	return &ObjString{Chars: s, Hash: HashString(s)}
}

func TestTableSetGet(t *testing.T) {
	tbl := NewTable()
	key := intern("answer")

	if !tbl.Set(key, Number(42)) {
		t.Fatal("Set on a new key should report true")
	}
	v, ok := tbl.Get(key)
	if !ok || v.Number != 42 {
		t.Fatalf("Get(%q) = %v, %v; want 42, true", key.Chars, v, ok)
	}

	if tbl.Set(key, Number(43)) {
		t.Fatal("Set overwriting an existing key should report false")
	}
	v, _ = tbl.Get(key)
	if v.Number != 43 {
		t.Fatalf("value after overwrite = %v, want 43", v.Number)
	}
}

func TestTableDeleteTombstone(t *testing.T) {
	tbl := NewTable()
	a, b := intern("a"), intern("b")
	tbl.Set(a, Number(1))
	tbl.Set(b, Number(2))

	if !tbl.Delete(a) {
		t.Fatal("Delete of a present key should report true")
	}
	if _, ok := tbl.Get(a); ok {
		t.Fatal("deleted key should no longer be found")
	}
	if v, ok := tbl.Get(b); !ok || v.Number != 2 {
		t.Fatal("deleting one key should not disturb another")
	}
}

func TestTableGrowRehashesExistingEntries(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < 64; i++ {
		key := intern(string(rune('a' + i%26)) + string(rune('0'+i/26)))
		tbl.Set(key, Number(float64(i)))
	}
	if tbl.Count() != 64 {
		t.Fatalf("Count() = %d, want 64", tbl.Count())
	}
}

func TestFindStringInterning(t *testing.T) {
	tbl := NewTable()
	s := intern("shared")
	tbl.Set(s, Nil())

	found := tbl.FindString("shared", HashString("shared"))
	if found != s {
		t.Fatal("FindString should return the canonical stored *ObjString")
	}
	if tbl.FindString("missing", HashString("missing")) != nil {
		t.Fatal("FindString should return nil for unseen content")
	}
}

func TestInternerDedupesByContent(t *testing.T) {
	in := NewInterner()
	a := in.Intern("hello")
	b := in.Intern("hello")
	if a != b {
		t.Fatal("interning equal content twice must return the same handle")
	}
	c := in.Intern("world")
	if a == c {
		t.Fatal("interning different content must return different handles")
	}
}
