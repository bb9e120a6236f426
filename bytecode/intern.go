package bytecode

// Interner is the VM/compiler-shared string intern table: content equality
// implies identity equality. It is built on top of Table, using FindString
// to dedupe by hash+content before allocating a new ObjString.
type Interner struct {
	strings *Table
}

func NewInterner() *Interner {
	return &Interner{strings: NewTable()}
}

// Intern returns the canonical *ObjString for chars, allocating one if this
// is the first time this content has been seen.
func (in *Interner) Intern(chars string) *ObjString {
	hash := HashString(chars)
	if existing := in.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &ObjString{Chars: chars, Hash: hash}
	in.strings.Set(s, Nil())
	return s
}
