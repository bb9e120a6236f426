package bytecode

import "fmt"

// ValueKind tags a Value's payload.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is the tagged union the VM operates on: a number, a bool, nil, or a
// handle to a heap Object.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Number float64
	Obj    Object
}

func Nil() Value               { return Value{Kind: KindNil} }
func Bool_(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func Number(n float64) Value   { return Value{Kind: KindNumber, Number: n} }
func Obj_(o Object) Value      { return Value{Kind: KindObj, Obj: o} }

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsObj() bool    { return v.Kind == KindObj }

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	_, ok := v.Obj.(*ObjString)
	return v.Kind == KindObj && ok
}

func (v Value) AsString() *ObjString { return v.Obj.(*ObjString) }

// Truthy reports whether v is considered true in a boolean context: only
// nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements value equality: numbers/bools by value, nil only
// equals nil, objects by identity (strings by interned identity, which is
// just pointer identity since they are interned).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObj:
		return a.Obj == b.Obj
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number)
	case KindObj:
		return v.Obj.String()
	default:
		return "<invalid>"
	}
}

func formatNumber(n float64) string {
	return fmt.Sprintf("%g", n)
}

// Object is implemented by every heap-allocated value kind.
type Object interface {
	objectKind() string
	String() string
}

// ObjString is an immutable, interned byte sequence with a precomputed hash.
type ObjString struct {
	Chars string
	Hash  uint32
}

func (s *ObjString) objectKind() string { return "string" }
func (s *ObjString) String() string     { return s.Chars }

// HashString computes the FNV-1a hash used for interning and the Table.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// FunctionKind distinguishes the four compile-time contexts tracked per
// nested function compilation.
type FunctionKind int

const (
	FuncScript FunctionKind = iota
	FuncFunction
	FuncMethod
	FuncInitializer
)

// ObjFunction is a compiled function: its own chunk, arity, and upvalue
// count. Name is empty for the implicit top-level script function.
type ObjFunction struct {
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         string
}

func NewFunction() *ObjFunction {
	return &ObjFunction{Chunk: NewChunk()}
}

func (f *ObjFunction) objectKind() string { return "function" }
func (f *ObjFunction) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// ObjUpvalue is either open (Location indexes into the VM's value stack) or
// closed (Closed owns a copy of the captured value). Open upvalues are
// threaded through the VM's open-upvalue list in strictly descending slot
// order.
type ObjUpvalue struct {
	Location int
	Closed   Value
	IsClosed bool
	Next     *ObjUpvalue
}

func (u *ObjUpvalue) objectKind() string { return "upvalue" }
func (u *ObjUpvalue) String() string     { return "upvalue" }

// ObjClosure binds a Function to the upvalues it captured at creation time.
type ObjClosure struct {
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
}

func (c *ObjClosure) objectKind() string { return "closure" }
func (c *ObjClosure) String() string     { return c.Function.String() }

// ObjNative is a native (Go-implemented) function with a fixed arity
// contract. NativeFn receives its arguments and returns a value or an error
// message (empty on success).
type NativeFn func(args []Value) (Value, string)

type ObjNative struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (n *ObjNative) objectKind() string { return "native" }
func (n *ObjNative) String() string     { return fmt.Sprintf("<native fn %s>", n.Name) }

// ObjClass is a class's name plus its method table (name -> *ObjClosure).
type ObjClass struct {
	Name    string
	Methods *Table
}

func NewClass(name string) *ObjClass {
	return &ObjClass{Name: name, Methods: NewTable()}
}

func (c *ObjClass) objectKind() string { return "class" }
func (c *ObjClass) String() string     { return fmt.Sprintf("<class %s>", c.Name) }

// ObjInstance references its class and owns a field table (name -> Value).
type ObjInstance struct {
	Class  *ObjClass
	Fields *Table
}

func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: NewTable()}
}

func (i *ObjInstance) objectKind() string { return "instance" }
func (i *ObjInstance) String() string     { return fmt.Sprintf("<%s instance>", i.Class.Name) }

// ObjBoundMethod pairs a receiver (always an Instance) with a method
// closure.
type ObjBoundMethod struct {
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) objectKind() string { return "bound_method" }
func (b *ObjBoundMethod) String() string     { return b.Method.String() }
