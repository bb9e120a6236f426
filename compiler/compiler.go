// Package compiler implements a single-pass Pratt compiler that turns a
// token stream directly into bytecode. There is no intermediate AST:
// parsing and code generation happen in the same pass, driven by a table
// of prefix/infix parse rules keyed on token kind and precedence.
package compiler

import (
	"fmt"

	"loxvm/bytecode"
	"loxvm/scanner"
	"loxvm/token"
)

const maxLocals = 256
const maxUpvalues = 256
const maxConstants = 255

// local tracks one declared local variable in the current function.
type local struct {
	name       string
	depth      int // -1 while uninitialized
	isCaptured bool
}

// upvalueRef is a pending upvalue descriptor being built for the function
// currently being compiled.
type upvalueRef struct {
	index   byte
	isLocal bool
}

// classState tracks whether the class currently being compiled has a
// superclass, so `super` can be validated.
type classState struct {
	enclosing      *classState
	hasSuperclass  bool
}

// funcState is one nested compiler context: one per function being
// compiled, chained through enclosing to form the parent stack that
// upvalue resolution walks.
type funcState struct {
	enclosing *funcState

	function *bytecode.ObjFunction
	kind     bytecode.FunctionKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

func newFuncState(enclosing *funcState, kind bytecode.FunctionKind, name string) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		function:  bytecode.NewFunction(),
		kind:      kind,
	}
	fs.function.Name = name
	// Slot 0 is reserved for the receiver/callee.
	slotName := ""
	if kind == bytecode.FuncMethod || kind == bytecode.FuncInitializer {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}

// Compiler drives the Pratt parse and emits into the current funcState's
// chunk.
type Compiler struct {
	scanner *scanner.Scanner
	interner *bytecode.Interner

	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errors    []string

	fn    *funcState
	class *classState
}

// CompileError is returned when one or more compile errors were reported;
// bytecode emission is suppressed whenever any error occurred.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%d compile errors, first: %s", len(e.Messages), e.Messages[0])
}

// Compile compiles source into a top-level script function. interner is
// the VM's shared string intern table: two strings with equal content
// must be identical handles, whether compiled or interned at runtime.
func Compile(source string, interner *bytecode.Interner) (*bytecode.ObjFunction, error) {
	c := &Compiler{
		scanner:  scanner.New(source),
		interner: interner,
	}
	c.fn = newFuncState(nil, bytecode.FuncScript, "")

	c.advance()
	for !c.match(token.Eof) {
		c.declaration()
	}
	fn := c.endFunction()

	if c.hadError {
		return nil, &CompileError{Messages: c.errors}
	}
	return fn, nil
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool {
	return c.current.Kind == k
}

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	where := ""
	switch tok.Kind {
	case token.Eof:
		where = " at end"
	case token.Error:
		// lexeme is already the message
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.errors = append(c.errors, fmt.Sprintf("[line %d] Error%s: %s", tok.Line, where, msg))
	c.hadError = true
}

// synchronize skips tokens until it reaches a likely statement boundary,
// so a single syntax error doesn't cascade into a wall of spurious ones.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.Eof {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// ---- emission helpers ----

func (c *Compiler) chunk() *bytecode.Chunk { return &c.fn.function.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.OpCode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitOps(op1, op2 bytecode.OpCode) {
	c.emitOp(op1)
	c.emitOp(op2)
}

func (c *Compiler) emitShort(v uint16) {
	c.emitByte(byte(v >> 8))
	c.emitByte(byte(v))
}

// makeConstant adds v to the chunk's constant pool and returns its index as
// a single byte, the width OP_CONSTANT and friends actually encode.
func (c *Compiler) makeConstant(v bytecode.Value) byte {
	idx := c.chunk().AddConstant(v)
	if idx > maxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v bytecode.Value) {
	c.emitOp(bytecode.OpConstant)
	c.emitByte(c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(bytecode.Obj_(c.interner.Intern(name)))
}

// emitJump emits a jump opcode with a placeholder 2-byte offset and returns
// the offset of the placeholder to patch later.
func (c *Compiler) emitJump(op bytecode.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitShort(uint16(offset))
}

func (c *Compiler) emitReturn() {
	if c.fn.kind == bytecode.FuncInitializer {
		c.emitOp(bytecode.OpGetLocal)
		c.emitByte(0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

// endFunction closes off the current function's chunk and pops back to
// the enclosing funcState.
func (c *Compiler) endFunction() *bytecode.ObjFunction {
	c.emitReturn()
	fn := c.fn.function
	fn.UpvalueCount = len(c.fn.upvalues)
	c.fn = c.fn.enclosing
	return fn
}

// ---- scopes and locals ----

func (c *Compiler) beginScope() { c.fn.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fn.scopeDepth--
	for len(c.fn.locals) > 0 && c.fn.locals[len(c.fn.locals)-1].depth > c.fn.scopeDepth {
		last := c.fn.locals[len(c.fn.locals)-1]
		if last.isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		c.fn.locals = c.fn.locals[:len(c.fn.locals)-1]
	}
}

func (c *Compiler) declareVariable(name string) {
	if c.fn.scopeDepth == 0 {
		return
	}
	for i := len(c.fn.locals) - 1; i >= 0; i-- {
		l := c.fn.locals[i]
		if l.depth != -1 && l.depth < c.fn.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fn.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.fn.locals = append(c.fn.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fn.scopeDepth == 0 {
		return
	}
	c.fn.locals[len(c.fn.locals)-1].depth = c.fn.scopeDepth
}

// resolveLocal walks fs's locals newest-to-oldest; a depth of -1 found
// mid-resolution means the variable is being read from its own initializer.
func resolveLocal(fs *funcState, name string) (int, bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				return -1, true // signal "found but uninitialized"
			}
			return i, true
		}
	}
	return -1, false
}

func (c *Compiler) resolveLocal(fs *funcState, name string) int {
	idx, found := resolveLocal(fs, name)
	if found && idx == -1 {
		c.error("Can't read local variable in its own initializer.")
		return -1
	}
	if !found {
		return -1
	}
	return idx
}

// resolveUpvalue implements the upvalue capture algorithm: look in the
// immediately enclosing function's locals first, then recurse outward.
func (c *Compiler) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if idx := c.resolveLocal(fs.enclosing, name); idx != -1 {
		fs.enclosing.locals[idx].isCaptured = true
		return c.addUpvalue(fs, byte(idx), true)
	}
	if idx := c.resolveUpvalue(fs.enclosing, name); idx != -1 {
		return c.addUpvalue(fs, byte(idx), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcState, index byte, isLocal bool) int {
	for i, up := range fs.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}
