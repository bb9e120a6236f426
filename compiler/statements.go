package compiler

import (
	"loxvm/bytecode"
	"loxvm/token"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.Eof) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

// forStatement desugars a C-style for loop into a while loop: optional
// initializer in its own scope, condition tested at the top, increment
// compiled ahead of the body and jumped over on the first iteration.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}

	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fn.kind == bytecode.FuncScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.fn.kind == bytecode.FuncInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(bytecode.OpReturn)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

// parseVariable declares (if local) or resolves the constant name (if
// global) for a variable being defined, returning the global name-constant
// index (unused for locals).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.Identifier, errMsg)
	c.declareVariable(c.previous.Lexeme)
	if c.fn.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous.Lexeme)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(bytecode.OpDefineGlobal)
	c.emitByte(global)
}
