package compiler

import (
	"loxvm/bytecode"
	"loxvm/token"
)

func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	className := c.previous
	nameConst := c.identifierConstant(className.Lexeme)
	c.declareVariable(className.Lexeme)

	c.emitOp(bytecode.OpClass)
	c.emitByte(nameConst)
	c.defineVariable(nameConst)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		c.variable(false)
		if className.Lexeme == c.previous.Lexeme {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(className.Lexeme, false)
		c.emitOp(bytecode.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(className.Lexeme, false)
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.Eof) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emitOp(bytecode.OpPop) // pop the class itself

	if cs.hasSuperclass {
		c.endScope()
	}

	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	name := c.previous.Lexeme
	nameConst := c.identifierConstant(name)

	kind := bytecode.FuncMethod
	if name == "init" {
		kind = bytecode.FuncInitializer
	}
	c.function(kind, name)
	c.emitOp(bytecode.OpMethod)
	c.emitByte(nameConst)
}
