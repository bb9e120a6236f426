package compiler

import (
	"loxvm/bytecode"
	"loxvm/token"
)

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(bytecode.FuncFunction, c.previous.Lexeme)
	c.defineVariable(global)
}

// function compiles a nested function body in its own funcState, then emits
// OP_CLOSURE + upvalue descriptors into the enclosing chunk.
func (c *Compiler) function(kind bytecode.FunctionKind, name string) {
	c.fn = newFuncState(c.fn, kind, name)
	c.beginScope()

	c.consume(token.LeftParen, "Expect '(' after function name.")
	if !c.check(token.RightParen) {
		for {
			c.fn.function.Arity++
			if c.fn.function.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after parameters.")
	c.consume(token.LeftBrace, "Expect '{' before function body.")
	c.block()

	upvalues := c.fn.upvalues
	fn := c.endFunction()

	c.emitOp(bytecode.OpClosure)
	c.emitByte(c.makeConstant(bytecode.Obj_(fn)))
	for _, up := range upvalues {
		if up.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(up.index)
	}
}
