package compiler

import (
	"strconv"

	"loxvm/bytecode"
	"loxvm/token"
)

func (c *Compiler) number(canAssign bool) {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(bytecode.Number(v))
}

func (c *Compiler) stringLit(canAssign bool) {
	raw := c.previous.Lexeme
	// Strip the surrounding quotes.
	content := raw[1 : len(raw)-1]
	c.emitConstant(bytecode.Obj_(c.interner.Intern(content)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(bytecode.OpFalse)
	case token.True:
		c.emitOp(bytecode.OpTrue)
	case token.Nil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	opKind := c.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opKind := c.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.BangEqual:
		c.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.GreaterEqual:
		c.emitOps(bytecode.OpLess, bytecode.OpNot)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.LessEqual:
		c.emitOps(bytecode.OpGreater, bytecode.OpNot)
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSubtract)
	case token.Star:
		c.emitOp(bytecode.OpMultiply)
	case token.Slash:
		c.emitOp(bytecode.OpDivide)
	}
}

func (c *Compiler) and_(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp bytecode.OpCode
	idx := c.resolveLocal(c.fn, name)
	if idx != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else if u := c.resolveUpvalue(c.fn, name); u != -1 {
		idx = u
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	} else {
		idx = int(c.identifierConstant(name))
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOp(setOp)
		c.emitByte(byte(idx))
	} else {
		c.emitOp(getOp)
		c.emitByte(byte(idx))
	}
}

func (c *Compiler) this_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

func (c *Compiler) super_(canAssign bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("this", false)
	if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOp(bytecode.OpSuperInvoke)
		c.emitByte(name)
		c.emitByte(argCount)
	} else {
		c.namedVariable("super", false)
		c.emitOp(bytecode.OpGetSuper)
		c.emitByte(name)
	}
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitOp(bytecode.OpSetProperty)
		c.emitByte(name)
	} else if c.match(token.LeftParen) {
		argCount := c.argumentList()
		c.emitOp(bytecode.OpInvoke)
		c.emitByte(name)
		c.emitByte(argCount)
	} else {
		c.emitOp(bytecode.OpGetProperty)
		c.emitByte(name)
	}
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList()
	c.emitOp(bytecode.OpCall)
	c.emitByte(argCount)
}

func (c *Compiler) argumentList() byte {
	var count int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if count == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			count++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(count)
}
