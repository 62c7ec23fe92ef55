package compiler

import (
	"strconv"

	"github.com/tinyrange/minicc/internal/label"
	"github.com/tinyrange/minicc/internal/token"
)

// declKind selects which of the three declaration contexts decl is
// parsing in: a top-level (module) declaration, a local inside a
// function body, or a parameter in a function's parameter list.
type declKind int

const (
	declModule declKind = iota
	declLocal
	declParam
)

// decl parses one declaration: a type keyword, any number of leading
// "*" (pointer stars are accepted and discarded — minicc is typeless),
// an identifier, and then either a function signature (optionally
// followed by a body) or a variable with an optional initializer, per
// spec.md §4.7.
func (c *Compiler) decl(kind declKind) {
	if !c.curIsType() {
		c.errorf("expected a type near '%s'")
	}
	c.advance() // consume the type keyword

	for c.cur.Is("*") {
		c.advance()
	}

	if c.cur.Kind != token.Ident {
		c.errorf("expected a declaration name near '%s'")
	}
	name := c.cur.Lexeme
	c.advance()

	if c.cur.Is("(") {
		c.funcDecl(kind, name)
		return
	}

	switch kind {
	case declLocal:
		idx := c.sym.NewLocal(name)
		if c.cur.Is("=") {
			c.advance()
			c.expr()
			c.emitf("mov [rbp+%d], rax\n", c.sym.Locals[idx].Offset)
		}
		c.mustMatch(";")
	case declModule:
		idx := c.sym.NewGlobal(name)
		if c.cur.Is("=") {
			c.advance()
			if c.cur.Kind != token.Int {
				c.errorf("global initializer must be an integer literal near '%s'")
			} else {
				v, _ := strconv.ParseInt(c.cur.Lexeme, 10, 64)
				c.sym.Globals[idx].InitValue = v
				c.advance()
			}
		}
		c.mustMatch(";")
	case declParam:
		c.sym.NewParam(name)
		if c.cur.Is("=") {
			c.errorf("a parameter cannot have an initializer near '%s'")
		}
	}
}

// funcDecl parses a function's parameter list and either its body (only
// legal at module scope) or its trailing ";" as a prototype.
func (c *Compiler) funcDecl(kind declKind, name string) {
	if kind == declModule {
		c.sym.NewScope()
	}
	c.advance() // consume '('
	if !c.cur.Is(")") {
		for {
			c.decl(declParam)
			if !c.cur.Is(",") {
				break
			}
			c.advance()
		}
	}
	c.mustMatch(")")

	c.sym.NewFunc(name, false)

	if c.cur.Is("{") {
		if kind != declModule {
			c.errorf("a function body is not allowed here, near '%s'")
		}
		c.funcBody(name)
		return
	}
	c.mustMatch(";")
}

// funcBody compiles a function definition per spec.md §4.8. The
// prologue is emitted only after the body, since the frame size
// (8*local_no, local_no counting parameters too) is known only once
// every local declaration has been seen; the resulting on-disk layout
// is [body] [return:] [epilogue] [name:] [prologue] [jmp body].
func (c *Compiler) funcBody(name string) {
	bodyLabel := c.lbl.Next()
	returnTo := c.lbl.Next()
	savedReturnTo := c.returnTo
	c.returnTo = returnTo

	paramCount := len(c.sym.Locals)
	paramOffsets := make([]int, paramCount)
	for i, l := range c.sym.Locals {
		paramOffsets[i] = l.Offset
	}

	c.mustMatch("{")
	c.emitLabelDef(bodyLabel)

	regs := []string{"rcx", "rdx", "r8", "r9"}
	for i := 0; i < paramCount && i < 4; i++ {
		c.emitf("mov qword [rbp+%d], %s\n", paramOffsets[i], regs[i])
	}

	for !c.cur.Is("}") && !c.atEOF() {
		c.line()
	}
	c.mustMatch("}")

	if name == "main" {
		c.emitf("mov rcx, 0\n")
		c.emitf("call [ExitProcess]\n")
	}

	c.emitLabelDef(returnTo)
	c.emitf("mov rsp, rbp\n")
	c.emitf("pop rbp\n")
	c.emitf("ret\n")

	frameSlots := c.sym.FrameSlots()
	c.emitf("%s:\n", name)
	c.emitf("push rbp\n")
	c.emitf("mov rbp, rsp\n")
	c.emitf("sub rsp, %d\n", 8*frameSlots)
	c.emitf("jmp %s\n", label.Text(bodyLabel))

	c.returnTo = savedReturnTo
}
