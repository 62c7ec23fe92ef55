package compiler

import "github.com/tinyrange/minicc/internal/label"

// mustMatchKeyword requires cur to be the identifier-kind keyword s,
// reporting an error and consuming it either way (same no-recovery
// policy as mustMatch).
func (c *Compiler) mustMatchKeyword(s string) {
	if !c.curIsKeyword(s) {
		c.errorf("expected '" + s + "', found '%s'")
	}
	c.advance()
}

// line dispatches on the current token and compiles exactly one
// statement, per spec.md §4.6.
func (c *Compiler) line() {
	switch {
	case c.curIsKeyword("if"):
		c.ifStmt()
	case c.curIsKeyword("while"):
		c.whileStmt()
	case c.curIsKeyword("do"):
		c.doStmt()
	case c.curIsKeyword("for"):
		c.forStmt()
	case c.curIsType():
		c.decl(declLocal)
	case c.cur.Is("{"):
		c.advance()
		for !c.cur.Is("}") && !c.atEOF() {
			c.line()
		}
		c.mustMatch("}")
	default:
		c.exprStmt()
	}
}

// ifStmt compiles "if ( expr ) branch [else branch]" via the shared
// branch emitter with isexpr=false.
func (c *Compiler) ifStmt() {
	c.mustMatchKeyword("if")
	c.mustMatch("(")
	c.expr()
	c.mustMatch(")")
	c.branch(false)
}

// branch assumes the condition value is already in rax. It emits the
// comparison and conditional jump, compiles the then-branch, jumps to
// the join label, compiles the else-branch, and defines the join label.
// isexpr selects between expression syntax (":" separator, used by the
// ternary operator) and statement syntax (optional "else").
func (c *Compiler) branch(isexpr bool) {
	falseLabel := c.lbl.Next()
	joinLabel := c.lbl.Next()

	c.emitf("cmp rax, 0\n")
	c.emitf("je %s\n", label.Text(falseLabel))

	if isexpr {
		c.expr()
	} else {
		c.line()
	}
	c.emitf("jmp %s\n", label.Text(joinLabel))
	c.emitLabelDef(falseLabel)

	if isexpr {
		c.mustMatch(":")
		c.expr()
	} else if c.curIsKeyword("else") {
		c.advance()
		c.line()
	}
	c.emitLabelDef(joinLabel)
}

// whileStmt compiles "while ( expr ) body".
func (c *Compiler) whileStmt() {
	c.mustMatchKeyword("while")
	head := c.lbl.Next()
	brk := c.lbl.Next()

	c.emitLabelDef(head)
	c.mustMatch("(")
	c.expr()
	c.mustMatch(")")
	c.emitf("cmp rax, 0\n")
	c.emitf("je %s\n", label.Text(brk))
	c.line()
	c.emitf("jmp %s\n", label.Text(head))
	c.emitLabelDef(brk)
}

// doStmt compiles "do body while ( expr ) ;".
func (c *Compiler) doStmt() {
	c.mustMatchKeyword("do")
	head := c.lbl.Next()
	brk := c.lbl.Next()

	c.emitLabelDef(head)
	c.line()
	c.mustMatchKeyword("while")
	c.mustMatch("(")
	c.expr()
	c.mustMatch(")")
	c.mustMatch(";")
	c.emitf("cmp rax, 0\n")
	c.emitf("je %s\n", label.Text(brk))
	c.emitf("jmp %s\n", label.Text(head))
	c.emitLabelDef(brk)
}

// forStmt compiles "for ( init ; cond ; step ) body" per spec.md §4.6.
// init and cond are each parsed as a full statement (consuming their own
// trailing ";"), so either may be empty: an empty init/cond statement is
// just ";", handled by exprStmt's optional-expression path. An empty cond
// emits no code, so the loop test reads whatever value rax already holds.
// The step is a required expression: "for(;;)" reports an error at the
// empty step.
// The redundant jne/je pair spec.md §9 flags is elided per the
// corresponding REDESIGN FLAG: a single "cmp rax,0; je end" is followed
// by an unconditional jump over the step block, which sits between the
// condition and the body.
func (c *Compiler) forStmt() {
	c.mustMatchKeyword("for")
	c.mustMatch("(")

	c.line() // init; consumes its own ';'

	condLabel := c.lbl.Next()
	stepLabel := c.lbl.Next()
	bodyLabel := c.lbl.Next()
	endLabel := c.lbl.Next()

	c.emitLabelDef(condLabel)
	c.exprStmt() // cond; consumes its own ';'
	c.emitf("cmp rax, 0\n")
	c.emitf("je %s\n", label.Text(endLabel))

	c.emitf("jmp %s\n", label.Text(bodyLabel))
	c.emitLabelDef(stepLabel)
	c.expr()
	c.mustMatch(")")
	c.emitf("jmp %s\n", label.Text(condLabel))

	c.emitLabelDef(bodyLabel)
	c.line()
	c.emitf("jmp %s\n", label.Text(stepLabel))

	c.emitLabelDef(endLabel)
}

// exprStmt compiles an optional leading "return", an optional
// expression, and a terminating ";". A bare ";" is a legal empty
// statement (used by for's init/cond clauses).
func (c *Compiler) exprStmt() {
	isReturn := c.curIsKeyword("return")
	if isReturn {
		c.advance()
	}
	if !c.cur.Is(";") {
		c.expr()
	}
	c.mustMatch(";")
	if isReturn {
		c.emitf("jmp %s\n", label.Text(c.returnTo))
	}
}
