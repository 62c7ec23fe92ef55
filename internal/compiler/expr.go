package compiler

import (
	"strconv"

	"github.com/tinyrange/minicc/internal/label"
	"github.com/tinyrange/minicc/internal/symtab"
	"github.com/tinyrange/minicc/internal/token"
)

// expr parses and compiles a full expression (precedence level 0,
// assignment) and leaves its value, or its address when c.lvalue is
// true on return, in rax. This is the entry point every other
// production that wants "an expression" calls.
func (c *Compiler) expr() {
	c.assignExpr()
}

// assignExpr is level 0: right-associative "=". Pushes the LHS address,
// asserts lvalue, parses the RHS as an rvalue, then stores.
func (c *Compiler) assignExpr() {
	c.ternaryExpr()
	if c.cur.Is("=") {
		if !c.lvalue {
			c.errorf("cannot assign to non-lvalue near '%s'")
		}
		c.emitf("push rax\n")
		c.advance()
		c.assignExpr() // right-associative
		c.lvalue = false
		c.emitf("pop rbx\n")
		c.emitf("mov [rbx], rax\n")
	}
}

// ternaryExpr is level 1: right-associative "? :", sharing the branch
// emitter with if/else (spec.md §4.6) with isexpr=true.
func (c *Compiler) ternaryExpr() {
	c.logicalExpr()
	if c.cur.Is("?") {
		c.advance()
		c.branch(true)
	}
}

// logicalExpr is level 2: left-associative "||" and "&&", each with
// short-circuit evaluation via a per-operator join label.
func (c *Compiler) logicalExpr() {
	c.relExpr()
	for c.cur.Is("||") || c.cur.Is("&&") {
		isOr := c.cur.Is("||")
		c.advance()
		join := c.lbl.Next()
		if isOr {
			c.emitf("cmp rax, 0\n")
			c.emitf("jne %s\n", label.Text(join))
		} else {
			c.emitf("cmp rax, 0\n")
			c.emitf("je %s\n", label.Text(join))
		}
		c.relExpr()
		c.emitLabelDef(join)
	}
}

// relExpr is level 3: left-associative comparisons, producing a 0/1
// result in rax via setCC.
func (c *Compiler) relExpr() {
	c.addExpr()
	for c.cur.Is("==") || c.cur.Is("!=") || c.cur.Is("<") || c.cur.Is(">=") {
		op := c.cur.Lexeme
		c.advance()
		c.emitf("push rax\n")
		c.addExpr()
		c.emitf("pop rbx\n")
		c.emitf("cmp rbx, rax\n")
		c.emitf("mov rax, 0\n")
		switch op {
		case "==":
			c.emitf("sete al\n")
		case "!=":
			c.emitf("setne al\n")
		case "<":
			c.emitf("setl al\n")
		case ">=":
			c.emitf("setge al\n")
		}
		c.lvalue = false
	}
}

// addExpr is level 4: left-associative + - *.
func (c *Compiler) addExpr() {
	c.unaryExpr()
	for c.cur.Is("+") || c.cur.Is("-") || c.cur.Is("*") {
		op := c.cur.Lexeme
		c.advance()
		c.emitf("push rax\n")
		c.unaryExpr()
		c.emitf("mov rbx, rax\n")
		c.emitf("pop rax\n")
		switch op {
		case "+":
			c.emitf("add rax, rbx\n")
		case "-":
			c.emitf("sub rax, rbx\n")
		case "*":
			c.emitf("imul rax, rbx\n")
		}
		c.lvalue = false
	}
}

// unaryExpr is level 5: unary !, unary -, then postfix (call/index/
// post-increment) applied to a primary. spec.md groups these into one
// level; postfixExpr implements the call/index/++/-- loop.
func (c *Compiler) unaryExpr() {
	switch {
	case c.cur.Is("!"):
		c.advance()
		c.unaryExpr()
		c.emitf("cmp rax, 0\n")
		c.emitf("mov rax, 0\n")
		c.emitf("sete al\n")
		c.lvalue = false
	case c.cur.Is("-"):
		c.advance()
		c.unaryExpr()
		c.emitf("neg rax\n")
		c.lvalue = false
	default:
		c.postfixExpr()
	}
}

// postfixExpr parses one primary and then loops over trailing (), [],
// and post ++/-- per spec.md §4.5.1.
func (c *Compiler) postfixExpr() {
	c.primaryExpr()
	for {
		switch {
		case c.cur.Is("("):
			c.call()
		case c.cur.Is("["):
			c.index()
		case c.cur.Is("++") || c.cur.Is("--"):
			if !c.lvalue {
				c.errorf("cannot increment/decrement a non-lvalue near '%s'")
			}
			op := "add"
			if c.cur.Is("--") {
				op = "sub"
			}
			c.advance()
			c.emitf("mov rbx, rax\n")
			c.emitf("mov rax, [rbx]\n")
			c.emitf("%s qword [rbx], 1\n", op)
			c.lvalue = false
		default:
			return
		}
	}
}

// index compiles a trailing "[ expr ]" against the base address already
// in rax.
func (c *Compiler) index() {
	c.emitf("push rax\n")
	c.advance() // consume '['
	c.expr()
	willBeLvalue := c.peekIsAny("=", "++", "--")
	c.mustMatch("]")
	c.emitf("pop rbx\n")
	if willBeLvalue {
		c.emitf("lea rax, [rbx+rax*8]\n")
		c.lvalue = true
	} else {
		c.emitf("mov rax, [rbx+rax*8]\n")
		c.lvalue = false
	}
}

// primaryExpr compiles true/false, identifiers, literals, and
// parenthesized expressions, per spec.md §4.5.1.
func (c *Compiler) primaryExpr() {
	switch {
	case c.curIsKeyword("true"):
		c.emitf("mov rax, 1\n")
		c.lvalue = false
		c.advance()
	case c.curIsKeyword("false"):
		c.emitf("mov rax, 0\n")
		c.lvalue = false
		c.advance()
	case c.cur.Kind == token.Ident:
		c.identPrimary()
	case c.cur.Kind == token.Int:
		c.emitf("mov rax, %s\n", c.cur.Lexeme)
		c.lvalue = false
		c.advance()
	case c.cur.Kind == token.Char:
		c.emitf("mov rax, %d\n", decodeCharLiteral(c, c.cur.Lexeme))
		c.lvalue = false
		c.advance()
	case c.cur.Kind == token.Str:
		c.strPrimary()
	case c.cur.Is("("):
		c.advance()
		c.expr()
		c.mustMatch(")")
	default:
		c.errorf("expected an expression near '%s'")
		c.advance()
	}
}

// identPrimary resolves an identifier against locals then globals
// (symtab.Table.Resolve already prefers the local, per the corrected
// shadowing rule) and emits the address-or-value load.
func (c *Compiler) identPrimary() {
	name := c.cur.Lexeme
	willBeLvalue := c.peekIsAny("=", "++", "--")
	c.lvalue = willBeLvalue

	kind, idx := c.sym.Resolve(name)
	switch kind {
	case symtab.InLocal:
		loc := c.sym.Locals[idx]
		if willBeLvalue {
			c.emitf("lea rax, [rbp+%d]\n", loc.Offset)
		} else {
			c.emitf("mov rax, [rbp+%d]\n", loc.Offset)
		}
	case symtab.InGlobal:
		g := c.sym.Globals[idx]
		c.currIsExtern = g.IsExtern
		if g.IsFunction || willBeLvalue {
			c.emitf("lea rax, [%s]\n", name)
		} else {
			c.emitf("mov rax, [%s]\n", name)
		}
	default:
		c.errorf("undeclared identifier '%s'")
	}
	c.advance()
}

// strPrimary allocates a string constant label, emitting its address,
// and concatenates any immediately adjacent string literals into one
// constant per spec.md §4.5.1.
func (c *Compiler) strPrimary() {
	lexeme := c.cur.Lexeme
	c.advance()
	for c.cur.Kind == token.Str {
		lexeme = lexeme[:len(lexeme)-1] + c.cur.Lexeme[1:]
		c.advance()
	}
	id := c.lbl.Next()
	c.strs = append(c.strs, stringConst{id: id, lexeme: lexeme})
	c.emitf("lea rax, [%s]\n", label.Text(id))
	c.lvalue = false
}

// decodeCharLiteral returns the integer value of a CHAR token's lexeme
// (quotes included). Plain characters decode to their byte value;
// backslash escapes use the table from spec.md §4.5.1, including real
// two-hex-digit decoding for \x.. (the REDESIGN-FLAG-corrected reading
// of the original's hard-coded 255).
func decodeCharLiteral(c *Compiler, lexeme string) int64 {
	body := lexeme
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	if len(body) == 0 {
		c.errorf("empty character literal")
		return 0
	}
	if body[0] != '\\' {
		return int64(body[0])
	}
	if len(body) < 2 {
		c.errorf("unterminated escape in character literal")
		return 0
	}
	switch body[1] {
	case 'n':
		return 10
	case 'r':
		return 13
	case 't':
		return 9
	case '0':
		return 0
	case '\\':
		return 92
	case '\'':
		return 39
	case 'x':
		if len(body) >= 4 {
			v, err := strconv.ParseInt(body[2:4], 16, 64)
			if err == nil {
				return v
			}
		}
		c.errorf("malformed \\x escape near '%s'")
		return 0
	default:
		c.errorf("unknown escape sequence near '%s'")
		return 0
	}
}

// call compiles a trailing "( args )" call against the callee address
// already in rax, per spec.md §4.5.2. curr_is_extern must be captured
// into a local before any argument is evaluated, since evaluating an
// argument may itself resolve an identifier and overwrite it.
func (c *Compiler) call() {
	isExtern := c.currIsExtern
	c.advance() // consume '('

	c.emitf("sub rsp, 32\n")
	c.emitf("push rax\n")

	argc := 0
	if !c.cur.Is(")") {
		argc = c.argTrampoline()
	}
	c.mustMatch(")")

	regs := []string{"rcx", "rdx", "r8", "r9"}
	for i := 0; i < argc && i < 4; i++ {
		c.emitf("mov %s, qword [rsp+%d]\n", regs[i], 8*i)
	}

	if isExtern {
		c.emitf("mov rax, qword [rsp+%d]\n", 8*argc)
	} else {
		c.emitf("lea rax, [rsp+%d]\n", 8*argc)
	}
	c.emitf("call qword [rax]\n")
	c.emitf("add rsp, %d\n", 8*(argc+1))
	c.emitf("add rsp, 32\n")
	c.lvalue = false
}

// argTrampoline evaluates argument expressions in source order but
// emits them so that at runtime they are pushed in reverse order,
// using the label-chaining technique spec.md §4.5.2 specifies as the
// workaround for the lack of a queue in a single forward pass. Returns
// the argument count.
func (c *Compiler) argTrampoline() int {
	startLabel := c.lbl.Next()
	endLabel := c.lbl.Next()
	prevLabel := endLabel
	c.emitf("jmp %s\n", label.Text(startLabel))

	argc := 0
	for {
		argc++
		blockLabel := c.lbl.Next()
		c.emitLabelDef(blockLabel)
		c.expr()
		c.emitf("push rax\n")
		c.emitf("jmp %s\n", label.Text(prevLabel))
		prevLabel = blockLabel
		if !c.cur.Is(",") {
			break
		}
		c.advance()
	}

	c.emitLabelDef(startLabel)
	c.emitf("jmp %s\n", label.Text(prevLabel))
	c.emitLabelDef(endLabel)
	return argc
}
