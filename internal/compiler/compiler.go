// Package compiler implements minicc's single-pass translation: lexing,
// recursive-descent declaration/statement/expression parsing, and fasm
// code generation happen interleaved over one forward token stream, with
// no AST and no separate semantic pass. Grounded throughout on
// std/compiler/parser.go's recursive-descent structure and error
// accumulation style (p.errorf, continue-on-error) and
// std/compiler/backend_windows_x64.go's Windows x64 ABI handling
// (shadow space, register marshalling, import-thunk indirection).
package compiler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tinyrange/minicc/internal/label"
	"github.com/tinyrange/minicc/internal/symtab"
	"github.com/tinyrange/minicc/internal/token"
)

// predeclaredExterns are registered as extern functions before any user
// code is parsed, so that unqualified calls to the C runtime resolve
// through the import-thunk indirection like any other extern symbol.
var predeclaredExterns = []string{
	"getchar", "malloc", "calloc", "free", "atoi",
	"fopen", "fclose", "fgetc", "ungetc", "feof",
	"fputs", "fprintf", "puts", "printf",
	"isalpha", "isdigit", "isalnum",
	"strlen", "strcmp", "strncmp", "strchr", "strcpy", "strdup", "sprintf",
}

// stringConst is one entry in the accumulated string-literal table,
// emitted into .rodata at the end of compilation.
type stringConst struct {
	id     int
	lexeme string // raw, with surrounding quotes and undecoded escapes
}

// Compiler bundles every piece of cross-cutting state the original
// mini-c compiler kept as process globals (spec.md §9): the current
// token, both symbol directories, the label counter, the lvalue flag,
// and the extern-call handoff. Verbose is non-nil when the caller wants
// a token-stream trace (CLI -v/--verbose).
type Compiler struct {
	inputName string
	lex       *lexer
	cur       token.Token
	peeked    *token.Token

	sym *symtab.Table
	lbl *label.Gen

	text    bytes.Buffer
	strs    []stringConst
	errs    int
	diagBuf bytes.Buffer

	// lvalue is set by a primary/postfix production that yielded an
	// address and cleared by anything that consumes its operand as a
	// value. currIsExtern is the matching single-slot handoff from an
	// identifier primary to a following call (a process global in the
	// original): call copies it into a local before evaluating any
	// argument, since an argument's own identifiers overwrite it.
	lvalue       bool
	currIsExtern bool

	// returnTo is the label a bare "return" jumps to; valid only while
	// compiling a function body.
	returnTo int

	Verbose func(token.Token)
}

// New returns a Compiler ready to translate src, reporting errors against
// inputName. The predeclared C-runtime externs are registered immediately
// so every later identifier lookup sees them.
func New(inputName string, src []byte) *Compiler {
	c := &Compiler{
		inputName: inputName,
		lex:       newLexer(src),
		sym:       symtab.New(),
		lbl:       label.New(),
	}
	for _, name := range predeclaredExterns {
		c.sym.NewFunc(name, true)
	}
	c.advance()
	return c
}

// Errors returns the number of errors reported so far.
func (c *Compiler) Errors() int { return c.errs }

// Diagnostics returns the accumulated error text, one "file:line: error:
// message" line per call to errorf, in report order.
func (c *Compiler) Diagnostics() string { return c.diagBuf.String() }

// advance consumes the peeked token if one is cached, otherwise lexes a
// fresh one, and makes it current. This is the "single-token window, no
// queue" spec.md §2 describes: peek() below is the one place a second
// token is ever computed ahead of being made current.
func (c *Compiler) advance() {
	if c.peeked != nil {
		c.cur = *c.peeked
		c.peeked = nil
	} else {
		c.cur = c.lex.Next()
	}
	if c.Verbose != nil {
		c.Verbose(c.cur)
	}
}

// peek returns the token after cur without consuming it, caching it so
// the next advance doesn't re-lex it. Used for the "next token by peek
// only" lookahead that decides whether a primary is an lvalue (spec.md
// §4.5.1) and whether an index expression sets lvalue (spec.md §4.5.1).
func (c *Compiler) peek() token.Token {
	if c.peeked == nil {
		t := c.lex.Next()
		c.peeked = &t
	}
	return *c.peeked
}

// curIsKeyword reports whether the current token is the identifier-kind
// keyword s. Keywords (if, while, do, for, return, else, true, false,
// int, char, bool) are plain IDENT tokens per spec.md §4.2 — there is no
// separate keyword Kind — so callers compare lexeme text, never Kind.
func (c *Compiler) curIsKeyword(s string) bool {
	return c.cur.Kind == token.Ident && c.cur.Lexeme == s
}

func (c *Compiler) peekIsAny(lexemes ...string) bool {
	p := c.peek()
	for _, l := range lexemes {
		if p.Is(l) {
			return true
		}
	}
	return false
}

func (c *Compiler) atEOF() bool {
	return c.cur.Kind == token.Other && c.cur.Lexeme == ""
}

// errorf reports an error at the current token's line. format may
// contain a single "%s" placeholder, substituted with the current
// token's lexeme, per spec.md §6's error-format rule.
func (c *Compiler) errorf(format string) {
	msg := strings.ReplaceAll(format, "%s", c.cur.Lexeme)
	fmt.Fprintf(&c.diagBuf, "%s:%d: error: %s\n", c.inputName, c.cur.Line, msg)
	c.errs++
}

// mustMatch requires cur to be the literal lexeme s, reports an error
// otherwise, and always advances: spec.md §7 specifies no recovery
// beyond "consume the token that was expected anyway and continue".
func (c *Compiler) mustMatch(s string) {
	if !c.cur.Is(s) {
		c.errorf(fmt.Sprintf("expected '%s', found '%%s'", s))
	}
	c.advance()
}

// isType reports whether lexeme names one of the three (interchangeable,
// word-sized) type keywords.
func isType(lexeme string) bool {
	switch lexeme {
	case "int", "char", "bool":
		return true
	}
	return false
}

// curIsType reports whether the current token is an IDENT-kind type
// keyword, i.e. decl() is about to start a declaration.
func (c *Compiler) curIsType() bool {
	return c.cur.Kind == token.Ident && isType(c.cur.Lexeme)
}

// emitf writes formatted fasm text to the in-progress .text section.
func (c *Compiler) emitf(format string, args ...any) {
	fmt.Fprintf(&c.text, format, args...)
}

func (c *Compiler) emitLabelDef(id int) {
	c.emitf("%s:\n", label.Text(id))
}
