package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyrange/minicc/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := newLexer([]byte(src))
	var toks []token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.Other && tok.Lexeme == "" {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexerSkipsWhitespaceCommentsAndHashLines(t *testing.T) {
	toks := lexAll(t, "  x // trailing comment\n#include <stdio.h>\ny")
	assert.Equal(t, []token.Token{
		{Kind: token.Ident, Lexeme: "x", Line: 1},
		{Kind: token.Ident, Lexeme: "y", Line: 3},
	}, toks)
}

func TestLexerResolvesLoneSlash(t *testing.T) {
	toks := lexAll(t, "a / b")
	want := []string{"a", "/", "b"}
	for i, w := range want {
		assert.Equal(t, w, toks[i].Lexeme)
	}
}

func TestLexerIdentVsIntVsOperators(t *testing.T) {
	toks := lexAll(t, "foo123 42 == != >= < ++ -- || &&")
	assert.Equal(t, token.Ident, toks[0].Kind)
	assert.Equal(t, "foo123", toks[0].Lexeme)
	assert.Equal(t, token.Int, toks[1].Kind)
	assert.Equal(t, "42", toks[1].Lexeme)
	ops := []string{"==", "!=", ">=", "<", "++", "--", "||", "&&"}
	for i, op := range ops {
		assert.Equal(t, op, toks[2+i].Lexeme)
	}
}

func TestLexerDoubleBangIsTwoTokens(t *testing.T) {
	toks := lexAll(t, "!!x")
	assert.Equal(t, []string{"!", "!", "x"}, []string{toks[0].Lexeme, toks[1].Lexeme, toks[2].Lexeme})
}

func TestLexerCharAndStringLiterals(t *testing.T) {
	toks := lexAll(t, `'a' '\n' "hi" "a\"b"`)
	assert.Equal(t, token.Char, toks[0].Kind)
	assert.Equal(t, `'a'`, toks[0].Lexeme)
	assert.Equal(t, `'\n'`, toks[1].Lexeme)
	assert.Equal(t, token.Str, toks[2].Kind)
	assert.Equal(t, `"hi"`, toks[2].Lexeme)
	assert.Equal(t, `"a\"b"`, toks[3].Lexeme)
}

func TestLexerIdempotentOnCommentFreeSource(t *testing.T) {
	src := "int main ( ) { return 0 ; }"
	first := lexAll(t, src)
	second := lexAll(t, src)
	assert.Equal(t, first, second)
}
