package compiler

import (
	"github.com/tinyrange/minicc/internal/source"
	"github.com/tinyrange/minicc/internal/token"
)

// lexer converts a character source into tokens on demand. Grounded on
// std/compiler/parser.go's Lexer (byte-slice scanning, advance/peek
// helpers), narrowed to mini-c's token classification (spec.md §4.2): no
// keyword table, since keywords are plain IDENT tokens the parser
// recognizes by lexeme text, exactly like the teacher's must_match-style
// callers compare against literal strings for two-char operators.
type lexer struct {
	src *source.Source
}

func newLexer(src []byte) *lexer {
	l := &lexer{src: source.New(src)}
	l.src.Next() // prime the one-character lookahead
	return l
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOpStart(ch byte) bool {
	switch ch {
	case '+', '-', '|', '&', '=', '!', '>', '<':
		return true
	}
	return false
}

// skipWSAndComments discards whitespace, '#' preprocessor lines (treated
// as comments per spec.md §6), and '//' line comments. The '/' branch only
// commits to a comment when a second '/' actually follows; otherwise the
// second character is pushed back and '/' is restored as the current
// character, so the caller sees a lone '/' operator token.
func (l *lexer) skipWSAndComments() {
	for {
		for !l.src.Eof() && isSpace(l.src.Cur) {
			l.src.Next()
		}
		if l.src.Eof() {
			return
		}
		if l.src.Cur == '#' {
			for !l.src.Eof() && l.src.Cur != '\n' {
				l.src.Next()
			}
			continue
		}
		if l.src.Cur == '/' {
			before := l.src.Cur
			l.src.Next()
			if !l.src.Eof() && l.src.Cur == '/' {
				for !l.src.Eof() && l.src.Cur != '\n' {
					l.src.Next()
				}
				continue
			}
			l.src.Unread(before)
			return
		}
		return
	}
}

// Next advances the lexer by one token.
func (l *lexer) Next() token.Token {
	l.skipWSAndComments()
	line := l.src.Line

	if l.src.Eof() {
		return token.Token{Kind: token.Other, Lexeme: "", Line: line}
	}

	ch := l.src.Cur
	switch {
	case isLetter(ch):
		return l.scanIdent(line)
	case isDigit(ch):
		return l.scanInt(line)
	case ch == '\'' || ch == '"':
		return l.scanQuoted(ch, line)
	case isOpStart(ch):
		return l.scanOp(ch, line)
	default:
		l.src.Next()
		return token.Token{Kind: token.Other, Lexeme: string(ch), Line: line}
	}
}

func (l *lexer) scanIdent(line int) token.Token {
	var buf []byte
	for !l.src.Eof() && (isLetter(l.src.Cur) || isDigit(l.src.Cur)) {
		buf = append(buf, l.src.Cur)
		l.src.Next()
	}
	return token.Token{Kind: token.Ident, Lexeme: string(buf), Line: line}
}

func (l *lexer) scanInt(line int) token.Token {
	var buf []byte
	for !l.src.Eof() && isDigit(l.src.Cur) {
		buf = append(buf, l.src.Cur)
		l.src.Next()
	}
	return token.Token{Kind: token.Int, Lexeme: string(buf), Line: line}
}

// scanQuoted handles both ' and " literals: consume until the matching
// delimiter, treating '\' as an unconditional generic escape (the next
// character, whatever it is, is consumed as part of the literal). Both
// delimiters are kept in the lexeme; decoding happens where the literal is
// used (see expr.go).
func (l *lexer) scanQuoted(delim byte, line int) token.Token {
	var buf []byte
	buf = append(buf, delim)
	l.src.Next() // consume opening delimiter
	for !l.src.Eof() && l.src.Cur != delim {
		if l.src.Cur == '\\' {
			buf = append(buf, l.src.Cur)
			l.src.Next()
			if !l.src.Eof() {
				buf = append(buf, l.src.Cur)
				l.src.Next()
			}
			continue
		}
		buf = append(buf, l.src.Cur)
		l.src.Next()
	}
	if !l.src.Eof() {
		buf = append(buf, l.src.Cur) // closing delimiter
		l.src.Next()
	}
	kind := token.Str
	if delim == '\'' {
		kind = token.Char
	}
	return token.Token{Kind: kind, Lexeme: string(buf), Line: line}
}

// scanOp handles the two-char-or-one-char operator set
// + - | & = ! > <. The second character is consumed too when it repeats
// the first (except for '!': "!!" is deliberately not a token) or is '='.
func (l *lexer) scanOp(ch byte, line int) token.Token {
	l.src.Next()
	lex := []byte{ch}
	if !l.src.Eof() {
		nxt := l.src.Cur
		if (nxt == ch && ch != '!') || nxt == '=' {
			lex = append(lex, nxt)
			l.src.Next()
		}
	}
	return token.Token{Kind: token.Other, Lexeme: string(lex), Line: line}
}
