// Package lexer turns C-subset source text into a pull-based stream of
// tokens, reporting lexical diagnostics as it goes.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/theSherwood/wacc/internal/diag"
	"github.com/theSherwood/wacc/internal/token"
)

// Lexer is a pull-based token source over a single source file.
type Lexer struct {
	file   string
	source string
	pos    int
	line   int
	col    int
	diags  *diag.List
}

// New constructs a Lexer over source, reporting diagnostics into diags.
func New(file, source string, diags *diag.List) *Lexer {
	return &Lexer{file: file, source: source, line: 1, col: 1, diags: diags}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.source) {
		return 0
	}
	return l.source[l.pos+offset]
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) && c < utf8.RuneSelf
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

// skipTrivia consumes whitespace and // line comments until it reaches a
// token start or EOF.
func (l *Lexer) skipTrivia() {
	for {
		for l.pos < len(l.source) && isSpace(l.peek()) {
			l.advance()
		}
		if l.peek() == '/' && l.peekAt(1) == '/' {
			for l.pos < len(l.source) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		return
	}
}

func (l *Lexer) report(id int, message, suggestion string, line, col int) {
	if l.diags == nil {
		return
	}
	l.diags.Append(diag.Diagnostic{
		ID:         id,
		Severity:   diag.Lexical,
		Location:   diag.Location{File: l.file, Line: line, Column: col},
		Message:    message,
		Suggestion: suggestion,
		Context:    diag.SourceLine(l.source, line),
	})
}

// Next returns the next token, advancing the cursor. It returns an EOF
// token forever once the source is exhausted.
func (l *Lexer) Next() token.Token {
	l.skipTrivia()

	line, col := l.line, l.col
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Line: line, Column: col}
	}

	start := l.pos
	c := l.advance()

	simple := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Lexeme: l.source[start:l.pos], Line: line, Column: col}
	}

	switch {
	case c == '(':
		return simple(token.LParen)
	case c == ')':
		return simple(token.RParen)
	case c == '{':
		return simple(token.LBrace)
	case c == '}':
		return simple(token.RBrace)
	case c == ';':
		return simple(token.Semicolon)
	case c == '+':
		return simple(token.Plus)
	case c == '-':
		return simple(token.Minus)
	case c == '*':
		return simple(token.Star)
	case c == '/':
		return simple(token.Slash)
	case c == '%':
		return simple(token.Percent)
	case c == '~':
		return simple(token.Tilde)
	case c == '?':
		return simple(token.Question)
	case c == ':':
		return simple(token.Colon)
	case c == '<':
		if l.peek() == '=' {
			l.advance()
			return simple(token.LtEq)
		}
		return simple(token.Lt)
	case c == '>':
		if l.peek() == '=' {
			l.advance()
			return simple(token.GtEq)
		}
		return simple(token.Gt)
	case c == '!':
		if l.peek() == '=' {
			l.advance()
			return simple(token.NotEq)
		}
		return simple(token.Bang)
	case c == '=':
		if l.peek() == '=' {
			l.advance()
			return simple(token.Eq)
		}
		return simple(token.Assign)
	case c == '&':
		if l.peek() == '&' {
			l.advance()
			return simple(token.AndAnd)
		}
		l.report(diag.LexInvalidCharacter, "unexpected character '&'", "use '&&' for logical AND", line, col)
		return token.Token{Kind: token.ILLEGAL, Lexeme: "&", Line: line, Column: col}
	case c == '|':
		if l.peek() == '|' {
			l.advance()
			return simple(token.OrOr)
		}
		l.report(diag.LexInvalidCharacter, "unexpected character '|'", "use '||' for logical OR", line, col)
		return token.Token{Kind: token.ILLEGAL, Lexeme: "|", Line: line, Column: col}
	case isIdentStart(c):
		for l.pos < len(l.source) && isIdentChar(l.peek()) {
			l.advance()
		}
		lexeme := l.source[start:l.pos]
		kind := token.Identifier
		if kw, ok := token.Keywords[lexeme]; ok {
			kind = kw
		}
		return token.Token{Kind: kind, Lexeme: lexeme, Line: line, Column: col}
	case isDigit(c):
		for l.pos < len(l.source) && isDigit(l.peek()) {
			l.advance()
		}
		return token.Token{Kind: token.IntLiteral, Lexeme: l.source[start:l.pos], Line: line, Column: col}
	default:
		l.report(diag.LexInvalidCharacter, fmt.Sprintf("unexpected character %q", c), "", line, col)
		return token.Token{Kind: token.ILLEGAL, Lexeme: l.source[start:l.pos], Line: line, Column: col}
	}
}
