package solparse

import (
	"github.com/soligraph/soligraph/pkg/syntax"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenPunct
)

type token struct {
	kind     tokenKind
	text     string
	startOff int
	endOff   int
	start    syntax.Point
	end      syntax.Point
}

// multiCharOps is checked longest-first for maximal munch.
var multiCharOps = []string{
	">>=", "<<=",
	"**", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"<<", ">>", "++", "--", "=>",
}

type lexer struct {
	src  []byte
	off  int
	row  int
	col  int
}

func (l *lexer) point() syntax.Point {
	return syntax.Point{Row: l.row, Column: l.col}
}

func (l *lexer) advance() byte {
	ch := l.src[l.off]
	l.off++
	if ch == '\n' {
		l.row++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) peek(ahead int) byte {
	if l.off+ahead >= len(l.src) {
		return 0
	}
	return l.src[l.off+ahead]
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		ch := l.src[l.off]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			l.advance()
			l.advance()
			for l.off < len(l.src) {
				if l.src[l.off] == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// tokenize scans the whole source. It never fails; unexpected bytes become
// single-character punct tokens.
func tokenize(src []byte) []token {
	l := &lexer{src: src}
	var tokens []token

	for {
		l.skipSpaceAndComments()
		if l.off >= len(l.src) {
			break
		}

		startOff := l.off
		start := l.point()
		ch := l.src[l.off]

		switch {
		case isIdentStart(ch):
			for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
				l.advance()
			}
			tokens = append(tokens, token{
				kind: tokenIdent, text: string(src[startOff:l.off]),
				startOff: startOff, endOff: l.off, start: start, end: l.point(),
			})
		case isDigit(ch):
			for l.off < len(l.src) && (isIdentPart(l.src[l.off]) || l.src[l.off] == '.') {
				l.advance()
			}
			tokens = append(tokens, token{
				kind: tokenNumber, text: string(src[startOff:l.off]),
				startOff: startOff, endOff: l.off, start: start, end: l.point(),
			})
		case ch == '"' || ch == '\'':
			quote := ch
			l.advance()
			for l.off < len(l.src) && l.src[l.off] != quote {
				if l.src[l.off] == '\\' && l.off+1 < len(l.src) {
					l.advance()
				}
				l.advance()
			}
			if l.off < len(l.src) {
				l.advance() // closing quote
			}
			tokens = append(tokens, token{
				kind: tokenString, text: string(src[startOff:l.off]),
				startOff: startOff, endOff: l.off, start: start, end: l.point(),
			})
		default:
			matched := false
			for _, op := range multiCharOps {
				if matchesAt(src, l.off, op) {
					for range op {
						l.advance()
					}
					matched = true
					break
				}
			}
			if !matched {
				l.advance()
			}
			tokens = append(tokens, token{
				kind: tokenPunct, text: string(src[startOff:l.off]),
				startOff: startOff, endOff: l.off, start: start, end: l.point(),
			})
		}
	}

	tokens = append(tokens, token{
		kind: tokenEOF, startOff: len(src), endOff: len(src),
		start: l.point(), end: l.point(),
	})
	return tokens
}

func matchesAt(src []byte, off int, s string) bool {
	if off+len(s) > len(src) {
		return false
	}
	return string(src[off:off+len(s)]) == s
}
