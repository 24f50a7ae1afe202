package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokVariable // [name] or [name.attribute]
	tokIdent    // function name
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokComma
	tokLT
	tokGT
	tokLE
	tokGE
	tokEQ
	tokNE
)

type token struct {
	kind tokenKind
	num  float64
	text string // variable name (without brackets) or identifier
	pos  int
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.src[l.pos]
	switch {
	case ch == '+':
		l.pos++
		return token{kind: tokPlus, pos: start}, nil
	case ch == '-':
		l.pos++
		return token{kind: tokMinus, pos: start}, nil
	case ch == '*':
		l.pos++
		return token{kind: tokStar, pos: start}, nil
	case ch == '/':
		l.pos++
		return token{kind: tokSlash, pos: start}, nil
	case ch == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case ch == ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case ch == '<':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '=' {
			l.pos++
			return token{kind: tokLE, pos: start}, nil
		}
		return token{kind: tokLT, pos: start}, nil
	case ch == '>':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '=' {
			l.pos++
			return token{kind: tokGE, pos: start}, nil
		}
		return token{kind: tokGT, pos: start}, nil
	case ch == '=':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokEQ, pos: start}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at offset %d", "=", start)
	case ch == '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokNE, pos: start}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at offset %d", "!", start)
	case ch == '[':
		end := strings.IndexByte(l.src[l.pos:], ']')
		if end < 0 {
			return token{}, fmt.Errorf("unterminated variable reference at offset %d", start)
		}
		name := strings.TrimSpace(l.src[l.pos+1 : l.pos+end])
		if name == "" {
			return token{}, fmt.Errorf("empty variable reference at offset %d", start)
		}
		l.pos += end + 1
		return token{kind: tokVariable, text: name, pos: start}, nil
	case ch >= '0' && ch <= '9' || ch == '.':
		end := l.pos
		for end < len(l.src) && (l.src[end] >= '0' && l.src[end] <= '9' || l.src[end] == '.') {
			end++
		}
		num, err := strconv.ParseFloat(l.src[l.pos:end], 64)
		if err != nil {
			return token{}, fmt.Errorf("malformed number %q at offset %d", l.src[l.pos:end], start)
		}
		l.pos = end
		return token{kind: tokNumber, num: num, pos: start}, nil
	case isIdentStart(ch):
		end := l.pos
		for end < len(l.src) && isIdentPart(l.src[end]) {
			end++
		}
		text := l.src[l.pos:end]
		l.pos = end
		return token{kind: tokIdent, text: text, pos: start}, nil
	default:
		return token{}, fmt.Errorf("unexpected %q at offset %d", string(ch), start)
	}
}

func isIdentStart(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}
