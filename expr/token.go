package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
	tokenNot
	tokenExists
	tokenEquals
	tokenNotEquals
)

// token is one lexical unit of a boolean tag expression. pos is the byte
// offset of the token's first character in the input.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer splits an expression string into tokens. Whitespace is insignificant;
// keywords (AND, OR, NOT, EXISTS) are case-insensitive; tag names are
// case-sensitive identifiers.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) next() (token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return token{kind: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	switch {
	case ch == '(':
		l.pos++
		return token{kind: tokenLParen, text: "(", pos: start}, nil
	case ch == ')':
		l.pos++
		return token{kind: tokenRParen, text: ")", pos: start}, nil
	case ch == '=':
		l.pos++
		return token{kind: tokenEquals, text: "=", pos: start}, nil
	case ch == '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokenNotEquals, text: "!=", pos: start}, nil
		}
		return token{}, &ParseError{Position: start, Reason: "unknown operator '!'"}
	case ch == '"':
		return l.lexString()
	case isIdentStart(ch):
		return l.lexIdent(), nil
	default:
		return token{}, &ParseError{Position: start, Reason: "unexpected character " + string(ch)}
	}
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(ch) {
			return
		}
		l.pos += size
	}
}

// lexString scans a quoted value with \", \\, \n and \t escapes.
func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote

	var value strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '"':
			l.pos++
			return token{kind: tokenString, text: value.String(), pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return token{}, &ParseError{Position: start, Reason: "unterminated string"}
			}
			esc := l.input[l.pos+1]
			switch esc {
			case '"':
				value.WriteByte('"')
			case '\\':
				value.WriteByte('\\')
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			default:
				return token{}, &ParseError{Position: l.pos, Reason: "unknown escape '\\" + string(esc) + "'"}
			}
			l.pos += 2
		default:
			value.WriteByte(ch)
			l.pos++
		}
	}

	return token{}, &ParseError{Position: start, Reason: "unterminated string"}
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.input) {
		ch, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentPart(ch) {
			break
		}
		l.pos += size
	}

	text := l.input[start:l.pos]
	switch {
	case strings.EqualFold(text, "AND"):
		return token{kind: tokenAnd, text: text, pos: start}
	case strings.EqualFold(text, "OR"):
		return token{kind: tokenOr, text: text, pos: start}
	case strings.EqualFold(text, "NOT"):
		return token{kind: tokenNot, text: text, pos: start}
	case strings.EqualFold(text, "EXISTS"):
		return token{kind: tokenExists, text: text, pos: start}
	default:
		return token{kind: tokenIdent, text: text, pos: start}
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-'
}
