package expr

import (
	"fmt"
	"strings"
)

// ParseError describes a malformed expression. Position is the byte offset of
// the offending token in the expression string.
type ParseError struct {
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Reason)
}

// Parse compiles a boolean tag expression into a Predicate tree.
//
// Grammar (precedence low to high): OR, AND, NOT, parenthesized groups, and
// leaves of the form `name = "value"`, `name != "value"`, `name exists` and
// `name not exists`. Keywords are case-insensitive and therefore not usable
// as tag names; tag names are case-sensitive.
//
// An empty or blank expression is valid and returns a nil Predicate: the
// timeline matches nothing via expression and relies on its explicit links
// and sub-timelines. That is distinct from a *ParseError.
func Parse(input string) (Predicate, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	p := &parser{lex: newLexer(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	predicate, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokenEOF {
		return nil, &ParseError{Position: p.tok.pos, Reason: fmt.Sprintf("unexpected %q after end of expression", p.tok.text)}
	}

	return predicate, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orPredicate{left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andPredicate{left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (Predicate, error) {
	if p.tok.kind == tokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notPredicate{inner: inner}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	switch p.tok.kind {
	case tokenLParen:
		open := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokenRParen {
			return nil, &ParseError{Position: open, Reason: "unbalanced parentheses"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	// A quoted leaf name allows tags spelled like a keyword, e.g. `"not" = "x"`.
	case tokenIdent, tokenString:
		return p.parseLeaf()

	case tokenEOF:
		return nil, &ParseError{Position: p.tok.pos, Reason: "unexpected end of expression"}

	default:
		return nil, &ParseError{Position: p.tok.pos, Reason: fmt.Sprintf("expected tag name or '(', got %q", p.tok.text)}
	}
}

// parseLeaf parses one tag comparison; the current token is the tag name.
func (p *parser) parseLeaf() (Predicate, error) {
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.tok.kind {
	case tokenEquals:
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return equalsPredicate{name: name, value: value}, nil

	case tokenNotEquals:
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return notEqualsPredicate{name: name, value: value}, nil

	case tokenExists:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return existsPredicate{name: name}, nil

	case tokenNot:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokenExists {
			return nil, &ParseError{Position: p.tok.pos, Reason: "expected 'exists' after 'not'"}
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return notExistsPredicate{name: name}, nil

	default:
		return nil, &ParseError{Position: p.tok.pos, Reason: fmt.Sprintf("expected '=', '!=', 'exists' or 'not exists' after tag name %q", name)}
	}
}

// parseValue consumes the operator token and the quoted value after it.
func (p *parser) parseValue() (string, error) {
	operator := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.tok.kind != tokenString {
		return "", &ParseError{Position: p.tok.pos, Reason: fmt.Sprintf("expected quoted string after %q", operator)}
	}
	value := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	return value, nil
}
