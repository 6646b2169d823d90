package expr

import (
	"errors"
	"fmt"
	"strconv"
)

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind   literalKind
	text   string
	number float64
}

type node interface {
	eval(scope) (bool, error)
}

type orNode struct{ left, right node }

type andNode struct{ left, right node }

type notNode struct{ inner node }

type truthyNode struct{ path string }

type compareNode struct {
	path string
	op   tokenKind
	lit  literal
}

type inNode struct {
	path string
	set  []literal
}

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return n, nil
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.match(tokenNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.match(tokenLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := p.take(tokenIdentifier)
	if !ok {
		if p.pos >= len(p.tokens) {
			return nil, errors.New("expr: empty expression")
		}
		return nil, fmt.Errorf("expr: expected identifier, got %q", p.tokens[p.pos].raw)
	}

	if p.match(tokenIn) {
		set, err := p.list()
		if err != nil {
			return nil, err
		}
		return inNode{path: ident.raw, set: set}, nil
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte} {
		if !p.match(op) {
			continue
		}
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		if op != tokenEq && op != tokenNeq && lit.kind != litNumber {
			return nil, fmt.Errorf("expr: ordering comparison on %q needs a number", ident.raw)
		}
		return compareNode{path: ident.raw, op: op, lit: lit}, nil
	}

	return truthyNode{path: ident.raw}, nil
}

func (p *parser) list() ([]literal, error) {
	if !p.match(tokenLBracket) {
		return nil, errors.New("expr: expected '[' after in")
	}
	var set []literal
	if p.match(tokenRBracket) {
		return set, nil
	}
	for {
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		set = append(set, lit)
		if p.match(tokenRBracket) {
			return set, nil
		}
		if !p.match(tokenComma) {
			return nil, errors.New("expr: expected ',' or ']' in list")
		}
	}
}

func (p *parser) literal() (literal, error) {
	if p.pos >= len(p.tokens) {
		return literal{}, errors.New("expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// Bare words compare as strings so enum values need no quoting.
		return literal{kind: litString, text: tok.raw}, nil
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return literal{}, fmt.Errorf("expr: invalid number %q", tok.raw)
		}
		return literal{kind: litNumber, text: tok.raw, number: f}, nil
	case tokenBool:
		return literal{kind: litBool, text: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, text: "null"}, nil
	default:
		return literal{}, fmt.Errorf("expr: expected literal, got %q", tok.raw)
	}
}

func (p *parser) match(kind tokenKind) bool {
	_, ok := p.take(kind)
	return ok
}

func (p *parser) take(kind tokenKind) (token, bool) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != kind {
		return token{}, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}
