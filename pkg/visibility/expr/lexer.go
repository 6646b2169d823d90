package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenIn
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

var operators = []struct {
	text string
	kind tokenKind
}{
	{"==", tokenEq},
	{"!=", tokenNeq},
	{"<=", tokenLte},
	{">=", tokenGte},
	{"&&", tokenAnd},
	{"||", tokenOr},
	{"<", tokenLt},
	{">", tokenGt},
	{"!", tokenNot},
	{"(", tokenLParen},
	{")", tokenRParen},
	{"[", tokenLBracket},
	{"]", tokenRBracket},
	{",", tokenComma},
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("()[],!=<>&|\"'", ch) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

scan:
	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		for _, op := range operators {
			if strings.HasPrefix(input[i:], op.text) {
				tokens = append(tokens, token{kind: op.kind, raw: op.text})
				i += len(op.text)
				continue scan
			}
		}

		switch ch {
		case '=', '&', '|':
			return nil, fmt.Errorf("expr: unexpected %q at offset %d", ch, i)
		case '"', '\'':
			end := i + 1
			for end < len(input) {
				if input[end] == '\\' {
					end += 2
					continue
				}
				if input[end] == ch {
					break
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if ch == '\'' {
				body = strings.ReplaceAll(body, `\'`, `'`)
				body = strings.ReplaceAll(body, `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = end + 1
			continue
		}

		start := i
		for i < len(input) && !isDelimiter(input[i]) {
			i++
		}
		raw := input[start:i]
		switch strings.ToLower(raw) {
		case "true", "false":
			tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
		case "null", "nil":
			tokens = append(tokens, token{kind: tokenNull, raw: "null"})
		case "in":
			tokens = append(tokens, token{kind: tokenIn, raw: "in"})
		default:
			if _, err := strconv.ParseFloat(raw, 64); err == nil {
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			} else {
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}
	return tokens, nil
}
