package keyconditionexpr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokName  // #name
	tokValue // :value
	tokComparator
	tokLParen
	tokRParen
	tokComma
	tokAnd
	tokBetween
	tokBeginsWith
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q at offset %d", t.text, t.pos)
}

func lex(expr string) ([]token, error) {
	var toks []token
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '=':
			toks = append(toks, token{tokComparator, "=", i})
			i++
		case r == '<' || r == '>':
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
			} else if r == '<' && i+1 < len(rs) && rs[i+1] == '>' {
				return nil, fmt.Errorf("operator <> is not allowed in key conditions, at offset %d", i)
			}
			toks = append(toks, token{tokComparator, op, i})
			i += len(op)
		case r == '#' || r == ':':
			start := i
			i++
			for i < len(rs) && isIdentRune(rs[i]) {
				i++
			}
			if i == start+1 {
				return nil, fmt.Errorf("empty placeholder at offset %d", start)
			}
			kind := tokName
			if r == ':' {
				kind = tokValue
			}
			toks = append(toks, token{kind, string(rs[start:i]), start})
		case isIdentRune(r):
			start := i
			for i < len(rs) && isIdentRune(rs[i]) {
				i++
			}
			text := string(rs[start:i])
			kind := tokIdent
			switch {
			case strings.EqualFold(text, "AND"):
				kind = tokAnd
			case strings.EqualFold(text, "BETWEEN"):
				kind = tokBetween
			case text == "begins_with":
				kind = tokBeginsWith
			}
			toks = append(toks, token{kind, text, start})
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
