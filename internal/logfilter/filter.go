// Package logfilter validates Cloud Logging filter predicates, the query
// language the telemetry and feedback sinks select entries with. It checks
// syntax only; field names are opaque to this package.
package logfilter

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed filter with the byte offset of the fault.
type SyntaxError struct {
	Offset int
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Detail)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokField
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// Check validates that filter is a well-formed predicate.
func Check(filter string) error {
	_, err := parse(filter)
	return err
}

// Fields returns the distinct field paths the filter compares against, in
// first-appearance order.
func Fields(filter string) ([]string, error) {
	fields, err := parse(filter)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

type parser struct {
	tokens []token
	pos    int
	fields []string
}

func parse(filter string) ([]string, error) {
	if strings.TrimSpace(filter) == "" {
		return nil, &SyntaxError{Offset: 0, Detail: "filter is empty"}
	}
	tokens, err := lex(filter)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if err := p.expr(); err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Offset: tok.offset, Detail: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return p.fields, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// expr parses a sequence of terms joined by AND, OR, or implicit conjunction
// (two adjacent restrictions conjoin, per Cloud Logging semantics).
func (p *parser) expr() error {
	if err := p.term(); err != nil {
		return err
	}
	for {
		switch tok := p.peek(); tok.kind {
		case tokAnd, tokOr:
			p.next()
			after := p.peek()
			if after.kind == tokEOF || after.kind == tokRParen || after.kind == tokAnd || after.kind == tokOr {
				return &SyntaxError{Offset: tok.offset, Detail: fmt.Sprintf("dangling %s", tok.text)}
			}
			if err := p.term(); err != nil {
				return err
			}
		case tokField, tokString, tokNumber, tokLParen, tokNot:
			if err := p.term(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) term() error {
	switch tok := p.peek(); tok.kind {
	case tokNot:
		p.next()
		after := p.peek()
		if after.kind == tokEOF || after.kind == tokRParen {
			return &SyntaxError{Offset: tok.offset, Detail: "dangling NOT"}
		}
		return p.term()
	case tokLParen:
		p.next()
		if p.peek().kind == tokRParen {
			return &SyntaxError{Offset: tok.offset, Detail: "empty parentheses"}
		}
		if err := p.expr(); err != nil {
			return err
		}
		closing := p.next()
		if closing.kind != tokRParen {
			return &SyntaxError{Offset: tok.offset, Detail: "unbalanced parenthesis"}
		}
		return nil
	default:
		return p.restriction()
	}
}

// restriction parses either a comparison (field op value) or a bare term,
// which Cloud Logging treats as a full-text search.
func (p *parser) restriction() error {
	left := p.next()
	switch left.kind {
	case tokField, tokString, tokNumber:
	case tokOp:
		return &SyntaxError{Offset: left.offset, Detail: fmt.Sprintf("comparison %q has no field on its left", left.text)}
	case tokRParen:
		return &SyntaxError{Offset: left.offset, Detail: "unbalanced parenthesis"}
	default:
		return &SyntaxError{Offset: left.offset, Detail: fmt.Sprintf("unexpected %q", left.text)}
	}

	if p.peek().kind != tokOp {
		// Bare term: allowed. A comparison requires a field, a bare term
		// does not.
		return nil
	}

	op := p.next()
	if left.kind != tokField {
		return &SyntaxError{Offset: op.offset, Detail: fmt.Sprintf("left side of %q must be a field path", op.text)}
	}
	right := p.next()
	switch right.kind {
	case tokField, tokString, tokNumber:
		p.fields = append(p.fields, left.text)
		return nil
	default:
		return &SyntaxError{Offset: op.offset, Detail: fmt.Sprintf("comparison %q has no value on its right", op.text)}
	}
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", offset: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", offset: i})
			i++
		case c == '"':
			text, n, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text, offset: i})
			i += n
		case isOpStart(c):
			text, n := lexOp(input, i)
			if text == "" {
				return nil, &SyntaxError{Offset: i, Detail: fmt.Sprintf("unexpected character %q", c)}
			}
			tokens = append(tokens, token{kind: tokOp, text: text, offset: i})
			i += n
		case isPathChar(c):
			text, n, err := lexWord(input, i)
			if err != nil {
				return nil, err
			}
			tok := token{text: text, offset: i}
			switch text {
			case "AND":
				tok.kind = tokAnd
			case "OR":
				tok.kind = tokOr
			case "NOT":
				tok.kind = tokNot
			default:
				if isNumber(text) {
					tok.kind = tokNumber
				} else {
					tok.kind = tokField
				}
			}
			tokens = append(tokens, tok)
			i += n
		default:
			return nil, &SyntaxError{Offset: i, Detail: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return append(tokens, token{kind: tokEOF, offset: len(input)}), nil
}

func lexString(input string, start int) (text string, n int, err error) {
	i := start + 1
	for i < len(input) {
		switch input[i] {
		case '\\':
			if i+1 >= len(input) {
				return "", 0, &SyntaxError{Offset: i, Detail: "truncated escape sequence"}
			}
			i += 2
		case '"':
			return input[start : i+1], i + 1 - start, nil
		default:
			i++
		}
	}
	return "", 0, &SyntaxError{Offset: start, Detail: "unterminated string"}
}

// lexOp recognizes the comparison operators: = != : < <= > >= =~ !~
func lexOp(input string, start int) (string, int) {
	rest := input[start:]
	for _, op := range []string{"<=", ">=", "!=", "=~", "!~", "<", ">", "=", ":"} {
		if strings.HasPrefix(rest, op) {
			return op, len(op)
		}
	}
	return "", 0
}

// lexWord consumes a field path or bare value. Path segments may be quoted,
// as in jsonPayload.attributes."service.name".
func lexWord(input string, start int) (text string, n int, err error) {
	i := start
	for i < len(input) {
		c := input[i]
		if isPathChar(c) {
			i++
			continue
		}
		if c == '"' && i > start && input[i-1] == '.' {
			_, qn, qerr := lexString(input, i)
			if qerr != nil {
				return "", 0, qerr
			}
			i += qn
			continue
		}
		break
	}
	return input[start:i], i - start, nil
}

func isOpStart(c byte) bool {
	return c == '=' || c == '!' || c == ':' || c == '<' || c == '>'
}

func isPathChar(c byte) bool {
	return c == '.' || c == '_' || c == '-' || c == '/' || c == '*' ||
		unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
