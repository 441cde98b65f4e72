// Package exprparse turns user-entered bound values such as "2pi", "pi/2" or
// "0.75" into numbers. Expressions are evaluated by a small arithmetic parser;
// nothing in the input is ever executed.
package exprparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ErrSyntax is returned by Eval for input outside the accepted grammar.
var ErrSyntax = errors.New("exprparse: syntax error")

// maxDepth bounds parenthesis nesting so hostile input cannot exhaust the stack.
const maxDepth = 64

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokPi
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	num  float64
	pos  int
}

// lex splits s into tokens. "pi" and "π" both become tokPi.
func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == 'π':
			toks = append(toks, token{kind: tokPi, pos: i})
			i += size
		case r == 'p' && i+1 < len(s) && s[i+1] == 'i':
			toks = append(toks, token{kind: tokPi, pos: i})
			i += 2
		case r == '+':
			toks = append(toks, token{kind: tokPlus, pos: i})
			i++
		case r == '-':
			toks = append(toks, token{kind: tokMinus, pos: i})
			i++
		case r == '*':
			toks = append(toks, token{kind: tokStar, pos: i})
			i++
		case r == '/':
			toks = append(toks, token{kind: tokSlash, pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case isDigit(r) || r == '.':
			n := scanNumber(s[i:])
			if n == 0 {
				return nil, fmt.Errorf("%w: bad number at offset %d", ErrSyntax, i)
			}
			v, err := strconv.ParseFloat(s[i:i+n], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, s[i:i+n])
			}
			toks = append(toks, token{kind: tokNum, num: v, pos: i})
			i += n
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumber returns the length of the unsigned decimal numeral at the start
// of s (digits, optional fraction, optional exponent), or 0 if there is none.
func scanNumber(s string) int {
	i := 0
	digits := 0
	for i < len(s) && isDigit(rune(s[i])) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(rune(s[i])) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(rune(s[k])) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

type parser struct {
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// Eval evaluates an arithmetic expression over decimal numbers, pi, + - * /,
// unary signs and parentheses. A number directly followed by pi multiplies
// it ("2pi", "1.5 π"). Division follows IEEE rules, so 1/0 is +Inf.
func Eval(expr string) (float64, error) {
	toks, err := lex(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, fmt.Errorf("%w: unexpected token at offset %d", ErrSyntax, t.pos)
	}
	return v, nil
}

// expr = term { ("+" | "-") term }
func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v += rhs
		case tokMinus:
			p.next()
			rhs, err := p.term()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// term = unary { ("*" | "/") unary }
func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case tokSlash:
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// unary = ("+" | "-") unary | primary
func (p *parser) unary() (float64, error) {
	switch p.peek().kind {
	case tokPlus, tokMinus:
		if p.depth >= maxDepth {
			return 0, fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
		}
		p.depth++
		defer func() { p.depth-- }()
		neg := p.next().kind == tokMinus
		v, err := p.unary()
		if neg {
			v = -v
		}
		return v, err
	}
	return p.primary()
}

// primary = number [pi] | pi | "(" expr ")"
func (p *parser) primary() (float64, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		if p.peek().kind == tokPi {
			p.next()
			return t.num * math.Pi, nil
		}
		return t.num, nil
	case tokPi:
		return math.Pi, nil
	case tokLParen:
		if p.depth >= maxDepth {
			return 0, fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
		}
		p.depth++
		v, err := p.expr()
		p.depth--
		if err != nil {
			return 0, err
		}
		if p.next().kind != tokRParen {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	default:
		return 0, fmt.Errorf("%w: unexpected token at offset %d", ErrSyntax, t.pos)
	}
}
