// Package expr parses small arithmetic expressions into reusable trees bound
// to a live variable map.
//
// Grammar, highest precedence first:
//
//	factor     = ("+" | "-") factor | primary [ "^" factor ]
//	primary    = "(" expression ")" | number | function argument | variable
//	argument   = "(" expression ")" | factor
//	term       = factor { ("*" | "/") factor }
//	expression = term { ("+" | "-") term }
//
// Exponentiation is right associative. Unbound variables evaluate to 0.
package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Variables binds names to values. Expressions read the map at evaluation
// time, so mutating it and re-evaluating needs no re-parse.
type Variables map[string]float64

// Set binds name to value
func (v Variables) Set(name string, value float64) {
	v[name] = value
}

// SyntaxError reports the position of the first character the parser could
// not accept.
type SyntaxError struct {
	Expression string
	Position   int
	Char       rune
	Message    string
}

func (e *SyntaxError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("%s at position %d in %q", e.Message, e.Position, e.Expression)
	}
	return fmt.Sprintf("%s %q at position %d in %q", e.Message, e.Char, e.Position, e.Expression)
}

// Expression is a parsed, reusable expression tree
type Expression struct {
	source string
	eval   func() float64
}

// Evaluate computes the expression against the current variable bindings
func (e *Expression) Evaluate() float64 {
	return e.eval()
}

// String returns the source text
func (e *Expression) String() string {
	return e.source
}

// Parser turns source text into expressions using the functions of a registry
type Parser struct {
	registry *Registry
}

// NewParser creates a parser backed by registry. A nil registry gets the
// built-in functions only.
func NewParser(registry *Registry) *Parser {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Parser{registry: registry}
}

// Parse compiles src. A nil vars map is replaced with an empty one, which
// suits constant expressions.
func (p *Parser) Parse(src string, vars Variables) (*Expression, error) {
	if vars == nil {
		vars = Variables{}
	}

	st := &state{
		src:      []rune(src),
		pos:      -1,
		vars:     vars,
		registry: p.registry,
	}
	st.next()

	node, err := st.parseExpression()
	if err != nil {
		return nil, err
	}
	if st.ch != eof {
		return nil, st.errorf("unexpected character")
	}

	return &Expression{source: src, eval: node}, nil
}

// Evaluate parses and evaluates src once
func (p *Parser) Evaluate(src string, vars Variables) (float64, error) {
	e, err := p.Parse(src, vars)
	if err != nil {
		return 0, err
	}
	return e.Evaluate(), nil
}

const eof rune = -1

type node func() float64

type state struct {
	src      []rune
	pos      int
	ch       rune
	vars     Variables
	registry *Registry
}

func (s *state) next() {
	s.pos++
	if s.pos < len(s.src) {
		s.ch = s.src[s.pos]
	} else {
		s.ch = eof
	}
}

func (s *state) eat(want rune) bool {
	for s.ch == ' ' || s.ch == '\t' {
		s.next()
	}
	if s.ch == want {
		s.next()
		return true
	}
	return false
}

func (s *state) errorf(msg string) *SyntaxError {
	err := &SyntaxError{
		Expression: string(s.src),
		Position:   s.pos,
		Message:    msg,
	}
	if s.ch != eof {
		err.Char = s.ch
	}
	return err
}

func (s *state) parseExpression() (node, error) {
	x, err := s.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.eat('+'):
			a := x
			b, err := s.parseTerm()
			if err != nil {
				return nil, err
			}
			x = func() float64 { return a() + b() }
		case s.eat('-'):
			a := x
			b, err := s.parseTerm()
			if err != nil {
				return nil, err
			}
			x = func() float64 { return a() - b() }
		default:
			return x, nil
		}
	}
}

func (s *state) parseTerm() (node, error) {
	x, err := s.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.eat('*'):
			a := x
			b, err := s.parseFactor()
			if err != nil {
				return nil, err
			}
			x = func() float64 { return a() * b() }
		case s.eat('/'):
			a := x
			b, err := s.parseFactor()
			if err != nil {
				return nil, err
			}
			x = func() float64 { return a() / b() }
		default:
			return x, nil
		}
	}
}

func (s *state) parseFactor() (node, error) {
	if s.eat('+') {
		return s.parseFactor()
	}
	if s.eat('-') {
		a, err := s.parseFactor()
		if err != nil {
			return nil, err
		}
		return func() float64 { return -a() }, nil
	}

	x, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}

	if s.eat('^') {
		base := x
		exponent, err := s.parseFactor()
		if err != nil {
			return nil, err
		}
		x = func() float64 { return math.Pow(base(), exponent()) }
	}

	return x, nil
}

func (s *state) parsePrimary() (node, error) {
	switch {
	case s.eat('('):
		x, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if !s.eat(')') {
			return nil, s.errorf("missing closing parenthesis")
		}
		return x, nil

	case isDigit(s.ch) || s.ch == '.':
		start := s.pos
		for isDigit(s.ch) || s.ch == '.' {
			s.next()
		}
		text := string(s.src[start:s.pos])
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &SyntaxError{
				Expression: string(s.src),
				Position:   start,
				Message:    fmt.Sprintf("malformed number %q", text),
			}
		}
		if isLetter(s.ch) {
			return nil, s.errorf("unexpected character")
		}
		return func() float64 { return value }, nil

	case isLetter(s.ch):
		start := s.pos
		for isLetter(s.ch) || isDigit(s.ch) {
			s.next()
		}
		name := string(s.src[start:s.pos])

		if fn, ok := s.registry.Lookup(name); ok {
			arg, err := s.parseArgument()
			if err != nil {
				return nil, err
			}
			return func() float64 { return fn(arg()) }, nil
		}

		vars := s.vars
		return func() float64 { return vars[name] }, nil

	case s.ch == eof:
		return nil, s.errorf("unexpected end of expression")

	default:
		return nil, s.errorf("unexpected character")
	}
}

// parseArgument reads a function argument. A parenthesized argument binds
// tighter than a following "^", so sin(30)^2 squares the sine.
func (s *state) parseArgument() (node, error) {
	if s.eat('(') {
		x, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		if !s.eat(')') {
			return nil, s.errorf("missing closing parenthesis")
		}
		return x, nil
	}
	return s.parseFactor()
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
