// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package expr

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"github.com/AleutianAI/symcall/pkg/validation"
)

// Security limits for untrusted expression text.
const (
	// MaxExpressionLength caps input size to prevent memory exhaustion.
	MaxExpressionLength = 4096

	// MaxNestingDepth caps call nesting to bound parser recursion.
	MaxNestingDepth = 32

	// MaxCallArgs caps the argument count of a single call.
	MaxCallArgs = 256
)

// Sentinel errors for parsing.
var (
	// ErrParse indicates malformed expression text.
	ErrParse = errors.New("malformed expression")
)

// Parse builds an expression tree from text.
//
// Description:
//
//	Parses texts of the form "func_predict(a, b, 1.5)": a number, a
//	symbol, or a named call whose arguments are themselves numbers,
//	symbols, or nested calls. Nothing is evaluated; the result is an
//	inert tree. Identifiers are checked with pkg/validation before
//	they become symbol names or registry lookup keys.
//
// Inputs:
//
//	text - The expression text. Leading/trailing whitespace is ignored.
//
// Outputs:
//
//	Expr - The parsed tree
//	error - ErrParse (wrapped with position detail) on malformed input
//
// Thread Safety: Parse is stateless and safe for concurrent use.
func Parse(text string) (Expr, error) {
	if len(text) > MaxExpressionLength {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrParse, MaxExpressionLength)
	}

	p := &parser{input: text}
	p.skipSpace()
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.errorf("unexpected trailing input at offset %d", p.pos)
	}
	return e, nil
}

// parser is a single-use recursive-descent parser.
type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

// parseExpr parses a number, symbol, or call at the current position.
func (p *parser) parseExpr(depth int) (Expr, error) {
	if depth > MaxNestingDepth {
		return nil, p.errorf("call nesting exceeds %d levels", MaxNestingDepth)
	}

	ch, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input at offset %d", p.pos)
	}

	if ch == '-' || ch == '+' || ch == '.' || unicode.IsDigit(rune(ch)) {
		return p.parseNumber()
	}
	if isIdentStart(ch) {
		return p.parseIdentOrCall(depth)
	}
	return nil, p.errorf("unexpected character %q at offset %d", ch, p.pos)
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	if ch, ok := p.peek(); ok && (ch == '-' || ch == '+') {
		p.pos++
	}
	for p.pos < len(p.input) && isNumberByte(p.input[p.pos]) {
		p.pos++
	}
	lit := p.input[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q at offset %d", lit, start)
	}
	return Lit(v), nil
}

func (p *parser) parseIdentOrCall(depth int) (Expr, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	name := p.input[start:p.pos]
	if err := validation.ValidateIdentifier(name); err != nil {
		return nil, p.errorf("bad identifier at offset %d: %v", start, err)
	}

	p.skipSpace()
	if ch, ok := p.peek(); !ok || ch != '(' {
		return Sym(name), nil
	}
	p.pos++ // consume '('

	var args []Expr
	p.skipSpace()
	if ch, ok := p.peek(); ok && ch == ')' {
		p.pos++
		return CallOf(name, args...), nil
	}

	for {
		arg, err := p.parseExpr(depth + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if len(args) > MaxCallArgs {
			return nil, p.errorf("call %q exceeds %d arguments", name, MaxCallArgs)
		}

		p.skipSpace()
		ch, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated call %q", name)
		}
		switch ch {
		case ',':
			p.pos++
			p.skipSpace()
		case ')':
			p.pos++
			return CallOf(name, args...), nil
		default:
			return nil, p.errorf("expected ',' or ')' at offset %d, got %q", p.pos, ch)
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentByte(ch byte) bool {
	return isIdentStart(ch) || ('0' <= ch && ch <= '9')
}

func isNumberByte(ch byte) bool {
	return ch == '.' || ch == 'e' || ch == 'E' || ch == '-' || ch == '+' ||
		('0' <= ch && ch <= '9')
}
