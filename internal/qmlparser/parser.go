// Package qmlparser is a recursive-descent parser from qmltoken.Tokens to a
// qmlast.Tree.
//
// Grounded on the teacher's internal/parser for its error-collection and
// position-tracking idiom (Errors() []*errs.Error, cur/peek token buffering,
// save/restore backtracking) and on the original parser/qml/parser.rs for
// QML's actual grammar (build_delimeted_name, parse_object's per-keyword
// dispatch, read_value's termination rule for opaque expression bodies).
// Unlike the teacher's expression grammar, QML has no Pratt-precedence
// machinery to port: assignment values and function bodies are captured as
// raw token slices, never parsed into an expression tree (spec §1/§3).
package qmlparser

import (
	"fmt"

	"github.com/asivery/qmldiff/internal/errs"
	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmllexer"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

type tokenSource interface {
	Next() qmltoken.Token
}

type Parser struct {
	lex    tokenSource
	source string
	file   string

	cur  qmltoken.Token
	peek qmltoken.Token

	errors []*errs.Error
}

// New builds a Parser over source text, lexing it with qmllexer (opts are
// passed to the lexer). file is used only for diagnostics.
func New(source, file string, opts ...qmllexer.Option) *Parser {
	p := &Parser{source: source, file: file, lex: qmllexer.New(source, opts...)}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) Errors() []*errs.Error { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) errorf(pos qmltoken.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, errs.New(errs.ParseError, p.file, fmt.Sprintf(format, args...), toErrPos(pos), p.source))
}

func toErrPos(t qmltoken.Token) errs.Position {
	return errs.Position{Line: t.Pos.Line, Column: t.Pos.Column, Offset: t.Pos.Offset}
}

func (p *Parser) curIs(t qmltoken.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t qmltoken.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t qmltoken.Type) (qmltoken.Token, bool) {
	if !p.curIs(t) {
		p.errorf(p.cur, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
		return p.cur, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

// Parse consumes the whole input and returns the resulting Tree. Parsing
// continues past recoverable errors (skipping the offending token) so that a single malformed object doesn't hide every other error in
// the file, matching the teacher parser's error-collection philosophy.
func (p *Parser) Parse() qmlast.Tree {
	var tree qmlast.Tree
	for !p.curIs(qmltoken.EOF) {
		switch {
		case p.curIs(qmltoken.Import):
			tree = append(tree, p.parseImport())
		case p.curIs(qmltoken.Pragma):
			tree = append(tree, p.parsePragma())
		case p.curIs(qmltoken.Comment):
			p.advance()
		default:
			if obj := p.parseObjectFromName(); obj != nil {
				tree = append(tree, &qmlast.ObjectElement{Object: obj})
			} else {
				p.advance() // avoid an infinite loop on unrecoverable input
			}
		}
	}
	return tree
}

// parseImport handles `import Name[.Name...] [Version] [as Alias]` and the
// path-literal form `import "./File.js" [as Alias]`.
func (p *Parser) parseImport() *qmlast.Import {
	tok := p.cur
	p.advance()
	imp := &qmlast.Import{Token: tok}
	if p.curIs(qmltoken.String) {
		imp.Path = p.cur.Literal
		p.advance()
	} else {
		imp.Path = p.parseDottedName()
	}
	if p.curIs(qmltoken.Number) {
		imp.Version = p.cur.Literal
		p.advance()
	}
	if p.curIs(qmltoken.Identifier) && p.cur.Literal == "as" {
		p.advance()
		if id, ok := p.expect(qmltoken.Identifier); ok {
			imp.As = id.Literal
		}
	}
	return imp
}

// parsePragma reads `pragma Name [arg arg ...]`. Pragma and import
// statements are the one place QML's grammar is still line-oriented (they
// carry no terminating symbol), so args are bounded by staying on the
// pragma keyword's source line rather than by a token-type lookahead.
func (p *Parser) parsePragma() *qmlast.Pragma {
	tok := p.cur
	line := tok.Pos.Line
	p.advance()
	pragma := &qmlast.Pragma{Token: tok}
	if id, ok := p.expect(qmltoken.Identifier); ok {
		pragma.Name = id.Literal
	}
	for p.cur.Pos.Line == line && (p.curIs(qmltoken.Identifier) || p.curIs(qmltoken.Number) || p.curIs(qmltoken.String)) {
		pragma.Args = append(pragma.Args, p.cur.Literal)
		p.advance()
	}
	return pragma
}

// parseDottedName reads Name(.Name)* used for import paths and type names
// such as "QtQuick.Controls.Button", grounded on build_delimeted_name.
func (p *Parser) parseDottedName() string {
	name := p.cur.Literal
	p.advance()
	for p.curIs(qmltoken.Dot) {
		p.advance()
		name += "." + p.cur.Literal
		p.advance()
	}
	return name
}

// parseObjectFromName parses `TypeName { ...children... }` starting at the
// type name token.
func (p *Parser) parseObjectFromName() *qmlast.Object {
	if !p.curIs(qmltoken.Identifier) {
		p.errorf(p.cur, "expected an object type name, got %s", p.cur.Type)
		return nil
	}
	tok := p.cur
	name := p.parseDottedName()
	obj := &qmlast.Object{Token: tok, Name: name, FullName: name}
	if _, ok := p.expect(qmltoken.LBrace); !ok {
		return obj
	}
	for !p.curIs(qmltoken.RBrace) && !p.curIs(qmltoken.EOF) {
		child := p.parseObjectChild()
		if child != nil {
			obj.Children = append(obj.Children, child)
		}
	}
	p.expect(qmltoken.RBrace)
	return obj
}

func (p *Parser) parseObjectChild() qmlast.ObjectChild {
	switch {
	case p.curIs(qmltoken.Comment):
		p.advance()
		return nil
	case p.curIs(qmltoken.Signal):
		return p.parseSignal()
	case p.curIs(qmltoken.Function):
		return p.parseFunction()
	case p.curIs(qmltoken.Enum):
		return p.parseEnum()
	case p.curIs(qmltoken.Component):
		return p.parseComponent()
	case p.curIs(qmltoken.Default), p.curIs(qmltoken.Readonly), p.curIs(qmltoken.Required), p.curIs(qmltoken.Property):
		return p.parseProperty()
	case p.curIs(qmltoken.Identifier):
		return p.parseAssignmentOrNested()
	default:
		p.errorf(p.cur, "unexpected token %s (%q) inside object body", p.cur.Type, p.cur.Literal)
		p.advance()
		return nil
	}
}

func (p *Parser) parseSignal() *qmlast.SignalChild {
	tok := p.cur
	p.advance()
	name := p.cur.Literal
	p.advance()
	sig := &qmlast.SignalChild{Token: tok, Name: name}
	if p.curIs(qmltoken.LParen) {
		p.advance()
		for !p.curIs(qmltoken.RParen) && !p.curIs(qmltoken.EOF) {
			param := qmlast.Param{}
			first := p.cur.Literal
			p.advance()
			if p.curIs(qmltoken.Identifier) {
				param.Type = first
				param.Name = p.cur.Literal
				p.advance()
			} else {
				param.Name = first
			}
			sig.Params = append(sig.Params, param)
			if p.curIs(qmltoken.Comma) {
				p.advance()
			}
		}
		p.expect(qmltoken.RParen)
	}
	return sig
}

func (p *Parser) parseFunction() *qmlast.FunctionChild {
	tok := p.cur
	p.advance()
	name := p.cur.Literal
	p.advance()
	fn := &qmlast.FunctionChild{Token: tok, Name: name}
	if p.curIs(qmltoken.LParen) {
		p.advance()
		for !p.curIs(qmltoken.RParen) && !p.curIs(qmltoken.EOF) {
			param := qmlast.Param{Name: p.cur.Literal}
			p.advance()
			fn.Params = append(fn.Params, param)
			if p.curIs(qmltoken.Comma) {
				p.advance()
			}
		}
		p.expect(qmltoken.RParen)
	}
	if p.curIs(qmltoken.LBrace) {
		fn.Body = p.captureBalanced(qmltoken.LBrace, qmltoken.RBrace)
	}
	return fn
}

func (p *Parser) parseEnum() *qmlast.EnumChild {
	tok := p.cur
	p.advance()
	name := p.cur.Literal
	p.advance()
	en := &qmlast.EnumChild{Token: tok, Name: name}
	if _, ok := p.expect(qmltoken.LBrace); !ok {
		return en
	}
	for !p.curIs(qmltoken.RBrace) && !p.curIs(qmltoken.EOF) {
		if !p.curIs(qmltoken.Identifier) {
			p.advance()
			continue
		}
		val := qmlast.EnumValue{Name: p.cur.Literal}
		p.advance()
		if p.curIs(qmltoken.Assign) {
			p.advance()
			lit := p.cur.Literal
			val.Value = &lit
			p.advance()
		}
		en.Values = append(en.Values, val)
		if p.curIs(qmltoken.Comma) {
			p.advance()
		}
	}
	p.expect(qmltoken.RBrace)
	return en
}

func (p *Parser) parseComponent() *qmlast.ComponentChild {
	tok := p.cur
	p.advance()
	name := p.cur.Literal
	p.advance()
	comp := &qmlast.ComponentChild{Token: tok, Name: name}
	p.expect(qmltoken.Colon)
	comp.Object = p.parseObjectFromName()
	return comp
}

func (p *Parser) parseProperty() qmlast.ObjectChild {
	tok := p.cur
	var modifiers []string
	for p.curIs(qmltoken.Default) || p.curIs(qmltoken.Readonly) || p.curIs(qmltoken.Required) {
		modifiers = append(modifiers, p.cur.Literal)
		p.advance()
	}
	p.expect(qmltoken.Property)
	typeName := p.parseDottedName()
	name := p.cur.Literal
	p.advance()

	if p.curIs(qmltoken.Colon) {
		p.advance()
		if p.looksLikeObjectLiteral() {
			obj := p.parseObjectFromName()
			return &qmlast.ObjectPropertyChild{Token: tok, Name: name, Type: typeName, Modifiers: modifiers, DefaultValue: obj}
		}
		value := p.captureValueTokens()
		return &qmlast.PropertyChild{Token: tok, Name: name, Type: typeName, Modifiers: modifiers, DefaultValue: value, HasDefault: true}
	}
	return &qmlast.PropertyChild{Token: tok, Name: name, Type: typeName, Modifiers: modifiers}
}

// parseAssignmentOrNested disambiguates `name: value`, `name: Object { }`
// and a bare nested `TypeName { }` child, all of which start with a single
// identifier token.
func (p *Parser) parseAssignmentOrNested() qmlast.ObjectChild {
	tok := p.cur
	name := p.parseDottedName()

	switch {
	case p.curIs(qmltoken.LBrace):
		savedTok := tok
		obj := p.parseObjectBodyOnly(savedTok, name)
		return &qmlast.NestedObjectChild{Object: obj}
	case p.curIs(qmltoken.Colon):
		p.advance()
		if p.looksLikeObjectLiteral() {
			obj := p.parseObjectFromName()
			return &qmlast.ObjectAssignmentChild{Token: tok, Name: name, Value: obj}
		}
		value := p.captureValueTokens()
		return &qmlast.AssignmentChild{Token: tok, Name: name, Value: value}
	default:
		p.errorf(p.cur, "expected ':' or '{' after %q, got %s", name, p.cur.Type)
		return &qmlast.AssignmentChild{Token: tok, Name: name}
	}
}

func (p *Parser) parseObjectBodyOnly(tok qmltoken.Token, name string) *qmlast.Object {
	obj := &qmlast.Object{Token: tok, Name: name, FullName: name}
	p.expect(qmltoken.LBrace)
	for !p.curIs(qmltoken.RBrace) && !p.curIs(qmltoken.EOF) {
		if child := p.parseObjectChild(); child != nil {
			obj.Children = append(obj.Children, child)
		}
	}
	p.expect(qmltoken.RBrace)
	return obj
}

// looksLikeObjectLiteral peeks whether the upcoming tokens are
// `Identifier('.'Identifier)* '{'`, the unambiguous marker for an object
// literal as opposed to an opaque expression (spec §3: the only
// distinguishing rule is "identifier chain immediately followed by a brace").
func (p *Parser) looksLikeObjectLiteral() bool {
	if !p.curIs(qmltoken.Identifier) {
		return false
	}
	if p.peekIs(qmltoken.LBrace) {
		return true
	}
	if p.peekIs(qmltoken.Dot) {
		// A dotted name is not scanned: scanDottedBrace always reports
		// false, so a dotted type name before '{' is not an object literal.
		return p.scanDottedBrace()
	}
	return false
}

// scanDottedBrace always returns false and consumes nothing: only
// `Identifier '{'` is treated as an object literal, and a dotted type name
// before '{' is captured as an opaque value instead.
func (p *Parser) scanDottedBrace() bool {
	type snap struct {
		cur, peek qmltoken.Token
	}
	// Re-lex from here is not available without source offsets on the
	// lexer; instead fall back to treating any dotted identifier chain as
	// a potential object literal only when, after consuming it virtually
	// via repeated peeks through the existing 2-token window, we land on
	// '{'. Since the window is only 2 tokens, do this by actually
	// consuming and recording, then it is the caller's responsibility
	// (parseAssignmentOrNested / parseProperty) to have already consumed
	// the name before calling looksLikeObjectLiteral in the simple case;
	// for the dotted case we conservatively treat it as NOT an object
	// literal unless the very next token is '{', matching common QML
	// usage where object-valued bindings use a single-component type name.
	_ = snap{}
	return false
}

// captureValueTokens captures an opaque expression body: every token up to
// (but not including) the next sibling assignment start or the enclosing
// object's closing brace, tracking bracket/paren/brace depth so a value
// like `Qt.rgba(1, 0, 0, 1)` or `[1, 2, 3]` is captured whole. Grounded on
// the original's read_value/read_until_depth_runs_out state machine.
func (p *Parser) captureValueTokens() []qmltoken.Token {
	var toks []qmltoken.Token
	depth := 0
	for {
		if p.curIs(qmltoken.EOF) {
			break
		}
		if depth == 0 {
			if p.curIs(qmltoken.RBrace) {
				break
			}
			if p.curIs(qmltoken.Semicolon) {
				p.advance()
				break
			}
			// A new sibling binding starts when we see `Identifier ':'` or
			// a bare `Identifier '{'` or a keyword that begins a new
			// child, and we've already captured at least one token.
			if len(toks) > 0 && p.startsNewChild() {
				break
			}
		}
		switch p.cur.Type {
		case qmltoken.LBrace, qmltoken.LParen, qmltoken.LBracket:
			depth++
		case qmltoken.RBrace, qmltoken.RParen, qmltoken.RBracket:
			depth--
		}
		toks = append(toks, p.cur)
		p.advance()
	}
	return toks
}

func (p *Parser) startsNewChild() bool {
	switch p.cur.Type {
	case qmltoken.Signal, qmltoken.Function, qmltoken.Enum, qmltoken.Component,
		qmltoken.Default, qmltoken.Readonly, qmltoken.Required, qmltoken.Property:
		return true
	case qmltoken.Identifier:
		return p.peekIs(qmltoken.Colon) || p.peekIs(qmltoken.LBrace)
	default:
		return false
	}
}

// captureBalanced captures tokens between a matching open/close pair
// (used for function bodies), consuming the delimiters themselves.
func (p *Parser) captureBalanced(open, close qmltoken.Type) []qmltoken.Token {
	p.expect(open)
	var toks []qmltoken.Token
	depth := 1
	for depth > 0 && !p.curIs(qmltoken.EOF) {
		if p.curIs(open) {
			depth++
		} else if p.curIs(close) {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		toks = append(toks, p.cur)
		p.advance()
	}
	return toks
}
