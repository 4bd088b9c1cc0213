// Package diffparser parses the diff DSL (spec §4) into a diffast.Document,
// grounded on the original parser/diff/parser.rs's recursive-descent
// structure (read_node/read_tree/read_next_instruction/parse), generalized
// from its DWScript-class selector grammar to QML object selectors and
// extended with VERSIONS, REBUILD, REPLACE...WITH TEMPLATE and MULTIPLE,
// none of which exist in the pruned original source.
package diffparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asivery/qmldiff/internal/diffast"
	"github.com/asivery/qmldiff/internal/difflexer"
	"github.com/asivery/qmldiff/internal/difftoken"
	"github.com/asivery/qmldiff/internal/errs"
	"github.com/asivery/qmldiff/internal/qmllexer"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

// Parser turns diff-DSL source into a Document. It owns a hashtab resolver
// so `[[hash]]` references resolve the same way the QML side does.
type Parser struct {
	lex      *difflexer.Lexer
	source   string
	file     string
	resolver difflexer.Resolver

	cur, peek difftoken.Token
	errors    []*errs.Error
}

func New(source, file string, resolver difflexer.Resolver) *Parser {
	if resolver == nil {
		resolver = nopResolver{}
	}
	p := &Parser{lex: difflexer.New(source, resolver), source: source, file: file, resolver: resolver}
	p.advance()
	p.advance()
	return p
}

type nopResolver struct{}

func (nopResolver) Resolve(uint64) (string, bool) { return "", false }

func (p *Parser) Errors() []*errs.Error { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Next()
	for _, e := range p.lex.Errors() {
		p.errors = append(p.errors, e)
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, errs.New(errs.ParseError, p.file, fmt.Sprintf(format, args...), p.cur.Pos, p.source))
}

func (p *Parser) skipNewlines() {
	for p.cur.Type == difftoken.NewLine || p.cur.Type == difftoken.Comment {
		p.advance()
	}
}

func (p *Parser) curIsKeyword(kw difftoken.Keyword) bool {
	return p.cur.Type == difftoken.Keyword && p.cur.Keyword == kw
}

func (p *Parser) expectKeyword(kw difftoken.Keyword) bool {
	if !p.curIsKeyword(kw) {
		p.errorf("expected %s, got %s %q", kw, p.cur.Type, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectIdentifier() (string, bool) {
	if p.cur.Type != difftoken.Identifier && p.cur.Type != difftoken.String {
		p.errorf("expected identifier, got %s %q", p.cur.Type, p.cur.Literal)
		return "", false
	}
	lit := p.cur.Literal
	p.advance()
	return lit, true
}

func (p *Parser) expectSymbol(sym string) bool {
	if p.cur.Type != difftoken.Symbol || p.cur.Literal != sym {
		p.errorf("expected %q, got %s %q", sym, p.cur.Type, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

func (p *Parser) atLineEnd() bool {
	return p.cur.Type == difftoken.NewLine || p.cur.Type == difftoken.EOF
}

func (p *Parser) endOfLine() {
	for !p.atLineEnd() {
		p.errorf("unexpected trailing token %s %q", p.cur.Type, p.cur.Literal)
		p.advance()
	}
	if p.cur.Type == difftoken.NewLine {
		p.advance()
	}
}

// Parse consumes the whole token stream and returns a Document.
func (p *Parser) Parse() *diffast.Document {
	doc := &diffast.Document{}
	p.skipNewlines()
	for p.cur.Type != difftoken.EOF {
		if p.curIsKeyword(difftoken.AFFECT) {
			doc.Changes = append(doc.Changes, p.parseChange())
		} else {
			p.errorf("expected AFFECT, got %s %q", p.cur.Type, p.cur.Literal)
			p.advance()
		}
		p.skipNewlines()
	}
	return doc
}

func (p *Parser) parseChange() diffast.Change {
	p.advance() // AFFECT
	var ch diffast.Change
	for {
		target, ok := p.expectIdentifier()
		if !ok {
			break
		}
		ch.Targets = append(ch.Targets, target)
		if p.cur.Type == difftoken.Symbol && p.cur.Literal == "," {
			p.advance()
			continue
		}
		break
	}
	if p.curIsKeyword(difftoken.VERSIONS) {
		p.advance()
		guard := &diffast.VersionsGuard{}
		for !p.atLineEnd() {
			v, ok := p.expectIdentifier()
			if !ok {
				break
			}
			guard.Allowed = append(guard.Allowed, v)
		}
		ch.Versions = guard
	}
	p.endOfLine()
	p.skipNewlines()

	for p.cur.Type != difftoken.EOF && !p.curIsKeyword(difftoken.AFFECT) {
		instr := p.parseInstruction()
		if instr != nil {
			ch.Instructions = append(ch.Instructions, instr)
		}
		p.skipNewlines()
	}
	return ch
}

func (p *Parser) parseInstruction() diffast.Instruction {
	pos := p.cur.Pos
	if p.cur.Type == difftoken.Stream {
		return p.parseStream(pos)
	}
	if p.cur.Type != difftoken.Keyword {
		p.errorf("expected instruction keyword, got %s %q", p.cur.Type, p.cur.Literal)
		p.advance()
		return nil
	}
	switch p.cur.Keyword {
	case difftoken.TRAVERSE:
		p.advance()
		loc := p.parseLocation()
		p.endOfLine()
		return diffast.TraverseInstr{Base: diffast.NewBase(pos), Selector: loc}
	case difftoken.END:
		p.advance()
		p.expectKeyword(difftoken.TRAVERSE)
		p.endOfLine()
		return diffast.EndTraverseInstr{Base: diffast.NewBase(pos)}
	case difftoken.ASSERT:
		p.advance()
		sel := p.parseSelector()
		p.endOfLine()
		return diffast.AssertInstr{Base: diffast.NewBase(pos), Selector: sel}
	case difftoken.LOCATE:
		p.advance()
		instr := diffast.LocateInstr{Base: diffast.NewBase(pos)}
		switch {
		case p.curIsKeyword(difftoken.AFTER):
			instr.After = true
			p.advance()
		case p.curIsKeyword(difftoken.BEFORE):
			p.advance()
		default:
			p.errorf("expected BEFORE or AFTER after LOCATE, got %s %q", p.cur.Type, p.cur.Literal)
		}
		if p.curIsKeyword(difftoken.ALL) {
			instr.All = true
			p.advance()
		} else {
			instr.Tree = p.parseLocation()
		}
		p.endOfLine()
		return instr
	case difftoken.INSERT:
		return p.parseInsert(pos)
	case difftoken.REPLACE:
		return p.parseReplace(pos)
	case difftoken.REMOVE:
		p.advance()
		all := false
		if p.curIsKeyword(difftoken.ALL) {
			all = true
			p.advance()
		}
		sel := p.parseSelector()
		p.endOfLine()
		return diffast.RemoveInstr{Base: diffast.NewBase(pos), Selector: sel, All: all}
	case difftoken.RENAME:
		p.advance()
		sel := p.parseSelector()
		p.expectKeyword(difftoken.TO)
		newName, _ := p.expectIdentifier()
		p.endOfLine()
		return diffast.RenameInstr{Base: diffast.NewBase(pos), Selector: sel, NewName: newName}
	case difftoken.IMPORT:
		p.advance()
		path, _ := p.expectIdentifier()
		instr := diffast.ImportInstr{Base: diffast.NewBase(pos), Path: path}
		if p.cur.Type == difftoken.Identifier || p.cur.Type == difftoken.String {
			if looksLikeVersion(p.cur.Literal) {
				instr.Version = p.cur.Literal
				p.advance()
			}
		}
		if p.cur.Type == difftoken.Identifier && p.cur.Literal == "AS" {
			p.advance()
			instr.As, _ = p.expectIdentifier()
		}
		p.endOfLine()
		return instr
	case difftoken.TEMPLATE:
		return p.parseTemplateDecl(pos)
	case difftoken.SLOT:
		return p.parseSlotDecl(pos)
	case difftoken.LOAD:
		p.advance()
		path, _ := p.expectIdentifier()
		p.endOfLine()
		return diffast.LoadInstr{Base: diffast.NewBase(pos), Path: path}
	case difftoken.REBUILD:
		return p.parseRebuild(pos)
	case difftoken.MULTIPLE:
		p.advance()
		p.endOfLine()
		return diffast.AllowMultipleInstr{Base: diffast.NewBase(pos)}
	default:
		p.errorf("unexpected instruction keyword %s", p.cur.Keyword)
		p.advance()
		return nil
	}
}

func looksLikeVersion(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '.' || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// parseSelector reads spec §4.6's NodeSelector grammar: `Name [':' named]
// ['#' id] (('[' ('!' prop | '.' prop ('=' | '~') (id|string)) ']')*)`.
// difflexer hands `.prop` through as a single Identifier whose literal
// keeps the leading dot (isIdentChar treats '.' as an identifier rune), so
// the bracket-clause branch below strips it back off.
func (p *Parser) parseSelector() diffast.NodeSelector {
	name, _ := p.expectIdentifier()
	sel := diffast.NodeSelector{Name: name}
	if p.curIsSymbol(":") {
		p.advance()
		sel.Named, _ = p.expectIdentifier()
	}
	if p.curIsSymbol("#") {
		p.advance()
		id, _ := p.expectIdentifier()
		sel.Props = append(sel.Props, diffast.PropRequirement{Key: "id", Kind: diffast.PropEquals, Value: id})
	}
	for p.curIsSymbol("[") {
		p.advance()
		if p.curIsSymbol("!") {
			p.advance()
			key, _ := p.expectIdentifier()
			sel.Props = append(sel.Props, diffast.PropRequirement{Key: key, Kind: diffast.PropExists})
		} else {
			key, _ := p.expectIdentifier()
			key = strings.TrimPrefix(key, ".")
			kind := diffast.PropEquals
			switch {
			case p.curIsSymbol("="):
				p.advance()
			case p.curIsSymbol("~"):
				kind = diffast.PropContains
				p.advance()
			default:
				p.errorf("expected '=' or '~' in property requirement, got %s %q", p.cur.Type, p.cur.Literal)
			}
			val := p.expectPropValue()
			sel.Props = append(sel.Props, diffast.PropRequirement{Key: key, Kind: kind, Value: val})
		}
		p.expectSymbol("]")
	}
	return sel
}

func (p *Parser) curIsSymbol(sym string) bool {
	return p.cur.Type == difftoken.Symbol && p.cur.Literal == sym
}

// expectPropValue reads a bracket clause's right-hand side, a bare
// identifier or a quoted string (difflexer's String literal already
// includes its surrounding quote characters).
func (p *Parser) expectPropValue() string {
	if p.cur.Type == difftoken.String {
		v := unquote(p.cur.Literal)
		p.advance()
		return v
	}
	v, _ := p.expectIdentifier()
	return v
}

func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// parseLocation reads a `>`-chained sequence of selectors.
func (p *Parser) parseLocation() diffast.Location {
	var loc diffast.Location
	loc = append(loc, p.parseSelector())
	for p.cur.Type == difftoken.Symbol && p.cur.Literal == ">" {
		p.advance()
		loc = append(loc, p.parseSelector())
	}
	return loc
}

func (p *Parser) parseInsert(pos errs.Position) diffast.Instruction {
	p.advance() // INSERT
	instr := diffast.InsertInstr{Base: diffast.NewBase(pos)}
	switch {
	case p.curIsKeyword(difftoken.ALL):
		instr.Position = diffast.InsertAll
		p.advance()
	case p.curIsKeyword(difftoken.AFTER):
		instr.Position = diffast.InsertAfter
		p.advance()
		sel := p.parseSelector()
		instr.Anchor = &sel
	case p.curIsKeyword(difftoken.BEFORE):
		instr.Position = diffast.InsertBefore
		p.advance()
		sel := p.parseSelector()
		instr.Anchor = &sel
	}
	instr.Body = p.parseInsertable()
	p.endOfLine()
	return instr
}

func (p *Parser) parseReplace(pos errs.Position) diffast.Instruction {
	p.advance() // REPLACE
	sel := p.parseSelector()
	p.expectKeyword(difftoken.WITH)
	body := p.parseInsertable()
	p.endOfLine()
	return diffast.ReplaceInstr{Base: diffast.NewBase(pos), Selector: sel, Body: body}
}

// parseInsertable reads spec §4.6's Insertable grammar: `TEMPLATE <name> {
// qml }` (an invocation supplying `key: value` substitutions for the
// declaration's `~{key}~` placeholders), `SLOT <name>`, or a bare `{ qml }`
// literal body -- the object name lives inside the braces, not before them
// (`INSERT { B { v: 1 } }`, not `INSERT B { v: 1 }`).
func (p *Parser) parseInsertable() diffast.Insertable {
	switch {
	case p.curIsKeyword(difftoken.TEMPLATE):
		p.advance()
		name, _ := p.expectIdentifier()
		ins := diffast.Insertable{TemplateName: name}
		if p.cur.Type != difftoken.QMLCode {
			p.errorf("expected { ... } template invocation body, got %s %q", p.cur.Type, p.cur.Literal)
			return ins
		}
		args, err := p.parseTemplateArgs(p.cur.Literal)
		if err != nil {
			p.errorf("invalid template invocation body: %s", err)
		}
		ins.TemplateArgs = args
		p.advance()
		return ins
	case p.curIsKeyword(difftoken.SLOT):
		p.advance()
		name, _ := p.expectIdentifier()
		return diffast.Insertable{SlotName: name}
	case p.cur.Type == difftoken.QMLCode:
		toks := p.lexQMLBody(p.cur.Literal)
		p.advance()
		return diffast.Insertable{Code: toks}
	default:
		p.errorf("expected TEMPLATE, SLOT or a { ... } QML body, got %s %q", p.cur.Type, p.cur.Literal)
		return diffast.Insertable{}
	}
}

type adaptResolver struct{ r difflexer.Resolver }

func (a adaptResolver) Resolve(h uint64) (string, bool) { return a.r.Resolve(h) }

// lexQMLBody tokenizes a QMLCode token's raw captured text with the QML
// lexer -- the diff parser itself turns an embedded `{ ... }` body into QML
// tokens (spec §4.5); difflexer only captures its extent.
func (p *Parser) lexQMLBody(literal string) []qmltoken.Token {
	lex := qmllexer.New(literal, qmllexer.WithHashResolver(adaptResolver{p.resolver}))
	var toks []qmltoken.Token
	for {
		tok := lex.Next()
		if tok.Type == qmltoken.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

// parseTemplateArgs reads a template invocation body's `key: value; ...`
// pairs (not a formal-parameter paren list -- the declaration names its own
// substitution points via `~{key}~`).
func (p *Parser) parseTemplateArgs(literal string) ([]diffast.TemplateArg, error) {
	lex := qmllexer.New(literal, qmllexer.WithHashResolver(adaptResolver{p.resolver}))
	var args []diffast.TemplateArg
	for {
		tok := lex.Next()
		if tok.Type == qmltoken.EOF {
			break
		}
		if tok.Type == qmltoken.Semicolon {
			continue
		}
		if tok.Type != qmltoken.Identifier {
			return nil, fmt.Errorf("expected a key, got %s %q", tok.Type, tok.Literal)
		}
		key := tok.Literal
		colon := lex.Next()
		if colon.Type != qmltoken.Colon {
			return nil, fmt.Errorf("expected ':' after %q, got %s %q", key, colon.Type, colon.Literal)
		}
		var value []qmltoken.Token
		for {
			v := lex.Next()
			if v.Type == qmltoken.EOF || v.Type == qmltoken.Semicolon {
				break
			}
			value = append(value, v)
		}
		args = append(args, diffast.TemplateArg{Key: key, Value: value})
	}
	return args, nil
}

// parseTemplateDecl reads the single-statement top-level declaration
// `TEMPLATE <name> { qml }` -- there is no formal parameter list and no END
// TEMPLATE terminator, since the QMLCode token already closes on its own
// matching brace.
func (p *Parser) parseTemplateDecl(pos errs.Position) diffast.Instruction {
	p.advance() // TEMPLATE
	name, _ := p.expectIdentifier()
	var body []qmltoken.Token
	if p.cur.Type == difftoken.QMLCode {
		body = p.lexQMLBody(p.cur.Literal)
		p.advance()
	} else {
		p.errorf("expected { ... } template body, got %s %q", p.cur.Type, p.cur.Literal)
	}
	p.endOfLine()
	return diffast.TemplateDeclInstr{Base: diffast.NewBase(pos), Name: name, Body: body}
}

// parseSlotDecl reads `SLOT <name> <instructions> END SLOT`: the same
// instruction grammar as an AFFECT body, in practice a run of INSERTs whose
// Insertable bodies the slot accumulates (spec §5).
func (p *Parser) parseSlotDecl(pos errs.Position) diffast.Instruction {
	p.advance() // SLOT
	name, _ := p.expectIdentifier()
	p.endOfLine()
	p.skipNewlines()
	var body []diffast.Instruction
	for p.cur.Type != difftoken.EOF && !p.curIsKeyword(difftoken.END) {
		instr := p.parseInstruction()
		if instr != nil {
			body = append(body, instr)
		}
		p.skipNewlines()
	}
	p.expectKeyword(difftoken.END)
	p.expectKeyword(difftoken.SLOT)
	p.endOfLine()
	return diffast.SlotInstr{Base: diffast.NewBase(pos), Name: name, Body: body}
}

// parseRebuild reads `REBUILD <NodeSelector> <rebuild-instructions> END
// REBUILD` (spec §4.6/§4.9). The target is an ordinary NodeSelector naming
// the function/assignment/property to rebuild by its own name; the body is
// the rebuild sub-language's own instruction set, distinct from (and
// smaller than) the outer diff DSL.
func (p *Parser) parseRebuild(pos errs.Position) diffast.Instruction {
	p.advance() // REBUILD
	target := p.parseSelector()
	p.endOfLine()
	p.skipNewlines()
	instr := diffast.RebuildInstr{Base: diffast.NewBase(pos), Target: target}
	for p.cur.Type != difftoken.EOF && !p.curIsKeyword(difftoken.END) {
		if op, ok := p.parseRebuildOp(); ok {
			instr.Ops = append(instr.Ops, op)
		}
		p.skipNewlines()
	}
	p.expectKeyword(difftoken.END)
	p.expectKeyword(difftoken.REBUILD)
	p.endOfLine()
	return instr
}

// parseRebuildOp reads one line of the rebuild sub-language: LOCATE,
// INSERT, REMOVE, REPLACE (all token-stream-based) or the ARG@<pos>
// argument-list surgery forms of INSERT/REMOVE/RENAME.
func (p *Parser) parseRebuildOp() (diffast.RebuildOp, bool) {
	if p.cur.Type != difftoken.Keyword {
		p.errorf("expected a rebuild instruction, got %s %q", p.cur.Type, p.cur.Literal)
		p.advance()
		return diffast.RebuildOp{}, false
	}
	switch p.cur.Keyword {
	case difftoken.LOCATE:
		p.advance()
		op := diffast.RebuildLocateOp{}
		switch {
		case p.curIsKeyword(difftoken.AFTER):
			op.After = true
			p.advance()
		case p.curIsKeyword(difftoken.BEFORE):
			p.advance()
		default:
			p.errorf("expected BEFORE or AFTER after LOCATE, got %s %q", p.cur.Type, p.cur.Literal)
		}
		if p.curIsKeyword(difftoken.ALL) {
			op.All = true
			p.advance()
		} else {
			op.Tokens = p.parseRebuildTokens()
		}
		p.endOfLine()
		return diffast.RebuildOp{Locate: &op}, true
	case difftoken.INSERT:
		p.advance()
		if argPos, ok := p.parseArgPos(); ok {
			name, _ := p.expectIdentifier()
			p.endOfLine()
			return diffast.RebuildOp{ArgEdit: &diffast.RebuildArgEdit{Op: diffast.RebuildArgInsert, Pos: argPos, Name: name}}, true
		}
		toks := p.parseRebuildTokens()
		p.endOfLine()
		return diffast.RebuildOp{Insert: &diffast.RebuildInsertOp{Tokens: toks}}, true
	case difftoken.REMOVE:
		p.advance()
		if argPos, ok := p.parseArgPos(); ok {
			name, _ := p.expectIdentifier()
			p.endOfLine()
			return diffast.RebuildOp{ArgEdit: &diffast.RebuildArgEdit{Op: diffast.RebuildArgRemove, Pos: argPos, Name: name}}, true
		}
		op := diffast.RebuildRemoveOp{}
		switch {
		case p.curIsKeyword(difftoken.LOCATED):
			op.Located = true
			p.advance()
		case p.curIsKeyword(difftoken.UNTIL):
			p.advance()
			if p.curIsKeyword(difftoken.END) {
				op.UntilEnd = true
				p.advance()
			} else {
				op.Until = p.parseRebuildTokens()
			}
		default:
			op.Tokens = p.parseRebuildTokens()
		}
		p.endOfLine()
		return diffast.RebuildOp{Remove: &op}, true
	case difftoken.REPLACE:
		p.advance()
		op := diffast.RebuildReplaceOp{}
		if p.curIsKeyword(difftoken.LOCATED) {
			op.Located = true
			p.advance()
		} else {
			op.Match = p.parseRebuildTokens()
		}
		if p.curIsKeyword(difftoken.UNTIL) {
			p.advance()
			op.Until = p.parseRebuildTokens()
		}
		p.expectKeyword(difftoken.WITH)
		op.Tokens = p.parseRebuildTokens()
		p.endOfLine()
		return diffast.RebuildOp{Replace: &op}, true
	case difftoken.RENAME:
		p.advance()
		argPos, ok := p.parseArgPos()
		if !ok {
			p.errorf("expected ARG@<pos> after RENAME in a rebuild block")
			p.endOfLine()
			return diffast.RebuildOp{}, false
		}
		old, _ := p.expectIdentifier()
		p.expectKeyword(difftoken.TO)
		newName, _ := p.expectIdentifier()
		p.endOfLine()
		return diffast.RebuildOp{ArgEdit: &diffast.RebuildArgEdit{Op: diffast.RebuildArgRename, Pos: argPos, Name: old, NewName: newName}}, true
	default:
		p.errorf("unexpected rebuild instruction keyword %s", p.cur.Keyword)
		p.advance()
		return diffast.RebuildOp{}, false
	}
}

// parseArgPos recognizes an `ARG@<pos>` token -- difflexer lexes it as a
// single Identifier since '@' is an identifier rune there (a small lexer
// extension made solely to express this form; see difflexer's isIdentChar).
func (p *Parser) parseArgPos() (int, bool) {
	if p.cur.Type != difftoken.Identifier || !strings.HasPrefix(p.cur.Literal, "ARG@") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(p.cur.Literal, "ARG@"))
	if err != nil {
		p.errorf("invalid ARG@ position %q", p.cur.Literal)
		p.advance()
		return 0, true
	}
	p.advance()
	return n, true
}

// parseRebuildTokens reads a rebuild sub-instruction's token-stream operand.
// A braced `{ ... }` body is lexed with the full QML lexer, for content
// that needs operators the diff lexer's restricted symbol set can't
// express; otherwise a bare run of diff-DSL tokens up to end of line is
// converted 1:1 into synthetic QML tokens, which covers the common case of
// matching or inserting a handful of bare words (spec §8 S6's `LOCATE
// BEFORE return`).
func (p *Parser) parseRebuildTokens() []qmltoken.Token {
	if p.cur.Type == difftoken.QMLCode {
		toks := p.lexQMLBody(p.cur.Literal)
		p.advance()
		return toks
	}
	var toks []qmltoken.Token
	for !p.atLineEnd() {
		toks = append(toks, bareToken(p.cur))
		p.advance()
	}
	return toks
}

func bareToken(t difftoken.Token) qmltoken.Token {
	if t.Type == difftoken.String {
		return qmltoken.Token{Type: qmltoken.String, Literal: unquote(t.Literal), Pos: t.Pos}
	}
	return qmltoken.Token{Type: qmltoken.Identifier, Literal: t.Literal, Pos: t.Pos}
}

// parseStream reads the single Stream token difflexer already assembled for
// `STREAM <delim>...<delim>` (the delimiter is stashed in Keyword); the
// lexer fuses the keyword and its payload into one token since the payload
// is raw, unlexed text.
func (p *Parser) parseStream(pos errs.Position) diffast.Instruction {
	var delim rune
	if len(p.cur.Keyword) > 0 {
		delim = []rune(string(p.cur.Keyword))[0]
	}
	instr := diffast.StreamInstr{Base: diffast.NewBase(pos), Delim: delim, Payload: p.cur.Literal}
	p.advance()
	p.endOfLine()
	return instr
}
