package patch

import (
	"fmt"
	"strings"

	"github.com/asivery/qmldiff/internal/diffast"
	"github.com/asivery/qmldiff/internal/errs"
	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

// doRebuild is REBUILD (spec §4.6/§4.9): locate a function, a plain
// assignment, or a property's default value, unpack it into an argument
// list plus a body token stream, run every rebuild sub-instruction
// (LOCATE/INSERT/REMOVE/REPLACE/ARG@ surgery) against that pair in order,
// then re-emit and write the result back.
//
// The rebuild sub-language has no analogue in original_source -- it is
// authored fresh from spec.md's §4.6/§4.9 grammar and §8 S6 worked example.
func (ex *Executor) doRebuild(v diffast.RebuildInstr) error {
	r, err := ex.unambiguousRoot()
	if err != nil {
		return err
	}
	if r.object == nil {
		return errs.New(errs.RebuildError, ex.file, "REBUILD targets an object's children, not an enum", v.Pos(), "")
	}
	child, idx := findRebuildTarget(r.object, v.Target)
	if child == nil {
		return errs.New(errs.RebuildError, ex.file, fmt.Sprintf("REBUILD cannot locate %q", v.Target.Name), v.Pos(), "")
	}
	kind, args, enclosed, body, err := unpackRebuildTarget(child)
	if err != nil {
		return errs.New(errs.RebuildError, ex.file, fmt.Sprintf("REBUILD target %q: %s", v.Target.Name, err), v.Pos(), "")
	}

	st := &rebuildState{kind: kind, args: args, enclosed: enclosed, body: body}
	for _, op := range v.Ops {
		if err := st.apply(op); err != nil {
			return errs.New(errs.RebuildError, ex.file, err.Error(), v.Pos(), "")
		}
	}

	repackTarget(child, st.kind, st.args, st.enclosed, st.body)
	r.object.Children[idx] = child
	return nil
}

// findRebuildTarget locates the function, assignment or property child
// named by sel among root's direct children.
func findRebuildTarget(root *qmlast.Object, sel diffast.NodeSelector) (qmlast.ObjectChild, int) {
	for i, c := range root.Children {
		if c.GetName() == sel.Name {
			switch c.(type) {
			case *qmlast.FunctionChild, *qmlast.AssignmentChild, *qmlast.PropertyChild:
				return c, i
			}
		}
	}
	return nil, -1
}

// rebuildTargetKind distinguishes the three shapes a REBUILD target's value
// can take, so writeback knows whether (and how) to re-wrap an argument
// list around the rebuilt body.
type rebuildTargetKind int

const (
	kindFunction rebuildTargetKind = iota // function name(args) { body }
	kindArrow                             // name: (args) => body | (args) => { body }
	kindPlain                             // name: <opaque token stream>, no argument list
)

// unpackRebuildTarget splits c's value into an argument-name list and a body
// token stream, recognizing a function declaration or an arrow-function-
// shaped assignment/property value; anything else is a plain opaque value
// with no argument list, which ARG@ surgery may not touch.
func unpackRebuildTarget(c qmlast.ObjectChild) (rebuildTargetKind, []string, bool, []qmltoken.Token, error) {
	switch t := c.(type) {
	case *qmlast.FunctionChild:
		args := make([]string, len(t.Params))
		for i, p := range t.Params {
			args[i] = p.Name
		}
		return kindFunction, args, true, t.Body, nil
	case *qmlast.AssignmentChild:
		kind, args, enclosed, body := unpackValueTokens(t.Value)
		return kind, args, enclosed, body, nil
	case *qmlast.PropertyChild:
		if !t.HasDefault {
			return kindPlain, nil, false, nil, fmt.Errorf("property has no default value to rebuild")
		}
		kind, args, enclosed, body := unpackValueTokens(t.DefaultValue)
		return kind, args, enclosed, body, nil
	default:
		return kindPlain, nil, false, nil, fmt.Errorf("child kind %T has no rebuildable token body", c)
	}
}

// unpackValueTokens recognizes an arrow-function-shaped value, `(a, b) =>
// expr` or `(a, b) => { stmts }` (lexed as LParen...RParen, Assign "=",
// Operator ">" since qmllexer never fuses "=>" into one token), splitting it
// into argument names and body. Anything else -- including unterminated
// parens -- is treated as a plain opaque value with no argument list.
func unpackValueTokens(v []qmltoken.Token) (rebuildTargetKind, []string, bool, []qmltoken.Token) {
	if len(v) == 0 || v[0].Type != qmltoken.LParen {
		return kindPlain, nil, false, v
	}
	depth := 0
	var args []string
	closeIdx := -1
	for i := 0; i < len(v); i++ {
		switch v[i].Type {
		case qmltoken.LParen:
			depth++
		case qmltoken.RParen:
			depth--
			if depth == 0 {
				closeIdx = i
			}
		case qmltoken.Identifier:
			if depth == 1 {
				args = append(args, v[i].Literal)
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return kindPlain, nil, false, v
	}
	i := closeIdx + 1
	if i+1 >= len(v) || v[i].Type != qmltoken.Assign || v[i+1].Type != qmltoken.Operator || v[i+1].Literal != ">" {
		return kindPlain, nil, false, v
	}
	rest := v[i+2:]
	if len(rest) > 0 && rest[0].Type == qmltoken.LBrace {
		end := matchingBraceIndex(rest)
		if end < 0 {
			return kindPlain, nil, false, v
		}
		return kindArrow, args, true, rest[1:end]
	}
	return kindArrow, args, false, rest
}

func matchingBraceIndex(toks []qmltoken.Token) int {
	depth := 0
	for i, t := range toks {
		switch t.Type {
		case qmltoken.LBrace:
			depth++
		case qmltoken.RBrace:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// repackTarget writes a rebuilt (args, body) pair back onto c. A
// FunctionChild keeps each surviving argument's original type annotation;
// a plain (non-arrow) value is written back as-is, with no argument list.
func repackTarget(c qmlast.ObjectChild, kind rebuildTargetKind, args []string, enclosed bool, body []qmltoken.Token) {
	switch t := c.(type) {
	case *qmlast.FunctionChild:
		byName := make(map[string]string, len(t.Params))
		for _, p := range t.Params {
			byName[p.Name] = p.Type
		}
		params := make([]qmlast.Param, len(args))
		for i, name := range args {
			params[i] = qmlast.Param{Name: name, Type: byName[name]}
		}
		t.Params = params
		t.Body = body
	case *qmlast.AssignmentChild:
		t.Value = reassembleValue(kind, args, enclosed, body)
	case *qmlast.PropertyChild:
		t.DefaultValue = reassembleValue(kind, args, enclosed, body)
	}
}

func reassembleValue(kind rebuildTargetKind, args []string, enclosed bool, body []qmltoken.Token) []qmltoken.Token {
	if kind != kindArrow {
		return body
	}
	out := []qmltoken.Token{{Type: qmltoken.LParen, Literal: "("}}
	for i, name := range args {
		if i > 0 {
			out = append(out, qmltoken.Token{Type: qmltoken.Comma, Literal: ","})
		}
		out = append(out, qmltoken.Token{Type: qmltoken.Identifier, Literal: name})
	}
	out = append(out, qmltoken.Token{Type: qmltoken.RParen, Literal: ")"})
	out = append(out, qmltoken.Token{Type: qmltoken.Assign, Literal: "="})
	out = append(out, qmltoken.Token{Type: qmltoken.Operator, Literal: ">"})
	if enclosed {
		out = append(out, qmltoken.Token{Type: qmltoken.LBrace, Literal: "{"})
		out = append(out, body...)
		out = append(out, qmltoken.Token{Type: qmltoken.RBrace, Literal: "}"})
	} else {
		out = append(out, body...)
	}
	return out
}

// rebuildState is the mutable (argument list, body token stream) a REBUILD
// block's Ops run against, plus the cursor and last-located span LOCATE/
// LOCATED leave behind for later ops to reference.
type rebuildState struct {
	kind     rebuildTargetKind
	args     []string
	enclosed bool
	body     []qmltoken.Token

	cursor     int
	locatedSet bool
	locStart   int
	locEnd     int
}

func (st *rebuildState) apply(op diffast.RebuildOp) error {
	switch {
	case op.Locate != nil:
		return st.applyLocate(op.Locate)
	case op.Insert != nil:
		return st.applyInsert(op.Insert)
	case op.Remove != nil:
		return st.applyRemove(op.Remove)
	case op.Replace != nil:
		return st.applyReplace(op.Replace)
	case op.ArgEdit != nil:
		return st.applyArgEdit(op.ArgEdit)
	default:
		return fmt.Errorf("REBUILD: empty rebuild instruction")
	}
}

func (st *rebuildState) applyLocate(op *diffast.RebuildLocateOp) error {
	if op.All {
		if op.After {
			st.cursor = len(st.body)
		} else {
			st.cursor = 0
		}
		st.locatedSet = false
		return nil
	}
	start, end, ok := findTokenRun(st.body, op.Tokens, 0)
	if !ok {
		return fmt.Errorf("REBUILD: cannot LOCATE %q", literalsOf(op.Tokens))
	}
	st.locatedSet = true
	st.locStart, st.locEnd = start, end
	if op.After {
		st.cursor = end
	} else {
		st.cursor = start
	}
	return nil
}

func (st *rebuildState) applyInsert(op *diffast.RebuildInsertOp) error {
	st.body = spliceAt(st.body, st.cursor, op.Tokens)
	st.cursor += len(op.Tokens)
	return nil
}

func (st *rebuildState) applyRemove(op *diffast.RebuildRemoveOp) error {
	switch {
	case op.Located:
		if !st.locatedSet {
			return fmt.Errorf("REBUILD: REMOVE LOCATED with nothing located")
		}
		st.body = spliceRange(st.body, st.locStart, st.locEnd, nil)
		st.cursor = st.locStart
		st.locatedSet = false
	case op.UntilEnd:
		st.body = st.body[:st.cursor]
	case op.Until != nil:
		start, _, ok := findTokenRun(st.body, op.Until, st.cursor)
		if !ok {
			return fmt.Errorf("REBUILD: cannot find REMOVE UNTIL target %q", literalsOf(op.Until))
		}
		st.body = spliceRange(st.body, st.cursor, start, nil)
	default:
		start, end, ok := findTokenRun(st.body, op.Tokens, 0)
		if !ok {
			return fmt.Errorf("REBUILD: cannot find REMOVE target %q", literalsOf(op.Tokens))
		}
		st.body = spliceRange(st.body, start, end, nil)
		st.cursor = start
	}
	return nil
}

func (st *rebuildState) applyReplace(op *diffast.RebuildReplaceOp) error {
	if op.Located {
		if !st.locatedSet {
			return fmt.Errorf("REBUILD: REPLACE LOCATED with nothing located")
		}
		st.body = spliceRange(st.body, st.locStart, st.locEnd, op.Tokens)
		st.cursor = st.locStart + len(op.Tokens)
		st.locatedSet = false
		return nil
	}
	limit := len(st.body)
	if op.Until != nil {
		if _, end, ok := findTokenRun(st.body, op.Until, 0); ok {
			limit = end
		}
	}
	from := 0
	replaced := false
	for {
		if from >= limit {
			break
		}
		start, end, ok := findTokenRun(st.body[:limit], op.Match, from)
		if !ok {
			break
		}
		st.body = spliceRange(st.body, start, end, op.Tokens)
		limit += len(op.Tokens) - (end - start)
		from = start + len(op.Tokens)
		replaced = true
	}
	if !replaced {
		return fmt.Errorf("REBUILD: cannot find REPLACE target %q", literalsOf(op.Match))
	}
	return nil
}

func (st *rebuildState) applyArgEdit(op *diffast.RebuildArgEdit) error {
	if st.kind == kindPlain {
		return fmt.Errorf("REBUILD: ARG@ edit requires a function or arrow-shaped target")
	}
	switch op.Op {
	case diffast.RebuildArgInsert:
		if op.Pos < 0 || op.Pos > len(st.args) {
			return fmt.Errorf("REBUILD: ARG@%d is out of range", op.Pos)
		}
		args := make([]string, 0, len(st.args)+1)
		args = append(args, st.args[:op.Pos]...)
		args = append(args, op.Name)
		args = append(args, st.args[op.Pos:]...)
		st.args = args
	case diffast.RebuildArgRemove:
		if op.Pos < 0 || op.Pos >= len(st.args) {
			return fmt.Errorf("REBUILD: ARG@%d is out of range", op.Pos)
		}
		if st.args[op.Pos] != op.Name {
			return fmt.Errorf("REBUILD: ARG@%d is %q, not %q", op.Pos, st.args[op.Pos], op.Name)
		}
		st.args = append(st.args[:op.Pos], st.args[op.Pos+1:]...)
	case diffast.RebuildArgRename:
		if op.Pos < 0 || op.Pos >= len(st.args) {
			return fmt.Errorf("REBUILD: ARG@%d is out of range", op.Pos)
		}
		if st.args[op.Pos] != op.Name {
			return fmt.Errorf("REBUILD: ARG@%d is %q, not %q", op.Pos, st.args[op.Pos], op.Name)
		}
		st.args[op.Pos] = op.NewName
	default:
		return fmt.Errorf("REBUILD: unknown ARG@ edit")
	}
	return nil
}

func spliceAt(body []qmltoken.Token, at int, ins []qmltoken.Token) []qmltoken.Token {
	out := make([]qmltoken.Token, 0, len(body)+len(ins))
	out = append(out, body[:at]...)
	out = append(out, ins...)
	out = append(out, body[at:]...)
	return out
}

func spliceRange(body []qmltoken.Token, start, end int, with []qmltoken.Token) []qmltoken.Token {
	out := make([]qmltoken.Token, 0, len(body)-(end-start)+len(with))
	out = append(out, body[:start]...)
	out = append(out, with...)
	out = append(out, body[end:]...)
	return out
}

// findTokenRun finds the first run in body, at or after from, whose
// literals match pattern's in order.
func findTokenRun(body []qmltoken.Token, pattern []qmltoken.Token, from int) (start, end int, ok bool) {
	if len(pattern) == 0 || from < 0 {
		return 0, 0, false
	}
	for start = from; start+len(pattern) <= len(body); start++ {
		match := true
		for j, p := range pattern {
			if body[start+j].Literal != p.Literal {
				match = false
				break
			}
		}
		if match {
			return start, start + len(pattern), true
		}
	}
	return 0, 0, false
}

func literalsOf(toks []qmltoken.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Literal)
	}
	return sb.String()
}
