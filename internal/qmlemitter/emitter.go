// Package qmlemitter pretty-prints a qmlast.Tree back to QML source text.
//
// Grounded on the original parser/qml/emitter.rs: an intermediate list of
// indented lines (Line{Text, Indent}) that gets flattened to a single
// string at the end, four-space indent steps, and one emission rule per
// ObjectChild kind mirroring parse_object's dispatch in reverse.
package qmlemitter

import (
	"strconv"
	"strings"

	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

const indentWidth = 4

type line struct {
	text   string
	indent int
}

// Emit renders a full parsed file.
func Emit(tree qmlast.Tree) string {
	var lines []line
	for _, el := range tree {
		lines = append(lines, emitElement(el, 0)...)
	}
	return flatten(lines)
}

// EmitObject renders a single Object on its own, outside any file tree.
func EmitObject(o *qmlast.Object) string {
	return flatten(emitObject(o, 0))
}

// EmitTokenStream flattens a raw opaque token slice back to source text,
// spacing tokens the way the original's emit_simple_token_stream does:
// space-separated, except no space before a following '.', ',', ';', ')',
// ']', or after a preceding '.', '(' or '['.
func EmitTokenStream(toks []qmltoken.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpaceBefore(toks[i-1], t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func needsSpaceBefore(prev, next qmltoken.Token) bool {
	switch next.Type {
	case qmltoken.Dot, qmltoken.Comma, qmltoken.Semicolon, qmltoken.RParen, qmltoken.RBracket:
		return false
	}
	switch prev.Type {
	case qmltoken.Dot, qmltoken.LParen, qmltoken.LBracket:
		return false
	}
	return true
}

func emitElement(el qmlast.TreeElement, indent int) []line {
	switch t := el.(type) {
	case *qmlast.Import:
		return []line{{text: emitImport(t), indent: indent}}
	case *qmlast.Pragma:
		return []line{{text: emitPragma(t), indent: indent}}
	case *qmlast.ObjectElement:
		return emitObject(t.Object, indent)
	default:
		return nil
	}
}

func emitImport(i *qmlast.Import) string {
	var sb strings.Builder
	sb.WriteString("import ")
	if strings.Contains(i.Path, "/") || strings.HasSuffix(i.Path, ".js") {
		sb.WriteString(strconv.Quote(i.Path))
	} else {
		sb.WriteString(i.Path)
	}
	if i.Version != "" {
		sb.WriteByte(' ')
		sb.WriteString(i.Version)
	}
	if i.As != "" {
		sb.WriteString(" as ")
		sb.WriteString(i.As)
	}
	return sb.String()
}

func emitPragma(p *qmlast.Pragma) string {
	parts := append([]string{"pragma", p.Name}, p.Args...)
	return strings.Join(parts, " ")
}

func emitObject(o *qmlast.Object, indent int) []line {
	lines := []line{{text: o.Name + " {", indent: indent}}
	for _, c := range o.Children {
		lines = append(lines, emitChild(c, indent+1)...)
	}
	lines = append(lines, line{text: "}", indent: indent})
	return lines
}

func emitChild(c qmlast.ObjectChild, indent int) []line {
	switch t := c.(type) {
	case *qmlast.SignalChild:
		return []line{{text: emitSignal(t), indent: indent}}
	case *qmlast.PropertyChild:
		return emitProperty(t, indent)
	case *qmlast.ObjectPropertyChild:
		return emitObjectProperty(t, indent)
	case *qmlast.AssignmentChild:
		return []line{{text: t.Name + ": " + EmitTokenStream(t.Value), indent: indent}}
	case *qmlast.ObjectAssignmentChild:
		return emitNamedObject(t.Name+": ", t.Value, indent)
	case *qmlast.FunctionChild:
		return emitFunction(t, indent)
	case *qmlast.NestedObjectChild:
		return emitObject(t.Object, indent)
	case *qmlast.EnumChild:
		return emitEnum(t, indent)
	case *qmlast.ComponentChild:
		return emitNamedObject("component "+t.Name+": ", t.Object, indent)
	default:
		return nil
	}
}

func emitSignal(s *qmlast.SignalChild) string {
	return "signal " + s.Name + "(" + joinParams(s.Params) + ")"
}

func joinParams(params []qmlast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Type != "" {
			parts[i] = p.Type + " " + p.Name
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, ", ")
}

func emitPropertyPrologue(modifiers []string, typeName, name string) string {
	var sb strings.Builder
	for _, m := range modifiers {
		sb.WriteString(m)
		sb.WriteByte(' ')
	}
	sb.WriteString("property ")
	sb.WriteString(typeName)
	sb.WriteByte(' ')
	sb.WriteString(name)
	return sb.String()
}

func emitProperty(p *qmlast.PropertyChild, indent int) []line {
	prologue := emitPropertyPrologue(p.Modifiers, p.Type, p.Name)
	if !p.HasDefault {
		return []line{{text: prologue, indent: indent}}
	}
	return []line{{text: prologue + ": " + EmitTokenStream(p.DefaultValue), indent: indent}}
}

func emitObjectProperty(p *qmlast.ObjectPropertyChild, indent int) []line {
	prologue := emitPropertyPrologue(p.Modifiers, p.Type, p.Name)
	return emitNamedObject(prologue+": ", p.DefaultValue, indent)
}

// emitNamedObject emits `prefixObjectName {` on one line, the object's
// children indented beneath, and the closing brace -- used for both
// ObjectAssignmentChild and ObjectPropertyChild/ComponentChild values.
func emitNamedObject(prefix string, o *qmlast.Object, indent int) []line {
	lines := []line{{text: prefix + o.Name + " {", indent: indent}}
	for _, c := range o.Children {
		lines = append(lines, emitChild(c, indent+1)...)
	}
	lines = append(lines, line{text: "}", indent: indent})
	return lines
}

func emitFunction(f *qmlast.FunctionChild, indent int) []line {
	header := "function " + f.Name + "(" + joinParams(f.Params) + ") {"
	body := EmitTokenStream(f.Body)
	if body == "" {
		return []line{{text: header, indent: indent}, {text: "}", indent: indent}}
	}
	return []line{
		{text: header, indent: indent},
		{text: body, indent: indent + 1},
		{text: "}", indent: indent},
	}
}

func emitEnum(e *qmlast.EnumChild, indent int) []line {
	lines := []line{{text: "enum " + e.Name + " {", indent: indent}}
	for i, v := range e.Values {
		text := v.Name
		if v.Value != nil {
			text += " = " + *v.Value
		}
		if i != len(e.Values)-1 {
			text += ","
		}
		lines = append(lines, line{text: text, indent: indent + 1})
	}
	lines = append(lines, line{text: "}", indent: indent})
	return lines
}

func flatten(lines []line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat(" ", l.indent*indentWidth))
		sb.WriteString(l.text)
	}
	sb.WriteByte('\n')
	return sb.String()
}
