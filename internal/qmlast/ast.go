// Package qmlast defines the QML object-tree AST (spec §3).
//
// Grounded on the teacher's internal/ast package for its idiom -- small
// marker-method interfaces per node kind rather than a closed Rust-style sum
// type -- and on the original parser's data types (parser/qml/parser.rs:
// Object/ObjectChild/SignalChild/PropertyChild/AssignmentChild/
// ObjectAssignmentChild/FunctionChild/EnumChild/ComponentDefinition).
//
// Unparsed expression bodies (property defaults, function bodies, free
// statements) are kept as raw qmltoken.Token slices rather than a further
// parsed expression tree, per spec §1/§3: QML expression grammar is treated
// as opaque and only re-emitted, never evaluated.
package qmlast

import "github.com/asivery/qmldiff/internal/qmltoken"

// Node is implemented by every AST type that can report its own position.
type Node interface {
	Pos() qmltoken.Token
}

// TreeElement is a top-level element of a parsed QML file: an import
// statement, a pragma statement, or a root object.
type TreeElement interface {
	Node
	isTreeElement()
}

// Tree is an entire parsed QML file.
type Tree []TreeElement

type Import struct {
	Token   qmltoken.Token
	Path    string // e.g. "QtQuick" or "./MyThing.js"
	Version string // e.g. "2.15", empty if omitted
	As      string // the "as Foo" alias, empty if omitted
}

func (i *Import) isTreeElement() {}
func (i *Import) Pos() qmltoken.Token { return i.Token }

type Pragma struct {
	Token qmltoken.Token
	Name  string
	Args  []string
}

func (p *Pragma) isTreeElement() {}
func (p *Pragma) Pos() qmltoken.Token { return p.Token }

// ObjectElement wraps a root Object so it can appear directly in a Tree.
type ObjectElement struct {
	Object *Object
}

func (o *ObjectElement) isTreeElement() {}
func (o *ObjectElement) Pos() qmltoken.Token { return o.Object.Token }

// Object is a QML object literal: `Name { ...children... }`.
type Object struct {
	Token    qmltoken.Token
	Name     string // the declared type name, e.g. "Rectangle" or "Item.anchors"
	FullName string // qualified name used for hashtab bookkeeping; defaults to Name
	Children []ObjectChild
}

func (o *Object) Pos() qmltoken.Token { return o.Token }

// ObjectChild is the tagged union of everything that can appear directly
// inside an Object's braces.
type ObjectChild interface {
	Node
	isObjectChild()
	// GetName returns the child's declared name, or "" for a child kind
	// that has none (a bare nested Object).
	GetName() string
	// SetName renames the child in place where that is meaningful; it is a
	// no-op (returning false) for child kinds with no single name, such as
	// a bare nested Object.
	SetName(name string) bool
}

type Param struct {
	Type string
	Name string
}

// SignalChild is `signal clicked(var x)`.
type SignalChild struct {
	Token  qmltoken.Token
	Name   string
	Params []Param
}

func (s *SignalChild) isObjectChild()         {}
func (s *SignalChild) Pos() qmltoken.Token    { return s.Token }
func (s *SignalChild) GetName() string        { return s.Name }
func (s *SignalChild) SetName(n string) bool  { s.Name = n; return true }

// PropertyChild is `[default] [readonly] [required] property <type> name[: value]`
// where the default value is an opaque token stream (not an Object).
type PropertyChild struct {
	Token        qmltoken.Token
	Name         string
	Type         string
	Modifiers    []string // "default", "readonly", "required"
	DefaultValue []qmltoken.Token // nil if omitted
	HasDefault   bool
}

func (p *PropertyChild) isObjectChild()        {}
func (p *PropertyChild) Pos() qmltoken.Token   { return p.Token }
func (p *PropertyChild) GetName() string       { return p.Name }
func (p *PropertyChild) SetName(n string) bool { p.Name = n; return true }

// ObjectPropertyChild is a property whose default value is itself an
// Object, e.g. `property Item target: Item { }`.
type ObjectPropertyChild struct {
	Token        qmltoken.Token
	Name         string
	Type         string
	Modifiers    []string
	DefaultValue *Object
}

func (p *ObjectPropertyChild) isObjectChild()        {}
func (p *ObjectPropertyChild) Pos() qmltoken.Token   { return p.Token }
func (p *ObjectPropertyChild) GetName() string       { return p.Name }
func (p *ObjectPropertyChild) SetName(n string) bool { p.Name = n; return true }

// AssignmentChild is a plain `name: <expr>` binding whose value is an
// opaque token stream.
type AssignmentChild struct {
	Token qmltoken.Token
	Name  string
	Value []qmltoken.Token
}

func (a *AssignmentChild) isObjectChild()        {}
func (a *AssignmentChild) Pos() qmltoken.Token    { return a.Token }
func (a *AssignmentChild) GetName() string        { return a.Name }
func (a *AssignmentChild) SetName(n string) bool  { a.Name = n; return true }

// ObjectAssignmentChild is `name: Object { ... }` -- a binding whose value
// is an object literal, not a token stream.
type ObjectAssignmentChild struct {
	Token qmltoken.Token
	Name  string
	Value *Object
}

func (a *ObjectAssignmentChild) isObjectChild()        {}
func (a *ObjectAssignmentChild) Pos() qmltoken.Token    { return a.Token }
func (a *ObjectAssignmentChild) GetName() string        { return a.Name }
func (a *ObjectAssignmentChild) SetName(n string) bool  { a.Name = n; return true }

// FunctionChild is `function name(params) { body }`, body kept opaque.
type FunctionChild struct {
	Token  qmltoken.Token
	Name   string
	Params []Param
	Body   []qmltoken.Token
}

func (f *FunctionChild) isObjectChild()        {}
func (f *FunctionChild) Pos() qmltoken.Token    { return f.Token }
func (f *FunctionChild) GetName() string        { return f.Name }
func (f *FunctionChild) SetName(n string) bool  { f.Name = n; return true }

// NestedObjectChild is a bare nested object with no binding name of its own
// (an ordinary QML child item).
type NestedObjectChild struct {
	Object *Object
}

func (n *NestedObjectChild) isObjectChild()       {}
func (n *NestedObjectChild) Pos() qmltoken.Token  { return n.Object.Token }
func (n *NestedObjectChild) GetName() string      { return "" }
func (n *NestedObjectChild) SetName(string) bool  { return false }

// EnumValue is one member of an EnumChild.
type EnumValue struct {
	Name  string
	Value *string // literal text of an explicit "= N" value, nil if implicit
}

// EnumChild is `enum Name { A, B = 2, ... }`.
type EnumChild struct {
	Token  qmltoken.Token
	Name   string
	Values []EnumValue
}

func (e *EnumChild) isObjectChild()        {}
func (e *EnumChild) Pos() qmltoken.Token    { return e.Token }
func (e *EnumChild) GetName() string        { return e.Name }
func (e *EnumChild) SetName(n string) bool  { e.Name = n; return true }

// ComponentChild is `component Name: Object { ... }`.
type ComponentChild struct {
	Token  qmltoken.Token
	Name   string
	Object *Object
}

func (c *ComponentChild) isObjectChild()        {}
func (c *ComponentChild) Pos() qmltoken.Token    { return c.Token }
func (c *ComponentChild) GetName() string        { return c.Name }
func (c *ComponentChild) SetName(n string) bool  { c.Name = n; return true }
