// Package diffast defines the AST produced by internal/diffparser for the
// diff DSL (spec §4), grounded on the original parser/diff/parser.rs's
// PropRequirement/NodeSelector/Location/LocateAction/ReplaceAction/
// Insertable/ImportAction/RenameAction/FileChangeAction/ObjectToChange/
// Change types. VERSIONS, REBUILD's full sub-language (LOCATE/argument-list
// surgery), REPLACE...WITH TEMPLATE, AllowMultiple and STREAM have no
// analogue in the pruned original source and are authored fresh from
// spec.md.
package diffast

import (
	"github.com/asivery/qmldiff/internal/errs"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

// PropRequirementKind distinguishes the three ways a selector's bracket
// clause can constrain a named child: `[!prop]` (Exists), `[.prop=val]`
// (Equals) and `[.prop~val]` (Contains). `#id` is sugar for an Equals
// requirement on the "id" property.
type PropRequirementKind int

const (
	PropExists PropRequirementKind = iota
	PropEquals
	PropContains
)

// PropRequirement is one bracketed condition inside a node selector, e.g.
// the `.id=root` in `Item[.id=root]`, or the `#root` shorthand for the same
// thing.
type PropRequirement struct {
	Key   string
	Kind  PropRequirementKind
	Value string // unused when Kind == PropExists
}

// NodeSelector identifies a node by type name, an optional named binding
// (the property name under which the object is attached to its parent, via
// `Name:named`), and zero or more bracketed property requirements.
type NodeSelector struct {
	Name  string
	Named string
	Props []PropRequirement
}

// IsSimple reports whether the selector carries no named binding and no
// property requirements, mirroring the original's is_simple().
func (s NodeSelector) IsSimple() bool { return s.Named == "" && len(s.Props) == 0 }

// Location is a `>`-separated chain of selectors describing a path through
// the object tree, e.g. `Rectangle > Column > Text`.
type Location []NodeSelector

// InsertPosition controls where INSERT places a new child relative to its
// anchor.
type InsertPosition int

const (
	InsertDefault InsertPosition = iota
	InsertAll
	InsertAfter
	InsertBefore
)

// TemplateArg is one `key: value` pair supplied by an `INSERT TEMPLATE name
// { key: value; ... }` invocation body; Value is kept as raw tokens (not
// collapsed to a string) so multi-token values re-emit faithfully.
type TemplateArg struct {
	Key   string
	Value []qmltoken.Token
}

// Insertable is the body of an INSERT/REPLACE instruction (spec §3):
// `Code(tokens)` for a literal `{ qml }` body, `Slot(name)` for an `INSERT
// SLOT name` reference, or `Template(name, args)` for an `INSERT TEMPLATE
// name { ... }` invocation. Exactly one of SlotName/TemplateName/Code is
// set until slot/template expansion (spec §5) reduces every Insertable down
// to Code.
type Insertable struct {
	TemplateName string // set when the body is `TEMPLATE name { key: value; ... }`
	TemplateArgs []TemplateArg
	SlotName     string           // set when the body is `SLOT name`
	Code         []qmltoken.Token // set for a literal body, or once expansion resolves one
}

// Instruction is one statement inside a Change block.
type Instruction interface {
	isInstruction()
	Pos() errs.Position
}

type Base struct{ pos errs.Position }

func NewBase(pos errs.Position) Base { return Base{pos: pos} }

func (Base) isInstruction()       {}
func (b Base) Pos() errs.Position { return b.pos }

type TraverseInstr struct {
	Base
	Selector Location
}

type EndTraverseInstr struct{ Base }

type InsertInstr struct {
	Base
	Position InsertPosition
	Anchor   *NodeSelector
	Body     Insertable
}

type AssertInstr struct {
	Base
	Selector NodeSelector
}

// LocateInstr is `LOCATE BEFORE|AFTER (ALL|NodeTree)`: sets the current
// root's cursor either to a container boundary (All) or to the index of the
// first element matching Tree, shifted one past it when After is set.
type LocateInstr struct {
	Base
	After bool
	All   bool
	Tree  Location
}

type ReplaceInstr struct {
	Base
	Selector NodeSelector
	Body     Insertable
}

type RemoveInstr struct {
	Base
	Selector NodeSelector
	All      bool
}

type RenameInstr struct {
	Base
	Selector NodeSelector
	NewName  string
}

type ImportInstr struct {
	Base
	Path    string
	Version string
	As      string
}

// TemplateDeclInstr is the top-level `TEMPLATE <name> { qml }` declaration:
// one QML body whose `~{placeholder}~` slot references are substituted by
// the matching invocation's TemplateArgs at expansion time. There is no
// formal parameter list -- a placeholder is live the moment it appears in
// the body.
type TemplateDeclInstr struct {
	Base
	Name string
	Body []qmltoken.Token
}

// SlotInstr is the top-level `SLOT <name> ... END SLOT` declaration: a body
// of ordinary instructions (in practice, a sequence of INSERTs) whose
// Insertable bodies accumulate as the slot's contents (spec §5).
type SlotInstr struct {
	Base
	Name string
	Body []Instruction
}

type LoadInstr struct {
	Base
	Path string
}

// AllowMultipleInstr is the bare `MULTIPLE` instruction (spec's
// FileChangeAction::AllowMultiple). Spec leaves its intended semantics
// unspecified beyond its name and says the executor must treat it as "a
// fatal parse-level acknowledged directive" -- parsed, never executed.
type AllowMultipleInstr struct{ Base }

// RebuildArgOp is one ARG@<pos> argument-list surgery sub-action.
type RebuildArgOp int

const (
	RebuildArgInsert RebuildArgOp = iota
	RebuildArgRemove
	RebuildArgRename
)

// RebuildArgEdit is `INSERT ARG@<pos> <name>`, `REMOVE ARG@<pos> <name>` or
// `RENAME ARG@<pos> <old> TO <new>` (spec §4.6).
type RebuildArgEdit struct {
	Op      RebuildArgOp
	Pos     int
	Name    string // new/removed argument name (Insert, Remove); old name (Rename)
	NewName string // set only for Rename
}

// RebuildLocateOp is one `LOCATE (BEFORE|AFTER) (ALL|<tokens>)` sub-action:
// it sets where a later LOCATED reference or UNTIL-less REMOVE/REPLACE
// anchors within the rebuilt body.
type RebuildLocateOp struct {
	After  bool
	All    bool
	Tokens []qmltoken.Token
}

// RebuildInsertOp is `INSERT <tokens>`: splice tokens at the body's current
// LOCATE cursor.
type RebuildInsertOp struct {
	Tokens []qmltoken.Token
}

// RebuildRemoveOp is `REMOVE (LOCATED|<tokens>|UNTIL END|UNTIL <tokens>)`.
type RebuildRemoveOp struct {
	Located bool
	Tokens  []qmltoken.Token // set when removing a specific literal run
	Until   []qmltoken.Token // set for `UNTIL <tokens>`; nil+UntilEnd for `UNTIL END`
	UntilEnd bool
}

// RebuildReplaceOp is `REPLACE (LOCATED|<tokens>) [UNTIL <tokens>] WITH
// <tokens>`: replaces every non-overlapping occurrence of the target run up
// to Until (or body end) with Tokens.
type RebuildReplaceOp struct {
	Located bool
	Match   []qmltoken.Token // set when replacing a specific literal run
	Until   []qmltoken.Token
	Tokens  []qmltoken.Token
}

// RebuildOp is one instruction inside a REBUILD...END REBUILD block: the
// rebuild sub-language's own nested INSERT/REMOVE/REPLACE/LOCATE plus
// ARG@<pos> argument-list surgery (spec §4.6/§4.9), distinct from the outer
// diff DSL's instructions of the same keywords.
type RebuildOp struct {
	Insert  *RebuildInsertOp
	Remove  *RebuildRemoveOp
	Replace *RebuildReplaceOp
	Locate  *RebuildLocateOp
	ArgEdit *RebuildArgEdit
}

// RebuildInstr is `REBUILD <NodeSelector> <rebuild-instructions> END
// REBUILD` (spec §4.6/§4.9): locate the named function/assignment/property
// whose value is an arrow-function-shaped token stream or a function body,
// and apply Ops to its (argument list, body) in order.
type RebuildInstr struct {
	Base
	Target NodeSelector
	Ops    []RebuildOp
}

type StreamInstr struct {
	Base
	Delim   rune
	Payload string
}

// VersionsGuard narrows a Change to files whose current version appears in
// a whitespace-separated allow-list (spec addition, internal/semverutil
// consumes this).
type VersionsGuard struct {
	Allowed []string
}

// Change is everything declared under one AFFECT target.
type Change struct {
	Targets      []string
	Versions     *VersionsGuard
	Instructions []Instruction
}

// Document is a whole parsed diff file.
type Document struct {
	Changes []Change
}
