// Package difftoken defines the token vocabulary for the diff DSL (spec
// §3/§4.5), grounded on the original parser/diff/lexer.rs's Keyword and
// TokenType enums, extended with the keywords spec.md adds for VERSIONS,
// REBUILD (LOCATED/UNTIL), and STREAM framing, none of which exist in the
// pruned original source.
package difftoken

import "github.com/asivery/qmldiff/internal/errs"

type Type int

const (
	Illegal Type = iota
	EOF

	Keyword
	Identifier
	String
	Symbol  // single-character structural symbol: [ ] > ~ = / # : ! .
	Comment
	NewLine // the diff DSL is line-oriented: one instruction per line
	QMLCode // raw, depth-captured { ... } body, lexed separately by qmllexer
	Stream  // raw STREAM <c>...<c> payload between the delimiter characters
)

func (t Type) String() string {
	switch t {
	case Illegal:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case Keyword:
		return "KEYWORD"
	case Identifier:
		return "IDENT"
	case String:
		return "STRING"
	case Symbol:
		return "SYMBOL"
	case Comment:
		return "COMMENT"
	case NewLine:
		return "NEWLINE"
	case QMLCode:
		return "QML"
	case Stream:
		return "STREAM"
	default:
		return "UNKNOWN"
	}
}

// Keyword is the closed set of diff-DSL keywords. Carried verbatim from the
// original plus VERSIONS/REBUILD/LOCATED/UNTIL (spec additions).
type Keyword string

const (
	AFFECT   Keyword = "AFFECT"
	TRAVERSE Keyword = "TRAVERSE"
	INSERT   Keyword = "INSERT"
	ASSERT   Keyword = "ASSERT"
	LOCATE   Keyword = "LOCATE"
	REPLACE  Keyword = "REPLACE"
	TEMPLATE Keyword = "TEMPLATE"
	REMOVE   Keyword = "REMOVE"
	IMPORT   Keyword = "IMPORT"
	MULTIPLE Keyword = "MULTIPLE"
	RENAME   Keyword = "RENAME"
	END      Keyword = "END"
	SLOT     Keyword = "SLOT"
	LOAD     Keyword = "LOAD"
	WITH     Keyword = "WITH"
	TO       Keyword = "TO"
	ALL      Keyword = "ALL"
	AFTER    Keyword = "AFTER"
	BEFORE   Keyword = "BEFORE"
	VERSIONS Keyword = "VERSIONS"
	REBUILD  Keyword = "REBUILD"
	LOCATED  Keyword = "LOCATED"
	UNTIL    Keyword = "UNTIL"
	STREAM   Keyword = "STREAM"
)

var keywords = map[string]Keyword{
	"AFFECT": AFFECT, "TRAVERSE": TRAVERSE, "INSERT": INSERT, "ASSERT": ASSERT,
	"LOCATE": LOCATE, "REPLACE": REPLACE, "TEMPLATE": TEMPLATE, "REMOVE": REMOVE,
	"IMPORT": IMPORT, "MULTIPLE": MULTIPLE, "RENAME": RENAME, "END": END,
	"SLOT": SLOT, "LOAD": LOAD, "WITH": WITH, "TO": TO, "ALL": ALL,
	"AFTER": AFTER, "BEFORE": BEFORE, "VERSIONS": VERSIONS, "REBUILD": REBUILD,
	"LOCATED": LOCATED, "UNTIL": UNTIL, "STREAM": STREAM,
}

// LookupKeyword returns the Keyword for an UPPERCASE identifier, or ("",
// false) if ident isn't one -- the DSL's keywords are case-sensitive
// (spec §3) unlike ordinary identifiers.
func LookupKeyword(ident string) (Keyword, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// Token is one lexed diff-DSL unit.
type Token struct {
	Type    Type
	Keyword Keyword // populated when Type == Keyword
	Literal string
	Pos     errs.Position
}

func (t Token) String() string { return t.Literal }
