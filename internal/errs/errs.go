// Package errs defines qmldiff's diagnostic error types: a single Error
// struct tagged with a Kind, carrying enough position/source context to
// print a caret-pointer diagnostic the way the teacher's compiler errors do,
// plus a Collector that accumulates errors across a run rather than
// aborting on the first.
package errs

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind enumerates the error classes from the error-handling design (spec
// §7). LexError is never actually constructed: malformed input lexes to an
// Illegal/Unknown token and is reported by the parser as a ParseError
// instead, matching how the QML and diff lexers behave.
type Kind int

const (
	_ Kind = iota
	ParseError
	SelectorError
	ExpansionError
	RebuildError
	HashLookupError
	IOError
	VersionSkip
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case SelectorError:
		return "SelectorError"
	case ExpansionError:
		return "ExpansionError"
	case RebuildError:
		return "RebuildError"
	case HashLookupError:
		return "HashLookupError"
	case IOError:
		return "IOError"
	case VersionSkip:
		return "VersionSkip"
	default:
		return "Error"
	}
}

// Position is a source position shared by the QML and diff DSL token
// streams. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Error is a single diagnostic.
type Error struct {
	Kind       Kind
	Message    string
	SourceFile string
	Pos        Position
	Source     string // the full source text Pos.Line indexes into, if known
	Hash       uint64 // populated for Kind == HashLookupError
}

func New(kind Kind, file, message string, pos Position, source string) *Error {
	return &Error{Kind: kind, Message: message, SourceFile: file, Pos: pos, Source: source}
}

func NewHashLookup(hashID uint64, sourceFile string) *Error {
	return &Error{
		Kind:       HashLookupError,
		Hash:       hashID,
		SourceFile: sourceFile,
		Message:    fmt.Sprintf("cannot resolve hash %d", hashID),
	}
}

func (e *Error) Error() string {
	if e.Kind == HashLookupError {
		return fmt.Sprintf("%s - cannot resolve hash %d", e.SourceFile, e.Hash)
	}
	return e.Format()
}

// Format renders a caret-pointer diagnostic:
//
//	ParseError in FILE:LINE:COL
//	MESSAGE
//	 12 | Rectangle { width: [[1234]] }
//	   |                    ^
//
// grounded on the teacher's internal/errors.CompilerError.Format.
func (e *Error) Format() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s in %s:%d:%d\n", e.Kind, e.SourceFile, e.Pos.Line, e.Pos.Column)
	fmt.Fprintf(&buf, "%s\n", e.Message)
	line := sourceLine(e.Source, e.Pos.Line)
	if line == "" {
		return buf.String()
	}
	lineNum := fmt.Sprintf("%d", e.Pos.Line)
	fmt.Fprintf(&buf, " %s | %s\n", lineNum, line)
	pad := strings.Repeat(" ", len(lineNum)) + " | " + strings.Repeat(" ", max(e.Pos.Column-1, 0))
	fmt.Fprintf(&buf, "%s^\n", pad)
	return buf.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Collector aggregates *Error values the way the original's
// ErrorCollector does, so a pass over many files can report every
// failure at once instead of aborting on the first.
type Collector struct {
	errors []*Error
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Add(err *Error) { c.errors = append(c.errors, err) }

func (c *Collector) HasErrors() bool { return len(c.errors) > 0 }

func (c *Collector) Count() int { return len(c.errors) }

func (c *Collector) Errors() []*Error { return c.errors }

// PrintTo writes every collected error, one per line, to w.
func (c *Collector) PrintTo(w interface{ Write([]byte) (int, error) }) {
	for _, e := range c.errors {
		fmt.Fprintln(w, e.Error())
	}
}
