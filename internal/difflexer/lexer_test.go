package difflexer

import (
	"testing"

	"github.com/asivery/qmldiff/internal/difftoken"
)

type mapResolver map[uint64]string

func (m mapResolver) Resolve(h uint64) (string, bool) {
	v, ok := m[h]
	return v, ok
}

func collect(t *testing.T, input string, resolver Resolver) []difftoken.Token {
	t.Helper()
	if resolver == nil {
		resolver = mapResolver{}
	}
	l := New(input, resolver)
	var toks []difftoken.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == difftoken.EOF {
			break
		}
	}
	if len(l.Errors()) > 0 {
		t.Fatalf("unexpected lexer errors: %v", l.Errors())
	}
	return toks
}

func TestLexesKeywordsAndIdentifiers(t *testing.T) {
	toks := collect(t, "AFFECT foo.qml\n", nil)
	if toks[0].Type != difftoken.Keyword || toks[0].Keyword != difftoken.AFFECT {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Type != difftoken.Identifier || toks[1].Literal != "foo.qml" {
		t.Fatalf("got %+v", toks[1])
	}
	if toks[2].Type != difftoken.NewLine {
		t.Fatalf("got %+v", toks[2])
	}
}

func TestLexesComment(t *testing.T) {
	toks := collect(t, "; a note\nLOCATE x\n", nil)
	if toks[0].Type != difftoken.Comment || toks[0].Literal != " a note" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexesQuotedStringWithEscapes(t *testing.T) {
	toks := collect(t, `"hi \"there\""`+"\n", nil)
	if toks[0].Type != difftoken.String || toks[0].Literal != `"hi "there""` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexesHashRef(t *testing.T) {
	resolver := mapResolver{42: "width"}
	toks := collect(t, "[[42]]\n", resolver)
	if toks[0].Type != difftoken.Identifier || toks[0].Literal != "width" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexesQuotedHashRef(t *testing.T) {
	resolver := mapResolver{42: "width"}
	toks := collect(t, `[['42']]`+"\n", resolver)
	if toks[0].Type != difftoken.String || toks[0].Literal != `'width'` {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexesQMLCodeByBraceDepth(t *testing.T) {
	toks := collect(t, "{ Rectangle { width: 10 } }\n", nil)
	if toks[0].Type != difftoken.QMLCode {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Literal != " Rectangle { width: 10 } " {
		t.Fatalf("got literal %q", toks[0].Literal)
	}
}

func TestLexesStream(t *testing.T) {
	toks := collect(t, "STREAM |raw payload here|\n", nil)
	if toks[0].Type != difftoken.Stream {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[0].Literal != "raw payload here" {
		t.Fatalf("got payload %q", toks[0].Literal)
	}
	if string(toks[0].Keyword) != "|" {
		t.Fatalf("got delim %q", toks[0].Keyword)
	}
}

func TestLexesStructuralSymbols(t *testing.T) {
	toks := collect(t, "LOCATE > Item.name ~ foo\n", nil)
	var symbols []string
	for _, tok := range toks {
		if tok.Type == difftoken.Symbol {
			symbols = append(symbols, tok.Literal)
		}
	}
	if len(symbols) == 0 {
		t.Fatalf("expected structural symbols, got none in %+v", toks)
	}
}
