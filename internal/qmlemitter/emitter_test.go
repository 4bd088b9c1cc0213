package qmlemitter

import (
	"strings"
	"testing"

	"github.com/asivery/qmldiff/internal/qmlparser"
)

func roundTrip(t *testing.T, src string) string {
	t.Helper()
	p := qmlparser.New(src, "test.qml")
	tree := p.Parse()
	if len(p.Errors()) != 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return Emit(tree)
}

func TestEmitSimpleObject(t *testing.T) {
	out := roundTrip(t, `Rectangle {
width: 100
color: "red"
}`)
	want := "Rectangle {\n    width: 100\n    color: \"red\"\n}\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestEmitIsIdempotentOnReparse(t *testing.T) {
	first := roundTrip(t, `Item {
property int count: 1
signal activated(var reason)
Rectangle {
width: 10
}
}`)
	p := qmlparser.New(first, "test.qml")
	tree := p.Parse()
	if len(p.Errors()) != 0 {
		t.Fatalf("reparse errors: %v", p.Errors())
	}
	second := Emit(tree)
	if first != second {
		t.Fatalf("not idempotent:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}

func TestEmitNestedIndentation(t *testing.T) {
	out := roundTrip(t, `Item {
Rectangle {
width: 1
}
}`)
	if !strings.Contains(out, "    Rectangle {\n        width: 1\n    }\n") {
		t.Fatalf("got:\n%s", out)
	}
}
