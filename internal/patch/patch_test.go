package patch

import (
	"testing"

	"github.com/asivery/qmldiff/internal/diffparser"
	"github.com/asivery/qmldiff/internal/qmlemitter"
	"github.com/asivery/qmldiff/internal/qmlparser"
	"github.com/asivery/qmldiff/internal/refcell"
	"github.com/asivery/qmldiff/internal/slots"
)

func apply(t *testing.T, qml, diff string) string {
	t.Helper()
	qp := qmlparser.New(qml, "t.qml")
	tree := qp.Parse()
	if errs := qp.Errors(); len(errs) > 0 {
		t.Fatalf("qml parse errors: %v", errs)
	}

	dp := diffparser.New(diff, "t.diff", nil)
	doc := dp.Parse()
	if errs := dp.Errors(); len(errs) > 0 {
		t.Fatalf("diff parse errors: %v", errs)
	}
	if _, err := slots.Process(doc); err != nil {
		t.Fatalf("slots.Process: %v", err)
	}

	translated := refcell.Translate(tree)
	for _, change := range doc.Changes {
		if err := Run(translated, change); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	return qmlemitter.Emit(refcell.Untranslate(translated))
}

func TestInsertChildUnderTraverse(t *testing.T) {
	out := apply(t, "Root {\n    A {\n    }\n}\n",
		"AFFECT t.qml\n"+
			"TRAVERSE A\n"+
			"LOCATE AFTER ALL\n"+
			"INSERT { B { v: 1 } }\n"+
			"END TRAVERSE\n")
	if !contains(out, "B {") || !contains(out, "v: 1") {
		t.Fatalf("got %s", out)
	}
}

func TestRemoveByName(t *testing.T) {
	out := apply(t, "Root {\n    width: 10\n    height: 20\n}\n",
		"AFFECT t.qml\n"+
			"REMOVE width\n")
	if contains(out, "width") {
		t.Fatalf("width should have been removed: %s", out)
	}
	if !contains(out, "height: 20") {
		t.Fatalf("got %s", out)
	}
}

func TestReplaceWithPropertyFilter(t *testing.T) {
	out := apply(t,
		"Root {\n    Item {\n        id: x\n        v: 1\n    }\n    Item {\n        id: y\n        v: 2\n    }\n}\n",
		"AFFECT t.qml\n"+
			"REPLACE Item#y WITH { Item { id: y; v: 99 } }\n")
	if !contains(out, "v: 99") || !contains(out, "v: 1") {
		t.Fatalf("got %s", out)
	}
}

func TestRenameChild(t *testing.T) {
	out := apply(t, "Root {\n    oldName: 1\n}\n",
		"AFFECT t.qml\n"+
			"RENAME oldName TO newName\n")
	if !contains(out, "newName") || contains(out, "oldName") {
		t.Fatalf("got %s", out)
	}
}

func TestRebuildFunctionBody(t *testing.T) {
	out := apply(t, "Root {\n    function f(x) {\n        return x\n    }\n}\n",
		"AFFECT t.qml\n"+
			"REBUILD f\n"+
			"LOCATE BEFORE return\n"+
			"INSERT { x = x + 1 }\n"+
			"END REBUILD\n")
	if !contains(out, "x = x + 1") || !contains(out, "return") {
		t.Fatalf("got %s", out)
	}
}

func TestRebuildArgumentSurgery(t *testing.T) {
	out := apply(t, "Root {\n    function f(x, y) {\n        return x\n    }\n}\n",
		"AFFECT t.qml\n"+
			"REBUILD f\n"+
			"RENAME ARG@0 x TO a\n"+
			"REMOVE ARG@1 y\n"+
			"INSERT ARG@1 b\n"+
			"END REBUILD\n")
	if !contains(out, "function f(a, b)") {
		t.Fatalf("got %s", out)
	}
}

func contains(s, sub string) bool {
	return indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
