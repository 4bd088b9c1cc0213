package qmldiff

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// runScenario feeds one spec §8 end-to-end scenario through a fresh Engine
// and snapshots the patched output, the way the teacher's fixture tests
// snapshot interpreter output rather than asserting on substrings.
func runScenario(t *testing.T, name, qml, diff string) {
	t.Helper()
	e := New()
	if !e.AddExternalDiff(diff, name+".qmd") {
		t.Fatalf("%s: AddExternalDiff failed", name)
	}
	out, applied, err := e.ProcessFile("f.qml", qml)
	if err != nil {
		t.Fatalf("%s: ProcessFile: %v", name, err)
	}
	if !applied {
		t.Fatalf("%s: expected the change to target f.qml", name)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%s_output", name), out)
}

func TestScenarioS1InsertChild(t *testing.T) {
	runScenario(t, "S1", "Root {\n    A {\n    }\n}\n",
		"AFFECT f.qml\n"+
			"TRAVERSE A\n"+
			"LOCATE AFTER ALL\n"+
			"INSERT { B { v: 1 } }\n"+
			"END TRAVERSE\n")
}

func TestScenarioS2RemoveByName(t *testing.T) {
	runScenario(t, "S2", "Root {\n    width: 10\n    height: 20\n}\n",
		"AFFECT f.qml\n"+
			"REMOVE width\n")
}

func TestScenarioS3ReplaceWithPropertyFilter(t *testing.T) {
	runScenario(t, "S3",
		"Root {\n    Item {\n        id: x\n        v: 1\n    }\n    Item {\n        id: y\n        v: 2\n    }\n}\n",
		"AFFECT f.qml\n"+
			"REPLACE Item#y WITH { Item { id: y; v: 99 } }\n")
}

func TestScenarioS4SlotConcatenation(t *testing.T) {
	runScenario(t, "S4", "Root {\n}\n",
		"AFFECT f.qml\n"+
			"SLOT s\n"+
			"INSERT { a: 1 }\n"+
			"INSERT { b: 2 }\n"+
			"END SLOT\n"+
			"LOCATE AFTER ALL\n"+
			"INSERT SLOT s\n")
}

func TestScenarioS5TemplateExpansion(t *testing.T) {
	runScenario(t, "S5", "Root {\n}\n",
		"AFFECT f.qml\n"+
			"TEMPLATE T { Rect { color: ~{c}~; width: ~{w}~ } }\n"+
			"LOCATE AFTER ALL\n"+
			"INSERT TEMPLATE T { c: \"red\"; w: 10 }\n")
}

func TestScenarioS6RebuildFunctionBody(t *testing.T) {
	runScenario(t, "S6", "Root {\n    function f(x) {\n        return x\n    }\n}\n",
		"AFFECT f.qml\n"+
			"REBUILD f\n"+
			"LOCATE BEFORE return\n"+
			"INSERT { x = x + 1 }\n"+
			"END REBUILD\n")
}
