package diffparser

import (
	"testing"

	"github.com/asivery/qmldiff/internal/diffast"
)

func parseOK(t *testing.T, src string) *diffast.Document {
	t.Helper()
	p := New(src, "t.diff", nil)
	doc := p.Parse()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	return doc
}

func TestParsesAffectAndInsert(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"LOCATE AFTER Rectangle\n" +
		"INSERT { Text { text: \"hi\" } }\n"
	doc := parseOK(t, src)
	if len(doc.Changes) != 1 {
		t.Fatalf("got %d changes", len(doc.Changes))
	}
	ch := doc.Changes[0]
	if len(ch.Targets) != 1 || ch.Targets[0] != "main.qml" {
		t.Fatalf("got targets %v", ch.Targets)
	}
	if len(ch.Instructions) != 2 {
		t.Fatalf("got %d instructions", len(ch.Instructions))
	}
	loc, ok := ch.Instructions[0].(diffast.LocateInstr)
	if !ok || !loc.After || len(loc.Tree) != 1 || loc.Tree[0].Name != "Rectangle" {
		t.Fatalf("got %#v", ch.Instructions[0])
	}
	ins, ok := ch.Instructions[1].(diffast.InsertInstr)
	if !ok || len(ins.Body.Code) == 0 || ins.Body.Code[0].Literal != "Text" {
		t.Fatalf("got %#v", ch.Instructions[1])
	}
}

func TestParsesReplaceWithTemplate(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"REPLACE Rectangle WITH TEMPLATE makeButton { label: \"Go\" }\n"
	doc := parseOK(t, src)
	instr := doc.Changes[0].Instructions[0].(diffast.ReplaceInstr)
	if instr.Selector.Name != "Rectangle" || instr.Body.TemplateName != "makeButton" {
		t.Fatalf("got %#v", instr)
	}
	if len(instr.Body.TemplateArgs) != 1 || instr.Body.TemplateArgs[0].Key != "label" {
		t.Fatalf("got args %v", instr.Body.TemplateArgs)
	}
}

func TestParsesSelectorWithProperties(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"REMOVE ALL Item[.id=root][.visible=true]\n"
	doc := parseOK(t, src)
	instr := doc.Changes[0].Instructions[0].(diffast.RemoveInstr)
	if !instr.All || instr.Selector.Name != "Item" || len(instr.Selector.Props) != 2 {
		t.Fatalf("got %#v", instr)
	}
	if instr.Selector.Props[0].Kind != diffast.PropEquals || instr.Selector.Props[0].Value != "root" {
		t.Fatalf("got prop 0 %#v", instr.Selector.Props[0])
	}
}

func TestParsesSelectorHashAndExists(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"ASSERT Item#root[!enabled]\n"
	doc := parseOK(t, src)
	instr := doc.Changes[0].Instructions[0].(diffast.AssertInstr)
	if instr.Selector.Name != "Item" || len(instr.Selector.Props) != 2 {
		t.Fatalf("got %#v", instr)
	}
	if instr.Selector.Props[0].Key != "id" || instr.Selector.Props[0].Value != "root" {
		t.Fatalf("got id prop %#v", instr.Selector.Props[0])
	}
	if instr.Selector.Props[1].Key != "enabled" || instr.Selector.Props[1].Kind != diffast.PropExists {
		t.Fatalf("got exists prop %#v", instr.Selector.Props[1])
	}
}

func TestParsesTemplateAndSlotDecl(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"TEMPLATE makeButton { text: ~{label}~ }\n" +
		"SLOT footer\n" +
		"INSERT { Text { text: \"done\" } }\n" +
		"END SLOT\n"
	doc := parseOK(t, src)
	if len(doc.Changes[0].Instructions) != 2 {
		t.Fatalf("got %d instructions", len(doc.Changes[0].Instructions))
	}
	tmpl, ok := doc.Changes[0].Instructions[0].(diffast.TemplateDeclInstr)
	if !ok || tmpl.Name != "makeButton" || len(tmpl.Body) == 0 {
		t.Fatalf("got %#v", doc.Changes[0].Instructions[0])
	}
	slot, ok := doc.Changes[0].Instructions[1].(diffast.SlotInstr)
	if !ok || slot.Name != "footer" || len(slot.Body) != 1 {
		t.Fatalf("got %#v", doc.Changes[0].Instructions[1])
	}
	if _, ok := slot.Body[0].(diffast.InsertInstr); !ok {
		t.Fatalf("expected slot body to hold an INSERT instruction, got %#v", slot.Body[0])
	}
}

func TestParsesRebuildWithLocateAndInsert(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"REBUILD f\n" +
		"LOCATE BEFORE return\n" +
		"INSERT { x = x + 1 }\n" +
		"END REBUILD\n"
	doc := parseOK(t, src)
	rb, ok := doc.Changes[0].Instructions[0].(diffast.RebuildInstr)
	if !ok || rb.Target.Name != "f" {
		t.Fatalf("got %#v", doc.Changes[0].Instructions[0])
	}
	if len(rb.Ops) != 2 {
		t.Fatalf("got %d rebuild ops", len(rb.Ops))
	}
	if rb.Ops[0].Locate == nil || rb.Ops[0].Locate.After || len(rb.Ops[0].Locate.Tokens) != 1 || rb.Ops[0].Locate.Tokens[0].Literal != "return" {
		t.Fatalf("got locate op %#v", rb.Ops[0])
	}
	if rb.Ops[1].Insert == nil || len(rb.Ops[1].Insert.Tokens) == 0 {
		t.Fatalf("got insert op %#v", rb.Ops[1])
	}
}

func TestParsesRebuildArgSurgery(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"REBUILD f\n" +
		"INSERT ARG@1 extra\n" +
		"RENAME ARG@0 old TO new\n" +
		"REMOVE ARG@2 gone\n" +
		"END REBUILD\n"
	doc := parseOK(t, src)
	rb := doc.Changes[0].Instructions[0].(diffast.RebuildInstr)
	if len(rb.Ops) != 3 {
		t.Fatalf("got %d rebuild ops", len(rb.Ops))
	}
	ins := rb.Ops[0].ArgEdit
	if ins == nil || ins.Op != diffast.RebuildArgInsert || ins.Pos != 1 || ins.Name != "extra" {
		t.Fatalf("got insert arg edit %#v", rb.Ops[0])
	}
	ren := rb.Ops[1].ArgEdit
	if ren == nil || ren.Op != diffast.RebuildArgRename || ren.Pos != 0 || ren.Name != "old" || ren.NewName != "new" {
		t.Fatalf("got rename arg edit %#v", rb.Ops[1])
	}
	rem := rb.Ops[2].ArgEdit
	if rem == nil || rem.Op != diffast.RebuildArgRemove || rem.Pos != 2 || rem.Name != "gone" {
		t.Fatalf("got remove arg edit %#v", rb.Ops[2])
	}
}

func TestParsesVersionsGuard(t *testing.T) {
	src := "AFFECT main.qml VERSIONS 2.0.0\n" +
		"ASSERT Rectangle\n"
	doc := parseOK(t, src)
	if doc.Changes[0].Versions == nil {
		t.Fatalf("expected versions guard")
	}
}

func TestParsesStream(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"STREAM |raw payload here|\n"
	doc := parseOK(t, src)
	s, ok := doc.Changes[0].Instructions[0].(diffast.StreamInstr)
	if !ok || s.Delim != '|' || s.Payload != "raw payload here" {
		t.Fatalf("got %#v", doc.Changes[0].Instructions[0])
	}
}

func TestParsesMultiple(t *testing.T) {
	src := "AFFECT main.qml\n" +
		"MULTIPLE\n"
	doc := parseOK(t, src)
	if _, ok := doc.Changes[0].Instructions[0].(diffast.AllowMultipleInstr); !ok {
		t.Fatalf("got %#v", doc.Changes[0].Instructions[0])
	}
}
