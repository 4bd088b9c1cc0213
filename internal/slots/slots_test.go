package slots

import (
	"testing"

	"github.com/asivery/qmldiff/internal/diffast"
	"github.com/asivery/qmldiff/internal/qmltoken"
)

func tok(typ qmltoken.Type, lit string) qmltoken.Token {
	return qmltoken.Token{Type: typ, Literal: lit}
}

func TestCollectPartitionsSlotsAndFiles(t *testing.T) {
	instrs := []diffast.Instruction{
		diffast.SlotInstr{Name: "footer", Body: bodyToInsert([]qmltoken.Token{tok(qmltoken.Identifier, "Text")})},
		diffast.AssertInstr{Selector: diffast.NodeSelector{Name: "Rectangle"}},
	}
	r := NewRegistry()
	kept, err := r.Collect(instrs)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("got %d kept instructions", len(kept))
	}
	if _, ok := r.slots["footer"]; !ok {
		t.Fatalf("expected slot footer to be registered")
	}
}

func TestExpandSlotsResolvesInsert(t *testing.T) {
	r := NewRegistry()
	if err := r.define("footer", false, bodyToInsert([]qmltoken.Token{tok(qmltoken.Identifier, "Text")})); err != nil {
		t.Fatalf("define: %v", err)
	}
	instrs := []diffast.Instruction{
		diffast.InsertInstr{Body: diffast.Insertable{SlotName: "footer"}},
	}
	out, err := r.ExpandSlots(instrs)
	if err != nil {
		t.Fatalf("ExpandSlots: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d instructions", len(out))
	}
	ins, ok := out[0].(diffast.InsertInstr)
	if !ok || len(ins.Body.Code) != 1 || ins.Body.Code[0].Literal != "Text" {
		t.Fatalf("got %#v", out[0])
	}
	if !r.AllReadBack() {
		t.Fatalf("expected footer to be read back")
	}
}

func TestExpandSlotsResolvesReplace(t *testing.T) {
	r := NewRegistry()
	if err := r.define("footer", false, bodyToInsert([]qmltoken.Token{tok(qmltoken.Identifier, "Text")})); err != nil {
		t.Fatalf("define: %v", err)
	}
	instrs := []diffast.Instruction{
		diffast.ReplaceInstr{Selector: diffast.NodeSelector{Name: "Item"}, Body: diffast.Insertable{SlotName: "footer"}},
	}
	out, err := r.ExpandSlots(instrs)
	if err != nil {
		t.Fatalf("ExpandSlots: %v", err)
	}
	rep := out[0].(diffast.ReplaceInstr)
	if len(rep.Body.Code) != 1 || rep.Body.Code[0].Literal != "Text" {
		t.Fatalf("got %#v", rep)
	}
}

func TestBuildTemplateCodeSubstitutesArgs(t *testing.T) {
	r := NewRegistry()
	body := []qmltoken.Token{tok(qmltoken.Identifier, "text"), tok(qmltoken.Colon, ":"), tok(qmltoken.SlotReference, "label")}
	if err := r.define("makeButton", true, bodyToInsert(body)); err != nil {
		t.Fatalf("define: %v", err)
	}
	out, err := r.buildTemplateCode("makeButton", []diffast.TemplateArg{{Key: "label", Value: []qmltoken.Token{tok(qmltoken.String, "\"Go\"")}}})
	if err != nil {
		t.Fatalf("buildTemplateCode: %v", err)
	}
	if out[2].Literal != "\"Go\"" {
		t.Fatalf("got %#v", out)
	}
}

func TestBuildTemplateCodeErrorsOnUnusedArg(t *testing.T) {
	r := NewRegistry()
	if err := r.define("makeButton", true, bodyToInsert([]qmltoken.Token{tok(qmltoken.Identifier, "text")})); err != nil {
		t.Fatalf("define: %v", err)
	}
	_, err := r.buildTemplateCode("makeButton", []diffast.TemplateArg{{Key: "unused", Value: []qmltoken.Token{tok(qmltoken.Identifier, "x")}}})
	if err == nil {
		t.Fatalf("expected error for unused template argument")
	}
}

func TestBuildTemplateCodeErrorsOnMissingPlaceholderValue(t *testing.T) {
	r := NewRegistry()
	body := []qmltoken.Token{tok(qmltoken.SlotReference, "label")}
	if err := r.define("makeButton", true, bodyToInsert(body)); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := r.buildTemplateCode("makeButton", nil); err == nil {
		t.Fatalf("expected error for an unsubstituted placeholder")
	}
}

func TestRedefiningTemplateErrors(t *testing.T) {
	r := NewRegistry()
	if err := r.define("makeButton", true, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := r.define("makeButton", true, nil); err == nil {
		t.Fatalf("expected redefinition error")
	}
}

func TestProcessExpandsAcrossChanges(t *testing.T) {
	doc := &diffast.Document{
		Changes: []diffast.Change{
			{
				Targets: []string{"main.qml"},
				Instructions: []diffast.Instruction{
					diffast.SlotInstr{Name: "footer", Body: bodyToInsert([]qmltoken.Token{tok(qmltoken.Identifier, "Text")})},
					diffast.InsertInstr{Body: diffast.Insertable{SlotName: "footer"}},
				},
			},
		},
	}
	r, err := Process(doc)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !r.AllReadBack() {
		t.Fatalf("expected footer read back")
	}
	if len(doc.Changes[0].Instructions) != 1 {
		t.Fatalf("got %d instructions", len(doc.Changes[0].Instructions))
	}
}
