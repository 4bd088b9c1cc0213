package qmlast

import "testing"

func sampleTree() *Object {
	return &Object{
		Name: "Rectangle",
		Children: []ObjectChild{
			&AssignmentChild{Name: "width"},
			&NestedObjectChild{Object: &Object{Name: "Text", Children: []ObjectChild{
				&AssignmentChild{Name: "text"},
			}}},
		},
	}
}

type collectingVisitor struct {
	names []string
}

func (c *collectingVisitor) VisitObject(o *Object) { c.names = append(c.names, o.Name) }
func (c *collectingVisitor) VisitChild(ch ObjectChild) bool {
	if n := ch.GetName(); n != "" {
		c.names = append(c.names, n)
	}
	return true
}

func TestWalkVisitsNestedObjects(t *testing.T) {
	v := &collectingVisitor{}
	Walk(sampleTree(), v)
	want := []string{"Rectangle", "width", "Text", "text"}
	if len(v.names) != len(want) {
		t.Fatalf("got %v, want %v", v.names, want)
	}
	for i := range want {
		if v.names[i] != want[i] {
			t.Fatalf("got %v, want %v", v.names, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleTree()
	clone := orig.Clone()
	clone.Children[0].(*AssignmentChild).Name = "height"
	if orig.Children[0].GetName() != "width" {
		t.Fatalf("clone mutation leaked into original: %q", orig.Children[0].GetName())
	}
}

func TestStrValueForAssignment(t *testing.T) {
	c := &AssignmentChild{Name: "width", Value: nil}
	s, ok := StrValue(c)
	if !ok || s != "" {
		t.Fatalf("got (%q, %v)", s, ok)
	}
}

func TestStrValueFalseForObjectChildren(t *testing.T) {
	c := &NestedObjectChild{Object: &Object{Name: "Item"}}
	if _, ok := StrValue(c); ok {
		t.Fatalf("expected ok=false for object-valued child")
	}
}
