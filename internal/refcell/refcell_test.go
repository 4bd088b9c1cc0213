package refcell

import (
	"testing"

	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmlparser"
)

func TestTranslateWrapsTopLevelObjects(t *testing.T) {
	p := qmlparser.New("import QtQuick 2.15\nRectangle {\n}\n", "t.qml")
	tree := p.Parse()
	translated := Translate(tree)
	if translated.Root.Name != VirtualRootName {
		t.Fatalf("got root name %q", translated.Root.Name)
	}
	if len(translated.Root.Children) != 1 {
		t.Fatalf("got %d children", len(translated.Root.Children))
	}
	if len(translated.Leftovers) != 1 {
		t.Fatalf("got %d leftovers", len(translated.Leftovers))
	}
	if _, ok := translated.Leftovers[0].(*qmlast.Import); !ok {
		t.Fatalf("got %#v", translated.Leftovers[0])
	}
}

func TestUntranslateRoundTrips(t *testing.T) {
	p := qmlparser.New("pragma Singleton\nItem {\n}\n", "t.qml")
	tree := p.Parse()
	back := Untranslate(Translate(tree))
	if len(back) != len(tree) {
		t.Fatalf("got %d elements, want %d", len(back), len(tree))
	}
	if _, ok := back[0].(*qmlast.Pragma); !ok {
		t.Fatalf("got %#v", back[0])
	}
	if _, ok := back[1].(*qmlast.ObjectElement); !ok {
		t.Fatalf("got %#v", back[1])
	}
}
