package hashtab

import (
	"bytes"
	"testing"

	"github.com/asivery/qmldiff/internal/hash"
	"github.com/asivery/qmldiff/internal/qmlast"
	"github.com/asivery/qmldiff/internal/qmlparser"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t1 := New()
	t1.InsertString("Rectangle")
	t1.InsertString("width")
	t1.Version = "1.0.0"

	var buf bytes.Buffer
	if err := t1.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t2, err := Load(&buf, "1.0.0", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if t2.Len() != t1.Len() {
		t.Fatalf("got %d entries, want %d", t2.Len(), t1.Len())
	}
	if v, ok := t2.Get(hash.String("Rectangle")); !ok || v != "Rectangle" {
		t.Fatalf("got (%q, %v)", v, ok)
	}
	if t2.Version != "1.0.0" {
		t.Fatalf("got version %q", t2.Version)
	}
}

func TestLoadVersionSkip(t *testing.T) {
	t1 := New()
	t1.Version = "2.0.0"
	var buf bytes.Buffer
	if err := t1.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_, err := Load(&buf, "1.0.0", nil)
	if err != ErrVersionSkip {
		t.Fatalf("got %v, want ErrVersionSkip", err)
	}
}

func TestChecksumVerifies(t *testing.T) {
	t1 := New()
	t1.InsertString("foo")
	var buf bytes.Buffer
	if err := t1.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok, err := Verify(bytes.NewReader(buf.Bytes()))
	if err != nil || !ok {
		t.Fatalf("Verify: ok=%v err=%v", ok, err)
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	t1 := New()
	t1.InsertString("foo")
	var buf bytes.Buffer
	if err := t1.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF
	_, err := Verify(bytes.NewReader(corrupted))
	if err == nil {
		t.Fatalf("expected checksum mismatch error")
	}
}

func TestBuildFromTreeCollectsNames(t *testing.T) {
	p := qmlparser.New(`Rectangle {
		width: 100
		Text {
			text: "hi"
		}
	}`, "t.qml")
	tree := p.Parse()
	tab := BuildFromTree(tree)
	for _, name := range []string{"Rectangle", "width", "Text", "text"} {
		if _, ok := tab.Get(hash.String(name)); !ok {
			t.Errorf("missing hash for %q", name)
		}
	}
	_ = qmlast.Tree(tree)
}

func TestCompileAndProcessAlwaysRule(t *testing.T) {
	rules, err := CompileRules("A\nderived_literal\n#\n")
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	tab := New()
	rules.Process(tab, nil)
	if _, ok := tab.Get(hash.String("derived_literal")); !ok {
		t.Fatalf("expected derived_literal to be hashed")
	}
}

func TestCompileAndProcessMatchRule(t *testing.T) {
	tab := New()
	tab.InsertString("onClicked")
	rules, err := CompileRules("M^on(.*)$\n-\n-\nhandler_$1\n#\n")
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	rules.Process(tab, nil)
	if _, ok := tab.Get(hash.String("handler_Clicked")); !ok {
		t.Fatalf("expected handler_Clicked to be derived")
	}
}

func TestProcessResolvesHashRefs(t *testing.T) {
	tab := New()
	h := tab.InsertString("width")
	rules, err := CompileRules("A\n[[" + itoa(h) + "]]Changed\n#\n")
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	rules.Process(tab, nil)
	if _, ok := tab.Get(hash.String("widthChanged")); !ok {
		t.Fatalf("expected widthChanged to be derived")
	}
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
