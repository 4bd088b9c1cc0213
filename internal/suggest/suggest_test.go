package suggest

import "testing"

func TestClosestFindsNearMiss(t *testing.T) {
	got := Closest("Rectangel", []string{"Rectangle", "Text", "Image"})
	if got != "Rectangle" {
		t.Fatalf("got %q, want Rectangle", got)
	}
}

func TestClosestEmptyCandidates(t *testing.T) {
	if got := Closest("anything", nil); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestForErrorAppendsHint(t *testing.T) {
	msg := ForError("cannot locate element", "Rectangel", []string{"Rectangle"})
	if !contains(msg, "did you mean") || !contains(msg, "Rectangle") {
		t.Fatalf("got %q", msg)
	}
}

func TestForErrorLeavesMessageAloneWithNoCandidates(t *testing.T) {
	msg := ForError("cannot locate element", "Rectangel", nil)
	if msg != "cannot locate element" {
		t.Fatalf("got %q", msg)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
