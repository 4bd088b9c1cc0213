package manifest

import "testing"

func TestLoadValid(t *testing.T) {
	m, err := Load([]byte(`{"root": "diffs", "version": "v1.2.3", "disableSlots": true}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Root != "diffs" {
		t.Fatalf("Root = %q, want %q", m.Root, "diffs")
	}
	if m.Version != "v1.2.3" {
		t.Fatalf("Version = %q, want %q", m.Version, "v1.2.3")
	}
	if !m.DisableSlots {
		t.Fatalf("DisableSlots = false, want true")
	}
}

func TestLoadMissingRootRejected(t *testing.T) {
	if _, err := Load([]byte(`{"version": "v1"}`)); err == nil {
		t.Fatal("expected an error for a manifest missing \"root\"")
	}
}

func TestLoadUnknownFieldRejected(t *testing.T) {
	if _, err := Load([]byte(`{"root": "diffs", "bogus": 1}`)); err == nil {
		t.Fatal("expected an error for an unknown manifest field")
	}
}

func TestLoadInvalidJSONRejected(t *testing.T) {
	if _, err := Load([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
