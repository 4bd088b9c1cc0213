package semverutil

import "testing"

func TestMatchesSemver(t *testing.T) {
	if !Matches("v1.2.3", "v1.2.3") {
		t.Fatal("expected equal semvers to match")
	}
	if Matches("v1.2.3", "v1.2.4") {
		t.Fatal("expected differing semvers not to match")
	}
}

func TestMatchesFallsBackToString(t *testing.T) {
	if !Matches("build-42", "build-42") {
		t.Fatal("expected equal non-semver tags to match")
	}
	if Matches("build-42", "build-43") {
		t.Fatal("expected differing non-semver tags not to match")
	}
}

func TestAllowedEmptyMatchesEverything(t *testing.T) {
	if !Allowed(nil, "anything") {
		t.Fatal("expected empty allow-list to match everything")
	}
}

func TestAllowedList(t *testing.T) {
	allowed := []string{"v1.0.0", "v2.0.0"}
	if !Allowed(allowed, "v2.0.0") {
		t.Fatal("expected v2.0.0 to be allowed")
	}
	if Allowed(allowed, "v3.0.0") {
		t.Fatal("expected v3.0.0 not to be allowed")
	}
}
