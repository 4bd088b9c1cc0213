// Package semverutil resolves version matches for the diff DSL's
// `AFFECT ... VERSIONS` guard and the hashtab's pinned version record.
//
// Neither spec artifact requires semver: a VERSIONS list or a hashtab
// version tag is free-form text. When both the candidate and every allowed
// entry happen to parse as semver (golang.org/x/mod/semver demands a
// leading "v"), comparison is real semver equality; otherwise matching
// falls back to plain string equality, so a project pinning its QML files
// to tags like "build-42" keeps working exactly as before.
package semverutil

import "golang.org/x/mod/semver"

// Matches reports whether got satisfies want, per the semver-if-possible,
// string-otherwise rule described above.
func Matches(want, got string) bool {
	if semver.IsValid(want) && semver.IsValid(got) {
		return semver.Compare(want, got) == 0
	}
	return want == got
}

// Allowed reports whether got matches any entry in allowed. An empty list
// matches everything -- VERSIONS absent means the change always applies.
func Allowed(allowed []string, got string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, want := range allowed {
		if Matches(want, got) {
			return true
		}
	}
	return false
}
