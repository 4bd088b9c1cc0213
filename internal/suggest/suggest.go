// Package suggest finds "did you mean" candidates for a name that failed to
// resolve -- a selector with no matching object, a slot or template
// invocation naming a declaration that was never defined. It exists purely
// to make a SelectorError/ExpansionError message more actionable; it never
// changes whether an error fires.
//
// Ground: opal/runtime's planner.findClosestMatch, which ranks candidates
// with fuzzy.RankFindFold and returns the closest one.
package suggest

import "github.com/lithammer/fuzzysearch/fuzzy"

// Closest returns the candidate in candidates fuzzy-closest to target, or
// "" if candidates is empty or nothing ranks as similar enough to bother
// suggesting.
func Closest(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		// No candidate holds target's letters in order (a transposition,
		// say): fall back to plain edit distance, within half target's length.
		best, bestDist := "", -1
		for _, c := range candidates {
			if d := fuzzy.LevenshteinDistance(target, c); bestDist < 0 || d < bestDist {
				best, bestDist = c, d
			}
		}
		if bestDist*2 > len(target) {
			return ""
		}
		return best
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// ForError appends a "; did you mean %q?" hint to message when Closest
// finds a plausible candidate, and returns message unchanged otherwise.
func ForError(message, target string, candidates []string) string {
	if hint := Closest(target, candidates); hint != "" {
		return message + `; did you mean "` + hint + `"?`
	}
	return message
}
