package common

import "strings"

// HasAny reports whether s contains any of the substrings. Matching is case-sensitive;
// callers lower-case provider text and device strings before asking.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
