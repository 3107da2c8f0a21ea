package typeahead

import "strings"

// ComputeHint derives the ghost completion for value from a candidate
// option. The hint is the candidate's display text, in its own casing, when
// it starts with value ignoring case. An empty value prefixes every
// candidate.
func ComputeHint(value string, candidate Option, displayKey string) string {
	display, ok := DisplayValue(candidate, displayKey)
	if !ok {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(display), strings.ToLower(value)) {
		return ""
	}
	return display
}
