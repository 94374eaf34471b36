package memory

import "strings"

// ftsQuery turns free text into an FTS5 MATCH expression: each word becomes
// a quoted term and terms are OR-joined. Returns "" when no usable word
// remains.
func ftsQuery(text string) string {
	words := tokenize(text)
	if len(words) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(words))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " OR ")
}

// tokenize splits a string into lowercase words.
func tokenize(s string) []string {
	words := strings.Fields(strings.ToLower(s))
	result := make([]string, 0, len(words))
	for _, w := range words {
		// Strip common punctuation
		w = strings.Trim(w, ".,;:!?\"'()[]{}*^")
		if len(w) > 1 {
			result = append(result, w)
		}
	}
	return result
}
