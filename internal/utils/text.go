package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Fold returns the trimmed, case folded form of s for case-insensitive comparison.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// SplitTerms splits a comma separated query into trimmed, non-empty terms.
func SplitTerms(query string) []string {
	var terms []string
	for _, part := range strings.Split(query, ",") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
