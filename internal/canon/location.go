package canon

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var rePunct = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// Fold normalizes free text for case-insensitive comparison: Unicode case
// folding, punctuation to spaces, collapsed whitespace.
func Fold(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	s = rePunct.ReplaceAllString(s, " ")
	return collapseSpaces(s)
}

// Contains reports whether needle occurs in haystack after folding both.
// An empty needle never matches.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// ParseQuery splits "City, State" free text. A single term is the city.
func ParseQuery(text string) (city, state string) {
	parts := strings.Split(text, ",")
	city = collapseSpaces(parts[0])
	if len(parts) > 1 {
		state = collapseSpaces(parts[1])
	}
	return city, state
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
