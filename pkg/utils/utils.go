package utils

import "strings"

func ToPointer[T any](value T) *T {
	return &value
}

// NormalizeToken trims and lowercases a stored token. Schedule rows are edited
// by hand in the dashboard, so stray whitespace and casing do occur.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
