package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is applied to user and presenter names when fixtures are loaded.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
