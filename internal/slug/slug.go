package slug

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make derives the URL-safe slug for a board name: lowercase, every run of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens stripped. Deterministic, so renaming a board back to a
// previous name yields the previous slug.
func Make(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
