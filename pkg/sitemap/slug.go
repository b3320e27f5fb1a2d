package sitemap

import (
	"regexp"
	"strings"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s\v\p{Z}-]+`)
	slugSpaces     = regexp.MustCompile(`[\s\v\p{Z}]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// DeriveSlug converts a title to a URL path segment.
// It lowercases the input, drops everything except letters, digits, whitespace
// and hyphens, turns whitespace runs into hyphens, collapses consecutive
// hyphens, and trims leading/trailing hyphens. A title without any
// alphanumeric character yields the empty string.
func DeriveSlug(title string) string {
	s := strings.ToLower(title)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
