// Package normalize prepares rendered address strings for deduplication.
//
// The engine deliberately does no free-text cleansing beyond this: fuzzy
// normalization belongs to the downstream matcher consuming the output.
package normalize

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Address strips apostrophes and collapses every whitespace run to a single
// space, trimming the ends.
func Address(s string) string {
	s = strings.ReplaceAll(s, "'", "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
