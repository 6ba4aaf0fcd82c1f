// Package sanitize cleans user-entered address text before it is stored.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// Text strips markup and collapses whitespace runs (including newlines and
// tabs) to single spaces. Text(Text(s)) == Text(s).
func Text(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	// Decoding can expose further entities and tags; every pass shrinks the
	// string until nothing changes.
	for {
		next := htmlTagRegex.ReplaceAllString(entityReplacer.Replace(result), "")
		if next == result {
			break
		}
		result = next
	}
	return strings.Join(strings.Fields(result), " ")
}
